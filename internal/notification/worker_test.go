package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"maintenance-checklist-backend/internal/db"
	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/store"
)

type sentPush struct {
	endpoint string
	payload  string
}

// mockSender records every push instead of talking to a push service.
type mockSender struct {
	sent       []sentPush
	statusCode int
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	m.sent = append(m.sent, sentPush{endpoint: sub.Endpoint, payload: string(payload)})
	code := m.statusCode
	if code == 0 {
		code = http.StatusCreated
	}
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return store.NewGormStore(gdb)
}

func seedSubscribedMachine(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	gdb := s.DB()
	require.NoError(t, gdb.Create(&model.Organization{ID: "org-1", Name: "Acme Foundry"}).Error)
	require.NoError(t, gdb.Create(&model.Machine{ID: "m-1", OrganizationID: "org-1", Name: "Press 1", Status: model.MachineActive}).Error)

	sub := &model.PushSubscription{
		Endpoint:  "https://push.example/ep-1",
		P256DH:    "p256dh-key",
		Auth:      "auth-key",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.UpsertSubscription(ctx, sub, []string{"m-1"}))
}

func TestNotifyMachineSubscribers(t *testing.T) {
	s := newTestStore(t)
	seedSubscribedMachine(t, s)

	sender := &mockSender{}
	wp := NewWorkerPool(1, s, &webpush.Options{})
	wp.SetSender(sender)

	wp.notifyMachineSubscribers(context.Background(), Job{MachineID: "m-1", CheckpointName: "Oil level"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "https://push.example/ep-1", sender.sent[0].endpoint)
	assert.Contains(t, sender.sent[0].payload, `"Oil level"`)
	assert.Contains(t, sender.sent[0].payload, "Press 1")
	assert.Contains(t, sender.sent[0].payload, "not ok")
}

func TestNotifySkipsMachinesWithoutSubscribers(t *testing.T) {
	s := newTestStore(t)
	seedSubscribedMachine(t, s)

	sender := &mockSender{}
	wp := NewWorkerPool(1, s, &webpush.Options{})
	wp.SetSender(sender)

	wp.notifyMachineSubscribers(context.Background(), Job{MachineID: "m-unknown", CheckpointName: "Oil level"})

	assert.Empty(t, sender.sent)
}

func TestExpiredSubscriptionIsDeleted(t *testing.T) {
	s := newTestStore(t)
	seedSubscribedMachine(t, s)

	sender := &mockSender{statusCode: http.StatusGone}
	wp := NewWorkerPool(1, s, &webpush.Options{})
	wp.SetSender(sender)

	wp.notifyMachineSubscribers(context.Background(), Job{MachineID: "m-1", CheckpointName: "Oil level"})

	require.Len(t, sender.sent, 1)
	_, err := s.SubscriptionByEndpoint(context.Background(), "https://push.example/ep-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDispatchFeedsWorkers(t *testing.T) {
	s := newTestStore(t)
	seedSubscribedMachine(t, s)

	sender := &mockSender{}
	wp := NewWorkerPool(2, s, &webpush.Options{})
	wp.SetSender(sender)

	wp.Dispatch(Job{MachineID: "m-1", CheckpointName: "Belt tension"})
	require.Len(t, wp.Jobs(), 1)

	job := <-wp.Jobs()
	assert.Equal(t, "m-1", job.MachineID)
	assert.Equal(t, "Belt tension", job.CheckpointName)
}
