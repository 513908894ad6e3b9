package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"maintenance-checklist-backend/config"
	"maintenance-checklist-backend/internal/api"
	"maintenance-checklist-backend/internal/auth"
	"maintenance-checklist-backend/internal/db"
	"maintenance-checklist-backend/internal/media"
	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/notification"
	"maintenance-checklist-backend/internal/shiftassign"
	"maintenance-checklist-backend/internal/store"
)

// TestChecklistLifecycle walks one checkpoint through its whole life:
// registration, machine and checkpoint setup, an operator submission,
// the background shift sweep, the maintenance close-out and finally
// the dashboard reflecting each step.
func TestChecklistLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 1. In-memory database with the full schema and seeded roles.
	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	// 2. Wire the full stack the way main does.
	cfg := &config.Config{}
	cfg.Server = config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 1}
	cfg.ShiftAssignor = config.ShiftAssignorConfig{Enabled: true, Interval: 5 * time.Minute, LookbackHours: 24}

	gormStore := store.NewGormStore(testDB)
	tokens := auth.NewManager("integration-secret", time.Hour)
	resolver := media.NewResolver(t.TempDir())
	pool := notification.NewWorkerPool(2, gormStore, &webpush.Options{})
	assignor := shiftassign.NewService(cfg, gormStore)

	dept, err := gormStore.EnsureDepartment(context.Background(), "Production")
	require.NoError(t, err)

	handler := api.NewHandler(gormStore, tokens, resolver, pool, &webpush.Options{}, *dept)
	router := api.NewRouter(handler, tokens, &cfg.Server)

	call := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var raw []byte
		if body != nil {
			raw, err = json.Marshal(body)
			require.NoError(t, err)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 3. Register the organization and log in.
	var orgID, token string
	t.Run("Register and login", func(t *testing.T) {
		w := call(http.MethodPost, "/api/register", "", gin.H{
			"firstName":   "Asha",
			"companyName": "Acme Foundry",
			"email":       "asha@example.com",
			"password":    "long-enough",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var reg struct {
			OrganizationID string `json:"organizationId"`
			UserID         string `json:"userId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
		orgID = reg.OrganizationID

		require.NoError(t, testDB.Model(&model.User{}).Where("id = ?", reg.UserID).Update("verified", true).Error)

		w = call(http.MethodPost, "/api/login", "", gin.H{
			"email":    "asha@example.com",
			"password": "long-enough",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var login struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
		token = login.Token
	})

	// 4. Set up a machine with a daily checkpoint.
	var machineID, checkpointID string
	t.Run("Machine and checkpoint setup", func(t *testing.T) {
		w := call(http.MethodPost, "/api/orgs/"+orgID+"/machines", token, gin.H{
			"machineName": "Press 1",
			"location":    "Hall 1",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var mresp struct {
			MachineID string `json:"machineId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mresp))
		machineID = mresp.MachineID

		w = call(http.MethodPost, "/api/checkpoints", token, gin.H{
			"machineId":      machineID,
			"checkpointName": "Oil level",
			"frequency":      "Daily",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var cresp struct {
			CheckpointID string `json:"checkpointId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cresp))
		checkpointID = cresp.CheckpointID
	})

	// 5. The operator reports the checkpoint not ok.
	var submissionID string
	t.Run("Operator submission", func(t *testing.T) {
		w := call(http.MethodPost, "/api/submissions", token, gin.H{
			"checkpointId":   checkpointID,
			"organizationId": orgID,
			"userStatus":     "not ok",
			"userRemarks":    "leaking seal",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var sub model.Submission
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
		submissionID = sub.ID
		assert.Equal(t, machineID, sub.MachineID)
		assert.Equal(t, "Daily", string(sub.Frequency))
		assert.False(t, sub.Done())

		// The not-ok report queued a notification job.
		require.Len(t, pool.Jobs(), 1)
		job := <-pool.Jobs()
		assert.Equal(t, machineID, job.MachineID)
	})

	// 6. The background sweep relabels recent daily submissions and
	// leaves an already-correct label alone.
	t.Run("Shift sweep is idempotent", func(t *testing.T) {
		assignor.SweepOnce(context.Background())

		var stored model.Submission
		require.NoError(t, testDB.First(&stored, "id = ?", submissionID).Error)
		want := stored.Shift
		require.NotEmpty(t, string(want))

		assignor.SweepOnce(context.Background())
		require.NoError(t, testDB.First(&stored, "id = ?", submissionID).Error)
		assert.Equal(t, want, stored.Shift)
	})

	// 7. Maintenance closes the report out without touching the
	// operator's own status.
	t.Run("Maintenance close-out", func(t *testing.T) {
		w := call(http.MethodPut, "/api/submissions/"+submissionID+"/maintenance", token, gin.H{
			"maintenanceStatus":  "ok",
			"maintenanceRemarks": "seal replaced",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var sub model.Submission
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
		assert.Equal(t, model.StatusOK, sub.MaintenanceStatus)
		assert.Equal(t, model.StatusNotOK, sub.UserStatus)
		assert.True(t, sub.Done())
	})

	// 8. The admin acknowledges the finding.
	t.Run("Admin acknowledgement", func(t *testing.T) {
		w := call(http.MethodPut, "/api/submissions/"+submissionID+"/admin-action", token, gin.H{
			"adminAction": true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var sub model.Submission
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
		assert.True(t, sub.AdminAction)
	})

	// 9. The dashboard now counts the occurrence as submitted.
	t.Run("Dashboard reflects the close-out", func(t *testing.T) {
		day := time.Now().UTC().Format("2006-01-02")
		w := call(http.MethodGet, "/api/orgs/"+orgID+"/dashboard?start="+day+"&end="+day, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rows []struct {
			MachineID      string `json:"machineId"`
			RequiredCount  int    `json:"requiredCount"`
			SubmittedCount int    `json:"submittedCount"`
			NotOKCount     int    `json:"notOkCount"`
			PendingCount   int    `json:"pendingCount"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 3)

		required, submitted, notOK, pending := 0, 0, 0, 0
		for _, row := range rows {
			assert.Equal(t, machineID, row.MachineID)
			required += row.RequiredCount
			submitted += row.SubmittedCount
			notOK += row.NotOKCount
			pending += row.PendingCount
		}
		assert.Equal(t, 3, required)
		assert.Equal(t, 1, submitted)
		assert.Zero(t, notOK, "maintenance ok close-out clears the not-ok breakdown")
		assert.Equal(t, 2, pending)
	})
}
