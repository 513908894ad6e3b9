package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"maintenance-checklist-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job asks the pool to notify a machine's subscribers that a checkpoint
// was reported not ok.
type Job struct {
	MachineID      string
	CheckpointName string
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// SetSender replaces the push sender, for tests.
func (wp *WorkerPool) SetSender(s Sender) {
	wp.sender = s
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.notifyMachineSubscribers(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// notifyMachineSubscribers fetches subscriptions and pushes the
// not-ok report to everyone watching the machine.
func (wp *WorkerPool) notifyMachineSubscribers(ctx context.Context, job Job) {
	subscriptions, err := wp.store.SubscriptionsForMachine(ctx, job.MachineID)
	if err != nil {
		log.Printf("Error fetching subscriptions for machine %s: %v", job.MachineID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	machineLabel := job.MachineID
	if machine, err := wp.store.Machine(ctx, job.MachineID); err != nil {
		log.Printf("Error fetching machine %s: %v", job.MachineID, err)
	} else if machine.Name != "" {
		machineLabel = machine.Name
	}

	message := fmt.Sprintf("Checkpoint %q on machine %s was reported not ok", job.CheckpointName, machineLabel)
	log.Printf("Sending %d notifications for machine %s", len(subscriptions), job.MachineID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub.Endpoint, sub.P256DH, sub.Auth, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, endpoint, p256dh, authKey string, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   authKey,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", endpoint)
		if err := wp.store.DeleteSubscription(ctx, endpoint); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to delete expired subscription %s: %v", endpoint, err)
		}
	}
}
