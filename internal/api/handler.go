package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"maintenance-checklist-backend/internal/auth"
	"maintenance-checklist-backend/internal/media"
	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/notification"
	"maintenance-checklist-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	tokens      *auth.Manager
	media       *media.Resolver
	notifier    *notification.WorkerPool
	webpush     *webpush.Options
	defaultDept model.Department
}

// NewHandler creates a new API handler. defaultDept is the department
// resolved at startup; submissions and checkpoints fall back to its ID
// when the caller omits one, and registration names the first
// department after it.
func NewHandler(s store.Store, tokens *auth.Manager, resolver *media.Resolver, notifier *notification.WorkerPool, webpushOptions *webpush.Options, defaultDept model.Department) *Handler {
	return &Handler{
		store:       s,
		tokens:      tokens,
		media:       resolver,
		notifier:    notifier,
		webpush:     webpushOptions,
		defaultDept: defaultDept,
	}
}
