// Package shiftassign runs the background sweep that labels recent
// Daily submissions with their shift. The label is a pure function of
// the stored timestamp (see schedule.ShiftFor), so the sweep is
// idempotent and safe to run concurrently with dashboard reads: a
// report computed mid-sweep sees either the pre- or post-update label,
// both of which are correct for display.
package shiftassign

import (
	"context"
	"log"
	"time"

	"maintenance-checklist-backend/config"
	"maintenance-checklist-backend/internal/store"
)

// Service orchestrates the recurring shift sweep.
type Service struct {
	cfg   *config.Config
	store store.Store
}

// NewService creates a new shift assignor service.
func NewService(cfg *config.Config, store store.Store) *Service {
	return &Service{cfg: cfg, store: store}
}

// Run starts the sweep loop. The legacy system ran this every few
// seconds; since the computed shift for a given timestamp never
// changes, a coarse interval loses nothing.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.ShiftAssignor.Enabled {
		log.Println("Shift assignor is disabled. Not starting.")
		return
	}
	log.Println("Starting shift assignor service...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.ShiftAssignor.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shift assignor shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.ShiftAssignor.Interval)
		}
	}
}

// SweepOnce relabels the shift on every Daily submission created within
// the lookback window.
func (s *Service) SweepOnce(ctx context.Context) {
	now := time.Now()
	lookback := time.Duration(s.cfg.ShiftAssignor.LookbackHours) * time.Hour

	updated, err := s.store.AssignShifts(ctx, now, lookback)
	if err != nil {
		log.Printf("Error assigning shifts: %v", err)
		return
	}
	if updated > 0 {
		log.Printf("Shift sweep relabelled %d submissions", updated)
	}
}
