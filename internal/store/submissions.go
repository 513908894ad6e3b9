package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/schedule"
)

// CreateSubmission writes the submission and its optional uploaded
// image metadata in one transaction. The referenced checkpoint must
// exist; its frequency is the source of truth: a caller-supplied
// frequency that disagrees is rejected, an omitted one is filled in.
// Daily submissions get their shift labelled immediately from the
// timestamp; the background assignor re-labels idempotently afterwards.
func (s *gormStore) CreateSubmission(ctx context.Context, sub *model.Submission, img *model.SubmissionImage) error {
	if sub.UserStatus != model.StatusOK && sub.UserStatus != model.StatusNotOK {
		return ErrInvalidStatus
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmissionDate.IsZero() {
		sub.SubmissionDate = time.Now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cp model.Checkpoint
		if err := tx.First(&cp, "id = ?", sub.CheckpointID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if sub.Frequency == "" {
			sub.Frequency = cp.Frequency
		} else if sub.Frequency != cp.Frequency {
			return ErrFrequencyMismatch
		}
		if sub.MachineID == "" {
			sub.MachineID = cp.MachineID
		}
		if sub.DepartmentID == "" {
			sub.DepartmentID = cp.DepartmentID
		}
		if sub.Frequency == schedule.FreqDaily {
			sub.Shift = schedule.ShiftFor(sub.SubmissionDate)
		} else {
			sub.Shift = schedule.ShiftNone
		}

		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		if img != nil {
			img.ID = uuid.NewString()
			img.SubmissionID = sub.ID
			if err := tx.Create(img).Error; err != nil {
				return fmt.Errorf("failed to create submission image record: %w", err)
			}
		}
		return nil
	})
}

// SetMaintenanceOutcome records the maintenance close-out. It is
// idempotent and last-write-wins; repeated calls overwrite the
// maintenance fields. The operator's user_status is never touched here.
func (s *gormStore) SetMaintenanceOutcome(ctx context.Context, submissionID, status, remarks string, img *model.MaintenanceImage) (*model.Submission, error) {
	if status != model.StatusOK && status != model.StatusNotOK {
		return nil, ErrInvalidStatus
	}

	var sub model.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]any{
			"maintenance_status":  status,
			"maintenance_remarks": remarks,
		}
		if err := tx.Model(&sub).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update submission %s: %w", submissionID, err)
		}

		if img != nil {
			img.ID = uuid.NewString()
			img.SubmissionID = submissionID
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "submission_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "path"}),
			}).Create(img).Error; err != nil {
				return fmt.Errorf("failed to upsert maintenance image record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SetAdminAcknowledgement toggles the admin_action flag independent of
// the operator and maintenance fields.
func (s *gormStore) SetAdminAcknowledgement(ctx context.Context, submissionID string, acknowledged bool) (*model.Submission, error) {
	res := s.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", submissionID).
		Update("admin_action", acknowledged)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update admin action: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Submission(ctx, submissionID)
}

func (s *gormStore) Submission(ctx context.Context, submissionID string) (*model.Submission, error) {
	var sub model.Submission
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// SubmissionsInRange fetches an organization's submissions whose
// timestamp falls in [from, to), optionally narrowed by machine or
// frequency. The coverage evaluator joins these against required
// occurrences in memory.
func (s *gormStore) SubmissionsInRange(ctx context.Context, orgID string, from, to time.Time, f SubmissionFilter) ([]model.Submission, error) {
	q := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Where("submission_date >= ? AND submission_date < ?", from, to)
	if f.MachineID != "" {
		q = q.Where("machine_id = ?", f.MachineID)
	}
	if f.Frequency != "" {
		q = q.Where("frequency = ?", f.Frequency)
	}

	var subs []model.Submission
	if err := q.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// LatestSubmissionTimes returns, per checkpoint, the newest submission
// timestamp. Feeds the trailing-window pending views.
func (s *gormStore) LatestSubmissionTimes(ctx context.Context, orgID string) (map[string]time.Time, error) {
	type row struct {
		CheckpointID string
		Latest       time.Time
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Select("checkpoint_id as checkpoint_id, MAX(submission_date) as latest").
		Where("organization_id = ?", orgID).
		Group("checkpoint_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.CheckpointID] = r.Latest
	}
	return out, nil
}

// AssignShifts re-labels the shift on every Daily submission created
// within the lookback window. The computed shift is a pure function of
// the stored timestamp so the sweep is idempotent and needs no per-row
// locking; the previous shift value never feeds into the result.
func (s *gormStore) AssignShifts(ctx context.Context, now time.Time, lookback time.Duration) (int64, error) {
	since := now.Add(-lookback)

	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subs []model.Submission
		if err := tx.
			Where("frequency = ?", schedule.FreqDaily).
			Where("submission_date >= ?", since).
			Find(&subs).Error; err != nil {
			return fmt.Errorf("failed to fetch recent submissions: %w", err)
		}

		for i := range subs {
			shift := schedule.ShiftFor(subs[i].SubmissionDate)
			if subs[i].Shift == shift {
				continue
			}
			if err := tx.Model(&model.Submission{}).
				Where("id = ?", subs[i].ID).
				Update("shift", shift).Error; err != nil {
				return fmt.Errorf("failed to relabel shift for submission %s: %w", subs[i].ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
