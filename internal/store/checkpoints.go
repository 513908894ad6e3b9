package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"maintenance-checklist-backend/internal/model"
)

// CreateCheckpoint inserts a checkpoint and its optional reference
// image metadata in one transaction. The referenced machine must exist;
// frequency is immutable after this point.
func (s *gormStore) CreateCheckpoint(ctx context.Context, cp *model.Checkpoint, img *model.ChecklistImage) error {
	if !cp.Frequency.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, cp.Frequency)
	}
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		if err := tx.Select("id").First(&machine, "id = ?", cp.MachineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Create(cp).Error; err != nil {
			return fmt.Errorf("failed to create checkpoint: %w", err)
		}
		if img != nil {
			img.ID = uuid.NewString()
			img.CheckpointID = cp.ID
			if err := tx.Create(img).Error; err != nil {
				return fmt.Errorf("failed to create checklist image record: %w", err)
			}
		}
		return nil
	})
}

// Checkpoints lists an organization's checkpoints, optionally narrowed
// by machine, department or frequency. An organization with no machines
// yields an empty slice, not an error.
func (s *gormStore) Checkpoints(ctx context.Context, orgID string, f CheckpointFilter) ([]model.Checkpoint, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN machines ON machines.id = checkpoints.machine_id").
		Where("machines.organization_id = ?", orgID)
	if f.MachineID != "" {
		q = q.Where("checkpoints.machine_id = ?", f.MachineID)
	}
	if f.DepartmentID != "" {
		q = q.Where("checkpoints.department_id = ?", f.DepartmentID)
	}
	if f.Frequency != "" {
		q = q.Where("checkpoints.frequency = ?", f.Frequency)
	}

	var cps []model.Checkpoint
	if err := q.Find(&cps).Error; err != nil {
		return nil, err
	}
	return cps, nil
}

// ChecklistImages fetches reference-image metadata for a set of
// checkpoints, keyed by checkpoint ID.
func (s *gormStore) ChecklistImages(ctx context.Context, checkpointIDs []string) (map[string]model.ChecklistImage, error) {
	out := make(map[string]model.ChecklistImage)
	if len(checkpointIDs) == 0 {
		return out, nil
	}
	var imgs []model.ChecklistImage
	if err := s.db.WithContext(ctx).Where("checkpoint_id IN ?", checkpointIDs).Find(&imgs).Error; err != nil {
		return nil, err
	}
	for _, img := range imgs {
		out[img.CheckpointID] = img
	}
	return out, nil
}
