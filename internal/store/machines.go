package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-checklist-backend/internal/model"
)

// CreateMachine inserts the machine together with its QR code metadata
// and optional photo metadata in one transaction.
func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine, qr *model.QRImage, img *model.MachineImage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("failed to create machine: %w", err)
		}
		if qr != nil {
			qr.ID = uuid.NewString()
			qr.MachineID = m.ID
			if err := tx.Create(qr).Error; err != nil {
				return fmt.Errorf("failed to create qr image record: %w", err)
			}
		}
		if img != nil {
			img.ID = uuid.NewString()
			img.MachineID = m.ID
			if err := upsertMachineImage(tx, img); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateMachine applies non-zero fields of m and replaces the photo
// metadata when img is given, atomically.
func (s *gormStore) UpdateMachine(ctx context.Context, m *model.Machine, img *model.MachineImage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if m.Name != "" {
			updates["name"] = m.Name
		}
		if m.Location != "" {
			updates["location"] = m.Location
		}
		if m.Description != "" {
			updates["description"] = m.Description
		}
		if len(updates) > 0 {
			res := tx.Model(&model.Machine{}).Where("id = ?", m.ID).Updates(updates)
			if res.Error != nil {
				return fmt.Errorf("failed to update machine %s: %w", m.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		if img != nil {
			img.ID = uuid.NewString()
			img.MachineID = m.ID
			if err := upsertMachineImage(tx, img); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateMachineStatus flips a machine between active and inactive.
func (s *gormStore) UpdateMachineStatus(ctx context.Context, machineID string, status int) error {
	res := s.db.WithContext(ctx).Model(&model.Machine{}).Where("id = ?", machineID).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update machine status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMachine removes the machine and its image metadata rows in one
// transaction. Blob cleanup is the file store's concern.
func (s *gormStore) DeleteMachine(ctx context.Context, machineID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", machineID).Delete(&model.Machine{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete machine %s: %w", machineID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("machine_id = ?", machineID).Delete(&model.MachineImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete machine image records: %w", err)
		}
		if err := tx.Where("machine_id = ?", machineID).Delete(&model.QRImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete qr image records: %w", err)
		}
		return nil
	})
}

func (s *gormStore) Machine(ctx context.Context, machineID string) (*model.Machine, error) {
	var m model.Machine
	if err := s.db.WithContext(ctx).First(&m, "id = ?", machineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *gormStore) Machines(ctx context.Context, orgID string) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Where("organization_id = ?", orgID).Order("name").Find(&machines).Error; err != nil {
		return nil, err
	}
	return machines, nil
}

// MachineImages fetches photo and QR metadata for a set of machines in
// two queries, keyed by machine ID.
func (s *gormStore) MachineImages(ctx context.Context, machineIDs []string) (map[string]model.MachineImage, map[string]model.QRImage, error) {
	imgMap := make(map[string]model.MachineImage)
	qrMap := make(map[string]model.QRImage)
	if len(machineIDs) == 0 {
		return imgMap, qrMap, nil
	}

	var imgs []model.MachineImage
	if err := s.db.WithContext(ctx).Where("machine_id IN ?", machineIDs).Find(&imgs).Error; err != nil {
		return nil, nil, err
	}
	for _, img := range imgs {
		imgMap[img.MachineID] = img
	}

	var qrs []model.QRImage
	if err := s.db.WithContext(ctx).Where("machine_id IN ?", machineIDs).Find(&qrs).Error; err != nil {
		return nil, nil, err
	}
	for _, qr := range qrs {
		qrMap[qr.MachineID] = qr
	}
	return imgMap, qrMap, nil
}

func upsertMachineImage(tx *gorm.DB, img *model.MachineImage) error {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "machine_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "path"}),
	}).Create(img).Error; err != nil {
		return fmt.Errorf("failed to upsert machine image record: %w", err)
	}
	return nil
}
