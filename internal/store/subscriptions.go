package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"maintenance-checklist-backend/internal/model"
)

func (s *gormStore) SubscriptionByEndpoint(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Machines").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// UpsertSubscription saves the subscription and replaces its machine
// associations atomically.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription, machineIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		var machines []model.Machine
		if len(machineIDs) > 0 {
			if err := tx.Where("id IN ?", machineIDs).Find(&machines).Error; err != nil {
				return fmt.Errorf("failed to fetch machines for subscription: %w", err)
			}
		}
		if err := tx.Model(sub).Association("Machines").Replace(machines); err != nil {
			return fmt.Errorf("failed to replace subscription machines: %w", err)
		}
		return nil
	})
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	res := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint})
	if res.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SubscriptionsForMachine lists every push subscription watching the
// given machine.
func (s *gormStore) SubscriptionsForMachine(ctx context.Context, machineID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_machine_mapping smm ON smm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("smm.machine_id = ?", machineID).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
