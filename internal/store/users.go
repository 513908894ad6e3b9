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

// RegisterOrganization creates the organization, its first department
// and the admin user in one transaction. A duplicate email rolls the
// whole registration back and reports ErrConflict.
func (s *gormStore) RegisterOrganization(ctx context.Context, org *model.Organization, dept *model.Department, admin *model.User) error {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.OrganizationID = org.ID

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.User
		err := tx.Select("id").First(&existing, "email = ?", admin.Email).Error
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(dept).Error; err != nil {
			return fmt.Errorf("failed to create department: %w", err)
		}
		// On conflict the pre-generated ID lost; point dept at the
		// surviving row.
		var saved model.Department
		if err := tx.First(&saved, "name = ?", dept.Name).Error; err != nil {
			return fmt.Errorf("failed to resolve department %q: %w", dept.Name, err)
		}
		dept.ID = saved.ID
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (s *gormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) UserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) RoleByName(ctx context.Context, name string) (*model.Role, error) {
	var r model.Role
	if err := s.db.WithContext(ctx).First(&r, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Operators lists an organization's users for name dropdowns, excluding
// the given role names (typically the operator-variant roles).
func (s *gormStore) Operators(ctx context.Context, orgID string, excludedRoles []string) ([]model.User, error) {
	q := s.db.WithContext(ctx).
		Preload("Role").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.organization_id = ?", orgID)
	if len(excludedRoles) > 0 {
		q = q.Where("roles.name NOT IN ?", excludedRoles)
	}

	var users []model.User
	if err := q.Order("users.first_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SaveResetToken stores a password reset token for the user, replacing
// any earlier ones.
func (s *gormStore) SaveResetToken(ctx context.Context, userID, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.ResetToken{}).Error; err != nil {
			return fmt.Errorf("failed to clear old reset tokens: %w", err)
		}
		if err := tx.Create(&model.ResetToken{UserID: userID, Token: token}).Error; err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}
		return nil
	})
}

// ConsumeResetToken validates the token, updates the user's password
// hash and deletes the token, all in one transaction.
func (s *gormStore) ConsumeResetToken(ctx context.Context, token, newPasswordHash string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt model.ResetToken
		if err := tx.First(&rt, "token = ?", token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", rt.UserID).
			Update("password", newPasswordHash).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := tx.Where("token = ?", token).Delete(&model.ResetToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete reset token: %w", err)
		}
		return nil
	})
}

// EnsureDepartment finds or creates a department by name. Used at
// startup to resolve the configured default department.
func (s *gormStore) EnsureDepartment(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	err := s.db.WithContext(ctx).First(&dept, "name = ?", name).Error
	if err == nil {
		return &dept, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dept = model.Department{ID: uuid.NewString(), Name: name}
	if err := s.db.WithContext(ctx).Create(&dept).Error; err != nil {
		return nil, fmt.Errorf("failed to create department %q: %w", name, err)
	}
	return &dept, nil
}

func (s *gormStore) Departments(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	if err := s.db.WithContext(ctx).Order("name").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}
