package model

import "time"

// Role represents a user role (Admin, Standard, Operator).
type Role struct {
	ID   string `gorm:"primaryKey;size:36" json:"roleId"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"roleName"`
}

// User is a registered account within one organization.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" json:"userId"`
	FirstName      string    `gorm:"size:128;not null" json:"firstName"`
	LastName       string    `gorm:"size:128" json:"lastName"`
	Email          string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Contact        string    `gorm:"size:64" json:"contact"`
	Designation    string    `gorm:"size:128" json:"designation"`
	PasswordHash   string    `gorm:"column:password;size:256;not null" json:"-"`
	OrganizationID string    `gorm:"index;size:36;not null" json:"organizationId"`
	RoleID         string    `gorm:"size:36;not null" json:"roleId"`
	Verified       bool      `gorm:"not null;default:false" json:"verified"`
	Blocked        bool      `gorm:"not null;default:false" json:"blocked"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`

	// Associations
	Role Role `json:"-"`
}

// ResetToken is a single-use password reset credential.
type ResetToken struct {
	ID        int64     `gorm:"autoIncrement;primaryKey" json:"-"`
	UserID    string    `gorm:"index;size:36;not null" json:"-"`
	Token     string    `gorm:"index;size:512;not null" json:"-"`
	CreatedAt time.Time `json:"-"`
}
