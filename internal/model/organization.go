package model

import "time"

// Organization represents a registered plant or company.
type Organization struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Address   string    `gorm:"size:512" json:"address"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Machines []Machine `gorm:"foreignKey:OrganizationID" json:"-"`
	Users    []User    `gorm:"foreignKey:OrganizationID" json:"-"`
}
