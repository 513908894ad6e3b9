package model

import "time"

// Machine status values.
const (
	MachineActive   = 1
	MachineInactive = 0
)

// Machine represents one piece of equipment with inspection checkpoints.
type Machine struct {
	ID             string    `gorm:"primaryKey;size:36" json:"machineId"`
	OrganizationID string    `gorm:"index;size:36;not null" json:"organizationId"`
	Name           string    `gorm:"size:256;not null" json:"machineName"`
	Location       string    `gorm:"size:256" json:"location"`
	Description    string    `gorm:"size:1024" json:"description"`
	Status         int       `gorm:"not null;default:1" json:"status"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`

	// Associations
	Organization Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Checkpoints  []Checkpoint `gorm:"foreignKey:MachineID" json:"-"`
}
