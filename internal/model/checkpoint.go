package model

import (
	"time"

	"maintenance-checklist-backend/internal/schedule"
)

// Checkpoint is a recurring inspection item on one machine. Frequency
// is immutable after creation; submissions denormalize it so coverage
// queries need no join.
type Checkpoint struct {
	ID            string             `gorm:"primaryKey;size:36" json:"checkpointId"`
	MachineID     string             `gorm:"index;size:36;not null" json:"machineId"`
	DepartmentID  string             `gorm:"index;size:36" json:"departmentId"`
	Name          string             `gorm:"size:256;not null" json:"checkpointName"`
	ImportantNote string             `gorm:"size:1024" json:"importantNote"`
	Frequency     schedule.Frequency `gorm:"size:16;not null" json:"frequency"`
	CreatedAt     time.Time          `json:"-"`
	UpdatedAt     time.Time          `json:"-"`

	// Associations
	Machine    Machine    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Department Department `json:"-"`
}
