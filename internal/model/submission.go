package model

import (
	"time"

	"maintenance-checklist-backend/internal/schedule"
)

// Submission status literals shared by the operator and maintenance fields.
const (
	StatusOK    = "ok"
	StatusNotOK = "not ok"
)

// Submission is one record of an operator filling out a checkpoint,
// later closed out by maintenance staff and optionally acknowledged by
// an admin. Frequency is copied from the checkpoint at creation time;
// Shift is set for Daily submissions and re-labelled by the background
// shift assignor for 24h after creation.
type Submission struct {
	ID             string             `gorm:"primaryKey;size:36" json:"submissionId"`
	MachineID      string             `gorm:"index;size:36;not null" json:"machineId"`
	CheckpointID   string             `gorm:"index;size:36;not null" json:"checkpointId"`
	DepartmentID   string             `gorm:"size:36" json:"departmentId"`
	OrganizationID string             `gorm:"index;size:36;not null" json:"organizationId"`
	SubmittedBy    string             `gorm:"size:36;not null" json:"submittedBy"`
	SubmissionDate time.Time          `gorm:"index;not null" json:"submissionDate"`
	Frequency      schedule.Frequency `gorm:"size:16;not null" json:"frequency"`
	Shift          schedule.Shift     `gorm:"size:1" json:"shift"`

	UserStatus  string `gorm:"size:16" json:"userStatus"`
	UserRemarks string `gorm:"size:1024" json:"userRemarks"`

	MaintenanceStatus  string `gorm:"size:16" json:"maintenanceStatus"`
	MaintenanceRemarks string `gorm:"size:1024" json:"maintenanceRemarks"`

	AdminAction bool `gorm:"not null;default:false" json:"adminAction"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Checkpoint Checkpoint `json:"-"`
	Machine    Machine    `json:"-"`
}

// TableName keeps the legacy table name used by the reporting queries.
func (Submission) TableName() string {
	return "checklist_submissions"
}

// Done reports whether both the operator and maintenance staff recorded
// the checkpoint as ok.
func (s *Submission) Done() bool {
	return s.UserStatus == StatusOK && s.MaintenanceStatus == StatusOK
}
