package model

import "time"

// Department represents an organizational unit referenced by
// checkpoints and submissions.
type Department struct {
	ID        string    `gorm:"primaryKey;size:36" json:"departmentId"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"departmentName"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
