package model

import "time"

// Image metadata rows. The blob store itself holds the file contents;
// these tables only carry (owner, name, relative path). Reads that find
// the path missing on disk substitute null rather than failing.

// MachineImage is the photo of a machine, one per machine.
type MachineImage struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MachineID string    `gorm:"uniqueIndex;size:36;not null"`
	Name      string    `gorm:"size:256;not null"`
	Path      string    `gorm:"size:512;not null"`
	CreatedAt time.Time
}

// QRImage is the generated QR code pointing at a machine's checklist.
type QRImage struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MachineID string    `gorm:"uniqueIndex;size:36;not null"`
	Name      string    `gorm:"size:256;not null"`
	Path      string    `gorm:"size:512;not null"`
	CreatedAt time.Time
}

// TableName avoids GORM splitting the QR initialism.
func (QRImage) TableName() string {
	return "qr_images"
}

// ChecklistImage is the reference photo attached to a checkpoint.
type ChecklistImage struct {
	ID           string    `gorm:"primaryKey;size:36"`
	CheckpointID string    `gorm:"uniqueIndex;size:36;not null"`
	Name         string    `gorm:"size:256;not null"`
	Path         string    `gorm:"size:512;not null"`
	CreatedAt    time.Time
}

// SubmissionImage is the photo evidence uploaded by the operator.
type SubmissionImage struct {
	ID           string    `gorm:"primaryKey;size:36"`
	SubmissionID string    `gorm:"uniqueIndex;size:36;not null"`
	Name         string    `gorm:"size:256;not null"`
	Path         string    `gorm:"size:512;not null"`
	CreatedAt    time.Time
}

// MaintenanceImage is the photo attached by maintenance staff at close-out.
type MaintenanceImage struct {
	ID           string    `gorm:"primaryKey;size:36"`
	SubmissionID string    `gorm:"uniqueIndex;size:36;not null"`
	Name         string    `gorm:"size:256;not null"`
	Path         string    `gorm:"size:512;not null"`
	CreatedAt    time.Time
}
