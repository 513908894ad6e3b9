package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/schedule"
)

// Store defines the interface for all database operations.
type Store interface {
	// Registration and auth support.
	RegisterOrganization(ctx context.Context, org *model.Organization, dept *model.Department, admin *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	RoleByName(ctx context.Context, name string) (*model.Role, error)
	Operators(ctx context.Context, orgID string, excludedRoles []string) ([]model.User, error)
	SaveResetToken(ctx context.Context, userID, token string) error
	ConsumeResetToken(ctx context.Context, token, newPasswordHash string) error

	// Departments.
	EnsureDepartment(ctx context.Context, name string) (*model.Department, error)
	Departments(ctx context.Context) ([]model.Department, error)

	// Machines.
	CreateMachine(ctx context.Context, m *model.Machine, qr *model.QRImage, img *model.MachineImage) error
	UpdateMachine(ctx context.Context, m *model.Machine, img *model.MachineImage) error
	UpdateMachineStatus(ctx context.Context, machineID string, status int) error
	DeleteMachine(ctx context.Context, machineID string) error
	Machine(ctx context.Context, machineID string) (*model.Machine, error)
	Machines(ctx context.Context, orgID string) ([]model.Machine, error)
	MachineImages(ctx context.Context, machineIDs []string) (map[string]model.MachineImage, map[string]model.QRImage, error)

	// Checkpoints.
	CreateCheckpoint(ctx context.Context, cp *model.Checkpoint, img *model.ChecklistImage) error
	Checkpoints(ctx context.Context, orgID string, f CheckpointFilter) ([]model.Checkpoint, error)
	ChecklistImages(ctx context.Context, checkpointIDs []string) (map[string]model.ChecklistImage, error)

	// Submission lifecycle.
	CreateSubmission(ctx context.Context, sub *model.Submission, img *model.SubmissionImage) error
	SetMaintenanceOutcome(ctx context.Context, submissionID, status, remarks string, img *model.MaintenanceImage) (*model.Submission, error)
	SetAdminAcknowledgement(ctx context.Context, submissionID string, acknowledged bool) (*model.Submission, error)
	Submission(ctx context.Context, submissionID string) (*model.Submission, error)

	// Reporting reads for the coverage evaluator.
	SubmissionsInRange(ctx context.Context, orgID string, from, to time.Time, f SubmissionFilter) ([]model.Submission, error)
	LatestSubmissionTimes(ctx context.Context, orgID string) (map[string]time.Time, error)

	// Background shift sweep.
	AssignShifts(ctx context.Context, now time.Time, lookback time.Duration) (int64, error)

	// Push subscriptions.
	SubscriptionByEndpoint(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription, machineIDs []string) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForMachine(ctx context.Context, machineID string) ([]model.PushSubscription, error)

	// DB exposes the underlying handle for consumers that compose raw
	// queries (notification worker, tests).
	DB() *gorm.DB
}

// CheckpointFilter narrows checkpoint queries; zero values mean "all".
type CheckpointFilter struct {
	MachineID    string
	DepartmentID string
	Frequency    schedule.Frequency
}

// SubmissionFilter narrows submission range queries; zero values mean "all".
type SubmissionFilter struct {
	MachineID string
	Frequency schedule.Frequency
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
