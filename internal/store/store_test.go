package store

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"maintenance-checklist-backend/internal/db"
	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/schedule"
)

// newSQLiteStore opens an isolated in-memory database and migrates the
// schema for behavior tests.
func newSQLiteStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return NewGormStore(gdb), gdb
}

func seedMachineWithCheckpoint(t *testing.T, db *gorm.DB, freq schedule.Frequency) (machineID, checkpointID string) {
	t.Helper()
	org := model.Organization{ID: "org-1", Name: "Acme Foundry"}
	require.NoError(t, db.Create(&org).Error)
	machine := model.Machine{ID: "m-1", OrganizationID: org.ID, Name: "Press 1", Status: model.MachineActive}
	require.NoError(t, db.Create(&machine).Error)
	cp := model.Checkpoint{ID: "cp-1", MachineID: machine.ID, DepartmentID: "d-1", Name: "Oil level", Frequency: freq}
	require.NoError(t, db.Create(&cp).Error)
	return machine.ID, cp.ID
}

func TestCreateSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("fills frequency, machine and shift from the checkpoint", func(t *testing.T) {
		s, db := newSQLiteStore(t)
		_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqDaily)

		at := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
		sub := &model.Submission{
			CheckpointID:   cpID,
			OrganizationID: "org-1",
			SubmittedBy:    "u-1",
			SubmissionDate: at,
			UserStatus:     model.StatusOK,
		}
		img := &model.SubmissionImage{Name: "evidence.jpg", Path: "/submission_images/evidence.jpg"}
		require.NoError(t, s.CreateSubmission(ctx, sub, img))

		var stored model.Submission
		require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
		assert.Equal(t, schedule.FreqDaily, stored.Frequency)
		assert.Equal(t, "m-1", stored.MachineID)
		assert.Equal(t, schedule.ShiftA, stored.Shift)

		var storedImg model.SubmissionImage
		require.NoError(t, db.First(&storedImg, "submission_id = ?", sub.ID).Error)
		assert.Equal(t, "evidence.jpg", storedImg.Name)
	})

	t.Run("rejects frequency disagreeing with the checkpoint", func(t *testing.T) {
		s, db := newSQLiteStore(t)
		_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqWeekly)

		sub := &model.Submission{
			CheckpointID:   cpID,
			OrganizationID: "org-1",
			SubmittedBy:    "u-1",
			Frequency:      schedule.FreqDaily,
			UserStatus:     model.StatusOK,
		}
		err := s.CreateSubmission(ctx, sub, nil)
		assert.ErrorIs(t, err, ErrFrequencyMismatch)

		// The rejected write must leave nothing behind.
		var count int64
		db.Model(&model.Submission{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("rejects unknown checkpoint", func(t *testing.T) {
		s, _ := newSQLiteStore(t)
		sub := &model.Submission{
			CheckpointID:   "missing",
			OrganizationID: "org-1",
			SubmittedBy:    "u-1",
			UserStatus:     model.StatusOK,
		}
		assert.ErrorIs(t, s.CreateSubmission(ctx, sub, nil), ErrNotFound)
	})

	t.Run("rejects invalid status literal", func(t *testing.T) {
		s, db := newSQLiteStore(t)
		_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqDaily)
		sub := &model.Submission{
			CheckpointID:   cpID,
			OrganizationID: "org-1",
			SubmittedBy:    "u-1",
			UserStatus:     "fine",
		}
		assert.ErrorIs(t, s.CreateSubmission(ctx, sub, nil), ErrInvalidStatus)
	})

	t.Run("weekly submissions carry no shift", func(t *testing.T) {
		s, db := newSQLiteStore(t)
		_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqWeekly)
		sub := &model.Submission{
			CheckpointID:   cpID,
			OrganizationID: "org-1",
			SubmittedBy:    "u-1",
			SubmissionDate: time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
			UserStatus:     model.StatusOK,
		}
		require.NoError(t, s.CreateSubmission(ctx, sub, nil))
		assert.Equal(t, schedule.ShiftNone, sub.Shift)
	})
}

func TestSetMaintenanceOutcome(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)
	_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqDaily)

	sub := &model.Submission{
		CheckpointID:   cpID,
		OrganizationID: "org-1",
		SubmittedBy:    "u-1",
		SubmissionDate: time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
		UserStatus:     model.StatusNotOK,
		UserRemarks:    "leaking seal",
	}
	require.NoError(t, s.CreateSubmission(ctx, sub, nil))

	_, err := s.SetMaintenanceOutcome(ctx, sub.ID, model.StatusOK, "seal replaced", nil)
	require.NoError(t, err)

	var stored model.Submission
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, model.StatusOK, stored.MaintenanceStatus)
	assert.Equal(t, "seal replaced", stored.MaintenanceRemarks)
	// The close-out must never rewrite the operator's own report.
	assert.Equal(t, model.StatusNotOK, stored.UserStatus)
	assert.Equal(t, "leaking seal", stored.UserRemarks)

	// Last write wins on repeat close-outs.
	_, err = s.SetMaintenanceOutcome(ctx, sub.ID, model.StatusNotOK, "needs new part", nil)
	require.NoError(t, err)
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, model.StatusNotOK, stored.MaintenanceStatus)
	assert.Equal(t, "needs new part", stored.MaintenanceRemarks)

	_, err = s.SetMaintenanceOutcome(ctx, "missing", model.StatusOK, "", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SetMaintenanceOutcome(ctx, sub.ID, "done", "", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetAdminAcknowledgement(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)
	_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqDaily)

	sub := &model.Submission{
		CheckpointID:   cpID,
		OrganizationID: "org-1",
		SubmittedBy:    "u-1",
		UserStatus:     model.StatusOK,
	}
	require.NoError(t, s.CreateSubmission(ctx, sub, nil))

	updated, err := s.SetAdminAcknowledgement(ctx, sub.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.AdminAction)
	// Acknowledgement is independent of the other fields.
	assert.Equal(t, model.StatusOK, updated.UserStatus)

	updated, err = s.SetAdminAcknowledgement(ctx, sub.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.AdminAction)

	_, err = s.SetAdminAcknowledgement(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignShifts(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)
	_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqDaily)

	now := time.Date(2024, time.June, 3, 23, 0, 0, 0, time.UTC)

	// A fresh row with a wrong label and an old row outside the window.
	recent := model.Submission{
		ID: "s-recent", CheckpointID: cpID, MachineID: "m-1", OrganizationID: "org-1",
		SubmittedBy: "u-1", SubmissionDate: now.Add(-2 * time.Hour), // 21:00 -> shift B
		Frequency: schedule.FreqDaily, Shift: schedule.ShiftC, UserStatus: model.StatusOK,
	}
	old := model.Submission{
		ID: "s-old", CheckpointID: cpID, MachineID: "m-1", OrganizationID: "org-1",
		SubmittedBy: "u-1", SubmissionDate: now.Add(-48 * time.Hour),
		Frequency: schedule.FreqDaily, Shift: schedule.ShiftA, UserStatus: model.StatusOK,
	}
	require.NoError(t, db.Create(&recent).Error)
	require.NoError(t, db.Create(&old).Error)

	updated, err := s.AssignShifts(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	var stored model.Submission
	require.NoError(t, db.First(&stored, "id = ?", "s-recent").Error)
	assert.Equal(t, schedule.ShiftB, stored.Shift)

	// Frozen outside the lookback window.
	var storedOld model.Submission
	require.NoError(t, db.First(&storedOld, "id = ?", "s-old").Error)
	assert.Equal(t, schedule.ShiftA, storedOld.Shift)

	// Idempotent: a second sweep changes nothing.
	updated, err = s.AssignShifts(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestRegisterOrganization(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)

	// The default department already exists at startup; registration
	// must hand back the surviving row's ID, not the pre-generated one.
	existing, err := s.EnsureDepartment(ctx, "Production")
	require.NoError(t, err)

	org := &model.Organization{Name: "Acme Foundry", Address: "12 Forge Rd"}
	dept := &model.Department{Name: "Production"}
	admin := &model.User{FirstName: "Asha", Email: "asha@example.com", PasswordHash: "x", RoleID: "r-1"}
	require.NoError(t, s.RegisterOrganization(ctx, org, dept, admin))
	assert.Equal(t, org.ID, admin.OrganizationID)
	assert.Equal(t, existing.ID, dept.ID)

	var deptCount int64
	db.Model(&model.Department{}).Count(&deptCount)
	assert.Equal(t, int64(1), deptCount)

	// Duplicate email rolls the whole registration back.
	org2 := &model.Organization{Name: "Copycat Co"}
	dept2 := &model.Department{Name: "Production"}
	admin2 := &model.User{FirstName: "Asha", Email: "asha@example.com", PasswordHash: "x", RoleID: "r-1"}
	assert.ErrorIs(t, s.RegisterOrganization(ctx, org2, dept2, admin2), ErrConflict)

	var orgCount int64
	db.Model(&model.Organization{}).Count(&orgCount)
	assert.Equal(t, int64(1), orgCount)
}

func TestEnsureDepartment(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	first, err := s.EnsureDepartment(ctx, "Production")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	again, err := s.EnsureDepartment(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestLatestSubmissionTimes(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)
	_, cpID := seedMachineWithCheckpoint(t, db, schedule.FreqDaily)

	early := time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC)
	late := early.Add(4 * time.Hour)
	for i, at := range []time.Time{early, late} {
		sub := model.Submission{
			ID: fmt.Sprintf("s-%d", i), CheckpointID: cpID, MachineID: "m-1",
			OrganizationID: "org-1", SubmittedBy: "u-1", SubmissionDate: at,
			Frequency: schedule.FreqDaily, UserStatus: model.StatusOK,
		}
		require.NoError(t, db.Create(&sub).Error)
	}

	latest, err := s.LatestSubmissionTimes(ctx, "org-1")
	require.NoError(t, err)
	require.Contains(t, latest, cpID)
	assert.Equal(t, late.Unix(), latest[cpID].Unix())
}

// newMockDB creates a sqlmock-backed GORM connection for SQL-level
// expectations.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestAssignShifts_EmptySweepCommits(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checklist_submissions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_date", "shift"}))
	mock.ExpectCommit()

	updated, err := s.AssignShifts(context.Background(), time.Now(), 24*time.Hour)
	assert.NoError(t, err)
	assert.Zero(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
