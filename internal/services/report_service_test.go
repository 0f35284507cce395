package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/policy"
	"github.com/skmtks/taskboard-api/internal/repository"
)

func setupReportTest(t *testing.T) (*gorm.DB, *ReportService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Task{}, &models.TodoItem{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, NewReportService(repository.NewTaskRepository(db), repository.NewUserRepository(db))
}

func TestExportTasksCSV(t *testing.T) {
	db, service := setupReportTest(t)

	admin := &models.User{Name: "Boss", Email: "boss@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)
	worker := &models.User{Name: "Worker", Email: "worker@example.com", PasswordHash: "x", Role: models.RoleMember}
	require.NoError(t, db.Create(worker).Error)

	task := &models.Task{
		Title:      "Quarterly Report",
		Priority:   models.PriorityHigh,
		Status:     models.StatusInProgress,
		DueDate:    time.Now().Add(72 * time.Hour),
		AssignedTo: models.UserIDList{worker.ID},
		CreatedBy:  admin.ID,
		Progress:   50,
	}
	require.NoError(t, db.Create(task).Error)
	require.NoError(t, db.Create(&models.TodoItem{TaskID: task.ID, Text: "Draft", Completed: true}).Error)
	require.NoError(t, db.Create(&models.TodoItem{TaskID: task.ID, Text: "Review"}).Error)

	var buf bytes.Buffer
	err := service.ExportTasksCSV(policy.Principal{ID: admin.ID, Role: models.RoleAdmin}, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Title", records[0][1])
	assert.Equal(t, "Quarterly Report", records[1][1])
	assert.Equal(t, "Worker", records[1][6], "assignee IDs are resolved to names")
	assert.Equal(t, "Boss", records[1][7])
	assert.Equal(t, "1", records[1][8])
	assert.Equal(t, "2", records[1][9])
}

func TestExportTasksCSV_MemberForbidden(t *testing.T) {
	_, service := setupReportTest(t)

	var buf bytes.Buffer
	err := service.ExportTasksCSV(policy.Principal{ID: 1, Role: models.RoleMember}, &buf)

	assert.ErrorIs(t, err, ErrUserForbidden)
	assert.Zero(t, buf.Len())
}

func TestExportUsersCSV(t *testing.T) {
	db, service := setupReportTest(t)

	admin := &models.User{Name: "Boss", Email: "boss@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)
	worker := &models.User{Name: "Worker", Email: "worker@example.com", PasswordHash: "x", Role: models.RoleMember}
	require.NoError(t, db.Create(worker).Error)

	task := &models.Task{
		Title:      "Assigned",
		Priority:   models.PriorityMedium,
		Status:     models.StatusCompleted,
		DueDate:    time.Now().Add(24 * time.Hour),
		AssignedTo: models.UserIDList{worker.ID},
		CreatedBy:  admin.ID,
	}
	require.NoError(t, db.Create(task).Error)

	var buf bytes.Buffer
	err := service.ExportUsersCSV(policy.Principal{ID: admin.ID, Role: models.RoleAdmin}, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Users are listed in ID order; the worker row carries the completed count
	assert.Equal(t, "Worker", records[2][1])
	assert.Equal(t, "1", records[2][6])
}
