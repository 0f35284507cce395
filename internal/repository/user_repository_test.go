package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

// TestDeleteWithUnassign_CommitsBoth verifies the cascade and the user
// deletion share one transaction on the happy path.
func TestDeleteWithUnassign_CommitsBoth(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `tasks` WHERE (.+)JSON_CONTAINS").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_to"}).
			AddRow(7, []byte(`[3,5,9]`)))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `users` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.DeleteWithUnassign(5)

	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDeleteWithUnassign_RollsBackOnCascadeFailure verifies a failed task
// rewrite aborts the whole deletion.
func TestDeleteWithUnassign_RollsBackOnCascadeFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `tasks` WHERE (.+)JSON_CONTAINS").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_to"}).
			AddRow(7, []byte(`[3,5,9]`)))
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.DeleteWithUnassign(5)

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRemoveUserFromAllTasks_NoMatches verifies the cascade commits cleanly
// when the user is assigned to nothing.
func TestRemoveUserFromAllTasks_NoMatches(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `tasks` WHERE (.+)JSON_CONTAINS").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_to"}))
	mock.ExpectCommit()

	updated, err := repo.RemoveUserFromAllTasks(5)

	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
