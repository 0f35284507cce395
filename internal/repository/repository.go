package repository

import (
	"time"

	"github.com/skmtks/taskboard-api/internal/models"
)

// TaskFilter holds filtering options for listing tasks. AssignedUserID is
// ANDed with everything else; the service layer forces it to the caller for
// non-admins so the visibility rule cannot be escaped.
type TaskFilter struct {
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	Search         string
	DueFrom        *time.Time
	DueTo          *time.Time
	AssignedUserID *uint64
	Limit          int
	Offset         int
}

// TaskRow is a task snapshot with its checklist aggregates, so listings can
// report completion ratios without a second round-trip per task.
type TaskRow struct {
	models.Task
	TodoTotalCount     int64
	CompletedTodoCount int64
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination, ordered by due
	// date ascending, each row carrying checklist aggregates.
	List(filter TaskFilter) ([]TaskRow, int64, error)

	// Update persists a modified task
	Update(task *models.Task) error

	// Delete removes a task along with its checklist items and file
	// metadata rows in one transaction
	Delete(id uint64) error

	// ListTodos returns a task's checklist ordered by sort order
	ListTodos(taskID uint64) ([]models.TodoItem, error)

	// ReplaceTodos swaps a task's checklist for the given items and writes
	// the derived status/progress back to the task, atomically
	ReplaceTodos(taskID uint64, items []models.TodoItem, status models.TaskStatus, progress int) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by their normalized email
	FindByEmail(email string) (*models.User, error)

	// List returns all users
	List() ([]models.User, error)

	// Update persists a modified user
	Update(user *models.User) error

	// CountAdmins returns the number of admin users
	CountAdmins() (int64, error)

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ids []uint64) (int64, error)

	// RemoveUserFromAllTasks scrubs the user ID out of every task's
	// assignee list inside a single transaction, returning how many tasks
	// were rewritten. All-or-nothing.
	RemoveUserFromAllTasks(userID uint64) (int64, error)

	// DeleteWithUnassign runs the unassignment cascade and deletes the user
	// row in the same transaction, returning the number of tasks rewritten.
	DeleteWithUnassign(userID uint64) (int64, error)

	// CountTasksByStatus returns the user's assigned-task counts keyed by
	// status
	CountTasksByStatus(userID uint64) (map[models.TaskStatus]int64, error)
}

// FileRepository defines the interface for task file metadata access
type FileRepository interface {
	Create(file *models.TaskFile) error
	FindByID(taskID, fileID uint64) (*models.TaskFile, error)
	ListByTask(taskID uint64) ([]models.TaskFile, error)
	Update(file *models.TaskFile) error
	Delete(taskID, fileID uint64) error
}

// CompanyRepository defines the interface for the singleton company profile
type CompanyRepository interface {
	// Get returns the profile row, or gorm.ErrRecordNotFound when none has
	// been created yet
	Get() (*models.Company, error)

	// Save creates or updates the singleton profile row
	Save(company *models.Company) error
}
