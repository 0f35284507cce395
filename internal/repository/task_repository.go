package repository

import (
	"fmt"
	"strings"

	"github.com/skmtks/taskboard-api/internal/database"
	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	if task.AssignedTo == nil {
		task.AssignedTo = models.UserIDList{}
	}
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// assignedToContains builds the membership predicate for the assigned_to
// JSON array column. The stored array may hold numbers or numeric strings,
// so both encodings are matched.
func assignedToContains(db *gorm.DB, query *gorm.DB, userID uint64) *gorm.DB {
	idNum := fmt.Sprintf("%d", userID)
	idStr := fmt.Sprintf("%q", idNum)

	switch db.Dialector.Name() {
	case "mysql":
		return query.Where(
			"(JSON_CONTAINS(tasks.assigned_to, ?) OR JSON_CONTAINS(tasks.assigned_to, ?))",
			idNum, idStr,
		)
	case "postgres":
		return query.Where(
			"EXISTS (SELECT 1 FROM json_array_elements_text(tasks.assigned_to) AS elem WHERE elem = ?)",
			idNum,
		)
	default: // sqlite
		return query.Where(
			"EXISTS (SELECT 1 FROM json_each(tasks.assigned_to) WHERE json_each.value = ? OR json_each.value = ?)",
			userID, idNum,
		)
	}
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]TaskRow, int64, error) {
	query := r.db.Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?)", pattern, pattern)
	}
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueTo)
	}
	if filter.AssignedUserID != nil {
		query = assignedToContains(r.db, query, *filter.AssignedUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.due_date ASC").
		Scopes(database.Paginate(utils.PaginationParams{Limit: filter.Limit, Offset: filter.Offset}))

	var tasks []models.Task
	if err := listQuery.Preload("Creator").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]TaskRow, len(tasks))
	for i, t := range tasks {
		rows[i] = TaskRow{Task: t}
	}

	if err := r.attachTodoCounts(rows); err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// attachTodoCounts fills the checklist aggregates with one grouped query.
func (r *GormTaskRepository) attachTodoCounts(rows []TaskRow) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]uint64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var counts []struct {
		TaskID uint64
		Total  int64
		Done   int64
	}
	err := r.db.Model(&models.TodoItem{}).
		Select("task_id, COUNT(*) AS total, SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS done").
		Where("task_id IN ?", ids).
		Group("task_id").
		Scan(&counts).Error
	if err != nil {
		return err
	}

	byTask := make(map[uint64]struct{ total, done int64 }, len(counts))
	for _, c := range counts {
		byTask[c.TaskID] = struct{ total, done int64 }{c.Total, c.Done}
	}

	for i := range rows {
		if c, ok := byTask[rows[i].ID]; ok {
			rows[i].TodoTotalCount = c.total
			rows[i].CompletedTodoCount = c.done
		}
	}

	return nil
}

// Update persists a modified task
func (r *GormTaskRepository) Update(task *models.Task) error {
	if task.AssignedTo == nil {
		task.AssignedTo = models.UserIDList{}
	}
	return r.db.Save(task).Error
}

// Delete removes a task, its checklist items, and its file metadata rows.
// The stored blobs are unlinked by the service afterwards, best-effort.
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TodoItem{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskFile{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ListTodos returns a task's checklist ordered by sort order
func (r *GormTaskRepository) ListTodos(taskID uint64) ([]models.TodoItem, error) {
	var items []models.TodoItem
	err := r.db.Where("task_id = ?", taskID).
		Order("sort_order ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceTodos swaps a task's checklist and writes back the derived state
func (r *GormTaskRepository) ReplaceTodos(taskID uint64, items []models.TodoItem, status models.TaskStatus, progress int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TodoItem{}).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].ID = 0
			items[i].TaskID = taskID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			Updates(map[string]interface{}{"status": status, "progress": progress}).Error
	})
}
