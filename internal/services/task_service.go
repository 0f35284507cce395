package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skmtks/taskboard-api/internal/constants"
	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/policy"
	"github.com/skmtks/taskboard-api/internal/repository"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskForbidden     = errors.New("access to this task is denied")
	ErrTitleRequired     = errors.New("title is required")
	ErrDueDateRequired   = errors.New("due date is required")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
	ErrInvalidAssignees  = errors.New("one or more assignees do not exist")
	ErrChecklistManaged  = errors.New("status and progress are derived from the checklist while it has items")
	ErrChecklistItemText = errors.New("checklist item text is required")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	fileRepo repository.FileRepository
	logger   *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, fileRepo repository.FileRepository, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		fileRepo: fileRepo,
		logger:   logger,
	}
}

// ListTasksInput represents filters for listing tasks. Status and Priority
// arrive as raw strings; unknown values are dropped rather than rejected.
type ListTasksInput struct {
	Status     string
	Priority   string
	Search     string
	DueFrom    *time.Time
	DueTo      *time.Time
	AssignedTo *uint64
	Limit      int
	Offset     int
}

// TodoItemInput is one checklist entry as supplied by the caller. The
// handler normalizes the loose completed encodings before building this.
type TodoItemInput struct {
	Text      string
	Completed bool
	SortOrder int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	AssignedTo  []uint64
	Attachments []string
	Todos       []TodoItemInput
}

// TaskPatch holds the fields provided to the full-update path. Nil pointers
// mean "not sent"; authorization is checked per provided field.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	DueDate     *time.Time
	AssignedTo  *[]uint64
	Attachments *[]string
	Progress    *int
}

func (p TaskPatch) providedFields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, policy.FieldTitle)
	}
	if p.Description != nil {
		fields = append(fields, policy.FieldDescription)
	}
	if p.Priority != nil {
		fields = append(fields, policy.FieldPriority)
	}
	if p.Status != nil {
		fields = append(fields, policy.FieldStatus)
	}
	if p.DueDate != nil {
		fields = append(fields, policy.FieldDueDate)
	}
	if p.AssignedTo != nil {
		fields = append(fields, policy.FieldAssignedTo)
	}
	if p.Attachments != nil {
		fields = append(fields, policy.FieldAttachments)
	}
	if p.Progress != nil {
		fields = append(fields, policy.FieldProgress)
	}
	return fields
}

// ListTasks returns the tasks visible to the principal. Non-admins are
// always restricted to tasks they are assigned to; a caller-supplied
// assigned_to filter cannot widen that.
func (s *TaskService) ListTasks(p policy.Principal, input ListTasksInput) ([]repository.TaskRow, int64, error) {
	filter := repository.TaskFilter{
		Search:  strings.TrimSpace(input.Search),
		DueFrom: input.DueFrom,
		DueTo:   input.DueTo,
		Limit:   input.Limit,
		Offset:  input.Offset,
	}

	if st := models.TaskStatus(input.Status); models.ValidStatus(st) {
		filter.Status = &st
	}
	if pr := models.TaskPriority(input.Priority); models.ValidPriority(pr) {
		filter.Priority = &pr
	}

	if p.IsAdmin() {
		filter.AssignedUserID = input.AssignedTo
	} else {
		uid := p.ID
		filter.AssignedUserID = &uid
	}

	if filter.Limit <= 0 {
		filter.Limit = constants.DefaultPageLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	rows, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return rows, total, nil
}

// GetTask returns a task with its checklist and files, after the access check
func (s *TaskService) GetTask(p policy.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Todos", "Files")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanAccessTask(p, task) {
		return nil, ErrTaskForbidden
	}

	return task, nil
}

// CreateTask creates a new task. Admin only. Status and progress start out
// derived from the initial checklist.
func (s *TaskService) CreateTask(p policy.Principal, input CreateTaskInput) (*models.Task, error) {
	if !policy.CanManageTasks(p) {
		return nil, ErrTaskForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.DueDate == nil {
		return nil, ErrDueDateRequired
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		priority = models.TaskPriority(input.Priority)
		if !models.ValidPriority(priority) {
			return nil, ErrInvalidPriority
		}
	}

	assignees := uniqueUint64(input.AssignedTo)
	if err := s.verifyAssignees(assignees); err != nil {
		return nil, err
	}

	items, err := buildTodoItems(input.Todos)
	if err != nil {
		return nil, err
	}
	state := DeriveChecklistState(items)

	attachments := input.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Priority:    priority,
		Status:      state.Status,
		DueDate:     *input.DueDate,
		AssignedTo:  models.UserIDList(assignees),
		CreatedBy:   p.ID,
		Progress:    state.Progress,
		Attachments: datatypes.JSONSlice[string](attachments),
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if len(items) > 0 {
		if err := s.taskRepo.ReplaceTodos(task.ID, items, state.Status, state.Progress); err != nil {
			return nil, fmt.Errorf("failed to create checklist: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Todos")
}

// UpdateTask applies a field patch. Every provided field is authorized
// against the principal before any validation or write; validation failures
// reject the whole patch before mutation.
func (s *TaskService) UpdateTask(p policy.Principal, taskID uint64, patch TaskPatch) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	fields := patch.providedFields()
	for _, field := range fields {
		if !policy.CanMutateTaskField(p, task, field) {
			return nil, ErrTaskForbidden
		}
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}
	if patch.Priority != nil && !models.ValidPriority(models.TaskPriority(*patch.Priority)) {
		return nil, ErrInvalidPriority
	}
	if patch.Status != nil && !models.ValidStatus(models.TaskStatus(*patch.Status)) {
		return nil, ErrInvalidStatus
	}
	if patch.Progress != nil && (*patch.Progress < constants.MinProgress || *patch.Progress > constants.MaxProgress) {
		return nil, ErrInvalidProgress
	}

	var assignees []uint64
	if patch.AssignedTo != nil {
		assignees = uniqueUint64(*patch.AssignedTo)
		if err := s.verifyAssignees(assignees); err != nil {
			return nil, err
		}
	}

	// While a checklist exists it is the source of truth for status and
	// progress; direct writes are only accepted once it is empty.
	if patch.Status != nil || patch.Progress != nil {
		todos, err := s.taskRepo.ListTodos(task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load checklist: %w", err)
		}
		if len(todos) > 0 {
			return nil, ErrChecklistManaged
		}
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = models.TaskPriority(*patch.Priority)
	}
	if patch.Status != nil {
		task.Status = models.TaskStatus(*patch.Status)
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.AssignedTo != nil {
		task.AssignedTo = models.UserIDList(assignees)
	}
	if patch.Attachments != nil {
		task.Attachments = datatypes.JSONSlice[string](*patch.Attachments)
	}
	if patch.Progress != nil {
		task.Progress = *patch.Progress
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Todos")
}

// UpdateTaskStatus is the dedicated status-update path: admins and
// assignees only. Rejected while the checklist is non-empty, since the
// checklist then owns status and progress.
func (s *TaskService) UpdateTaskStatus(p policy.Principal, taskID uint64, status string, progress *int) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanUpdateTaskStatus(p, task) {
		return nil, ErrTaskForbidden
	}

	st := models.TaskStatus(status)
	if !models.ValidStatus(st) {
		return nil, ErrInvalidStatus
	}
	if progress != nil && (*progress < constants.MinProgress || *progress > constants.MaxProgress) {
		return nil, ErrInvalidProgress
	}

	todos, err := s.taskRepo.ListTodos(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist: %w", err)
	}
	if len(todos) > 0 {
		return nil, ErrChecklistManaged
	}

	task.Status = st
	if progress != nil {
		task.Progress = *progress
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return task, nil
}

// UpdateChecklist replaces a task's checklist and re-derives status and
// progress. Admins and assignees may edit the checklist.
func (s *TaskService) UpdateChecklist(p policy.Principal, taskID uint64, todos []TodoItemInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanUpdateTaskStatus(p, task) {
		return nil, ErrTaskForbidden
	}

	items, err := buildTodoItems(todos)
	if err != nil {
		return nil, err
	}
	state := DeriveChecklistState(items)

	if err := s.taskRepo.ReplaceTodos(task.ID, items, state.Status, state.Progress); err != nil {
		return nil, fmt.Errorf("failed to replace checklist: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Todos")
}

// DeleteTask deletes a task. Admin only. Metadata rows go with the task in
// one transaction; removing the stored blobs afterwards is best-effort.
func (s *TaskService) DeleteTask(p policy.Principal, taskID uint64) error {
	if !policy.CanManageTasks(p) {
		return ErrTaskForbidden
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	files, err := s.fileRepo.ListByTask(taskID)
	if err != nil {
		return fmt.Errorf("failed to list task files: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	for _, f := range files {
		if err := os.Remove(f.StoragePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove attachment blob",
				zap.String("path", f.StoragePath),
				zap.Uint64("task_id", taskID),
				zap.Error(err))
		}
	}

	return nil
}

func (s *TaskService) verifyAssignees(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.userRepo.CountByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(ids) {
		return ErrInvalidAssignees
	}
	return nil
}

func buildTodoItems(todos []TodoItemInput) ([]models.TodoItem, error) {
	items := make([]models.TodoItem, 0, len(todos))
	for i, t := range todos {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			return nil, ErrChecklistItemText
		}
		sortOrder := t.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}
		items = append(items, models.TodoItem{
			Text:      text,
			Completed: t.Completed,
			SortOrder: sortOrder,
		})
	}
	return items, nil
}

// uniqueUint64 removes duplicate values while keeping first-seen order
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
