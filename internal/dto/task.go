package dto

import (
	"sort"
	"time"

	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/repository"
	"github.com/skmtks/taskboard-api/internal/utils"
)

// TodoItemDTO represents one checklist entry in API responses
type TodoItemDTO struct {
	ID        uint64 `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	SortOrder int    `json:"sort_order"`
}

// TaskDTO represents a task in API responses. Assignee and attachment lists
// are always concrete lists, never null.
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     time.Time           `json:"due_date"`
	AssignedTo  []uint64            `json:"assigned_to"`
	CreatedBy   uint64              `json:"created_by"`
	Progress    int                 `json:"progress"`
	Attachments []string            `json:"attachments"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	Todos       []TodoItemDTO       `json:"todos,omitempty"`
	Files       []TaskFileDTO       `json:"files,omitempty"`
}

// TaskListItemDTO represents a task in list responses, with checklist
// aggregates so clients can show completion without another call.
type TaskListItemDTO struct {
	ID                 uint64              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Priority           models.TaskPriority `json:"priority"`
	Status             models.TaskStatus   `json:"status"`
	DueDate            time.Time           `json:"due_date"`
	AssignedTo         []uint64            `json:"assigned_to"`
	CreatedBy          uint64              `json:"created_by"`
	Progress           int                 `json:"progress"`
	Attachments        []string            `json:"attachments"`
	TodoTotalCount     int64               `json:"todo_total_count"`
	CompletedTodoCount int64               `json:"completed_todo_count"`
	Creator            *UserDTO            `json:"creator,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO        `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		AssignedTo:  concreteIDs(task.AssignedTo),
		CreatedBy:   task.CreatedBy,
		Progress:    task.Progress,
		Attachments: concreteStrings(task.Attachments),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	if len(task.Todos) > 0 {
		todos := make([]TodoItemDTO, len(task.Todos))
		for i, item := range task.Todos {
			todos[i] = TodoItemDTO{
				ID:        item.ID,
				Text:      item.Text,
				Completed: item.Completed,
				SortOrder: item.SortOrder,
			}
		}
		sort.SliceStable(todos, func(i, j int) bool {
			return todos[i].SortOrder < todos[j].SortOrder
		})
		dto.Todos = todos
	}

	if len(task.Files) > 0 {
		files := make([]TaskFileDTO, len(task.Files))
		for i, f := range task.Files {
			files[i] = ToTaskFileDTO(f)
		}
		dto.Files = files
	}

	return dto
}

// ToTaskListItemDTO converts a repository row to its list response shape
func ToTaskListItemDTO(row repository.TaskRow) TaskListItemDTO {
	dto := TaskListItemDTO{
		ID:                 row.ID,
		Title:              row.Title,
		Description:        row.Description,
		Priority:           row.Priority,
		Status:             row.Status,
		DueDate:            row.DueDate,
		AssignedTo:         concreteIDs(row.AssignedTo),
		CreatedBy:          row.CreatedBy,
		Progress:           row.Progress,
		Attachments:        concreteStrings(row.Attachments),
		TodoTotalCount:     row.TodoTotalCount,
		CompletedTodoCount: row.CompletedTodoCount,
	}

	if row.Creator.ID != 0 {
		creator := ToUserDTO(row.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToTaskListResponse converts repository rows to the list response
func ToTaskListResponse(rows []repository.TaskRow, pagination utils.PaginationResponse) TaskListResponse {
	items := make([]TaskListItemDTO, len(rows))
	for i, row := range rows {
		items[i] = ToTaskListItemDTO(row)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: pagination,
	}
}

func concreteIDs(ids models.UserIDList) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}

func concreteStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
