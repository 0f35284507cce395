package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skmtks/taskboard-api/internal/dto"
	apierrors "github.com/skmtks/taskboard-api/internal/errors"
	"github.com/skmtks/taskboard-api/internal/middleware"
	"github.com/skmtks/taskboard-api/internal/services"
	"github.com/skmtks/taskboard-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// TodoItemRequest is one checklist entry as sent by clients. Completed is
// left loose on purpose: true, 1, "1", and "true" are all accepted.
type TodoItemRequest struct {
	Text      string      `json:"text" binding:"required"`
	Completed interface{} `json:"completed"`
	SortOrder int         `json:"sort_order"`
}

func toTodoInputs(reqs []TodoItemRequest) []services.TodoItemInput {
	items := make([]services.TodoItemInput, len(reqs))
	for i, r := range reqs {
		items[i] = services.TodoItemInput{
			Text:      r.Text,
			Completed: services.TruthyCompleted(r.Completed),
			SortOrder: r.SortOrder,
		}
	}
	return items
}

// ListTasks returns the tasks visible to the current user, filtered and
// paginated. Unknown status/priority filter values are ignored.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Limit:    params.Limit,
		Offset:   params.Offset,
	}

	if raw := c.Query("due_from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_from")
			return
		}
		input.DueFrom = &t
	}
	if raw := c.Query("due_to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_to")
			return
		}
		input.DueTo = &t
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to")
			return
		}
		input.AssignedTo = &id
	}

	rows, total, err := h.taskService.ListTasks(principal, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(rows, utils.PaginationResponse{
		Limit:  params.Limit,
		Offset: params.Offset,
		Total:  total,
	}))
}

// GetTask returns a single task with its checklist and files
func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(principal, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task. Admin only.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Priority    string            `json:"priority"`
		DueDate     *time.Time        `json:"due_date" binding:"required"`
		AssignedTo  []uint64          `json:"assigned_to"`
		Attachments []string          `json:"attachments"`
		Todos       []TodoItemRequest `json:"todos"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(principal, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		Attachments: req.Attachments,
		Todos:       toTodoInputs(req.Todos),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. The raw body is parsed so only the
// fields actually sent are patched and authorized.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	patch, err := buildTaskPatch(raw)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(principal, taskID, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateStatus is the dedicated status-update path for admins and assignees
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status   string `json:"status" binding:"required"`
		Progress *int   `json:"progress"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(principal, taskID, req.Status, req.Progress)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateChecklist replaces the task's checklist; status and progress are
// re-derived from the new items.
func (h *TaskHandler) UpdateChecklist(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateChecklistRequest struct {
		Todos []TodoItemRequest `json:"todos"`
	}

	var req UpdateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateChecklist(principal, taskID, toTodoInputs(req.Todos))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task. Admin only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(principal, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// buildTaskPatch converts the raw JSON body into a typed field patch.
func buildTaskPatch(raw map[string]interface{}) (services.TaskPatch, error) {
	var patch services.TaskPatch

	if v, ok := raw["title"]; ok {
		s, err := asString(v, "title")
		if err != nil {
			return patch, err
		}
		patch.Title = &s
	}
	if v, ok := raw["description"]; ok {
		s, err := asString(v, "description")
		if err != nil {
			return patch, err
		}
		patch.Description = &s
	}
	if v, ok := raw["priority"]; ok {
		s, err := asString(v, "priority")
		if err != nil {
			return patch, err
		}
		patch.Priority = &s
	}
	if v, ok := raw["status"]; ok {
		s, err := asString(v, "status")
		if err != nil {
			return patch, err
		}
		patch.Status = &s
	}
	if v, ok := raw["due_date"]; ok {
		s, err := asString(v, "due_date")
		if err != nil {
			return patch, err
		}
		t, err := parseDate(s)
		if err != nil {
			return patch, errInvalidField("due_date")
		}
		patch.DueDate = &t
	}
	if v, ok := raw["assigned_to"]; ok {
		ids, err := asUserIDs(v)
		if err != nil {
			return patch, err
		}
		patch.AssignedTo = &ids
	}
	if v, ok := raw["attachments"]; ok {
		values, err := asStrings(v, "attachments")
		if err != nil {
			return patch, err
		}
		patch.Attachments = &values
	}
	if v, ok := raw["progress"]; ok {
		f, ok := v.(float64)
		if !ok {
			return patch, errInvalidField("progress")
		}
		n := int(f)
		patch.Progress = &n
	}

	return patch, nil
}

func asString(v interface{}, field string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errInvalidField(field)
	}
	return s, nil
}

func asStrings(v interface{}, field string) ([]string, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, errInvalidField(field)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errInvalidField(field)
		}
		out = append(out, s)
	}
	return out, nil
}

// asUserIDs accepts both numbers and numeric strings in the assignee list
func asUserIDs(v interface{}) ([]uint64, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, errInvalidField("assigned_to")
	}
	out := make([]uint64, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			if n < 0 {
				return nil, errInvalidField("assigned_to")
			}
			out = append(out, uint64(n))
		case string:
			id, err := strconv.ParseUint(n, 10, 64)
			if err != nil {
				return nil, errInvalidField("assigned_to")
			}
			out = append(out, id)
		default:
			return nil, errInvalidField("assigned_to")
		}
	}
	return out, nil
}

type invalidFieldError string

func errInvalidField(field string) error {
	return invalidFieldError(field)
}

func (e invalidFieldError) Error() string {
	return "Invalid value for " + string(e)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
