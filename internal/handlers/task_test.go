package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skmtks/taskboard-api/internal/constants"
	"github.com/skmtks/taskboard-api/internal/database"
	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/policy"
	"github.com/skmtks/taskboard-api/internal/repository"
	"github.com/skmtks/taskboard-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TodoItem{},
		&models.TaskFile{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	fileRepo := repository.NewFileRepository(suite.db)
	taskService := services.NewTaskService(taskRepo, userRepo, fileRepo, zap.NewNop())
	suite.handler = NewTaskHandler(taskService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID uint64, assignees ...uint64) *models.Task {
	task := &models.Task{
		Title:      title,
		Priority:   models.PriorityMedium,
		Status:     models.StatusPending,
		DueDate:    time.Now().Add(24 * time.Hour),
		AssignedTo: models.UserIDList(assignees),
		CreatedBy:  creatorID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyPrincipal, policy.Principal{ID: user.ID, Role: user.Role})
	}

	return c, w
}

func (suite *TaskHandlerTestSuite) setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	task := suite.createTestTask("Visible Task", admin.ID, member.ID)
	suite.createTestTask("Hidden Task", admin.ID, admin.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, member)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	suite.Require().Len(tasks, 1)

	firstTask := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, firstTask["title"])
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	c, w := suite.createAuthContext("GET", "/api/tasks", nil, nil)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestListTasks_InvalidAssignedTo tests a malformed assigned_to filter
func (suite *TaskHandlerTestSuite) TestListTasks_InvalidAssignedTo() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, admin)
	c.Request.URL.RawQuery = "assigned_to=bob"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetTask_Success tests successful task retrieval
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	task := suite.createTestTask("Test Task", admin.ID, member.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, member)
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.Title, response["title"])
}

// TestGetTask_Forbidden tests retrieval by an unrelated member
func (suite *TaskHandlerTestSuite) TestGetTask_Forbidden() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	outsider := suite.createTestUser("outsider@example.com", models.RoleMember)
	task := suite.createTestTask("Private Task", admin.ID, admin.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, outsider)
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestGetTask_NotFound tests retrieval of a missing task
func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	c, w := suite.createAuthContext("GET", "/api/tasks/9999", nil, admin)
	suite.setIDParam(c, 9999)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestCreateTask_Success tests successful task creation with a checklist
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
		"due_date":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"assigned_to": []uint64{member.ID},
		"todos": []map[string]interface{}{
			{"text": "First step", "completed": true},
			{"text": "Second step", "completed": "0"},
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response["title"])
	assert.Equal(suite.T(), string(models.StatusInProgress), response["status"])
	assert.Equal(suite.T(), float64(50), response["progress"])
}

// TestCreateTask_MemberForbidden tests creation by a non-admin
func (suite *TaskHandlerTestSuite) TestCreateTask_MemberForbidden() {
	member := suite.createTestUser("member@example.com", models.RoleMember)

	requestBody := map[string]interface{}{
		"title":    "New Task",
		"due_date": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, member)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestCreateTask_MissingDueDate tests creation without the required due date
func (suite *TaskHandlerTestSuite) TestCreateTask_MissingDueDate() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	requestBody := map[string]interface{}{
		"title": "New Task",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_MemberDescription tests a member patching an allowed field
func (suite *TaskHandlerTestSuite) TestUpdateTask_MemberDescription() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	task := suite.createTestTask("Assigned", admin.ID, member.ID)

	requestBody := map[string]interface{}{
		"description": "Progress notes",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, member)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Progress notes", response["description"])
}

// TestUpdateTask_MemberTitleForbidden tests a member patching a restricted field
func (suite *TaskHandlerTestSuite) TestUpdateTask_MemberTitleForbidden() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	task := suite.createTestTask("Assigned", admin.ID, member.ID)

	requestBody := map[string]interface{}{
		"title": "Hijacked",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, member)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestUpdateTask_StringAssigneeIDs tests that assignee IDs sent as strings
// are accepted
func (suite *TaskHandlerTestSuite) TestUpdateTask_StringAssigneeIDs() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	task := suite.createTestTask("Assigned", admin.ID)

	requestBody := map[string]interface{}{
		"assigned_to": []string{strconv.FormatUint(member.ID, 10)},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, admin)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assigned := response["assigned_to"].([]interface{})
	suite.Require().Len(assigned, 1)
	assert.Equal(suite.T(), float64(member.ID), assigned[0])
}

// TestUpdateTask_InvalidBody tests a malformed body
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidBody() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	task := suite.createTestTask("Task", admin.ID)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", []byte("invalid json"), admin)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateStatus_Success tests the dedicated status path
func (suite *TaskHandlerTestSuite) TestUpdateStatus_Success() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	task := suite.createTestTask("Assigned", admin.ID, member.ID)

	requestBody := map[string]interface{}{
		"status":   string(models.StatusInProgress),
		"progress": 30,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/status", body, member)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), string(models.StatusInProgress), response["status"])
	assert.Equal(suite.T(), float64(30), response["progress"])
}

// TestUpdateStatus_ChecklistManaged tests the rejection while a checklist exists
func (suite *TaskHandlerTestSuite) TestUpdateStatus_ChecklistManaged() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	task := suite.createTestTask("Managed", admin.ID, admin.ID)
	suite.db.Create(&models.TodoItem{TaskID: task.ID, Text: "Item"})

	requestBody := map[string]interface{}{
		"status": string(models.StatusCompleted),
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/status", body, admin)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateStatus(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateStatus_CreatorNotAssignee tests the creator exclusion on the
// status path
func (suite *TaskHandlerTestSuite) TestUpdateStatus_CreatorNotAssignee() {
	creator := suite.createTestUser("creator@example.com", models.RoleMember)
	other := suite.createTestUser("other@example.com", models.RoleMember)
	task := suite.createTestTask("Created Only", creator.ID, other.ID)

	requestBody := map[string]interface{}{
		"status": string(models.StatusCompleted),
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1/status", body, creator)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateStatus(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestUpdateChecklist_Success tests replacing the checklist
func (suite *TaskHandlerTestSuite) TestUpdateChecklist_Success() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	task := suite.createTestTask("Managed", admin.ID, admin.ID)

	requestBody := map[string]interface{}{
		"todos": []map[string]interface{}{
			{"text": "First", "completed": true},
			{"text": "Second", "completed": 1},
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1/todos", body, admin)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateChecklist(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), string(models.StatusCompleted), response["status"])
	assert.Equal(suite.T(), float64(100), response["progress"])
}

// TestDeleteTask_Success tests successful task deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	task := suite.createTestTask("Task to Delete", admin.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, admin)
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Task deleted successfully", response["message"])

	// Verify task is deleted
	var deletedTask models.Task
	err = suite.db.First(&deletedTask, task.ID).Error
	assert.Error(suite.T(), err)
}

// TestDeleteTask_MemberForbidden tests deletion by a non-admin
func (suite *TaskHandlerTestSuite) TestDeleteTask_MemberForbidden() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	member := suite.createTestUser("member@example.com", models.RoleMember)
	task := suite.createTestTask("Task to Delete", admin.ID, member.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, member)
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
