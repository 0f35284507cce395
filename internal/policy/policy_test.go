package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skmtks/taskboard-api/internal/models"
)

func adminPrincipal() Principal {
	return Principal{ID: 1, Role: models.RoleAdmin}
}

func memberPrincipal(id uint64) Principal {
	return Principal{ID: id, Role: models.RoleMember}
}

func sampleTask(createdBy uint64, assignees ...uint64) *models.Task {
	return &models.Task{
		ID:         42,
		Title:      "Sample",
		CreatedBy:  createdBy,
		AssignedTo: models.UserIDList(assignees),
	}
}

func TestCanAccessTask(t *testing.T) {
	task := sampleTask(10, 20, 21)

	assert.True(t, CanAccessTask(adminPrincipal(), task), "admin can access any task")
	assert.True(t, CanAccessTask(memberPrincipal(20), task), "assignee can access")
	assert.True(t, CanAccessTask(memberPrincipal(10), task), "creator can access")
	assert.False(t, CanAccessTask(memberPrincipal(99), task), "unrelated member cannot access")
	assert.False(t, CanAccessTask(adminPrincipal(), nil), "nil task is never accessible")
}

func TestCanMutateTaskField_Admin(t *testing.T) {
	task := sampleTask(10, 20)
	admin := adminPrincipal()

	for _, field := range []string{
		FieldTitle, FieldDescription, FieldPriority, FieldStatus,
		FieldDueDate, FieldAssignedTo, FieldAttachments, FieldProgress,
	} {
		assert.True(t, CanMutateTaskField(admin, task, field), "admin can patch %s", field)
	}

	assert.False(t, CanMutateTaskField(admin, task, "owner"), "unrecognized field is denied even for admins")
}

func TestCanMutateTaskField_Assignee(t *testing.T) {
	task := sampleTask(10, 20)
	assignee := memberPrincipal(20)

	assert.True(t, CanMutateTaskField(assignee, task, FieldDescription))
	assert.True(t, CanMutateTaskField(assignee, task, FieldAttachments))
	assert.True(t, CanMutateTaskField(assignee, task, FieldProgress))

	assert.False(t, CanMutateTaskField(assignee, task, FieldTitle))
	assert.False(t, CanMutateTaskField(assignee, task, FieldPriority))
	assert.False(t, CanMutateTaskField(assignee, task, FieldStatus))
	assert.False(t, CanMutateTaskField(assignee, task, FieldDueDate))
	assert.False(t, CanMutateTaskField(assignee, task, FieldAssignedTo))
}

func TestCanMutateTaskField_Creator(t *testing.T) {
	// Creator who is not assigned gets the same restricted subset as an assignee.
	task := sampleTask(10, 20)
	creator := memberPrincipal(10)

	assert.True(t, CanMutateTaskField(creator, task, FieldDescription))
	assert.True(t, CanMutateTaskField(creator, task, FieldProgress))
	assert.False(t, CanMutateTaskField(creator, task, FieldTitle))
	assert.False(t, CanMutateTaskField(creator, task, FieldStatus))
}

func TestCanMutateTaskField_Unrelated(t *testing.T) {
	task := sampleTask(10, 20)
	other := memberPrincipal(99)

	assert.False(t, CanMutateTaskField(other, task, FieldDescription))
	assert.False(t, CanMutateTaskField(other, task, FieldProgress))
}

func TestCanUpdateTaskStatus(t *testing.T) {
	task := sampleTask(10, 20)

	assert.True(t, CanUpdateTaskStatus(adminPrincipal(), task))
	assert.True(t, CanUpdateTaskStatus(memberPrincipal(20), task))

	// The creator does not get the dedicated status path unless also assigned.
	assert.False(t, CanUpdateTaskStatus(memberPrincipal(10), task))
	assert.False(t, CanUpdateTaskStatus(memberPrincipal(99), task))
	assert.False(t, CanUpdateTaskStatus(adminPrincipal(), nil))
}

func TestCanUpdateTaskStatus_AssignedCreator(t *testing.T) {
	task := sampleTask(10, 10, 20)

	assert.True(t, CanUpdateTaskStatus(memberPrincipal(10), task))
}

func TestCanManageTasks(t *testing.T) {
	assert.True(t, CanManageTasks(adminPrincipal()))
	assert.False(t, CanManageTasks(memberPrincipal(5)))
}

func TestRecognizedField(t *testing.T) {
	assert.True(t, RecognizedField(FieldTitle))
	assert.True(t, RecognizedField(FieldProgress))
	assert.False(t, RecognizedField("id"))
	assert.False(t, RecognizedField(""))
}
