// Package policy holds the authorization rules for tasks as pure predicates
// over an explicit principal. Nothing here touches the database: callers load
// the task first and hand in a snapshot.
package policy

import (
	"github.com/skmtks/taskboard-api/internal/models"
)

// Principal is the acting identity, resolved by the auth middleware.
type Principal struct {
	ID   uint64
	Role models.UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Field names accepted by the full-update path.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldDueDate     = "due_date"
	FieldAssignedTo  = "assigned_to"
	FieldAttachments = "attachments"
	FieldProgress    = "progress"
)

// memberMutableFields is the restricted subset an assignee or creator may
// patch; admins may patch any recognized field.
var memberMutableFields = map[string]bool{
	FieldDescription: true,
	FieldAttachments: true,
	FieldProgress:    true,
}

var recognizedFields = map[string]bool{
	FieldTitle:       true,
	FieldDescription: true,
	FieldPriority:    true,
	FieldStatus:      true,
	FieldDueDate:     true,
	FieldAssignedTo:  true,
	FieldAttachments: true,
	FieldProgress:    true,
}

// RecognizedField reports whether name is a field the update path accepts.
func RecognizedField(name string) bool {
	return recognizedFields[name]
}

// CanAccessTask reports whether the principal may read the task or work with
// its files: admins always, otherwise assignees and the creator.
func CanAccessTask(p Principal, task *models.Task) bool {
	if task == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return task.AssignedTo.Contains(p.ID) || task.CreatedBy == p.ID
}

// CanMutateTaskField reports whether the principal may patch the named field
// on the task. Unrecognized fields are denied for everyone.
func CanMutateTaskField(p Principal, task *models.Task, field string) bool {
	if task == nil || !recognizedFields[field] {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	if !task.AssignedTo.Contains(p.ID) && task.CreatedBy != p.ID {
		return false
	}
	return memberMutableFields[field]
}

// CanUpdateTaskStatus reports whether the principal may use the dedicated
// status-update operation. Only admins and assignees qualify; a creator who
// is not assigned cannot, even though the full-update path lets them patch
// progress.
func CanUpdateTaskStatus(p Principal, task *models.Task) bool {
	if task == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return task.AssignedTo.Contains(p.ID)
}

// CanManageTasks reports whether the principal may create or delete tasks.
func CanManageTasks(p Principal) bool {
	return p.IsAdmin()
}
