package services

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/skmtks/taskboard-api/internal/models"
)

// ChecklistState is a task's status and progress derived from its checklist.
type ChecklistState struct {
	Status   models.TaskStatus
	Progress int
}

// TruthyCompleted normalizes the loose encodings a completed flag arrives
// in: boolean true, number 1, "1", and "true" all count as completed.
func TruthyCompleted(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	case json.Number:
		n, err := t.Int64()
		return err == nil && n == 1
	case string:
		return t == "1" || strings.EqualFold(t, "true")
	}
	return false
}

// DeriveChecklistState computes a task's status and progress from its
// checklist. An empty checklist derives Pending/0; all items completed
// derives Completed/100; anything in between derives In Progress with a
// rounded percentage.
func DeriveChecklistState(items []models.TodoItem) ChecklistState {
	total := len(items)
	if total == 0 {
		return ChecklistState{Status: models.StatusPending, Progress: 0}
	}

	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}

	progress := int(math.Round(100 * float64(done) / float64(total)))

	var status models.TaskStatus
	switch {
	case done == total:
		status = models.StatusCompleted
	case done > 0:
		status = models.StatusInProgress
	default:
		status = models.StatusPending
	}

	return ChecklistState{Status: status, Progress: progress}
}
