package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// UserIDList is a JSON array column of user IDs. Scanning normalizes the
// stored representation: elements may be numbers or numeric strings, and a
// NULL column scans to an empty list, so consumers only ever see []uint64.
type UserIDList []uint64

func (l UserIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UserIDList{}
	}
	return json.Marshal(l)
}

func (l *UserIDList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = UserIDList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported assigned_to column type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*l = UserIDList{}
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return fmt.Errorf("malformed assigned_to column: %w", err)
	}

	out := make(UserIDList, 0, len(elems))
	for _, e := range elems {
		id, err := parseUserID(e)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

func parseUserID(raw json.RawMessage) (uint64, error) {
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, fmt.Errorf("malformed assigned_to element %s: %w", s, err)
		}
		s = str
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric assigned_to element %q", s)
	}
	return id, nil
}

// Contains reports whether id is a member of the list.
func (l UserIDList) Contains(id uint64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of id removed,
// preserving the relative order of the remaining members. Never nil.
func (l UserIDList) Without(id uint64) UserIDList {
	out := make(UserIDList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type Task struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Priority    TaskPriority                `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	Status      TaskStatus                  `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	DueDate     time.Time                   `gorm:"not null" json:"due_date"`
	AssignedTo  UserIDList                  `gorm:"type:json" json:"assigned_to"`
	CreatedBy   uint64                      `gorm:"not null" json:"created_by"`
	Progress    int                         `gorm:"not null;default:0" json:"progress"`
	Attachments datatypes.JSONSlice[string] `gorm:"type:json" json:"attachments"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Creator User       `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Todos   []TodoItem `gorm:"foreignKey:TaskID" json:"todos,omitempty"`
	Files   []TaskFile `gorm:"foreignKey:TaskID" json:"files,omitempty"`
}
