package models

import "time"

// TodoItem is one checklist entry belonging to a task.
type TodoItem struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	Text      string    `gorm:"type:varchar(500);not null" json:"text"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TodoItem) TableName() string {
	return "task_todos"
}
