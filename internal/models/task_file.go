package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskFile is attachment metadata plus a pointer to the stored blob.
// Rows are owned by their task and removed when the task is deleted.
type TaskFile struct {
	ID           uint64                      `gorm:"primarykey" json:"id"`
	TaskID       uint64                      `gorm:"not null;index" json:"task_id"`
	OriginalName string                      `gorm:"type:varchar(255);not null" json:"original_name"`
	StoredName   string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"stored_name"`
	MimeType     string                      `gorm:"type:varchar(100)" json:"mime_type"`
	SizeBytes    int64                       `gorm:"not null" json:"size_bytes"`
	StoragePath  string                      `gorm:"type:varchar(512);not null" json:"-"`
	UploadedBy   uint64                      `gorm:"not null" json:"uploaded_by"`
	Tags         datatypes.JSONSlice[string] `gorm:"type:json" json:"tags"`
	Checksum     string                      `gorm:"type:varchar(64)" json:"checksum"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (TaskFile) TableName() string {
	return "task_files"
}
