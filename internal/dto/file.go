package dto

import (
	"time"

	"github.com/skmtks/taskboard-api/internal/models"
)

// TaskFileDTO represents attachment metadata in API responses
type TaskFileDTO struct {
	ID           uint64    `json:"id"`
	TaskID       uint64    `json:"task_id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedBy   uint64    `json:"uploaded_by"`
	Tags         []string  `json:"tags"`
	Checksum     string    `json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToTaskFileDTO converts a TaskFile model to TaskFileDTO
func ToTaskFileDTO(file models.TaskFile) TaskFileDTO {
	tags := []string(file.Tags)
	if tags == nil {
		tags = []string{}
	}

	return TaskFileDTO{
		ID:           file.ID,
		TaskID:       file.TaskID,
		OriginalName: file.OriginalName,
		StoredName:   file.StoredName,
		MimeType:     file.MimeType,
		SizeBytes:    file.SizeBytes,
		UploadedBy:   file.UploadedBy,
		Tags:         tags,
		Checksum:     file.Checksum,
		CreatedAt:    file.CreatedAt,
	}
}
