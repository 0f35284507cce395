package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/policy"
	"github.com/skmtks/taskboard-api/internal/repository"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrFileNameRequired = errors.New("file name is required")
)

// FileService handles task attachment uploads and metadata.
type FileService struct {
	taskRepo  repository.TaskRepository
	fileRepo  repository.FileRepository
	uploadDir string
	logger    *zap.Logger
}

// NewFileService creates a new FileService storing blobs under uploadDir.
func NewFileService(taskRepo repository.TaskRepository, fileRepo repository.FileRepository, uploadDir string, logger *zap.Logger) *FileService {
	return &FileService{
		taskRepo:  taskRepo,
		fileRepo:  fileRepo,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// UploadInput carries one incoming attachment.
type UploadInput struct {
	OriginalName string
	MimeType     string
	Content      io.Reader
	Tags         []string
}

// Upload stores the blob under a generated name and records its metadata.
// Anyone who can access the task can attach files to it.
func (s *FileService) Upload(p policy.Principal, taskID uint64, input UploadInput) (*models.TaskFile, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTask(p, task) {
		return nil, ErrTaskForbidden
	}

	if input.OriginalName == "" {
		return nil, ErrFileNameRequired
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	storedName := uuid.NewString() + filepath.Ext(input.OriginalName)
	storagePath := filepath.Join(s.uploadDir, storedName)

	dst, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob: %w", err)
	}

	hasher := sha256.New()
	written, err := io.Copy(dst, io.TeeReader(input.Content, hasher))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	file := &models.TaskFile{
		TaskID:       taskID,
		OriginalName: input.OriginalName,
		StoredName:   storedName,
		MimeType:     input.MimeType,
		SizeBytes:    written,
		StoragePath:  storagePath,
		UploadedBy:   p.ID,
		Tags:         datatypes.JSONSlice[string](tags),
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	}

	if err := s.fileRepo.Create(file); err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to record file metadata: %w", err)
	}

	return file, nil
}

// ListFiles returns a task's attachment metadata.
func (s *FileService) ListFiles(p policy.Principal, taskID uint64) ([]models.TaskFile, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTask(p, task) {
		return nil, ErrTaskForbidden
	}

	files, err := s.fileRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// GetFile returns one attachment's metadata, for download.
func (s *FileService) GetFile(p policy.Principal, taskID, fileID uint64) (*models.TaskFile, error) {
	task, err := s.loadTask(taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTask(p, task) {
		return nil, ErrTaskForbidden
	}

	file, err := s.fileRepo.FindByID(taskID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to find file: %w", err)
	}
	return file, nil
}

// UpdateTags replaces an attachment's tag list.
func (s *FileService) UpdateTags(p policy.Principal, taskID, fileID uint64, tags []string) (*models.TaskFile, error) {
	file, err := s.GetFile(p, taskID, fileID)
	if err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}
	file.Tags = datatypes.JSONSlice[string](tags)

	if err := s.fileRepo.Update(file); err != nil {
		return nil, fmt.Errorf("failed to update tags: %w", err)
	}
	return file, nil
}

// DeleteFile removes the metadata row, then unlinks the blob best-effort.
func (s *FileService) DeleteFile(p policy.Principal, taskID, fileID uint64) error {
	file, err := s.GetFile(p, taskID, fileID)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Delete(taskID, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if err := os.Remove(file.StoragePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove attachment blob",
			zap.String("path", file.StoragePath),
			zap.Error(err))
	}

	return nil
}

func (s *FileService) loadTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
