package repository

import (
	"github.com/skmtks/taskboard-api/internal/models"
	"gorm.io/gorm"
)

// GormFileRepository is a GORM implementation of FileRepository
type GormFileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *gorm.DB) FileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) Create(file *models.TaskFile) error {
	return r.db.Create(file).Error
}

func (r *GormFileRepository) FindByID(taskID, fileID uint64) (*models.TaskFile, error) {
	var file models.TaskFile
	err := r.db.Where("task_id = ?", taskID).First(&file, fileID).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *GormFileRepository) ListByTask(taskID uint64) ([]models.TaskFile, error) {
	var files []models.TaskFile
	err := r.db.Where("task_id = ?", taskID).Order("id ASC").Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *GormFileRepository) Update(file *models.TaskFile) error {
	return r.db.Save(file).Error
}

func (r *GormFileRepository) Delete(taskID, fileID uint64) error {
	return r.db.Where("task_id = ?", taskID).Delete(&models.TaskFile{}, fileID).Error
}
