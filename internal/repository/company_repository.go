package repository

import (
	"github.com/skmtks/taskboard-api/internal/models"
	"gorm.io/gorm"
)

// GormCompanyRepository is a GORM implementation of CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &GormCompanyRepository{db: db}
}

func (r *GormCompanyRepository) Get() (*models.Company, error) {
	var company models.Company
	if err := r.db.Order("id ASC").First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *GormCompanyRepository) Save(company *models.Company) error {
	if company.ID == 0 {
		// Singleton row: reuse the existing record if one exists.
		var existing models.Company
		if err := r.db.Order("id ASC").First(&existing).Error; err == nil {
			company.ID = existing.ID
			company.CreatedAt = existing.CreatedAt
		}
	}
	return r.db.Save(company).Error
}
