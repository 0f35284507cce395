package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/policy"
	"github.com/skmtks/taskboard-api/internal/repository"
)

var (
	ErrCompanyNotFound     = errors.New("company profile not set up")
	ErrCompanyNameRequired = errors.New("company name is required")
)

// CompanyService manages the singleton company profile.
type CompanyService struct {
	companyRepo repository.CompanyRepository
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo repository.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// GetCompany returns the profile. Any authenticated user may read it.
func (s *CompanyService) GetCompany() (*models.Company, error) {
	company, err := s.companyRepo.Get()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to load company profile: %w", err)
	}
	return company, nil
}

// UpdateCompanyInput carries the writable profile fields.
type UpdateCompanyInput struct {
	Name        string
	Email       string
	Phone       string
	Website     string
	Address     string
	SocialLinks datatypes.JSON
	Metadata    datatypes.JSON
}

// UpdateCompany creates or replaces the profile. Admin only.
func (s *CompanyService) UpdateCompany(p policy.Principal, input UpdateCompanyInput) (*models.Company, error) {
	if !p.IsAdmin() {
		return nil, ErrUserForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCompanyNameRequired
	}

	company := &models.Company{
		Name:        name,
		Email:       NormalizeEmail(input.Email),
		Phone:       input.Phone,
		Website:     input.Website,
		Address:     input.Address,
		SocialLinks: input.SocialLinks,
		Metadata:    input.Metadata,
	}

	if err := s.companyRepo.Save(company); err != nil {
		return nil, fmt.Errorf("failed to save company profile: %w", err)
	}

	return company, nil
}
