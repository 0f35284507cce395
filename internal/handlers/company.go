package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	apierrors "github.com/skmtks/taskboard-api/internal/errors"
	"github.com/skmtks/taskboard-api/internal/middleware"
	"github.com/skmtks/taskboard-api/internal/services"
)

// CompanyHandler coordinates the company profile endpoints.
type CompanyHandler struct {
	companyService *services.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// GetCompany returns the profile
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.companyService.GetCompany()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// UpdateCompany creates or replaces the profile. Admin only.
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateCompanyRequest struct {
		Name        string         `json:"name" binding:"required"`
		Email       string         `json:"email"`
		Phone       string         `json:"phone"`
		Website     string         `json:"website"`
		Address     string         `json:"address"`
		SocialLinks datatypes.JSON `json:"social_links"`
		Metadata    datatypes.JSON `json:"metadata"`
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	company, err := h.companyService.UpdateCompany(principal, services.UpdateCompanyInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		SocialLinks: req.SocialLinks,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}
