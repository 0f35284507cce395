package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/skmtks/taskboard-api/internal/errors"
	"github.com/skmtks/taskboard-api/internal/middleware"
	"github.com/skmtks/taskboard-api/internal/services"
)

// ReportHandler serves the CSV exports.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// ExportTasks returns all tasks as a CSV attachment
func (h *ReportHandler) ExportTasks(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportTasksCSV(principal, &buf); err != nil {
		respondServiceError(c, err)
		return
	}

	respondCSV(c, "tasks", buf.Bytes())
}

// ExportUsers returns all users as a CSV attachment
func (h *ReportHandler) ExportUsers(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportUsersCSV(principal, &buf); err != nil {
		respondServiceError(c, err)
		return
	}

	respondCSV(c, "users", buf.Bytes())
}

func respondCSV(c *gin.Context, name string, body []byte) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", body)
}
