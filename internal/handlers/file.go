package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skmtks/taskboard-api/internal/dto"
	apierrors "github.com/skmtks/taskboard-api/internal/errors"
	"github.com/skmtks/taskboard-api/internal/middleware"
	"github.com/skmtks/taskboard-api/internal/services"
)

// FileHandler coordinates the task attachment endpoints.
type FileHandler struct {
	fileService *services.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// Upload accepts a multipart upload and records it against the task.
// Optional tags arrive as a comma-separated form value.
func (h *FileHandler) Upload(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "A file is required")
		return
	}

	src, err := header.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}
	defer src.Close()

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	file, err := h.fileService.Upload(principal, taskID, services.UploadInput{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Content:      src,
		Tags:         tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskFileDTO(*file))
}

// ListFiles returns a task's attachment metadata
func (h *FileHandler) ListFiles(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	files, err := h.fileService.ListFiles(principal, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.TaskFileDTO, len(files))
	for i, f := range files {
		out[i] = dto.ToTaskFileDTO(f)
	}

	c.JSON(http.StatusOK, gin.H{"files": out})
}

// Download streams the stored blob with its original name
func (h *FileHandler) Download(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "file_id")
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(principal, taskID, fileID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.FileAttachment(file.StoragePath, file.OriginalName)
}

// UpdateTags replaces an attachment's tag list
func (h *FileHandler) UpdateTags(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "file_id")
	if !ok {
		return
	}

	type UpdateTagsRequest struct {
		Tags []string `json:"tags"`
	}

	var req UpdateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	file, err := h.fileService.UpdateTags(principal, taskID, fileID, req.Tags)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskFileDTO(*file))
}

// DeleteFile removes an attachment
func (h *FileHandler) DeleteFile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "file_id")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(principal, taskID, fileID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
