package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deedflow/internal/service"
)

// FileHandler handles attachment upload and download endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /api/v1/files (multipart). An optional form_id field
// links the attachment to a form.
func (h *FileHandler) Upload(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	var formID *uuid.UUID
	if raw := c.PostForm("form_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid form_id")
			return
		}
		formID = &id
	}

	meta, err := h.fileService.Upload(c.Request.Context(), service.FileUploadInput{
		FormID:     formID,
		UploadedBy: actor.ID,
		File:       file,
		Header:     header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, meta)
}

// Get handles GET /api/v1/files/:id
func (h *FileHandler) Get(c *gin.Context) {
	fileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	meta, err := h.fileService.GetByID(c.Request.Context(), fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, meta)
}

// ListByForm handles GET /api/v1/forms/:id/files
func (h *FileHandler) ListByForm(c *gin.Context) {
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	metas, err := h.fileService.ListByForm(c.Request.Context(), formID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, metas)
}

// DownloadURL handles GET /api/v1/files/:id/download
func (h *FileHandler) DownloadURL(c *gin.Context) {
	fileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.fileService.GetDownloadURL(c.Request.Context(), fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	fileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), fileID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "file deleted"})
}
