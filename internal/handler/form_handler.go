package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deedflow/internal/domain"
	"deedflow/internal/port"
	"deedflow/internal/service"
)

// FormHandler handles form lifecycle endpoints.
type FormHandler struct {
	formService service.FormService
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// Submit handles POST /api/v1/forms
func (h *FormHandler) Submit(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.SubmitFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.Submit(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, form)
}

// Get handles GET /api/v1/forms/:id
func (h *FormHandler) Get(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	form, err := h.formService.GetByID(c.Request.Context(), actor, formID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// List handles GET /api/v1/forms
func (h *FormHandler) List(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var filter port.FormFilter
	if s := c.Query("status"); s != "" {
		status := domain.FormStatus(s)
		filter.Status = &status
	}
	if s := c.Query("service_type"); s != "" {
		serviceType := domain.ServiceType(s)
		filter.ServiceType = &serviceType
	}
	page, pageSize := pageParams(c)

	forms, total, err := h.formService.List(c.Request.Context(), actor, filter, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, forms, PagMeta{Total: total, Offset: (page - 1) * pageSize, Limit: pageSize})
}

// Queue handles GET /api/v1/forms/queue; each staff role sees the forms
// waiting on its desk.
func (h *FormHandler) Queue(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	forms, total, err := h.formService.StageQueue(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, forms, PagMeta{Total: total, Offset: (page - 1) * pageSize, Limit: pageSize})
}

// Advance handles POST /api/v1/forms/:id/advance
func (h *FormHandler) Advance(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.AdvanceFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.Advance(c.Request.Context(), actor, formID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// finalizeRequest is the body for submitting a saved draft.
type finalizeRequest struct {
	FieldPatches map[string]string `json:"field_patches"`
}

// Finalize handles POST /api/v1/forms/:id/submit; it moves a draft into the
// pipeline after schema validation.
func (h *FormHandler) Finalize(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.FinalizeDraft(c.Request.Context(), actor, formID, req.FieldPatches)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// finalDoneRequest is the body for the staff2 final-done shortcut.
type finalDoneRequest struct {
	Notes string `json:"notes"`
}

// FinalDone handles POST /api/v1/forms/:id/final-done
func (h *FormHandler) FinalDone(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req finalDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.MarkFinalDone(c.Request.Context(), actor, formID, req.Notes)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// resubmitRequest is the body for re-submitting a corrected form.
type resubmitRequest struct {
	FieldPatches map[string]string `json:"field_patches"`
}

// Resubmit handles POST /api/v1/forms/:id/resubmit
func (h *FormHandler) Resubmit(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req resubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.Resubmit(c.Request.Context(), actor, formID, req.FieldPatches)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// noteRequest is the body for appending an admin note.
type noteRequest struct {
	Note string `json:"note" binding:"required"`
}

// AddNote handles POST /api/v1/forms/:id/notes
func (h *FormHandler) AddNote(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.AddNote(c.Request.Context(), actor, formID, req.Note)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// AuditTrail handles GET /api/v1/forms/:id/audit
func (h *FormHandler) AuditTrail(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	entries, total, err := h.formService.AuditTrail(c.Request.Context(), actor, formID, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: (page - 1) * pageSize, Limit: pageSize})
}

func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
