package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deedflow/internal/service"
)

// DeliveryHandler handles the document delivery sub-workflow endpoints.
type DeliveryHandler struct {
	formService service.FormService
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(formService service.FormService) *DeliveryHandler {
	return &DeliveryHandler{formService: formService}
}

// Select handles POST /api/v1/forms/:id/delivery; the applicant chooses how
// the generated document should reach them.
func (h *DeliveryHandler) Select(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.DeliveryChoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.SetDeliveryPreference(c.Request.Context(), actor, formID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// Decide handles POST /api/v1/forms/:id/delivery/decide; staff4 picks the
// method once the applicant's selection window has elapsed.
func (h *DeliveryHandler) Decide(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.DeliveryChoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := h.formService.DecideDelivery(c.Request.Context(), actor, formID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// Dispatch handles POST /api/v1/forms/:id/delivery/dispatch
func (h *DeliveryHandler) Dispatch(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	form, err := h.formService.MarkDispatched(c.Request.Context(), actor, formID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}

// Delivered handles POST /api/v1/forms/:id/delivery/delivered
func (h *DeliveryHandler) Delivered(c *gin.Context) {
	actor, ok := extractAuthContext(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	form, err := h.formService.MarkDelivered(c.Request.Context(), actor, formID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, form)
}
