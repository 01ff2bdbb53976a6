package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deedflow/internal/domain"
	"deedflow/internal/port"
	"deedflow/internal/service"
	"deedflow/internal/xlsxexport"
)

// registerExportLimit caps how many forms one workbook may contain.
const registerExportLimit = 10000

// ReportHandler handles staff reporting endpoints.
type ReportHandler struct {
	formService service.FormService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(formService service.FormService) *ReportHandler {
	return &ReportHandler{formService: formService}
}

// ExportRegister handles GET /api/v1/reports/register; streams the form
// register workbook, optionally filtered by status and service type.
func (h *ReportHandler) ExportRegister(c *gin.Context) {
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

	var forms []domain.Form
	for page := 1; len(forms) < registerExportLimit; page++ {
		batch, total, err := h.formService.List(c.Request.Context(), actor, filter, page, 100)
		if err != nil {
			HandleError(c, err)
			return
		}
		forms = append(forms, batch...)
		if len(batch) == 0 || len(forms) >= total {
			break
		}
	}
	if len(forms) > registerExportLimit {
		forms = forms[:registerExportLimit]
	}

	filename := xlsxexport.BuildFilename("form_register")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := xlsxexport.WriteForms(c.Writer, forms); err != nil {
		// Headers are already out; nothing useful left to send.
		_ = c.Error(err)
	}
}
