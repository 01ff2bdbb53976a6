package xlsxexport

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"deedflow/internal/domain"
)

const sheetName = "Form Register"

// columns defines the register header row.
var columns = []string{
	"Form ID",
	"Service Type",
	"Status",
	"Submitted By",
	"Staff1 Approved",
	"Staff1 At",
	"Staff2 Approved",
	"Staff2 Aspect",
	"Staff3 Approved",
	"Staff3 Aspect",
	"Staff4 Approved",
	"Staff5 Approved",
	"Delivery Status",
	"Delivery Method",
	"Notes Count",
	"Created At",
	"Last Activity At",
}

// WriteForms renders a batch of forms as the xlsx form register and writes
// the workbook to w.
func WriteForms(w io.Writer, forms []domain.Form) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("dropping default sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range forms {
		row := formToRow(&forms[i])
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func formToRow(form *domain.Form) []interface{} {
	row := make([]interface{}, len(columns))
	row[0] = form.ID.String()
	row[1] = string(form.ServiceType)
	row[2] = string(form.Status)
	row[3] = form.SubmittedBy.String()
	row[4] = formatApproved(form, domain.StageStaff1)
	row[5] = formatVerifiedAt(form, domain.StageStaff1)
	row[6] = formatApproved(form, domain.StageStaff2)
	row[7] = formatAspect(form, domain.StageStaff2)
	row[8] = formatApproved(form, domain.StageStaff3)
	row[9] = formatAspect(form, domain.StageStaff3)
	row[10] = formatApproved(form, domain.StageStaff4)
	row[11] = formatApproved(form, domain.StageStaff5)
	if form.Delivery != nil {
		row[12] = string(form.Delivery.Status)
		row[13] = string(form.Delivery.Method)
	} else {
		row[12] = ""
		row[13] = ""
	}
	row[14] = len(form.AdminNotes)
	row[15] = form.CreatedAt.Format(time.RFC3339)
	row[16] = form.LastActivityAt.Format(time.RFC3339)
	return row
}

func formatApproved(form *domain.Form, stage domain.StageKey) string {
	rec, ok := form.Approvals[stage]
	if !ok {
		return ""
	}
	if rec.Approved {
		return "Yes"
	}
	return "No"
}

func formatVerifiedAt(form *domain.Form, stage domain.StageKey) string {
	rec, ok := form.Approvals[stage]
	if !ok || rec.VerifiedAt == nil {
		return ""
	}
	return rec.VerifiedAt.Format(time.RFC3339)
}

func formatAspect(form *domain.Form, stage domain.StageKey) string {
	return string(form.Approvals[stage].Aspect)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a label for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_label}_{YYYY-MM-DD}.xlsx
func BuildFilename(label string) string {
	sanitized := SanitizeFilename(label)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.xlsx", sanitized, date)
}
