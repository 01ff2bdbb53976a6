package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrDuplicateEmail     = errors.New("email already exists")

	// Workflow engine errors. All are recoverable by the caller; none abort
	// the process and none leave a partially-applied transition behind.
	ErrOutOfOrder       = errors.New("prerequisite stage has not been approved")
	ErrAlreadyLocked    = errors.New("form is locked and cannot be mutated")
	ErrFormRejected     = errors.New("form has been rejected; pipeline halted")
	ErrFormCompleted    = errors.New("form has been completed outside the main pipeline")
	ErrIncompleteData   = errors.New("required field missing before approval")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidAction    = errors.New("action not permitted for this stage")
	ErrInsufficientRole = errors.New("actor role does not match the stage")
	ErrFormNotFound     = errors.New("form not found")
	ErrFormConflict     = errors.New("form was modified concurrently")

	// Delivery sub-workflow errors.
	ErrDeliveryNotReady      = errors.New("form has no delivery state yet")
	ErrDeliveryNotSelectable = errors.New("delivery preference can no longer be set")
	ErrEscalationNotDue      = errors.New("delivery escalation window has not elapsed")

	// Attachment errors.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
