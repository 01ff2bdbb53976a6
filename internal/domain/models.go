package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actor identifies who is performing a workflow action. Staff surfaces pass
// it explicitly on every call; the engine checks the role against the stage.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role UserRole  `json:"role"`
}

// ApprovalRecord is the outcome a stage wrote for one pass of a form.
type ApprovalRecord struct {
	Approved   bool               `json:"approved"`
	VerifiedAt *time.Time         `json:"verified_at"`
	Notes      string             `json:"notes"`
	VerifiedBy *uuid.UUID         `json:"verified_by"`
	Aspect     VerificationAspect `json:"aspect,omitempty"`
}

// AdminNote is one entry of the append-only audit note trail on a form.
type AdminNote struct {
	AddedBy uuid.UUID `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
	Note    string    `json:"note"`
}

// Delivery is the sub-state tracking how the generated document reaches the
// applicant. It exists only once staff5 has locked the form.
type Delivery struct {
	Status             DeliveryStatus `json:"status"`
	Method             DeliveryMethod `json:"method,omitempty"`
	Address            string         `json:"address,omitempty"`
	Phone              string         `json:"phone,omitempty"`
	Email              string         `json:"email,omitempty"`
	ReadyForDeliveryAt time.Time      `json:"ready_for_delivery_at"`
	SelectedAt         *time.Time     `json:"selected_at,omitempty"`
	SelectedBy         *uuid.UUID     `json:"selected_by,omitempty"`
	DecidedAt          *time.Time     `json:"decided_at,omitempty"`
	DecidedBy          *uuid.UUID     `json:"decided_by,omitempty"`
	DispatchedAt       *time.Time     `json:"dispatched_at,omitempty"`
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty"`
	EscalatedAt        *time.Time     `json:"escalated_at,omitempty"`
}

// Form is the aggregate root of the approval pipeline. Status and Approvals
// are mutated only through the workflow engine; everything else is audit
// metadata kept current on every mutation.
type Form struct {
	ID             uuid.UUID                   `json:"id"`
	ServiceType    ServiceType                 `json:"service_type"`
	SubmittedBy    uuid.UUID                   `json:"submitted_by"`
	Fields         map[string]string           `json:"fields"`
	Status         FormStatus                  `json:"status"`
	Approvals      map[StageKey]ApprovalRecord `json:"approvals"`
	AdminNotes     []AdminNote                 `json:"admin_notes"`
	Delivery       *Delivery                   `json:"delivery,omitempty"`
	Version        int64                       `json:"version"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	LastActivityAt time.Time                   `json:"last_activity_at"`
	LastActivityBy uuid.UUID                   `json:"last_activity_by"`
}

// StageApproved reports whether a stage has an approved record.
func (f *Form) StageApproved(key StageKey) bool {
	rec, ok := f.Approvals[key]
	return ok && rec.Approved
}

// Clone returns a deep copy of the form so the engine can mutate a working
// copy and leave the caller's value untouched on failed transitions.
func (f *Form) Clone() *Form {
	out := *f
	out.Fields = make(map[string]string, len(f.Fields))
	for k, v := range f.Fields {
		out.Fields[k] = v
	}
	out.Approvals = make(map[StageKey]ApprovalRecord, len(f.Approvals))
	for k, v := range f.Approvals {
		out.Approvals[k] = v
	}
	out.AdminNotes = append([]AdminNote(nil), f.AdminNotes...)
	if f.Delivery != nil {
		d := *f.Delivery
		out.Delivery = &d
	}
	return &out
}

// User represents an authenticated account (applicant, agent, staff, admin).
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about an uploaded supporting document.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FormID       *uuid.UUID `db:"form_id" json:"form_id"`
	UploadedBy   uuid.UUID  `db:"uploaded_by" json:"uploaded_by"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AuditAction identifies the kind of mutation recorded in the form audit log.
type AuditAction string

const (
	AuditFormCreated          AuditAction = "form_created"
	AuditFormSubmitted        AuditAction = "form_submitted"
	AuditFormResubmitted      AuditAction = "form_resubmitted"
	AuditStageApproved        AuditAction = "stage_approved"
	AuditStageRejected        AuditAction = "stage_rejected"
	AuditCorrectionRequested  AuditAction = "correction_requested"
	AuditFieldsCorrected      AuditAction = "fields_corrected"
	AuditFinalDone            AuditAction = "final_done"
	AuditFormLocked           AuditAction = "form_locked"
	AuditNoteAdded            AuditAction = "note_added"
	AuditDeliverySelected     AuditAction = "delivery_selected"
	AuditDeliveryDecided      AuditAction = "delivery_decided"
	AuditDeliveryDispatched   AuditAction = "delivery_dispatched"
	AuditDeliveryDelivered    AuditAction = "delivery_delivered"
	AuditDeliveryEscalated    AuditAction = "delivery_escalated"
	AuditAttachmentUploaded   AuditAction = "attachment_uploaded"
)

// FormAuditEntry is one row of the immutable form audit log.
type FormAuditEntry struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FormID    uuid.UUID  `db:"form_id" json:"form_id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id"`
	Action    string     `db:"action" json:"action"`
	Changes   []byte     `db:"changes" json:"changes"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
