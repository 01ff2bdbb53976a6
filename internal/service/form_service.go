package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"deedflow/internal/domain"
	"deedflow/internal/port"
	"deedflow/internal/validator"
	"deedflow/internal/workflow"
)

// maxConflictRetries bounds the optimistic-concurrency retry loop. Each retry
// re-reads the form and re-runs the engine, so the loser of a race sees the
// winner's state.
const maxConflictRetries = 3

// SubmitFormInput is the DTO for creating a form.
type SubmitFormInput struct {
	ServiceType domain.ServiceType `json:"service_type" binding:"required"`
	Fields      map[string]string  `json:"fields" binding:"required"`
	Draft       bool               `json:"draft"`
}

// AdvanceFormInput is the DTO for one stage action on a form.
type AdvanceFormInput struct {
	Stage        domain.StageKey           `json:"stage" binding:"required"`
	Action       domain.ApprovalAction     `json:"action" binding:"required"`
	Notes        string                    `json:"notes"`
	Aspect       domain.VerificationAspect `json:"aspect"`
	FieldPatches map[string]string         `json:"field_patches"`
}

// DeliveryChoiceInput is the DTO for choosing a delivery method.
type DeliveryChoiceInput struct {
	Method  domain.DeliveryMethod `json:"method" binding:"required"`
	Address string                `json:"address"`
	Phone   string                `json:"phone" binding:"required"`
	Email   string                `json:"email"`
}

// FormService orchestrates the approval pipeline: it owns persistence,
// auditing and collaborator callbacks around the pure workflow engine.
type FormService interface {
	Submit(ctx context.Context, actor domain.Actor, input SubmitFormInput) (*domain.Form, error)
	FinalizeDraft(ctx context.Context, actor domain.Actor, formID uuid.UUID, fieldPatches map[string]string) (*domain.Form, error)
	GetByID(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error)
	List(ctx context.Context, actor domain.Actor, filter port.FormFilter, page, pageSize int) ([]domain.Form, int, error)
	StageQueue(ctx context.Context, actor domain.Actor, page, pageSize int) ([]domain.Form, int, error)
	Advance(ctx context.Context, actor domain.Actor, formID uuid.UUID, input AdvanceFormInput) (*domain.Form, error)
	MarkFinalDone(ctx context.Context, actor domain.Actor, formID uuid.UUID, notes string) (*domain.Form, error)
	Resubmit(ctx context.Context, actor domain.Actor, formID uuid.UUID, fieldPatches map[string]string) (*domain.Form, error)
	AddNote(ctx context.Context, actor domain.Actor, formID uuid.UUID, note string) (*domain.Form, error)
	AuditTrail(ctx context.Context, actor domain.Actor, formID uuid.UUID, page, pageSize int) ([]domain.FormAuditEntry, int, error)

	SetDeliveryPreference(ctx context.Context, actor domain.Actor, formID uuid.UUID, input DeliveryChoiceInput) (*domain.Form, error)
	DecideDelivery(ctx context.Context, actor domain.Actor, formID uuid.UUID, input DeliveryChoiceInput) (*domain.Form, error)
	MarkDispatched(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error)
	MarkDelivered(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error)
}

type formService struct {
	formRepo  port.FormRepository
	auditRepo port.FormAuditRepository
	userRepo  port.UserRepository
	engine    *workflow.Engine
	registry  *validator.Registry
	notifier  port.Notifier
	docGen    port.DocumentGenerator
}

// NewFormService creates a new FormService implementation.
func NewFormService(
	formRepo port.FormRepository,
	auditRepo port.FormAuditRepository,
	userRepo port.UserRepository,
	engine *workflow.Engine,
	registry *validator.Registry,
	notifier port.Notifier,
	docGen port.DocumentGenerator,
) FormService {
	return &formService{
		formRepo:  formRepo,
		auditRepo: auditRepo,
		userRepo:  userRepo,
		engine:    engine,
		registry:  registry,
		notifier:  notifier,
		docGen:    docGen,
	}
}

func (s *formService) Submit(ctx context.Context, actor domain.Actor, input SubmitFormInput) (*domain.Form, error) {
	if !domain.ValidServiceTypes[input.ServiceType] {
		return nil, fmt.Errorf("%w: unknown service type %q", domain.ErrValidation, input.ServiceType)
	}

	status := domain.StatusSubmitted
	if input.Draft {
		status = domain.StatusDraft
	} else {
		v := s.registry.Get(input.ServiceType)
		if v == nil {
			return nil, fmt.Errorf("%w: no schema for service type %q", domain.ErrValidation, input.ServiceType)
		}
		if issues := v.Validate(input.Fields); len(issues) > 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, formatIssues(issues))
		}
	}

	form := &domain.Form{
		ID:             uuid.New(),
		ServiceType:    input.ServiceType,
		SubmittedBy:    actor.ID,
		Fields:         input.Fields,
		Status:         status,
		Approvals:      map[domain.StageKey]domain.ApprovalRecord{},
		LastActivityBy: actor.ID,
	}
	if form.Fields == nil {
		form.Fields = map[string]string{}
	}

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("formService.Submit: %w", err)
	}

	action := domain.AuditFormSubmitted
	if input.Draft {
		action = domain.AuditFormCreated
	}
	s.audit(ctx, form.ID, actor.ID, action, map[string]interface{}{
		"service_type": form.ServiceType,
		"status":       form.Status,
	})
	return form, nil
}

// FinalizeDraft submits a previously saved draft, validating the completed
// fields the same way Submit validates a direct submission.
func (s *formService) FinalizeDraft(ctx context.Context, actor domain.Actor, formID uuid.UUID, fieldPatches map[string]string) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		if err := s.canResubmit(actor, current); err != nil {
			return nil, err
		}
		next, err := s.engine.FinalizeDraft(current, actor, fieldPatches)
		if err != nil {
			return nil, err
		}
		v := s.registry.Get(next.ServiceType)
		if v == nil {
			return nil, fmt.Errorf("%w: no schema for service type %q", domain.ErrValidation, next.ServiceType)
		}
		if issues := v.Validate(next.Fields); len(issues) > 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, formatIssues(issues))
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditFormSubmitted, map[string]interface{}{
		"status": form.Status,
	})
	return form, nil
}

func (s *formService) GetByID(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if err := s.canRead(actor, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *formService) List(ctx context.Context, actor domain.Actor, filter port.FormFilter, page, pageSize int) ([]domain.Form, int, error) {
	offset, limit := paginate(page, pageSize)
	// Applicants and agents only ever see their own submissions.
	if actor.Role == domain.RoleUser || actor.Role == domain.RoleAgent {
		own := actor.ID
		filter.SubmittedBy = &own
	}
	return s.formRepo.List(ctx, filter, offset, limit)
}

func (s *formService) StageQueue(ctx context.Context, actor domain.Actor, page, pageSize int) ([]domain.Form, int, error) {
	stage := domain.RoleStage(actor.Role)
	if stage == "" {
		return nil, 0, domain.ErrInsufficientRole
	}
	offset, limit := paginate(page, pageSize)
	return s.formRepo.ListPendingStage(ctx, stage, offset, limit)
}

func (s *formService) Advance(ctx context.Context, actor domain.Actor, formID uuid.UUID, input AdvanceFormInput) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		return s.engine.Advance(current, workflow.AdvanceInput{
			StageKey:     input.Stage,
			Action:       input.Action,
			Actor:        actor,
			Notes:        input.Notes,
			Aspect:       input.Aspect,
			FieldPatches: input.FieldPatches,
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, formID, actor.ID, auditActionFor(input.Action), map[string]interface{}{
		"stage":  input.Stage,
		"action": input.Action,
		"status": form.Status,
	})
	s.notifyAfterAdvance(ctx, form, input)
	return form, nil
}

func (s *formService) MarkFinalDone(ctx context.Context, actor domain.Actor, formID uuid.UUID, notes string) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		return s.engine.MarkFinalDone(current, actor, notes)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditFinalDone, map[string]interface{}{
		"status": form.Status,
	})
	return form, nil
}

func (s *formService) Resubmit(ctx context.Context, actor domain.Actor, formID uuid.UUID, fieldPatches map[string]string) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		if err := s.canResubmit(actor, current); err != nil {
			return nil, err
		}
		return s.engine.Resubmit(current, actor, fieldPatches)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditFormResubmitted, map[string]interface{}{
		"status": form.Status,
	})
	return form, nil
}

func (s *formService) AddNote(ctx context.Context, actor domain.Actor, formID uuid.UUID, note string) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		return s.engine.AddNote(current, actor, note)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditNoteAdded, nil)
	return form, nil
}

func (s *formService) AuditTrail(ctx context.Context, actor domain.Actor, formID uuid.UUID, page, pageSize int) ([]domain.FormAuditEntry, int, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.canRead(actor, form); err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(page, pageSize)
	return s.auditRepo.ListByForm(ctx, formID, offset, limit)
}

func (s *formService) SetDeliveryPreference(ctx context.Context, actor domain.Actor, formID uuid.UUID, input DeliveryChoiceInput) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		if err := s.canResubmit(actor, current); err != nil {
			return nil, err
		}
		return s.engine.SetDeliveryPreference(current, workflow.DeliveryInput{
			Method:  input.Method,
			Address: input.Address,
			Phone:   input.Phone,
			Email:   input.Email,
			Actor:   actor,
		})
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditDeliverySelected, map[string]interface{}{
		"method": input.Method,
	})
	return form, nil
}

func (s *formService) DecideDelivery(ctx context.Context, actor domain.Actor, formID uuid.UUID, input DeliveryChoiceInput) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		return s.engine.DecideDeliveryMethod(current, workflow.DeliveryInput{
			Method:  input.Method,
			Address: input.Address,
			Phone:   input.Phone,
			Email:   input.Email,
			Actor:   actor,
		}, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditDeliveryDecided, map[string]interface{}{
		"method": input.Method,
	})
	return form, nil
}

func (s *formService) MarkDispatched(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		return s.engine.MarkDispatched(current, actor)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditDeliveryDispatched, nil)
	return form, nil
}

func (s *formService) MarkDelivered(ctx context.Context, actor domain.Actor, formID uuid.UUID) (*domain.Form, error) {
	form, err := s.mutate(ctx, formID, func(current *domain.Form) (*domain.Form, error) {
		return s.engine.MarkDelivered(current, actor)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, formID, actor.ID, domain.AuditDeliveryDelivered, nil)
	return form, nil
}

// mutate runs a read-transform-CAS cycle, retrying on version conflicts so
// concurrent actions on one form are linearized.
func (s *formService) mutate(ctx context.Context, formID uuid.UUID, fn func(*domain.Form) (*domain.Form, error)) (*domain.Form, error) {
	for attempt := 0; ; attempt++ {
		form, err := s.formRepo.GetByID(ctx, formID)
		if err != nil {
			return nil, err
		}
		next, err := fn(form)
		if err != nil {
			return nil, err
		}
		err = s.formRepo.Update(ctx, next, form.Version)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, domain.ErrFormConflict) || attempt >= maxConflictRetries {
			return nil, err
		}
	}
}

func (s *formService) canRead(actor domain.Actor, form *domain.Form) error {
	switch actor.Role {
	case domain.RoleUser, domain.RoleAgent:
		if form.SubmittedBy != actor.ID {
			return domain.ErrForbidden
		}
	}
	return nil
}

// canResubmit guards applicant-side mutations: only the submitter (or an
// agent acting as the submitter, or an admin) may amend or choose delivery.
func (s *formService) canResubmit(actor domain.Actor, form *domain.Form) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if form.SubmittedBy != actor.ID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *formService) audit(ctx context.Context, formID, userID uuid.UUID, action domain.AuditAction, changes map[string]interface{}) {
	var payload []byte
	if changes != nil {
		payload, _ = json.Marshal(changes)
	}
	entry := &domain.FormAuditEntry{
		FormID:  formID,
		UserID:  &userID,
		Action:  string(action),
		Changes: payload,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("formService.audit: failed to record %s for form %s: %v", action, formID, err)
	}
}

// notifyAfterAdvance fires applicant notifications and, on the final lock,
// hands the form to document generation. All of it is best-effort; the
// transition has already been persisted.
func (s *formService) notifyAfterAdvance(ctx context.Context, form *domain.Form, input AdvanceFormInput) {
	submitter, err := s.userRepo.GetByID(ctx, form.SubmittedBy)
	if err != nil {
		log.Printf("formService.notifyAfterAdvance: lookup submitter for form %s: %v", form.ID, err)
		return
	}

	switch {
	case input.Action == domain.ActionApprove && form.Status == domain.StatusLockedByStaff5:
		s.audit(ctx, form.ID, *form.Approvals[domain.StageStaff5].VerifiedBy, domain.AuditFormLocked, nil)
		if err := s.notifier.SendFormLocked(ctx, submitter.Email, submitter.FullName, form.ID); err != nil {
			log.Printf("formService.notifyAfterAdvance: form locked email for %s: %v", form.ID, err)
		}
		if err := s.docGen.EnqueueGeneration(ctx, form); err != nil {
			log.Printf("formService.notifyAfterAdvance: enqueue generation for %s: %v", form.ID, err)
		}
	case input.Action == domain.ActionApprove:
		if err := s.notifier.SendStageApproved(ctx, submitter.Email, submitter.FullName, form.ID, input.Stage); err != nil {
			log.Printf("formService.notifyAfterAdvance: stage approved email for %s: %v", form.ID, err)
		}
	case input.Action == domain.ActionRequestCorrection:
		if err := s.notifier.SendCorrectionRequested(ctx, submitter.Email, submitter.FullName, form.ID, input.Notes); err != nil {
			log.Printf("formService.notifyAfterAdvance: correction email for %s: %v", form.ID, err)
		}
	}
}

func auditActionFor(action domain.ApprovalAction) domain.AuditAction {
	switch action {
	case domain.ActionApprove:
		return domain.AuditStageApproved
	case domain.ActionReject:
		return domain.AuditStageRejected
	case domain.ActionRequestCorrection:
		return domain.AuditCorrectionRequested
	default:
		return domain.AuditFieldsCorrected
	}
}

func formatIssues(issues []validator.Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.FieldKey+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

func paginate(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
