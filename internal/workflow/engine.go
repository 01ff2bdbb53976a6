package workflow

import (
	"fmt"
	"time"

	"deedflow/internal/domain"
)

// DefaultEscalationWindow is how long the applicant has to choose a delivery
// method before the choice escalates to staff4.
const DefaultEscalationWindow = 7 * 24 * time.Hour

// AdvanceInput carries a staff intent for one stage transition.
type AdvanceInput struct {
	StageKey     domain.StageKey
	Action       domain.ApprovalAction
	Actor        domain.Actor
	Notes        string
	Aspect       domain.VerificationAspect
	FieldPatches map[string]string
}

// Engine is the single mutator of form status and approvals. Every method
// operates on a deep copy and returns it; on error the caller's form is
// untouched. The engine performs no I/O, so callers own atomicity
// (compare-and-swap on the form's version) and collaborator callbacks.
type Engine struct {
	escalationWindow time.Duration
}

// NewEngine creates a workflow engine. A zero escalationWindow selects
// DefaultEscalationWindow.
func NewEngine(escalationWindow time.Duration) *Engine {
	if escalationWindow <= 0 {
		escalationWindow = DefaultEscalationWindow
	}
	return &Engine{escalationWindow: escalationWindow}
}

// Advance validates and applies one stage transition, returning the updated
// form. Re-approving an already-approved stage outside a correction cycle is
// a no-op returning the form unchanged.
func (e *Engine) Advance(form *domain.Form, in AdvanceInput) (*domain.Form, error) {
	gate, ok := stageGates[in.StageKey]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stage %q", domain.ErrValidation, in.StageKey)
	}
	if !domain.ValidApprovalActions[in.Action] {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrValidation, in.Action)
	}
	if err := checkTerminal(form); err != nil {
		return nil, err
	}
	if !gate.authorized(in.Actor) {
		return nil, domain.ErrInsufficientRole
	}

	next := form.Clone()
	now := time.Now().UTC()

	switch in.Action {
	case domain.ActionApprove:
		if err := e.approve(next, gate, in, now); err != nil {
			return nil, err
		}
	case domain.ActionReject:
		if err := e.reject(next, gate, in, now); err != nil {
			return nil, err
		}
	case domain.ActionRequestCorrection:
		if err := e.requestCorrection(next, gate, in, now); err != nil {
			return nil, err
		}
	case domain.ActionCorrect:
		if err := e.correct(next, gate, in, now); err != nil {
			return nil, err
		}
	}

	return next, nil
}

// checkTerminal rejects any stage action on a form whose pipeline has ended.
func checkTerminal(form *domain.Form) error {
	switch form.Status {
	case domain.StatusLockedByStaff5:
		return domain.ErrAlreadyLocked
	case domain.StatusRejected:
		return domain.ErrFormRejected
	case domain.StatusCompleted:
		return domain.ErrFormCompleted
	}
	return nil
}

// reprocessing reports whether the form has been rolled back for correction,
// which is the only situation in which an approved stage may be overwritten.
func reprocessing(form *domain.Form) bool {
	return form.Status == domain.StatusNeedsCorrection || form.Status == domain.StatusUnderReview
}

func (e *Engine) approve(form *domain.Form, gate stageGate, in AdvanceInput, now time.Time) error {
	if form.Status == domain.StatusDraft {
		return domain.ErrOutOfOrder
	}
	if !gate.prereqsApproved(form) {
		return domain.ErrOutOfOrder
	}
	// Final lock additionally requires the cross-verified status, not just
	// four approved records.
	if in.StageKey == domain.StageStaff5 && form.Status != domain.StatusCrossVerified {
		return domain.ErrOutOfOrder
	}

	// Idempotent re-approve: outside a correction cycle the existing record
	// stands, whatever the submitted notes say.
	if form.StageApproved(in.StageKey) && !reprocessing(form) {
		return nil
	}

	for _, field := range gate.requiredFields {
		if form.Fields[field] == "" {
			return fmt.Errorf("%w: %s", domain.ErrIncompleteData, field)
		}
	}
	if in.Aspect != domain.AspectNone {
		if gate.allowedAspects == nil || !gate.allowedAspects[in.Aspect] {
			return fmt.Errorf("%w: aspect %q not valid for %s", domain.ErrValidation, in.Aspect, in.StageKey)
		}
	}

	actorID := in.Actor.ID
	verifiedAt := now
	form.Approvals[in.StageKey] = domain.ApprovalRecord{
		Approved:   true,
		VerifiedAt: &verifiedAt,
		Notes:      in.Notes,
		VerifiedBy: &actorID,
		Aspect:     in.Aspect,
	}
	form.Status = gate.statusAfterApprove

	if in.StageKey == domain.StageStaff5 {
		form.Delivery = &domain.Delivery{
			Status:             domain.DeliveryPendingUserSelection,
			ReadyForDeliveryAt: now,
		}
	}

	touch(form, in.Actor, now)
	return nil
}

func (e *Engine) reject(form *domain.Form, gate stageGate, in AdvanceInput, now time.Time) error {
	if !gate.prereqsApproved(form) {
		return domain.ErrOutOfOrder
	}

	actorID := in.Actor.ID
	rejectedAt := now
	form.Approvals[in.StageKey] = domain.ApprovalRecord{
		Approved:   false,
		VerifiedAt: &rejectedAt,
		Notes:      in.Notes,
		VerifiedBy: &actorID,
		Aspect:     in.Aspect,
	}
	form.Status = domain.StatusRejected
	appendNote(form, in.Actor, now, "rejected at "+string(in.StageKey)+": "+in.Notes)
	touch(form, in.Actor, now)
	return nil
}

func (e *Engine) requestCorrection(form *domain.Form, gate stageGate, in AdvanceInput, now time.Time) error {
	if !gate.prereqsApproved(form) {
		return domain.ErrOutOfOrder
	}
	// A stage cannot send the form back while a later stage already holds an
	// approval; the later record would no longer describe verified data.
	idx := domain.StageIndex(in.StageKey)
	for _, key := range domain.StageOrder[idx+1:] {
		if form.StageApproved(key) {
			return fmt.Errorf("%w: %s already approved", domain.ErrInvalidAction, key)
		}
	}

	actorID := in.Actor.ID
	recordedAt := now
	form.Approvals[in.StageKey] = domain.ApprovalRecord{
		Approved:   false,
		VerifiedAt: &recordedAt,
		Notes:      in.Notes,
		VerifiedBy: &actorID,
		Aspect:     in.Aspect,
	}
	form.Status = domain.StatusNeedsCorrection
	appendNote(form, in.Actor, now, "correction requested at "+string(in.StageKey)+": "+in.Notes)
	touch(form, in.Actor, now)
	return nil
}

func (e *Engine) correct(form *domain.Form, gate stageGate, in AdvanceInput, now time.Time) error {
	if !gate.canCorrectFields && in.Actor.Role != domain.RoleAdmin {
		return domain.ErrInvalidAction
	}
	// staff4 corrects on behalf of stages 1-3, so its prerequisite set
	// doubles as the guard here; staff1 may correct from the start.
	if !gate.prereqsApproved(form) {
		return domain.ErrOutOfOrder
	}
	if len(in.FieldPatches) == 0 {
		return fmt.Errorf("%w: no field patches supplied", domain.ErrValidation)
	}

	for k, v := range in.FieldPatches {
		form.Fields[k] = v
	}
	appendNote(form, in.Actor, now, correctionNote(in))
	touch(form, in.Actor, now)
	return nil
}

func correctionNote(in AdvanceInput) string {
	note := "fields corrected at " + string(in.StageKey)
	if in.Notes != "" {
		note += ": " + in.Notes
	}
	return note
}

// IsFormReadyForFinal reports whether stages 1-4 are all approved, gating
// staff5's final authority review.
func (e *Engine) IsFormReadyForFinal(form *domain.Form) bool {
	return form.StageApproved(domain.StageStaff1) &&
		form.StageApproved(domain.StageStaff2) &&
		form.StageApproved(domain.StageStaff3) &&
		form.StageApproved(domain.StageStaff4)
}

// MarkFinalDone is staff2's secondary short-circuit: e-stamp and map-module
// forms already verified by staff3 skip cross-verification and the final
// lock, closing as completed.
func (e *Engine) MarkFinalDone(form *domain.Form, actor domain.Actor, notes string) (*domain.Form, error) {
	if err := checkTerminal(form); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleStaff2 && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrInsufficientRole
	}
	if !domain.ShortCircuitServiceTypes[form.ServiceType] {
		return nil, fmt.Errorf("%w: service type %s has no final-done path", domain.ErrInvalidAction, form.ServiceType)
	}
	if !form.StageApproved(domain.StageStaff3) {
		return nil, domain.ErrOutOfOrder
	}

	next := form.Clone()
	now := time.Now().UTC()
	next.Status = domain.StatusCompleted
	appendNote(next, actor, now, "marked final-done by staff2: "+notes)
	touch(next, actor, now)
	return next, nil
}

// FinalizeDraft moves a draft into the pipeline proper, applying any last
// field edits. The caller is responsible for validating the completed fields
// against the service-type schema before persisting, the same check a direct
// submission gets.
func (e *Engine) FinalizeDraft(form *domain.Form, actor domain.Actor, fieldPatches map[string]string) (*domain.Form, error) {
	if err := checkTerminal(form); err != nil {
		return nil, err
	}
	if form.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: form is not a draft", domain.ErrInvalidAction)
	}

	next := form.Clone()
	now := time.Now().UTC()
	for k, v := range fieldPatches {
		next.Fields[k] = v
	}
	next.Status = domain.StatusSubmitted
	touch(next, actor, now)
	return next, nil
}

// Resubmit re-opens a needs_correction form after the applicant (or an agent
// on their behalf) has amended the fields, putting it back on the desk of
// the stage that requested correction.
func (e *Engine) Resubmit(form *domain.Form, actor domain.Actor, fieldPatches map[string]string) (*domain.Form, error) {
	if err := checkTerminal(form); err != nil {
		return nil, err
	}
	if form.Status != domain.StatusNeedsCorrection {
		return nil, fmt.Errorf("%w: form is not awaiting correction", domain.ErrInvalidAction)
	}

	next := form.Clone()
	now := time.Now().UTC()
	for k, v := range fieldPatches {
		next.Fields[k] = v
	}
	next.Status = domain.StatusUnderReview
	appendNote(next, actor, now, "resubmitted after correction")
	touch(next, actor, now)
	return next, nil
}

// AddNote appends to the append-only admin note trail without touching the
// pipeline state. Locked forms still accept notes; the freeze covers fields
// and approvals only.
func (e *Engine) AddNote(form *domain.Form, actor domain.Actor, note string) (*domain.Form, error) {
	if note == "" {
		return nil, fmt.Errorf("%w: empty note", domain.ErrValidation)
	}
	next := form.Clone()
	now := time.Now().UTC()
	appendNote(next, actor, now, note)
	next.UpdatedAt = now
	return next, nil
}

func appendNote(form *domain.Form, actor domain.Actor, now time.Time, note string) {
	form.AdminNotes = append(form.AdminNotes, domain.AdminNote{
		AddedBy: actor.ID,
		AddedAt: now,
		Note:    note,
	})
}

func touch(form *domain.Form, actor domain.Actor, now time.Time) {
	form.UpdatedAt = now
	form.LastActivityAt = now
	form.LastActivityBy = actor.ID
}
