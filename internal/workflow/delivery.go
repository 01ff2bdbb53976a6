package workflow

import (
	"fmt"
	"strings"
	"time"

	"deedflow/internal/domain"
)

// DeliveryInput carries a delivery-method choice, whether from the applicant
// or from staff4 acting as the escalation fallback.
type DeliveryInput struct {
	Method  domain.DeliveryMethod
	Address string
	Phone   string
	Email   string
	Actor   domain.Actor
}

// SetDeliveryPreference records the applicant's chosen delivery method.
// Courier and postal require an address, email requires a deliverable
// address; a missing conditional field fails with ErrValidation.
func (e *Engine) SetDeliveryPreference(form *domain.Form, in DeliveryInput) (*domain.Form, error) {
	if form.Delivery == nil {
		return nil, domain.ErrDeliveryNotReady
	}
	if form.Delivery.Status != domain.DeliveryPendingUserSelection {
		return nil, domain.ErrDeliveryNotSelectable
	}
	if err := validateDeliveryFields(in); err != nil {
		return nil, err
	}

	next := form.Clone()
	now := time.Now().UTC()
	actorID := in.Actor.ID

	d := next.Delivery
	d.Method = in.Method
	d.Address = in.Address
	d.Phone = in.Phone
	d.Email = in.Email
	d.Status = domain.DeliveryUserSelected
	d.SelectedAt = &now
	d.SelectedBy = &actorID

	next.UpdatedAt = now
	next.LastActivityAt = now
	next.LastActivityBy = actorID
	return next, nil
}

// IsDeliveryEscalationDue reports whether the applicant's selection window
// has elapsed, passing fallback authority to staff4. Evaluated lazily; no
// timer mutates the form.
func (e *Engine) IsDeliveryEscalationDue(form *domain.Form, now time.Time) bool {
	d := form.Delivery
	if d == nil || d.Status != domain.DeliveryPendingUserSelection {
		return false
	}
	return !now.Before(d.ReadyForDeliveryAt.Add(e.escalationWindow))
}

// DecideDeliveryMethod is staff4's escalation fallback: once the selection
// window has elapsed without applicant input, staff4 chooses the method.
// Admins may decide at any time.
func (e *Engine) DecideDeliveryMethod(form *domain.Form, in DeliveryInput, now time.Time) (*domain.Form, error) {
	if form.Delivery == nil {
		return nil, domain.ErrDeliveryNotReady
	}
	if form.Delivery.Status != domain.DeliveryPendingUserSelection {
		return nil, domain.ErrDeliveryNotSelectable
	}
	if in.Actor.Role != domain.RoleStaff4 && in.Actor.Role != domain.RoleAdmin {
		return nil, domain.ErrInsufficientRole
	}
	if in.Actor.Role == domain.RoleStaff4 && !e.IsDeliveryEscalationDue(form, now) {
		return nil, domain.ErrEscalationNotDue
	}
	if err := validateDeliveryFields(in); err != nil {
		return nil, err
	}

	next := form.Clone()
	actorID := in.Actor.ID
	decidedAt := now.UTC()

	d := next.Delivery
	d.Method = in.Method
	d.Address = in.Address
	d.Phone = in.Phone
	d.Email = in.Email
	d.Status = domain.DeliveryStaff4Decided
	d.DecidedAt = &decidedAt
	d.DecidedBy = &actorID

	next.UpdatedAt = decidedAt
	next.LastActivityAt = decidedAt
	next.LastActivityBy = actorID
	return next, nil
}

// MarkDispatched moves a decided delivery to dispatched.
func (e *Engine) MarkDispatched(form *domain.Form, actor domain.Actor) (*domain.Form, error) {
	return e.advanceDelivery(form, actor,
		[]domain.DeliveryStatus{domain.DeliveryUserSelected, domain.DeliveryStaff4Decided},
		domain.DeliveryDispatched)
}

// MarkDelivered closes the delivery sub-workflow.
func (e *Engine) MarkDelivered(form *domain.Form, actor domain.Actor) (*domain.Form, error) {
	return e.advanceDelivery(form, actor,
		[]domain.DeliveryStatus{domain.DeliveryDispatched},
		domain.DeliveryDelivered)
}

func (e *Engine) advanceDelivery(form *domain.Form, actor domain.Actor, from []domain.DeliveryStatus, to domain.DeliveryStatus) (*domain.Form, error) {
	if form.Delivery == nil {
		return nil, domain.ErrDeliveryNotReady
	}
	switch actor.Role {
	case domain.RoleStaff4, domain.RoleStaff5, domain.RoleAdmin:
	default:
		return nil, domain.ErrInsufficientRole
	}
	allowed := false
	for _, s := range from {
		if form.Delivery.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: delivery is %s", domain.ErrInvalidAction, form.Delivery.Status)
	}

	next := form.Clone()
	now := time.Now().UTC()
	next.Delivery.Status = to
	switch to {
	case domain.DeliveryDispatched:
		next.Delivery.DispatchedAt = &now
	case domain.DeliveryDelivered:
		next.Delivery.DeliveredAt = &now
	}
	next.UpdatedAt = now
	next.LastActivityAt = now
	next.LastActivityBy = actor.ID
	return next, nil
}

func validateDeliveryFields(in DeliveryInput) error {
	if !domain.ValidDeliveryMethods[in.Method] {
		return fmt.Errorf("%w: unknown delivery method %q", domain.ErrValidation, in.Method)
	}
	if strings.TrimSpace(in.Phone) == "" {
		return fmt.Errorf("%w: phone is required", domain.ErrValidation)
	}
	switch in.Method {
	case domain.DeliveryCourier, domain.DeliveryPostal:
		if strings.TrimSpace(in.Address) == "" {
			return fmt.Errorf("%w: %s delivery requires an address", domain.ErrValidation, in.Method)
		}
	case domain.DeliveryEmail:
		if !strings.Contains(in.Email, "@") {
			return fmt.Errorf("%w: email delivery requires a valid email address", domain.ErrValidation)
		}
	}
	return nil
}
