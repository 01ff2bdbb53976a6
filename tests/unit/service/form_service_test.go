package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"deedflow/internal/domain"
	"deedflow/internal/port"
	"deedflow/internal/service"
	"deedflow/internal/validator"
	"deedflow/internal/workflow"
	"deedflow/mocks"
)

func setupFormService() (
	service.FormService,
	*mocks.MockFormRepo,
	*mocks.MockFormAuditRepo,
	*mocks.MockUserRepo,
	*mocks.MockNotifier,
	*mocks.MockDocumentGenerator,
) {
	formRepo := new(mocks.MockFormRepo)
	auditRepo := new(mocks.MockFormAuditRepo)
	userRepo := new(mocks.MockUserRepo)
	notifier := new(mocks.MockNotifier)
	docGen := new(mocks.MockDocumentGenerator)
	svc := service.NewFormService(
		formRepo, auditRepo, userRepo,
		workflow.NewEngine(0), validator.NewDefaultRegistry(),
		notifier, docGen,
	)
	return svc, formRepo, auditRepo, userRepo, notifier, docGen
}

func saleDeedFields() map[string]string {
	return map[string]string{
		"seller_name":      "A Seller",
		"buyer_name":       "A Buyer",
		"property_address": "12 Canal Road",
		"survey_number":    "144/2",
		"sale_amount":      "2500000",
		"stamp_duty":       "175000",
	}
}

func storedForm(submittedBy uuid.UUID) *domain.Form {
	return &domain.Form{
		ID:          uuid.New(),
		ServiceType: domain.ServiceSaleDeed,
		SubmittedBy: submittedBy,
		Fields:      saleDeedFields(),
		Status:      domain.StatusSubmitted,
		Approvals:   map[domain.StageKey]domain.ApprovalRecord{},
		Version:     1,
	}
}

func crossVerifiedForm(submittedBy uuid.UUID) *domain.Form {
	form := storedForm(submittedBy)
	for _, key := range []domain.StageKey{domain.StageStaff1, domain.StageStaff2, domain.StageStaff3, domain.StageStaff4} {
		verifier := uuid.New()
		verifiedAt := time.Now().UTC().Add(-time.Hour)
		form.Approvals[key] = domain.ApprovalRecord{
			Approved:   true,
			VerifiedAt: &verifiedAt,
			VerifiedBy: &verifier,
		}
	}
	form.Status = domain.StatusCrossVerified
	return form
}

func submitter() *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Email:    "applicant@example.com",
		FullName: "An Applicant",
		Role:     domain.RoleUser,
		IsActive: true,
	}
}

// --- Submit ---

func TestFormService_Submit_Success(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	formRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Form")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)

	form, err := svc.Submit(context.Background(), applicant, service.SubmitFormInput{
		ServiceType: domain.ServiceSaleDeed,
		Fields:      saleDeedFields(),
	})

	assert.NoError(t, err)
	assert.NotNil(t, form)
	assert.Equal(t, domain.StatusSubmitted, form.Status)
	assert.Equal(t, applicant.ID, form.SubmittedBy)
	assert.NotEqual(t, uuid.Nil, form.ID)
	formRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestFormService_Submit_DraftSkipsValidation(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	formRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Form")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)

	form, err := svc.Submit(context.Background(), applicant, service.SubmitFormInput{
		ServiceType: domain.ServiceSaleDeed,
		Fields:      map[string]string{"seller_name": "A Seller"},
		Draft:       true,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, form.Status)
}

func TestFormService_Submit_ValidationFailure(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	fields := saleDeedFields()
	delete(fields, "buyer_name")

	form, err := svc.Submit(context.Background(), applicant, service.SubmitFormInput{
		ServiceType: domain.ServiceSaleDeed,
		Fields:      fields,
	})

	assert.Nil(t, form)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "buyer_name")
	formRepo.AssertNotCalled(t, "Create")
}

func TestFormService_Submit_UnknownServiceType(t *testing.T) {
	svc, _, _, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	form, err := svc.Submit(context.Background(), applicant, service.SubmitFormInput{
		ServiceType: "lease-deed",
		Fields:      map[string]string{},
	})

	assert.Nil(t, form)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// --- FinalizeDraft ---

func draftStoredForm(submittedBy uuid.UUID) *domain.Form {
	form := storedForm(submittedBy)
	form.Status = domain.StatusDraft
	delete(form.Fields, "buyer_name")
	return form
}

func TestFormService_FinalizeDraft_Success(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	form := draftStoredForm(applicant.ID)

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.MatchedBy(func(f *domain.Form) bool {
		return f.Status == domain.StatusSubmitted && f.Fields["buyer_name"] == "A Buyer"
	}), int64(1)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.FormAuditEntry) bool {
		return e.Action == string(domain.AuditFormSubmitted)
	})).Return(nil)

	updated, err := svc.FinalizeDraft(context.Background(), applicant, form.ID, map[string]string{
		"buyer_name": "A Buyer",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, updated.Status)
	formRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestFormService_FinalizeDraft_IncompleteFields(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	form := draftStoredForm(applicant.ID)

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	updated, err := svc.FinalizeDraft(context.Background(), applicant, form.ID, nil)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "buyer_name")
	formRepo.AssertNotCalled(t, "Update")
}

func TestFormService_FinalizeDraft_NotADraft(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	form := storedForm(applicant.ID)

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	updated, err := svc.FinalizeDraft(context.Background(), applicant, form.ID, nil)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	formRepo.AssertNotCalled(t, "Update")
}

func TestFormService_FinalizeDraft_StrangerForbidden(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	form := draftStoredForm(uuid.New())
	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	updated, err := svc.FinalizeDraft(context.Background(), stranger, form.ID, nil)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	formRepo.AssertNotCalled(t, "Update")
}

// --- GetByID ---

func TestFormService_GetByID_OwnerCanRead(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	form := storedForm(applicant.ID)

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	got, err := svc.GetByID(context.Background(), applicant, form.ID)

	assert.NoError(t, err)
	assert.Equal(t, form.ID, got.ID)
}

func TestFormService_GetByID_OtherApplicantForbidden(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	form := storedForm(uuid.New())
	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	got, err := svc.GetByID(context.Background(), stranger, form.ID)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFormService_GetByID_StaffCanReadAny(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	form := storedForm(uuid.New())
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff3}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	got, err := svc.GetByID(context.Background(), staff, form.ID)

	assert.NoError(t, err)
	assert.Equal(t, form.ID, got.ID)
}

func TestFormService_GetByID_NotFound(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	formID := uuid.New()

	formRepo.On("GetByID", mock.Anything, formID).Return(nil, domain.ErrFormNotFound)

	got, err := svc.GetByID(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}, formID)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrFormNotFound)
}

// --- List / StageQueue ---

func TestFormService_List_ApplicantScopedToOwnForms(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	formRepo.On("List", mock.Anything, mock.MatchedBy(func(f port.FormFilter) bool {
		return f.SubmittedBy != nil && *f.SubmittedBy == applicant.ID
	}), 0, 20).Return([]domain.Form{}, 0, nil)

	_, _, err := svc.List(context.Background(), applicant, port.FormFilter{}, 1, 20)

	assert.NoError(t, err)
	formRepo.AssertExpectations(t)
}

func TestFormService_List_StaffSeesAll(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff1}

	formRepo.On("List", mock.Anything, mock.MatchedBy(func(f port.FormFilter) bool {
		return f.SubmittedBy == nil
	}), 20, 20).Return([]domain.Form{}, 0, nil)

	_, _, err := svc.List(context.Background(), staff, port.FormFilter{}, 2, 20)

	assert.NoError(t, err)
	formRepo.AssertExpectations(t)
}

func TestFormService_StageQueue_MapsRoleToStage(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff3}

	formRepo.On("ListPendingStage", mock.Anything, domain.StageStaff3, 0, 20).
		Return([]domain.Form{*storedForm(uuid.New())}, 1, nil)

	forms, total, err := svc.StageQueue(context.Background(), staff, 1, 20)

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, forms, 1)
}

func TestFormService_StageQueue_NonStageRole(t *testing.T) {
	svc, _, _, _, _, _ := setupFormService()

	forms, total, err := svc.StageQueue(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}, 1, 20)

	assert.Nil(t, forms)
	assert.Zero(t, total)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

// --- Advance ---

func TestFormService_Advance_ApproveSuccess(t *testing.T) {
	svc, formRepo, auditRepo, userRepo, notifier, _ := setupFormService()
	owner := submitter()
	form := storedForm(owner.ID)
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff1}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)
	userRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
	notifier.On("SendStageApproved", mock.Anything, owner.Email, owner.FullName, form.ID, domain.StageStaff1).Return(nil)

	got, err := svc.Advance(context.Background(), staff, form.ID, service.AdvanceFormInput{
		Stage:  domain.StageStaff1,
		Action: domain.ActionApprove,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, got.Status)
	assert.True(t, got.StageApproved(domain.StageStaff1))
	formRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestFormService_Advance_RetriesOnVersionConflict(t *testing.T) {
	svc, formRepo, auditRepo, userRepo, notifier, _ := setupFormService()
	owner := submitter()
	form := storedForm(owner.ID)
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff1}

	// First CAS loses the race; the retry re-reads the bumped version and wins.
	bumped := storedForm(owner.ID)
	bumped.ID = form.ID
	bumped.Version = 2

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil).Once()
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).
		Return(domain.ErrFormConflict).Once()
	formRepo.On("GetByID", mock.Anything, form.ID).Return(bumped, nil).Once()
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(2)).
		Return(nil).Once()
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)
	userRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
	notifier.On("SendStageApproved", mock.Anything, owner.Email, owner.FullName, form.ID, domain.StageStaff1).Return(nil)

	got, err := svc.Advance(context.Background(), staff, form.ID, service.AdvanceFormInput{
		Stage:  domain.StageStaff1,
		Action: domain.ActionApprove,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, got.Status)
	formRepo.AssertExpectations(t)
}

func TestFormService_Advance_ConflictRetriesExhausted(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	owner := submitter()
	form := storedForm(owner.ID)
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff1}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).
		Return(domain.ErrFormConflict)

	got, err := svc.Advance(context.Background(), staff, form.ID, service.AdvanceFormInput{
		Stage:  domain.StageStaff1,
		Action: domain.ActionApprove,
	})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrFormConflict)
	formRepo.AssertNumberOfCalls(t, "Update", 4)
}

func TestFormService_Advance_EngineErrorSkipsPersistence(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	form := storedForm(uuid.New())

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	got, err := svc.Advance(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleStaff2}, form.ID, service.AdvanceFormInput{
		Stage:  domain.StageStaff2,
		Action: domain.ActionApprove,
	})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrOutOfOrder)
	formRepo.AssertNotCalled(t, "Update")
	auditRepo.AssertNotCalled(t, "Create")
}

func TestFormService_Advance_FinalLockNotifiesAndEnqueuesGeneration(t *testing.T) {
	svc, formRepo, auditRepo, userRepo, notifier, docGen := setupFormService()
	owner := submitter()
	form := crossVerifiedForm(owner.ID)
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff5}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)
	userRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
	notifier.On("SendFormLocked", mock.Anything, owner.Email, owner.FullName, form.ID).Return(nil)
	docGen.On("EnqueueGeneration", mock.Anything, mock.AnythingOfType("*domain.Form")).Return(nil)

	got, err := svc.Advance(context.Background(), staff, form.ID, service.AdvanceFormInput{
		Stage:  domain.StageStaff5,
		Action: domain.ActionApprove,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusLockedByStaff5, got.Status)
	assert.NotNil(t, got.Delivery)
	notifier.AssertExpectations(t)
	docGen.AssertExpectations(t)
}

func TestFormService_Advance_CorrectionRequestNotifiesApplicant(t *testing.T) {
	svc, formRepo, auditRepo, userRepo, notifier, _ := setupFormService()
	owner := submitter()
	form := storedForm(owner.ID)
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff1}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)
	userRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
	notifier.On("SendCorrectionRequested", mock.Anything, owner.Email, owner.FullName, form.ID, "stamp duty recalculation needed").Return(nil)

	got, err := svc.Advance(context.Background(), staff, form.ID, service.AdvanceFormInput{
		Stage:  domain.StageStaff1,
		Action: domain.ActionRequestCorrection,
		Notes:  "stamp duty recalculation needed",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsCorrection, got.Status)
	notifier.AssertExpectations(t)
}

// --- Resubmit ---

func TestFormService_Resubmit_Success(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	form := storedForm(applicant.ID)
	form.Status = domain.StatusNeedsCorrection

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)

	got, err := svc.Resubmit(context.Background(), applicant, form.ID, map[string]string{
		"stamp_duty": "180000",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, got.Status)
	assert.Equal(t, "180000", got.Fields["stamp_duty"])
}

func TestFormService_Resubmit_StrangerForbidden(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	form := storedForm(uuid.New())
	form.Status = domain.StatusNeedsCorrection

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	got, err := svc.Resubmit(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleUser}, form.ID, nil)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	formRepo.AssertNotCalled(t, "Update")
}

// --- AuditTrail ---

func TestFormService_AuditTrail_OwnerCanRead(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	form := storedForm(applicant.ID)

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	auditRepo.On("ListByForm", mock.Anything, form.ID, 0, 20).
		Return([]domain.FormAuditEntry{{FormID: form.ID, Action: "form_submitted"}}, 1, nil)

	entries, total, err := svc.AuditTrail(context.Background(), applicant, form.ID, 1, 20)

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, entries, 1)
}

func TestFormService_AuditTrail_StrangerForbidden(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	form := storedForm(uuid.New())

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	entries, _, err := svc.AuditTrail(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleAgent}, form.ID, 1, 20)

	assert.Nil(t, entries)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	auditRepo.AssertNotCalled(t, "ListByForm")
}

// --- Delivery ---

func lockedStoredForm(submittedBy uuid.UUID) *domain.Form {
	form := storedForm(submittedBy)
	form.Status = domain.StatusLockedByStaff5
	form.Delivery = &domain.Delivery{
		Status:             domain.DeliveryPendingUserSelection,
		ReadyForDeliveryAt: time.Now().UTC().Add(-time.Hour),
	}
	return form
}

func TestFormService_SetDeliveryPreference_Success(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	applicant := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}
	form := lockedStoredForm(applicant.ID)

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)

	got, err := svc.SetDeliveryPreference(context.Background(), applicant, form.ID, service.DeliveryChoiceInput{
		Method: domain.DeliveryPickup,
		Phone:  "9876543210",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DeliveryUserSelected, got.Delivery.Status)
}

func TestFormService_SetDeliveryPreference_StrangerForbidden(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	form := lockedStoredForm(uuid.New())

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	got, err := svc.SetDeliveryPreference(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleUser}, form.ID, service.DeliveryChoiceInput{
		Method: domain.DeliveryPickup,
		Phone:  "9876543210",
	})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFormService_DecideDelivery_Staff4BeforeWindow(t *testing.T) {
	svc, formRepo, _, _, _, _ := setupFormService()
	form := lockedStoredForm(uuid.New())
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff4}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)

	got, err := svc.DecideDelivery(context.Background(), staff, form.ID, service.DeliveryChoiceInput{
		Method: domain.DeliveryPickup,
		Phone:  "9876543210",
	})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrEscalationNotDue)
}

func TestFormService_MarkDispatched_Success(t *testing.T) {
	svc, formRepo, auditRepo, _, _, _ := setupFormService()
	form := lockedStoredForm(uuid.New())
	form.Delivery.Status = domain.DeliveryUserSelected
	staff := domain.Actor{ID: uuid.New(), Role: domain.RoleStaff4}

	formRepo.On("GetByID", mock.Anything, form.ID).Return(form, nil)
	formRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Form"), int64(1)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)

	got, err := svc.MarkDispatched(context.Background(), staff, form.ID)

	assert.NoError(t, err)
	assert.Equal(t, domain.DeliveryDispatched, got.Delivery.Status)
}
