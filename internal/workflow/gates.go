package workflow

import (
	"deedflow/internal/domain"
)

// stageGate concentrates the per-stage rules of the pipeline: who may act,
// which prerequisite stages must be approved, which fields must exist before
// approval, which verification aspects the stage may tag, and the form status
// an approval produces.
type stageGate struct {
	role               domain.UserRole
	prereqs            []domain.StageKey
	requiredFields     []string
	allowedAspects     map[domain.VerificationAspect]bool
	statusAfterApprove domain.FormStatus
	canCorrectFields   bool
}

var stageGates = map[domain.StageKey]stageGate{
	// Form review and stamp-duty calculation. Acts as the initial human
	// data-correction layer, so it may patch fields directly.
	domain.StageStaff1: {
		role:               domain.RoleStaff1,
		requiredFields:     []string{"stamp_duty"},
		statusAfterApprove: domain.StatusVerified,
		canCorrectFields:   true,
	},
	// Trustee identity/address and amount validation.
	domain.StageStaff2: {
		role:    domain.RoleStaff2,
		prereqs: []domain.StageKey{domain.StageStaff1},
		allowedAspects: map[domain.VerificationAspect]bool{
			domain.AspectTrustee: true,
			domain.AspectAmount:  true,
			domain.AspectBoth:    true,
		},
		statusAfterApprove: domain.StatusInProgress,
	},
	// Land/plot measurement and boundary verification.
	domain.StageStaff3: {
		role:    domain.RoleStaff3,
		prereqs: []domain.StageKey{domain.StageStaff1, domain.StageStaff2},
		allowedAspects: map[domain.VerificationAspect]bool{
			domain.AspectLand: true,
			domain.AspectPlot: true,
			domain.AspectBoth: true,
		},
		statusAfterApprove: domain.StatusPendingCrossVerification,
	},
	// Cross-verification of stages 1-3. May correct their fields directly.
	domain.StageStaff4: {
		role:               domain.RoleStaff4,
		prereqs:            []domain.StageKey{domain.StageStaff1, domain.StageStaff2, domain.StageStaff3},
		statusAfterApprove: domain.StatusCrossVerified,
		canCorrectFields:   true,
	},
	// Final authority. Approval is the one-way lock.
	domain.StageStaff5: {
		role:               domain.RoleStaff5,
		prereqs:            []domain.StageKey{domain.StageStaff1, domain.StageStaff2, domain.StageStaff3, domain.StageStaff4},
		statusAfterApprove: domain.StatusLockedByStaff5,
	},
}

// prereqsApproved reports whether every prerequisite stage of the gate holds
// an approved record on the form.
func (g stageGate) prereqsApproved(form *domain.Form) bool {
	for _, key := range g.prereqs {
		if !form.StageApproved(key) {
			return false
		}
	}
	return true
}

// authorized reports whether the actor may act on this gate. Admins may act
// on any stage; staff roles only on their own.
func (g stageGate) authorized(actor domain.Actor) bool {
	return actor.Role == g.role || actor.Role == domain.RoleAdmin
}
