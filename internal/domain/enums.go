package domain

// ServiceType identifies the kind of legal document a form requests.
type ServiceType string

const (
	ServiceSaleDeed                ServiceType = "sale-deed"
	ServiceWillDeed                ServiceType = "will-deed"
	ServiceTrustDeed               ServiceType = "trust-deed"
	ServicePropertyRegistration    ServiceType = "property-registration"
	ServicePropertySaleCertificate ServiceType = "property-sale-certificate"
	ServicePowerOfAttorney         ServiceType = "power-of-attorney"
	ServiceAdoptionDeed            ServiceType = "adoption-deed"
	ServiceEStamp                  ServiceType = "e-stamp"
	ServiceMapModule               ServiceType = "map-module"
)

// ValidServiceTypes is the set of accepted service types.
var ValidServiceTypes = map[ServiceType]bool{
	ServiceSaleDeed:                true,
	ServiceWillDeed:                true,
	ServiceTrustDeed:               true,
	ServicePropertyRegistration:    true,
	ServicePropertySaleCertificate: true,
	ServicePowerOfAttorney:         true,
	ServiceAdoptionDeed:            true,
	ServiceEStamp:                  true,
	ServiceMapModule:               true,
}

// ShortCircuitServiceTypes are the service types staff2 may mark final-done
// directly once staff3 has verified them, bypassing cross-verification.
var ShortCircuitServiceTypes = map[ServiceType]bool{
	ServiceEStamp:    true,
	ServiceMapModule: true,
}

// FormStatus represents the lifecycle state of a form.
type FormStatus string

const (
	StatusDraft                    FormStatus = "draft"
	StatusSubmitted                FormStatus = "submitted"
	StatusUnderReview              FormStatus = "under_review"
	StatusVerified                 FormStatus = "verified"
	StatusInProgress               FormStatus = "in-progress"
	StatusNeedsCorrection          FormStatus = "needs_correction"
	StatusPendingCrossVerification FormStatus = "pending_cross_verification"
	StatusCrossVerified            FormStatus = "cross_verified"
	StatusRejected                 FormStatus = "rejected"
	StatusCompleted                FormStatus = "completed"
	StatusLockedByStaff5           FormStatus = "locked_by_staff5"
)

// IsTerminal reports whether no further stage processing is possible.
func (s FormStatus) IsTerminal() bool {
	return s == StatusLockedByStaff5 || s == StatusRejected || s == StatusCompleted
}

// StageKey identifies one of the five staff approval stages.
type StageKey string

const (
	StageStaff1 StageKey = "staff1"
	StageStaff2 StageKey = "staff2"
	StageStaff3 StageKey = "staff3"
	StageStaff4 StageKey = "staff4"
	StageStaff5 StageKey = "staff5"
)

// StageOrder is the canonical linear pipeline:
// staff1 (form review & stamp calc) -> staff2 (trustee/amount) ->
// staff3 (land/plot) -> staff4 (cross-verification) -> staff5 (final lock).
var StageOrder = []StageKey{StageStaff1, StageStaff2, StageStaff3, StageStaff4, StageStaff5}

// StageIndex returns the 0-based position of a stage in the pipeline, or -1.
func StageIndex(key StageKey) int {
	for i, k := range StageOrder {
		if k == key {
			return i
		}
	}
	return -1
}

// ApprovalAction is a staff intent submitted to the workflow engine.
type ApprovalAction string

const (
	ActionApprove           ApprovalAction = "approve"
	ActionReject            ApprovalAction = "reject"
	ActionCorrect           ApprovalAction = "correct"
	ActionRequestCorrection ApprovalAction = "request_correction"
)

// ValidApprovalActions is the set of accepted stage actions.
var ValidApprovalActions = map[ApprovalAction]bool{
	ActionApprove:           true,
	ActionReject:            true,
	ActionCorrect:           true,
	ActionRequestCorrection: true,
}

// VerificationAspect tags which sub-verification an approval record covers.
// staff2 tracks trustee/amount, staff3 tracks land/plot; a single record per
// stage carries the tag instead of free-text notes.
type VerificationAspect string

const (
	AspectNone    VerificationAspect = ""
	AspectTrustee VerificationAspect = "trustee"
	AspectAmount  VerificationAspect = "amount"
	AspectLand    VerificationAspect = "land"
	AspectPlot    VerificationAspect = "plot"
	AspectBoth    VerificationAspect = "both"
)

// DeliveryStatus represents the delivery sub-workflow state.
type DeliveryStatus string

const (
	DeliveryPendingUserSelection DeliveryStatus = "pending_user_selection"
	DeliveryUserSelected         DeliveryStatus = "user_selected"
	DeliveryStaff4Decided        DeliveryStatus = "staff4_decided"
	DeliveryDispatched           DeliveryStatus = "dispatched"
	DeliveryDelivered            DeliveryStatus = "delivered"
)

// DeliveryMethod is how a generated document reaches the applicant.
type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryCourier DeliveryMethod = "courier"
	DeliveryEmail   DeliveryMethod = "email"
	DeliveryPostal  DeliveryMethod = "postal"
)

// ValidDeliveryMethods is the set of accepted delivery methods.
var ValidDeliveryMethods = map[DeliveryMethod]bool{
	DeliveryPickup:  true,
	DeliveryCourier: true,
	DeliveryEmail:   true,
	DeliveryPostal:  true,
}

// UserRole defines the role hierarchy of the application.
type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleAgent  UserRole = "agent"
	RoleStaff1 UserRole = "staff1"
	RoleStaff2 UserRole = "staff2"
	RoleStaff3 UserRole = "staff3"
	RoleStaff4 UserRole = "staff4"
	RoleStaff5 UserRole = "staff5"
	RoleAdmin  UserRole = "admin"
)

// ValidUserRoles is the set of accepted user roles.
var ValidUserRoles = map[UserRole]bool{
	RoleUser:   true,
	RoleAgent:  true,
	RoleStaff1: true,
	RoleStaff2: true,
	RoleStaff3: true,
	RoleStaff4: true,
	RoleStaff5: true,
	RoleAdmin:  true,
}

// StaffRoles is the set of roles with a desk in the pipeline or above it.
var StaffRoles = map[UserRole]bool{
	RoleStaff1: true,
	RoleStaff2: true,
	RoleStaff3: true,
	RoleStaff4: true,
	RoleStaff5: true,
	RoleAdmin:  true,
}

// StageRole maps each pipeline stage to the staff role expected to act on it.
var StageRole = map[StageKey]UserRole{
	StageStaff1: RoleStaff1,
	StageStaff2: RoleStaff2,
	StageStaff3: RoleStaff3,
	StageStaff4: RoleStaff4,
	StageStaff5: RoleStaff5,
}

// RoleStage is the inverse of StageRole; non-stage roles map to "".
func RoleStage(role UserRole) StageKey {
	for stage, r := range StageRole {
		if r == role {
			return stage
		}
	}
	return ""
}

// FileType represents the allowed attachment file types.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its canonical MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileStatus represents the lifecycle of an uploaded attachment.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)
