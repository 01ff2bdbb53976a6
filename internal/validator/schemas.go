package validator

import (
	"fmt"
	"strconv"
	"strings"

	"deedflow/internal/domain"
)

// fieldSchema is a declarative FormValidator: required keys plus optional
// per-field format checks. All deed schemas are instances of it.
type fieldSchema struct {
	serviceType domain.ServiceType
	required    []string
	numeric     []string
}

func (s *fieldSchema) ServiceType() domain.ServiceType { return s.serviceType }

func (s *fieldSchema) RequiredFields() []string { return s.required }

func (s *fieldSchema) Validate(fields map[string]string) []Issue {
	var issues []Issue
	for _, key := range s.required {
		if strings.TrimSpace(fields[key]) == "" {
			issues = append(issues, Issue{FieldKey: key, Message: "required field is missing"})
		}
	}
	for _, key := range s.numeric {
		val := strings.TrimSpace(fields[key])
		if val == "" {
			continue
		}
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			issues = append(issues, Issue{FieldKey: key, Message: fmt.Sprintf("expected a numeric value, got %q", val)})
		}
	}
	return issues
}

// builtinSchemas declares the field contract of each service type. Keys are
// the canonical field-bag names shared with the staff correction surfaces.
func builtinSchemas() []FormValidator {
	return []FormValidator{
		&fieldSchema{
			serviceType: domain.ServiceSaleDeed,
			required: []string{
				"seller_name", "buyer_name", "property_address",
				"survey_number", "sale_amount",
			},
			numeric: []string{"sale_amount", "stamp_duty"},
		},
		&fieldSchema{
			serviceType: domain.ServiceWillDeed,
			required: []string{
				"testator_name", "beneficiary_name", "property_description",
				"witness1_name", "witness2_name",
			},
		},
		&fieldSchema{
			serviceType: domain.ServiceTrustDeed,
			required: []string{
				"trust_name", "settlor_name", "trustee_name",
				"trustee_address", "trust_amount",
			},
			numeric: []string{"trust_amount", "stamp_duty"},
		},
		&fieldSchema{
			serviceType: domain.ServicePropertyRegistration,
			required: []string{
				"owner_name", "property_address", "survey_number",
				"plot_area", "registration_value",
			},
			numeric: []string{"plot_area", "registration_value", "stamp_duty"},
		},
		&fieldSchema{
			serviceType: domain.ServicePropertySaleCertificate,
			required: []string{
				"purchaser_name", "property_address", "sale_amount",
				"auction_reference",
			},
			numeric: []string{"sale_amount", "stamp_duty"},
		},
		&fieldSchema{
			serviceType: domain.ServicePowerOfAttorney,
			required: []string{
				"principal_name", "attorney_name", "attorney_address",
				"powers_granted",
			},
		},
		&fieldSchema{
			serviceType: domain.ServiceAdoptionDeed,
			required: []string{
				"adoptive_parent_name", "biological_parent_name",
				"child_name", "child_dob",
			},
		},
		&fieldSchema{
			serviceType: domain.ServiceEStamp,
			required:    []string{"applicant_name", "stamp_purpose", "stamp_amount"},
			numeric:     []string{"stamp_amount"},
		},
		&fieldSchema{
			serviceType: domain.ServiceMapModule,
			required:    []string{"applicant_name", "survey_number", "village"},
		},
	}
}
