package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultRuleWeight applies when a new rule omits its weight.
const DefaultRuleWeight = 1.0

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json field names so errors match the request payload
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// CreateRuleRequest is the payload for authoring a new rule.
type CreateRuleRequest struct {
	ID        string   `json:"id,omitempty" validate:"omitempty,max=20,alphanum"`
	SymptomID string   `json:"symptom_id" validate:"required,max=10"`
	DiseaseID string   `json:"disease_id" validate:"required,max=10"`
	MB        *float64 `json:"mb" validate:"required,gte=0,lte=1"`
	MD        *float64 `json:"md" validate:"required,gte=0,lte=1"`
	Weight    *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// ToRule converts the request into a Rule, applying DefaultRuleWeight.
func (r *CreateRuleRequest) ToRule() Rule {
	rule := Rule{
		ID:        r.ID,
		SymptomID: r.SymptomID,
		DiseaseID: r.DiseaseID,
		Weight:    DefaultRuleWeight,
	}
	if r.MB != nil {
		rule.MB = *r.MB
	}
	if r.MD != nil {
		rule.MD = *r.MD
	}
	if r.Weight != nil {
		rule.Weight = *r.Weight
	}
	return rule
}

// ValidateDiagnosisRequest checks a diagnosis payload at the service boundary.
// An empty symptom list yields ErrNoSymptoms; other problems a *ValidationError.
func ValidateDiagnosisRequest(req *DiagnosisRequest) error {
	if req == nil || len(req.SelectedSymptoms) == 0 {
		return ErrNoSymptoms
	}
	return validateStruct(req)
}

// ValidateCreateRuleRequest checks a rule authoring payload.
func ValidateCreateRuleRequest(req *CreateRuleRequest) error {
	if req == nil {
		return NewValidationError("body", "is required", nil)
	}
	return validateStruct(req)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating request: %w", err)
	}

	fe := fieldErrs[0]
	return NewValidationError(fieldPath(fe.Namespace()), describeTag(fe), fe.Value())
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "alphanum":
		return "must be alphanumeric"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
