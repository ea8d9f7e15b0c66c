// Package validation decides which resource operations run hand-written
// payload checks. The decision lives in a Rules table; an operation
// without an entry is not checked.
package validation

import (
	"errors"
	"fmt"
	"slices"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/apidemo/internal/models"
)

// Rule checks a candidate payload and returns a non-nil error for a violation.
type Rule func(payload any) error

// Rules maps an operation to the rule applied before it runs.
type Rules map[models.Operation]Rule

// ErrUnexpectedPayload is returned when a rule receives a payload type it does not know.
var ErrUnexpectedPayload = errors.New("unexpected payload type")

// Violation describes one failed constraint.
type Violation struct {
	Field string
	Tag   string
	Param string
}

// ViolationsError lists every constraint a payload failed.
type ViolationsError []Violation

func (v ViolationsError) Error() string {
	if len(v) == 0 {
		return "payload is invalid"
	}
	first := v[0]
	msg := fmt.Sprintf("field %s failed on %s", first.Field, first.Tag)
	if first.Param != "" {
		msg += "=" + first.Param
	}
	if len(v) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(v)-1)
	}

	return msg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("category", func(fieldLevel validator.FieldLevel) bool {
		return slices.Contains(models.Categories, fieldLevel.Field().String())
	})
	if err != nil {
		panic(err)
	}

	return v
}

// ProductCreation enforces the product creation constraints: name 3..50
// characters, price at least 0.01, a known category, 1..5 tags when tags
// are sent and a non-negative inStock when it is sent.
func ProductCreation(payload any) error {
	var input models.ProductInput
	switch p := payload.(type) {
	case models.ProductInput:
		input = p
	case *models.ProductInput:
		if p == nil {
			return ErrUnexpectedPayload
		}
		input = *p
	default:
		return fmt.Errorf("%w: %T", ErrUnexpectedPayload, payload)
	}

	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	violations := make(ViolationsError, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		violations = append(violations, Violation{
			Field: fieldError.Field(),
			Tag:   fieldError.Tag(),
			Param: fieldError.Param(),
		})
	}

	return violations
}

// DefaultRules returns the rule table the service runs with: only product
// creation is hand validated. Replace-product, create-user and update-user
// rely on the OpenAPI gate alone.
func DefaultRules() Rules {
	return Rules{
		models.OpCreateProduct: ProductCreation,
	}
}

// Check runs the rule registered for op, if any.
func (r Rules) Check(op models.Operation, payload any) error {
	rule, ok := r[op]
	if !ok || rule == nil {
		return nil
	}

	return rule(payload)
}
