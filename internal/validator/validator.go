package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

// ValidationError describes one failed field rule.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field errors for one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validator wraps go-playground/validator with the platform's custom rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()
	return v
}

// Validate validates any tagged struct.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return toValidationErrors(err)
}

func (v *Validator) registerDomainRules() {
	// passing score is a percentage
	_ = v.validate.RegisterValidation("passing_score", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= 0 && score <= 100
	})

	// proctoring severity is a closed set; empty means severity-less mode
	_ = v.validate.RegisterValidation("proctoring_severity", func(fl validator.FieldLevel) bool {
		switch models.ProctoringSeverity(fl.Field().String()) {
		case "", models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
			return true
		}
		return false
	})

	// ledger status values
	_ = v.validate.RegisterValidation("assignment_status", func(fl validator.FieldLevel) bool {
		switch models.AssignmentStatus(fl.Field().String()) {
		case models.AssignmentAssigned, models.AssignmentStarted, models.AssignmentCompleted:
			return true
		}
		return false
	})
}

func toValidationErrors(err error) ValidationErrors {
	var out ValidationErrors

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "struct"}}
	}

	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "passing_score":
		return "must be a percentage between 0 and 100"
	case "proctoring_severity":
		return "must be one of low, medium, high"
	case "assignment_status":
		return "must be one of assigned, started, completed"
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}
