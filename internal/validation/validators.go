package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/benvon/career-coach/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("task_type", validateTaskType); err != nil {
		panic(fmt.Sprintf("failed to register task_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("job_type", validateJobType); err != nil {
		panic(fmt.Sprintf("failed to register job_type validator: %v", err))
	}
}

// validateTaskType validates that a string is a valid TaskType enum value
func validateTaskType(fl validator.FieldLevel) bool {
	return models.TaskType(fl.Field().String()).Valid()
}

// validateJobType validates that a string is a valid JobType enum value
func validateJobType(fl validator.FieldLevel) bool {
	return models.JobType(fl.Field().String()).Valid()
}

// Struct validates v and flattens validator errors into one readable
// message, e.g. "daily_time_minutes must be at least 15". Fields are named by
// their JSON keys.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "email", "url":
		return fmt.Sprintf("%s must be a valid %s", field, fe.Tag())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskType validates a TaskType string value
func ValidateTaskType(value string) error {
	if !models.TaskType(value).Valid() {
		return fmt.Errorf("invalid task_type: %s (must be 'learn', 'practice', or 'revise')", value)
	}
	return nil
}
