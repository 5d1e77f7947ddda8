// Package form declares the input widgets of the report flow and the
// validation rules attached to them.
//
// Validation lives with the field definition, the way form widgets carry
// their own rules; the step controller only asks a field whether a value
// is acceptable.
package form

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/aretw0/reportflow/pkg/domain"
)

// Notes length bounds.
const (
	NotesMinLength = 20
	NotesMaxLength = 500
)

// Field names used by the flow.
const (
	FieldCategory = "category"
	FieldNotes    = "notes"
)

// Rule names a failed validation.
type Rule string

const (
	RuleRequired  Rule = "required"
	RuleMinLength Rule = "min_length"
	RuleMaxLength Rule = "max_length"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError is a field-level failure shown inline next to the widget.
type ValidationError struct {
	Field   string
	Rule    Rule
	Message domain.MessageRef
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q failed %s (%s)", e.Field, e.Rule, e.Message.ID)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Select builds a required select field over the given choices.
func Select(name string, choices []domain.Choice, required domain.MessageRef) domain.Field {
	return domain.Field{
		Name:     name,
		Kind:     domain.FieldSelect,
		Required: true,
		Choices:  choices,
		Messages: domain.FieldTexts{Required: required},
	}
}

// TextArea builds a required text area with length bounds.
func TextArea(name string, minLength, maxLength int, texts domain.FieldTexts) domain.Field {
	return domain.Field{
		Name:      name,
		Kind:      domain.FieldTextArea,
		Required:  true,
		MinLength: minLength,
		MaxLength: maxLength,
		Messages:  texts,
	}
}

// Validate checks value against the field's rules.
// The empty string is the default value of every widget, so it is what
// "required" rejects. Lengths are counted in characters.
func Validate(f domain.Field, value string) error {
	if value == "" {
		if f.Required {
			return &ValidationError{Field: f.Name, Rule: RuleRequired, Message: f.Messages.Required}
		}
		return nil
	}

	n := utf8.RuneCountInString(value)
	if f.MaxLength > 0 && n > f.MaxLength {
		return &ValidationError{Field: f.Name, Rule: RuleMaxLength, Message: f.Messages.MaxLength}
	}
	if f.MinLength > 0 && n < f.MinLength {
		return &ValidationError{Field: f.Name, Rule: RuleMinLength, Message: f.Messages.MinLength}
	}
	return nil
}
