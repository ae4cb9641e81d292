package models

import (
	"fmt"
	"strings"

	dErrors "regdesk/pkg/domain-errors"
)

// ValidationResult is the verdict for one field. Message is empty iff Valid.
type ValidationResult struct {
	Valid   bool      `json:"valid"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

// Passed is the result of a field that satisfied every rule.
func Passed() ValidationResult {
	return ValidationResult{Valid: true}
}

// Failed builds the result for the rule that rejected the value.
func Failed(r Rule) ValidationResult {
	return ValidationResult{Valid: false, Message: r.Message(), Kind: r.Kind()}
}

// Outcome is the whole-form verdict. Results always holds one entry per field
// of the form.
type Outcome struct {
	Valid   bool                         `json:"valid"`
	Results map[FieldID]ValidationResult `json:"results"`
}

// FirstInvalid returns the first failing field in declaration order.
func (o Outcome) FirstInvalid() (FieldID, bool) {
	for _, id := range FieldOrder {
		if res, ok := o.Results[id]; ok && !res.Valid {
			return id, true
		}
	}
	return "", false
}

// InvalidFields lists failing fields in declaration order.
func (o Outcome) InvalidFields() []FieldID {
	var out []FieldID
	for _, id := range FieldOrder {
		if res, ok := o.Results[id]; ok && !res.Valid {
			out = append(out, id)
		}
	}
	return out
}

// ValidationFailure is returned by a submission whose form did not validate.
// Nothing was recorded.
type ValidationFailure struct {
	Outcome Outcome
}

func (f *ValidationFailure) Error() string {
	fields := f.Outcome.InvalidFields()
	names := make([]string, len(fields))
	for i, id := range fields {
		names[i] = string(id)
	}
	return fmt.Sprintf("registration form invalid: %s", strings.Join(names, ", "))
}

// DomainCode lets dErrors.HasCode classify the failure.
func (f *ValidationFailure) DomainCode() dErrors.Code {
	return dErrors.CodeValidation
}
