// Package validator evaluates the registration form's field rules. Every
// function here is pure: no logging, no state.
package validator

import (
	"fmt"

	"regdesk/internal/registration/models"
)

// ValidateField checks one raw value against its field's rules.
//
// The value is trimmed before evaluation. NonEmpty rules run first; an empty
// value fails with the required message and no other rule sees it. Remaining
// rules run in declaration order and the first rejection wins.
func ValidateField(id models.FieldID, raw string) (models.ValidationResult, error) {
	spec, err := models.LookupSpec(id)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("validate %q: %w", id, err)
	}
	return evaluate(spec, models.TrimValue(raw)), nil
}

// MustValidateField is ValidateField for callers that only pass field
// constants. It panics on an unknown field.
func MustValidateField(id models.FieldID, raw string) models.ValidationResult {
	res, err := ValidateField(id, raw)
	if err != nil {
		panic(err)
	}
	return res
}

// ValidateAll validates every field of the form. It never stops at the first
// failure so all messages can be shown at once.
func ValidateAll(form models.Form) models.Outcome {
	outcome := models.Outcome{
		Valid:   true,
		Results: make(map[models.FieldID]models.ValidationResult, len(models.FieldOrder)),
	}
	for _, id := range models.FieldOrder {
		res := MustValidateField(id, form.Value(id))
		outcome.Results[id] = res
		if !res.Valid {
			outcome.Valid = false
		}
	}
	return outcome
}

// ShouldClearError is the input-time display policy: once a field holds any
// non-blank text its error may be hidden without re-validating. It says
// nothing about validity.
func ShouldClearError(id models.FieldID, raw string) bool {
	if _, err := models.LookupSpec(id); err != nil {
		return false
	}
	return models.TrimValue(raw) != ""
}

func evaluate(spec models.FieldSpec, value string) models.ValidationResult {
	if value == "" {
		for _, r := range spec.Rules {
			if _, ok := r.(models.NonEmpty); ok {
				return models.Failed(r)
			}
		}
		// optional and blank: nothing else to check
		return models.Passed()
	}
	for _, r := range spec.Rules {
		if !r.Accepts(value) {
			return models.Failed(r)
		}
	}
	return models.Passed()
}
