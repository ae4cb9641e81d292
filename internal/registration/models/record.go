package models

import (
	"time"

	"github.com/google/uuid"
)

// Form holds raw field values keyed by field. A missing key reads as "".
type Form map[FieldID]string

// Value returns the raw, untrimmed value for id.
func (f Form) Value(id FieldID) string {
	return f[id]
}

// Record is a completed registration.
//
// Invariants:
//   - created only from a form whose every field validated
//   - field values are the raw submitted strings, not the trimmed ones
//   - RegistrationDate is captured when the record is built
//   - never mutated after construction; stores hand out copies
type Record struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Institution      string    `json:"institution"`
	YearOfStudy      string    `json:"yearOfStudy"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// NewRecord builds a record from an already validated form.
func NewRecord(id uuid.UUID, form Form, now time.Time) Record {
	return Record{
		ID:               id,
		FullName:         form.Value(FieldFullName),
		Email:            form.Value(FieldEmail),
		Phone:            form.Value(FieldPhone),
		Institution:      form.Value(FieldInstitution),
		YearOfStudy:      form.Value(FieldYearOfStudy),
		RegistrationDate: now,
	}
}
