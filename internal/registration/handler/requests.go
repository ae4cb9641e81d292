package handler

import (
	"time"

	"github.com/google/uuid"

	"regdesk/internal/registration/models"
)

// isoMillis matches the ISO-8601 layout browsers produce with toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// FieldValueRequest carries one field's current raw value.
type FieldValueRequest struct {
	Value string `json:"value"`
}

// FormRequest carries the raw values of the whole form. Missing keys decode
// to "" and validate as blank.
type FormRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Institution string `json:"institution"`
	YearOfStudy string `json:"yearOfStudy"`
}

// Form converts the request without trimming; the validator trims for
// evaluation and the record keeps the raw text.
func (r FormRequest) Form() models.Form {
	return models.Form{
		models.FieldFullName:    r.FullName,
		models.FieldEmail:       r.Email,
		models.FieldPhone:       r.Phone,
		models.FieldInstitution: r.Institution,
		models.FieldYearOfStudy: r.YearOfStudy,
	}
}

// ClearResponse answers the input-time clear policy.
type ClearResponse struct {
	Field models.FieldID `json:"field"`
	Clear bool           `json:"clear"`
}

// FieldResultResponse is the blur-time verdict for one field.
type FieldResultResponse struct {
	Field models.FieldID `json:"field"`
	models.ValidationResult
}

// OutcomeResponse is the whole-form verdict.
type OutcomeResponse struct {
	Valid        bool                                       `json:"valid"`
	Results      map[models.FieldID]models.ValidationResult `json:"results"`
	FirstInvalid models.FieldID                             `json:"first_invalid,omitempty"`
}

func toOutcomeResponse(o models.Outcome) OutcomeResponse {
	first, _ := o.FirstInvalid()
	return OutcomeResponse{Valid: o.Valid, Results: o.Results, FirstInvalid: first}
}

// ValidationErrorResponse is sent when a submission is rejected.
type ValidationErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	OutcomeResponse
}

// RecordResponse is the wire form of a registration.
type RecordResponse struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Institution      string    `json:"institution"`
	YearOfStudy      string    `json:"yearOfStudy"`
	RegistrationDate string    `json:"registrationDate"`
}

func toRecordResponse(r *models.Record) RecordResponse {
	return RecordResponse{
		ID:               r.ID,
		FullName:         r.FullName,
		Email:            r.Email,
		Phone:            r.Phone,
		Institution:      r.Institution,
		YearOfStudy:      r.YearOfStudy,
		RegistrationDate: r.RegistrationDate.UTC().Format(isoMillis),
	}
}

// ListResponse is the organiser view of the store.
type ListResponse struct {
	Count         int              `json:"count"`
	Registrations []RecordResponse `json:"registrations"`
	GeneratedAt   string           `json:"generated_at"`
}

func toListResponse(records []models.Record, now time.Time) ListResponse {
	out := ListResponse{
		Count:         len(records),
		Registrations: make([]RecordResponse, len(records)),
		GeneratedAt:   now.UTC().Format(isoMillis),
	}
	for i := range records {
		out.Registrations[i] = toRecordResponse(&records[i])
	}
	return out
}
