package models

import (
	"regexp"
	"strings"
	"unicode"

	dErrors "regdesk/pkg/domain-errors"
)

// FieldID names one input of the registration form.
type FieldID string

const (
	FieldFullName    FieldID = "fullName"
	FieldEmail       FieldID = "email"
	FieldPhone       FieldID = "phone"
	FieldInstitution FieldID = "institution"
	FieldYearOfStudy FieldID = "yearOfStudy"
)

// FieldOrder is the declaration order of the form. Whole-form results and
// "first invalid field" lookups follow it.
var FieldOrder = []FieldID{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldInstitution,
	FieldYearOfStudy,
}

// ErrUnknownField is returned when a field identifier is not part of the form.
// It signals a caller defect; user input alone cannot produce it once the
// transport layer has parsed the identifier.
var ErrUnknownField = dErrors.New(dErrors.CodeInternal, "unknown registration field")

// spaceClass is the whitespace set browsers use for \s and String.trim:
// ASCII whitespace including vertical tab, Unicode separators and the BOM.
// RE2's \s alone covers only [\t\n\f\r ].
const spaceClass = `\s\v\p{Z}\x{FEFF}`

var (
	emailPattern = regexp.MustCompile(`^[^` + spaceClass + `@]+@[^` + spaceClass + `@]+\.[^` + spaceClass + `@]+$`)
	// Accepts any run of ten or more digits, spaces, hyphens, plus signs and
	// parentheses. Digit-free strings such as "((()))---+" pass.
	phonePattern = regexp.MustCompile(`^[\d` + spaceClass + `\-\+\(\)]{10,}$`)
)

// IsSpace reports whether r belongs to the form's whitespace set.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\uFEFF':
		return true
	}
	return unicode.In(r, unicode.Z)
}

// TrimValue strips leading and trailing whitespace as the page does before
// evaluating a value.
func TrimValue(raw string) string {
	return strings.TrimFunc(raw, IsSpace)
}

// FieldSpec binds a field to its ordered rules.
type FieldSpec struct {
	ID    FieldID
	Rules []Rule
}

// Required reports whether the spec carries a NonEmpty rule.
func (s FieldSpec) Required() bool {
	for _, r := range s.Rules {
		if _, ok := r.(NonEmpty); ok {
			return true
		}
	}
	return false
}

// Specs is the fixed rule table for the form.
var Specs = map[FieldID]FieldSpec{
	FieldFullName: {
		ID: FieldFullName,
		Rules: []Rule{
			NonEmpty{Msg: "Full name is required"},
			MinLength{N: 2, Msg: "Name must be at least 2 characters long"},
		},
	},
	FieldEmail: {
		ID: FieldEmail,
		Rules: []Rule{
			NonEmpty{Msg: "Email address is required"},
			Pattern{Expr: emailPattern, Msg: "Please enter a valid email address"},
		},
	},
	FieldPhone: {
		ID: FieldPhone,
		Rules: []Rule{
			NonEmpty{Msg: "Phone number is required"},
			Pattern{Expr: phonePattern, Msg: "Please enter a valid phone number"},
		},
	},
	FieldInstitution: {
		ID:    FieldInstitution,
		Rules: []Rule{NonEmpty{Msg: "Institution/University is required"}},
	},
	FieldYearOfStudy: {
		ID:    FieldYearOfStudy,
		Rules: []Rule{NonEmpty{Msg: "Year of study is required"}},
	},
}

// LookupSpec returns the spec for id or ErrUnknownField.
func LookupSpec(id FieldID) (FieldSpec, error) {
	spec, ok := Specs[id]
	if !ok {
		return FieldSpec{}, ErrUnknownField
	}
	return spec, nil
}

// ParseFieldID converts an untrusted identifier, e.g. a URL segment.
func ParseFieldID(raw string) (FieldID, error) {
	id := FieldID(raw)
	if _, ok := Specs[id]; !ok {
		return "", ErrUnknownField
	}
	return id, nil
}
