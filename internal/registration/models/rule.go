package models

import (
	"regexp"
	"unicode/utf16"
)

// ErrorKind classifies a user-facing validation failure.
type ErrorKind string

const (
	KindFieldRequired        ErrorKind = "field_required"
	KindFieldTooShort        ErrorKind = "field_too_short"
	KindFieldPatternMismatch ErrorKind = "field_pattern_mismatch"
)

// Rule is one check applied to a trimmed field value. The set of variants is
// closed: NonEmpty, MinLength and Pattern.
type Rule interface {
	// Accepts reports whether the trimmed value passes the rule.
	Accepts(value string) bool
	Kind() ErrorKind
	Message() string
	rule()
}

// NonEmpty rejects the empty string.
type NonEmpty struct {
	Msg string
}

func (r NonEmpty) Accepts(value string) bool { return value != "" }
func (r NonEmpty) Kind() ErrorKind           { return KindFieldRequired }
func (r NonEmpty) Message() string           { return r.Msg }
func (NonEmpty) rule()                       {}

// MinLength rejects values shorter than N characters. Length is counted in
// UTF-16 code units, the unit browsers report, so "Zé" is 2 and "😀" is 2.
type MinLength struct {
	N   int
	Msg string
}

func (r MinLength) Accepts(value string) bool { return utf16Len(value) >= r.N }
func (r MinLength) Kind() ErrorKind           { return KindFieldTooShort }
func (r MinLength) Message() string           { return r.Msg }
func (MinLength) rule()                       {}

// Pattern rejects values the expression does not match. Expr must be anchored
// at both ends for the match to cover the whole value.
type Pattern struct {
	Expr *regexp.Regexp
	Msg  string
}

func (r Pattern) Accepts(value string) bool { return r.Expr.MatchString(value) }
func (r Pattern) Kind() ErrorKind           { return KindFieldPatternMismatch }
func (r Pattern) Message() string           { return r.Msg }
func (Pattern) rule()                       {}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		// invalid UTF-8 ranges as U+FFFD, one unit
		n += utf16.RuneLen(r)
	}
	return n
}
