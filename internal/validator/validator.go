// Package validator implements field validation checks and the regular
// expressions shared by the data layer.
package validator

import (
	"regexp"
	"strings"
	"time"
)

var (
	// EmailRX checks the syntactic validity of an email address.
	EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	// UserIDRX matches system-generated user IDs such as U001.
	UserIDRX = regexp.MustCompile(`^U\d{3,}$`)

	// LoanIDRX matches system-generated loan IDs such as L001.
	LoanIDRX = regexp.MustCompile(`^L\d{3,}$`)

	isbnRX = regexp.MustCompile(`^\d{13}$`)
)

// DateLayout is the storage format for all dates.
const DateLayout = "2006-01-02"

// Validator contains a map of validation errors.
type Validator struct {
	Errors map[string]string
}

// New creates a new Validator instance with an empty errors map.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the errors map is empty.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map as long as no entry
// already exists for the given key.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error message to the map only if a validation check is not ok.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Matches returns true if a string value matches a specific regexp pattern.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// NormalizeISBN strips hyphens and spaces from an ISBN.
func NormalizeISBN(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(isbn)
}

// ValidISBN returns true if a normalized ISBN consists of exactly 13 digits.
func ValidISBN(isbn string) bool {
	return isbnRX.MatchString(isbn)
}

// ValidDate returns true if a string is an exact YYYY-MM-DD calendar date.
// Dates such as 2024-02-30 are rejected by the round-trip check.
func ValidDate(value string) bool {
	t, err := time.Parse(DateLayout, value)
	return err == nil && t.Format(DateLayout) == value
}
