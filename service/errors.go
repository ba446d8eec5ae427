package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrFailedValidation = errors.New("failed validation")
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateRecord  = errors.New("duplicate record")
	ErrEditConflict     = errors.New("edit conflict")
	ErrBookUnavailable  = errors.New("book unavailable")
	ErrDuplicateLoan    = errors.New("duplicate loan")
	ErrAlreadyReturned  = errors.New("already returned")
	ErrDeleteConflict   = errors.New("delete conflict")
)

// validationError carries the localized messages from a validator map
// while still matching ErrFailedValidation through errors.Is.
type validationError struct {
	messages []string
}

func (e *validationError) Error() string {
	return strings.Join(e.messages, "\n")
}

func (e *validationError) Is(target error) bool {
	return target == ErrFailedValidation
}

// failedValidation flattens a validation error map into a single error.
// Keys are sorted so the message order is deterministic.
func (s *service) failedValidation(errorMap map[string]string) error {
	keys := make([]string, 0, len(errorMap))
	for k := range errorMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, errorMap[k])
	}
	return &validationError{messages: messages}
}
