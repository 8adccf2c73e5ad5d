package requests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("request not found")
	ErrNotPaid             = errors.New("request has not been paid")
	ErrAlreadyPaid         = errors.New("request has already been paid")
	ErrNoQuote             = errors.New("no final quote has been set")
	ErrStorageUnavailable  = errors.New("object storage is not configured")
	ErrPaymentsUnavailable = errors.New("payments are not configured")
)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every rejected field of a submission. Nothing is
// persisted when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// PersistenceError wraps a store failure. OrphanID is set when a bare
// template request was created but its content could not be attached; the
// row stays behind and is listed by ListOrphans.
type PersistenceError struct {
	Op       string
	OrphanID uuid.UUID
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.OrphanID != uuid.Nil {
		return fmt.Sprintf("%s (orphaned request %s): %v", e.Op, e.OrphanID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
