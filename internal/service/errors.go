package service

import "fmt"

// ErrorKind is the machine-checkable category of a submission failure.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindAuthentication      ErrorKind = "authentication"
	KindNotFound            ErrorKind = "not_found"
	KindAmountMismatch      ErrorKind = "amount_mismatch"
	KindAlreadyComplete     ErrorKind = "already_complete"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindConflict            ErrorKind = "conflict"
	KindStore               ErrorKind = "store"
)

// Error carries a kind for callers and a human-readable message for the
// agent re-entering the submission. Field is set for validation errors.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, defaulting to store for plain errors from
// the collaborators.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindStore
}

func validationErr(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func notFoundErr(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func storeErr(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}
