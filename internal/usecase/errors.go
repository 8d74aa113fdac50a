package usecase

import "errors"

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeLoginDisabled = "LOGIN_DISABLED"
	CodeStorage       = "STORAGE_ERROR"
)

// DomainError is a failure the caller can correct.
type DomainError struct {
	Code    string
	Message string
	Details map[string][]string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps an infrastructure failure.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func notFound(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func storageError(msg string, err error) error {
	return &TechnicalError{Code: CodeStorage, Message: msg, Err: err}
}
