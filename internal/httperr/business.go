package httperr

import "errors"

// BusinessError is a rule violation identified by a stable code.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// ValidationError is input the user can correct. It is caught before any
// call to the platform.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

func Validation(code, message string) error {
	return &ValidationError{Code: code, Message: message}
}

// IntegrityError means the platform data is inconsistent and the flow
// cannot continue without guessing.
type IntegrityError struct {
	Code    string
	Message string
}

func (e *IntegrityError) Error() string {
	return e.Code + ": " + e.Message
}

func Integrity(code, message string) error {
	return &IntegrityError{Code: code, Message: message}
}

// UpstreamError is a failed call to a remote API. Status is the remote
// status code, zero when no response arrived.
type UpstreamError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
