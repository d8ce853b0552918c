package services

import (
	"errors"
	"fmt"
)

// ValidationError reports a required input that is malformed or not a
// recognized value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a listing or lead that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// UnauthorizedError is returned when no admin identity accompanies a
// mutation or an admin read.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return "admin identity required"
}

// OperationFailedError hides a storage failure behind a generic message.
// The cause stays reachable through errors.Unwrap for logging.
type OperationFailedError struct {
	Op    string
	cause error
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *OperationFailedError) Unwrap() error {
	return e.cause
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func newNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// operationFailed passes typed service errors through untouched and wraps
// everything else.
func operationFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		nf *NotFoundError
		ue *UnauthorizedError
		of *OperationFailedError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ue) || errors.As(err, &of) {
		return err
	}
	return &OperationFailedError{Op: op, cause: err}
}

func requireActor(actor string) error {
	if actor == "" {
		return &UnauthorizedError{}
	}
	return nil
}

// IsValidation, IsNotFound, IsUnauthorized and IsOperationFailed let callers
// classify errors without importing the concrete types.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue)
}

func IsOperationFailed(err error) bool {
	var of *OperationFailedError
	return errors.As(err, &of)
}
