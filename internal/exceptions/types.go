package exceptions

import (
	"errors"
	"fmt"
	"net/http"
)

type ServiceError struct {
	StatusCode int
	Cause      error
}

func (se *ServiceError) Error() string {
	return se.Cause.Error()
}

func (se *ServiceError) Unwrap() error {
	return se.Cause
}

type RequestError interface {
	ToServiceError() *ServiceError
	Error() string
}

// AuthenticationError covers bad credentials and missing identities.
type AuthenticationError struct {
	Message string
}

func (ae *AuthenticationError) Error() string {
	return ae.Message
}

func (ae *AuthenticationError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusUnauthorized,
		Cause:      ae,
	}
}

func Authentication(message string) *AuthenticationError {
	return &AuthenticationError{
		Message: message,
	}
}

type ConflictError struct {
	Resource string
	Id       string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("Found conflicting %s with id: %s", ce.Resource, ce.Id)
}

func (ce *ConflictError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusConflict,
		Cause:      ce,
	}
}

func Conflict(resource string, id string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Id:       id,
	}
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find a %s with id: %s", nfe.Resource, nfe.Id)
}

func (nfe *NotFoundError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusNotFound,
		Cause:      nfe,
	}
}

func NotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Id:       id,
	}
}

type InvalidInputError struct {
	Message string
}

func (ie *InvalidInputError) Error() string {
	return ie.Message
}

func (ie *InvalidInputError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusBadRequest,
		Cause:      ie,
	}
}

func InvalidInput(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

// BackendError is a storage or network failure. Error returns only the
// human-readable message; the cause is kept for logging.
type BackendError struct {
	Message string
	Cause   error
}

func (be *BackendError) Error() string {
	return be.Message
}

func (be *BackendError) Unwrap() error {
	return be.Cause
}

func (be *BackendError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusInternalServerError,
		Cause:      be,
	}
}

func Backend(message string, cause error) *BackendError {
	return &BackendError{
		Message: message,
		Cause:   cause,
	}
}

// StatusCode maps err onto an HTTP status, defaulting to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var re RequestError
	if errors.As(err, &re) {
		return re.ToServiceError().StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing text for err. Typed errors carry their own
// message; anything else falls back.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var re RequestError
	if errors.As(err, &re) {
		return re.Error()
	}
	return fallback
}
