package services

import (
	"errors"
	"fmt"
)

// ErrorCode identifies why an operation was rejected. Expected rejections
// (wrong state, out of range, missing remedy) travel as codes rather than
// opaque errors so handlers can map them to HTTP statuses and the UI can
// show targeted guidance.
type ErrorCode string

const (
	// Location failures surfaced during check-in.
	CodeLocationDenied      ErrorCode = "LOCATION_DENIED"
	CodeLocationUnavailable ErrorCode = "LOCATION_UNAVAILABLE"
	CodeLocationTimeout     ErrorCode = "LOCATION_TIMEOUT"
	CodeLocationRequired    ErrorCode = "LOCATION_REQUIRED"

	// Check-in failures.
	CodeUnknownLocation    ErrorCode = "UNKNOWN_LOCATION"
	CodeOutOfRange         ErrorCode = "OUT_OF_RANGE"
	CodeNoAppointmentToday ErrorCode = "NO_APPOINTMENT_TODAY"
	CodeOutsideTimeWindow  ErrorCode = "OUTSIDE_TIME_WINDOW"

	// Queue and session failures.
	CodeInvalidState     ErrorCode = "INVALID_STATE"
	CodeRemedyRequired   ErrorCode = "REMEDY_REQUIRED"
	CodeAlreadyCompleted ErrorCode = "ALREADY_COMPLETED"
	CodeSessionNotActive ErrorCode = "SESSION_NOT_ACTIVE"
	CodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	CodeNotFound         ErrorCode = "NOT_FOUND"
)

// ServiceError is a rejected operation with a display-ready message and
// optional structured details (measured distance, valid window, ...).
type ServiceError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewServiceError creates a ServiceError with the given code and message.
func NewServiceError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// WithDetail attaches a structured detail and returns the error for chaining.
func (e *ServiceError) WithDetail(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// AsServiceError unwraps err into a *ServiceError if it carries one.
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
