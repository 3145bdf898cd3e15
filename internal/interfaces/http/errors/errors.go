package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ipede/auth-hub/internal/domain"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string        `json:"error"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents a validation error detail
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getStatus(err *domain.Error) int {
	switch err {
	case domain.ErrAuthenticationRequired, domain.ErrSessionNotFound, domain.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case domain.ErrUserNotFound:
		return http.StatusNotFound
	case domain.ErrUserAlreadyExists, domain.ErrClientAlreadyExists:
		return http.StatusConflict
	case domain.ErrInternal:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// RespondWithError sends a standardized error response. Unrecognized errors
// are rendered as server_error without leaking internals.
func RespondWithError(w http.ResponseWriter, err error) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		domainErr = domain.ErrInternal
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(getStatus(domainErr))
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    domainErr.GetCode(),
		Message: domainErr.GetMessage(),
	})
}

// RespondWithDetails sends a standardized error response with field details
func RespondWithDetails(w http.ResponseWriter, err *domain.Error, details []ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(getStatus(err))
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    err.GetCode(),
		Message: err.GetMessage(),
		Details: details,
	})
}

// ValidationErrors collects field level validation failures
type ValidationErrors []ErrorDetail

// Add adds a validation error to the slice
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ErrorDetail{Field: field, Message: message})
}

// HasErrors returns true if there are any validation errors
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}
