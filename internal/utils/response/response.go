// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every JSON handler in this application sends its result through
// WriteJSON, and every error has the same shape:
//
//	{ "status": "error", "error": "name: field is required" }
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/validation"
	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts the validator's per-field errors into a
// single human-readable Response:
//
//	{ "status": "error", "error": "field name is required, field birth_date must be a valid date" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case validation.TagBirthDate:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid date", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}

// StatusFor maps a store error onto an HTTP status code:
//
//	ValidationError      → 400 Bad Request
//	ErrNotFound          → 404 Not Found
//	ErrCapacityExhausted → 409 Conflict
//	anything else        → 500 Internal Server Error
func StatusFor(err error) int {
	var verr *storage.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrCapacityExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// StoreError writes err with the status chosen by StatusFor.
func StoreError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, StatusFor(err), GeneralError(err))
}
