// Package student contains the JSON API handlers for the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// The router expects func(http.ResponseWriter, *http.Request). To inject
// the record store, each handler is built by a factory that captures it:
//
//	router.HandleFunc("POST /api/students", student.New(store))
//	//                                      ^^^^^^^^^^^^^^^^^^
//	//                 New(store) runs ONCE at startup and returns the
//	//                 handler that runs on EVERY request.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
	"github.com/aanand-mishra/student-records/internal/validation"
	"github.com/go-playground/validator/v10"
)

// UpdateResult is the body returned by Update. Warning is set when part
// of the patch (the birth date) was rejected while the rest was applied.
type UpdateResult struct {
	Student types.Student `json:"student"`
	Warning string        `json:"warning,omitempty"`
}

// decodeBody decodes the JSON request body into v, writing a 400 and
// returning false when the body is empty or malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "name": "trần văn an", "birth_date": "1-1-2000", "phone": "0123", "address": "Hanoi" }
//
// Success response (201 Created) — the stored, normalised record:
//
//	{ "student_id": "24110001", "name": "Trần Văn An", "birth_date": "01/01/2000", ... }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	409 Conflict     — all student ids are used up
//	500 Internal     — the data file could not be written
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	validate := validation.New()

	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var input types.StudentInput
		if !decodeBody(w, r, &input) {
			return
		}

		input.Name = strings.TrimSpace(input.Name)
		input.BirthDate = strings.TrimSpace(input.BirthDate)
		input.Phone = strings.TrimSpace(input.Phone)
		input.Address = strings.TrimSpace(input.Address)

		if err := validate.Struct(input); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		created, err := store.CreateStudent(input)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.StoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// Error responses:
//
//	404 Not Found — no student has this id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		student, err := store.GetStudentByID(id)
		if err != nil {
			response.StoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns a JSON array of students in display order.
//
// Optional query parameters filter the list:
//
//	?q=an             keyword: name (case-insensitive) or id substring
//	?by=name&q=an     by = id | name | phone | keyword
//
// Returns an empty array [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if !query.Has("q") {
			slog.Info("getting all students")
			response.WriteJSON(w, http.StatusOK, store.GetStudents())
			return
		}

		mode, err := storage.ParseSearchMode(query.Get("by"))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		q := strings.TrimSpace(query.Get("q"))
		slog.Info("searching students", slog.String("by", query.Get("by")), slog.String("q", q))

		response.WriteJSON(w, http.StatusOK, store.Search(mode, q))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Applies a PARTIAL update: omitted or empty fields keep their value.
//
// Request body (JSON):
//
//	{ "phone": "0999", "birth_date": "31/02/2020" }
//
// The birth date must be a real dd/mm/yyyy date. If it is not, the other
// fields are still applied and the response carries a warning:
//
//	{ "student": { ... }, "warning": "birth_date: invalid birth date" }
//
// Error responses:
//
//	400 Bad Request  — empty body or malformed JSON
//	404 Not Found    — no student has this id
//	500 Internal     — the data file could not be written
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		var patch types.StudentPatch
		if !decodeBody(w, r, &patch) {
			return
		}

		updated, err := store.UpdateStudentByID(id, patch)

		var perr *storage.PersistenceError
		if err != nil && (!errors.Is(err, storage.ErrInvalidBirthDate) || errors.As(err, &perr)) {
			slog.Error("error updating student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.StoreError(w, err)
			return
		}

		result := UpdateResult{Student: updated}
		if err != nil {
			result.Warning = err.Error()
		}

		response.WriteJSON(w, http.StatusOK, result)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		if err := store.DeleteStudentByID(id); err != nil {
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.StoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// Stats handles GET /api/stats and GET /stats.
func Stats(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, store.Statistics())
	}
}
