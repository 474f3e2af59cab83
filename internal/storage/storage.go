// Package storage defines the Storage interface — the contract every
// student-record backend must satisfy — and the errors it reports.
//
// WHY AN INTERFACE?
// ─────────────────
// The console loop and the HTTP handlers should not know or care how the
// records are kept. By depending only on this interface:
//
//   - Switching backends = implement the interface, change one line in
//     main.go. Zero handler changes.
//
//   - Writing tests = pass any implementation that satisfies it.
package storage

import (
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Sentinel errors. Callers match them with errors.Is; ValidationError
// and PersistenceError below unwrap to them (or to the OS error).
var (
	// ErrNotFound — no record has the requested id.
	ErrNotFound = errors.New("no student found with this id")

	// ErrCapacityExhausted — all 999 ids have been handed out.
	ErrCapacityExhausted = errors.New("student id space exhausted")

	// ErrMissingField — a required field is empty after trimming.
	ErrMissingField = errors.New("field is required")

	// ErrInvalidBirthDate — the birth date could not be parsed.
	ErrInvalidBirthDate = errors.New("invalid birth date")
)

// ValidationError reports which input field was rejected and why.
// It unwraps to ErrMissingField or ErrInvalidBirthDate.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError is returned when the data file cannot be read or
// written. For writes, the in-memory change has already been applied and
// is NOT rolled back; the next successful save will persist it.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SearchMode selects how Search matches the query.
type SearchMode int

const (
	// SearchByID matches the student id exactly.
	SearchByID SearchMode = iota + 1
	// SearchByName matches a case-insensitive substring of the name.
	SearchByName
	// SearchByPhone matches a substring of the phone number as stored.
	SearchByPhone
	// SearchByKeyword matches a case-insensitive substring of the name
	// OR a substring of the id. Used by the web search page.
	SearchByKeyword
)

// ParseSearchMode maps "id", "name", "phone" and "keyword" to a mode.
func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case "id":
		return SearchByID, nil
	case "name":
		return SearchByName, nil
	case "phone":
		return SearchByPhone, nil
	case "keyword", "":
		return SearchByKeyword, nil
	default:
		return 0, fmt.Errorf("unknown search mode %q (supported: id, name, phone, keyword)", s)
	}
}

// Storage is the record-store contract.
type Storage interface {
	// CreateStudent validates the input, normalises name and birth date,
	// assigns the next id, stores and persists the record.
	// Validation and capacity failures leave the store untouched.
	// A *PersistenceError means the record WAS added in memory.
	CreateStudent(input types.StudentInput) (types.Student, error)

	// GetStudentByID returns the record with the given id or ErrNotFound.
	GetStudentByID(id string) (types.Student, error)

	// GetStudents returns every record in display order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() []types.Student

	// UpdateStudentByID applies the non-empty fields of patch.
	// If only the birth date is rejected, the other fields are still
	// applied and the updated record is returned TOGETHER with an error
	// wrapping ErrInvalidBirthDate.
	UpdateStudentByID(id string, patch types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes the record, or returns ErrNotFound.
	DeleteStudentByID(id string) error

	// SortStudents re-orders the records by surname key (stable).
	SortStudents()

	// Search returns matching records in display order.
	Search(mode SearchMode, query string) []types.Student

	// Statistics summarises the store without consuming an id.
	Statistics() types.Statistics
}
