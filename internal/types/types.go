// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and the console can all import types without
// depending on each other.
package types

// Student represents one student record.
//
// The json tags match the keys of the persisted data file, so the same
// struct is used both for the file and for the JSON API:
//
//	{ "student_id": "24110001", "name": "Trần Văn An",
//	  "birth_date": "01/01/2000", "phone": "0123", "address": "Hanoi" }
//
// StudentID is assigned once by the store and never changes.
type Student struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// StudentInput is the payload for creating a student.
//
// validate:"..." tags are checked by go-playground/validator:
//
//   - required  — the (already trimmed) field must not be empty
//   - birthdate — custom rule, the value must be parseable by one of the
//     accepted birth-date formats (see package normalize)
type StudentInput struct {
	Name      string `json:"name"       validate:"required"`
	BirthDate string `json:"birth_date" validate:"required,birthdate"`
	Phone     string `json:"phone"      validate:"required"`
	Address   string `json:"address"    validate:"required"`
}

// StudentPatch is the payload for editing a student. Every field is
// optional: an empty value keeps the stored one.
type StudentPatch struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// Statistics is the summary shown by the console "statistics" action and
// returned by the /stats endpoints.
//
// NextStudentID is a preview only: reading it never consumes an id.
// It is empty (and Exhausted is true) once all 999 ids are used.
// MinStudentID / MaxStudentID are empty when there are no records.
type Statistics struct {
	TotalStudents int    `json:"total_students"`
	NextStudentID string `json:"next_student_id"`
	Exhausted     bool   `json:"exhausted"`
	MinStudentID  string `json:"min_student_id,omitempty"`
	MaxStudentID  string `json:"max_student_id,omitempty"`
}
