// Package jsonfile provides the record store: an in-memory, ordered list
// of student records persisted to a single JSON document after every
// change. It implements storage.Storage.
//
// FILE FORMAT:
//
//	{
//	  "students": [
//	    { "student_id": "24110001", "name": "Trần Văn An", ... }
//	  ],
//	  "next_id_number": 2
//	}
//
// next_id_number is the sequence counter used to mint ids. It only ever
// grows, so an id is never reused even after its record is deleted.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aanand-mishra/student-records/internal/normalize"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
	"github.com/go-playground/validator/v10"
)

const (
	// IDPrefix is prepended to the zero-padded sequence number.
	IDPrefix = "24110"

	// MaxSequence is the last sequence number that fits the 3-digit suffix.
	MaxSequence = 999
)

// document is the on-disk shape.
type document struct {
	Students     []types.Student `json:"students"`
	NextIDNumber int             `json:"next_id_number"`
}

// Store is the JSON-file implementation of storage.Storage.
//
// mu only keeps concurrent HTTP requests from corrupting the slice; it
// does not make a read-modify-write sequence across requests atomic.
type Store struct {
	mu           sync.Mutex
	path         string
	students     []types.Student
	nextSequence int
	validate     *validator.Validate
}

var _ storage.Storage = (*Store)(nil)

// New creates a store backed by the file at path and loads it.
//
// A missing file is an empty store. An unreadable or corrupt file is
// logged and ALSO treated as an empty store — the process keeps running,
// and the next save overwrites the bad file.
func New(path string) *Store {
	s := &Store{
		path:     path,
		validate: validation.New(),
	}

	if err := s.Load(); err != nil {
		slog.Warn("could not load student data, starting with an empty list",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}

	return s
}

// Path returns the data file location.
func (s *Store) Path() string { return s.path }

// ─────────────────────────────────────────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────────────────────────────────────────

// Load replaces the in-memory state with the contents of the data file.
// On any error the state is reset to empty (next id 24110001) and the
// error is returned for reporting only.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &storage.PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	// A pointer so a document without the key falls back to 1.
	var doc struct {
		Students     []types.Student `json:"students"`
		NextIDNumber *int            `json:"next_id_number"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &storage.PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	if doc.Students != nil {
		s.students = doc.Students
	}
	if doc.NextIDNumber != nil {
		s.nextSequence = *doc.NextIDNumber
	}

	return nil
}

// Save writes the current state to the data file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save()
}

func (s *Store) reset() {
	s.students = make([]types.Student, 0)
	s.nextSequence = 1
}

// save must be called with mu held.
func (s *Store) save() error {
	var buf bytes.Buffer

	// SetEscapeHTML(false) keeps '&', '<' and '>' readable in addresses;
	// non-ASCII names are written as UTF-8 either way.
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(document{Students: s.students, NextIDNumber: s.nextSequence}); err != nil {
		return &storage.PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		slog.Error("failed to save student data",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return &storage.PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	return nil
}

// writeFileAtomic writes data to a temporary file next to path and
// renames it over path, so a crash mid-write never leaves a truncated
// data file behind.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ─────────────────────────────────────────────────────────────────────────────
// IDs and ordering
// ─────────────────────────────────────────────────────────────────────────────

// GenerateID mints the next id ("24110001", "24110002", …) and advances
// the sequence. Past 24110999 it returns ErrCapacityExhausted and leaves
// the sequence alone.
func (s *Store) GenerateID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generateID()
}

func (s *Store) generateID() (string, error) {
	id, ok := formatID(s.nextSequence)
	if !ok {
		return "", storage.ErrCapacityExhausted
	}
	s.nextSequence++
	return id, nil
}

func formatID(seq int) (string, bool) {
	if seq > MaxSequence {
		return "", false
	}
	return fmt.Sprintf("%s%03d", IDPrefix, seq), true
}

// SortStudents orders the records by normalize.SortKey. The sort is
// stable, so records with the same key keep their relative order.
func (s *Store) SortStudents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sort()
}

func (s *Store) sort() {
	slices.SortStableFunc(s.students, func(a, b types.Student) int {
		return strings.Compare(normalize.SortKey(a.Name), normalize.SortKey(b.Name))
	})
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.students, func(st types.Student) bool {
		return st.StudentID == id
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD
// ─────────────────────────────────────────────────────────────────────────────

// CreateStudent adds a new record. See storage.Storage.
func (s *Store) CreateStudent(input types.StudentInput) (types.Student, error) {
	input = types.StudentInput{
		Name:      strings.TrimSpace(input.Name),
		BirthDate: strings.TrimSpace(input.BirthDate),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
	}

	if err := s.validate.Struct(input); err != nil {
		return types.Student{}, validationError(err)
	}

	// Already accepted by the "birthdate" rule above.
	birthDate, _ := normalize.Date(input.BirthDate)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.generateID()
	if err != nil {
		return types.Student{}, err
	}

	student := types.Student{
		StudentID: id,
		Name:      normalize.Name(input.Name),
		BirthDate: birthDate,
		Phone:     input.Phone,
		Address:   input.Address,
	}

	s.students = append(s.students, student)
	s.sort()

	slog.Info("student created", slog.String("id", id))

	if err := s.save(); err != nil {
		return student, err
	}
	return student, nil
}

// validationError converts the first validator failure into a
// *storage.ValidationError.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("validate student: %w", err)
	}

	fe := errs[0]
	cause := storage.ErrMissingField
	if fe.Tag() == validation.TagBirthDate {
		cause = storage.ErrInvalidBirthDate
	}

	return &storage.ValidationError{Field: fe.Field(), Err: cause}
}

// GetStudentByID returns the first record with the given id.
func (s *Store) GetStudentByID(id string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return s.students[i], nil
}

// GetStudents returns a copy of all records in their current order.
func (s *Store) GetStudents() []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	students := make([]types.Student, len(s.students))
	copy(students, s.students)
	return students
}

// UpdateStudentByID applies the non-empty fields of patch.
//
// The birth date must be a real d/m/yyyy date — the lenient formats
// accepted on creation are NOT accepted here. A rejected birth date is
// reported (wrapped ErrInvalidBirthDate) but does not stop the other
// fields from being saved.
//
// The name is stored trimmed but otherwise as given.
func (s *Store) UpdateStudentByID(id string, patch types.StudentPatch) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	st := s.students[i]
	var warning error

	if name := strings.TrimSpace(patch.Name); name != "" {
		st.Name = name
	}
	if bd := strings.TrimSpace(patch.BirthDate); bd != "" {
		if normalize.ValidDate(bd) {
			st.BirthDate = bd
		} else {
			warning = &storage.ValidationError{Field: "birth_date", Err: storage.ErrInvalidBirthDate}
		}
	}
	if phone := strings.TrimSpace(patch.Phone); phone != "" {
		st.Phone = phone
	}
	if addr := strings.TrimSpace(patch.Address); addr != "" {
		st.Address = addr
	}

	if st == s.students[i] {
		return st, warning
	}

	s.students[i] = st
	s.sort()

	slog.Info("student updated", slog.String("id", id))

	return st, errors.Join(warning, s.save())
}

// DeleteStudentByID removes the record with the given id.
func (s *Store) DeleteStudentByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	s.students = slices.Delete(s.students, i, i+1)

	slog.Info("student deleted", slog.String("id", id))

	return s.save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// Search returns the records matching query under mode, in store order.
// An unknown mode matches nothing.
func (s *Store) Search(mode storage.SearchMode, query string) []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(query)

	match := func(st types.Student) bool {
		switch mode {
		case storage.SearchByID:
			return st.StudentID == query
		case storage.SearchByName:
			return strings.Contains(strings.ToLower(st.Name), lower)
		case storage.SearchByPhone:
			return strings.Contains(st.Phone, query)
		case storage.SearchByKeyword:
			return strings.Contains(strings.ToLower(st.Name), lower) ||
				strings.Contains(st.StudentID, lower)
		default:
			return false
		}
	}

	results := make([]types.Student, 0)
	for _, st := range s.students {
		if match(st) {
			results = append(results, st)
		}
	}
	return results
}

// Statistics reports the record count, the id the next creation would
// receive (without consuming it) and the smallest and largest ids.
func (s *Store) Statistics() types.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := types.Statistics{TotalStudents: len(s.students)}

	next, ok := formatID(s.nextSequence)
	stats.NextStudentID = next
	stats.Exhausted = !ok

	for i, st := range s.students {
		if i == 0 || st.StudentID < stats.MinStudentID {
			stats.MinStudentID = st.StudentID
		}
		if i == 0 || st.StudentID > stats.MaxStudentID {
			stats.MaxStudentID = st.StudentID
		}
	}

	return stats
}
