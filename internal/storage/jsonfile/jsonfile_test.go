package jsonfile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/alecthomas/assert"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "student_data.json"))
}

func mustCreate(t *testing.T, s *Store, name, birthDate string) types.Student {
	t.Helper()
	st, err := s.CreateStudent(types.StudentInput{
		Name:      name,
		BirthDate: birthDate,
		Phone:     "0123",
		Address:   "Hanoi",
	})
	assert.NoError(t, err)
	return st
}

func names(students []types.Student) []string {
	out := make([]string, 0, len(students))
	for _, st := range students {
		out = append(out, st.Name)
	}
	return out
}

func TestCreateNormalisesInput(t *testing.T) {
	s := newStore(t)

	st, err := s.CreateStudent(types.StudentInput{
		Name:      "trần   văn   an",
		BirthDate: "1-1-2000",
		Phone:     " 0123 ",
		Address:   "Hanoi",
	})
	assert.NoError(t, err)
	assert.Equal(t, types.Student{
		StudentID: "24110001",
		Name:      "Trần Văn An",
		BirthDate: "01/01/2000",
		Phone:     "0123",
		Address:   "Hanoi",
	}, st)

	got, err := s.GetStudentByID("24110001")
	assert.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestCreateValidation(t *testing.T) {
	s := newStore(t)

	tests := []struct {
		input types.StudentInput
		field string
		cause error
	}{
		{types.StudentInput{BirthDate: "1/1/2000", Phone: "1", Address: "x"}, "name", storage.ErrMissingField},
		{types.StudentInput{Name: "   ", BirthDate: "1/1/2000", Phone: "1", Address: "x"}, "name", storage.ErrMissingField},
		{types.StudentInput{Name: "an", Phone: "1", Address: "x"}, "birth_date", storage.ErrMissingField},
		{types.StudentInput{Name: "an", BirthDate: "31/02/2000", Phone: "1", Address: "x"}, "birth_date", storage.ErrInvalidBirthDate},
		{types.StudentInput{Name: "an", BirthDate: "01/01/1850", Phone: "1", Address: "x"}, "birth_date", storage.ErrInvalidBirthDate},
		{types.StudentInput{Name: "an", BirthDate: "1/1/2000", Phone: "\t", Address: "x"}, "phone", storage.ErrMissingField},
		{types.StudentInput{Name: "an", BirthDate: "1/1/2000", Phone: "1"}, "address", storage.ErrMissingField},
	}

	for _, tt := range tests {
		_, err := s.CreateStudent(tt.input)

		var verr *storage.ValidationError
		assert.True(t, errors.As(err, &verr), "input %+v", tt.input)
		assert.Equal(t, tt.field, verr.Field)
		assert.True(t, errors.Is(err, tt.cause), "input %+v: %v", tt.input, err)
	}

	// Nothing was added and no id was consumed.
	stats := s.Statistics()
	assert.Equal(t, 0, stats.TotalStudents)
	assert.Equal(t, "24110001", stats.NextStudentID)

	_, err := os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGenerateIDSequence(t *testing.T) {
	s := newStore(t)

	for _, want := range []string{"24110001", "24110002", "24110003"} {
		id, err := s.GenerateID()
		assert.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func writeDocument(t *testing.T, path string, doc any) {
	t.Helper()
	data, err := json.Marshal(doc)
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestCapacityExhausted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student_data.json")
	writeDocument(t, path, map[string]any{"students": []any{}, "next_id_number": 999})

	s := New(path)

	last := mustCreate(t, s, "an", "1/1/2000")
	assert.Equal(t, "24110999", last.StudentID)
	assert.True(t, s.Statistics().Exhausted)
	assert.Equal(t, "", s.Statistics().NextStudentID)

	_, err := s.CreateStudent(types.StudentInput{Name: "binh", BirthDate: "1/1/2000", Phone: "1", Address: "x"})
	assert.True(t, errors.Is(err, storage.ErrCapacityExhausted))
	assert.Equal(t, 1, len(s.GetStudents()))

	_, err = s.GenerateID()
	assert.True(t, errors.Is(err, storage.ErrCapacityExhausted))

	// The counter did not move past 1000.
	reloaded := New(path)
	assert.Equal(t, 1000, reloaded.nextSequence)
}

func TestSortByLastWord(t *testing.T) {
	s := newStore(t)

	mustCreate(t, s, "nguyễn văn bình", "1/1/2000")
	mustCreate(t, s, "lê cường", "1/1/2000")
	mustCreate(t, s, "trần thị an", "1/1/2000")
	mustCreate(t, s, "phạm an", "1/1/2000")
	mustCreate(t, s, "Duy", "1/1/2000")

	want := []string{"Trần Thị An", "Phạm An", "Nguyễn Văn Bình", "Lê Cường", "Duy"}
	assert.Equal(t, want, names(s.GetStudents()))

	s.SortStudents()
	s.SortStudents()
	assert.Equal(t, want, names(s.GetStudents()))
}

func TestUpdateStrictBirthDate(t *testing.T) {
	s := newStore(t)
	st := mustCreate(t, s, "trần văn an", "1/1/2000")

	updated, err := s.UpdateStudentByID(st.StudentID, types.StudentPatch{
		BirthDate: "31/02/2020",
		Phone:     "0999",
	})
	assert.True(t, errors.Is(err, storage.ErrInvalidBirthDate))
	assert.Equal(t, "01/01/2000", updated.BirthDate)
	assert.Equal(t, "0999", updated.Phone)

	// Lenient create formats are not accepted on edit.
	_, err = s.UpdateStudentByID(st.StudentID, types.StudentPatch{BirthDate: "2001-02-03"})
	assert.True(t, errors.Is(err, storage.ErrInvalidBirthDate))

	// A valid date is stored as typed.
	updated, err = s.UpdateStudentByID(st.StudentID, types.StudentPatch{BirthDate: "3/2/2001"})
	assert.NoError(t, err)
	assert.Equal(t, "3/2/2001", updated.BirthDate)

	reloaded := New(s.Path())
	got, err := reloaded.GetStudentByID(st.StudentID)
	assert.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateKeepsEmptyFields(t *testing.T) {
	s := newStore(t)
	st := mustCreate(t, s, "an", "1/1/2000")

	got, err := s.UpdateStudentByID(st.StudentID, types.StudentPatch{})
	assert.NoError(t, err)
	assert.Equal(t, st, got)

	got, err = s.UpdateStudentByID(st.StudentID, types.StudentPatch{Name: "  bình  ", Address: "Hue"})
	assert.NoError(t, err)
	assert.Equal(t, "bình", got.Name)
	assert.Equal(t, "Hue", got.Address)
	assert.Equal(t, st.StudentID, got.StudentID)
	assert.Equal(t, st.Phone, got.Phone)
}

func TestUpdateResorts(t *testing.T) {
	s := newStore(t)
	a := mustCreate(t, s, "văn an", "1/1/2000")
	mustCreate(t, s, "văn bình", "1/1/2000")

	_, err := s.UpdateStudentByID(a.StudentID, types.StudentPatch{Name: "Văn Cường"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Văn Bình", "Văn Cường"}, names(s.GetStudents()))
}

func TestUpdateNotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.UpdateStudentByID("24110042", types.StudentPatch{Name: "x"})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	a := mustCreate(t, s, "an", "1/1/2000")
	b := mustCreate(t, s, "bình", "1/1/2000")

	err := s.DeleteStudentByID("24110042")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Equal(t, 2, len(s.GetStudents()))

	assert.NoError(t, s.DeleteStudentByID(a.StudentID))
	assert.Equal(t, []types.Student{b}, s.GetStudents())

	_, err = s.GetStudentByID(a.StudentID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	// Ids are never reused.
	c := mustCreate(t, s, "cường", "1/1/2000")
	assert.Equal(t, "24110003", c.StudentID)

	reloaded := New(s.Path())
	assert.Equal(t, s.GetStudents(), reloaded.GetStudents())
}

func TestSearch(t *testing.T) {
	s := newStore(t)
	an := mustCreate(t, s, "trần văn an", "1/1/2000")
	binh, err := s.CreateStudent(types.StudentInput{Name: "lê anh bình", BirthDate: "1/1/2000", Phone: "0987654", Address: "Hue"})
	assert.NoError(t, err)

	assert.Equal(t, []types.Student{binh}, s.Search(storage.SearchByID, binh.StudentID))
	assert.Equal(t, []types.Student{}, s.Search(storage.SearchByID, "2411000"))

	assert.Equal(t, []types.Student{an, binh}, s.Search(storage.SearchByName, "AN"))
	assert.Equal(t, []types.Student{binh}, s.Search(storage.SearchByName, "bình"))

	assert.Equal(t, []types.Student{binh}, s.Search(storage.SearchByPhone, "765"))
	assert.Equal(t, []types.Student{an, binh}, s.Search(storage.SearchByPhone, "0"))

	assert.Equal(t, []types.Student{an, binh}, s.Search(storage.SearchByKeyword, "2411000"))
	assert.Equal(t, []types.Student{an}, s.Search(storage.SearchByKeyword, "TRẦN"))

	assert.Equal(t, []types.Student{}, s.Search(storage.SearchMode(99), "an"))
}

func TestStatistics(t *testing.T) {
	s := newStore(t)

	assert.Equal(t, types.Statistics{NextStudentID: "24110001"}, s.Statistics())

	mustCreate(t, s, "an", "1/1/2000")
	mustCreate(t, s, "bình", "1/1/2000")
	c := mustCreate(t, s, "cường", "1/1/2000")
	assert.NoError(t, s.DeleteStudentByID("24110001"))

	want := types.Statistics{
		TotalStudents: 2,
		NextStudentID: "24110004",
		MinStudentID:  "24110002",
		MaxStudentID:  c.StudentID,
	}
	assert.Equal(t, want, s.Statistics())
	// Previewing never consumes an id.
	assert.Equal(t, want, s.Statistics())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	mustCreate(t, s, "trần văn an", "1/1/2000")
	mustCreate(t, s, "o'brien & <sons>", "2000-05-06")
	_, err := s.GenerateID()
	assert.NoError(t, err)
	assert.NoError(t, s.Save())

	reloaded := New(s.Path())
	assert.Equal(t, s.GetStudents(), reloaded.GetStudents())
	assert.Equal(t, s.Statistics(), reloaded.Statistics())
	assert.Equal(t, 4, reloaded.nextSequence)
}

func TestFileFormat(t *testing.T) {
	s := newStore(t)
	mustCreate(t, s, "trần văn an", "1/1/2000")

	data, err := os.ReadFile(s.Path())
	assert.NoError(t, err)

	text := string(data)
	assert.True(t, strings.Contains(text, `"student_id": "24110001"`), text)
	assert.True(t, strings.Contains(text, `"name": "Trần Văn An"`), text)
	assert.True(t, strings.Contains(text, `"next_id_number": 2`), text)

	var doc map[string]any
	assert.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, len(doc))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student_data.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path)
	assert.Equal(t, 0, len(s.GetStudents()))
	assert.Equal(t, "24110001", s.Statistics().NextStudentID)

	err := s.Load()
	var perr *storage.PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "load", perr.Op)
}

func TestLoadDefaultsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student_data.json")
	writeDocument(t, path, map[string]any{
		"students": []map[string]string{
			{"student_id": "24110005", "name": "An", "birth_date": "01/01/2000", "phone": "1", "address": "x"},
		},
	})

	s := New(path)
	assert.Equal(t, 1, len(s.GetStudents()))
	assert.Equal(t, 1, s.nextSequence)
}

func TestSaveCreatesDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "storage", "student_data.json"))
	mustCreate(t, s, "an", "1/1/2000")

	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestSaveErrorKeepsMemoryState(t *testing.T) {
	// A regular file where the data directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	assert.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := New(filepath.Join(blocker, "student_data.json"))

	st, err := s.CreateStudent(types.StudentInput{Name: "an", BirthDate: "1/1/2000", Phone: "1", Address: "x"})

	var perr *storage.PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "save", perr.Op)
	assert.Equal(t, "24110001", st.StudentID)
	assert.Equal(t, []types.Student{st}, s.GetStudents())
}
