// Package web serves the HTML pages of the web interface: the student
// list, the add / edit forms, delete and keyword search.
//
// Handlers follow the same factory pattern as package student: each one
// captures the record store and returns an http.HandlerFunc. The pages
// are html/template files embedded into the binary.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/student-records/internal/normalize"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()))
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index handles GET / — every student, sorted by surname key.
func Index(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.SortStudents()
		render(w, http.StatusOK, "index.html", struct {
			Students []types.Student
		}{store.GetStudents()})
	}
}

type addPage struct {
	Input types.StudentInput
	Error string
}

// AddForm handles GET /add.
func AddForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, "add.html", addPage{})
	}
}

// Add handles POST /add. Invalid input re-renders the form with the
// entered values and a 400 status; success redirects to the list.
func Add(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := types.StudentInput{
			Name:      r.PostFormValue("name"),
			BirthDate: r.PostFormValue("birth_date"),
			Phone:     r.PostFormValue("phone"),
			Address:   r.PostFormValue("address"),
		}

		_, err := store.CreateStudent(input)

		var verr *storage.ValidationError
		switch {
		case err == nil:
			redirectHome(w, r)
		case errors.As(err, &verr):
			render(w, http.StatusBadRequest, "add.html", addPage{Input: input, Error: err.Error()})
		case errors.Is(err, storage.ErrCapacityExhausted):
			render(w, http.StatusConflict, "add.html", addPage{Input: input, Error: err.Error()})
		default:
			slog.Error("error creating student", slog.String("error", err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

type editPage struct {
	Student types.Student
	Warning string
}

// EditForm handles GET /edit/{id}.
func EditForm(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.GetStudentByID(r.PathValue("id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		render(w, http.StatusOK, "edit.html", editPage{Student: st})
	}
}

// Edit handles POST /edit/{id}. The submitted name is normalised before
// it is stored. A rejected birth date re-renders the form with a warning
// (the other fields are already saved).
func Edit(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		patch := types.StudentPatch{
			Name:      normalize.Name(r.PostFormValue("name")),
			BirthDate: r.PostFormValue("birth_date"),
			Phone:     r.PostFormValue("phone"),
			Address:   r.PostFormValue("address"),
		}

		st, err := store.UpdateStudentByID(id, patch)

		var perr *storage.PersistenceError
		switch {
		case err == nil:
			redirectHome(w, r)
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, storage.ErrInvalidBirthDate) && !errors.As(err, &perr):
			render(w, http.StatusOK, "edit.html", editPage{
				Student: st,
				Warning: "Birth date must be a valid dd/mm/yyyy date; it was left unchanged.",
			})
		default:
			slog.Error("error updating student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// Delete handles GET and POST /delete/{id}.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		err := store.DeleteStudentByID(id)

		switch {
		case err == nil:
			redirectHome(w, r)
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// Search handles GET and POST /search. The keyword matches a name
// (case-insensitive) or a substring of the student id.
func Search(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			Keyword  string
			Searched bool
			Results  []types.Student
		}{}

		if r.Method == http.MethodPost || r.URL.Query().Has("keyword") {
			data.Keyword = strings.TrimSpace(r.FormValue("keyword"))
			data.Searched = true
			data.Results = store.Search(storage.SearchByKeyword, data.Keyword)
		}

		render(w, http.StatusOK, "search.html", data)
	}
}
