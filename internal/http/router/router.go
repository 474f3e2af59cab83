// Package router wires every HTTP route of the web interface to its
// handler.
//
// Route table:
//
//	GET    /                    → HTML list of students
//	GET    /add                 → HTML add form
//	POST   /add                 → create from the add form
//	GET    /edit/{id}           → HTML edit form
//	POST   /edit/{id}           → apply the edit form
//	GET    /delete/{id}         → delete, then back to the list
//	POST   /delete/{id}         → delete, then back to the list
//	GET    /search              → HTML search form (?keyword=... searches)
//	POST   /search              → keyword search
//	GET    /stats               → statistics as JSON
//
//	POST   /api/students        → create a student
//	GET    /api/students        → list (optionally ?by=...&q=...)
//	GET    /api/students/{id}   → get one student by id
//	PUT    /api/students/{id}   → partial update
//	DELETE /api/students/{id}   → delete
//	GET    /api/stats           → statistics as JSON
package router

import (
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/handlers/web"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// New returns a ServeMux with all routes registered against store.
func New(store storage.Storage) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", web.Index(store))
	router.HandleFunc("GET /add", web.AddForm())
	router.HandleFunc("POST /add", web.Add(store))
	router.HandleFunc("GET /edit/{id}", web.EditForm(store))
	router.HandleFunc("POST /edit/{id}", web.Edit(store))
	router.HandleFunc("GET /delete/{id}", web.Delete(store))
	router.HandleFunc("POST /delete/{id}", web.Delete(store))
	router.HandleFunc("GET /search", web.Search(store))
	router.HandleFunc("POST /search", web.Search(store))
	router.HandleFunc("GET /stats", student.Stats(store))

	router.HandleFunc("POST /api/students", student.New(store))
	router.HandleFunc("GET /api/students", student.GetList(store))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(store))
	router.HandleFunc("PUT /api/students/{id}", student.Update(store))
	router.HandleFunc("DELETE /api/students/{id}", student.Delete(store))
	router.HandleFunc("GET /api/stats", student.Stats(store))

	return router
}
