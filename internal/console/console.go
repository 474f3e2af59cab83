// Package console implements the text-menu interface:
//
//	1. Add student        4. Edit student
//	2. List students      5. Delete student
//	3. Search students    6. Statistics
//	0. Exit
//
// It reads answers line by line from any io.Reader and writes prompts to
// any io.Writer, so it runs on a terminal and in tests alike. All record
// logic lives in the store; this package only asks questions and prints.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aanand-mishra/student-records/internal/normalize"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

const rule = "=================================================="

// Console is one interactive session against a record store.
type Console struct {
	store storage.Storage
	in    *bufio.Scanner
	out   io.Writer
}

// New creates a console reading from in and writing to out.
func New(store storage.Storage, in io.Reader, out io.Writer) *Console {
	return &Console{
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run shows the menu until the user picks 0 or the input ends.
func (c *Console) Run() error {
	for {
		c.menu()

		choice, ok := c.prompt("Choose an option (0-6): ")
		if !ok {
			return c.in.Err()
		}

		switch choice {
		case "0":
			c.println("Goodbye!")
			return nil
		case "1":
			c.add()
		case "2":
			c.list()
		case "3":
			c.search()
		case "4":
			c.edit()
		case "5":
			c.delete()
		case "6":
			c.statistics()
		default:
			c.println("Invalid option, please choose a number from 0 to 6.")
		}

		if _, ok := c.prompt("\nPress Enter to continue..."); !ok {
			return c.in.Err()
		}
	}
}

func (c *Console) menu() {
	c.println("\n" + rule)
	c.println("         Student Management")
	c.println(rule)
	c.println("1. Add student")
	c.println("2. List students")
	c.println("3. Search students")
	c.println("4. Edit student")
	c.println("5. Delete student")
	c.println("6. Statistics")
	c.println("0. Exit")
	c.println(rule)
}

// prompt prints p and reads one trimmed line. ok is false at end of input.
func (c *Console) prompt(p string) (string, bool) {
	fmt.Fprint(c.out, p)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// FormatStudent renders a record on one line.
func FormatStudent(st types.Student) string {
	return fmt.Sprintf("ID: %s | Name: %s | Birth date: %s | Phone: %s | Address: %s",
		st.StudentID, st.Name, st.BirthDate, st.Phone, st.Address)
}

func (c *Console) printList(students []types.Student) {
	for i, st := range students {
		c.printf("%2d. %s\n", i+1, FormatStudent(st))
	}
}

// reportSaveError tells the user a change was kept in memory only.
func (c *Console) reportSaveError(err error) bool {
	var perr *storage.PersistenceError
	if errors.As(err, &perr) {
		c.printf("Could not save data: %v\n", perr.Err)
		return true
	}
	return false
}

func (c *Console) add() {
	c.println("\n=== ADD STUDENT ===")

	if c.store.Statistics().Exhausted {
		c.println("No student ids left!")
		return
	}

	name, ok := c.prompt("Full name: ")
	if !ok {
		return
	}
	if name == "" {
		c.println("Name must not be empty!")
		return
	}
	c.printf("Normalised name: %s\n", normalize.Name(name))

	var birthDate string
	for {
		birthDate, ok = c.prompt("Birth date (dd/mm/yyyy, dd-mm-yyyy, yyyy-mm-dd, ...): ")
		if !ok {
			return
		}
		if birthDate == "" {
			c.println("Birth date must not be empty!")
			continue
		}
		if normalized, valid := normalize.Date(birthDate); valid {
			c.printf("Normalised birth date: %s\n", normalized)
			break
		}
		c.println("Invalid birth date or implausible year! Please try again.")
		c.println("Examples: 01/01/2000, 1-1-2000, 2000-01-01, ...")
	}

	phone, ok := c.prompt("Phone: ")
	if !ok {
		return
	}
	if phone == "" {
		c.println("Phone must not be empty!")
		return
	}

	address, ok := c.prompt("Address: ")
	if !ok {
		return
	}
	if address == "" {
		c.println("Address must not be empty!")
		return
	}

	st, err := c.store.CreateStudent(types.StudentInput{
		Name:      name,
		BirthDate: birthDate,
		Phone:     phone,
		Address:   address,
	})
	if err != nil && !c.reportSaveError(err) {
		c.printf("Could not add student: %v\n", err)
		return
	}

	c.printf("\nStudent added with ID %s\n", st.StudentID)
	c.println(FormatStudent(st))
}

func (c *Console) list() {
	students := c.store.GetStudents()
	if len(students) == 0 {
		c.println("\nThe student list is empty!")
		return
	}

	c.printf("\n=== STUDENTS (%d) ===\n", len(students))
	c.printList(students)
}

func (c *Console) search() {
	c.println("\n=== SEARCH STUDENTS ===")
	c.println("1. By ID")
	c.println("2. By name")
	c.println("3. By phone")

	choice, ok := c.prompt("Search by (1-3): ")
	if !ok {
		return
	}

	var (
		mode  storage.SearchMode
		label string
	)
	switch choice {
	case "1":
		mode, label = storage.SearchByID, "ID: "
	case "2":
		mode, label = storage.SearchByName, "Name: "
	case "3":
		mode, label = storage.SearchByPhone, "Phone: "
	default:
		c.println("Invalid option!")
		return
	}

	query, ok := c.prompt(label)
	if !ok {
		return
	}

	results := c.store.Search(mode, query)
	if len(results) == 0 {
		c.println("No students found!")
		return
	}

	c.printf("\nFound %d result(s):\n", len(results))
	c.printList(results)
}

func (c *Console) edit() {
	c.println("\n=== EDIT STUDENT ===")

	id, ok := c.prompt("ID of the student to edit: ")
	if !ok {
		return
	}

	st, err := c.store.GetStudentByID(id)
	if err != nil {
		c.println("No student with this ID!")
		return
	}

	c.printf("Current: %s\n", FormatStudent(st))
	c.println("\nEnter new values (Enter keeps the current one):")

	var patch types.StudentPatch
	fields := []struct {
		label   string
		current string
		dst     *string
	}{
		{"Name", st.Name, &patch.Name},
		{"Birth date", st.BirthDate, &patch.BirthDate},
		{"Phone", st.Phone, &patch.Phone},
		{"Address", st.Address, &patch.Address},
	}
	for _, f := range fields {
		v, ok := c.prompt(fmt.Sprintf("%s (%s): ", f.label, f.current))
		if !ok {
			return
		}
		*f.dst = v
	}

	updated, err := c.store.UpdateStudentByID(id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		c.println("No student with this ID!")
		return
	}
	if errors.Is(err, storage.ErrInvalidBirthDate) {
		c.println("Invalid birth date format! Keeping the old value.")
	}
	c.reportSaveError(err)

	c.printf("\nUpdated: %s\n", FormatStudent(updated))
}

func (c *Console) delete() {
	c.println("\n=== DELETE STUDENT ===")

	id, ok := c.prompt("ID of the student to delete: ")
	if !ok {
		return
	}

	st, err := c.store.GetStudentByID(id)
	if err != nil {
		c.println("No student with this ID!")
		return
	}

	c.printf("Student: %s\n", FormatStudent(st))

	confirm, ok := c.prompt("Are you sure you want to delete this student? (y/N): ")
	if !ok {
		return
	}
	if strings.ToLower(confirm) != "y" {
		c.println("Cancelled.")
		return
	}

	if err := c.store.DeleteStudentByID(id); err != nil && !c.reportSaveError(err) {
		c.printf("Could not delete student: %v\n", err)
		return
	}
	c.println("Student deleted.")
}

func (c *Console) statistics() {
	stats := c.store.Statistics()

	c.println("\n=== STATISTICS ===")
	c.printf("Total students: %d\n", stats.TotalStudents)

	next := stats.NextStudentID
	if stats.Exhausted {
		next = "none left"
	}
	c.printf("Next ID: %s\n", next)

	if stats.TotalStudents > 0 {
		c.printf("Smallest ID: %s\n", stats.MinStudentID)
		c.printf("Largest ID: %s\n", stats.MaxStudentID)
	}
}
