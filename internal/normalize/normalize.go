// Package normalize turns free-form user input into the canonical forms
// stored in a student record: title-cased names and dd/mm/yyyy dates.
//
// The functions here are pure (apart from reading the current year) and
// are shared by the record store, the validator and the interfaces.
package normalize

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is the canonical birth-date format (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// strictLayout accepts one- or two-digit day and month, four-digit year,
// separated by '/'. It is the only format accepted when editing.
const strictLayout = "2/1/2006"

// dateLayout is one accepted birth-date input pattern.
// twoDigitYear marks the yy forms, whose century is resolved by
// resolveYear rather than by the time package's own pivot.
type dateLayout struct {
	layout       string
	twoDigitYear bool
}

// dateLayouts are tried in this order; the first one that parses AND
// yields a year in range wins.
var dateLayouts = []dateLayout{
	{"2/1/2006", false},
	{"2-1-2006", false},
	{"2.1.2006", false},
	{"2/1/06", true},
	{"2-1-06", true},
	{"2.1.06", true},
	{"2006-1-2", false},
	{"2006/1/2", false},
	{"2006.1.2", false},
}

// minYear is the earliest birth year accepted by Date.
const minYear = 1900

// Name collapses whitespace, trims, and title-cases every word:
//
//	"trần   văn   an" → "Trần Văn An"
//	"  mARY  "        → "Mary"
func Name(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// Date parses a birth date written in any accepted format and returns it
// as dd/mm/yyyy. ok is false when no format matches with a year between
// 1900 and the current year.
//
//	"1-1-2000"   → "01/01/2000"
//	"2000.12.31" → "31/12/2000"
//	"5/6/75"     → "05/06/1975"
func Date(raw string) (string, bool) {
	return dateAt(raw, time.Now().Year())
}

// dateAt is Date with an explicit "current" year.
func dateAt(raw string, currentYear int) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, raw)
		if err != nil {
			continue
		}

		year := t.Year()
		if l.twoDigitYear {
			// time.Parse already picked a century; keep only yy.
			year %= 100
		}
		year = resolveYear(year)

		if year < minYear || year > currentYear {
			continue
		}

		return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format(DateLayout), true
	}

	return "", false
}

// resolveYear maps years below 100 onto a century: 0–49 → 2000s,
// 50–99 → 1900s. Larger years are returned unchanged.
func resolveYear(year int) int {
	switch {
	case year < 50:
		return year + 2000
	case year < 100:
		return year + 1900
	default:
		return year
	}
}

// ValidDate reports whether s is a real calendar date in d/m/yyyy form.
// Unlike Date it accepts no other separators and does not check the
// year range; "31/02/2020" is rejected.
func ValidDate(s string) bool {
	_, err := time.Parse(strictLayout, s)
	return err == nil
}

// SortKey returns the lowercased last word of a name (the given name in
// Vietnamese order), or the whole lowercased name when it is one word.
// It is only used for ordering.
func SortKey(name string) string {
	words := strings.Fields(name)
	if len(words) > 1 {
		return strings.ToLower(words[len(words)-1])
	}
	return strings.ToLower(strings.TrimSpace(name))
}
