package rubrics

import (
	"strconv"
	"strings"
)

// Context holds the request-scoped values that condition subjects resolve
// against. It is assembled once per render request by the caller; the
// calendar arithmetic that produces Season, SpecialDay and DayOfWeek lives
// outside this package.
type Context struct {
	// Version is the rubric edition in effect, e.g. "Rubrics 1960" or
	// "Monastic Divino".
	Version string

	// FallbackLang is the language that layering falls back to when a data
	// file has no translation. Almost always "Latin".
	FallbackLang string

	// DayOfWeek is 0-based with Sunday = 0. The "feria" subject exposes it
	// 1-based, following the data files.
	DayOfWeek int

	// Commune and Votive are the codes of the active commune template and
	// votive office, empty when none applies.
	Commune string
	Votive  string

	// Hora is the canonical hour being rendered, e.g. "Laudes" or "Vespera".
	Hora string

	// MissaNumber is the mass ordinal or flag; non-empty only in a mass
	// context, where it also switches the "ad" subject to "missam".
	MissaNumber string

	// Season is the liturgical season identifier, e.g. "Adventus" or
	// "Paschæ", as derived from the date by the calendar collaborator.
	Season string

	// SpecialDay carries the special-day predicate string for the "die"
	// subject (e.g. "in Parasceve"), empty on ordinary days.
	SpecialDay string

	// Office is the label of the office currently in effect, used by the
	// "officio" subject.
	Office string
}

// subjectNames is the closed vocabulary of condition subjects. A term whose
// first word is not listed here has its subject defaulted to "tempore".
var subjectNames = map[string]struct{}{
	"rubrica":  {},
	"rubricis": {},
	"tempore":  {},
	"missa":    {},
	"commune":  {},
	"communi":  {},
	"votiva":   {},
	"die":      {},
	"feria":    {},
	"officio":  {},
	"ad":       {},
}

// IsSubject reports whether word belongs to the closed subject vocabulary of
// the condition language. The comparison is case-insensitive.
func IsSubject(word string) bool {
	_, ok := subjectNames[strings.ToLower(word)]
	return ok
}

// subjectValue resolves a subject name to the context value its predicates
// are matched against. Unknown subjects evaluate to themselves, which lets
// the pattern-fallback predicate see the raw text.
func (c *Context) subjectValue(subject string) string {
	switch strings.ToLower(subject) {
	case "rubrica", "rubricis":
		return c.Version
	case "tempore":
		return c.Season
	case "missa":
		return c.MissaNumber
	case "commune", "communi":
		return c.Commune
	case "votiva":
		return c.Votive
	case "die":
		return c.SpecialDay
	case "feria":
		return strconv.Itoa(c.DayOfWeek + 1)
	case "officio":
		return c.Office
	case "ad":
		if c.MissaNumber != "" {
			return "missam"
		}
		return c.Hora
	}
	return subject
}
