package rubrics

import (
	"regexp"
	"strings"
)

// Predicate reports whether a subject value satisfies one named test from
// the condition language.
type Predicate func(value string) bool

var (
	tridentineRegex   = regexp.MustCompile(`(?i)Trident`)
	monasticRegex     = regexp.MustCompile(`(?i)Monastic`)
	updatedCalRegex   = regexp.MustCompile(`(?i)(2020 USA|NewCal)`)
	paschaltideRegex  = regexp.MustCompile(`(?i)(Paschæ|Ascensionis|Octava Pentecostes)`)
	septuagesimaRegex = regexp.MustCompile(`(?i)(Septua|Quadra|Passio)`)
	postDivinoRegex   = regexp.MustCompile(`(?i)^(Divino|1955|196)`)
	ferialRegex       = regexp.MustCompile(`(?i)(feria|vigilia)`)
)

// predicates is the registry of named predicates, keyed by lower-case name.
// Everything not found here falls through to matchAsPattern, and that
// fallback is load-bearing: the data files use arbitrary season names,
// commune codes and version fragments as predicates.
var predicates = map[string]Predicate{
	"tridentina":          tridentineRegex.MatchString,
	"monastica":           monasticRegex.MatchString,
	"innovata":            updatedCalRegex.MatchString,
	"innovatis":           updatedCalRegex.MatchString,
	"paschali":            paschaltideRegex.MatchString,
	"post septuagesimam":  septuagesimaRegex.MatchString,
	"prima":               equals("1"),
	"secunda":             equals("2"),
	"tertia":              equals("3"),
	"longior":             equals("1"),
	"brevior":             equals("2"),
	"summorum pontificum": postDivinoRegex.MatchString,
	"feriali":             ferialRegex.MatchString,
}

func equals(want string) Predicate {
	return func(value string) bool { return value == want }
}

// Matches applies the named predicate to a subject value. Predicate names
// are case-insensitive; unknown names are matched as patterns.
func (c *Context) Matches(predicate, value string) bool {
	name := strings.ToLower(strings.TrimSpace(predicate))
	if p, ok := predicates[name]; ok {
		return p(value)
	}
	return matchAsPattern(name, value)
}

// matchAsPattern is the default arm for unregistered predicates: the name is
// compiled as a case-insensitive regular expression (plain words degrade to
// substring matches) and tested against the subject value. A name that does
// not compile counts as vacuously true, favouring showing content over
// losing it.
func matchAsPattern(name, value string) bool {
	re, err := regexp.Compile(`(?i)` + name)
	if err != nil {
		return true
	}
	return re.MatchString(value)
}
