package officium

import (
	"regexp"
	"strings"
)

// PreambleSection is the reserved key for text preceding the first section
// header of a data file.
const PreambleSection = "__preamble"

// skippedPrefix marks sections whose header guard evaluated false. The body
// is still parsed, but the prefix keeps it invisible to lookups by name.
const skippedPrefix = "__skip__"

// FileSections maps section names to their resolved body text. Bodies keep
// a trailing newline; an empty section is the empty string.
type FileSections map[string]string

// Clone returns an independent copy of the section map.
func (s FileSections) Clone() FileSections {
	out := make(FileSections, len(s))
	for name, body := range s {
		out[name] = body
	}
	return out
}

// mergeSections overlays the sections of over onto base, returning a fresh
// map. Either argument may be nil.
func mergeSections(base, over FileSections) FileSections {
	out := make(FileSections, len(base)+len(over))
	for name, body := range base {
		out[name] = body
	}
	for name, body := range over {
		out[name] = body
	}
	return out
}

// sectionHeaderRegex matches a "[Name]" header at the start of a line. The
// name may contain letters, digits, spaces and "#,:-_".
var sectionHeaderRegex = regexp.MustCompile(`^\s*\[([\pL\pN_ #,:-]+)\]`)

// parseSections splits raw file lines into sections and runs the inline
// conditional processor over each body. The result still carries literal
// inclusion directives.
//
// A header may be followed, with no other content on the line, by a
// parenthesized condition guard: "[Name](condition)". When the guard is
// false the body is consumed as usual but filed under a skip marker, so a
// later lookup of Name finds the last occurrence whose guard held. An
// unguarded later occurrence of the same name replaces an earlier one.
func (r *Resolver) parseSections(lines []string) FileSections {
	bodies := map[string][]string{PreambleSection: nil}
	current := PreambleSection

	for _, line := range lines {
		m := sectionHeaderRegex.FindStringSubmatchIndex(line)
		if m == nil {
			bodies[current] = append(bodies[current], line)
			continue
		}
		name := strings.TrimSpace(line[m[2]:m[3]])
		if guard, ok := headerGuard(line[m[1]:]); ok && !r.ctx.Satisfies(guard) {
			name = skippedPrefix + name
		}
		current = name
		bodies[current] = nil
	}

	sections := make(FileSections, len(bodies))
	for name, body := range bodies {
		processed, _ := r.processConditionalLines(body)
		sections[name] = joinBody(processed)
	}
	return sections
}

// headerGuard extracts the condition from the remainder of a header line.
// It reports false when the remainder is anything other than a single
// parenthesized group.
func headerGuard(rest string) (string, bool) {
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

func joinBody(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
