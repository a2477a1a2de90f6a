package rubrics

import (
	"regexp"
	"strings"
)

var (
	autRegex    = regexp.MustCompile(`(?i)\baut\b`)
	etNisiRegex = regexp.MustCompile(`(?i)\b(?:et|nisi)\b`)
)

// Satisfies evaluates a condition expression against the context. An empty
// or blank expression is vacuously true, which is what data files rely on
// for default-always-true guards.
func (c *Context) Satisfies(expr string) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}
	for _, chain := range autRegex.Split(expr, -1) {
		if c.satisfiesChain(chain) {
			return true
		}
	}
	return false
}

// satisfiesChain evaluates one AND-chain. "et" joins terms; "nisi" joins
// terms and flips the polarity of itself and every term after it, so a
// second "nisi" flips back.
func (c *Context) satisfiesChain(chain string) bool {
	negate := false
	for _, token := range splitKeepingOperators(etNisiRegex, chain) {
		switch strings.ToLower(token) {
		case "et":
			continue
		case "nisi":
			negate = !negate
			continue
		}
		subject, predicate := splitTerm(token)
		if c.Matches(predicate, c.subjectValue(subject)) == negate {
			return false
		}
	}
	return true
}

// splitTerm breaks a term into its subject and predicate. When the leading
// word is outside the subject vocabulary, or the term is a single word, the
// whole term is the predicate and the subject defaults to "tempore".
func splitTerm(term string) (subject, predicate string) {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return "tempore", ""
	}
	if len(fields) > 1 && IsSubject(fields[0]) {
		return fields[0], strings.Join(fields[1:], " ")
	}
	return "tempore", strings.Join(fields, " ")
}

// splitKeepingOperators splits s on every match of op, returning operators
// and the trimmed text between them in order. Empty segments are dropped.
func splitKeepingOperators(op *regexp.Regexp, s string) []string {
	var out []string
	last := 0
	for _, loc := range op.FindAllStringIndex(s, -1) {
		if seg := strings.TrimSpace(s[last:loc[0]]); seg != "" {
			out = append(out, seg)
		}
		out = append(out, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if seg := strings.TrimSpace(s[last:]); seg != "" {
		out = append(out, seg)
	}
	return out
}
