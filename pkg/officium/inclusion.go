package officium

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// directiveRegex matches an inclusion directive "@file:section:subs". The
// match starts at the "@" (which may sit mid-line) and runs to the end of
// the line; every segment may be empty. An empty file refers to the current
// file, an empty section to the current section.
var directiveRegex = regexp.MustCompile(`(?m)@([^@:\n]*)(?::([^:\n]*))?(?::([^\n]*))?$`)

var lineRangeRegex = regexp.MustCompile(`^(\d+)-(\d+)$`)

// expandFixpoint rewrites a section body until no directives remain or the
// configured pass cap is reached. On cap the remaining directives stay
// verbatim rather than looping or failing.
func (r *Resolver) expandFixpoint(text string, sections FileSections, lang, section string) string {
	for pass := 0; pass < r.config.MaxInclusionPasses; pass++ {
		next := r.expandOnce(text, sections, lang, section)
		if next == text {
			return next
		}
		text = next
	}
	if directiveRegex.MatchString(text) {
		r.logger.Warn("Inclusion expansion hit the pass cap",
			"section", section, "passes", r.config.MaxInclusionPasses)
	}
	return text
}

// expandOnce splices every directive in text exactly once.
func (r *Resolver) expandOnce(text string, sections FileSections, lang, section string) string {
	matches := directiveRegex.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return text[m[2*i]:m[2*i+1]]
		}
		target := group(2)
		if target == "" {
			target = section
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(r.loadInclusion(sections, lang, group(1), target, group(3)))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// loadInclusion fetches the body of a referenced section, applies its
// substitutions and trims the trailing newline so the result splices
// cleanly into the directive's line. Missing files and sections degrade to
// a visible placeholder instead of failing the resolution.
func (r *Resolver) loadInclusion(sections FileSections, lang, file, section, subs string) string {
	var text string
	if file == "" {
		body, ok := sections[section]
		if !ok {
			r.logger.Warn("Inclusion refers to a missing local section", "section", section)
			return fmt.Sprintf("MISSING section: %s", section)
		}
		text = body
	} else {
		external, found, err := r.Resolve(lang, file+".txt", ResolveWholeFile)
		if err != nil || !found {
			r.logger.Warn("Inclusion refers to a missing file",
				"lang", lang, "file", file, "section", section, "error", err)
			return fmt.Sprintf("%s:%s file not found", file, section)
		}
		body, ok := external[section]
		if !ok {
			r.logger.Warn("Inclusion refers to a missing section",
				"lang", lang, "file", file, "section", section)
			return fmt.Sprintf("%s:%s is missing!", file, section)
		}
		text = body
	}
	return strings.TrimRight(applySubstitutions(text, subs), "\n")
}

// applySubstitutions applies a colon-separated substitution list to text.
// Each token is either "s/pattern/replacement/flags" (a regex replacement;
// the g flag replaces every match, otherwise only the first) or
// "start-end", keeping only that 1-based inclusive line range.
func applySubstitutions(text, subs string) string {
	for _, token := range strings.Split(subs, ":") {
		token = strings.TrimSpace(token)
		switch {
		case token == "":
		case strings.HasPrefix(token, "s/"):
			text = applyRegexSubstitution(text, token)
		default:
			if m := lineRangeRegex.FindStringSubmatch(token); m != nil {
				start, _ := strconv.Atoi(m[1])
				end, _ := strconv.Atoi(m[2])
				text = sliceBodyLines(text, start, end)
			}
		}
	}
	return text
}

// applyRegexSubstitution handles one "s/pattern/replacement/flags" token.
// Malformed tokens and unparsable patterns leave the text unchanged.
func applyRegexSubstitution(text, token string) string {
	rest := token[len("s/"):]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return text
	}
	pattern := rest[:slash]
	remainder := rest[slash+1:]
	replacement := remainder
	flags := ""
	if i := strings.LastIndex(remainder, "/"); i >= 0 {
		replacement = remainder[:i]
		flags = remainder[i+1:]
	}
	if strings.Contains(flags, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return text
	}
	if strings.Contains(flags, "g") {
		return re.ReplaceAllString(text, replacement)
	}
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + string(re.ExpandString(nil, replacement, text, loc)) + text[loc[1]:]
}

// sliceBodyLines keeps the 1-based inclusive line range start..end.
func sliceBodyLines(text string, start, end int) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n") + "\n"
}
