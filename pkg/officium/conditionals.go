package officium

import (
	"regexp"
	"strings"

	"github.com/ordorecitandi/officium/pkg/rubrics"
)

// deletionScope describes how much preceding text a false conditional
// removes.
type deletionScope int

const (
	scopeNone  deletionScope = iota // no deletion
	scopeLine                       // the immediately preceding line
	scopeChunk                      // the preceding contiguous non-blank block
)

// stopwordStrength weights the connective that introduces a conditional.
// The strength decides how far a chunk-scoped deletion may reach back
// through fences opened by earlier, kept conditionals.
var stopwordStrength = map[string]int{
	"sed":     1,
	"vero":    1,
	"atque":   2,
	"attamen": 3,
	"si":      0,
	"deinde":  1,
}

// backscopedStopwords carry an implicit backward chunk scope; "si" and
// "deinde" only delete when an explicit scope marker says so.
var backscopedStopwords = map[string]bool{
	"sed":     true,
	"vero":    true,
	"atque":   true,
	"attamen": true,
}

// fragmentRegex matches one parenthesized conditional fragment: optional
// stopwords, the condition itself, then an optional "loco huius versus /
// horum versuum" replacement marker and an optional scope marker
// (dicitur/dicuntur [semper], [hic versus] omittitur, [hi versus]
// omittuntur).
var fragmentRegex = regexp.MustCompile(`(?i)\(\s*` +
	`((?:(?:sed|vero|atque|attamen|si|deinde)\b\s*)*)` +
	`([^()]*?)` +
	`\s*(loco\s+(?:hu[ij]us\s+versus|horum\s+versuum))?` +
	`\s*((?:dicitur|dicuntur)(?:\s+semper)?|(?:(?:hic|hoc)\s+versus\s+)?omittitur|(?:(?:hi|hæc|haec)\s+versus\s+)?omittuntur)?` +
	`\s*\)`)

// fragment is one recognized conditional occurrence within a line.
type fragment struct {
	start, end  int
	condition   string
	strength    int
	scope       deletionScope
	replaceable bool
}

// omission records a span deleted by a false conditional. Replaceable spans
// were introduced by a "loco ..." marker: the caller may substitute content
// for them, the engine only marks and deletes.
type omission struct {
	Lines       []string
	Replaceable bool
}

// fence marks an output position protected by a kept conditional of a given
// strength. A later false chunk-scoped conditional deletes back to the
// newest in-chunk fence of lower or equal strength (closing it), and is
// blocked outright by a stronger one.
type fence struct {
	strength int
	pos      int
}

// findFragments returns every recognized conditional in the line, in order.
// A parenthesized group only counts as a conditional when it shows a
// stopword, a scope or loco marker, or a leading subject keyword; plain
// parentheticals such as "(Alleluia.)" stay literal text.
func findFragments(line string) []fragment {
	var frags []fragment
	for _, m := range fragmentRegex.FindAllStringSubmatchIndex(line, -1) {
		if f := classifyFragment(line, m); f != nil {
			frags = append(frags, *f)
		}
	}
	return frags
}

// stripFragments removes the fragment spans from the line, collapsing the
// whitespace left at each splice point to a single space.
func stripFragments(line string, frags []fragment) string {
	out := line[:frags[0].start]
	last := frags[0].end
	for _, f := range frags[1:] {
		out = spliceSegment(out, line[last:f.start])
		last = f.end
	}
	return spliceSegment(out, line[last:])
}

func spliceSegment(out, seg string) string {
	if out == "" || strings.HasSuffix(out, " ") {
		seg = strings.TrimLeft(seg, " ")
	}
	return out + seg
}

func classifyFragment(line string, m []int) *fragment {
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return line[m[2*i]:m[2*i+1]]
	}
	stopwords := strings.Fields(strings.ToLower(group(1)))
	condition := strings.TrimSpace(group(2))
	loco := strings.ToLower(group(3))
	marker := strings.ToLower(group(4))

	recognized := len(stopwords) > 0 || loco != "" || marker != ""
	if !recognized {
		fields := strings.Fields(condition)
		recognized = len(fields) > 1 && rubrics.IsSubject(fields[0])
	}
	if !recognized {
		return nil
	}

	strength := 0
	implicitBackscope := false
	for _, w := range stopwords {
		if s := stopwordStrength[w]; s > strength {
			strength = s
		}
		if backscopedStopwords[w] {
			implicitBackscope = true
		}
	}

	sc := scopeNone
	switch {
	case strings.Contains(marker, "omittuntur"):
		sc = scopeChunk
	case strings.Contains(marker, "omittitur"):
		sc = scopeLine
	case strings.HasPrefix(marker, "dic"):
		sc = scopeNone
	case strings.Contains(loco, "horum"):
		sc = scopeChunk
	case loco != "":
		sc = scopeLine
	case implicitBackscope:
		sc = scopeChunk
	}

	return &fragment{
		start:       m[0],
		end:         m[1],
		condition:   condition,
		strength:    strength,
		scope:       sc,
		replaceable: loco != "",
	}
}

// processConditionalLines evaluates the inline conditionals of one section
// body. Lines without a recognized conditional pass through unchanged.
// Fragments on a line are evaluated left to right: when all hold, the line
// keeps its literal payload (the text around the parentheses) and each
// stopword of strength >= 1 opens a fence at the current output position.
// The first false fragment drops the whole line and deletes backward
// according to its scope; a blank line or the section start is always a
// hard boundary for chunk deletion.
func (r *Resolver) processConditionalLines(lines []string) ([]string, []omission) {
	var out []string
	var fences []fence
	var omitted []omission

	for _, line := range lines {
		frags := findFragments(line)
		if len(frags) == 0 {
			out = append(out, line)
			continue
		}

		var frag *fragment
		for i := range frags {
			if !r.ctx.Satisfies(frags[i].condition) {
				frag = &frags[i]
				break
			}
		}

		if frag == nil {
			for _, f := range frags {
				if f.strength > 0 {
					fences = append(fences, fence{strength: f.strength, pos: len(out)})
				}
			}
			if payload := strings.TrimSpace(stripFragments(line, frags)); payload != "" {
				out = append(out, payload)
			}
			continue
		}

		switch frag.scope {
		case scopeLine:
			if n := len(out); n > 0 {
				omitted = append(omitted, omission{
					Lines:       []string{out[n-1]},
					Replaceable: frag.replaceable,
				})
				out = out[:n-1]
			}
		case scopeChunk:
			bound := chunkStart(out)
			if n := len(fences); n > 0 {
				if f := fences[n-1]; f.pos >= bound {
					if f.strength <= frag.strength {
						// The fence closes and the deletion reaches it.
						bound = f.pos
						fences = fences[:n-1]
					} else {
						// A stronger fence blocks the deletion entirely.
						bound = len(out)
					}
				}
			}
			if bound < len(out) {
				omitted = append(omitted, omission{
					Lines:       append([]string(nil), out[bound:]...),
					Replaceable: frag.replaceable,
				})
				out = out[:bound]
			}
		}
		fences = dropStaleFences(fences, len(out))
	}
	return out, omitted
}

// chunkStart returns the index of the first line of the maximal contiguous
// non-blank block at the end of out.
func chunkStart(out []string) int {
	i := len(out)
	for i > 0 && strings.TrimSpace(out[i-1]) != "" {
		i--
	}
	return i
}

// dropStaleFences removes fences that point past the current end of output
// after a deletion.
func dropStaleFences(fences []fence, end int) []fence {
	for len(fences) > 0 && fences[len(fences)-1].pos > end {
		fences = fences[:len(fences)-1]
	}
	return fences
}
