package officium

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ordorecitandi/officium/pkg/rubrics"
)

// ResolveDirectives selects how far inclusion directives are expanded when
// a file is resolved.
type ResolveDirectives int

const (
	// ResolveNone parses sections and inline conditionals only; inclusion
	// directives stay literal.
	ResolveNone ResolveDirectives = iota
	// ResolveWholeFile additionally expands directives in the preamble.
	ResolveWholeFile
	// ResolveAll expands directives in every section.
	ResolveAll
)

func (d ResolveDirectives) String() string {
	switch d {
	case ResolveNone:
		return "none"
	case ResolveWholeFile:
		return "wholefile"
	case ResolveAll:
		return "all"
	default:
		return "unknown"
	}
}

type cacheEntry struct {
	sections FileSections
	depth    ResolveDirectives
}

// Resolver loads liturgical data files, evaluates their conditions against
// one Context and caches the results. Entries are keyed by rubric version
// and language, so a Resolver may be reused across requests that share a
// version and differ only in date context at the caller's discretion;
// independent Resolvers never share state.
type Resolver struct {
	logger *slog.Logger
	reader FileReader
	ctx    *rubrics.Context
	config Config

	mu      sync.Mutex
	cache   map[string]map[string]*cacheEntry
	loading map[string]struct{}
}

// NewResolver creates a Resolver around a file reader and a condition
// context. The cache starts empty and fills lazily.
func NewResolver(logger *slog.Logger, reader FileReader, ctx *rubrics.Context, config Config) *Resolver {
	return &Resolver{
		logger:  logger,
		reader:  reader,
		ctx:     ctx,
		config:  config,
		cache:   make(map[string]map[string]*cacheEntry),
		loading: make(map[string]struct{}),
	}
}

// Resolve loads path for the given language at the requested depth. The
// second return value reports whether the file (or any fallback layer for
// it) exists; a missing file is a normal outcome, not an error. Errors are
// genuine I/O failures only.
//
// Cached results are returned as copies; deeper resolution of a shallow
// hit completes a copy and re-stores it, never mutating the original.
func (r *Resolver) Resolve(lang, path string, depth ResolveDirectives) (FileSections, bool, error) {
	bucket := r.ctx.Version + "::" + lang
	entry := r.cacheGet(bucket, path)
	if entry != nil && entry.depth >= depth {
		return entry.sections.Clone(), true, nil
	}

	// Guard against inclusion cycles: a file whose resolution is already in
	// progress on this stack is served shallow (or reported absent) instead
	// of recursing. The fixpoint pass cap then bounds the remaining
	// directives.
	if !r.beginLoad(bucket, path) {
		if entry != nil {
			return entry.sections.Clone(), true, nil
		}
		r.logger.Warn("Cyclic inclusion detected",
			"version", r.ctx.Version, "lang", lang, "path", path)
		return nil, false, nil
	}
	defer r.endLoad(bucket, path)

	if entry != nil {
		completed := entry.sections.Clone()
		r.completeTo(completed, lang, entry.depth, depth)
		r.cachePut(bucket, path, &cacheEntry{sections: completed, depth: depth})
		return completed.Clone(), true, nil
	}

	sections, found, err := r.load(lang, path)
	if err != nil || !found {
		return nil, false, err
	}
	r.completeTo(sections, lang, ResolveNone, depth)
	r.cachePut(bucket, path, &cacheEntry{sections: sections, depth: depth})
	r.logger.Debug("Resolved data file",
		"version", r.ctx.Version, "lang", lang, "path", path, "depth", depth.String())
	return sections.Clone(), true, nil
}

// load reads and parses path in the requested language, layering it over a
// fallback-language base when one applies. Neither layer has directives
// expanded yet.
func (r *Resolver) load(lang, path string) (FileSections, bool, error) {
	var own FileSections
	ownFound := false
	lines, err := r.reader.ReadLines(lang, path)
	switch {
	case err == nil:
		own = r.parseSections(lines)
		ownFound = true
	case err == ErrNotFound:
	default:
		return nil, false, err
	}

	var base FileSections
	baseFound := false
	if fb := fallbackLang(lang, r.ctx.FallbackLang); fb != "" {
		base, baseFound, err = r.Resolve(fb, path, ResolveNone)
		if err != nil {
			return nil, false, err
		}
	}

	switch {
	case ownFound && baseFound:
		return mergeSections(base, own), true, nil
	case ownFound:
		return own, true, nil
	case baseFound:
		r.logger.Debug("Using fallback layer alone", "lang", lang, "path", path)
		return base, true, nil
	default:
		return nil, false, nil
	}
}

// fallbackLang derives the base language to layer under lang: a trailing
// "-Suffix" is stripped, otherwise the configured fallback (primarily
// Latin) applies. Latin itself has no base layer.
func fallbackLang(lang, configured string) string {
	if lang == "" || lang == "Latin" {
		return ""
	}
	if i := strings.LastIndex(lang, "-"); i > 0 {
		return lang[:i]
	}
	if configured != "" && configured != lang {
		return configured
	}
	if lang != "Latin" {
		return "Latin"
	}
	return ""
}

// completeTo expands inclusion directives in place, raising sections from
// one resolution depth to another.
func (r *Resolver) completeTo(sections FileSections, lang string, from, to ResolveDirectives) {
	if to <= from {
		return
	}
	if to >= ResolveWholeFile && from < ResolveWholeFile {
		sections[PreambleSection] = r.expandFixpoint(sections[PreambleSection], sections, lang, PreambleSection)
	}
	if to >= ResolveAll {
		names := make([]string, 0, len(sections))
		for name := range sections {
			if name == PreambleSection || strings.HasPrefix(name, skippedPrefix) {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sections[name] = r.expandFixpoint(sections[name], sections, lang, name)
		}
	}
}

// OfficeString resolves fname fully and, for files under Tempora/ when the
// caller supplies a month-day key, overlays the matching month-day file's
// sections. A missing overlay leaves the base untouched.
func (r *Resolver) OfficeString(lang, fname, monthDay string) (FileSections, bool, error) {
	sections, found, err := r.Resolve(lang, fname, ResolveAll)
	if err != nil || !found {
		return nil, found, err
	}
	if monthDay != "" && strings.HasPrefix(fname, "Tempora/") {
		overlay, overlayFound, err := r.Resolve(lang, "Tempora/"+monthDay+".txt", ResolveAll)
		if err != nil {
			return nil, false, err
		}
		if overlayFound {
			sections = mergeSections(sections, overlay)
		}
	}
	return sections, true, nil
}

// FlushCache drops every cached entry.
func (r *Resolver) FlushCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]map[string]*cacheEntry)
}

// CacheSize reports the number of cached files across all buckets.
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, bucket := range r.cache {
		n += len(bucket)
	}
	return n
}

func (r *Resolver) beginLoad(bucket, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bucket + "::" + path
	if _, busy := r.loading[key]; busy {
		return false
	}
	r.loading[key] = struct{}{}
	return true
}

func (r *Resolver) endLoad(bucket, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, bucket+"::"+path)
}

func (r *Resolver) cacheGet(bucket, path string) *cacheEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache[bucket][path]
}

func (r *Resolver) cachePut(bucket, path string, entry *cacheEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.cache[bucket]
	if b == nil {
		b = make(map[string]*cacheEntry)
		r.cache[bucket] = b
	}
	b[path] = entry
}
