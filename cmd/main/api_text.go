package main

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/ordorecitandi/officium/pkg/officium"
)

// TextAPI exposes the resolution engine for inspection: resolving a file at
// a chosen depth, listing its section names and managing the caches.
type TextAPI struct {
	pool   *resolverPool
	cm     *ConfigManager
	logger *slog.Logger
}

func NewTextAPI(pool *resolverPool, cm *ConfigManager, logger *slog.Logger) *TextAPI {
	return &TextAPI{
		pool:   pool,
		cm:     cm,
		logger: logger,
	}
}

func (t *TextAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/text/resolve", t.handleResolve)
	mux.HandleFunc("GET /api/text/sections", t.handleSections)
	mux.HandleFunc("GET /api/text/cache", t.handleCacheInfo)
	mux.HandleFunc("POST /api/text/cache/flush", t.handleCacheFlush)
}

func parseDepth(s string) (officium.ResolveDirectives, bool) {
	switch s {
	case "", "all":
		return officium.ResolveAll, true
	case "none":
		return officium.ResolveNone, true
	case "wholefile":
		return officium.ResolveWholeFile, true
	default:
		return officium.ResolveNone, false
	}
}

// resolveFromRequest runs one resolution for the inspection endpoints,
// reusing the same context construction as the public text server.
func (t *TextAPI) resolveFromRequest(w http.ResponseWriter, r *http.Request) (officium.FileSections, bool) {
	q := r.URL.Query()
	file := q.Get("file")
	if file == "" {
		respondWithError(w, http.StatusBadRequest, "missing required parameter: file")
		return nil, false
	}
	lang := q.Get("lang")
	if lang == "" {
		lang = t.cm.Get().Server.DefaultLang
	}
	depth, ok := parseDepth(q.Get("depth"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "depth must be one of: none, wholefile, all")
		return nil, false
	}

	resolver := t.pool.get(contextFromQuery(t.cm, r))
	sections, found, err := resolver.Resolve(lang, file, depth)
	if err != nil {
		t.logger.Error("Resolve failed", "lang", lang, "file", file, "error", err)
		respondWithError(w, http.StatusInternalServerError, "resolution failed")
		return nil, false
	}
	if !found {
		respondWithError(w, http.StatusNotFound, "file not found: "+file)
		return nil, false
	}
	return sections, true
}

func (t *TextAPI) handleResolve(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "text:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'text:read' scope")
		return
	}
	sections, ok := t.resolveFromRequest(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, sections)
}

func (t *TextAPI) handleSections(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "text:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'text:read' scope")
		return
	}
	sections, ok := t.resolveFromRequest(w, r)
	if !ok {
		return
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	respondWithJSON(w, http.StatusOK, names)
}

func (t *TextAPI) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "text:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'text:read' scope")
		return
	}
	resolvers, files := t.pool.cacheSize()
	respondWithJSON(w, http.StatusOK, map[string]int{
		"resolvers":    resolvers,
		"cached_files": files,
	})
}

func (t *TextAPI) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "text:manage") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'text:manage' scope")
		return
	}
	t.pool.flush()
	t.logger.Info("Resolution caches flushed via API")
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "caches flushed"})
}
