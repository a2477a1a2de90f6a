package main

import (
	"database/sql"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/ordorecitandi/officium/pkg/officium"
	"github.com/ordorecitandi/officium/pkg/rubrics"
)

type Server struct {
	cm        *ConfigManager
	db        *sql.DB
	logger    *slog.Logger
	pool      *resolverPool
	authAPI   *AuthAPI
	statsAPI  *StatsAPI
	textAPI   *TextAPI
	serverAPI *ServerAPI
	textMux   *http.ServeMux
	apiMux    *http.ServeMux
}

func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB, actionChan chan string) (*Server, error) {
	pool := newResolverPool(cm, logger)

	authAPI := NewAuthAPI(db, logger)
	statsAPI := NewStatsAPI(db, logger)
	textAPI := NewTextAPI(pool, cm, logger)
	serverAPI := NewServerAPI(cm, actionChan, logger)

	server := &Server{
		cm:        cm,
		db:        db,
		logger:    logger,
		pool:      pool,
		authAPI:   authAPI,
		statsAPI:  statsAPI,
		textAPI:   textAPI,
		serverAPI: serverAPI,
		textMux:   http.NewServeMux(),
		apiMux:    http.NewServeMux(),
	}

	apiMux := http.NewServeMux()
	server.authAPI.RegisterRoutes(apiMux)
	server.statsAPI.RegisterRoutes(apiMux)
	server.textAPI.RegisterRoutes(apiMux)
	server.serverAPI.RegisterRoutes(apiMux)

	// Every api route passes through authentication, except the health
	// check, which stays open so something like docker can use it.
	server.apiMux.HandleFunc("GET /api/health", server.serverAPI.handleHealthCheck)
	server.apiMux.Handle("/api/", server.authAPI.Authenticate(apiMux))

	server.textMux.HandleFunc("GET /horas", server.handleHoras)
	server.textMux.HandleFunc("GET /favicon.ico", handleFavicon)

	return server, nil
}

// resolverPool shares one engine Resolver per distinct condition context, so
// that repeated requests for the same version and day reuse the parse cache.
type resolverPool struct {
	cm     *ConfigManager
	logger *slog.Logger

	mu        sync.RWMutex
	resolvers map[string]*officium.Resolver
}

func newResolverPool(cm *ConfigManager, logger *slog.Logger) *resolverPool {
	return &resolverPool{
		cm:        cm,
		logger:    logger,
		resolvers: make(map[string]*officium.Resolver),
	}
}

func (p *resolverPool) get(ctx *rubrics.Context) *officium.Resolver {
	key := strings.Join([]string{
		ctx.Version, ctx.FallbackLang, strconv.Itoa(ctx.DayOfWeek), ctx.Commune,
		ctx.Votive, ctx.Hora, ctx.MissaNumber, ctx.Season, ctx.SpecialDay, ctx.Office,
	}, "\x00")

	p.mu.RLock()
	r, ok := p.resolvers[key]
	p.mu.RUnlock()
	if ok {
		return r
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok = p.resolvers[key]; ok {
		return r
	}
	config := p.cm.Get()
	reader := officium.NewDirReader(config.Server.DataDir)
	r = officium.NewResolver(p.logger, reader, ctx, *config.Engine)
	p.resolvers[key] = r
	return r
}

// flush drops every pooled resolver along with its cache.
func (p *resolverPool) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolvers = make(map[string]*officium.Resolver)
}

// cacheSize sums the cached file counts across all pooled resolvers.
func (p *resolverPool) cacheSize() (resolvers, files int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, r := range p.resolvers {
		files += r.CacheSize()
	}
	return len(p.resolvers), files
}

// contextFromQuery builds the condition context for one render request.
// Missing parameters fall back to the configured defaults.
func contextFromQuery(cm *ConfigManager, r *http.Request) *rubrics.Context {
	config := cm.Get()
	q := r.URL.Query()

	param := func(name, fallback string) string {
		if v := q.Get(name); v != "" {
			return v
		}
		return fallback
	}

	weekday, err := strconv.Atoi(q.Get("weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		weekday = 0
	}

	return &rubrics.Context{
		Version:      param("version", config.Server.DefaultVersion),
		FallbackLang: config.Server.FallbackLang,
		DayOfWeek:    weekday,
		Commune:      q.Get("commune"),
		Votive:       q.Get("votiva"),
		Hora:         param("hora", "Laudes"),
		MissaNumber:  q.Get("missa"),
		Season:       q.Get("tempore"),
		SpecialDay:   q.Get("die"),
		Office:       q.Get("officio"),
	}
}

// handleHoras serves one resolved office text. The file parameter names the
// data file relative to the language directory; an optional section
// parameter narrows the response to one section, and monthday selects the
// seasonal overlay for Tempora files.
func (s *Server) handleHoras(w http.ResponseWriter, r *http.Request) {
	config := s.cm.Get()
	q := r.URL.Query()

	file := q.Get("file")
	if file == "" {
		http.Error(w, "missing required parameter: file", http.StatusBadRequest)
		return
	}
	lang := q.Get("lang")
	if lang == "" {
		lang = config.Server.DefaultLang
	}

	ctx := contextFromQuery(s.cm, r)
	resolver := s.pool.get(ctx)

	sections, found, err := resolver.OfficeString(lang, file, q.Get("monthday"))
	if err != nil {
		s.logger.Error("Failed to resolve office text", "lang", lang, "file", file, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	if err := s.statsAPI.LogRender(r.Context(), lang, file); err != nil {
		s.logger.Warn("Failed to record render stats", "lang", lang, "file", file, "error", err)
	}

	s.logger.Info("Serving office text",
		"version", ctx.Version,
		"lang", lang,
		"file", file,
		"remote_addr", getClientIP(r, s.cm))

	if section := q.Get("section"); section != "" {
		body, ok := sections[section]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(body))
		return
	}

	respondWithJSON(w, http.StatusOK, sections)
}

func getClientIP(r *http.Request, cm *ConfigManager) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	// Forwarding headers are only honored when the direct peer is a
	// configured trusted proxy.
	if !cm.IsTrusted(ip) {
		return ip
	}

	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		parts := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}
	return ip
}

// handleFavicon keeps favicon requests out of the render stats.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
