package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS stats_render (
    language       TEXT     NOT NULL,
    file           TEXT     NOT NULL,
    total_renders  INTEGER  NOT NULL DEFAULT 1,
    first_rendered DATETIME NOT NULL,
    last_rendered  DATETIME NOT NULL,
    PRIMARY KEY (language, file)
);
`

// RenderStats is one row of the per-file render counters.
type RenderStats struct {
	Language      string    `json:"language"`
	File          string    `json:"file"`
	TotalRenders  int64     `json:"total_renders"`
	FirstRendered time.Time `json:"first_rendered"`
	LastRendered  time.Time `json:"last_rendered"`
}

// GlobalStatsSummary provides a high-level overview of all collected stats.
type GlobalStatsSummary struct {
	TotalRenders    int64 `json:"total_renders"`
	UniqueFiles     int64 `json:"unique_files"`
	UniqueLanguages int64 `json:"unique_languages"`
}

// StatsAPI holds the dependencies for the statistics handlers.
type StatsAPI struct {
	db     *sql.DB
	logger *slog.Logger
}

func setupStatsSchema(db *sql.DB) error {
	_, err := db.Exec(statsSchema)
	return err
}

func NewStatsAPI(db *sql.DB, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		db:     db,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stats/summary", s.handleSummary)
	mux.HandleFunc("GET /api/stats/top_files", s.handleTopFiles)
}

// LogRender upserts the render counter for one (language, file) pair. It is
// called by the text server on every successful resolution.
func (s *StatsAPI) LogRender(ctx context.Context, language, file string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO stats_render (language, file, first_rendered, last_rendered) VALUES (?, ?, ?, ?)
        ON CONFLICT(language, file) DO UPDATE SET total_renders = total_renders + 1, last_rendered = ?
    `, language, file, now, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert stats_render: %w", err)
	}
	return nil
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "stats:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'stats:read' scope")
		return
	}
	var summary GlobalStatsSummary
	_ = s.db.QueryRowContext(r.Context(), "SELECT COALESCE(SUM(total_renders), 0) FROM stats_render").Scan(&summary.TotalRenders)
	_ = s.db.QueryRowContext(r.Context(), "SELECT COUNT(DISTINCT file) FROM stats_render").Scan(&summary.UniqueFiles)
	_ = s.db.QueryRowContext(r.Context(), "SELECT COUNT(DISTINCT language) FROM stats_render").Scan(&summary.UniqueLanguages)
	respondWithJSON(w, http.StatusOK, summary)
}

func (s *StatsAPI) handleTopFiles(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "stats:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'stats:read' scope")
		return
	}
	rows, err := s.db.QueryContext(r.Context(), `
        SELECT language, file, total_renders, first_rendered, last_rendered
        FROM stats_render ORDER BY total_renders DESC LIMIT 100
    `)
	if err != nil {
		s.logger.Error("Failed to query top files", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var results []RenderStats
	for rows.Next() {
		var row RenderStats
		if err = rows.Scan(&row.Language, &row.File, &row.TotalRenders, &row.FirstRendered, &row.LastRendered); err != nil {
			s.logger.Error("Failed to scan render stats row", "error", err)
			continue
		}
		results = append(results, row)
	}
	respondWithJSON(w, http.StatusOK, results)
}
