package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Stalin-143/monitor/internal/events/sinks"
)

const (
	defaultStatsLimit = 100
	maxStatsLimit     = 1000
)

// StatsProvider exposes read access to per-site event aggregates.
type StatsProvider interface {
	Snapshot(limit, offset int) []sinks.SiteStats
}

// siteStats handles GET /api/stats?limit=&offset=. It returns a JSON object
// {"sites": [...]} on success, 400 for invalid pagination parameters, or
// 503 when no stats sink is wired.
func (s *Server) siteStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "stats unavailable")
		return
	}
	limit, offset, err := parseLimitOffset(r, defaultStatsLimit, maxStatsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sites": s.stats.Snapshot(limit, offset),
	})
}

func parseLimitOffset(r *http.Request, def, maxLimit int) (int, int, error) {
	q := r.URL.Query()
	limit := def
	if limStr := q.Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if val > maxLimit {
			val = maxLimit
		}
		limit = val
	}
	offset := 0
	if offStr := q.Get("offset"); offStr != "" {
		val, err := strconv.Atoi(offStr)
		if err != nil || val < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}
