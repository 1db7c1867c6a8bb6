package sinks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Stalin-143/monitor/internal/events"
)

// SiteStats aggregates check activity for one site hostname.
type SiteStats struct {
	Site        string    `json:"site"`
	LastEvent   time.Time `json:"last_event"`
	Checks      int64     `json:"checks"`
	Changes     int64     `json:"changes"`
	FetchErrors int64     `json:"fetch_errors"`
	BytesTotal  int64     `json:"bytes_total"`
}

// StatsSink keeps in-memory per-site aggregates of the event stream. It
// collapses each batch before touching the shared map to keep lock hold
// times short.
type StatsSink struct {
	mu    sync.RWMutex
	sites map[string]*SiteStats
}

// NewStatsSink constructs an empty StatsSink.
func NewStatsSink() *StatsSink {
	return &StatsSink{sites: make(map[string]*SiteStats)}
}

// Consume folds the batch into the per-site aggregates.
func (s *StatsSink) Consume(_ context.Context, batch []events.Event) error {
	deltas := make(map[string]*SiteStats)
	for _, evt := range batch {
		site := siteLabel(evt.URL)
		delta := deltas[site]
		if delta == nil {
			delta = &SiteStats{Site: site}
			deltas[site] = delta
		}
		if evt.TS.After(delta.LastEvent) {
			delta.LastEvent = evt.TS
		}
		switch {
		case evt.Outcome == events.OutcomeFetchError:
			delta.FetchErrors++
		case evt.Op == events.OpCheck && evt.Outcome == events.OutcomeOK:
			delta.Checks++
			delta.BytesTotal += evt.Bytes
			if evt.Changed {
				delta.Changes++
			}
		case evt.Op == events.OpAdd && evt.Outcome == events.OutcomeOK:
			delta.BytesTotal += evt.Bytes
		}
	}
	if len(deltas) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for site, delta := range deltas {
		stat := s.sites[site]
		if stat == nil {
			stat = &SiteStats{Site: site}
			s.sites[site] = stat
		}
		stat.Checks += delta.Checks
		stat.Changes += delta.Changes
		stat.FetchErrors += delta.FetchErrors
		stat.BytesTotal += delta.BytesTotal
		if delta.LastEvent.After(stat.LastEvent) {
			stat.LastEvent = delta.LastEvent
		}
	}
	return nil
}

// Snapshot returns up to limit aggregates starting at offset, sorted by
// site. A limit of zero or less means no cap.
func (s *StatsSink) Snapshot(limit, offset int) []SiteStats {
	s.mu.RLock()
	all := make([]SiteStats, 0, len(s.sites))
	for _, stat := range s.sites {
		all = append(all, *stat)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Site < all[j].Site })
	if offset >= len(all) {
		return []SiteStats{}
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Close implements the Sink interface; it performs no action.
func (s *StatsSink) Close(context.Context) error {
	return nil
}
