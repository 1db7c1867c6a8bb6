// Package registry owns the set of monitored resources, their snapshots,
// and append-only check history.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Stalin-143/monitor/internal/classify"
	"github.com/Stalin-143/monitor/internal/diffcheck"
	"github.com/Stalin-143/monitor/internal/events"
	"github.com/Stalin-143/monitor/internal/extract"
	"github.com/Stalin-143/monitor/internal/monitor"
)

// entry pairs a resource with its locks. opMu serializes the add/check/
// remove transitions for one URL and is held across the fetch; stateMu
// guards the committed state so readers never observe a half-applied
// commit. res is nil only for a reservation whose initial fetch has not
// succeeded yet, or after removal.
type entry struct {
	opMu    sync.Mutex
	stateMu sync.RWMutex
	res     *monitor.Resource
}

// Registry is the shared-state owner. All mutation flows through Add,
// Check, and Remove; operations on different URLs proceed fully
// concurrently while operations on the same URL are serialized.
type Registry struct {
	mu    sync.RWMutex
	sites map[string]*entry

	fetcher  monitor.Fetcher
	differ   *diffcheck.Differ
	hasher   monitor.Hasher
	clock    monitor.Clock
	idGen    monitor.IDGenerator
	emitter  events.Emitter
	logger   *zap.Logger
	defaults monitor.FetchConfig
}

// New constructs a Registry. The emitter may be nil; defaults supplies the
// proxy address and fetch timeout frozen into each resource's FetchConfig
// at creation.
func New(
	fetcher monitor.Fetcher,
	hasher monitor.Hasher,
	clock monitor.Clock,
	idGen monitor.IDGenerator,
	emitter events.Emitter,
	defaults monitor.FetchConfig,
	logger *zap.Logger,
) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sites:    make(map[string]*entry),
		fetcher:  fetcher,
		differ:   diffcheck.New(),
		hasher:   hasher,
		clock:    clock,
		idGen:    idGen,
		emitter:  emitter,
		logger:   logger,
		defaults: defaults,
	}
}

// Add starts monitoring a URL. It requires a successful initial fetch; on
// fetch failure nothing is created. The URL is the identity key as given,
// with no normalization.
func (r *Registry) Add(ctx context.Context, rawURL string, useProxy bool) (monitor.ContentRecord, error) {
	if rawURL == "" {
		return monitor.ContentRecord{}, &monitor.ErrInvalidInput{Field: "url"}
	}
	cfg := r.defaults
	cfg.UseProxy = useProxy
	if !useProxy {
		cfg.ProxyAddress = ""
	}

	e, err := r.reserve(rawURL)
	if err != nil {
		r.emit(events.OpAdd, rawURL, events.OutcomeRejected, false, 0, 0, err.Error())
		return monitor.ContentRecord{}, err
	}
	// The reservation holds the per-URL lock, so concurrent operations on
	// this URL wait; nothing else blocks on the fetch below.
	fres, err := r.fetcher.Fetch(ctx, rawURL, cfg)
	if err != nil {
		r.unreserve(rawURL, e)
		r.emit(events.OpAdd, rawURL, events.OutcomeFetchError, false, 0, 0, err.Error())
		return monitor.ContentRecord{}, &monitor.ErrFetchFailure{URL: rawURL, Cause: err}
	}

	info := r.buildRecord(fres.Body)
	hash := r.hash(fres.Body)
	now := r.clock.Now()
	res := &monitor.Resource{
		URL:            rawURL,
		Status:         monitor.StatusActive,
		FirstCheckedAt: now,
		LastCheckedAt:  now,
		Fetch:          cfg,
		RawContent:     fres.Body,
		ContentHash:    hash,
		Info:           info,
		History:        []monitor.CheckRecord{},
	}
	e.stateMu.Lock()
	e.res = res
	e.stateMu.Unlock()
	e.opMu.Unlock()

	r.logger.Info("resource added",
		zap.String("url", rawURL),
		zap.Bool("use_proxy", useProxy),
		zap.String("category", info.Category),
	)
	r.emit(events.OpAdd, rawURL, events.OutcomeOK, false, int64(len(fres.Body)), fres.Duration, "")
	return info, nil
}

// Check re-fetches a resource with its stored FetchConfig, diffs against
// the current snapshot, and commits the new snapshot plus a history entry
// atomically. A failed fetch rejects the check and leaves everything
// untouched.
func (r *Registry) Check(ctx context.Context, rawURL string) (monitor.CheckOutcome, error) {
	if rawURL == "" {
		return monitor.CheckOutcome{}, &monitor.ErrInvalidInput{Field: "url"}
	}
	e, ok := r.lookup(rawURL)
	if !ok {
		r.emit(events.OpCheck, rawURL, events.OutcomeRejected, false, 0, 0, "not monitored")
		return monitor.CheckOutcome{}, &monitor.ErrResourceNotFound{URL: rawURL}
	}
	e.opMu.Lock()
	defer e.opMu.Unlock()
	if e.res == nil {
		r.emit(events.OpCheck, rawURL, events.OutcomeRejected, false, 0, 0, "not monitored")
		return monitor.CheckOutcome{}, &monitor.ErrResourceNotFound{URL: rawURL}
	}

	fres, err := r.fetcher.Fetch(ctx, rawURL, e.res.Fetch)
	if err != nil {
		r.emit(events.OpCheck, rawURL, events.OutcomeFetchError, false, 0, 0, err.Error())
		return monitor.CheckOutcome{}, &monitor.ErrFetchFailure{URL: rawURL, Cause: err}
	}

	info := r.buildRecord(fres.Body)
	newHash := r.hash(fres.Body)

	var changes monitor.DiffResult
	if len(fres.Body) > 0 && newHash != "" && newHash == e.res.ContentHash {
		// Byte-identical content cannot differ; skip the parse-and-diff.
		changes = monitor.DiffResult{
			AddedLinks:    []string{},
			RemovedLinks:  []string{},
			AddedImages:   []string{},
			RemovedImages: []string{},
			OldTextLength: e.res.Info.TextLength,
			NewTextLength: info.TextLength,
		}
	} else {
		changes, err = r.differ.Compare(e.res.RawContent, fres.Body)
		if err != nil {
			r.emit(events.OpCheck, rawURL, events.OutcomeRejected, false, int64(len(fres.Body)), fres.Duration, err.Error())
			return monitor.CheckOutcome{}, err
		}
	}

	id, err := r.idGen.NewID()
	if err != nil {
		return monitor.CheckOutcome{}, fmt.Errorf("generate check id: %w", err)
	}
	now := r.clock.Now()
	record := monitor.CheckRecord{
		ID:          id,
		Timestamp:   now,
		Changes:     changes,
		Info:        info,
		ContentHash: newHash,
		StatusCode:  fres.StatusCode,
		Duration:    fres.Duration,
	}

	e.stateMu.Lock()
	e.res.History = append(e.res.History, record)
	e.res.RawContent = fres.Body
	e.res.ContentHash = record.ContentHash
	e.res.Info = info
	e.res.LastCheckedAt = now
	historyLen := len(e.res.History)
	e.stateMu.Unlock()

	r.logger.Debug("resource checked",
		zap.String("url", rawURL),
		zap.Bool("changed", changes.Any()),
		zap.Int("history_len", historyLen),
	)
	r.emit(events.OpCheck, rawURL, events.OutcomeOK, changes.Any(), int64(len(fres.Body)), fres.Duration, "")
	return monitor.CheckOutcome{URL: rawURL, Changes: changes, Info: info, Record: record}, nil
}

// Remove deletes a resource and its entire history irreversibly. It waits
// for any in-flight operation on the same URL to finish first.
func (r *Registry) Remove(rawURL string) error {
	if rawURL == "" {
		return &monitor.ErrInvalidInput{Field: "url"}
	}
	e, ok := r.lookup(rawURL)
	if !ok {
		r.emit(events.OpRemove, rawURL, events.OutcomeRejected, false, 0, 0, "not monitored")
		return &monitor.ErrResourceNotFound{URL: rawURL}
	}
	e.opMu.Lock()
	defer e.opMu.Unlock()
	if e.res == nil {
		r.emit(events.OpRemove, rawURL, events.OutcomeRejected, false, 0, 0, "not monitored")
		return &monitor.ErrResourceNotFound{URL: rawURL}
	}
	r.mu.Lock()
	delete(r.sites, rawURL)
	r.mu.Unlock()
	e.stateMu.Lock()
	e.res = nil
	e.stateMu.Unlock()

	r.logger.Info("resource removed", zap.String("url", rawURL))
	r.emit(events.OpRemove, rawURL, events.OutcomeOK, false, 0, 0, "")
	return nil
}

// List returns a summary per monitored URL, sorted by URL, excluding raw
// content.
func (r *Registry) List() []monitor.ResourceSummary {
	r.mu.RLock()
	entries := make(map[string]*entry, len(r.sites))
	for url, e := range r.sites {
		entries[url] = e
	}
	r.mu.RUnlock()

	summaries := make([]monitor.ResourceSummary, 0, len(entries))
	for url, e := range entries {
		e.stateMu.RLock()
		res := e.res
		if res != nil {
			summaries = append(summaries, monitor.ResourceSummary{
				URL:            url,
				Status:         res.Status,
				FirstCheckedAt: res.FirstCheckedAt,
				LastCheckedAt:  res.LastCheckedAt,
				Info:           res.Info,
				HistoryCount:   len(res.History),
				UseProxy:       res.Fetch.UseProxy,
			})
		}
		e.stateMu.RUnlock()
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].URL < summaries[j].URL })
	return summaries
}

// History returns the ordered check records for a URL. The slice is a copy;
// callers cannot disturb the stored history.
func (r *Registry) History(rawURL string) ([]monitor.CheckRecord, error) {
	if rawURL == "" {
		return nil, &monitor.ErrInvalidInput{Field: "url"}
	}
	e, ok := r.lookup(rawURL)
	if !ok {
		return nil, &monitor.ErrResourceNotFound{URL: rawURL}
	}
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	if e.res == nil {
		return nil, &monitor.ErrResourceNotFound{URL: rawURL}
	}
	out := make([]monitor.CheckRecord, len(e.res.History))
	copy(out, e.res.History)
	return out, nil
}

// reserve claims a URL for an Add. The returned entry has its operation
// lock held; the caller must either commit a resource or unreserve.
func (r *Registry) reserve(rawURL string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sites[rawURL]; exists {
		return nil, &monitor.ErrDuplicateResource{URL: rawURL}
	}
	e := &entry{}
	e.opMu.Lock()
	r.sites[rawURL] = e
	return e, nil
}

// unreserve rolls back a failed Add reservation.
func (r *Registry) unreserve(rawURL string, e *entry) {
	r.mu.Lock()
	delete(r.sites, rawURL)
	r.mu.Unlock()
	e.opMu.Unlock()
}

func (r *Registry) lookup(rawURL string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sites[rawURL]
	return e, ok
}

// buildRecord runs extraction and classification over fetched markup.
func (r *Registry) buildRecord(body []byte) monitor.ContentRecord {
	info, text := extract.Info(body)
	info.Category = classify.Classify(text)
	return info
}

func (r *Registry) hash(body []byte) string {
	digest, err := r.hasher.Hash(body)
	if err != nil {
		r.logger.Warn("content hash failed", zap.Error(err))
		return ""
	}
	return digest
}

func (r *Registry) emit(
	op events.Op,
	url string,
	outcome events.Outcome,
	changed bool,
	bytes int64,
	dur time.Duration,
	note string,
) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(events.Event{
		TS:      r.clock.Now(),
		Op:      op,
		URL:     url,
		Outcome: outcome,
		Changed: changed,
		Bytes:   bytes,
		Dur:     dur,
		Note:    note,
	})
}
