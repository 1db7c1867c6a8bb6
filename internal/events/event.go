// Package events defines the check-event structures emitted by the registry
// and the hub that fans them out to sinks.
package events

import (
	"errors"
	"fmt"
	"time"
)

// Op denotes the registry operation an Event describes.
type Op string

// Supported operations.
const (
	OpAdd    Op = "ADD"
	OpCheck  Op = "CHECK"
	OpRemove Op = "REMOVE"
)

// Outcome is the coarse result of an operation.
type Outcome string

// Supported outcomes. Rejected covers duplicate/not-found/invalid-input
// refusals that never touched a fetcher.
const (
	OutcomeOK         Outcome = "ok"
	OutcomeFetchError Outcome = "fetch_error"
	OutcomeRejected   Outcome = "rejected"
)

// Event captures a single registry operation for observability purposes.
// Events are advisory: delivery is non-blocking and lossy under
// backpressure, and no registry semantics depend on them.
type Event struct {
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Op names the registry operation.
	Op Op
	// URL is the monitored resource key.
	URL string
	// Outcome is the coarse operation result.
	Outcome Outcome
	// Changed is true when a check detected any difference.
	Changed bool
	// Bytes carries the fetched body size for add/check completions.
	Bytes int64
	// Dur captures the fetch latency, when a fetch happened.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	if e.URL == "" {
		return errors.New("url is required")
	}
	switch e.Op {
	case OpAdd, OpCheck, OpRemove:
	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
	switch e.Outcome {
	case OutcomeOK, OutcomeFetchError, OutcomeRejected:
	default:
		return fmt.Errorf("unknown outcome %q", e.Outcome)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
