// Package monitor defines core types shared across subsystems.
package monitor

import (
	"time"
)

// ResourceStatus represents the lifecycle state of a monitored resource.
type ResourceStatus string

// Resource status values. A removed resource is deleted outright, so the
// removed state is only ever observed as absence from the registry.
const (
	StatusActive ResourceStatus = "active"
)

// Category labels assigned by the classifier, in evaluation order.
const (
	CategoryEcommerce      = "E-commerce"
	CategoryBlog           = "Blog"
	CategoryNews           = "News"
	CategorySocialMedia    = "Social Media"
	CategoryPaymentGateway = "Payment Gateway"
	CategoryUnknown        = "Unknown"
)

// Extraction defaults used when a document has no title or meta description.
const (
	DefaultTitle       = "No Title"
	DefaultDescription = "No Description"
)

// FetchConfig captures everything the fetcher needs besides the URL. It is
// frozen at resource creation and reused unchanged on every later check.
type FetchConfig struct {
	UseProxy     bool          `json:"use_proxy"`
	ProxyAddress string        `json:"proxy_address,omitempty"`
	Timeout      time.Duration `json:"timeout"`
}

// FetchResult is the raw outcome returned by a Fetcher implementation.
type FetchResult struct {
	Body       []byte
	StatusCode int
	Duration   time.Duration
}

// ContentRecord is the structured view of one fetched document. It is
// immutable once produced.
type ContentRecord struct {
	Title          string   `json:"title"`
	Description    string   `json:"meta_description"`
	Links          []string `json:"links"`
	Images         []string `json:"images"`
	TextLength     int      `json:"text_length"`
	Category       string   `json:"website_type"`
	PaymentMethods []string `json:"payment_methods"`
	Transactions   []string `json:"transactions"`
}

// TextDelta summarizes the diffmatchpatch spans between two text renderings.
type TextDelta struct {
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
}

// DiffResult reports what changed between two observations of a resource.
type DiffResult struct {
	TextChanged   bool      `json:"text_changed"`
	TitleChanged  bool      `json:"title_changed"`
	AddedLinks    []string  `json:"added_links"`
	RemovedLinks  []string  `json:"removed_links"`
	AddedImages   []string  `json:"added_images"`
	RemovedImages []string  `json:"removed_images"`
	OldTextLength int       `json:"old_text_length"`
	NewTextLength int       `json:"new_text_length"`
	Delta         TextDelta `json:"delta"`
}

// Any reports whether the diff detected any difference at all.
func (d DiffResult) Any() bool {
	return d.TextChanged || d.TitleChanged ||
		len(d.AddedLinks) > 0 || len(d.RemovedLinks) > 0 ||
		len(d.AddedImages) > 0 || len(d.RemovedImages) > 0
}

// CheckRecord is one immutable historical observation of a resource.
type CheckRecord struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Changes     DiffResult    `json:"changes"`
	Info        ContentRecord `json:"info"`
	ContentHash string        `json:"content_hash"`
	StatusCode  int           `json:"status_code"`
	Duration    time.Duration `json:"duration"`
}

// Resource holds the full mutable state for one monitored URL. The raw
// content of the last successful fetch is kept as the diff baseline for the
// next check.
type Resource struct {
	URL            string
	Status         ResourceStatus
	FirstCheckedAt time.Time
	LastCheckedAt  time.Time
	Fetch          FetchConfig
	RawContent     []byte
	ContentHash    string
	Info           ContentRecord
	History        []CheckRecord
}

// ResourceSummary is the listing view of a resource; raw content is
// deliberately excluded.
type ResourceSummary struct {
	URL            string         `json:"url"`
	Status         ResourceStatus `json:"status"`
	FirstCheckedAt time.Time      `json:"first_checked"`
	LastCheckedAt  time.Time      `json:"last_checked"`
	Info           ContentRecord  `json:"info"`
	HistoryCount   int            `json:"history_count"`
	UseProxy       bool           `json:"use_proxy"`
}

// CheckOutcome is returned by a successful check: the transition report plus
// the record appended to history.
type CheckOutcome struct {
	URL     string        `json:"url"`
	Changes DiffResult    `json:"changes"`
	Info    ContentRecord `json:"current_info"`
	Record  CheckRecord   `json:"-"`
}
