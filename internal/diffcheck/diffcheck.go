// Package diffcheck compares two raw observations of a resource and reports
// what changed between them.
package diffcheck

import (
	"bytes"
	"sort"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Stalin-143/monitor/internal/extract"
	"github.com/Stalin-143/monitor/internal/monitor"
)

// Differ computes change reports between raw-content snapshots. It is
// stateless apart from diffmatchpatch tuning and safe for concurrent use.
type Differ struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// New constructs a Differ.
func New() *Differ {
	return &Differ{dmp: diffmatchpatch.New()}
}

// Compare diffs current content against the previous snapshot. It fails
// with ErrMissingContent when either side is absent, which is distinct from
// comparing two sides that happen to be textually identical. Identical
// inputs always produce identical results.
func (d *Differ) Compare(previous, current []byte) (monitor.DiffResult, error) {
	if len(previous) == 0 {
		return monitor.DiffResult{}, &monitor.ErrMissingContent{Side: "previous"}
	}
	if len(current) == 0 {
		return monitor.DiffResult{}, &monitor.ErrMissingContent{Side: "current"}
	}

	oldDoc := parse(previous)
	newDoc := parse(current)

	oldText := oldDoc.Text()
	newText := newDoc.Text()

	result := monitor.DiffResult{
		TextChanged:   oldText != newText,
		TitleChanged:  extract.TitleMarkup(oldDoc) != extract.TitleMarkup(newDoc),
		OldTextLength: utf8.RuneCountInString(oldText),
		NewTextLength: utf8.RuneCountInString(newText),
	}
	result.AddedLinks, result.RemovedLinks = setDiff(extract.Links(oldDoc), extract.Links(newDoc))
	result.AddedImages, result.RemovedImages = setDiff(extract.Images(oldDoc), extract.Images(newDoc))
	if result.TextChanged {
		result.Delta = d.textDelta(oldText, newText)
	}
	return result, nil
}

// textDelta summarizes a character-level diff as insert/delete span counts.
func (d *Differ) textDelta(oldText, newText string) monitor.TextDelta {
	delta := monitor.TextDelta{}
	for _, span := range d.dmp.DiffMain(oldText, newText, false) {
		switch span.Type {
		case diffmatchpatch.DiffInsert:
			delta.Inserted++
		case diffmatchpatch.DiffDelete:
			delta.Deleted++
		case diffmatchpatch.DiffEqual:
		}
	}
	return delta
}

// parse builds a document from raw markup. The underlying parser accepts
// arbitrary bytes, so a malformed document degrades to whatever tree could
// be recovered instead of failing the comparison.
func parse(raw []byte) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		empty, _ := goquery.NewDocumentFromReader(bytes.NewReader(nil))
		return empty
	}
	return doc
}

// setDiff returns added (in current, not previous) and removed (in previous,
// not current) values. Duplicates collapse; output is sorted so repeated
// comparisons of the same pair yield identical results.
func setDiff(previous, current []string) (added, removed []string) {
	prevSet := toSet(previous)
	currSet := toSet(current)

	added = make([]string, 0, len(currSet))
	for v := range currSet {
		if _, ok := prevSet[v]; !ok {
			added = append(added, v)
		}
	}
	removed = make([]string, 0, len(prevSet))
	for v := range prevSet {
		if _, ok := currSet[v]; !ok {
			removed = append(removed, v)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
