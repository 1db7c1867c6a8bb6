// Package extract parses raw markup into the structured content record.
package extract

import (
	"bytes"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/Stalin-143/monitor/internal/monitor"
)

// Info builds a ContentRecord from raw markup and returns it together with
// the document's rendered text (all markup stripped). The record's Category
// is left empty; classification is a separate step. Malformed markup never
// fails: extraction degrades to defaults instead.
func Info(raw []byte) (monitor.ContentRecord, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return monitor.ContentRecord{
			Title:          monitor.DefaultTitle,
			Description:    monitor.DefaultDescription,
			Links:          []string{},
			Images:         []string{},
			PaymentMethods: []string{},
			Transactions:   []string{},
		}, ""
	}

	text := doc.Text()
	record := monitor.ContentRecord{
		Title:          Title(doc),
		Description:    description(doc),
		Links:          Links(doc),
		Images:         Images(doc),
		TextLength:     utf8.RuneCountInString(text),
		PaymentMethods: markedText(doc, ".payment-method"),
		Transactions:   markedText(doc, ".transaction"),
	}
	return record, text
}

// Title returns the text of the document's first title element, or the
// "No Title" default when absent.
func Title(doc *goquery.Document) string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return monitor.DefaultTitle
	}
	return sel.Text()
}

// TitleMarkup renders the first title element including its markup, or an
// empty string when the document has none. Diffing compares this parsed
// representation rather than the bare title string, so two documents whose
// title elements differ only in attributes still report a title change.
func TitleMarkup(doc *goquery.Document) string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return ""
	}
	markup, err := goquery.OuterHtml(sel)
	if err != nil {
		return sel.Text()
	}
	return markup
}

// Links collects the href of every anchor that has one. Order follows the
// document; duplicates are preserved here and collapsed by set-diffing.
func Links(doc *goquery.Document) []string {
	return attrValues(doc, "a[href]", "href")
}

// Images collects the src of every image element that has one.
func Images(doc *goquery.Document) []string {
	return attrValues(doc, "img[src]", "src")
}

func description(doc *goquery.Document) string {
	content, ok := doc.Find(`meta[name="description"]`).First().Attr("content")
	if !ok {
		return monitor.DefaultDescription
	}
	return content
}

func attrValues(doc *goquery.Document, selector, attr string) []string {
	values := make([]string, 0, 8)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			values = append(values, v)
		}
	})
	return values
}

func markedText(doc *goquery.Document, selector string) []string {
	values := make([]string, 0, 4)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		values = append(values, s.Text())
	})
	return values
}
