package extract

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/Stalin-143/monitor/internal/monitor"
)

const samplePage = `<html><head><title>Acme Store</title>` +
	`<meta name="description" content="Everything you need"></head>` +
	`<body><p>Hello</p>` +
	`<a href="/a">a</a><a href="/b">b</a><a>no href</a>` +
	`<img src="/logo.png"><img alt="no src">` +
	`<span class="payment-method">Visa</span>` +
	`<span class="payment-method">PayPal</span>` +
	`<div class="transaction">Order #1</div>` +
	`</body></html>`

func TestInfo_ExtractsAllFields(t *testing.T) {
	t.Parallel()

	record, text := Info([]byte(samplePage))
	require.Equal(t, "Acme Store", record.Title)
	require.Equal(t, "Everything you need", record.Description)
	require.Equal(t, []string{"/a", "/b"}, record.Links)
	require.Equal(t, []string{"/logo.png"}, record.Images)
	require.Equal(t, []string{"Visa", "PayPal"}, record.PaymentMethods)
	require.Equal(t, []string{"Order #1"}, record.Transactions)
	require.Contains(t, text, "Hello")
	require.Equal(t, len([]rune(text)), record.TextLength)
	require.Empty(t, record.Category)
}

func TestInfo_Defaults(t *testing.T) {
	t.Parallel()

	record, _ := Info([]byte(`<html><body><p>bare page</p></body></html>`))
	require.Equal(t, monitor.DefaultTitle, record.Title)
	require.Equal(t, monitor.DefaultDescription, record.Description)
	require.Empty(t, record.Links)
	require.Empty(t, record.Images)
	require.Empty(t, record.PaymentMethods)
	require.Empty(t, record.Transactions)
}

func TestInfo_EmptyInput(t *testing.T) {
	t.Parallel()

	record, text := Info(nil)
	require.Equal(t, monitor.DefaultTitle, record.Title)
	require.Equal(t, monitor.DefaultDescription, record.Description)
	require.Empty(t, text)
}

func TestInfo_TextLengthCountsRunes(t *testing.T) {
	t.Parallel()

	record, _ := Info([]byte(`<html><body>héllo wörld</body></html>`))
	require.Equal(t, 11, record.TextLength)
}

func TestTitleMarkup(t *testing.T) {
	t.Parallel()

	withTitle := mustParse(t, `<html><head><title lang="en">Hi</title></head></html>`)
	markup := TitleMarkup(withTitle)
	require.Contains(t, markup, `lang="en"`)
	require.Contains(t, markup, "Hi")

	noTitle := mustParse(t, `<html><body>text</body></html>`)
	require.Empty(t, TitleMarkup(noTitle))
}

func TestLinks_PreservesOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<a href="/x">1</a><a href="/x">2</a><a href="/y">3</a>`)
	require.Equal(t, []string{"/x", "/x", "/y"}, Links(doc))
}

func mustParse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(markup)))
	require.NoError(t, err)
	return doc
}
