// Package classify assigns a content-type label from rendered page text.
package classify

import (
	"strings"

	"github.com/Stalin-143/monitor/internal/monitor"
)

// keywordSet pairs a category label with the substrings that select it.
type keywordSet struct {
	label    string
	keywords []string
}

// Evaluation order matters: the first matching set wins, so content
// containing both "shop" and "blog" is always E-commerce.
var keywordSets = []keywordSet{
	{monitor.CategoryEcommerce, []string{"shop", "cart", "buy", "product", "store"}},
	{monitor.CategoryBlog, []string{"blog", "post", "article", "comment"}},
	{monitor.CategoryNews, []string{"news", "headline", "breaking", "article"}},
	{monitor.CategorySocialMedia, []string{"login", "signup", "profile", "share"}},
	{monitor.CategoryPaymentGateway, []string{"payment", "checkout", "credit card", "paypal"}},
}

// Classify returns the label of the first keyword set with at least one
// keyword occurring as a substring of the text, or "Unknown". The text is
// lower-cased before matching.
func Classify(text string) string {
	lowered := strings.ToLower(text)
	for _, set := range keywordSets {
		for _, keyword := range set.keywords {
			if strings.Contains(lowered, keyword) {
				return set.label
			}
		}
	}
	return monitor.CategoryUnknown
}
