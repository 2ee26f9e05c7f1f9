package extract

import (
	"strings"
	"sync"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// CleanContent converts a comment body's inner HTML into storable markdown.
// The HTML is sanitized first (scripts, event handlers, and embedded styling
// from the scraped page must never reach the store), then converted; when
// conversion fails or yields nothing, the plain text content is returned.
func CleanContent(rawHTML, fallbackText string) string {
	contentPolicyOnce.Do(func() {
		contentPolicy = bluemonday.UGCPolicy()
	})

	sanitized := contentPolicy.Sanitize(rawHTML)
	md, err := htmltomarkdown.ConvertString(sanitized)
	if err != nil {
		return strings.TrimSpace(fallbackText)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return strings.TrimSpace(fallbackText)
	}
	return md
}
