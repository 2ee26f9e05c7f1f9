// Package extract turns a markup review page into the ingestion payload.
//
// It works from a parsed DOM: either the outer HTML of a live page fetched
// through the rod browser, or a page saved to disk. A selector Profile maps
// the page's structure (threads, pin comments, attachment images) onto the
// payload fields.
//
// The package also owns the attachment contract the ingestion layer relies
// on: ExtractAttachments guarantees normalized URLs, no data-URIs, and no
// duplicates, in first-seen order.
package extract

import "strings"

// ImageNode is one attachment image as read from the DOM.
type ImageNode struct {
	Src string
}

// ExtractAttachments converts attachment image nodes into a clean URL list:
//
//   - query-string suffixes are stripped before comparison and storage
//   - inline data-URIs and empty/whitespace-only sources are dropped
//   - each normalized URL appears at most once, in first-seen order
//
// The seen-set is local to the call; there is no cross-page state.
func ExtractAttachments(images []ImageNode) []string {
	urls := []string{}
	seen := make(map[string]bool, len(images))
	for _, img := range images {
		url, ok := normalizeAttachmentURL(img.Src)
		if !ok || seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
	}
	return urls
}

// normalizeAttachmentURL strips the query string and rejects sources that are
// not real file references.
func normalizeAttachmentURL(src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}
	if strings.HasPrefix(src, "data:") {
		return "", false
	}
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	if src == "" {
		return "", false
	}
	return src, true
}
