package extract

import (
	"strings"
	"testing"
)

func TestCleanContentConvertsToMarkdown(t *testing.T) {
	// WHAT: Rich comment HTML converts to markdown.
	// WHY: Comment bodies store as plain text; markdown keeps the emphasis.
	got := CleanContent(`<p>Move the <strong>logo</strong> <em>left</em></p>`, "")
	if !strings.Contains(got, "**logo**") || !strings.Contains(got, "*left*") {
		t.Errorf("markdown: got %q", got)
	}
}

func TestCleanContentStripsScripts(t *testing.T) {
	// WHAT: Script tags and event handlers are removed before conversion.
	// WHY: Scraped page content is untrusted input.
	got := CleanContent(`<p onclick="steal()">ok</p><script>alert(1)</script>`, "")
	if strings.Contains(got, "alert") || strings.Contains(got, "steal") {
		t.Errorf("script content leaked: %q", got)
	}
	if !strings.Contains(got, "ok") {
		t.Errorf("legitimate text lost: %q", got)
	}
}

func TestCleanContentFallback(t *testing.T) {
	// WHAT: Empty conversion output falls back to the plain text.
	// WHY: A comment must never silently lose its content.
	got := CleanContent("", "raw text")
	if got != "raw text" {
		t.Errorf("got %q, want %q", got, "raw text")
	}
}
