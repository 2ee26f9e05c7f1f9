package extract

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/net/html"
)

// Project is the extractor's view of one scraped markup page.
type Project struct {
	Name    string   `json:"projectName"`
	Threads []Thread `json:"threads"`
}

// Thread mirrors one annotated image region. ImageIndex is the raw DOM
// attribute value: the empty string when the attribute is missing — the
// ingestion layer coerces that to "no value".
type Thread struct {
	Name          string    `json:"threadName"`
	ImageIndex    string    `json:"imageIndex"`
	ImagePath     string    `json:"imagePath"`
	ImageFilename string    `json:"imageFilename"`
	Comments      []Comment `json:"comments"`
}

// Comment is one pin annotation read from the page.
type Comment struct {
	Index          int64    `json:"index"`
	PinNumber      *int64   `json:"pinNumber,omitempty"`
	Content        string   `json:"content"`
	User           string   `json:"user"`
	HasAttachments bool     `json:"hasAttachments"`
	Attachments    []string `json:"attachments"`
}

// Page extracts a Project from raw page HTML using the selector profile.
func Page(rawHTML []byte, profile Profile) (*Project, error) {
	profile.Defaults()

	doc, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extract: parse HTML: %w", err)
	}

	proj := &Project{Threads: []Thread{}}
	if n := querySelector(doc, profile.ProjectNameSelector); n != nil {
		proj.Name = collectText(n)
	}

	for _, threadNode := range querySelectorAll(doc, profile.ThreadSelector) {
		proj.Threads = append(proj.Threads, extractThread(threadNode, profile))
	}
	return proj, nil
}

// PageFile extracts a Project from a page saved to disk.
func PageFile(path string, profile Profile) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: read page: %w", err)
	}
	return Page(data, profile)
}

func extractThread(node *html.Node, profile Profile) Thread {
	th := Thread{
		Name:          getAttr(node, profile.ThreadNameAttr),
		ImageIndex:    getAttr(node, profile.ImageIndexAttr),
		ImagePath:     getAttr(node, profile.ImagePathAttr),
		ImageFilename: getAttr(node, profile.ImageFilenameAttr),
		Comments:      []Comment{},
	}

	for ordinal, commentNode := range querySelectorAll(node, profile.CommentSelector) {
		th.Comments = append(th.Comments, extractComment(commentNode, ordinal, profile))
	}
	return th
}

func extractComment(node *html.Node, ordinal int, profile Profile) Comment {
	c := Comment{
		// Comment order is positional; the index attribute wins when the
		// page provides one.
		Index: int64(ordinal + 1),
	}
	if raw := getAttr(node, profile.CommentIndexAttr); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			c.Index = n
		}
	}
	if raw := getAttr(node, profile.PinNumberAttr); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			c.PinNumber = &n
		}
	}

	if body := querySelector(node, profile.ContentSelector); body != nil {
		c.Content = CleanContent(innerHTML(body), collectText(body))
	}
	if author := querySelector(node, profile.UserSelector); author != nil {
		c.User = collectText(author)
	}

	var images []ImageNode
	for _, img := range querySelectorAll(node, profile.AttachmentSelector) {
		images = append(images, ImageNode{Src: getAttr(img, "src")})
	}
	c.Attachments = ExtractAttachments(images)
	c.HasAttachments = len(c.Attachments) > 0
	return c
}
