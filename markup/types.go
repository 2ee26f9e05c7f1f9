package markup

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ThreadPayload is one annotated image as delivered by the extractor.
// Order within the enclosing list is the thread's identity.
type ThreadPayload struct {
	ThreadName    string           `json:"threadName"`
	ImageIndex    ImageIndex       `json:"imageIndex"`
	ImagePath     string           `json:"imagePath"`
	ImageFilename string           `json:"imageFilename"`
	Comments      []CommentPayload `json:"comments"`
}

// CommentPayload is one pin comment as delivered by the extractor.
type CommentPayload struct {
	Index          int64    `json:"index"`
	PinNumber      *int64   `json:"pinNumber,omitempty"`
	Content        string   `json:"content"`
	User           string   `json:"user"`
	HasAttachments *bool    `json:"hasAttachments,omitempty"`
	Attachments    []string `json:"attachments,omitempty"`
}

// IngestRequest is the envelope accepted by the HTTP and MCP ingest surfaces.
type IngestRequest struct {
	ScrapedDataID string          `json:"scrapedDataId"`
	ProjectName   string          `json:"projectName"`
	Threads       []ThreadPayload `json:"threads"`
}

// ImageIndex is an optional integer that tolerates the scraper emitting an
// empty string when the DOM attribute is missing. "" and null decode as
// absent, not as a parse error and not as zero.
type ImageIndex struct {
	Int64 int64
	Valid bool
}

// UnmarshalJSON accepts a JSON number, a numeric string, "" or null.
func (x *ImageIndex) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	switch s {
	case "null", `""`:
		*x = ImageIndex{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("imageIndex: %w", err)
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*x = ImageIndex{}
			return nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("imageIndex: not an integer: %q", s)
	}
	*x = ImageIndex{Int64: n, Valid: true}
	return nil
}

// MarshalJSON emits the number, or null when absent.
func (x ImageIndex) MarshalJSON() ([]byte, error) {
	if !x.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(x.Int64, 10)), nil
}
