package markup

import (
	"strconv"
	"strings"

	"markpin/extract"
)

// FromExtract converts an extractor result into an ingest payload. The
// extractor reports ImageIndex as the raw DOM attribute value; the empty
// string means the attribute is absent and maps to no value here.
func FromExtract(proj *extract.Project) (projectName string, threads []ThreadPayload) {
	threads = make([]ThreadPayload, 0, len(proj.Threads))
	for _, th := range proj.Threads {
		tp := ThreadPayload{
			ThreadName:    th.Name,
			ImagePath:     th.ImagePath,
			ImageFilename: th.ImageFilename,
			Comments:      make([]CommentPayload, 0, len(th.Comments)),
		}
		if raw := strings.TrimSpace(th.ImageIndex); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				tp.ImageIndex = ImageIndex{Int64: n, Valid: true}
			}
		}
		for _, c := range th.Comments {
			has := c.HasAttachments
			tp.Comments = append(tp.Comments, CommentPayload{
				Index:          c.Index,
				PinNumber:      c.PinNumber,
				Content:        c.Content,
				User:           c.User,
				HasAttachments: &has,
				Attachments:    c.Attachments,
			})
		}
		threads = append(threads, tp)
	}
	return proj.Name, threads
}
