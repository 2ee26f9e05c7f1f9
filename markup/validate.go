package markup

import "fmt"

const (
	maxNameLen    = 512
	maxContentLen = 65_536
	maxURLLen     = 4096
)

// validateIngest checks the full payload before anything touches the store.
// Failures carry the thread/comment position so the caller can re-extract the
// offending element.
//
// Duplicate attachment URLs are rejected here: the extractor contract says
// each URL appears at most once per comment, and a violation means the
// upstream dedup is broken — better surfaced than silently tolerated.
func validateIngest(scrapedDataID, projectName string, threads []ThreadPayload) error {
	if scrapedDataID == "" {
		return fmt.Errorf("%w: scrapedDataId is required", ErrValidation)
	}
	if projectName == "" {
		return fmt.Errorf("%w: projectName is required", ErrValidation)
	}
	if len(projectName) > maxNameLen {
		return fmt.Errorf("%w: projectName exceeds %d characters", ErrValidation, maxNameLen)
	}

	for ti := range threads {
		if err := validateThread(&threads[ti]); err != nil {
			return fmt.Errorf("thread %d: %w", ti, err)
		}
	}
	return nil
}

func validateThread(th *ThreadPayload) error {
	if th.ThreadName == "" {
		return fmt.Errorf("%w: threadName is required", ErrValidation)
	}
	if len(th.ThreadName) > maxNameLen {
		return fmt.Errorf("%w: threadName exceeds %d characters", ErrValidation, maxNameLen)
	}
	if th.ImagePath == "" {
		return fmt.Errorf("%w: imagePath is required", ErrValidation)
	}
	if len(th.ImagePath) > maxURLLen {
		return fmt.Errorf("%w: imagePath exceeds %d characters", ErrValidation, maxURLLen)
	}

	for ci := range th.Comments {
		if err := validateComment(&th.Comments[ci]); err != nil {
			return fmt.Errorf("comment %d: %w", ci, err)
		}
	}
	return nil
}

func validateComment(c *CommentPayload) error {
	if c.Content == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(c.Content) > maxContentLen {
		return fmt.Errorf("%w: content exceeds %d bytes", ErrValidation, maxContentLen)
	}
	if c.User == "" {
		return fmt.Errorf("%w: user is required", ErrValidation)
	}

	seen := make(map[string]bool, len(c.Attachments))
	for _, url := range c.Attachments {
		if url == "" {
			return fmt.Errorf("%w: empty attachment URL", ErrValidation)
		}
		if len(url) > maxURLLen {
			return fmt.Errorf("%w: attachment URL exceeds %d characters", ErrValidation, maxURLLen)
		}
		if seen[url] {
			return fmt.Errorf("%w: duplicate attachment URL %q", ErrValidation, url)
		}
		seen[url] = true
	}
	return nil
}
