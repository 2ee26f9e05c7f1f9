package extract

import (
	"context"
	"log/slog"
	"time"

	"markpin/extract/internal/browser"
)

// LiveConfig configures live page extraction.
type LiveConfig struct {
	// RemoteChromeURL connects to an already-running Chrome instead of
	// launching one.
	RemoteChromeURL string `yaml:"remote_chrome_url"`

	// NavTimeout bounds navigation plus load. Default: 30s.
	NavTimeout time.Duration `yaml:"nav_timeout"`

	Logger *slog.Logger `yaml:"-"`
}

// Live fetches a markup page through Chrome and extracts its Project.
// Requires a working Chrome; saved-page extraction (PageFile) covers
// environments without one.
func Live(ctx context.Context, pageURL string, profile Profile, cfg LiveConfig) (*Project, error) {
	dom, err := browser.FetchDOM(ctx, browser.Config{
		RemoteURL:  cfg.RemoteChromeURL,
		NavTimeout: cfg.NavTimeout,
		Logger:     cfg.Logger,
	}, pageURL)
	if err != nil {
		return nil, err
	}
	return Page(dom, profile)
}
