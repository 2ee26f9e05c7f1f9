// Package browser fetches the rendered DOM of a markup page through Chrome.
//
// Markup pages build their thread/comment structure client-side, so a plain
// HTTP GET sees an empty shell. This package launches (or connects to)
// Chrome via rod, navigates with stealth applied, waits for the page to
// settle, and hands the serialised DOM back to the extract parser.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Config configures the DOM fetch.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string

	// NavTimeout bounds navigation plus page load. Default: 30s.
	NavTimeout time.Duration

	// SettleDelay waits after load for client-side rendering. Default: 2s.
	SettleDelay time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// FetchDOM navigates to pageURL and returns the rendered outer HTML.
func FetchDOM(ctx context.Context, cfg Config, pageURL string) ([]byte, error) {
	cfg.defaults()

	b, cleanup, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	// Let the client-side app attach its thread/comment nodes.
	select {
	case <-time.After(cfg.SettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browser: read DOM of %s: %w", pageURL, err)
	}
	return []byte(res.Value.Str()), nil
}

// connect attaches to a remote Chrome or launches a local headless one.
func connect(cfg Config) (*rod.Browser, func(), error) {
	if cfg.RemoteURL != "" {
		b := rod.New().ControlURL(cfg.RemoteURL)
		if err := b.Connect(); err != nil {
			return nil, nil, fmt.Errorf("browser: connect %s: %w", cfg.RemoteURL, err)
		}
		return b, func() { b.Close() }, nil
	}

	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("browser: launch: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, nil, fmt.Errorf("browser: connect: %w", err)
	}
	return b, func() {
		b.Close()
		l.Cleanup()
	}, nil
}
