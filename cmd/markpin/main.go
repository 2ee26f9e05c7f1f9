// Command markpin ingests scraped markup-review pages into SQLite and serves
// the stored project trees over HTTP and MCP.
//
// Usage:
//
//	markpin -db markpin.db -serve                    # HTTP + MCP server
//	markpin -db markpin.db -ingest payload.json      # ingest a scraped payload
//	markpin -db markpin.db -page saved.html          # extract + ingest a saved page
//	markpin -db markpin.db -scrape https://…         # extract + ingest via Chrome
//	markpin -db markpin.db -show s1                  # print a stored project tree
//	markpin -db markpin.db -list                     # list stored projects
package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	_ "modernc.org/sqlite"

	"markpin/extract"
	"markpin/markup"
	"markpin/mcpquic"
	"markpin/shield"
)

func main() {
	configPath := flag.String("config", "", "path to markpin.yaml config file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	ingestPath := flag.String("ingest", "", "ingest a scraped payload JSON file")
	pagePath := flag.String("page", "", "extract and ingest a saved page HTML file")
	scrapeURL := flag.String("scrape", "", "extract and ingest a live page via Chrome")
	scrapedID := flag.String("id", "", "scraped-data reference for -page/-scrape")
	showRef := flag.String("show", "", "print the stored tree for a scraped-data reference")
	list := flag.Bool("list", false, "list stored projects")
	serve := flag.Bool("serve", false, "run the HTTP + MCP server")
	mcpQUICAddr := flag.String("mcp-quic", "", "also serve MCP over QUIC on this UDP address")
	certFile := flag.String("cert", "", "TLS certificate for -mcp-quic (self-signed when empty)")
	keyFile := flag.String("key", "", "TLS key for -mcp-quic")
	chromeURL := flag.String("chrome", "", "remote Chrome control URL for -scrape")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts{
		configPath:  *configPath,
		dbPath:      *dbPath,
		ingestPath:  *ingestPath,
		pagePath:    *pagePath,
		scrapeURL:   *scrapeURL,
		scrapedID:   *scrapedID,
		showRef:     *showRef,
		list:        *list,
		serve:       *serve,
		mcpQUICAddr: *mcpQUICAddr,
		certFile:    *certFile,
		keyFile:     *keyFile,
		chromeURL:   *chromeURL,
	}); err != nil {
		logger.Error("markpin: fatal", "error", err)
		os.Exit(1)
	}
}

type opts struct {
	configPath  string
	dbPath      string
	ingestPath  string
	pagePath    string
	scrapeURL   string
	scrapedID   string
	showRef     string
	list        bool
	serve       bool
	mcpQUICAddr string
	certFile    string
	keyFile     string
	chromeURL   string
}

func run(ctx context.Context, logger *slog.Logger, o opts) error {
	cfg := &markup.Config{}
	if o.configPath != "" {
		loaded, err := markup.LoadConfigFile(o.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}

	svc, err := markup.New(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	switch {
	case o.ingestPath != "":
		return runIngestFile(ctx, svc, o.ingestPath)
	case o.pagePath != "":
		return runPage(ctx, svc, cfg, o.pagePath, o.scrapedID)
	case o.scrapeURL != "":
		return runScrape(ctx, svc, cfg, logger, o.scrapeURL, o.scrapedID, o.chromeURL)
	case o.showRef != "":
		return runShow(ctx, svc, o.showRef)
	case o.list:
		return runList(ctx, svc)
	case o.serve:
		return runServe(ctx, svc, cfg, logger, o)
	}

	fmt.Fprintln(os.Stderr, "usage: markpin -serve | -ingest <file> | -page <file> | -scrape <url> | -show <ref> | -list")
	os.Exit(1)
	return nil
}

func runIngestFile(ctx context.Context, svc *markup.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	var req markup.IngestRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	projectID, err := svc.Ingest(ctx, req.ScrapedDataID, req.ProjectName, req.Threads)
	if err != nil {
		return err
	}
	fmt.Println(projectID)
	return nil
}

func runPage(ctx context.Context, svc *markup.Service, cfg *markup.Config, path, scrapedID string) error {
	if scrapedID == "" {
		return fmt.Errorf("-page requires -id <scraped-data reference>")
	}
	proj, err := extract.PageFile(path, cfg.Extract)
	if err != nil {
		return err
	}
	name, threads := markup.FromExtract(proj)

	projectID, err := svc.Ingest(ctx, scrapedID, name, threads)
	if err != nil {
		return err
	}
	fmt.Println(projectID)
	return nil
}

func runScrape(ctx context.Context, svc *markup.Service, cfg *markup.Config, logger *slog.Logger, url, scrapedID, chromeURL string) error {
	if scrapedID == "" {
		return fmt.Errorf("-scrape requires -id <scraped-data reference>")
	}
	proj, err := extract.Live(ctx, url, cfg.Extract, extract.LiveConfig{
		RemoteChromeURL: chromeURL,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("scrape %s: %w", url, err)
	}
	name, threads := markup.FromExtract(proj)
	if name == "" {
		name = url
	}

	projectID, err := svc.Ingest(ctx, scrapedID, name, threads)
	if err != nil {
		return err
	}
	fmt.Println(projectID)
	return nil
}

func runShow(ctx context.Context, svc *markup.Service, ref string) error {
	tree, err := svc.GetProject(ctx, ref)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

func runList(ctx context.Context, svc *markup.Service) error {
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Printf("%s\t%s\t%s\n", p.ID, p.ScrapedDataID, p.Name)
	}
	return nil
}

func runServe(ctx context.Context, svc *markup.Service, cfg *markup.Config, logger *slog.Logger, o opts) error {
	if _, err := svc.DB().Exec(shield.Schema); err != nil {
		return fmt.Errorf("rate limit schema: %w", err)
	}
	rl := shield.NewRateLimiter(svc.DB(), "/health")
	rl.StartReloader(ctx.Done())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range shield.DefaultStack(rl) {
		r.Use(mw)
	}
	svc.Routes(r)

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: "markpin", Version: "1.0.0"}, nil)
	svc.RegisterMCP(mcpServer)
	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return mcpServer }, nil))

	if o.mcpQUICAddr != "" {
		var tlsCfg *tls.Config
		var err error
		if o.certFile != "" && o.keyFile != "" {
			tlsCfg, err = mcpquic.ServerTLSConfig(o.certFile, o.keyFile)
		} else {
			tlsCfg, err = mcpquic.SelfSignedTLSConfig()
		}
		if err != nil {
			return fmt.Errorf("mcp quic tls: %w", err)
		}
		ql, err := mcpquic.NewListener(o.mcpQUICAddr, tlsCfg, mcpServer, logger)
		if err != nil {
			return fmt.Errorf("mcp quic listener: %w", err)
		}
		defer ql.Close()
		go func() {
			if err := ql.Serve(ctx); err != nil && ctx.Err() == nil {
				logger.Error("markpin: mcp quic", "error", err)
			}
		}()
	}

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("markpin: listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("markpin: shutting down")
	return srv.Shutdown(context.Background())
}
