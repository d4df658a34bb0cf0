// Package internal wires the configuration, the content pipeline and the
// plugins into the depot commands.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/bookmark"
	"github.com/starford/depot/internal/cache"
	"github.com/starford/depot/internal/markup"
	"github.com/starford/depot/internal/mcpserver"
	"github.com/starford/depot/internal/plugins/atom"
	"github.com/starford/depot/internal/plugins/bookmarks"
	"github.com/starford/depot/internal/plugins/devmode"
	"github.com/starford/depot/internal/reader"
	"github.com/starford/depot/internal/site"
	"github.com/starford/depot/internal/storage"
	"github.com/starford/depot/internal/theme"
)

// NewLogger builds the process logger. Logs go to w, never to the command
// output, so that stdio transports stay clean.
func NewLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newApplication(opts []Option) (*application, error) {
	app := &application{stdout: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = NewLogger(app.config.App, os.Stderr)
		slog.SetDefault(app.logger)
	}
	return app, nil
}

// runtime holds the long-lived pieces shared by every build of one command.
type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	settings *site.Settings
	content  *storage.FS
	output   *storage.FS
	reader   *reader.Reader
	cache    *cache.DB
	plugins  []site.Plugin
}

// SiteSettings maps the configuration onto the values generators read.
func SiteSettings(cfg *Config) *site.Settings {
	return &site.Settings{
		SiteName:          cfg.Site.Name,
		SiteURL:           cfg.Site.URL,
		Author:            cfg.Site.Author,
		AuthorEmail:       cfg.Site.AuthorEmail,
		Location:          cfg.Site.Location(),
		DefaultLang:       cfg.Site.DefaultLang,
		LangsLabels:       cfg.Site.LangsLabels,
		DefaultMetadata:   cfg.Site.DefaultMetadata,
		RelativeURLs:      cfg.Site.RelativeURLs,
		ContentPath:       cfg.Content.Path,
		OutputPath:        cfg.Output.Path,
		ArticleExcludes:   cfg.Content.ArticleExcludes,
		ArticleURL:        cfg.Content.ArticleURL,
		ArticleSaveAs:     cfg.Content.ArticleSaveAs,
		ArticleLangURL:    cfg.Content.ArticleLangURL,
		ArticleLangSaveAs: cfg.Content.ArticleLangSaveAs,
		BookmarksDir:      cfg.Bookmarks.Dir,
		BookmarksSaveAs:   cfg.Bookmarks.SaveAs,
		FeedSaveAs:        cfg.Feed.SaveAs,
	}
}

// Plugins returns the plugins named in the config, in config order.
func Plugins(cfg *Config, devOpts ...devmode.Option) ([]site.Plugin, error) {
	out := make([]site.Plugin, 0, len(cfg.Plugins))
	for _, name := range cfg.Plugins {
		switch name {
		case PluginCustomAtom:
			out = append(out, atom.Plugin())
		case PluginBookmarks:
			out = append(out, bookmarks.Plugin(bookmarks.WithStrict(cfg.Bookmarks.Strict)))
		case PluginDevMode:
			out = append(out, devmode.Plugin(devOpts...))
		default:
			return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownPlugin, name)
		}
	}
	return out, nil
}

func (a *application) openRuntime(devOpts ...devmode.Option) (*runtime, error) {
	cfg := a.config
	logger := a.logger

	logger.Info("Configuration loaded",
		slog.String("content_path", cfg.Content.Path),
		slog.String("output_path", cfg.Output.Path),
		slog.Any("plugins", cfg.Plugins),
		slog.String("log_level", cfg.App.LogLevel.String()))

	for _, dir := range []string{cfg.Content.Path, cfg.Output.Path} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}
	content, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init content storage: %w", err)
	}
	output, err := storage.NewFS(cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("init output storage: %w", err)
	}

	plugins, err := Plugins(cfg, devOpts...)
	if err != nil {
		return nil, err
	}

	settings := SiteSettings(cfg)
	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		settings: settings,
		content:  content,
		output:   output,
		plugins:  plugins,
	}

	readerOpts := []reader.Option{
		reader.WithLocation(settings.Location),
		reader.WithDefaultMetadata(cfg.Site.DefaultMetadata),
		reader.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		db, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
		rt.cache = db
		readerOpts = append(readerOpts, reader.WithCache(db))
	}
	rt.reader = reader.New(content, markup.New(cfg.Markdown.Extensions), readerOpts...)
	return rt, nil
}

func (rt *runtime) Close() error {
	if rt.cache != nil {
		return rt.cache.Close()
	}
	return nil
}

// build runs one full site build. The theme is loaded on every build so
// template edits are picked up by serve.
func (rt *runtime) build(ctx context.Context) (site.Context, error) {
	tmpl, err := theme.Load(rt.cfg.Theme.Path)
	if err != nil {
		return nil, err
	}
	w := site.NewWriter(rt.output, tmpl, rt.settings, rt.logger)
	s := site.New(rt.settings, rt.reader, w, rt.logger, rt.plugins...)
	return s.Build(ctx)
}

func (rt *runtime) bookmarkStore() *bookmark.Store {
	return bookmark.NewStore(rt.content, rt.reader, rt.cfg.Bookmarks.Dir, bookmark.WithStoreLogger(rt.logger))
}

// Build generates the site once.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.build(ctx); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return nil
}

// Serve builds the site, serves the output directory and rebuilds whenever
// the content or theme changes. It returns when ctx is cancelled or on
// SIGINT/SIGTERM.
//
// Unless DEV_MODE is set, serve runs the devmode plugin with DEV_MODE=1 so
// that pages include the live reload script.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	rt, err := app.openRuntime(devmode.WithGetenv(serveGetenv))
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dev := newDevServer(rt, logger)
	defer dev.Close()
	dev.rebuild(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Serve.Listen,
		Handler:           dev.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dev.Watch(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Serve.Listen))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP serves the bookmark tools over MCP on stdin/stdout.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	app.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.bookmarkStore(), app.version).ServeStdio()
}

// AddBookmark saves d and prints the new file path.
func AddBookmark(ctx context.Context, d bookmark.Draft, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := rt.bookmarkStore().Save(ctx, d)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.stdout, p)
	return err
}

// ListBookmarks prints the bookmarks as a table at most width columns wide.
func ListBookmarks(_ context.Context, width int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	bs, err := rt.bookmarkStore().List()
	if err != nil {
		return err
	}
	return bookmark.WriteTable(app.stdout, bs, width)
}
