package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/depot/internal"
	"github.com/starford/depot/internal/bookmark"
	pkgconfig "github.com/starford/depot/pkg/config"
)

var version = "dev"

// loadConfig reads the --config file over the defaults. A missing file is
// fine: every setting has a default.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if out := cmd.String("output"); out != "" {
		cfg.Output.Path = out
	}
	return internal.Build(ctx, internal.WithConfig(cfg))
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen := cmd.String("listen"); listen != "" {
		cfg.Serve.Listen = listen
	}
	return internal.Serve(ctx, internal.WithConfig(cfg))
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func addBookmark(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rawURL := cmd.Args().First()
	if rawURL == "" {
		return fmt.Errorf("usage: depot bookmarks add <url>")
	}
	d := bookmark.Draft{
		URL:         rawURL,
		Title:       cmd.String("title"),
		Tags:        cmd.StringSlice("tag"),
		Description: cmd.String("description"),
	}
	return internal.AddBookmark(ctx, d, internal.WithConfig(cfg))
}

func listBookmarks(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ListBookmarks(ctx, int(cmd.Int("width")), internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:    "depot",
		Usage:   "Static site generator for articles, bookmarks and an Atom feed",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "depot.yaml",
				Value:       "depot.yaml",
				Sources:     cli.EnvVars("DEPOT_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Generate the site once",
				Action: build,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (overrides output.path)",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Build, serve the output and rebuild on changes",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Aliases: []string{"l"},
						Usage:   "Listen address (overrides serve.listen)",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the bookmark tools over MCP on stdio",
				Action: serveMCP,
			},
			{
				Name:  "bookmarks",
				Usage: "Manage bookmarks",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Save a link as a bookmark",
						ArgsUsage: "<url>",
						Action:    addBookmark,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Usage: "Title (default: the page <title>)"},
							&cli.StringSliceFlag{Name: "tag", Usage: "Tag, repeatable"},
							&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Markdown note"},
						},
					},
					{
						Name:   "list",
						Usage:  "Print saved bookmarks, newest first",
						Action: listBookmarks,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "width", Usage: "Table width", Value: 100},
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
