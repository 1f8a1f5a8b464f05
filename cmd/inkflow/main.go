package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/inkflow/internal"
	pkgconfig "github.com/starford/inkflow/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("data-dir"); dir != "" {
		cfg.Storage.DataDir = dir
	}
	if backend := cmd.String("backend"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.App.HTTP.Port = int(port)
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

// withCore opens the note core for one-shot commands, logging to stderr.
func withCore(run func(ctx context.Context, cmd *cli.Command, core *internal.Core) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		core, err := internal.Open(ctx, cfg, internal.NewLogger(cfg, os.Stderr))
		if err != nil {
			return err
		}
		defer core.Close()
		return run(ctx, cmd, core)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "inkflow",
		Usage:   "Markdown notes with notebooks, tags, statuses and git sync",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory holding notes.json and notebooks.json",
				Sources: cli.EnvVars("INKFLOW_DATA_DIR"),
			},
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Storage backend: file, kv or memory",
				Sources: cli.EnvVars("INKFLOW_BACKEND"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Override app.http.port"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the agent tools over stdio",
				Action: serveMCP,
			},
			notesCommand(),
			syncCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
