package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	pkgconfig "github.com/starford/folio/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runPhone(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if p := cmd.String("profile"); p != "" {
		cfg.Phone.Profile = p
		if err := cfg.Phone.Validate(); err != nil {
			return err
		}
	}
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithEntry(cmd.String("open")),
	}
	if err := internal.RunPhone(ctx, opts...); err != nil {
		return fmt.Errorf("phone error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func optimizeImage(_ context.Context, cmd *cli.Command) error {
	src := cmd.Args().First()
	if src == "" {
		return errors.New("usage: folio optimize-image <source image>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir := cmd.String("out"); dir != "" {
		cfg.Assets.Dir = dir
	}
	res, err := internal.OptimizeImage(src, internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Println(res.WebP)
	fmt.Println(res.JPEG)
	fmt.Println(res.Placeholder)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "folio",
		Usage:   "A personal portfolio shaped like a phone home screen",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the content, ledger and music APIs over HTTP",
				Action: serve,
			},
			{
				Name:   "phone",
				Usage:  "Open the phone in the terminal",
				Action: runPhone,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "open",
						Usage: "Open an item on start, e.g. notes:3 or events:1",
					},
					&cli.StringFlag{
						Name:    "profile",
						Usage:   "Ledger profile to record views under",
						Sources: cli.EnvVars("FOLIO_PROFILE"),
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Expose the content as MCP tools on stdio",
				Action: runMCP,
			},
			{
				Name:      "optimize-image",
				Usage:     "Write WebP, JPEG and blurred placeholder encodings of an image",
				ArgsUsage: "<source image>",
				Action:    optimizeImage,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output directory (defaults to assets.dir)",
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
