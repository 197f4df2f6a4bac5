package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/playbuilder/internal/api/simapi"
	"github.com/omarshaarawi/playbuilder/internal/config"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("Error running application", "error", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "playbuilder",
		Usage:   "Describe a football play in plain text, then simulate its outcome or a whole drive",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the play parsing and simulation service",
				EnvVars: []string{"API_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setupLogging,

		Commands: []*cli.Command{
			serveCommand(),
			parseCommand(),
			simulateCommand(),
			driveCommand(),
			healthCommand(),
			teamsCommand(),
		},
	}
}

func setupLogging(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the environment and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("api-url") {
		cfg.API.BaseURL = c.String("api-url")
	}
	return cfg, nil
}

func newAPI(cfg *config.Config) *simapi.API {
	return simapi.NewAPI(simapi.NewClient(cfg.API))
}
