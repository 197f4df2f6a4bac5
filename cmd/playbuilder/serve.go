package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/omarshaarawi/playbuilder/internal/bot"
	"github.com/omarshaarawi/playbuilder/internal/builder"
	"github.com/omarshaarawi/playbuilder/internal/repository/memory"
	"github.com/omarshaarawi/playbuilder/internal/scheduler"
	"github.com/omarshaarawi/playbuilder/internal/service"
	"github.com/omarshaarawi/playbuilder/internal/web"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web builder, the health monitor and (with TELEGRAM_TOKEN) the chat bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address for the web builder",
				EnvVars: []string{"WEB_ADDR"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Web.Addr = c.String("addr")
	}

	api := newAPI(cfg)
	repo := memory.NewRepository()
	// web cookies and chat IDs share one session table
	sessions := builder.NewSessions(api, cfg.Defaults.Offense, cfg.Defaults.Defense, cfg.Defaults.Samples)

	handler, err := web.NewHandler(sessions, api, repo, api.BaseURL())
	if err != nil {
		return err
	}

	ctx := c.Context

	var sendMessage func(string) error
	if cfg.TelegramBot.Enabled() {
		playbookService := service.NewPlaybookService(sessions, api, repo)
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, playbookService)
		if err != nil {
			return fmt.Errorf("failed to start telegram bot: %w", err)
		}
		if cfg.TelegramBot.ChatID != 0 {
			sendMessage = telegramBot.SendMessage
		}

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	} else {
		slog.Info("TELEGRAM_TOKEN not set, chat bot disabled")
	}

	sched, err := scheduler.NewScheduler(api, repo, sessions, sendMessage, scheduler.Options{
		HealthInterval: cfg.Monitor.HealthInterval,
		SessionTTL:     cfg.Monitor.SessionTTL,
		Location:       cfg.Monitor.Location,
	})
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:        cfg.Web.Addr,
		Handler:     web.NewRouter(handler, cfg.Web.CORSOrigins),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Play builder listening", "addr", cfg.Web.Addr, "api", api.BaseURL())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	return nil
}
