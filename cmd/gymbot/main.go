package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/claude/gymbot/internal/bot"
	"github.com/claude/gymbot/internal/config"
	"github.com/claude/gymbot/internal/mcp"
	"github.com/claude/gymbot/internal/quote"
	"github.com/claude/gymbot/internal/schedule"
	"github.com/claude/gymbot/internal/server"
	"github.com/claude/gymbot/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", "poll", "run mode: poll, webhook, or mcp")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("GymBot starting", "version", Version, "mode", *mode)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.Database.MigrateDSN(), "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()

	var store storage.Store
	switch cfg.Database.Driver {
	case "postgres":
		store, err = storage.OpenPostgres(ctx, cfg.Database.DSN)
	default:
		store, err = storage.OpenSQLite(cfg.Database.Path)
	}
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("database connected", "driver", cfg.Database.Driver)

	if *mode == "mcp" {
		s := mcp.New(store, Version, log)
		if err := mcpserver.ServeStdio(s); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	zone, err := cfg.Reminders.Location()
	if err != nil {
		log.Error("invalid timezone", "timezone", cfg.Reminders.Timezone, "error", err)
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram auth failed", "error", err)
		os.Exit(1)
	}
	log.Info("telegram connected", "username", api.Self.UserName)

	quotes := quote.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	b := bot.New(api, store, quotes, bot.Options{
		OwnerID:         cfg.Telegram.OwnerID,
		Zone:            zone,
		SnoozeAfter:     cfg.Reminders.SnoozeAfter(),
		StartupGreeting: cfg.Reminders.StartupGreeting,
	}, log)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	sched, err := schedule.New(b, zone, cfg.Reminders.GreetingHour, cfg.Reminders.GreetingMinute, log)
	if err != nil {
		log.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	if *mode == "poll" {
		go b.Run(runCtx)
	}

	srv := server.New(store, b, cfg.Server.APIKey, cfg.Telegram.WebhookSecret, log)

	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	cancelRun()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
