// slashkit-demo is a small bot exercising both parameter declaration
// styles, choices, channel filters, subcommands, autocomplete and aborts.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/haasonsaas/slashkit/pkg/bot"
	"github.com/haasonsaas/slashkit/pkg/command"
	"github.com/haasonsaas/slashkit/pkg/router"
	"github.com/haasonsaas/slashkit/pkg/store"
	"github.com/haasonsaas/slashkit/pkg/sync"
)

func main() {
	var configPath string
	var guildID string

	root := &cobra.Command{
		Use:           "slashkit-demo",
		Short:         "Demo bot for the slashkit command toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and serve the demo commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), configPath, guildID)
		},
	}
	run.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	run.Flags().StringVarP(&guildID, "guild", "g", "", "scope all commands to one guild")
	root.AddCommand(run)

	if err := root.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func runBot(ctx context.Context, configPath, guildID string) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if guildID != "" {
		cfg.GuildID = guildID
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	reg := command.NewRegistry()
	cmds, err := demoCommands()
	if err != nil {
		return err
	}
	for _, c := range cmds {
		if cfg.GuildID != "" {
			c.GuildID = cfg.GuildID
		}
	}
	if err := reg.Register(cmds...); err != nil {
		return err
	}

	checkStore := store.Store(store.NewMemory())
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		checkStore = redisStore
	}

	rt, err := router.New(router.Config{
		Registry: reg,
		Metrics:  router.NewMetrics(prometheus.DefaultRegisterer),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	syncer, err := sync.New(sync.Config{
		AppID:    cfg.AppID,
		Registry: reg,
		Store:    checkStore,
		Force:    cfg.ForceSync,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	b, err := bot.New(bot.Config{
		Token:  cfg.Token,
		Router: rt,
		Syncer: syncer,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	if err := b.Start(ctx); err != nil {
		return err
	}
	logger.Info("demo bot running", "commands", reg.Len())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return b.Stop(shutdownCtx)
}

func newLogger(cfg *config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener failed", "error", err)
	}
}
