package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OCharnyshevich/cavegen/internal/config"
	"github.com/OCharnyshevich/cavegen/internal/preset"
	"github.com/OCharnyshevich/cavegen/internal/preview"
	"github.com/OCharnyshevich/cavegen/internal/world"
)

func main() {
	cfg := config.DefaultConfig()
	configPath := flag.String("config", "", "JSON config file; flags override it")

	flag.StringVar(&cfg.Listen, "listen", cfg.Listen, "preview listen address")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.Preset, "preset", cfg.Preset, "preset YAML file (built-in vanilla preset when empty)")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, `terrain generator: "default" or "flat"`)
	flag.IntVar(&cfg.FlatHeight, "flat-height", cfg.FlatHeight, "grass height of the flat generator")
	flag.IntVar(&cfg.Dimension, "dimension", cfg.Dimension, "dimension ID passed to the preset filter")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if level, err := cfg.Level(); err == nil {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	p := preset.Default()
	if cfg.Preset != "" {
		var err error
		if p, err = preset.Load(cfg.Preset); err != nil {
			log.Error("load preset", "error", err)
			os.Exit(1)
		}
	}
	w, err := world.New(world.Options{
		Seed:       cfg.Seed,
		Generator:  cfg.GeneratorType,
		FlatHeight: cfg.FlatHeight,
		Dimension:  cfg.Dimension,
		Preset:     p,
		Log:        log,
	})
	if err != nil {
		log.Error("create world", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           preview.NewServer(w, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("preview server listening", "addr", cfg.Listen, "preset", p.Carve.Name, "seed", cfg.Seed)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("preview server stopped")
}
