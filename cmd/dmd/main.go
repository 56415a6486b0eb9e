package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/cavegen/internal/preset"
)

func main() {
	var (
		src = flag.String("src", "", "go-getter source of the preset directory, e.g. git::https://host/repo.git//presets")
		out = flag.String("o", "./presets", "output dir path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *src == "" || *out == "" {
		log.Error("source and output dir are required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("start downloading presets", "src", *src, "dir", *out)
	if err := preset.Fetch(ctx, *src, *out); err != nil {
		log.Error("download presets", "error", err)
		os.Exit(1)
	}

	presets, err := preset.LoadDir(*out)
	if err != nil {
		log.Error("downloaded presets are invalid", "error", err)
		os.Exit(1)
	}
	for _, p := range presets {
		log.Info("preset",
			"name", p.Carve.Name,
			"features", len(p.Carve.Tunnels)+len(p.Carve.Ravines)+len(p.Carve.Caverns),
			"digest", p.Digest[:12])
	}
	log.Info("done downloading presets", "dir", *out, "count", len(presets))
}
