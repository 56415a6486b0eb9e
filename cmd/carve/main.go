// Command carve generates a square of carved chunks, optionally recording
// them in a carve index and exporting them as Anvil regions.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/OCharnyshevich/cavegen/internal/config"
	"github.com/OCharnyshevich/cavegen/internal/index"
	"github.com/OCharnyshevich/cavegen/internal/preset"
	"github.com/OCharnyshevich/cavegen/internal/world"
	"github.com/OCharnyshevich/cavegen/pkg/world/anvil"
	"github.com/OCharnyshevich/cavegen/pkg/world/carve"
	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

var errMismatch = errors.New("carved chunks differ from the baseline run")

func main() {
	cfg := config.DefaultConfig()
	configPath := flag.String("config", "", "JSON config file; flags override it")
	verify := flag.Bool("verify", false, "compare this run against the first indexed run with the same seed and preset")

	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.Preset, "preset", cfg.Preset, "preset YAML file (built-in vanilla preset when empty)")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, `terrain generator: "default" or "flat"`)
	flag.IntVar(&cfg.FlatHeight, "flat-height", cfg.FlatHeight, "grass height of the flat generator")
	flag.IntVar(&cfg.Dimension, "dimension", cfg.Dimension, "dimension ID passed to the preset filter")
	flag.IntVar(&cfg.Radius, "radius", cfg.Radius, "chunks carved around (0,0)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "generation workers")
	flag.BoolVar(&cfg.Shuffle, "shuffle", cfg.Shuffle, "generate chunks in random order")
	flag.StringVar(&cfg.Index, "index", cfg.Index, "carve index database (disabled when empty)")
	flag.StringVar(&cfg.Export, "export", cfg.Export, "region output directory (disabled when empty)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	boot := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			boot.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		boot.Error("invalid config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *verify, log); err != nil {
		log.Error("carve failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, verify bool, log *slog.Logger) error {
	p := preset.Default()
	if cfg.Preset != "" {
		var err error
		if p, err = preset.Load(cfg.Preset); err != nil {
			return err
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
		return err
	}

	var ix *index.Index
	var cur index.Run
	if cfg.Index != "" {
		if ix, err = index.Open(cfg.Index); err != nil {
			return err
		}
		defer ix.Close()
		if cur, err = ix.BeginRun(ctx, cfg.Seed, p.Carve.Name, p.Digest); err != nil {
			return err
		}
	}

	var exp *anvil.Exporter
	if cfg.Export != "" {
		exp = anvil.NewExporter(cfg.Export)
	}

	positions := square(cfg.Radius)
	if cfg.Shuffle {
		rand.Shuffle(len(positions), func(i, j int) { positions[i], positions[j] = positions[j], positions[i] })
	}

	log.Info("carving",
		"preset", p.Carve.Name,
		"seed", cfg.Seed,
		"chunks", len(positions),
		"workers", cfg.Workers,
		"shuffle", cfg.Shuffle)

	start := time.Now()
	var mu sync.Mutex
	var total carve.Stats
	err = w.Generate(ctx, positions, cfg.Workers, func(pos gen.ChunkPos, c *gen.ChunkData, st carve.Stats) error {
		mu.Lock()
		total.Add(st)
		mu.Unlock()
		if ix != nil {
			if err := ix.RecordChunk(ctx, cur.ID, pos.X, pos.Z, c, st); err != nil {
				return err
			}
		}
		if exp != nil {
			return exp.Add(pos.X, pos.Z, c)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("carved",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"systems", total.Systems,
		"walks", total.Walks,
		"branches", total.Branches,
		"carved", total.Carved,
		"decorated", total.Decorated,
		"abandoned", total.Abandoned)

	if exp != nil {
		n, err := exp.Flush()
		if err != nil {
			return err
		}
		log.Info("exported regions", "dir", cfg.Export, "regions", n)
	}

	if ix != nil {
		log.Info("indexed run", "run", cur.ID, "db", cfg.Index)
		if verify {
			rep, err := ix.Verify(ctx, cur.ID)
			if errors.Is(err, index.ErrNoBaseline) {
				log.Info("no earlier run to verify against; this run is the baseline")
				return nil
			}
			if err != nil {
				return err
			}
			log.Info("verified",
				"baseline", rep.Baseline,
				"checked", rep.Checked,
				"unmatched", rep.Unmatched,
				"mismatched", len(rep.Mismatches))
			for _, m := range rep.Mismatches {
				log.Warn("chunk differs from baseline", "x", m.X, "z", m.Z)
			}
			if !rep.OK() {
				return errMismatch
			}
		}
	}
	return nil
}

func square(r int) []gen.ChunkPos {
	out := make([]gen.ChunkPos, 0, (2*r+1)*(2*r+1))
	for x := -r; x <= r; x++ {
		for z := -r; z <= r; z++ {
			out = append(out, gen.ChunkPos{X: x, Z: z})
		}
	}
	return out
}
