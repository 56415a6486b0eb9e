// Package world ties terrain generation and cave carving together and caches
// the resulting chunks.
package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OCharnyshevich/cavegen/internal/preset"
	"github.com/OCharnyshevich/cavegen/pkg/world/carve"
	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

// Options configure a World.
type Options struct {
	Seed       int64
	Generator  string // "default" or "flat"
	FlatHeight int
	Dimension  int
	Preset     *preset.Preset // nil uses preset.Default()
	Log        *slog.Logger
}

// World generates carved chunks on demand and caches them. It is safe for
// concurrent use.
type World struct {
	seed      int64
	generator gen.Generator
	carver    *carve.Carver
	log       *slog.Logger

	mu     sync.RWMutex
	chunks map[gen.ChunkPos]*gen.ChunkData
	stats  map[gen.ChunkPos]carve.Stats
}

// uniformBiome reports one biome everywhere.
type uniformBiome byte

func (b uniformBiome) BiomeAt(int, int) byte { return byte(b) }

// New builds the generator and carver described by opts.
func New(opts Options) (*World, error) {
	p := opts.Preset
	if p == nil {
		p = preset.Default()
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	w := &World{
		seed:   opts.Seed,
		log:    log,
		chunks: make(map[gen.ChunkPos]*gen.ChunkData),
		stats:  make(map[gen.ChunkPos]carve.Stats),
	}

	var biomes preset.BiomeSource
	switch opts.Generator {
	case "default", "":
		biomes = gen.NewBiomeGenerator(opts.Seed)
		w.generator = gen.NewDefaultGenerator(opts.Seed, w.carve)
	case "flat":
		biomes = uniformBiome(gen.FlatBiome)
		w.generator = gen.NewFlatGenerator(opts.FlatHeight, w.carve)
	default:
		return nil, fmt.Errorf("unknown generator %q", opts.Generator)
	}

	c, err := carve.New(p.Carve, carve.Env{
		World:     p.Filter(biomes),
		Dimension: opts.Dimension,
		Log:       log,
	})
	if err != nil {
		return nil, err
	}
	w.carver = c
	return w, nil
}

// Carver returns the carver applied to every chunk.
func (w *World) Carver() *carve.Carver {
	return w.carver
}

// Seed returns the world seed.
func (w *World) Seed() int64 {
	return w.seed
}

func (w *World) carve(cx, cz int, c *gen.ChunkData) error {
	st, err := w.carver.CarveChunk(w.seed, cx, cz, c)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.stats[gen.ChunkPos{X: cx, Z: cz}] = st
	w.mu.Unlock()
	return nil
}

// GetOrGenerateChunk returns the carved chunk at (cx, cz), generating and
// caching it if needed.
func (w *World) GetOrGenerateChunk(cx, cz int) (*gen.ChunkData, error) {
	pos := gen.ChunkPos{X: cx, Z: cz}

	w.mu.RLock()
	if c, ok := w.chunks[pos]; ok {
		w.mu.RUnlock()
		return c, nil
	}
	w.mu.RUnlock()

	c, err := w.generator.Generate(cx, cz)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	// Double-check after acquiring write lock.
	if existing, ok := w.chunks[pos]; ok {
		w.mu.Unlock()
		return existing, nil
	}
	w.chunks[pos] = c
	w.mu.Unlock()
	return c, nil
}

// Stats returns what carving did to chunk (cx, cz), if it was generated.
func (w *World) Stats(cx, cz int) (carve.Stats, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st, ok := w.stats[gen.ChunkPos{X: cx, Z: cz}]
	return st, ok
}

// GetBlock returns the block state at world coordinates, generating the
// chunk if needed. Positions outside [0,256) are air.
func (w *World) GetBlock(x, y, z int) (uint16, error) {
	if y < 0 || y >= 256 {
		return 0, nil
	}
	c, err := w.GetOrGenerateChunk(x>>4, z>>4)
	if err != nil {
		return 0, err
	}
	return c.GetBlock(x&0xF, y, z&0xF), nil
}

// Evict drops a chunk and its stats from the cache.
func (w *World) Evict(cx, cz int) {
	pos := gen.ChunkPos{X: cx, Z: cz}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.chunks, pos)
	delete(w.stats, pos)
}

// takeStats returns the stats recorded for pos and forgets them unless the
// chunk is cached.
func (w *World) takeStats(pos gen.ChunkPos) carve.Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.stats[pos]
	if _, cached := w.chunks[pos]; !cached {
		delete(w.stats, pos)
	}
	return st
}

// ChunkFunc receives each chunk produced by Generate.
type ChunkFunc func(pos gen.ChunkPos, c *gen.ChunkData, st carve.Stats) error

// Generate produces every chunk in positions with workers goroutines and
// calls fn for each, from the worker that produced it. The first error
// cancels the remaining work. Chunks and their stats are not cached.
func (w *World) Generate(ctx context.Context, positions []gen.ChunkPos, workers int, fn ChunkFunc) error {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	jobs := make(chan gen.ChunkPos)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				c, err := w.generator.Generate(pos.X, pos.Z)
				if err == nil {
					err = fn(pos, c, w.takeStats(pos))
				}
				if err != nil {
					cancel(err)
					return
				}
			}
		}()
	}

feed:
	for _, pos := range positions {
		select {
		case jobs <- pos:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}
