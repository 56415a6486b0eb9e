package world

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/OCharnyshevich/cavegen/internal/preset"
	"github.com/OCharnyshevich/cavegen/pkg/world/carve"
	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

func mustWorld(t *testing.T, opts Options) *World {
	t.Helper()
	w, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func square(r int) []gen.ChunkPos {
	var out []gen.ChunkPos
	for x := -r; x <= r; x++ {
		for z := -r; z <= r; z++ {
			out = append(out, gen.ChunkPos{X: x, Z: z})
		}
	}
	return out
}

func TestWorldFlatBaseState(t *testing.T) {
	w := mustWorld(t, Options{Seed: 1, Generator: "flat", FlatHeight: 4})

	// Flat generator: bedrock at y=0, stone at y=1-2, dirt at y=3, grass at y=4.
	// Carving never reaches y=0.
	if got, _ := w.GetBlock(0, 0, 0); got != 7<<4 {
		t.Errorf("GetBlock(0,0,0) = %d, want %d (bedrock)", got, 7<<4)
	}
	if got, _ := w.GetBlock(5, 64, 10); got != 0 {
		t.Errorf("GetBlock(5,64,10) = %d, want 0 (air)", got)
	}
	if got, _ := w.GetBlock(5, 300, 10); got != 0 {
		t.Errorf("GetBlock above the world = %d, want 0", got)
	}
	if _, ok := w.Stats(0, 0); !ok {
		t.Error("no stats recorded for a generated chunk")
	}
}

func TestWorldCachesChunks(t *testing.T) {
	w := mustWorld(t, Options{Seed: 3})
	a, err := w.GetOrGenerateChunk(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := w.GetOrGenerateChunk(2, 2)
	if a != b {
		t.Error("second call generated a new chunk")
	}
	w.Evict(2, 2)
	c, _ := w.GetOrGenerateChunk(2, 2)
	if c == a {
		t.Error("Evict kept the chunk")
	}
	if c.Digest() != a.Digest() {
		t.Error("regenerated chunk differs")
	}
	if _, ok := w.Stats(2, 2); !ok {
		t.Error("no stats for the regenerated chunk")
	}
	w.Evict(2, 2)
	if _, ok := w.Stats(2, 2); ok {
		t.Error("Evict kept the chunk's stats")
	}
}

func TestGenerateDoesNotRetainStats(t *testing.T) {
	w := mustWorld(t, Options{Seed: 11})
	cached, err := w.GetOrGenerateChunk(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := w.Stats(0, 0)

	var mu sync.Mutex
	var total carve.Stats
	err = w.Generate(context.Background(), square(2), 4, func(_ gen.ChunkPos, _ *gen.ChunkData, st carve.Stats) error {
		mu.Lock()
		defer mu.Unlock()
		total.Add(st)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if total.Origins == 0 {
		t.Error("Generate passed empty stats to fn")
	}
	for _, p := range square(2) {
		if p.X == 0 && p.Z == 0 {
			continue
		}
		if _, ok := w.Stats(p.X, p.Z); ok {
			t.Fatalf("stats for uncached chunk %+v retained after Generate", p)
		}
	}
	if got, ok := w.Stats(0, 0); !ok || got != want {
		t.Errorf("stats of cached chunk = %+v, %v, want %+v, true", got, ok, want)
	}
	if c, _ := w.GetOrGenerateChunk(0, 0); c != cached {
		t.Error("Generate replaced a cached chunk")
	}
}

func TestWorldUnknownGenerator(t *testing.T) {
	if _, err := New(Options{Generator: "amplified"}); err == nil {
		t.Fatal("New accepted an unknown generator")
	}
}

func TestGenerateMatchesSerial(t *testing.T) {
	ctx := context.Background()
	positions := square(3)

	serial := mustWorld(t, Options{Seed: 99})
	want := map[gen.ChunkPos][32]byte{}
	for _, p := range positions {
		c, err := serial.GetOrGenerateChunk(p.X, p.Z)
		if err != nil {
			t.Fatal(err)
		}
		want[p] = c.Digest()
	}

	// Reverse order and many workers must not change any chunk.
	rev := make([]gen.ChunkPos, len(positions))
	for i, p := range positions {
		rev[len(positions)-1-i] = p
	}
	w := mustWorld(t, Options{Seed: 99})
	var mu sync.Mutex
	got := map[gen.ChunkPos][32]byte{}
	var total carve.Stats
	err := w.Generate(ctx, rev, 8, func(p gen.ChunkPos, c *gen.ChunkData, st carve.Stats) error {
		mu.Lock()
		defer mu.Unlock()
		got[p] = c.Digest()
		total.Add(st)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Generate produced %d chunks, want %d", len(got), len(want))
	}
	for p, d := range want {
		if got[p] != d {
			t.Errorf("chunk %+v differs between serial and parallel generation", p)
		}
	}
	if total.Carved == 0 {
		t.Error("no blocks carved in a 7x7 area with the built-in preset")
	}
}

func TestGenerateStopsOnError(t *testing.T) {
	w := mustWorld(t, Options{Seed: 5, Generator: "flat", FlatHeight: 10})
	boom := errors.New("boom")
	var mu sync.Mutex
	calls := 0
	err := w.Generate(context.Background(), square(6), 2, func(gen.ChunkPos, *gen.ChunkData, carve.Stats) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Generate error = %v, want boom", err)
	}
	if calls > 2 {
		t.Errorf("fn called %d times after the first error, want at most one per worker", calls)
	}
}

func TestGenerateHonoursCancel(t *testing.T) {
	w := mustWorld(t, Options{Seed: 5, Generator: "flat"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Generate(ctx, square(4), 2, func(gen.ChunkPos, *gen.ChunkData, carve.Stats) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate error = %v, want context.Canceled", err)
	}
}

func TestPresetDimensionGate(t *testing.T) {
	p := preset.Default()
	w := mustWorld(t, Options{Seed: 99, Preset: p, Dimension: -1})
	for _, pos := range square(2) {
		if _, err := w.GetOrGenerateChunk(pos.X, pos.Z); err != nil {
			t.Fatal(err)
		}
		if st, _ := w.Stats(pos.X, pos.Z); st.Writes() != 0 {
			t.Fatalf("chunk %+v carved in a dimension the preset excludes", pos)
		}
	}
}
