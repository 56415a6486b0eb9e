package anvil

import (
	"fmt"
	"sync"
	"time"

	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

// Exporter collects encoded chunks and writes them region by region. Add is
// safe for concurrent use.
type Exporter struct {
	dir string

	mu      sync.Mutex
	regions map[[2]int]map[gen.ChunkPos][]byte
}

// NewExporter returns an Exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, regions: make(map[[2]int]map[gen.ChunkPos][]byte)}
}

// Add encodes chunk (cx, cz) and queues it for Flush.
func (e *Exporter) Add(cx, cz int, chunk *gen.ChunkData) error {
	data, err := EncodeChunk(cx, cz, chunk)
	if err != nil {
		return fmt.Errorf("encode chunk (%d,%d): %w", cx, cz, err)
	}
	rx, rz := RegionOf(cx, cz)

	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.regions[[2]int{rx, rz}]
	if r == nil {
		r = make(map[gen.ChunkPos][]byte)
		e.regions[[2]int{rx, rz}] = r
	}
	r[gen.ChunkPos{X: cx, Z: cz}] = data
	return nil
}

// Flush writes every queued region and returns how many files were written.
func (e *Exporter) Flush() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	n := 0
	for key, chunks := range e.regions {
		if err := SaveRegion(e.dir, key[0], key[1], chunks, now); err != nil {
			return n, err
		}
		delete(e.regions, key)
		n++
	}
	return n, nil
}
