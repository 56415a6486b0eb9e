package carve

// Chunk geometry. Carving never touches y=0 or anything at or above MaxY.
const (
	ChunkSize   = 16
	WorldHeight = 256
	MinY        = 1
	MaxY        = 248
)

// Grid is the block storage of the chunk being carved, addressed in local
// coordinates x, z in [0,16) and y in [0,256). Values are block states
// (blockID<<4 | metadata).
type Grid interface {
	GetBlock(x, y, z int) uint16
	SetBlock(x, y, z int, state uint16)
}

// WorldPredicate answers where a preset applies. Implementations must be
// read-only and deterministic.
type WorldPredicate interface {
	TestDimension(id int) bool
	TestBiomeAt(x, z int) bool
}

// NoisePredicate is a thresholded 3D noise field.
type NoisePredicate interface {
	Test(seed int64, x, y, z int) bool
}

// NoiseSampler is a raw 3D noise field returning values roughly in [-1, 1].
type NoiseSampler interface {
	Sample(seed int64, x, y, z float64) float64
}

// Pos is a local block position inside the current chunk.
type Pos struct{ X, Y, Z int }

// Range is an inclusive block height range.
type Range struct{ Min, Max int }

// Contains reports whether y lies in the range.
func (r Range) Contains(y int) bool {
	return y >= r.Min && y <= r.Max
}

// Stats counts what one CarveChunk call did.
type Stats struct {
	Origins   int // candidate origins that spawned at least one system
	Systems   int
	Walks     int
	Rooms     int
	Branches  int
	Segments  int
	Regions   int // regions that reached the compositor
	Abandoned int // regions dropped by the liquid check
	Carved    int
	Decorated int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Origins += o.Origins
	s.Systems += o.Systems
	s.Walks += o.Walks
	s.Rooms += o.Rooms
	s.Branches += o.Branches
	s.Segments += o.Segments
	s.Regions += o.Regions
	s.Abandoned += o.Abandoned
	s.Carved += o.Carved
	s.Decorated += o.Decorated
}

// Writes is the number of block writes performed.
func (s Stats) Writes() int {
	return s.Carved + s.Decorated
}

// chunkContext carries everything a single CarveChunk call needs. It is built
// per call and never stored on the Carver.
type chunkContext struct {
	seed   int64
	cx, cz int
	grid   Grid
	carver *Carver
	stats  Stats
}

// centre returns the absolute block coordinates of the current chunk centre.
func (cc *chunkContext) centre() (float64, float64) {
	return float64(cc.cx*ChunkSize + 8), float64(cc.cz*ChunkSize + 8)
}

func (cc *chunkContext) biomeAt(x, z int) bool {
	w := cc.carver.env.World
	if w == nil {
		return true
	}
	return w.TestBiomeAt(x, z)
}

// world converts a local position into absolute block coordinates.
func (cc *chunkContext) world(p Pos) (int, int, int) {
	return cc.cx*ChunkSize + p.X, p.Y, cc.cz*ChunkSize + p.Z
}

// roll gives each candidate an independent chance roll at the absolute
// position of p and returns the first that passes.
func (cc *chunkContext) roll(states []uint16, chance float64, p Pos, salt int64) (uint16, bool) {
	if len(states) == 0 || chance <= 0 {
		return 0, false
	}
	if chance >= 1 {
		return states[0], true
	}
	x, y, z := cc.world(p)
	r := posRandom(cc.seed, x, y, z, salt)
	for _, st := range states {
		if r.NextFloat() < chance {
			return st, true
		}
	}
	return 0, false
}

func (cc *chunkContext) noise(n NoisePredicate, p Pos) bool {
	x, y, z := cc.world(p)
	return n.Test(cc.seed, x, y, z)
}
