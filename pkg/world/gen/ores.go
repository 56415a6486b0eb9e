package gen

// OreGenerator places ore veins in stone using a seeded per-chunk RNG.
// Veins never leave their chunk.
type OreGenerator struct {
	seed  int64
	veins []Vein
}

// Vein configures one ore.
type Vein struct {
	Block    uint16 // block ID
	MinY     int
	MaxY     int
	Size     int // blocks visited by the random walk
	Attempts int // veins per chunk
}

// DefaultVeins are the 1.8 overworld ores.
var DefaultVeins = []Vein{
	{blockCoalOre, 0, 128, 12, 20},
	{blockIronOre, 0, 64, 8, 20},
	{blockGoldOre, 0, 32, 8, 2},
	{blockDiamondOre, 0, 16, 6, 1},
	{blockRedstoneOre, 0, 16, 6, 8},
	{blockLapisOre, 0, 32, 6, 1},
}

// NewOreGenerator creates an OreGenerator with DefaultVeins.
func NewOreGenerator(seed int64) *OreGenerator {
	return &OreGenerator{seed: seed, veins: DefaultVeins}
}

// Place scatters ore veins within the chunk, below the surface only.
func (og *OreGenerator) Place(c *ChunkData, chunkX, chunkZ int, heights *[16][16]int) {
	rng := newChunkRNG(og.seed, chunkX, chunkZ, 500)
	for _, v := range og.veins {
		for range v.Attempts {
			x, y, z := rng.nextN(16), v.MinY+rng.nextN(v.MaxY-v.MinY), rng.nextN(16)
			for range v.Size {
				if y >= 1 && y < heights[x][z] && c.GetBlock(x, y, z) == blockStone<<4 {
					c.SetBlock(x, y, z, v.Block<<4)
				}
				// One random unit step, clamped to the chunk.
				switch rng.nextN(6) {
				case 0:
					x = min(x+1, 15)
				case 1:
					x = max(x-1, 0)
				case 2:
					y++
				case 3:
					y--
				case 4:
					z = min(z+1, 15)
				case 5:
					z = max(z-1, 0)
				}
			}
		}
	}
}

// chunkRNG is a 64-bit LCG for per-chunk terrain passes.
type chunkRNG struct {
	state int64
}

func newChunkRNG(seed int64, cx, cz int, salt int64) *chunkRNG {
	return &chunkRNG{state: seed ^ (int64(cx)*341873128712 + int64(cz)*132897987541 + salt)}
}

func (r *chunkRNG) nextN(n int) int {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	v := int(r.state>>33) % n
	if v < 0 {
		v = -v
	}
	return v
}
