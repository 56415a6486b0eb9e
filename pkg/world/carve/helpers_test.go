package carve

import (
	"math"
	"testing"
)

const (
	air     = 0
	stone   = 1 << 4
	dirt    = 3 << 4
	bedrock = 7 << 4
	water   = 9 << 4
	lava    = 11 << 4
	gravel  = 13 << 4
	glass   = 20 << 4
	ore     = 56 << 4
)

// testGrid is a single chunk that fails the test on any out-of-bounds access
// and on writes outside the carvable band.
type testGrid struct {
	t      *testing.T
	blocks [ChunkSize][WorldHeight][ChunkSize]uint16
	writes int
}

func newTestGrid(t *testing.T) *testGrid {
	g := &testGrid{t: t}
	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			g.blocks[x][0][z] = bedrock
			for y := 1; y < WorldHeight; y++ {
				g.blocks[x][y][z] = stone
			}
		}
	}
	return g
}

func (g *testGrid) GetBlock(x, y, z int) uint16 {
	if x < 0 || x >= ChunkSize || y < 0 || y >= WorldHeight || z < 0 || z >= ChunkSize {
		g.t.Errorf("read outside chunk at (%d,%d,%d)", x, y, z)
		return 0
	}
	return g.blocks[x][y][z]
}

func (g *testGrid) SetBlock(x, y, z int, state uint16) {
	if x < 0 || x >= ChunkSize || y < MinY || y >= MaxY || z < 0 || z >= ChunkSize {
		g.t.Errorf("write outside chunk at (%d,%d,%d)", x, y, z)
		return
	}
	g.blocks[x][y][z] = state
	g.writes++
}

func (g *testGrid) count(state uint16) int {
	n := 0
	for x := range g.blocks {
		for y := range g.blocks[x] {
			for z := range g.blocks[x][y] {
				if g.blocks[x][y][z] == state {
					n++
				}
			}
		}
	}
	return n
}

func tunnelSettings() TunnelSettings {
	return TunnelSettings{
		WalkSettings: WalkSettings{
			Chance:          1,
			Height:          Range{8, 127},
			SystemChance:    0.25,
			SystemDensity:   4,
			NoiseYReduction: true,
			Yaw:             Decay{Exponent: 1, Factor: 1, Start: math.Pi, StartJitter: math.Pi},
			Pitch:           Decay{Exponent: 1, Factor: 1, StartJitter: 0.25},
			TwistYaw:        Decay{Exponent: 1, Factor: 0.75, Jitter: 4},
			TwistPitch:      Decay{Exponent: 1, Factor: 0.9, Jitter: 2},
			Scale:           Decay{Exponent: 1, Factor: 1, Start: 1.5, StartJitter: 1.5},
			Stretch:         Constant(1),
			Branches:        BranchSettings{Enabled: true, MaxDepth: 4},
		},
		Frequency: 15,
		Rooms: RoomSettings{
			Chance:  0.25,
			Scale:   Decay{Exponent: 1, Factor: 1, Start: 4, StartJitter: 3},
			Stretch: Constant(0.5),
		},
	}
}

func ravineSettings() RavineSettings {
	return RavineSettings{
		WalkSettings: WalkSettings{
			Chance:     0.5,
			Height:     Range{20, 67},
			Yaw:        Decay{Exponent: 1, Factor: 1, Start: math.Pi, StartJitter: math.Pi},
			Pitch:      Decay{Exponent: 1, Factor: 1, StartJitter: 0.125},
			TwistYaw:   Decay{Exponent: 1, Factor: 0.5, Jitter: 4},
			TwistPitch: Decay{Exponent: 1, Factor: 0.8, Jitter: 2},
			Scale:      Decay{Exponent: 1, Factor: 1, Start: 3, StartJitter: 3},
			Stretch:    Constant(3),
		},
		CutoffStrength: 5,
	}
}

func testPreset() *Preset {
	return &Preset{
		Name:        "test",
		Range:       8,
		Air:         air,
		Lava:        lava,
		LavaLevel:   10,
		Replaceable: []uint16{stone, dirt},
		Liquids:     []uint16{water},
		Tunnels:     []TunnelSettings{tunnelSettings()},
		Ravines:     []RavineSettings{ravineSettings()},
	}
}

func mustCarver(t *testing.T, p *Preset, env Env) *Carver {
	t.Helper()
	c, err := New(p, env)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// testContext returns a context for chunk (cx, cz) with no features run.
func testContext(t *testing.T, p *Preset, seed int64, cx, cz int, g Grid) *chunkContext {
	t.Helper()
	return &chunkContext{seed: seed, cx: cx, cz: cz, grid: g, carver: mustCarver(t, p, Env{})}
}

// fixedNoise is a NoisePredicate and NoiseSampler with a constant answer.
type fixedNoise struct {
	pass  bool
	value float64
}

func (n fixedNoise) Test(int64, int, int, int) bool                 { return n.pass }
func (n fixedNoise) Sample(int64, float64, float64, float64) float64 { return n.value }
