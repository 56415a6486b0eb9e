package gen

import (
	"fmt"

	"github.com/OCharnyshevich/cavegen/pkg/world/noise"
)

// DefaultGenerator produces vanilla-like terrain with biomes and ore veins,
// then hands each chunk to its carve hook.
type DefaultGenerator struct {
	terrain  *noise.Simplex
	detail   *noise.Simplex
	biomeGen *BiomeGenerator
	oreGen   *OreGenerator
	carve    CarveHook
}

// NewDefaultGenerator creates a DefaultGenerator from a seed. carve may be
// nil, which leaves the terrain solid.
func NewDefaultGenerator(seed int64, carve CarveHook) *DefaultGenerator {
	return &DefaultGenerator{
		terrain:  noise.NewSimplex(seed),
		detail:   noise.NewSimplex(seed + 1),
		biomeGen: NewBiomeGenerator(seed),
		oreGen:   NewOreGenerator(seed),
		carve:    carve,
	}
}

// Biomes returns the biome source used for terrain.
func (g *DefaultGenerator) Biomes() *BiomeGenerator {
	return g.biomeGen
}

func (g *DefaultGenerator) Generate(chunkX, chunkZ int) (*ChunkData, error) {
	c := &ChunkData{}

	// Pass 1: heightmap, terrain and biomes.
	var heights [16][16]int
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			bx := chunkX*16 + x
			bz := chunkZ*16 + z

			biome := g.biomeGen.BiomeAt(bx, bz)
			c.SetBiome(x, z, biome)

			height := g.terrainHeight(bx, bz, biome)
			heights[x][z] = height

			g.fillColumn(c, x, z, height, biome)
		}
	}

	// Pass 2: ores, so carving can expose and decorate around them.
	g.oreGen.Place(c, chunkX, chunkZ, &heights)

	// Pass 3: caves.
	if g.carve != nil {
		if err := g.carve(chunkX, chunkZ, c); err != nil {
			return nil, fmt.Errorf("carve chunk (%d,%d): %w", chunkX, chunkZ, err)
		}
	}
	return c, nil
}

func (g *DefaultGenerator) HeightAt(blockX, blockZ int) int {
	biome := g.biomeGen.BiomeAt(blockX, blockZ)
	return g.terrainHeight(blockX, blockZ, biome)
}

// terrainHeight computes the terrain height at a world block coordinate.
// Different biomes scale noise amplitude differently.
func (g *DefaultGenerator) terrainHeight(bx, bz int, biome byte) int {
	base := g.terrain.Octave2(float64(bx)/128.0, float64(bz)/128.0, 6, 0.5)
	detail := g.detail.Octave2(float64(bx)/32.0, float64(bz)/32.0, 3, 0.5)

	amplitude, baseHeight := biomeTerrainParams(biome)
	h := int(baseHeight + base*amplitude + detail*4.0)
	return max(1, min(h, 250))
}

// biomeTerrainParams returns (amplitude, baseHeight) for terrain noise scaling.
func biomeTerrainParams(biome byte) (amplitude, baseHeight float64) {
	switch biome {
	case biomeOcean:
		return 8.0, 40.0
	case biomePlains, biomeSavanna:
		return 12.0, seaLevel
	case biomeForest, biomeDarkForest, biomeDesert:
		return 16.0, seaLevel + 2
	case biomeTaiga, biomeSnowyTaiga, biomeJungle:
		return 18.0, seaLevel + 4
	case biomeMountains:
		return 40.0, seaLevel + 10
	case biomeBeach:
		return 3.0, seaLevel
	case biomeTundra:
		return 10.0, seaLevel
	default:
		return 14.0, seaLevel
	}
}

// fillColumn fills a single block column with terrain blocks.
func (g *DefaultGenerator) fillColumn(c *ChunkData, x, z, height int, biome byte) {
	// Bedrock at y=0, mixed bedrock and stone up to y=3.
	c.SetBlock(x, 0, z, blockBedrock<<4)
	for y := 1; y <= 3; y++ {
		state := uint16(blockStone << 4)
		if g.terrain.Eval2(float64(x+y*7)*0.5, float64(z)*0.5) > 0 {
			state = blockBedrock << 4
		}
		c.SetBlock(x, y, z, state)
	}

	stoneTop := max(height-surfaceLayerDepth(biome), 4)
	for y := 4; y <= stoneTop && y <= height; y++ {
		c.SetBlock(x, y, z, blockStone<<4)
	}
	applySurface(c, x, z, height, biome)

	for y := height + 1; y <= seaLevel; y++ {
		c.SetBlock(x, y, z, blockWater<<4)
	}
}
