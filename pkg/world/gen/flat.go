package gen

// FlatBiome is the biome of every flat column.
const FlatBiome = biomePlains

// FlatGenerator generates a superflat world: bedrock at y=0, stone up to
// three blocks below the top, dirt, then grass at the top. The default
// height of 4 is the classic superflat layout.
type FlatGenerator struct {
	height int
	carve  CarveHook
}

// NewFlatGenerator creates a FlatGenerator whose grass layer sits at
// height. carve may be nil.
func NewFlatGenerator(height int, carve CarveHook) *FlatGenerator {
	if height < 4 {
		height = 4
	}
	if height > 250 {
		height = 250
	}
	return &FlatGenerator{height: height, carve: carve}
}

func (g *FlatGenerator) Generate(chunkX, chunkZ int) (*ChunkData, error) {
	c := &ChunkData{}
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			c.SetBlock(x, 0, z, blockBedrock<<4)
			for y := 1; y < g.height-1; y++ {
				c.SetBlock(x, y, z, blockStone<<4)
			}
			c.SetBlock(x, g.height-1, z, blockDirt<<4)
			c.SetBlock(x, g.height, z, blockGrass<<4)
			c.SetBiome(x, z, FlatBiome)
		}
	}
	if g.carve != nil {
		if err := g.carve(chunkX, chunkZ, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (g *FlatGenerator) HeightAt(_, _ int) int {
	return g.height
}
