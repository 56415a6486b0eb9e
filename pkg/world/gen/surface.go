package gen

// surface describes the blocks laid over the stone column of a biome.
type surface struct {
	top    uint16 // topmost block above sea level
	under  uint16 // topmost block at or below sea level
	filler uint16
	depth  int // filler blocks below the top
	base   uint16
	bases  int // base blocks below the filler
}

func surfaceFor(biome byte, height int) surface {
	switch biome {
	case biomeDesert:
		return surface{blockSand, blockSand, blockSand, 3, blockSandstone, 2}
	case biomeBeach:
		return surface{blockSand, blockSand, blockSand, 3, blockSandstone, 1}
	case biomeOcean:
		return surface{blockGravel, blockGravel, blockGravel, 2, blockDirt, 2}
	case biomeMountains:
		if height > 100 {
			return surface{blockStone, blockStone, blockStone, 3, blockStone, 0}
		}
	}
	return surface{blockGrass, blockDirt, blockDirt, 3, blockDirt, 0}
}

// applySurface places the biome-specific surface blocks on top of the stone
// column. Layers never reach below y=4.
func applySurface(c *ChunkData, x, z, height int, biome byte) {
	if height <= 3 {
		return
	}
	s := surfaceFor(biome, height)
	top := s.top
	if height <= seaLevel {
		top = s.under
	}
	c.SetBlock(x, height, z, top<<4)

	y := height - 1
	for i := 0; i < s.depth && y > 3; i, y = i+1, y-1 {
		c.SetBlock(x, y, z, s.filler<<4)
	}
	for i := 0; i < s.bases && y > 3; i, y = i+1, y-1 {
		c.SetBlock(x, y, z, s.base<<4)
	}
}

// surfaceLayerDepth returns how many blocks of surface material go below the top block.
func surfaceLayerDepth(biome byte) int {
	s := surfaceFor(biome, 0)
	return s.depth + s.bases + 1
}
