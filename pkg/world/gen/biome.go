package gen

import (
	"fmt"
	"strconv"

	"github.com/OCharnyshevich/cavegen/pkg/world/noise"
)

// Biome IDs matching Minecraft 1.8 protocol.
const (
	biomeOcean      byte = 0
	biomePlains     byte = 1
	biomeDesert     byte = 2
	biomeMountains  byte = 3 // extreme hills
	biomeForest     byte = 4
	biomeTaiga      byte = 5
	biomeTundra     byte = 12
	biomeBeach      byte = 16
	biomeJungle     byte = 21
	biomeDarkForest byte = 29
	biomeSnowyTaiga byte = 30
	biomeSavanna    byte = 35
)

var biomeIDs = map[string]byte{
	"ocean":         biomeOcean,
	"plains":        biomePlains,
	"desert":        biomeDesert,
	"extreme_hills": biomeMountains,
	"forest":        biomeForest,
	"taiga":         biomeTaiga,
	"ice_plains":    biomeTundra,
	"beach":         biomeBeach,
	"jungle":        biomeJungle,
	"roofed_forest": biomeDarkForest,
	"cold_taiga":    biomeSnowyTaiga,
	"savanna":       biomeSavanna,
}

// ParseBiome resolves a biome name or numeric ID.
func ParseBiome(s string) (byte, error) {
	if id, ok := biomeIDs[s]; ok {
		return id, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown biome %q", s)
	}
	return byte(n), nil
}

// BiomeGenerator selects biomes using temperature/rainfall noise fields.
// It is safe for concurrent use.
type BiomeGenerator struct {
	tempNoise *noise.Simplex
	rainNoise *noise.Simplex
	terrain   *noise.Simplex
}

// NewBiomeGenerator creates a BiomeGenerator from a seed.
func NewBiomeGenerator(seed int64) *BiomeGenerator {
	return &BiomeGenerator{
		tempNoise: noise.NewSimplex(seed + 100),
		rainNoise: noise.NewSimplex(seed + 200),
		terrain:   noise.NewSimplex(seed),
	}
}

// BiomeAt returns the biome ID at the given world block coordinates.
func (bg *BiomeGenerator) BiomeAt(bx, bz int) byte {
	tx := float64(bx) / 512.0
	tz := float64(bz) / 512.0
	temp := bg.tempNoise.Octave2(tx, tz, 4, 0.5)*0.8 + 0.75
	rain := bg.rainNoise.Octave2(tx+100, tz+100, 4, 0.5)*0.5 + 0.5

	// Low terrain becomes ocean, terrain just under sea level becomes beach.
	base := 62.0 + bg.terrain.Octave2(float64(bx)/128.0, float64(bz)/128.0, 6, 0.5)*8.0
	switch {
	case base < seaLevel-8:
		return biomeOcean
	case base < seaLevel-2:
		return biomeBeach
	}
	return selectBiome(temp, rain)
}

// selectBiome maps temperature and rainfall to a biome ID.
//
//	Temp\Rain     | Dry (<0.3)    | Medium (0.3-0.6) | Wet (>0.6)
//	Cold <0.3     | Tundra (12)   | Snowy Taiga (30)  | Taiga (5)
//	Mild 0.3-0.7  | Plains (1)    | Forest (4)        | Dark Forest (29)
//	Warm 0.7-1.2  | Savanna (35)  | Plains (1)        | Jungle (21)
//	Hot >1.2      | Desert (2)    | Desert (2)        | Jungle (21)
func selectBiome(temp, rain float64) byte {
	table := [4][3]byte{
		{biomeTundra, biomeSnowyTaiga, biomeTaiga},
		{biomePlains, biomeForest, biomeDarkForest},
		{biomeSavanna, biomePlains, biomeJungle},
		{biomeDesert, biomeDesert, biomeJungle},
	}
	row := 3
	switch {
	case temp < 0.3:
		row = 0
	case temp < 0.7:
		row = 1
	case temp < 1.2:
		row = 2
	}
	col := 2
	switch {
	case rain < 0.3:
		col = 0
	case rain < 0.6:
		col = 1
	}
	return table[row][col]
}
