package gen

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	blockAir       = 0
	blockStone     = 1
	blockGrass     = 2
	blockDirt      = 3
	blockBedrock   = 7
	blockWater     = 9 // stationary water
	blockSand      = 12
	blockGravel    = 13
	blockSandstone = 24

	blockCoalOre     = 16
	blockIronOre     = 15
	blockGoldOre     = 14
	blockDiamondOre  = 56
	blockRedstoneOre = 73
	blockLapisOre    = 21

	seaLevel = 62
)

// SeaLevel is the water surface height of generated terrain.
const SeaLevel = seaLevel

// blockIDs maps 1.8 block names to IDs.
var blockIDs = map[string]uint16{
	"air":                   blockAir,
	"stone":                 blockStone,
	"grass":                 blockGrass,
	"dirt":                  blockDirt,
	"cobblestone":           4,
	"bedrock":               blockBedrock,
	"flowing_water":         8,
	"water":                 blockWater,
	"flowing_lava":          10,
	"lava":                  11,
	"sand":                  blockSand,
	"gravel":                blockGravel,
	"gold_ore":              blockGoldOre,
	"iron_ore":              blockIronOre,
	"coal_ore":              blockCoalOre,
	"log":                   17,
	"leaves":                18,
	"glass":                 20,
	"lapis_ore":             blockLapisOre,
	"sandstone":             blockSandstone,
	"web":                   30,
	"wool":                  35,
	"mossy_cobblestone":     48,
	"obsidian":              49,
	"diamond_ore":           blockDiamondOre,
	"redstone_ore":          blockRedstoneOre,
	"ice":                   79,
	"snow":                  80,
	"clay":                  82,
	"netherrack":            87,
	"glowstone":             89,
	"stonebrick":            98,
	"vine":                  106,
	"mycelium":              110,
	"emerald_ore":           129,
	"stained_hardened_clay": 159,
	"hardened_clay":         172,
	"packed_ice":            174,
}

// State packs a block ID and metadata into a block state.
func State(id uint16, meta uint8) uint16 {
	return id<<4 | uint16(meta&0xF)
}

// ParseState resolves "name", "name:meta", "id" or "id:meta" into a block
// state.
func ParseState(s string) (uint16, error) {
	name, metaStr, hasMeta := strings.Cut(strings.TrimSpace(s), ":")
	name = strings.ToLower(name)

	id, ok := blockIDs[name]
	if !ok {
		n, err := strconv.ParseUint(name, 10, 12)
		if err != nil {
			return 0, fmt.Errorf("unknown block %q", s)
		}
		id = uint16(n)
	}

	var meta uint64
	if hasMeta {
		var err error
		meta, err = strconv.ParseUint(metaStr, 10, 4)
		if err != nil {
			return 0, fmt.Errorf("bad metadata in %q: %w", s, err)
		}
	}
	return State(id, uint8(meta)), nil
}

var blockNames = func() map[uint16]string {
	m := make(map[uint16]string, len(blockIDs))
	for n, id := range blockIDs {
		m[id] = n
	}
	return m
}()

// StateName is the inverse of ParseState, preferring names over IDs.
func StateName(state uint16) string {
	id, meta := state>>4, state&0xF
	name, ok := blockNames[id]
	if !ok {
		name = strconv.Itoa(int(id))
	}
	if meta != 0 {
		return name + ":" + strconv.Itoa(int(meta))
	}
	return name
}
