package anvil

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
	"github.com/OCharnyshevich/cavegen/pkg/world/nbt"
)

// EncodeChunk encodes a chunk as 1.8 Anvil NBT. Sections that are entirely
// air are omitted.
func EncodeChunk(cx, cz int, chunk *gen.ChunkData) ([]byte, error) {
	w := nbt.NewWriter(64 * 1024)

	w.BeginCompound("")
	w.BeginCompound("Level")

	w.WriteInt("xPos", int32(cx))
	w.WriteInt("zPos", int32(cz))
	w.WriteTagByte("TerrainPopulated", 1)
	w.WriteTagByte("LightPopulated", 0)
	w.WriteLong("LastUpdate", 0)

	var present []int
	for y, sec := range chunk.Sections {
		if sec != nil && !allAir(sec) {
			present = append(present, y)
		}
	}

	w.BeginList("Sections", nbt.TagCompound, int32(len(present)))
	for _, secY := range present {
		sec := chunk.Sections[secY]
		blocks := make([]byte, 4096)
		data := make([]byte, 2048)
		var add []byte

		for i, state := range sec.Blocks {
			id := state >> 4
			blocks[i] = byte(id)
			setNibble(data, i, byte(state&0xF))
			if id > 255 {
				if add == nil {
					add = make([]byte, 2048)
				}
				setNibble(add, i, byte(id>>8))
			}
		}

		w.BeginCompound("")
		w.WriteTagByte("Y", byte(secY))
		w.WriteByteArray("Blocks", blocks)
		if add != nil {
			w.WriteByteArray("Add", add)
		}
		w.WriteByteArray("Data", data)
		w.WriteByteArray("BlockLight", fullLight)
		w.WriteByteArray("SkyLight", fullLight)
		w.EndCompound()
	}

	w.WriteByteArray("Biomes", chunk.Biomes[:])
	w.WriteIntArray("HeightMap", computeHeightMap(chunk))

	w.EndCompound() // Level
	w.EndCompound() // root
	return w.Bytes(), nil
}

// fullLight is a full-brightness nibble array; lighting is left to the client.
var fullLight = func() []byte {
	b := make([]byte, 2048)
	for i := range b {
		b[i] = 0xFF
	}
	return b
}()

var errBadChunk = errors.New("anvil: malformed chunk")

// DecodeChunk is the inverse of EncodeChunk. It reads block states and
// biomes; lighting and height maps are ignored.
func DecodeChunk(data []byte) (gen.ChunkPos, *gen.ChunkData, error) {
	_, root, err := nbt.Read(data)
	if err != nil {
		return gen.ChunkPos{}, nil, err
	}
	lvl, ok := root["Level"].(nbt.Compound)
	if !ok {
		return gen.ChunkPos{}, nil, fmt.Errorf("%w: no Level compound", errBadChunk)
	}
	x, okX := lvl["xPos"].(int32)
	z, okZ := lvl["zPos"].(int32)
	if !okX || !okZ {
		return gen.ChunkPos{}, nil, fmt.Errorf("%w: missing position", errBadChunk)
	}
	pos := gen.ChunkPos{X: int(x), Z: int(z)}

	chunk := &gen.ChunkData{}
	if b, ok := lvl["Biomes"].([]byte); ok && len(b) == len(chunk.Biomes) {
		copy(chunk.Biomes[:], b)
	}

	sections, _ := lvl["Sections"].([]any)
	for _, s := range sections {
		sec, ok := s.(nbt.Compound)
		if !ok {
			return pos, nil, fmt.Errorf("%w: section is not a compound", errBadChunk)
		}
		y, _ := sec["Y"].(byte)
		blocks, _ := sec["Blocks"].([]byte)
		meta, _ := sec["Data"].([]byte)
		add, _ := sec["Add"].([]byte)
		if y > 15 || len(blocks) != 4096 || len(meta) != 2048 || (add != nil && len(add) != 2048) {
			return pos, nil, fmt.Errorf("%w: section %d has bad arrays", errBadChunk, y)
		}
		out := &gen.Section{}
		for i := range out.Blocks {
			id := uint16(blocks[i])
			if add != nil {
				id |= uint16(nibble(add, i)) << 8
			}
			out.Blocks[i] = id<<4 | uint16(nibble(meta, i))
		}
		chunk.Sections[y] = out
	}
	return pos, chunk, nil
}

func allAir(sec *gen.Section) bool {
	for _, st := range sec.Blocks {
		if st != 0 {
			return false
		}
	}
	return true
}

// setNibble sets a 4-bit value at the given block index in a nibble array.
func setNibble(arr []byte, index int, val byte) {
	byteIdx := index / 2
	if index%2 == 0 {
		arr[byteIdx] = (arr[byteIdx] & 0xF0) | (val & 0x0F)
	} else {
		arr[byteIdx] = (arr[byteIdx] & 0x0F) | ((val & 0x0F) << 4)
	}
}

func nibble(arr []byte, index int) byte {
	b := arr[index/2]
	if index%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

// computeHeightMap calculates the height above the highest non-air block for
// each x,z column.
func computeHeightMap(chunk *gen.ChunkData) []int32 {
	hm := make([]int32, 256)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			for y := 255; y >= 0; y-- {
				if chunk.GetBlock(x, y, z) != 0 {
					hm[z*16+x] = int32(y + 1)
					break
				}
			}
		}
	}
	return hm
}
