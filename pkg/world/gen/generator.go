package gen

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// ChunkPos identifies a chunk by its X and Z coordinates.
type ChunkPos struct{ X, Z int }

// Section holds block data for a 16×16×16 vertical slice of a chunk.
// Index = y*256 + z*16 + x, value = blockID<<4 | metadata.
type Section struct {
	Blocks [4096]uint16
}

// ChunkData holds the generated terrain for one chunk column.
type ChunkData struct {
	Sections [16]*Section // nil = all-air
	Biomes   [256]byte    // index = z*16 + x → biome ID
}

// Generator produces chunk data deterministically from a seed.
type Generator interface {
	Generate(chunkX, chunkZ int) (*ChunkData, error)
	HeightAt(blockX, blockZ int) int
}

// CarveHook runs after base terrain is laid down and before the chunk is
// returned. An error fails generation of that chunk.
type CarveHook func(chunkX, chunkZ int, c *ChunkData) error

// SetBlock sets a block state at the given local coordinates within the chunk.
// x, z must be in [0,16), y must be in [0,256).
func (c *ChunkData) SetBlock(x, y, z int, state uint16) {
	sec := y >> 4
	if c.Sections[sec] == nil {
		if state == 0 {
			return
		}
		c.Sections[sec] = &Section{}
	}
	c.Sections[sec].Blocks[(y&0xF)*256+z*16+x] = state
}

// GetBlock returns the block state at the given local coordinates.
func (c *ChunkData) GetBlock(x, y, z int) uint16 {
	sec := y >> 4
	if c.Sections[sec] == nil {
		return 0
	}
	return c.Sections[sec].Blocks[(y&0xF)*256+z*16+x]
}

// SetBiome sets the biome ID at the given local x, z coordinates.
func (c *ChunkData) SetBiome(x, z int, biome byte) {
	c.Biomes[z*16+x] = biome
}

// BiomeAt returns the biome ID at the given local x, z coordinates.
func (c *ChunkData) BiomeAt(x, z int) byte {
	return c.Biomes[z*16+x]
}

// chunkBinarySize is the length of MarshalBinary's output.
const chunkBinarySize = 16*4096*2 + 256

// MarshalBinary encodes every block state little-endian, section by section,
// followed by the biomes. Nil sections encode as all air.
func (c *ChunkData) MarshalBinary() ([]byte, error) {
	buf := make([]byte, chunkBinarySize)
	for s, sec := range c.Sections {
		if sec == nil {
			continue
		}
		off := s * 4096 * 2
		for i, st := range sec.Blocks {
			binary.LittleEndian.PutUint16(buf[off+i*2:], st)
		}
	}
	copy(buf[16*4096*2:], c.Biomes[:])
	return buf, nil
}

// UnmarshalBinary decodes the output of MarshalBinary. All-air sections
// decode as nil.
func (c *ChunkData) UnmarshalBinary(data []byte) error {
	if len(data) != chunkBinarySize {
		return fmt.Errorf("chunk data is %d bytes, want %d", len(data), chunkBinarySize)
	}
	for s := range c.Sections {
		off := s * 4096 * 2
		var sec Section
		empty := true
		for i := range sec.Blocks {
			sec.Blocks[i] = binary.LittleEndian.Uint16(data[off+i*2:])
			if sec.Blocks[i] != 0 {
				empty = false
			}
		}
		c.Sections[s] = nil
		if !empty {
			c.Sections[s] = &sec
		}
	}
	copy(c.Biomes[:], data[16*4096*2:])
	return nil
}

// Digest hashes block states and biomes. A nil section hashes the same as an
// all-air one, so two chunks with equal contents always share a digest.
func (c *ChunkData) Digest() [sha256.Size]byte {
	data, _ := c.MarshalBinary()
	return sha256.Sum256(data)
}

// Count returns how many blocks in the chunk hold state.
func (c *ChunkData) Count(state uint16) int {
	n := 0
	for _, sec := range c.Sections {
		if sec == nil {
			if state == 0 {
				n += 4096
			}
			continue
		}
		for _, st := range sec.Blocks {
			if st == state {
				n++
			}
		}
	}
	return n
}
