// Package anvil stores chunks in Anvil (.mca) region files.
package anvil

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

const (
	sectorSize      = 4096
	headerSectors   = 2 // location table + timestamp table
	compressionZlib = 2
	regionChunks    = 32
)

// RegionOf returns the region holding chunk (cx, cz).
func RegionOf(cx, cz int) (int, int) {
	return cx >> 5, cz >> 5
}

// RegionPath returns the file name of region (rx, rz) inside dir.
func RegionPath(dir string, rx, rz int) string {
	return filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", rx, rz))
}

// SaveRegion writes all provided chunks to a .mca region file. chunks maps
// chunk positions to their uncompressed NBT data; every position must lie in
// region (rx, rz). Chunks are laid out in index order, so equal input gives
// an equal file apart from the timestamps.
func SaveRegion(dir string, rx, rz int, chunks map[gen.ChunkPos][]byte, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	type chunkEntry struct {
		index      int
		compressed []byte
	}
	entries := make([]chunkEntry, 0, len(chunks))

	for pos, nbtData := range chunks {
		if x, z := RegionOf(pos.X, pos.Z); x != rx || z != rz {
			return fmt.Errorf("chunk (%d,%d) is not in region (%d,%d)", pos.X, pos.Z, rx, rz)
		}
		var cbuf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&cbuf, zlib.DefaultCompression)
		if err != nil {
			return fmt.Errorf("create zlib writer: %w", err)
		}
		if _, err := zw.Write(nbtData); err != nil {
			return fmt.Errorf("compress chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zlib writer: %w", err)
		}
		entries = append(entries, chunkEntry{index: chunkIndex(pos.X, pos.Z), compressed: cbuf.Bytes()})
	}
	slices.SortFunc(entries, func(a, b chunkEntry) int { return a.index - b.index })

	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	stamp := uint32(now.Unix())

	// Each chunk: 4 bytes length + 1 byte compression type + compressed data,
	// padded to a sector boundary.
	var dataBuf bytes.Buffer
	currentSector := uint32(headerSectors)

	for _, e := range entries {
		payloadLen := uint32(len(e.compressed)) + 1
		totalLen := 4 + payloadLen
		sectorCount := (totalLen + sectorSize - 1) / sectorSize
		if sectorCount > 255 {
			return fmt.Errorf("chunk %d needs %d sectors, region format allows 255", e.index, sectorCount)
		}

		off := e.index * 4
		binary.BigEndian.PutUint32(locations[off:off+4], currentSector<<8|sectorCount)
		binary.BigEndian.PutUint32(timestamps[off:off+4], stamp)

		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payloadLen)
		header[4] = compressionZlib
		dataBuf.Write(header[:])
		dataBuf.Write(e.compressed)

		if pad := int(sectorCount)*sectorSize - int(totalLen); pad > 0 {
			dataBuf.Write(make([]byte, pad))
		}
		currentSector += sectorCount
	}

	path := RegionPath(dir, rx, rz)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp region file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	for _, part := range [][]byte{locations, timestamps, dataBuf.Bytes()} {
		if _, err := f.Write(part); err != nil {
			return fmt.Errorf("write region file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close region file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename region file: %w", err)
	}
	return nil
}

// ReadRegion loads every chunk of region (rx, rz) from dir and returns the
// uncompressed NBT data keyed by chunk position.
func ReadRegion(dir string, rx, rz int) (map[gen.ChunkPos][]byte, error) {
	data, err := os.ReadFile(RegionPath(dir, rx, rz))
	if err != nil {
		return nil, err
	}
	if len(data) < headerSectors*sectorSize {
		return nil, fmt.Errorf("region (%d,%d): file shorter than its header", rx, rz)
	}

	out := make(map[gen.ChunkPos][]byte)
	for i := 0; i < regionChunks*regionChunks; i++ {
		loc := binary.BigEndian.Uint32(data[i*4:])
		if loc == 0 {
			continue
		}
		start := int(loc>>8) * sectorSize
		if start+5 > len(data) {
			return nil, fmt.Errorf("region (%d,%d): chunk %d points past the end", rx, rz, i)
		}
		length := int(binary.BigEndian.Uint32(data[start:]))
		if length < 1 || start+4+length > len(data) {
			return nil, fmt.Errorf("region (%d,%d): chunk %d has bad length %d", rx, rz, i, length)
		}
		if data[start+4] != compressionZlib {
			return nil, fmt.Errorf("region (%d,%d): chunk %d uses compression %d", rx, rz, i, data[start+4])
		}
		zr, err := zlib.NewReader(bytes.NewReader(data[start+5 : start+4+length]))
		if err != nil {
			return nil, fmt.Errorf("region (%d,%d): chunk %d: %w", rx, rz, i, err)
		}
		raw, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("region (%d,%d): chunk %d: %w", rx, rz, i, err)
		}
		pos := gen.ChunkPos{X: rx*regionChunks + i%regionChunks, Z: rz*regionChunks + i/regionChunks}
		out[pos] = raw
	}
	return out, nil
}

func chunkIndex(cx, cz int) int {
	return (cx & 31) + (cz&31)*32
}
