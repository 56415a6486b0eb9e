package anvil

import (
	"encoding/binary"
	"os"
	"testing"
	"time"

	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
	"github.com/OCharnyshevich/cavegen/pkg/world/nbt"
)

func TestSetNibble(t *testing.T) {
	arr := make([]byte, 4)

	// Even index: low nibble.
	setNibble(arr, 0, 0x0A)
	if arr[0] != 0x0A {
		t.Fatalf("expected 0x0A, got 0x%02X", arr[0])
	}

	// Odd index: high nibble.
	setNibble(arr, 1, 0x0B)
	if arr[0] != 0xBA {
		t.Fatalf("expected 0xBA, got 0x%02X", arr[0])
	}
	if nibble(arr, 0) != 0x0A || nibble(arr, 1) != 0x0B {
		t.Fatalf("nibble read back %X %X, want A B", nibble(arr, 0), nibble(arr, 1))
	}
}

func testChunk() *gen.ChunkData {
	c := &gen.ChunkData{}
	c.SetBlock(0, 0, 0, 0x10)      // stone
	c.SetBlock(1, 64, 1, 0x20)     // grass
	c.SetBlock(2, 10, 3, 0x31)     // dirt:1
	c.SetBlock(5, 20, 5, 300<<4|2) // needs the Add array
	c.SetBiome(4, 7, 21)
	c.Sections[9] = &gen.Section{} // all air, omitted on encode
	return c
}

func TestEncodeDecodeChunk(t *testing.T) {
	c := testChunk()
	data, err := EncodeChunk(3, -4, c)
	if err != nil {
		t.Fatalf("EncodeChunk: %v", err)
	}

	_, root, err := nbt.Read(data)
	if err != nil {
		t.Fatalf("nbt.Read: %v", err)
	}
	lvl := root["Level"].(nbt.Compound)
	if secs := lvl["Sections"].([]any); len(secs) != 3 {
		t.Errorf("encoded %d sections, want 3 (y=0, 1, 4)", len(secs))
	}
	hm := lvl["HeightMap"].([]int32)
	if hm[1*16+1] != 65 {
		t.Errorf("HeightMap at (1,1) = %d, want 65", hm[1*16+1])
	}

	pos, got, err := DecodeChunk(data)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	if pos != (gen.ChunkPos{X: 3, Z: -4}) {
		t.Errorf("position = %+v, want (3,-4)", pos)
	}
	if got.Digest() != c.Digest() {
		t.Error("decoded chunk differs from the original")
	}
	if st := got.GetBlock(5, 20, 5); st != 300<<4|2 {
		t.Errorf("block with Add nibble = %d, want %d", st, 300<<4|2)
	}
}

func TestDecodeChunkRejectsGarbage(t *testing.T) {
	w := nbt.NewWriter(32)
	w.BeginCompound("")
	w.WriteInt("xPos", 1)
	w.EndCompound()
	if _, _, err := DecodeChunk(w.Bytes()); err == nil {
		t.Error("DecodeChunk accepted a chunk without Level")
	}
}

func TestSaveAndReadRegion(t *testing.T) {
	dir := t.TempDir()
	chunks := map[gen.ChunkPos][]byte{}
	for _, p := range []gen.ChunkPos{{X: -1, Z: -1}, {X: -32, Z: -5}, {X: -7, Z: -32}} {
		data, err := EncodeChunk(p.X, p.Z, testChunk())
		if err != nil {
			t.Fatal(err)
		}
		chunks[p] = data
	}

	now := time.Unix(1700000000, 0)
	if err := SaveRegion(dir, -1, -1, chunks, now); err != nil {
		t.Fatalf("SaveRegion: %v", err)
	}
	raw, err := os.ReadFile(RegionPath(dir, -1, -1))
	if err != nil {
		t.Fatalf("region file missing: %v", err)
	}
	if len(raw)%sectorSize != 0 {
		t.Errorf("file size %d is not sector aligned", len(raw))
	}
	idx := chunkIndex(-1, -1)
	if ts := binary.BigEndian.Uint32(raw[sectorSize+idx*4:]); ts != uint32(now.Unix()) {
		t.Errorf("timestamp = %d, want %d", ts, now.Unix())
	}

	got, err := ReadRegion(dir, -1, -1)
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("read %d chunks, want %d", len(got), len(chunks))
	}
	for p, want := range chunks {
		if string(got[p]) != string(want) {
			t.Errorf("chunk %+v differs after round trip", p)
		}
	}

	// Equal input gives an equal file.
	dir2 := t.TempDir()
	if err := SaveRegion(dir2, -1, -1, chunks, now); err != nil {
		t.Fatal(err)
	}
	raw2, _ := os.ReadFile(RegionPath(dir2, -1, -1))
	if string(raw) != string(raw2) {
		t.Error("region files differ for the same chunks")
	}
}

func TestSaveRegionRejectsForeignChunk(t *testing.T) {
	chunks := map[gen.ChunkPos][]byte{{X: 40, Z: 0}: {0}}
	if err := SaveRegion(t.TempDir(), 0, 0, chunks, time.Now()); err == nil {
		t.Error("SaveRegion accepted a chunk of region (1,0)")
	}
}

func TestExporter(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir)
	for _, p := range []gen.ChunkPos{{X: 0, Z: 0}, {X: 31, Z: 31}, {X: 32, Z: 0}, {X: -1, Z: 0}} {
		if err := e.Add(p.X, p.Z, testChunk()); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	n, err := e.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n != 3 {
		t.Errorf("Flush wrote %d regions, want 3", n)
	}
	got, err := ReadRegion(dir, 0, 0)
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("region (0,0) holds %d chunks, want 2", len(got))
	}
	if n, _ := e.Flush(); n != 0 {
		t.Errorf("second Flush wrote %d regions, want 0", n)
	}
}
