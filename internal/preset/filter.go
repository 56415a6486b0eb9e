package preset

import "slices"

// BiomeSource reports the biome at a world block column.
type BiomeSource interface {
	BiomeAt(x, z int) byte
}

// Filter decides where a preset applies. It implements carve.WorldPredicate.
type Filter struct {
	dims   []int
	allow  [256]bool
	deny   [256]bool
	open   bool // no allow list: every biome not denied passes
	biomes BiomeSource
}

// NewFilter builds a Filter. A nil biome source lets every column pass.
func NewFilter(dims []int, allow, deny []byte, biomes BiomeSource) *Filter {
	f := &Filter{dims: dims, open: len(allow) == 0, biomes: biomes}
	for _, b := range allow {
		f.allow[b] = true
	}
	for _, b := range deny {
		f.deny[b] = true
	}
	return f
}

// TestDimension reports whether the preset runs in dimension id.
func (f *Filter) TestDimension(id int) bool {
	return slices.Contains(f.dims, id)
}

// TestBiomeAt reports whether the biome at world column (x, z) is carved.
func (f *Filter) TestBiomeAt(x, z int) bool {
	if f.biomes == nil {
		return true
	}
	b := f.biomes.BiomeAt(x, z)
	if f.deny[b] {
		return false
	}
	return f.open || f.allow[b]
}
