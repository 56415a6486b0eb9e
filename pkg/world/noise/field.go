// Package noise provides seeded 3D noise fields used as carving predicates.
package noise

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Type names a noise backend.
type Type string

const (
	TypeSimplex     Type = "simplex"
	TypePerlin      Type = "perlin"
	TypeOpenSimplex Type = "opensimplex"
)

// Source is a single-octave 3D noise backend.
type Source interface {
	Eval3(x, y, z float64) float64
}

type perlinSource struct{ p *perlin.Perlin }

func (s perlinSource) Eval3(x, y, z float64) float64 { return s.p.Noise3D(x, y, z) }

// NewSource returns the backend t seeded with seed.
func NewSource(t Type, seed int64) (Source, error) {
	switch t {
	case TypeSimplex, "":
		return NewSimplex(seed), nil
	case TypePerlin:
		return perlinSource{perlin.NewPerlin(2, 2, 1, seed)}, nil
	case TypeOpenSimplex:
		return opensimplex.New(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise type %q", t)
	}
}

// Settings describe a fractal noise field and the band of values that
// passes Test.
type Settings struct {
	Type Type
	// Seed is added to the world seed.
	Seed        int64
	Frequency   float64
	StretchY    float64 // vertical frequency multiplier, 0 means 1
	Octaves     int
	Persistence float64
	Min, Max    float64
}

// Validate reports malformed settings.
func (s Settings) Validate() error {
	if _, err := NewSource(s.Type, 0); err != nil {
		return err
	}
	if s.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %v", s.Frequency)
	}
	if s.Octaves < 1 || s.Octaves > 16 {
		return fmt.Errorf("octaves %d outside [1,16]", s.Octaves)
	}
	if s.Octaves > 1 && s.Persistence <= 0 {
		return errors.New("persistence must be positive with more than one octave")
	}
	if s.Min > s.Max {
		return fmt.Errorf("inverted threshold %v..%v", s.Min, s.Max)
	}
	return nil
}

// Field is a thresholded fractal noise field. Backends are built lazily for
// each world seed and cached, so one Field can serve many worlds
// concurrently.
type Field struct {
	s       Settings
	sources sync.Map // int64 -> Source
}

// New validates s and returns a Field.
func New(s Settings) (*Field, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.StretchY == 0 {
		s.StretchY = 1
	}
	return &Field{s: s}, nil
}

// Settings returns the settings the field was built from.
func (f *Field) Settings() Settings {
	return f.s
}

func (f *Field) source(seed int64) Source {
	seed += f.s.Seed
	if src, ok := f.sources.Load(seed); ok {
		return src.(Source)
	}
	src, _ := NewSource(f.s.Type, seed)
	actual, _ := f.sources.LoadOrStore(seed, src)
	return actual.(Source)
}

// Sample returns the fractal value at (x, y, z) for the world seed.
func (f *Field) Sample(seed int64, x, y, z float64) float64 {
	src := f.source(seed)
	x, y, z = x*f.s.Frequency, y*f.s.Frequency*f.s.StretchY, z*f.s.Frequency

	var total, norm float64
	freq, amp := 1.0, 1.0
	for range f.s.Octaves {
		total += src.Eval3(x*freq, y*freq, z*freq) * amp
		norm += amp
		amp *= f.s.Persistence
		freq *= 2
	}
	return total / norm
}

// Test reports whether the block at (x, y, z) falls inside the threshold band.
func (f *Field) Test(seed int64, x, y, z int) bool {
	v := f.Sample(seed, float64(x), float64(y), float64(z))
	return v >= f.s.Min && v <= f.s.Max
}
