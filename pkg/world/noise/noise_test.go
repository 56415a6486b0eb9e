package noise

import (
	"math"
	"sync"
	"testing"
)

func TestSimplexDeterministic(t *testing.T) {
	a, b := NewSimplex(12345), NewSimplex(12345)
	for i := 0; i < 100; i++ {
		x, y, z := float64(i)*0.15, float64(i)*0.25, float64(i)*0.35
		if a.Eval2(x, y) != b.Eval2(x, y) {
			t.Fatalf("Eval2 not deterministic at (%f, %f)", x, y)
		}
		if a.Eval3(x, y, z) != b.Eval3(x, y, z) {
			t.Fatalf("Eval3 not deterministic at (%f, %f, %f)", x, y, z)
		}
	}
}

func TestSimplexRange(t *testing.T) {
	s := NewSimplex(42)
	for i := 0; i < 10000; i++ {
		x := float64(i)*0.37 - 500
		y := float64(i)*0.53 - 500
		z := float64(i)*0.71 - 500
		if v := s.Eval2(x, y); v < -1 || v > 1 {
			t.Fatalf("Eval2(%f, %f) = %f, out of [-1,1]", x, y, v)
		}
		if v := s.Eval3(x, y, z); v < -1 || v > 1 {
			t.Fatalf("Eval3(%f, %f, %f) = %f, out of [-1,1]", x, y, z, v)
		}
	}
}

func TestSimplexDifferentSeeds(t *testing.T) {
	a, b := NewSimplex(1), NewSimplex(2)
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.1, float64(i)*0.2
		if a.Eval3(x, y, 0.5) != b.Eval3(x, y, 0.5) {
			return
		}
	}
	t.Error("different seeds should produce different noise")
}

func TestOctave2Smoothness(t *testing.T) {
	s := NewSimplex(456)
	prev := s.Octave2(0, 0, 4, 0.5)
	for i := 1; i < 1000; i++ {
		x := float64(i) * 0.01
		curr := s.Octave2(x, 0, 4, 0.5)
		if diff := math.Abs(curr - prev); diff > 0.1 {
			t.Fatalf("noise changed too rapidly at x=%f: diff=%f", x, diff)
		}
		prev = curr
	}
}

func TestBackendsDeterministic(t *testing.T) {
	for _, typ := range []Type{TypeSimplex, TypePerlin, TypeOpenSimplex} {
		t.Run(string(typ), func(t *testing.T) {
			a, err := NewSource(typ, 7)
			if err != nil {
				t.Fatalf("NewSource: %v", err)
			}
			b, _ := NewSource(typ, 7)
			for i := 0; i < 50; i++ {
				x, y, z := float64(i)*0.3+0.1, float64(i)*0.7+0.2, float64(i)*1.1+0.3
				va := a.Eval3(x, y, z)
				if va != b.Eval3(x, y, z) {
					t.Fatalf("Eval3 not deterministic at (%f, %f, %f)", x, y, z)
				}
				if math.IsNaN(va) || va < -2 || va > 2 {
					t.Fatalf("Eval3(%f, %f, %f) = %f", x, y, z, va)
				}
			}
		})
	}
	if _, err := NewSource("value", 0); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestSettingsValidate(t *testing.T) {
	good := Settings{Type: TypeSimplex, Frequency: 0.05, Octaves: 2, Persistence: 0.5, Min: -1, Max: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"type", func(s *Settings) { s.Type = "worley" }},
		{"frequency", func(s *Settings) { s.Frequency = 0 }},
		{"octaves", func(s *Settings) { s.Octaves = 0 }},
		{"persistence", func(s *Settings) { s.Persistence = 0 }},
		{"threshold", func(s *Settings) { s.Min, s.Max = 0.5, -0.5 }},
	}
	for _, tt := range tests {
		s := good
		tt.mutate(&s)
		if err := s.Validate(); err == nil {
			t.Errorf("%s: invalid settings accepted", tt.name)
		}
	}
}

func TestFieldThreshold(t *testing.T) {
	all, err := New(Settings{Frequency: 0.05, Octaves: 1, Min: -2, Max: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	none, _ := New(Settings{Frequency: 0.05, Octaves: 1, Min: 1.5, Max: 2})
	for x := 0; x < 16; x++ {
		for y := 0; y < 64; y += 7 {
			if !all.Test(1, x, y, 3) {
				t.Fatalf("full band rejected (%d,%d,3)", x, y)
			}
			if none.Test(1, x, y, 3) {
				t.Fatalf("empty band accepted (%d,%d,3)", x, y)
			}
		}
	}
}

func TestFieldSeedOffset(t *testing.T) {
	f, _ := New(Settings{Seed: 10, Frequency: 0.1, Octaves: 3, Persistence: 0.5})
	g, _ := New(Settings{Frequency: 0.1, Octaves: 3, Persistence: 0.5})
	if f.Sample(5, 1.5, 2.5, 3.5) != g.Sample(15, 1.5, 2.5, 3.5) {
		t.Error("seed offset is not added to the world seed")
	}
}

func TestFieldConcurrentSeeds(t *testing.T) {
	f, _ := New(Settings{Type: TypeOpenSimplex, Frequency: 0.08, Octaves: 2, Persistence: 0.5})
	want := make([]float64, 8)
	for s := range want {
		want[s] = f.Sample(int64(s), 3, 4, 5)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := i % len(want)
			if got := f.Sample(int64(s), 3, 4, 5); got != want[s] {
				t.Errorf("seed %d: got %f, want %f", s, got, want[s])
			}
		}(i)
	}
	wg.Wait()
}
