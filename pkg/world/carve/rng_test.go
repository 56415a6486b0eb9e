package carve

import "testing"

func TestRandomMatchesJavaStream(t *testing.T) {
	if got := NewRandom(0).next(32); got != -1155484576 {
		t.Errorf("Random(0).next(32) = %d, want -1155484576", got)
	}
	if got := NewRandom(42).next(32); got != -1170105035 {
		t.Errorf("Random(42).next(32) = %d, want -1170105035", got)
	}
	if got := NewRandom(0).NextLong(); got != -4962768465676381896 {
		t.Errorf("Random(0).NextLong() = %d, want -4962768465676381896", got)
	}

	r := NewRandom(12345)
	for i, want := range []int64{6674089274190705457, -1236052134575208584} {
		if got := r.NextLong(); got != want {
			t.Errorf("Random(12345).NextLong() #%d = %d, want %d", i, got, want)
		}
	}

	r = NewRandom(42)
	for i, want := range []int{0, 3, 8, 4, 0} {
		if got := r.NextInt(10); got != want {
			t.Errorf("Random(42).NextInt(10) #%d = %d, want %d", i, got, want)
		}
	}

	if got := NewRandom(42).NextFloat(); got != 0.7275636792182922 {
		t.Errorf("Random(42).NextFloat() = %v, want 0.7275636792182922", got)
	}
}

func TestRandomNextIntBounds(t *testing.T) {
	r := NewRandom(7)
	for _, n := range []int{1, 2, 3, 7, 16, 100, 1 << 20} {
		for i := 0; i < 1000; i++ {
			if v := r.NextInt(n); v < 0 || v >= n {
				t.Fatalf("NextInt(%d) = %d, out of range", n, v)
			}
		}
	}
}

func TestRandomNextIntZeroDoesNotDraw(t *testing.T) {
	a, b := NewRandom(3), NewRandom(3)
	if got := a.NextInt(0); got != 0 {
		t.Errorf("NextInt(0) = %d, want 0", got)
	}
	if a.NextLong() != b.NextLong() {
		t.Error("NextInt(0) consumed a draw")
	}
}

func TestRandomNextIntOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NextInt(1<<31) did not panic")
		}
	}()
	NewRandom(1).NextInt(1 << 31)
}

func TestRandomSetSeedResets(t *testing.T) {
	r := NewRandom(99)
	first := r.NextLong()
	r.NextLong()
	r.SetSeed(99)
	if got := r.NextLong(); got != first {
		t.Errorf("after SetSeed got %d, want %d", got, first)
	}
}

func TestRandomNextDoubleRange(t *testing.T) {
	r := NewRandom(1)
	for i := 0; i < 10000; i++ {
		if v := r.NextDouble(); v < 0 || v >= 1 {
			t.Fatalf("NextDouble() = %v, out of [0,1)", v)
		}
	}
}

func TestPosRandomIndependentOfOrder(t *testing.T) {
	a := posRandom(42, 10, 64, -3, 1).NextFloat()
	posRandom(42, 11, 64, -3, 1).NextFloat()
	b := posRandom(42, 10, 64, -3, 1).NextFloat()
	if a != b {
		t.Errorf("posRandom not stable: %v != %v", a, b)
	}
	if a == posRandom(42, 10, 64, -3, 2).NextFloat() {
		t.Error("salt has no effect")
	}
}
