package carve

import (
	"fmt"
	"math"
)

// Random is a 48-bit linear congruential generator with the same stream as
// java.util.Random, so that presets tuned against the vanilla carvers keep
// their draw order.
type Random struct {
	state int64
}

const (
	lcgMultiplier = 0x5DEECE66D
	lcgAddend     = 0xB
	lcgMask       = (1 << 48) - 1
)

// NewRandom returns a generator seeded with seed.
func NewRandom(seed int64) *Random {
	r := &Random{}
	r.SetSeed(seed)
	return r
}

// SetSeed resets the generator.
func (r *Random) SetSeed(seed int64) {
	r.state = (seed ^ lcgMultiplier) & lcgMask
}

func (r *Random) next(bits uint) int32 {
	r.state = (r.state*lcgMultiplier + lcgAddend) & lcgMask
	return int32(r.state >> (48 - bits))
}

// NextInt returns a uniform value in [0, n). n <= 0 yields 0 without
// consuming a draw. n must fit in an int32.
func (r *Random) NextInt(n int) int {
	if n <= 0 {
		return 0
	}
	if n > math.MaxInt32 {
		panic(fmt.Sprintf("carve: NextInt bound %d overflows int32", n))
	}
	bound := int32(n)
	if bound&-bound == bound {
		return int((int64(bound) * int64(r.next(31))) >> 31)
	}
	for {
		bits := r.next(31)
		val := bits % bound
		if bits-val+(bound-1) >= 0 {
			return int(val)
		}
	}
}

// NextLong returns a uniform 64-bit value.
func (r *Random) NextLong() int64 {
	hi := int64(r.next(32))
	lo := int64(r.next(32))
	return hi<<32 + lo
}

// NextFloat returns a uniform value in [0, 1) with 24 bits of precision.
func (r *Random) NextFloat() float64 {
	return float64(r.next(24)) / (1 << 24)
}

// NextDouble returns a uniform value in [0, 1) with 53 bits of precision.
func (r *Random) NextDouble() float64 {
	return float64(int64(r.next(26))<<27+int64(r.next(27))) / (1 << 53)
}

// posRandom returns a generator keyed on an absolute block position, used for
// rolls whose outcome must not depend on carve order.
func posRandom(seed int64, x, y, z int, salt int64) *Random {
	s := seed ^ (int64(x)*341873128712 + int64(z)*132897987541 + int64(y)*42317861 + salt)
	return NewRandom(s)
}
