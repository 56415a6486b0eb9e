package carve

import (
	"fmt"
	"math"
)

// Decay drives one scalar of a walk: it is rolled once when the walk starts
// and re-derived after every segment as
//
//	next = pow(prev, Exponent)*Factor + Jitter*(f1-f2)*f3
//
// Roll always consumes one float and Next always consumes three, whatever the
// amplitudes, so tuning one parameter does not shift the rest of the stream.
type Decay struct {
	Exponent    float64
	Factor      float64
	Jitter      float64
	Start       float64
	StartJitter float64
}

// Constant returns a Decay that starts at v and never changes.
func Constant(v float64) Decay {
	return Decay{Exponent: 1, Factor: 1, Start: v}
}

// Roll returns a start value in [Start-StartJitter, Start+StartJitter).
func (d Decay) Roll(r *Random) float64 {
	return d.Start + d.StartJitter*(r.NextFloat()*2-1)
}

// Next advances prev by one segment.
func (d Decay) Next(prev float64, r *Random) float64 {
	f1, f2, f3 := r.NextFloat(), r.NextFloat(), r.NextFloat()

	v := prev
	if d.Exponent != 1 {
		// Sign-preserving so twist values may swing negative.
		v = math.Copysign(math.Pow(math.Abs(prev), d.Exponent), prev)
	}
	return v*d.Factor + d.Jitter*(f1-f2)*f3
}

func (d Decay) validate() error {
	for _, v := range []float64{d.Exponent, d.Factor, d.Jitter, d.Start, d.StartJitter} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("decay parameter is not finite: %+v", d)
		}
	}
	if d.Exponent <= 0 {
		return fmt.Errorf("decay exponent must be positive, got %v", d.Exponent)
	}
	return nil
}
