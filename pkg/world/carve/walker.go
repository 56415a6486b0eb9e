package carve

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Segment is the mutable state of a walk at one step.
type Segment struct {
	Pos        mgl64.Vec3
	Yaw        float64
	Pitch      float64
	TwistYaw   float64
	TwistPitch float64
	Scale      float64
	Stretch    float64
}

// Per-step orientation potentials.
const (
	tunnelPotential = 0.1
	ravinePotential = 0.05
)

// Pitch damping rolled once per walk when NoiseYReduction is on.
const (
	gentleReduction = 0.92
	steepReduction  = 0.70
)

// Step advances s by one unit along its heading, damps the pitch by
// reduction, turns by the twist values scaled by potential, and re-derives
// twist, scale and stretch from p.
func Step(s Segment, p *WalkSettings, potential, reduction float64, r *Random) Segment {
	cp := math.Cos(s.Pitch)
	s.Pos = s.Pos.Add(mgl64.Vec3{math.Cos(s.Yaw) * cp, math.Sin(s.Pitch), math.Sin(s.Yaw) * cp})

	s.Pitch *= reduction
	s.Pitch += s.TwistPitch * potential
	s.Yaw += s.TwistYaw * potential

	s.TwistPitch = p.TwistPitch.Next(s.TwistPitch, r)
	s.TwistYaw = p.TwistYaw.Next(s.TwistYaw, r)
	s.Scale = math.Max(0, p.Scale.Next(s.Scale, r))
	s.Stretch = math.Max(0, p.Stretch.Next(s.Stretch, r))
	return s
}

// walkLength returns the configured length or rolls the default one.
func walkLength(configured int, r *Random) int {
	if configured > 0 {
		return configured
	}
	return 112 - r.NextInt(28)
}

// pitchReduction rolls the per-walk pitch damping. The roll is drawn even
// when the reduction is disabled.
func pitchReduction(enabled bool, r *Random) float64 {
	gentle := r.NextInt(6) == 0
	switch {
	case !enabled:
		return 1
	case gentle:
		return gentleReduction
	default:
		return steepReduction
	}
}

// radii returns the horizontal and vertical radius of the segment at index.
func radii(index, length int, s Segment) (float64, float64) {
	xz := 1.5 + math.Sin(float64(index)*math.Pi/float64(length))*s.Scale
	return xz, xz * s.Stretch
}

// escaped reports whether a walk can no longer reach the chunk centred on
// (cx, cz) within its remaining segments.
func escaped(s Segment, cx, cz float64, remaining int) bool {
	dx := s.Pos.X() - cx
	dz := s.Pos.Z() - cz
	rem := float64(remaining)
	limit := s.Scale + 18
	return dx*dx+dz*dz-rem*rem > limit*limit
}

// touches reports whether a segment with horizontal radius rXZ can overlap
// the chunk centred on (cx, cz).
func touches(s Segment, cx, cz, rXZ float64) bool {
	reach := 16 + rXZ*2
	x, z := s.Pos.X(), s.Pos.Z()
	return x >= cx-reach && z >= cz-reach && x <= cx+reach && z <= cz+reach
}
