package carve

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// walkFeature holds what tunnels and ravines share: walk settings, compiled
// rules and the shape of the carved cross-section.
type walkFeature struct {
	settings    *WalkSettings
	potential   float64
	rules       *compiledRules
	branchRules *compiledRules

	// ravine only
	ravine bool
	cutoff float64
	wall   NoiseSampler
	wallAm float64
}

// walk is the start state of one path simulation.
type walk struct {
	seg    Segment
	index  int
	length int // 0 rolls a default
	room   bool
	depth  int
	rules  *compiledRules
}

// system starts the walks of one system at start, drawing from the origin
// RNG r. It is shared by tunnels and ravines; rooms are handled by the
// caller before the regular walks.
func (f *walkFeature) system(cc *chunkContext, start Segment, r *Random) {
	p := f.settings
	n := 1
	if r.NextFloat() < p.SystemChance {
		n += r.NextInt(p.SystemDensity)
	}
	for i := 0; i < n; i++ {
		seg := start
		seg.Yaw = p.Yaw.Roll(r)
		seg.Pitch = p.Pitch.Roll(r)
		seg.Scale = math.Max(0, p.Scale.Roll(r))
		seg.Stretch = math.Max(0, p.Stretch.Roll(r))
		seed := r.NextLong()
		cc.stats.Walks++
		f.run(cc, walk{seg: seg, length: p.Length, rules: f.rules}, seed)
	}
}

// systemStart rolls the start position of a system inside origin chunk
// (destX, destZ).
func systemStart(h Range, destX, destZ int, r *Random) Segment {
	x := destX*ChunkSize + r.NextInt(ChunkSize)
	y := h.Min + r.NextInt(r.NextInt(h.Max-h.Min+1)+1)
	z := destZ*ChunkSize + r.NextInt(ChunkSize)
	return Segment{Pos: mgl64.Vec3{float64(x), float64(y), float64(z)}}
}

// run simulates one walk with its own RNG and carves every segment that
// reaches the current chunk. A branch ends the parent and continues as two
// children from the branch point.
func (f *walkFeature) run(cc *chunkContext, w walk, seed int64) {
	p := f.settings
	r := NewRandom(seed)

	length := walkLength(w.length, r)
	branchAt := r.NextInt(length/2) + length/4
	reduction := pitchReduction(p.NoiseYReduction, r)
	seg := w.seg
	seg.TwistYaw = p.TwistYaw.Roll(r)
	seg.TwistPitch = p.TwistPitch.Roll(r)

	var mutation *[256]float64
	if f.ravine {
		mutation = mutationBuffer(r, f.wall, f.wallAm, cc.seed, seg.Pos)
	}

	index := w.index
	if w.room {
		index = length / 2
	}
	cx, cz := cc.centre()

	for ; index < length; index++ {
		rXZ, rY := radii(index, length, seg)
		if f.ravine {
			rXZ *= r.NextFloat()*0.25 + 0.75
			rY *= r.NextFloat()*0.25 + 0.75
		}
		seg = Step(seg, p, f.potential, reduction, r)

		if !w.room && p.Branches.Enabled && index == branchAt && seg.Scale > 1 && w.depth < p.Branches.MaxDepth {
			f.branch(cc, w, seg, index, length, r)
			return
		}
		if !w.room && r.NextInt(4) == 0 {
			continue
		}
		if escaped(seg, cx, cz, length-index) {
			return
		}
		if !touches(seg, cx, cz, rXZ) {
			continue
		}
		f.carveSegment(cc, seg, rXZ, rY, mutation, w.rules)
		if w.room {
			return
		}
	}
}

// branch spawns the two children of a split at index.
func (f *walkFeature) branch(cc *chunkContext, parent walk, seg Segment, index, length int, r *Random) {
	p := f.settings
	rules := parent.rules
	if f.branchRules != nil {
		rules = f.branchRules
	}
	for _, turn := range [2]float64{-math.Pi / 2, math.Pi / 2} {
		child := Segment{
			Pos:     seg.Pos,
			Yaw:     seg.Yaw + turn,
			Pitch:   seg.Pitch / 3,
			Scale:   seg.Scale,
			Stretch: seg.Stretch,
		}
		if !p.Branches.InheritScale {
			child.Scale = math.Max(0, p.Scale.Roll(r))
			child.Stretch = math.Max(0, p.Stretch.Roll(r))
		}
		seed := r.NextLong()
		cc.stats.Branches++
		f.run(cc, walk{
			seg:    child,
			index:  index,
			length: length,
			depth:  parent.depth + 1,
			rules:  rules,
		}, seed)
	}
}

func (f *walkFeature) carveSegment(cc *chunkContext, seg Segment, rXZ, rY float64, mutation *[256]float64, rules *compiledRules) {
	cc.stats.Segments++
	sh := shape{shell: f.settings.ShellRadius}
	if f.ravine {
		sh.ravine = true
		sh.cutoff = f.cutoff
		sh.mutation = mutation
	}
	reg := rasterize(cc.cx, cc.cz, seg.Pos, rXZ, rY, sh)
	if reg.Empty() {
		return
	}
	cc.stats.Regions++
	cc.carver.comp.apply(cc, reg, rules, true)
}
