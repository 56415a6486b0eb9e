package carve

import "math"

// Feature is one carving pass of a Carver. The set of implementations is
// closed: TunnelFeature, RavineFeature and CavernFeature.
type Feature interface {
	Kind() FeatureKind
	carve(cc *chunkContext)
}

// TunnelFeature carves branching tunnel systems and rooms.
type TunnelFeature struct {
	walkFeature
	cfg *TunnelSettings
}

// RavineFeature carves tall, narrow ravines.
type RavineFeature struct {
	walkFeature
	cfg *RavineSettings
}

func (*TunnelFeature) Kind() FeatureKind { return KindTunnels }
func (*RavineFeature) Kind() FeatureKind { return KindRavines }

func newTunnelFeature(c *compositor, t *TunnelSettings) *TunnelFeature {
	f := &TunnelFeature{cfg: t}
	f.walkFeature = walkFeature{
		settings:  &t.WalkSettings,
		potential: tunnelPotential,
		rules:     c.compile(t.Rules),
	}
	if t.BranchRules != nil {
		f.branchRules = c.compile(*t.BranchRules)
	}
	return f
}

func newRavineFeature(c *compositor, rv *RavineSettings) *RavineFeature {
	f := &RavineFeature{cfg: rv}
	f.walkFeature = walkFeature{
		settings:  &rv.WalkSettings,
		potential: ravinePotential,
		rules:     c.compile(rv.Rules),
		ravine:    true,
		cutoff:    rv.CutoffStrength,
		wall:      rv.WallNoise,
		wallAm:    rv.WallNoiseAmplitude,
	}
	if rv.BranchRules != nil {
		f.branchRules = c.compile(*rv.BranchRules)
	}
	return f
}

// originMasks derives the two multipliers mixed into every origin seed.
func originMasks(seed int64) (int64, int64) {
	r := NewRandom(seed)
	return r.NextLong(), r.NextLong()
}

// forEachOrigin calls fn with a fresh RNG for every candidate origin chunk
// within rng of the current chunk, x-major.
func forEachOrigin(cc *chunkContext, offset int64, rng int, fn func(destX, destZ int, r *Random)) {
	ws := cc.seed + offset
	mx, mz := originMasks(ws)
	for destX := cc.cx - rng; destX <= cc.cx+rng; destX++ {
		for destZ := cc.cz - rng; destZ <= cc.cz+rng; destZ++ {
			seed := int64(destX)*mx ^ int64(destZ)*mz ^ ws
			fn(destX, destZ, NewRandom(seed))
		}
	}
}

func (f *TunnelFeature) carve(cc *chunkContext) {
	forEachOrigin(cc, f.cfg.SeedOffset, cc.carver.preset.Range, func(destX, destZ int, r *Random) {
		f.origin(cc, destX, destZ, r)
	})
}

// origin runs every tunnel system of one candidate origin chunk.
func (f *TunnelFeature) origin(cc *chunkContext, destX, destZ int, r *Random) {
	t := f.cfg
	count := r.NextInt(r.NextInt(r.NextInt(t.Frequency)+1) + 1)
	if r.NextFloat() >= t.Chance || count == 0 {
		return
	}
	if !cc.biomeAt(destX*ChunkSize+8, destZ*ChunkSize+8) {
		return
	}
	cc.stats.Origins++
	for i := 0; i < count; i++ {
		cc.stats.Systems++
		start := systemStart(t.Height, destX, destZ, r)
		if r.NextFloat() < t.Rooms.Chance {
			room := start
			room.Scale = math.Max(0, t.Rooms.Scale.Roll(r))
			room.Stretch = math.Max(0, t.Rooms.Stretch.Roll(r))
			seed := r.NextLong()
			cc.stats.Rooms++
			f.run(cc, walk{seg: room, length: t.Length, room: true, rules: f.rules}, seed)
		}
		f.system(cc, start, r)
	}
}

func (f *RavineFeature) carve(cc *chunkContext) {
	forEachOrigin(cc, f.cfg.SeedOffset, cc.carver.preset.Range, func(destX, destZ int, r *Random) {
		f.origin(cc, destX, destZ, r)
	})
}

// origin runs the single ravine system a candidate origin may hold.
func (f *RavineFeature) origin(cc *chunkContext, destX, destZ int, r *Random) {
	rv := f.cfg
	if r.NextFloat() >= rv.Chance {
		return
	}
	if !cc.biomeAt(destX*ChunkSize+8, destZ*ChunkSize+8) {
		return
	}
	cc.stats.Origins++
	cc.stats.Systems++
	f.system(cc, systemStart(rv.Height, destX, destZ, r), r)
}
