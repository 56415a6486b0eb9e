package carve

import "math"

// borderStep is the lattice spacing of the excluded-biome search.
const borderStep = 4

// wallRadius maps one full turn of the wall circle onto 256 blocks of height
// so the wall lookup wraps without a seam.
const wallRadius = WorldHeight / (2 * math.Pi)

// CavernFeature carves a per-voxel noise field. It has no walks and no
// origin loop: only the current chunk is evaluated.
type CavernFeature struct {
	cfg   *CavernSettings
	rules *compiledRules
}

func (*CavernFeature) Kind() FeatureKind { return KindCaverns }

func newCavernFeature(c *compositor, s *CavernSettings) *CavernFeature {
	return &CavernFeature{cfg: s, rules: c.compile(s.Rules)}
}

// cavernField is the per-chunk state of a cavern evaluation.
type cavernField struct {
	cfg    *CavernSettings
	seed   int64
	wall   [WorldHeight]float64
	border [ChunkSize][ChunkSize]float64
}

func (f *CavernFeature) field(cc *chunkContext) *cavernField {
	cf := &cavernField{cfg: f.cfg, seed: cc.seed}
	for y := range cf.wall {
		cf.wall[y] = f.cfg.WallOffset
		if f.cfg.Walls != nil {
			a := 2 * math.Pi * float64(y) / WorldHeight
			v := f.cfg.Walls.Sample(cc.seed, math.Cos(a)*wallRadius, math.Sin(a)*wallRadius, 0)
			cf.wall[y] += math.Abs(v) * f.cfg.WallScale
		}
	}
	cf.borders(cc)
	return cf
}

// borders fills the horizontal distance from every column to the nearest
// excluded-biome lattice point within BorderSearch, or +Inf.
func (cf *cavernField) borders(cc *chunkContext) {
	for x := range cf.border {
		for z := range cf.border[x] {
			cf.border[x][z] = math.Inf(1)
		}
	}
	search := cf.cfg.BorderSearch
	if search == 0 || cc.carver.env.World == nil {
		return
	}

	ox, oz := cc.cx*ChunkSize, cc.cz*ChunkSize
	var excluded [][2]int
	for x := alignDown(ox - search); x <= ox+ChunkSize-1+search; x += borderStep {
		for z := alignDown(oz - search); z <= oz+ChunkSize-1+search; z += borderStep {
			if !cc.biomeAt(x, z) {
				excluded = append(excluded, [2]int{x, z})
			}
		}
	}
	if len(excluded) == 0 {
		return
	}

	limit := float64(search)
	for x := range cf.border {
		for z := range cf.border[x] {
			wx, wz := float64(ox+x), float64(oz+z)
			for _, e := range excluded {
				d := math.Hypot(float64(e[0])-wx, float64(e[1])-wz)
				if d <= limit && d < cf.border[x][z] {
					cf.border[x][z] = d
				}
			}
		}
	}
}

func alignDown(v int) int {
	return int(math.Floor(float64(v)/borderStep)) * borderStep
}

// test reports whether the local voxel (x, y, z) is carved.
func (cf *cavernField) test(cc *chunkContext, p Pos) bool {
	if !cf.cfg.Height.Contains(p.Y) {
		return false
	}
	if !(cf.border[p.X][p.Z] > cf.wall[p.Y]) {
		return false
	}
	for _, n := range cf.cfg.Noise {
		if cc.noise(n, p) {
			return true
		}
	}
	return false
}

func (f *CavernFeature) carve(cc *chunkContext) {
	lo := max(f.cfg.Height.Min, MinY)
	hi := min(f.cfg.Height.Max, MaxY-1)
	if lo > hi {
		return
	}
	cf := f.field(cc)
	var reg Region
	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			for y := hi; y >= lo; y-- {
				p := Pos{x, y, z}
				if cf.test(cc, p) {
					reg.Cells = append(reg.Cells, p)
				}
			}
		}
	}
	if reg.Empty() {
		return
	}
	reg.Min, reg.Max = Pos{0, lo, 0}, Pos{ChunkSize, hi + 1, ChunkSize}
	cc.stats.Regions++
	cc.carver.comp.apply(cc, reg, f.rules, false)
}
