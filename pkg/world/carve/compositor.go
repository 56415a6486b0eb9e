package carve

// stateSet is a membership set over block states. A state stored with
// metadata 0 also matches every other metadata of the same block.
type stateSet struct {
	bits *[1 << 16 / 64]uint64
}

func newStateSet(states []uint16) stateSet {
	s := stateSet{bits: new([1 << 16 / 64]uint64)}
	for _, st := range states {
		s.bits[st>>6] |= 1 << (st & 63)
	}
	return s
}

func (s stateSet) has(st uint16) bool {
	return s.bits != nil && s.bits[st>>6]&(1<<(st&63)) != 0
}

func (s stateSet) contains(st uint16) bool {
	return s.has(st) || s.has(st&^0xF)
}

// offset is one of the six face neighbours, in decoration priority order.
type offset struct {
	dir        Direction
	dx, dy, dz int
}

var offsets = [6]offset{
	{Down, 0, -1, 0},
	{Up, 0, 1, 0},
	{West, -1, 0, 0},
	{East, 1, 0, 0},
	{North, 0, 0, -1},
	{South, 0, 0, 1},
}

// Salts keep the positional chance rolls of different rules independent.
const (
	carveSalt      = 1
	decorationSalt = 1 << 20
	shellSalt      = 1 << 24
)

type decoration struct {
	DecorationRule
	matches stateSet
	index   int
}

// decorPass is one stage of the decoration order: a fixed list of offsets
// tested against a fixed list of rules.
type decorPass struct {
	offsets []int
	rules   []*decoration
}

type compiledRules struct {
	cave   []CarveRule
	passes []decorPass
	shell  []*decoration
	// liquidOK holds the height ranges of cave rules that place a liquid.
	liquidOK []Range
}

// compositor applies carve and decoration rules to regions. It holds only
// preset-wide immutable state.
type compositor struct {
	air, lava   uint16
	lavaLevel   int
	replaceable stateSet
	liquids     stateSet
	anyLiquid   bool
}

func newCompositor(p *Preset) *compositor {
	return &compositor{
		air:         p.Air,
		lava:        p.Lava,
		lavaLevel:   p.LavaLevel,
		replaceable: newStateSet(p.Replaceable),
		liquids:     newStateSet(p.Liquids),
		anyLiquid:   len(p.Liquids) > 0,
	}
}

func (c *compositor) compile(rs RuleSet) *compiledRules {
	cr := &compiledRules{cave: rs.CaveBlocks}
	for _, r := range rs.CaveBlocks {
		for _, st := range r.States {
			if c.liquids.contains(st) {
				cr.liquidOK = append(cr.liquidOK, r.Height)
				break
			}
		}
	}

	decs := make([]*decoration, len(rs.WallDecorators))
	for i, r := range rs.WallDecorators {
		decs[i] = &decoration{DecorationRule: r, matches: newStateSet(r.Matches), index: i}
	}
	var all, side []*decoration
	for _, d := range decs {
		switch d.Directions & All {
		case All:
			all = append(all, d)
		case Side:
			side = append(side, d)
		}
	}
	if len(all) > 0 {
		cr.passes = append(cr.passes, decorPass{offsets: []int{0, 1, 2, 3, 4, 5}, rules: all})
	}
	if len(side) > 0 {
		cr.passes = append(cr.passes, decorPass{offsets: []int{2, 3, 4, 5}, rules: side})
	}
	for i, o := range offsets {
		var single []*decoration
		for _, d := range decs {
			dirs := d.Directions & All
			if dirs != All && dirs != Side && dirs&o.dir != 0 {
				single = append(single, d)
			}
		}
		if len(single) > 0 {
			cr.passes = append(cr.passes, decorPass{offsets: []int{i}, rules: single})
		}
	}

	for i, r := range rs.ShellDecorators {
		cr.shell = append(cr.shell, &decoration{DecorationRule: r, matches: newStateSet(r.Matches), index: i})
	}
	return cr
}

func (cr *compiledRules) toleratesLiquid(y int) bool {
	for _, h := range cr.liquidOK {
		if h.Contains(y) {
			return true
		}
	}
	return false
}

// apply commits one region: optional liquid check, carve, decorate, then
// shell decoration.
func (c *compositor) apply(cc *chunkContext, reg Region, rules *compiledRules, checkLiquid bool) {
	if checkLiquid && !c.liquidSafe(cc, reg.Cells, rules) {
		cc.stats.Abandoned++
		return
	}
	fresh := c.carve(cc, reg.Cells, rules)
	if len(rules.passes) > 0 {
		c.decorate(cc, fresh, rules)
	}
	if len(rules.shell) > 0 {
		c.decorateShell(cc, reg.Shell, rules)
	}
}

// liquidSafe reports whether no cell has a liquid directly above or below
// it at a height no liquid-placing rule covers.
func (c *compositor) liquidSafe(cc *chunkContext, cells []Pos, rules *compiledRules) bool {
	if !c.anyLiquid {
		return true
	}
	for _, p := range cells {
		for _, y := range [2]int{p.Y - 1, p.Y + 1} {
			if y < 0 || y >= WorldHeight {
				continue
			}
			if c.liquids.contains(cc.grid.GetBlock(p.X, y, p.Z)) && !rules.toleratesLiquid(y) {
				return false
			}
		}
	}
	return true
}

// carve replaces every replaceable cell and returns the cells left as air.
func (c *compositor) carve(cc *chunkContext, cells []Pos, rules *compiledRules) []Pos {
	var fresh []Pos
	for _, p := range cells {
		if !c.replaceable.contains(cc.grid.GetBlock(p.X, p.Y, p.Z)) {
			continue
		}
		state, ok := c.caveBlock(cc, p, rules)
		if !ok {
			state = c.air
			if p.Y < c.lavaLevel {
				state = c.lava
			}
		}
		cc.grid.SetBlock(p.X, p.Y, p.Z, state)
		cc.stats.Carved++
		if state == c.air {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

func (c *compositor) caveBlock(cc *chunkContext, p Pos, rules *compiledRules) (uint16, bool) {
	for i := range rules.cave {
		r := &rules.cave[i]
		if !r.Height.Contains(p.Y) {
			continue
		}
		state, ok := cc.roll(r.States, r.Chance, p, carveSalt+int64(i))
		if !ok {
			continue
		}
		if r.Noise != nil && !cc.noise(r.Noise, p) {
			continue
		}
		return state, true
	}
	return 0, false
}

func (c *compositor) decorate(cc *chunkContext, cells []Pos, rules *compiledRules) {
	for _, p := range cells {
		if cc.grid.GetBlock(p.X, p.Y, p.Z) != c.air {
			continue
		}
		c.decorateCell(cc, p, rules)
	}
}

func (c *compositor) decorateCell(cc *chunkContext, p Pos, rules *compiledRules) {
	for _, pass := range rules.passes {
		for _, oi := range pass.offsets {
			o := offsets[oi]
			n := Pos{p.X + o.dx, p.Y + o.dy, p.Z + o.dz}
			if !inChunk(n) {
				continue
			}
			nb := cc.grid.GetBlock(n.X, n.Y, n.Z)
			for _, d := range pass.rules {
				if !d.matches.contains(nb) {
					continue
				}
				target := n
				if d.Mode == Overlay {
					target = p
				}
				state, ok := d.test(cc, target, decorationSalt+int64(d.index)<<3+int64(oi))
				if !ok {
					continue
				}
				cc.grid.SetBlock(target.X, target.Y, target.Z, state)
				cc.stats.Decorated++
				return
			}
		}
	}
}

func (c *compositor) decorateShell(cc *chunkContext, cells []Pos, rules *compiledRules) {
	for _, p := range cells {
		cur := cc.grid.GetBlock(p.X, p.Y, p.Z)
		for _, d := range rules.shell {
			if !d.matches.contains(cur) {
				continue
			}
			state, ok := d.test(cc, p, shellSalt+int64(d.index))
			if !ok {
				continue
			}
			cc.grid.SetBlock(p.X, p.Y, p.Z, state)
			cc.stats.Decorated++
			break
		}
	}
}

// test checks height, chance and noise at the position that would be written.
func (d *decoration) test(cc *chunkContext, target Pos, salt int64) (uint16, bool) {
	if !d.Height.Contains(target.Y) {
		return 0, false
	}
	state, ok := cc.roll(d.States, d.Chance, target, salt)
	if !ok {
		return 0, false
	}
	if d.Noise != nil && !cc.noise(d.Noise, target) {
		return 0, false
	}
	return state, true
}

func inChunk(p Pos) bool {
	return p.X >= 0 && p.X < ChunkSize && p.Z >= 0 && p.Z < ChunkSize && p.Y >= MinY && p.Y < MaxY
}
