// Package preset loads carving presets from YAML documents.
package preset

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/OCharnyshevich/cavegen/pkg/world/carve"
	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
	"github.com/OCharnyshevich/cavegen/pkg/world/noise"
)

// Preset is a loaded preset: the carving configuration plus where it applies.
type Preset struct {
	Carve      *carve.Preset
	Dimensions []int
	Allow      []byte // biome IDs; empty allows every biome not denied
	Deny       []byte
	Digest     string // sha256 of the YAML source
}

// Filter returns a world predicate for this preset backed by biomes.
func (p *Preset) Filter(biomes BiomeSource) *Filter {
	return NewFilter(p.Dimensions, p.Allow, p.Deny, biomes)
}

//go:embed vanilla.yaml
var vanillaYAML []byte

// Default returns the built-in preset, tuned to match classic Minecraft 1.8
// caves and ravines.
func Default() *Preset {
	p, err := Parse(vanillaYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in preset: %v", err))
	}
	return p
}

// Load reads and parses the preset at path.
func Load(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	p, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return p, nil
}

// Parse validates raw against the schema, converts it and checks the result.
func Parse(raw []byte) (*Preset, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}
	p, err := doc.convert()
	if err != nil {
		return nil, err
	}
	if err := p.Carve.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Carve.Name, err)
	}
	sum := sha256.Sum256(raw)
	p.Digest = hex.EncodeToString(sum[:])
	return p, nil
}

func (d *document) convert() (*Preset, error) {
	out := &Preset{Dimensions: d.Dimensions}
	if len(out.Dimensions) == 0 {
		out.Dimensions = []int{0}
	}

	var err error
	if out.Allow, err = biomeList(d.Biomes.Allow); err != nil {
		return nil, fmt.Errorf("biomes.allow: %w", err)
	}
	if out.Deny, err = biomeList(d.Biomes.Deny); err != nil {
		return nil, fmt.Errorf("biomes.deny: %w", err)
	}

	cp := &carve.Preset{Name: d.Name, Range: 8, LavaLevel: 10}
	if d.Range != nil {
		cp.Range = *d.Range
	}
	if d.LavaLevel != nil {
		cp.LavaLevel = *d.LavaLevel
	}
	for _, k := range d.Order {
		cp.Order = append(cp.Order, carve.FeatureKind(k))
	}
	if cp.Air, err = stateOr(d.Air, "air"); err != nil {
		return nil, fmt.Errorf("air: %w", err)
	}
	if cp.Lava, err = stateOr(d.Lava, "lava"); err != nil {
		return nil, fmt.Errorf("lava: %w", err)
	}
	if cp.Replaceable, err = states(d.Replaceable); err != nil {
		return nil, fmt.Errorf("replaceable: %w", err)
	}
	if cp.Liquids, err = states(d.Liquids); err != nil {
		return nil, fmt.Errorf("liquids: %w", err)
	}

	for i := range d.Tunnels {
		t, err := d.Tunnels[i].convert()
		if err != nil {
			return nil, fmt.Errorf("tunnels[%d]: %w", i, err)
		}
		cp.Tunnels = append(cp.Tunnels, t)
	}
	for i := range d.Ravines {
		r, err := d.Ravines[i].convert()
		if err != nil {
			return nil, fmt.Errorf("ravines[%d]: %w", i, err)
		}
		cp.Ravines = append(cp.Ravines, r)
	}
	for i := range d.Caverns {
		c, err := d.Caverns[i].convert()
		if err != nil {
			return nil, fmt.Errorf("caverns[%d]: %w", i, err)
		}
		cp.Caverns = append(cp.Caverns, c)
	}
	out.Carve = cp
	return out, nil
}

func (t *tunnelDoc) convert() (carve.TunnelSettings, error) {
	w, err := t.walkDoc.convert()
	if err != nil {
		return carve.TunnelSettings{}, err
	}
	return carve.TunnelSettings{
		WalkSettings: w,
		Frequency:    t.Frequency,
		Rooms: carve.RoomSettings{
			Chance:  t.Rooms.Chance,
			Scale:   t.Rooms.Scale.decay(),
			Stretch: t.Rooms.Stretch.decay(),
		},
	}, nil
}

func (r *ravineDoc) convert() (carve.RavineSettings, error) {
	w, err := r.walkDoc.convert()
	if err != nil {
		return carve.RavineSettings{}, err
	}
	out := carve.RavineSettings{
		WalkSettings:       w,
		CutoffStrength:     r.CutoffStrength,
		WallNoiseAmplitude: r.WallNoiseAmplitude,
	}
	if r.WallNoise != nil {
		f, err := r.WallNoise.field()
		if err != nil {
			return carve.RavineSettings{}, fmt.Errorf("wall_noise: %w", err)
		}
		out.WallNoise = f
	}
	return out, nil
}

func (c *cavernDoc) convert() (carve.CavernSettings, error) {
	out := carve.CavernSettings{
		Height:       c.Height.value(),
		WallOffset:   c.WallOffset,
		WallScale:    c.WallScale,
		BorderSearch: c.BorderSearch,
	}
	for i := range c.Noise {
		f, err := c.Noise[i].field()
		if err != nil {
			return carve.CavernSettings{}, fmt.Errorf("noise[%d]: %w", i, err)
		}
		out.Noise = append(out.Noise, f)
	}
	if c.Walls != nil {
		f, err := c.Walls.field()
		if err != nil {
			return carve.CavernSettings{}, fmt.Errorf("walls: %w", err)
		}
		out.Walls = f
	}
	var err error
	if out.Rules, err = c.Rules.convert(); err != nil {
		return carve.CavernSettings{}, err
	}
	return out, nil
}

func (w *walkDoc) convert() (carve.WalkSettings, error) {
	out := carve.WalkSettings{
		SeedOffset:      w.SeedOffset,
		Chance:          w.Chance,
		Height:          w.Height.value(),
		SystemChance:    w.SystemChance,
		SystemDensity:   w.SystemDensity,
		Length:          w.Length,
		NoiseYReduction: w.NoiseYReduction,
		Yaw:             w.Yaw.decay(),
		Pitch:           w.Pitch.decay(),
		TwistYaw:        w.TwistYaw.decay(),
		TwistPitch:      w.TwistPitch.decay(),
		Scale:           w.Scale.decay(),
		Stretch:         w.Stretch.decay(),
		ShellRadius:     w.ShellRadius,
		Branches: carve.BranchSettings{
			Enabled:      w.Branches.Enabled,
			MaxDepth:     w.Branches.MaxDepth,
			InheritScale: w.Branches.InheritScale,
		},
	}
	var err error
	if out.Rules, err = w.Rules.convert(); err != nil {
		return carve.WalkSettings{}, err
	}
	if w.BranchRules != nil {
		br, err := w.BranchRules.convert()
		if err != nil {
			return carve.WalkSettings{}, fmt.Errorf("branch_rules: %w", err)
		}
		out.BranchRules = &br
	}
	return out, nil
}

func (r *rulesDoc) convert() (carve.RuleSet, error) {
	var rs carve.RuleSet
	for i := range r.CaveBlocks {
		c := &r.CaveBlocks[i]
		rule := carve.CarveRule{Chance: chanceOr(c.Chance), Height: heightOr(c.Height)}
		var err error
		if rule.States, err = states(c.States); err != nil {
			return rs, fmt.Errorf("cave_blocks[%d]: %w", i, err)
		}
		if c.Noise != nil {
			f, err := c.Noise.field()
			if err != nil {
				return rs, fmt.Errorf("cave_blocks[%d].noise: %w", i, err)
			}
			rule.Noise = f
		}
		rs.CaveBlocks = append(rs.CaveBlocks, rule)
	}
	for i := range r.WallDecorators {
		d, err := r.WallDecorators[i].convert()
		if err != nil {
			return rs, fmt.Errorf("wall_decorators[%d]: %w", i, err)
		}
		rs.WallDecorators = append(rs.WallDecorators, d)
	}
	for i := range r.ShellDecorators {
		d, err := r.ShellDecorators[i].convert()
		if err != nil {
			return rs, fmt.Errorf("shell_decorators[%d]: %w", i, err)
		}
		rs.ShellDecorators = append(rs.ShellDecorators, d)
	}
	return rs, nil
}

var directions = map[string]carve.Direction{
	"down":  carve.Down,
	"up":    carve.Up,
	"west":  carve.West,
	"east":  carve.East,
	"north": carve.North,
	"south": carve.South,
	"side":  carve.Side,
	"all":   carve.All,
}

func (d *decorationDoc) convert() (carve.DecorationRule, error) {
	out := carve.DecorationRule{Chance: chanceOr(d.Chance), Height: heightOr(d.Height)}
	var err error
	if out.States, err = states(d.States); err != nil {
		return out, err
	}
	if out.Matches, err = states(d.Matches); err != nil {
		return out, fmt.Errorf("matches: %w", err)
	}
	if len(d.Directions) == 0 {
		out.Directions = carve.All
	}
	for _, s := range d.Directions {
		dir, ok := directions[s]
		if !ok {
			return out, fmt.Errorf("unknown direction %q", s)
		}
		out.Directions |= dir
	}
	switch d.Mode {
	case "", "embed":
		out.Mode = carve.Embed
	case "overlay":
		out.Mode = carve.Overlay
	default:
		return out, fmt.Errorf("unknown mode %q", d.Mode)
	}
	if d.Noise != nil {
		f, err := d.Noise.field()
		if err != nil {
			return out, fmt.Errorf("noise: %w", err)
		}
		out.Noise = f
	}
	return out, nil
}

func (n *noiseDoc) field() (*noise.Field, error) {
	s := noise.Settings{
		Type:        noise.Type(n.Type),
		Seed:        n.Seed,
		Frequency:   n.Frequency,
		StretchY:    n.StretchY,
		Octaves:     n.Octaves,
		Persistence: n.Persistence,
		Min:         n.Min,
		Max:         n.Max,
	}
	if s.Octaves == 0 {
		s.Octaves = 1
	}
	if s.Min == 0 && s.Max == 0 {
		s.Min, s.Max = 0, 1
	}
	return noise.New(s)
}

// decay converts d. A decay left out of the document is the constant 0.
func (d decayDoc) decay() carve.Decay {
	if d == (decayDoc{}) {
		return carve.Constant(0)
	}
	return carve.Decay{
		Exponent:    d.Exponent,
		Factor:      d.Factor,
		Jitter:      d.Jitter,
		Start:       d.Start,
		StartJitter: d.StartJitter,
	}
}

func (r rangeDoc) value() carve.Range {
	return carve.Range{Min: r.Min, Max: r.Max}
}

func heightOr(r *rangeDoc) carve.Range {
	if r == nil {
		return carve.Range{Min: 0, Max: carve.WorldHeight - 1}
	}
	return r.value()
}

func chanceOr(c *float64) float64 {
	if c == nil {
		return 1
	}
	return *c
}

func stateOr(s, def string) (uint16, error) {
	if s == "" {
		s = def
	}
	return gen.ParseState(s)
}

func states(names []string) ([]uint16, error) {
	out := make([]uint16, 0, len(names))
	for _, n := range names {
		st, err := gen.ParseState(n)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func biomeList(names []string) ([]byte, error) {
	var out []byte
	for _, n := range names {
		id, err := gen.ParseBiome(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
