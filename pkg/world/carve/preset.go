package carve

import (
	"errors"
	"fmt"
)

// FeatureKind names one carving pass.
type FeatureKind string

const (
	KindTunnels FeatureKind = "tunnels"
	KindRavines FeatureKind = "ravines"
	KindCaverns FeatureKind = "caverns"
)

// Upper bounds for the integer knobs that feed NextInt or recursion.
const (
	MaxCount       = 1 << 16 // frequency, system density and walk length
	MaxBranchDepth = 16
)

// DefaultOrder is used when a preset does not name its carve order.
var DefaultOrder = []FeatureKind{KindTunnels, KindRavines, KindCaverns}

// Preset is the immutable carving configuration of one world.
type Preset struct {
	Name string

	// Range is the half-width, in chunks, of the window of candidate origins
	// re-simulated for every chunk.
	Range int
	Order []FeatureKind

	Air       uint16
	Lava      uint16
	LavaLevel int // carved cells below this height become lava

	// Replaceable lists the states carving may remove. A state listed with
	// metadata 0 matches every metadata of that block.
	Replaceable []uint16
	// Liquids lists the states a walk region must not breach into.
	Liquids []uint16

	Tunnels []TunnelSettings
	Ravines []RavineSettings
	Caverns []CavernSettings
}

// WalkSettings is shared by every random-walk feature.
type WalkSettings struct {
	// SeedOffset is added to the world seed before the origin masks are
	// derived.
	SeedOffset int64

	Chance        float64
	Height        Range
	SystemChance  float64
	SystemDensity int

	// Length is the number of segments per walk; 0 rolls 112-nextInt(28).
	Length          int
	NoiseYReduction bool

	Yaw        Decay
	Pitch      Decay
	TwistYaw   Decay
	TwistPitch Decay
	Scale      Decay
	Stretch    Decay

	// ShellRadius widens the region by this many blocks for shell decorators.
	ShellRadius float64

	Branches    BranchSettings
	Rules       RuleSet
	BranchRules *RuleSet // nil reuses Rules
}

// BranchSettings controls mid-walk splits.
type BranchSettings struct {
	Enabled      bool
	MaxDepth     int
	InheritScale bool
}

// RoomSettings controls the single-segment rooms spawned at system starts.
type RoomSettings struct {
	Chance  float64
	Scale   Decay
	Stretch Decay
}

// TunnelSettings configures a tunnel feature.
type TunnelSettings struct {
	WalkSettings
	Frequency int
	Rooms     RoomSettings
}

// RavineSettings configures a ravine feature.
type RavineSettings struct {
	WalkSettings
	// CutoffStrength divides the vertical term by 1+CutoffStrength.
	CutoffStrength float64
	// WallNoise, when set, replaces the random per-height wall mutation.
	WallNoise          NoiseSampler
	WallNoiseAmplitude float64
}

// CavernSettings configures a per-voxel cavern field.
type CavernSettings struct {
	Height Range
	Noise  []NoisePredicate // a voxel carves when any passes

	Walls      NoiseSampler // optional
	WallOffset float64
	WallScale  float64

	// BorderSearch is the radius, in blocks, searched for excluded biomes.
	// 0 disables the biome border term.
	BorderSearch int

	Rules RuleSet
}

// Validate reports configuration errors. It is called by New, so a Carver
// never runs with a malformed preset.
func (p *Preset) Validate() error {
	if p.Range < 0 || p.Range > 32 {
		return fmt.Errorf("range %d outside [0,32]", p.Range)
	}
	seen := map[FeatureKind]bool{}
	for _, k := range p.Order {
		switch k {
		case KindTunnels, KindRavines, KindCaverns:
		default:
			return fmt.Errorf("unknown feature %q in carve order", k)
		}
		if seen[k] {
			return fmt.Errorf("feature %q listed twice in carve order", k)
		}
		seen[k] = true
	}
	if len(p.Replaceable) == 0 {
		return errors.New("no replaceable blocks")
	}
	for i := range p.Tunnels {
		t := &p.Tunnels[i]
		if err := t.WalkSettings.validate(); err != nil {
			return fmt.Errorf("tunnels[%d]: %w", i, err)
		}
		if t.Frequency < 1 || t.Frequency > MaxCount {
			return fmt.Errorf("tunnels[%d]: frequency %d outside [1,%d]", i, t.Frequency, MaxCount)
		}
		if err := t.Rooms.validate(); err != nil {
			return fmt.Errorf("tunnels[%d]: rooms: %w", i, err)
		}
	}
	for i := range p.Ravines {
		r := &p.Ravines[i]
		if err := r.WalkSettings.validate(); err != nil {
			return fmt.Errorf("ravines[%d]: %w", i, err)
		}
		if r.CutoffStrength < 0 {
			return fmt.Errorf("ravines[%d]: negative cutoff strength", i)
		}
	}
	for i := range p.Caverns {
		if err := p.Caverns[i].validate(); err != nil {
			return fmt.Errorf("caverns[%d]: %w", i, err)
		}
	}
	return nil
}

func (w *WalkSettings) validate() error {
	if err := validateChance(w.Chance); err != nil {
		return err
	}
	if err := validateChance(w.SystemChance); err != nil {
		return fmt.Errorf("system %w", err)
	}
	if w.SystemChance > 0 && w.SystemDensity < 1 {
		return fmt.Errorf("system density must be at least 1, got %d", w.SystemDensity)
	}
	if w.SystemDensity < 0 || w.SystemDensity > MaxCount {
		return fmt.Errorf("system density %d outside [0,%d]", w.SystemDensity, MaxCount)
	}
	if err := validateRange(w.Height); err != nil {
		return err
	}
	if w.Length < 0 || w.Length > MaxCount {
		return fmt.Errorf("walk length %d outside [0,%d]", w.Length, MaxCount)
	}
	if w.ShellRadius < 0 {
		return fmt.Errorf("negative shell radius %v", w.ShellRadius)
	}
	if w.Branches.Enabled && w.Branches.MaxDepth < 1 {
		return fmt.Errorf("branch depth must be at least 1, got %d", w.Branches.MaxDepth)
	}
	if w.Branches.MaxDepth > MaxBranchDepth {
		return fmt.Errorf("branch depth %d above %d", w.Branches.MaxDepth, MaxBranchDepth)
	}
	decays := []struct {
		name string
		d    Decay
	}{
		{"yaw", w.Yaw}, {"pitch", w.Pitch},
		{"twist yaw", w.TwistYaw}, {"twist pitch", w.TwistPitch},
		{"scale", w.Scale}, {"stretch", w.Stretch},
	}
	for _, e := range decays {
		if err := e.d.validate(); err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
	}
	if err := w.Rules.validate(); err != nil {
		return err
	}
	if w.BranchRules != nil {
		if err := w.BranchRules.validate(); err != nil {
			return fmt.Errorf("branch rules: %w", err)
		}
	}
	return nil
}

func (r RoomSettings) validate() error {
	if err := validateChance(r.Chance); err != nil {
		return err
	}
	if r.Chance == 0 {
		return nil
	}
	if err := r.Scale.validate(); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	return r.Stretch.validate()
}

func (c *CavernSettings) validate() error {
	if err := validateRange(c.Height); err != nil {
		return err
	}
	if len(c.Noise) == 0 {
		return errors.New("cavern needs at least one noise predicate")
	}
	if c.BorderSearch < 0 {
		return fmt.Errorf("negative border search %d", c.BorderSearch)
	}
	if len(c.Rules.ShellDecorators) > 0 {
		return errors.New("caverns do not support shell decorators")
	}
	return c.Rules.validate()
}
