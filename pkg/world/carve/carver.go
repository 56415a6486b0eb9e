package carve

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoGrid is returned when CarveChunk is called without a voxel grid.
var ErrNoGrid = errors.New("carve: no voxel grid")

// Env is the host side of a Carver.
type Env struct {
	// World gates carving by dimension and biome. Nil allows everything.
	World     WorldPredicate
	Dimension int
	Log       *slog.Logger
}

// Carver carves one preset into chunks. It is immutable after New and safe
// for concurrent use on distinct chunks.
type Carver struct {
	preset   Preset
	env      Env
	log      *slog.Logger
	comp     *compositor
	features []Feature
}

// New validates p and compiles it. The preset's slices must not be modified
// afterwards.
func New(p *Preset, env Env) (*Carver, error) {
	if p == nil {
		return nil, errors.New("carve: nil preset")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("carve: preset %q: %w", p.Name, err)
	}
	log := env.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Carver{preset: *p, env: env, log: log}
	c.comp = newCompositor(&c.preset)

	order := c.preset.Order
	if len(order) == 0 {
		order = DefaultOrder
	}
	for _, k := range order {
		switch k {
		case KindTunnels:
			for i := range c.preset.Tunnels {
				c.features = append(c.features, newTunnelFeature(c.comp, &c.preset.Tunnels[i]))
			}
		case KindRavines:
			for i := range c.preset.Ravines {
				c.features = append(c.features, newRavineFeature(c.comp, &c.preset.Ravines[i]))
			}
		case KindCaverns:
			for i := range c.preset.Caverns {
				c.features = append(c.features, newCavernFeature(c.comp, &c.preset.Caverns[i]))
			}
		}
	}
	log.Debug("carver ready", "preset", p.Name, "range", p.Range, "features", len(c.features))
	return c, nil
}

// Preset returns the preset the carver was built from.
func (c *Carver) Preset() *Preset {
	return &c.preset
}

// Features returns the carving passes in the order they run.
func (c *Carver) Features() []Feature {
	return c.features
}

// CarveChunk carves chunk (chunkX, chunkZ) of the world with the given seed
// into grid. Only cells of that chunk are written, and the result depends
// only on seed, the chunk coordinates, the preset and the grid's prior
// contents.
func (c *Carver) CarveChunk(seed int64, chunkX, chunkZ int, grid Grid) (Stats, error) {
	if grid == nil {
		return Stats{}, ErrNoGrid
	}
	if c.env.World != nil && !c.env.World.TestDimension(c.env.Dimension) {
		return Stats{}, nil
	}
	cc := &chunkContext{seed: seed, cx: chunkX, cz: chunkZ, grid: grid, carver: c}
	for _, f := range c.features {
		f.carve(cc)
	}
	if cc.stats.Writes() > 0 {
		c.log.Debug("chunk carved",
			"x", chunkX, "z", chunkZ,
			"systems", cc.stats.Systems,
			"carved", cc.stats.Carved,
			"decorated", cc.stats.Decorated,
			"abandoned", cc.stats.Abandoned)
	}
	return cc.stats, nil
}
