package carve

import (
	"errors"
	"fmt"
)

// Direction is a set of neighbour offsets a decoration rule may test.
type Direction uint8

const (
	Down Direction = 1 << iota
	Up
	West  // -x
	East  // +x
	North // -z
	South // +z

	Side = West | East | North | South
	All  = Down | Up | Side
)

// Mode selects which cell a matching decoration rule overwrites.
type Mode uint8

const (
	// Embed overwrites the matched neighbour.
	Embed Mode = iota
	// Overlay overwrites the freshly carved cell.
	Overlay
)

// CarveRule replaces a carved cell with one of States instead of air.
type CarveRule struct {
	States []uint16
	Chance float64
	Height Range
	Noise  NoisePredicate // optional
}

// DecorationRule places States next to (Embed) or inside (Overlay) a carved
// cell whose neighbour currently holds one of Matches.
type DecorationRule struct {
	States     []uint16
	Matches    []uint16
	Chance     float64
	Height     Range
	Directions Direction
	Mode       Mode
	Noise      NoisePredicate // optional
}

// RuleSet groups the rules applied to one walk.
type RuleSet struct {
	CaveBlocks      []CarveRule
	WallDecorators  []DecorationRule
	ShellDecorators []DecorationRule
}

var (
	errNoStates    = errors.New("rule has no candidate blocks")
	errNoMatches   = errors.New("decoration rule has no blocks to match")
	errNoDirection = errors.New("decoration rule has no directions")
)

func validateChance(c float64) error {
	if !(c >= 0 && c <= 1) {
		return fmt.Errorf("chance %v outside [0,1]", c)
	}
	return nil
}

func validateRange(r Range) error {
	if r.Min < 0 || r.Max >= WorldHeight {
		return fmt.Errorf("height range %d..%d outside [0,%d]", r.Min, r.Max, WorldHeight-1)
	}
	if r.Min > r.Max {
		return fmt.Errorf("inverted height range %d..%d", r.Min, r.Max)
	}
	return nil
}

func (r CarveRule) validate() error {
	if len(r.States) == 0 {
		return errNoStates
	}
	if err := validateChance(r.Chance); err != nil {
		return err
	}
	return validateRange(r.Height)
}

func (r DecorationRule) validate(shell bool) error {
	if len(r.States) == 0 {
		return errNoStates
	}
	if len(r.Matches) == 0 {
		return errNoMatches
	}
	if !shell && r.Directions&All == 0 {
		return errNoDirection
	}
	if r.Mode > Overlay {
		return fmt.Errorf("unknown decoration mode %d", r.Mode)
	}
	if err := validateChance(r.Chance); err != nil {
		return err
	}
	return validateRange(r.Height)
}

func (rs *RuleSet) validate() error {
	for i, r := range rs.CaveBlocks {
		if err := r.validate(); err != nil {
			return fmt.Errorf("cave block %d: %w", i, err)
		}
	}
	for i, r := range rs.WallDecorators {
		if err := r.validate(false); err != nil {
			return fmt.Errorf("wall decorator %d: %w", i, err)
		}
	}
	for i, r := range rs.ShellDecorators {
		if err := r.validate(true); err != nil {
			return fmt.Errorf("shell decorator %d: %w", i, err)
		}
	}
	return nil
}
