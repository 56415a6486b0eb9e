package preset

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// document is the YAML form of a carving preset.
type document struct {
	Name        string      `yaml:"name"`
	Range       *int        `yaml:"range"`
	Order       []string    `yaml:"order"`
	Air         string      `yaml:"air"`
	Lava        string      `yaml:"lava"`
	LavaLevel   *int        `yaml:"lava_level"`
	Replaceable []string    `yaml:"replaceable"`
	Liquids     []string    `yaml:"liquids"`
	Dimensions  []int       `yaml:"dimensions"`
	Biomes      biomesDoc   `yaml:"biomes"`
	Tunnels     []tunnelDoc `yaml:"tunnels"`
	Ravines     []ravineDoc `yaml:"ravines"`
	Caverns     []cavernDoc `yaml:"caverns"`
}

type biomesDoc struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

type rangeDoc struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// decayDoc accepts either a bare number, read as a constant, or a mapping.
// Omitted exponent and factor default to 1.
type decayDoc struct {
	Exponent    float64 `yaml:"exponent"`
	Factor      float64 `yaml:"factor"`
	Jitter      float64 `yaml:"jitter"`
	Start       float64 `yaml:"start"`
	StartJitter float64 `yaml:"start_jitter"`
}

func (d *decayDoc) UnmarshalYAML(n *yaml.Node) error {
	*d = decayDoc{Exponent: 1, Factor: 1}
	if n.Kind == yaml.ScalarNode {
		return n.Decode(&d.Start)
	}
	type plain decayDoc
	return n.Decode((*plain)(d))
}

type noiseDoc struct {
	Type        string  `yaml:"type"`
	Seed        int64   `yaml:"seed"`
	Frequency   float64 `yaml:"frequency"`
	StretchY    float64 `yaml:"stretch_y"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Min         float64 `yaml:"min"`
	Max         float64 `yaml:"max"`
}

type carveRuleDoc struct {
	States []string  `yaml:"states"`
	Chance *float64  `yaml:"chance"`
	Height *rangeDoc `yaml:"height"`
	Noise  *noiseDoc `yaml:"noise"`
}

type decorationDoc struct {
	States     []string  `yaml:"states"`
	Matches    []string  `yaml:"matches"`
	Chance     *float64  `yaml:"chance"`
	Height     *rangeDoc `yaml:"height"`
	Directions []string  `yaml:"directions"`
	Mode       string    `yaml:"mode"`
	Noise      *noiseDoc `yaml:"noise"`
}

type rulesDoc struct {
	CaveBlocks      []carveRuleDoc  `yaml:"cave_blocks"`
	WallDecorators  []decorationDoc `yaml:"wall_decorators"`
	ShellDecorators []decorationDoc `yaml:"shell_decorators"`
}

type branchDoc struct {
	Enabled      bool `yaml:"enabled"`
	MaxDepth     int  `yaml:"max_depth"`
	InheritScale bool `yaml:"inherit_scale"`
}

type walkDoc struct {
	SeedOffset      int64     `yaml:"seed_offset"`
	Chance          float64   `yaml:"chance"`
	Height          rangeDoc  `yaml:"height"`
	SystemChance    float64   `yaml:"system_chance"`
	SystemDensity   int       `yaml:"system_density"`
	Length          int       `yaml:"length"`
	NoiseYReduction bool      `yaml:"noise_y_reduction"`
	Yaw             decayDoc  `yaml:"yaw"`
	Pitch           decayDoc  `yaml:"pitch"`
	TwistYaw        decayDoc  `yaml:"twist_yaw"`
	TwistPitch      decayDoc  `yaml:"twist_pitch"`
	Scale           decayDoc  `yaml:"scale"`
	Stretch         decayDoc  `yaml:"stretch"`
	ShellRadius     float64   `yaml:"shell_radius"`
	Branches        branchDoc `yaml:"branches"`
	Rules           rulesDoc  `yaml:"rules"`
	BranchRules     *rulesDoc `yaml:"branch_rules"`
}

type roomDoc struct {
	Chance  float64  `yaml:"chance"`
	Scale   decayDoc `yaml:"scale"`
	Stretch decayDoc `yaml:"stretch"`
}

type tunnelDoc struct {
	walkDoc   `yaml:",inline"`
	Frequency int     `yaml:"frequency"`
	Rooms     roomDoc `yaml:"rooms"`
}

type ravineDoc struct {
	walkDoc            `yaml:",inline"`
	CutoffStrength     float64   `yaml:"cutoff_strength"`
	WallNoise          *noiseDoc `yaml:"wall_noise"`
	WallNoiseAmplitude float64   `yaml:"wall_noise_amplitude"`
}

type cavernDoc struct {
	Height       rangeDoc   `yaml:"height"`
	Noise        []noiseDoc `yaml:"noise"`
	Walls        *noiseDoc  `yaml:"walls"`
	WallOffset   float64    `yaml:"wall_offset"`
	WallScale    float64    `yaml:"wall_scale"`
	BorderSearch int        `yaml:"border_search"`
	Rules        rulesDoc   `yaml:"rules"`
}

// decode unmarshals raw into a document. Unknown keys are caught earlier by
// the schema.
func decode(raw []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	return &doc, nil
}
