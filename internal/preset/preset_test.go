package preset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OCharnyshevich/cavegen/pkg/world/carve"
	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

func mustState(t *testing.T, s string) uint16 {
	t.Helper()
	st, err := gen.ParseState(s)
	if err != nil {
		t.Fatalf("ParseState(%q): %v", s, err)
	}
	return st
}

func TestDefault(t *testing.T) {
	p := Default()
	cp := p.Carve
	if cp.Name != "vanilla" {
		t.Errorf("Name = %q, want vanilla", cp.Name)
	}
	if cp.Range != 8 {
		t.Errorf("Range = %d, want 8", cp.Range)
	}
	if cp.LavaLevel != 10 {
		t.Errorf("LavaLevel = %d, want 10", cp.LavaLevel)
	}
	if cp.Air != 0 || cp.Lava != mustState(t, "lava") {
		t.Errorf("Air, Lava = %d, %d, want 0, %d", cp.Air, cp.Lava, mustState(t, "lava"))
	}
	if len(cp.Tunnels) != 1 || len(cp.Ravines) != 1 || len(cp.Caverns) != 0 {
		t.Fatalf("features = %d/%d/%d, want 1/1/0", len(cp.Tunnels), len(cp.Ravines), len(cp.Caverns))
	}

	tun := cp.Tunnels[0]
	if tun.Frequency != 15 {
		t.Errorf("Frequency = %d, want 15", tun.Frequency)
	}
	if tun.Stretch != carve.Constant(1) {
		t.Errorf("Stretch = %+v, want Constant(1)", tun.Stretch)
	}
	want := carve.Decay{Exponent: 1, Factor: 0.75, Jitter: 4}
	if tun.TwistYaw != want {
		t.Errorf("TwistYaw = %+v, want %+v", tun.TwistYaw, want)
	}
	if tun.Pitch != (carve.Decay{Exponent: 1, Factor: 1, StartJitter: 0.125}) {
		t.Errorf("Pitch = %+v", tun.Pitch)
	}
	if !tun.Branches.Enabled || tun.Branches.MaxDepth != 4 {
		t.Errorf("Branches = %+v, want enabled depth 4", tun.Branches)
	}
	if tun.SeedOffset != 0 || cp.Ravines[0].SeedOffset != 0 {
		t.Errorf("seed offsets = %d, %d, want 0, 0 (classic carvers share the world seed)", tun.SeedOffset, cp.Ravines[0].SeedOffset)
	}
	if len(p.Dimensions) != 1 || p.Dimensions[0] != 0 {
		t.Errorf("Dimensions = %v, want [0]", p.Dimensions)
	}

	if _, err := carve.New(cp, carve.Env{World: p.Filter(nil)}); err != nil {
		t.Fatalf("carve.New(Default()): %v", err)
	}
}

func TestLoadTestdata(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "flooded.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cp := p.Carve
	if got := cp.Order; len(got) != 2 || got[0] != carve.KindCaverns || got[1] != carve.KindTunnels {
		t.Errorf("Order = %v, want [caverns tunnels]", got)
	}
	if cp.Range != 4 || cp.LavaLevel != 0 {
		t.Errorf("Range, LavaLevel = %d, %d, want 4, 0", cp.Range, cp.LavaLevel)
	}
	if cp.Lava != mustState(t, "lava") {
		t.Errorf("Lava = %d, want default lava", cp.Lava)
	}

	rules := cp.Tunnels[0].Rules
	if len(rules.CaveBlocks) != 1 || rules.CaveBlocks[0].Chance != 1 {
		t.Fatalf("cave blocks = %+v, want one rule with chance 1", rules.CaveBlocks)
	}
	if h := rules.CaveBlocks[0].Height; h != (carve.Range{Min: 1, Max: 30}) {
		t.Errorf("cave block height = %+v", h)
	}
	side := rules.WallDecorators[0]
	if side.Directions != carve.Side || side.Mode != carve.Embed || side.Chance != 0.3 {
		t.Errorf("side decorator = %+v", side)
	}
	if h := side.Height; h != (carve.Range{Min: 0, Max: 255}) {
		t.Errorf("default height = %+v, want 0..255", h)
	}
	if d := rules.WallDecorators[1].Directions; d != carve.Down {
		t.Errorf("floor decorator directions = %v, want Down", d)
	}
	if len(rules.ShellDecorators) != 1 {
		t.Errorf("shell decorators = %d, want 1", len(rules.ShellDecorators))
	}
	if br := cp.Tunnels[0].BranchRules; br == nil || br.CaveBlocks[0].States[0] != mustState(t, "glass") {
		t.Errorf("BranchRules = %+v, want glass", br)
	}

	cav := cp.Caverns[0]
	if len(cav.Noise) != 1 || cav.Walls == nil {
		t.Fatalf("cavern noise = %d, walls = %v", len(cav.Noise), cav.Walls)
	}
	if cav.BorderSearch != 16 || cav.WallScale != 6 {
		t.Errorf("cavern = %+v", cav)
	}

	if _, err := carve.New(cp, carve.Env{World: p.Filter(gen.NewBiomeGenerator(1))}); err != nil {
		t.Fatalf("carve.New: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	base := "name: x\nreplaceable: [stone]\n"
	tunnel := "tunnels:\n  - chance: 0.5\n    frequency: 4\n    height: {min: 10, max: 40}\n"

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "schema"},
		{"missing name", "replaceable: [stone]\n", "schema"},
		{"unknown key", base + "caves: true\n", "schema"},
		{"range too big", base + "range: 40\n", "schema"},
		{"bad order", base + "order: [tunnels, mines]\n", "schema"},
		{"chance above one", base + strings.Replace(tunnel, "0.5", "1.5", 1), "schema"},
		{"unknown tunnel key", base + tunnel + "    depth: 3\n", "schema"},
		{"huge frequency", base + strings.Replace(tunnel, "frequency: 4", "frequency: 3221225472", 1), "schema"},
		{"huge length", base + tunnel + "    length: 100000\n", "schema"},
		{"deep branches", base + tunnel + "    branches: {enabled: true, max_depth: 40}\n", "schema"},
		{"unknown block", "name: x\nreplaceable: [unobtainium]\n", "unknown block"},
		{"bad metadata", "name: x\nreplaceable: [stone:99]\n", "metadata"},
		{"unknown biome", base + "biomes: {deny: [moon]}\n", "unknown biome"},
		{"inverted height", base + strings.Replace(tunnel, "min: 10", "min: 90", 1), "inverted"},
		{"branches without depth", base + tunnel + "    branches: {enabled: true}\n", "branch depth"},
		{"cavern shell", base + "caverns:\n  - height: {min: 1, max: 9}\n    noise: [{frequency: 0.1}]\n    rules: {shell_decorators: [{states: [glass], matches: [stone]}]}\n", "shell"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestDecayForms(t *testing.T) {
	doc := `name: x
replaceable: [stone]
tunnels:
  - chance: 1
    frequency: 1
    height: {min: 10, max: 20}
    scale: 2.5
    twist_yaw: {jitter: 3}
`
	p, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tun := p.Carve.Tunnels[0]
	if tun.Scale != carve.Constant(2.5) {
		t.Errorf("scalar decay = %+v, want Constant(2.5)", tun.Scale)
	}
	if want := (carve.Decay{Exponent: 1, Factor: 1, Jitter: 3}); tun.TwistYaw != want {
		t.Errorf("mapping decay = %+v, want %+v", tun.TwistYaw, want)
	}
	if tun.Yaw != carve.Constant(0) {
		t.Errorf("omitted decay = %+v, want Constant(0)", tun.Yaw)
	}
}

type fixedBiomes byte

func (b fixedBiomes) BiomeAt(int, int) byte { return byte(b) }

func TestFilter(t *testing.T) {
	tests := []struct {
		name        string
		allow, deny []byte
		biome       byte
		want        bool
	}{
		{"open", nil, nil, 3, true},
		{"denied", nil, []byte{0}, 0, false},
		{"not denied", nil, []byte{0}, 1, true},
		{"allowed", []byte{1, 2}, nil, 2, true},
		{"not allowed", []byte{1, 2}, nil, 4, false},
		{"deny wins", []byte{1}, []byte{1}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter([]int{0}, tt.allow, tt.deny, fixedBiomes(tt.biome))
			if got := f.TestBiomeAt(5, -5); got != tt.want {
				t.Errorf("TestBiomeAt = %v, want %v", got, tt.want)
			}
		})
	}

	f := NewFilter([]int{0, -1}, nil, []byte{0}, nil)
	if !f.TestBiomeAt(0, 0) {
		t.Error("nil biome source should allow every column")
	}
	if !f.TestDimension(-1) || f.TestDimension(1) {
		t.Error("TestDimension does not follow the dimension list")
	}
}

func TestLoadDirAndFetch(t *testing.T) {
	src := t.TempDir()
	raw, err := os.ReadFile(filepath.Join("testdata", "flooded.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "b.yaml"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a.yaml"), vanillaYAML, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "presets")
	if err := Fetch(context.Background(), src, dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	ps, err := LoadDir(dst)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("loaded %d presets, want 2", len(ps))
	}
	if ps[0].Carve.Name != "vanilla" || ps[1].Carve.Name != "flooded" {
		t.Errorf("names = %q, %q, want vanilla, flooded", ps[0].Carve.Name, ps[1].Carve.Name)
	}
}

func TestSchemaIsJSON(t *testing.T) {
	if _, err := schema(); err != nil {
		t.Fatalf("schema does not compile: %v", err)
	}
	if !strings.Contains(string(Schema()), `"$defs"`) {
		t.Error("Schema() is missing $defs")
	}
}

func TestDigest(t *testing.T) {
	a, b := Default(), Default()
	if a.Digest == "" || a.Digest != b.Digest {
		t.Errorf("Digest = %q and %q, want equal and non-empty", a.Digest, b.Digest)
	}
	p, err := Load(filepath.Join("testdata", "flooded.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Digest == a.Digest {
		t.Error("different presets share a digest")
	}
}
