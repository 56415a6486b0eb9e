package preset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
)

// Fetch downloads a preset pack from src into dir, replacing what is there.
// src is any go-getter address, for example
// "git::https://example.com/presets.git//overworld".
func Fetch(ctx context.Context, src, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	c := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dir,
		Mode: getter.ClientModeDir,
	}
	if err := c.Get(); err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	return nil
}

// LoadDir loads every *.yaml preset in dir, sorted by file name.
func LoadDir(dir string) ([]*Preset, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	var out []*Preset
	for _, p := range paths {
		ps, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, nil
}
