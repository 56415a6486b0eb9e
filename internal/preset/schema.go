package preset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "https://cavegen.local/schemas/preset.schema.json"

//go:embed preset.schema.json
var schemaJSON string

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Schema returns the JSON Schema presets are validated against.
func Schema() []byte {
	return []byte(schemaJSON)
}

// validateSchema checks raw YAML against the preset schema. The YAML is
// re-encoded as JSON first so numbers reach the validator as json.Number.
func validateSchema(raw []byte) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile preset schema: %w", err)
	}

	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode preset: %w", err)
	}
	js, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("re-encode preset: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("re-decode preset: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("preset does not match schema: %w", err)
	}
	return nil
}
