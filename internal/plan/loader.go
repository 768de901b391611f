package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form: one or more plans under a `plans` key.
type File struct {
	Plans []Plan `yaml:"plans"`
}

// LoadFile reads and validates the plans in a YAML file. Unknown keys are
// rejected so typos like `wait: 1000` don't silently drop a delay.
func LoadFile(path string) ([]Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided plan path is intentional
	if err != nil {
		return nil, err
	}
	plans, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plans, nil
}

func Parse(data []byte) ([]Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty plan file", ErrInvalidPlan)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("%w: no plans defined", ErrInvalidPlan)
	}

	seen := map[string]bool{}
	for _, p := range f.Plans {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate plan name %q", ErrInvalidPlan, p.Name)
		}
		seen[p.Name] = true
	}
	return f.Plans, nil
}
