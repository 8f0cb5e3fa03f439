package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/gongwen/internal/extract"
	"github.com/dgallion1/gongwen/internal/heading"
	"github.com/dgallion1/gongwen/internal/layout"
)

// Policy is the layout-heuristics file. Unset values keep their defaults.
type Policy struct {
	Heading heading.Policy  `yaml:"heading"`
	Extract extract.Options `yaml:"extract"`
}

// DefaultPolicy returns the stock heuristics.
func DefaultPolicy() Policy {
	return Policy{Heading: heading.DefaultPolicy(), Extract: extract.DefaultOptions()}
}

// LoadPolicy reads a policy file. An empty path yields the defaults.
func LoadPolicy(path string) (Policy, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read layout policy %s: %w", path, err)
	}
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse layout policy %s: %w", path, err)
	}
	p.Heading = p.Heading.WithDefaults()
	p.Extract = p.Extract.WithDefaults()
	if p.Heading.ShortMaxChars > p.Heading.LongMaxChars {
		return Policy{}, fmt.Errorf("layout policy %s: short_max_chars %d exceeds long_max_chars %d",
			path, p.Heading.ShortMaxChars, p.Heading.LongMaxChars)
	}
	return p, nil
}

// Engine builds a layout engine from the policy.
func (p Policy) Engine() *layout.Engine {
	return layout.New(p.Heading, p.Extract)
}
