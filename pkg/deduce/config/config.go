package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/prover"
	"github.com/cognicore/deduce/pkg/deduce/rewrite"
)

// SystemFile represents a rewrite system definition
//
//	name: miu
//	max_depth: 8
//	axioms: [MI]
//	rules:
//	  - name: "1"
//	    pattern: "^(.*I)$"
//	    replace: "${1}U"
type SystemFile struct {
	Name     string     `yaml:"name"`
	MaxDepth int        `yaml:"max_depth"`
	Axioms   []string   `yaml:"axioms"`
	Rules    []RuleSpec `yaml:"rules"`
}

// RuleSpec is a single pattern rewrite rule
type RuleSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// LoadSystem loads a rewrite system from a YAML file
func LoadSystem(path string) (*SystemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseSystem(data)
}

// ParseSystem parses a rewrite system from YAML
func ParseSystem(data []byte) (*SystemFile, error) {
	var sf SystemFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	return &sf, nil
}

// Build validates the definition and compiles its rules
func (sf *SystemFile) Build() (rewrite.System, error) {
	if len(sf.Axioms) == 0 {
		return rewrite.System{}, fmt.Errorf("%w: system %q has no axioms", internalerr.ErrInvalidConfig, sf.Name)
	}
	if sf.MaxDepth < 0 {
		return rewrite.System{}, fmt.Errorf("%w: negative max_depth %d", internalerr.ErrInvalidConfig, sf.MaxDepth)
	}

	seen := make(map[string]bool, len(sf.Rules))
	rules := make([]prover.Rule[string], 0, len(sf.Rules))
	for i, spec := range sf.Rules {
		if spec.Name == "" {
			return rewrite.System{}, fmt.Errorf("%w: rule %d has no name", internalerr.ErrInvalidConfig, i+1)
		}
		if seen[spec.Name] {
			return rewrite.System{}, fmt.Errorf("%w: duplicate rule name %q", internalerr.ErrInvalidConfig, spec.Name)
		}
		seen[spec.Name] = true

		r, err := rewrite.PatternRule(spec.Name, spec.Pattern, spec.Replace)
		if err != nil {
			return rewrite.System{}, err
		}
		rules = append(rules, r)
	}

	name := sf.Name
	if name == "" {
		name = "custom"
	}

	return rewrite.System{
		Name:     name,
		Axioms:   append([]string(nil), sf.Axioms...),
		Rules:    rules,
		MaxDepth: sf.MaxDepth,
	}, nil
}
