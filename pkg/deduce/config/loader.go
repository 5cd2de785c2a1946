package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/inference/simple"
	"github.com/cognicore/deduce/pkg/deduce/prover"
	"github.com/cognicore/deduce/pkg/deduce/rewrite"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	SystemPath string
	RulesPath  string
	DBPath     string
	// MaxDepth overrides the system file when positive
	MaxDepth int
	Logger   *zap.Logger
}

// Components holds all loaded configuration components
type Components struct {
	System    rewrite.System
	Inference *simple.Engine
	// MaxDepth bounds searches of System
	MaxDepth int
	// KBMaxDepth bounds knowledge-base searches
	KBMaxDepth int
	DBPath     string
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{
		MaxDepth:   prover.DefaultMaxDepth,
		KBMaxDepth: prover.DefaultMaxDepth,
		DBPath:     l.DBPath,
	}

	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Load rewrite system
	if l.SystemPath != "" {
		sf, err := LoadSystem(l.SystemPath)
		if err != nil {
			return nil, fmt.Errorf("load system: %w", err)
		}
		sys, err := sf.Build()
		if err != nil {
			return nil, fmt.Errorf("build system: %w", err)
		}
		comp.System = sys
	} else {
		comp.System = rewrite.MIU()
	}

	if comp.System.MaxDepth > 0 {
		comp.MaxDepth = comp.System.MaxDepth
	}

	if l.MaxDepth > 0 {
		comp.MaxDepth = l.MaxDepth
		comp.KBMaxDepth = l.MaxDepth
	}

	// Load relational rules
	comp.Inference = simple.New(simple.WithMaxDepth(comp.KBMaxDepth), simple.WithLogger(logger))
	if l.RulesPath != "" {
		data, err := os.ReadFile(l.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		if err := comp.Inference.LoadRules(string(data)); err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
	}

	return comp, nil
}
