// Package rewrite provides string-rewriting systems for the prover, such as
// Hofstadter's MIU puzzle.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/prover"
)

// System is a formal system over strings: starting strings plus rewrite rules.
type System struct {
	Name   string
	Axioms []string
	Rules  []prover.Rule[string]
	// MaxDepth is the depth bound the system is meant to be searched with.
	// Zero means prover.DefaultMaxDepth.
	MaxDepth int
}

// MIUMaxDepth bounds MIU searches. Rule 2 doubles the string, so the
// frontier grows exponentially with depth.
const MIUMaxDepth = 8

// Prover creates a prover for the system.
func (s System) Prover(opts ...prover.Option) *prover.Prover[string] {
	return prover.New(s.Axioms, s.Rules, opts...)
}

// MIU returns the MIU system: a single axiom "MI" and four rules.
//
//	1: xI  -> xIU
//	2: Mx  -> Mxx
//	3: III -> U    (first occurrence)
//	4: UU  ->      (first occurrence)
func MIU() System {
	return System{
		Name:     "miu",
		Axioms:   []string{"MI"},
		MaxDepth: MIUMaxDepth,
		Rules: []prover.Rule[string]{
			prover.NewRule("1", func(s string, _ *prover.Prover[string]) (string, error) {
				if !strings.HasSuffix(s, "I") {
					return "", prover.ErrNotApplicable
				}
				return s + "U", nil
			}),
			prover.NewRule("2", func(s string, _ *prover.Prover[string]) (string, error) {
				if !strings.HasPrefix(s, "M") {
					return "", prover.ErrNotApplicable
				}
				return s + s[1:], nil
			}),
			replaceFirst("3", "III", "U"),
			replaceFirst("4", "UU", ""),
		},
	}
}

func replaceFirst(name, old, repl string) prover.Rule[string] {
	return prover.NewRule(name, func(s string, _ *prover.Prover[string]) (string, error) {
		if !strings.Contains(s, old) {
			return "", prover.ErrNotApplicable
		}
		return strings.Replace(s, old, repl, 1), nil
	})
}

// PatternRule builds a rule that rewrites the first match of pattern with
// replace. replace may refer to submatches as $1 or ${name}. The rule is not
// applicable to strings the pattern does not match.
func PatternRule(name, pattern, replace string) (prover.Rule[string], error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return prover.Rule[string]{}, fmt.Errorf("%w: rule %q: %v", internalerr.ErrInvalidConfig, name, err)
	}

	return prover.NewRule(name, func(s string, _ *prover.Prover[string]) (string, error) {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			return "", prover.ErrNotApplicable
		}
		var out []byte
		out = append(out, s[:loc[0]]...)
		out = re.ExpandString(out, replace, s, loc)
		out = append(out, s[loc[1]:]...)
		return string(out), nil
	}), nil
}
