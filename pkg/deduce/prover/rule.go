// Package prover implements a forward-chaining theorem prover.
//
// Starting from a set of axioms, the prover applies every rule to every known
// derivation, round after round, until the target fact shows up, no rule
// produces anything new (fixpoint), or the depth bound is exceeded. The
// winning derivation records the axiom it started from and the ordered rules
// that led to the target.
package prover

import "errors"

// ErrNotApplicable marks a rule that does not apply to the fact it was given.
// Rules should return it (or wrap it) instead of failing the search.
var ErrNotApplicable = errors.New("rule not applicable")

// RuleFunc derives a new fact from an existing one. The prover running the
// search is passed through so rules can consult its axioms or rule set.
type RuleFunc[F comparable] func(fact F, p *Prover[F]) (F, error)

// Rule is a named transformation from one fact to another.
type Rule[F comparable] struct {
	Name  string
	Apply RuleFunc[F]
}

// NewRule creates a rule
func NewRule[F comparable](name string, fn RuleFunc[F]) Rule[F] {
	return Rule[F]{Name: name, Apply: fn}
}

// String returns the rule name
func (r Rule[F]) String() string {
	return r.Name
}
