package prover

import (
	"errors"
	"fmt"
	"strings"
)

// chain is a persistent list of applied rules. Each node points at its
// parent, so sibling derivations share their common prefix and extending a
// chain never touches the nodes it extends.
type chain[F comparable] struct {
	rule   Rule[F]
	parent *chain[F]
	length int
}

func (c *chain[F]) push(r Rule[F]) *chain[F] {
	n := 1
	if c != nil {
		n = c.length + 1
	}
	return &chain[F]{rule: r, parent: c, length: n}
}

func (c *chain[F]) len() int {
	if c == nil {
		return 0
	}
	return c.length
}

// Theorem is a derivation: a result fact together with the axiom it was
// derived from and the rules applied, in order, to get there.
// The zero value is not a valid theorem; use NewAxiom.
type Theorem[F comparable] struct {
	axiom  F
	result F
	rules  *chain[F]
}

// NewAxiom returns the zero-step theorem for a starting fact.
func NewAxiom[F comparable](fact F) Theorem[F] {
	return Theorem[F]{axiom: fact, result: fact}
}

// Axiom returns the fact the derivation started from.
func (t Theorem[F]) Axiom() F { return t.axiom }

// Result returns the derived fact.
func (t Theorem[F]) Result() F { return t.result }

// Len returns the number of rules applied.
func (t Theorem[F]) Len() int { return t.rules.len() }

// Rules returns the applied rules, first to last. The slice is freshly
// allocated on each call.
func (t Theorem[F]) Rules() []Rule[F] {
	out := make([]Rule[F], t.rules.len())
	for c := t.rules; c != nil; c = c.parent {
		out[c.length-1] = c.rule
	}
	return out
}

// RuleNames returns the names of the applied rules, first to last.
func (t Theorem[F]) RuleNames() []string {
	rules := t.Rules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// String renders the theorem as "axiom [r1 r2] => result".
func (t Theorem[F]) String() string {
	return fmt.Sprintf("%v [%s] => %v", t.axiom, strings.Join(t.RuleNames(), " "), t.result)
}

// ApplyRule derives one new theorem by applying r to the result of t.
// The returned slice holds exactly one theorem, or none when the rule is
// not applicable. Any other rule error is returned as is.
func (t Theorem[F]) ApplyRule(p *Prover[F], r Rule[F]) ([]Theorem[F], error) {
	next, err := r.Apply(t.result, p)
	if err != nil {
		if errors.Is(err, ErrNotApplicable) {
			return nil, nil
		}
		return nil, err
	}
	return []Theorem[F]{{
		axiom:  t.axiom,
		result: next,
		rules:  t.rules.push(r),
	}}, nil
}

// ApplyRules applies each rule independently to t. Results follow the order
// of rules and are not deduplicated.
func (t Theorem[F]) ApplyRules(p *Prover[F], rules []Rule[F]) ([]Theorem[F], error) {
	theorems := make([]Theorem[F], 0, len(rules))
	for _, r := range rules {
		derived, err := t.ApplyRule(p, r)
		if err != nil {
			return nil, fmt.Errorf("rule %s on %v: %w", r.Name, t.result, err)
		}
		theorems = append(theorems, derived...)
	}
	return theorems, nil
}

// Trace replays the derivation against p and returns every intermediate
// fact, starting with the axiom and ending with the result.
func (t Theorem[F]) Trace(p *Prover[F]) ([]F, error) {
	facts := make([]F, 0, t.Len()+1)
	fact := t.axiom
	facts = append(facts, fact)
	for _, r := range t.Rules() {
		next, err := r.Apply(fact, p)
		if err != nil {
			return facts, fmt.Errorf("replay rule %s on %v: %w", r.Name, fact, err)
		}
		fact = next
		facts = append(facts, fact)
	}
	return facts, nil
}
