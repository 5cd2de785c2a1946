package prover

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxDepth is the depth bound used by Prove.
const DefaultMaxDepth = 100

// Status tells how a search ended.
type Status int

const (
	// Aborted means a rule failed and the search stopped without an answer.
	Aborted Status = iota
	// Found means the target was derived.
	Found
	// Exhausted means a round produced no new fact; the target is unreachable
	// under the rule set.
	Exhausted
	// DepthExceeded means the search was cut off by the depth bound; the
	// target may still be reachable with a larger bound.
	DepthExceeded
)

func (s Status) String() string {
	switch s {
	case Aborted:
		return "aborted"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	case DepthExceeded:
		return "depth_exceeded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of a search.
type Result[F comparable] struct {
	Status Status
	// Theorem is the winning derivation. Only set when Status is Found.
	Theorem Theorem[F]
	// Rounds is the number of expansion rounds evaluated.
	Rounds int
	// Explored is the number of distinct facts known when the search ended.
	Explored int
}

// Found reports whether the target was derived.
func (r Result[F]) Found() bool { return r.Status == Found }

type options struct {
	logger *zap.Logger
}

// Option configures a Prover.
type Option func(*options)

// WithLogger sets the logger used to trace search rounds.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Prover holds a fixed set of axioms and rules. It keeps no state between
// searches and is safe for concurrent use when its rules are.
type Prover[F comparable] struct {
	axioms []Theorem[F]
	rules  []Rule[F]
	logger *zap.Logger
}

// New creates a prover for the given axioms and rules. Both slices are copied.
func New[F comparable](axioms []F, rules []Rule[F], opts ...Option) *Prover[F] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ax := make([]Theorem[F], len(axioms))
	for i, a := range axioms {
		ax[i] = NewAxiom(a)
	}

	return &Prover[F]{
		axioms: ax,
		rules:  append([]Rule[F](nil), rules...),
		logger: o.logger,
	}
}

// Axioms returns the starting facts.
func (p *Prover[F]) Axioms() []F {
	out := make([]F, len(p.axioms))
	for i, a := range p.axioms {
		out[i] = a.Result()
	}
	return out
}

// Rules returns a copy of the rule set.
func (p *Prover[F]) Rules() []Rule[F] {
	return append([]Rule[F](nil), p.rules...)
}

// Prove searches for target with DefaultMaxDepth.
func (p *Prover[F]) Prove(target F) (Result[F], error) {
	return p.FindProof(target, DefaultMaxDepth)
}

// FindProof searches breadth-first for a derivation of target.
//
// Each round checks the frontier for the target, stops when the depth exceeds
// maxDepth, then applies every rule to every theorem in the frontier. If the
// new theorems add no fact the frontier did not already hold, the search is
// exhausted. Otherwise the frontier absorbs the new facts, keeping the
// earlier derivation whenever two reach the same fact.
//
// A rule error other than ErrNotApplicable aborts the search.
func (p *Prover[F]) FindProof(target F, maxDepth int) (Result[F], error) {
	frontier := append([]Theorem[F](nil), p.axioms...)
	frontier = RemoveDuplicateBy(Theorem[F].Result, frontier)

	for depth := 0; ; depth++ {
		if t, ok := Find(func(t Theorem[F]) bool { return t.Result() == target }, frontier); ok {
			p.logger.Debug("proof found",
				zap.Int("depth", depth),
				zap.Int("steps", t.Len()),
				zap.Int("frontier", len(frontier)))
			return Result[F]{Status: Found, Theorem: t, Rounds: depth, Explored: len(frontier)}, nil
		}

		if depth > maxDepth {
			p.logger.Debug("depth bound exceeded",
				zap.Int("max_depth", maxDepth),
				zap.Int("frontier", len(frontier)))
			return Result[F]{Status: DepthExceeded, Rounds: depth, Explored: len(frontier)}, nil
		}

		expanded := make([][]Theorem[F], 0, len(frontier))
		for _, t := range frontier {
			derived, err := t.ApplyRules(p, p.rules)
			if err != nil {
				return Result[F]{Status: Aborted, Rounds: depth}, fmt.Errorf("round %d: %w", depth, err)
			}
			expanded = append(expanded, derived)
		}
		candidates := Flatten(expanded)

		known := make(map[F]struct{}, len(frontier))
		for _, t := range frontier {
			known[t.Result()] = struct{}{}
		}
		fresh := 0
		for _, t := range candidates {
			if _, ok := known[t.Result()]; !ok {
				known[t.Result()] = struct{}{}
				fresh++
			}
		}

		p.logger.Debug("round expanded",
			zap.Int("depth", depth),
			zap.Int("frontier", len(frontier)),
			zap.Int("candidates", len(candidates)),
			zap.Int("new_facts", fresh))

		if fresh == 0 {
			return Result[F]{Status: Exhausted, Rounds: depth + 1, Explored: len(frontier)}, nil
		}

		frontier = MergeTheoremLists(frontier, candidates)
	}
}
