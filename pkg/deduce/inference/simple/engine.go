package simple

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/inference"
	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/prover"
)

// Engine is a relational knowledge base whose queries are answered by the
// forward-chaining prover. Every stored fact doubles as a chaining rule:
// rel(y, z) turns rel(x, y) into rel(x, z). Clauses add relation rewrites.
type Engine struct {
	facts    []inference.Fact
	index    map[inference.Fact]struct{}
	clauses  []inference.Clause
	maxDepth int
	logger   *zap.Logger
}

var _ inference.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the depth bound used by Query and Explain.
func WithMaxDepth(d int) Option {
	return func(e *Engine) { e.maxDepth = d }
}

// WithLogger sets the logger handed to the prover.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a new simple inference engine
func New(opts ...Option) *Engine {
	e := &Engine{
		index:    make(map[inference.Fact]struct{}),
		maxDepth: prover.DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadRules loads facts and clauses from a simple rule file
// Format:
//
//	is_a(bert, transformer)
//	is_a(transformer, neural-network)
//	related_to(X, Y) :- is_a(X, Y)
//	# comments
func (e *Engine) LoadRules(rules string) error {
	scanner := bufio.NewScanner(strings.NewReader(rules))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if head, body, ok := strings.Cut(line, ":-"); ok {
			c, err := parseClause(head, body)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			if err := e.AddClause(c); err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			continue
		}

		fact, err := parseFact(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

		e.AddFact(fact.Relation, fact.Subject, fact.Object)
	}

	return scanner.Err()
}

// AddFact adds a fact to the knowledge base
func (e *Engine) AddFact(relation, subject, object string) {
	f := inference.Fact{Relation: relation, Subject: subject, Object: object}
	if _, ok := e.index[f]; ok {
		return
	}
	e.index[f] = struct{}{}
	e.facts = append(e.facts, f)
}

// AddClause adds a clause to the knowledge base
func (e *Engine) AddClause(c inference.Clause) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidInput, err)
	}
	for _, existing := range e.clauses {
		if existing == c {
			return fmt.Errorf("%w: %s", internalerr.ErrDuplicate, c)
		}
	}
	e.clauses = append(e.clauses, c)
	return nil
}

// Facts returns the stored facts in insertion order
func (e *Engine) Facts() []inference.Fact {
	return append([]inference.Fact(nil), e.facts...)
}

// Rules returns the prover rules derived from the knowledge base
func (e *Engine) Rules() []prover.Rule[inference.Fact] {
	rules := make([]prover.Rule[inference.Fact], 0, len(e.facts)+len(e.clauses))

	for _, link := range e.facts {
		link := link
		rules = append(rules, prover.NewRule(link.String(),
			func(f inference.Fact, _ *prover.Prover[inference.Fact]) (inference.Fact, error) {
				if f.Relation != link.Relation || f.Object != link.Subject {
					return inference.Fact{}, prover.ErrNotApplicable
				}
				return inference.Fact{Relation: f.Relation, Subject: f.Subject, Object: link.Object}, nil
			}))
	}

	for _, c := range e.clauses {
		c := c
		rules = append(rules, prover.NewRule(c.String(),
			func(f inference.Fact, _ *prover.Prover[inference.Fact]) (inference.Fact, error) {
				derived, ok := c.Apply(f)
				if !ok {
					return inference.Fact{}, prover.ErrNotApplicable
				}
				return derived, nil
			}))
	}

	return rules
}

// Prover creates a prover over the current knowledge base
func (e *Engine) Prover() *prover.Prover[inference.Fact] {
	return prover.New(e.facts, e.Rules(), prover.WithLogger(e.logger))
}

// Prove searches for a derivation of the given fact
func (e *Engine) Prove(target inference.Fact, maxDepth int) (prover.Result[inference.Fact], error) {
	return e.Prover().FindProof(target, maxDepth)
}

// Query checks if a relationship can be proven
func (e *Engine) Query(relation, subject, object string) (bool, error) {
	target := inference.Fact{Relation: relation, Subject: subject, Object: object}
	if _, ok := e.index[target]; ok {
		return true, nil
	}

	res, err := e.Prove(target, e.maxDepth)
	if err != nil {
		return false, err
	}
	return res.Found(), nil
}

// FindPath finds an inference chain from subject to object
func (e *Engine) FindPath(subject, object string, maxDepth int) ([]inference.Step, error) {
	p, res, err := e.PathProof(subject, object, maxDepth)
	if err != nil || !res.Found() {
		return nil, err
	}
	return Steps(p, res.Theorem)
}

// PathProof searches for rel(subject, object) for every known relation in
// name order and returns the first proof found. When none is found the
// status is DepthExceeded if any search was cut off, Exhausted otherwise.
func (e *Engine) PathProof(subject, object string, maxDepth int) (*prover.Prover[inference.Fact], prover.Result[inference.Fact], error) {
	p := e.Prover()
	best := prover.Result[inference.Fact]{Status: prover.Exhausted}

	for _, rel := range e.relations() {
		target := inference.Fact{Relation: rel, Subject: subject, Object: object}
		res, err := p.FindProof(target, maxDepth)
		if err != nil {
			return p, res, err
		}
		if res.Found() {
			return p, res, nil
		}
		if res.Status == prover.DepthExceeded {
			best.Status = prover.DepthExceeded
		}
		best.Rounds = max(best.Rounds, res.Rounds)
		best.Explored = max(best.Explored, res.Explored)
	}

	return p, best, nil
}

func (e *Engine) relations() []string {
	seen := make(map[string]struct{})
	for _, f := range e.facts {
		seen[f.Relation] = struct{}{}
	}
	for _, c := range e.clauses {
		seen[c.Head.Relation] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for rel := range seen {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// Steps replays a proof into inference steps, starting with the known fact
func Steps(p *prover.Prover[inference.Fact], th prover.Theorem[inference.Fact]) ([]inference.Step, error) {
	facts, err := th.Trace(p)
	if err != nil {
		return nil, err
	}
	names := th.RuleNames()

	steps := make([]inference.Step, len(facts))
	for i, f := range facts {
		steps[i] = inference.Step{
			Relation: f.Relation,
			From:     f.Subject,
			To:       f.Object,
			Depth:    i,
		}
		if i > 0 {
			steps[i].Rule = names[i-1]
		}
	}
	return steps, nil
}

// Explain generates a human-readable explanation
func (e *Engine) Explain(relation, subject, object string) string {
	target := inference.Fact{Relation: relation, Subject: subject, Object: object}
	if _, ok := e.index[target]; ok {
		return fmt.Sprintf("%s is directly known", target)
	}

	p := e.Prover()
	res, err := p.FindProof(target, e.maxDepth)
	if err != nil {
		return fmt.Sprintf("Cannot prove %s: %v", target, err)
	}
	switch res.Status {
	case prover.Exhausted:
		return fmt.Sprintf("Cannot prove %s: not derivable from the knowledge base", target)
	case prover.DepthExceeded:
		return fmt.Sprintf("Cannot prove %s within %d steps", target, e.maxDepth)
	}

	steps, err := Steps(p, res.Theorem)
	if err != nil {
		return fmt.Sprintf("Cannot prove %s: %v", target, err)
	}

	var explanation strings.Builder
	explanation.WriteString(fmt.Sprintf("Inference chain for %s:\n", target))
	for i, step := range steps {
		fact := inference.Fact{Relation: step.Relation, Subject: step.From, Object: step.To}
		if step.Rule == "" {
			explanation.WriteString(fmt.Sprintf("  %d. %s (known)\n", i+1, fact))
			continue
		}
		explanation.WriteString(fmt.Sprintf("  %d. %s by %s\n", i+1, fact, step.Rule))
	}
	return explanation.String()
}

// parseFact parses "relation(subject, object)" format
func parseFact(line string) (inference.Fact, error) {
	openParen := strings.Index(line, "(")
	if openParen == -1 {
		return inference.Fact{}, fmt.Errorf("missing '(': %s", line)
	}

	relation := strings.TrimSpace(line[:openParen])

	closeParen := strings.Index(line[openParen:], ")")
	if closeParen == -1 {
		return inference.Fact{}, fmt.Errorf("missing ')' after '(': %s", line)
	}
	closeParen += openParen

	args := line[openParen+1 : closeParen]
	parts := strings.Split(args, ",")
	if len(parts) != 2 {
		return inference.Fact{}, fmt.Errorf("expected 2 arguments, got %d: %s", len(parts), line)
	}

	return inference.Fact{
		Relation: relation,
		Subject:  strings.TrimSpace(parts[0]),
		Object:   strings.TrimSpace(parts[1]),
	}, nil
}

// parseClause parses "head(X, Y) :- body(X, Y)"
func parseClause(head, body string) (inference.Clause, error) {
	h, err := parseFact(strings.TrimSpace(head))
	if err != nil {
		return inference.Clause{}, fmt.Errorf("clause head: %w", err)
	}
	b, err := parseFact(strings.TrimSpace(body))
	if err != nil {
		return inference.Clause{}, fmt.Errorf("clause body: %w", err)
	}
	return inference.Clause{Head: h, Body: b}, nil
}
