package inference

import (
	"fmt"
	"strings"
)

// Engine answers relational queries over a knowledge base of facts and
// clauses, producing proofs rather than bare yes/no answers.
type Engine interface {
	// LoadRules loads facts and clauses from text
	LoadRules(rules string) error

	// AddFact adds a single fact to the knowledge base
	// Example: AddFact("is_a", "bert", "transformer")
	AddFact(relation, subject, object string)

	// AddClause adds a clause such as related_to(X, Y) :- is_a(X, Y)
	AddClause(c Clause) error

	// Query asks if a relationship can be proven
	Query(relation, subject, object string) (bool, error)

	// FindPath finds a chain of inferences connecting subject to object
	// Returns an empty slice if no path exists within maxDepth
	FindPath(subject, object string, maxDepth int) ([]Step, error)

	// Explain generates a human-readable explanation of an inference
	Explain(relation, subject, object string) string
}

// Step represents one inference step in a proof
type Step struct {
	Relation string // "is_a", "used_for", "related_to"
	From     string // subject
	To       string // object
	Depth    int    // position in the proof, 0 for the starting fact
	Rule     string // which rule was applied, empty for the starting fact
}

// Fact represents a basic assertion
type Fact struct {
	Relation string
	Subject  string
	Object   string
}

func (f Fact) String() string {
	return fmt.Sprintf("%s(%s, %s)", f.Relation, f.Subject, f.Object)
}

// Clause derives its head from its body.
// Subject and Object of Head and Body hold variable names.
// Example: related_to(X, Y) :- is_a(X, Y)
type Clause struct {
	Head Fact
	Body Fact
}

func (c Clause) String() string {
	return c.Head.String() + " :- " + c.Body.String()
}

// IsVariable reports whether a clause argument names a variable.
func IsVariable(arg string) bool {
	if arg == "" {
		return false
	}
	c := arg[0]
	return c == '_' || (c >= 'A' && c <= 'Z')
}

// Validate checks that every head variable is bound by the body.
func (c Clause) Validate() error {
	for _, arg := range []string{c.Body.Subject, c.Body.Object} {
		if !IsVariable(arg) {
			return fmt.Errorf("clause %s: body argument %q is not a variable", c, arg)
		}
	}
	if c.Body.Subject == c.Body.Object {
		return fmt.Errorf("clause %s: body variables must differ", c)
	}
	for _, arg := range []string{c.Head.Subject, c.Head.Object} {
		if arg != c.Body.Subject && arg != c.Body.Object {
			return fmt.Errorf("clause %s: head variable %q is unbound", c, arg)
		}
	}
	if strings.TrimSpace(c.Head.Relation) == "" || strings.TrimSpace(c.Body.Relation) == "" {
		return fmt.Errorf("clause %s: missing relation", c)
	}
	return nil
}

// Apply derives the head fact from a fact matching the body relation.
func (c Clause) Apply(f Fact) (Fact, bool) {
	if f.Relation != c.Body.Relation {
		return Fact{}, false
	}
	bind := map[string]string{
		c.Body.Subject: f.Subject,
		c.Body.Object:  f.Object,
	}
	return Fact{
		Relation: c.Head.Relation,
		Subject:  bind[c.Head.Subject],
		Object:   bind[c.Head.Object],
	}, true
}
