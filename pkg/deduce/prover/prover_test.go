package prover

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func TestFindProofAlreadyAxiom(t *testing.T) {
	p := New([]int{1}, []Rule[int]{increment()})

	res, err := p.FindProof(1, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if res.Status != Found {
		t.Fatalf("Status = %v, want found", res.Status)
	}
	if res.Theorem.Result() != 1 || res.Theorem.Len() != 0 {
		t.Errorf("Expected zero-step proof, got %v", res.Theorem)
	}
	if res.Rounds != 0 {
		t.Errorf("Rounds = %d, want 0", res.Rounds)
	}
}

func TestFindProofReachable(t *testing.T) {
	p := New([]int{0}, []Rule[int]{increment()})

	res, err := p.FindProof(3, 3)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if !res.Found() {
		t.Fatalf("Status = %v, want found", res.Status)
	}
	if res.Theorem.Result() != 3 {
		t.Errorf("Result = %d, want 3", res.Theorem.Result())
	}
	if diff := cmp.Diff([]string{"increment", "increment", "increment"}, res.Theorem.RuleNames()); diff != "" {
		t.Errorf("rules (-want +got):\n%s", diff)
	}
}

func TestFindProofUnreachableHitsDepth(t *testing.T) {
	p := New([]int{0}, []Rule[int]{increment()})

	res, err := p.FindProof(-1, 10)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if res.Status != DepthExceeded {
		t.Fatalf("Status = %v, want depth_exceeded", res.Status)
	}
	if res.Rounds != 11 {
		t.Errorf("Rounds = %d, want 11", res.Rounds)
	}
	if res.Explored != 12 {
		t.Errorf("Explored = %d, want 12", res.Explored)
	}
}

func TestFindProofFixpoint(t *testing.T) {
	p := New([]int{0}, []Rule[int]{identity()})

	res, err := p.FindProof(1, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if res.Status != Exhausted {
		t.Fatalf("Status = %v, want exhausted", res.Status)
	}
	if res.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", res.Rounds)
	}
}

func TestFindProofSaturatingRules(t *testing.T) {
	mod5 := NewRule("inc-mod-5", func(n int, _ *Prover[int]) (int, error) { return (n + 1) % 5, nil })
	p := New([]int{0}, []Rule[int]{mod5})

	res, err := p.FindProof(7, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if res.Status != Exhausted {
		t.Fatalf("Status = %v, want exhausted", res.Status)
	}
	if res.Explored != 5 {
		t.Errorf("Explored = %d, want 5", res.Explored)
	}
}

func TestFindProofPrefersEarlierDerivation(t *testing.T) {
	p := New([]int{1}, []Rule[int]{double(), increment()})

	// 4 is reachable as 1*2*2, as 1+1+1+1 and as (1+1)*2; the first-found
	// derivation at the shallowest depth wins.
	res, err := p.FindProof(4, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if diff := cmp.Diff([]string{"double", "double"}, res.Theorem.RuleNames()); diff != "" {
		t.Errorf("rules (-want +got):\n%s", diff)
	}
}

func TestFindProofSkipsInapplicableRules(t *testing.T) {
	halve := NewRule("halve", func(n int, _ *Prover[int]) (int, error) {
		if n%2 != 0 {
			return 0, ErrNotApplicable
		}
		return n / 2, nil
	})
	p := New([]int{12}, []Rule[int]{halve})

	res, err := p.FindProof(3, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if !res.Found() || res.Theorem.Len() != 2 {
		t.Errorf("Expected 12 -> 6 -> 3, got %v", res.Theorem)
	}

	res, err = p.FindProof(1, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if res.Status != Exhausted {
		t.Errorf("Status = %v, want exhausted once 3 cannot be halved", res.Status)
	}
}

func TestFindProofRuleErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	failAt := NewRule("fail-at-2", func(n int, _ *Prover[int]) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n + 1, nil
	})
	p := New([]int{0}, []Rule[int]{failAt})

	res, err := p.FindProof(10, DefaultMaxDepth)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected rule error, got %v", err)
	}
	if res.Found() || res.Status != Aborted {
		t.Errorf("Status = %v, want aborted", res.Status)
	}
	if res.Rounds != 2 {
		t.Errorf("Rounds = %d, want 2", res.Rounds)
	}
}

func TestFindProofMultipleAxioms(t *testing.T) {
	p := New([]int{10, 0, 10}, []Rule[int]{increment()})

	res, err := p.FindProof(11, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if res.Theorem.Axiom() != 10 || res.Theorem.Len() != 1 {
		t.Errorf("Expected 10 -> 11, got %v", res.Theorem)
	}
}

func TestRulesSeeProver(t *testing.T) {
	// A rule that jumps to the first axiom it was configured with
	reset := NewRule("reset", func(_ int, p *Prover[int]) (int, error) {
		return p.Axioms()[0], nil
	})
	p := New([]int{7, 100}, []Rule[int]{reset, increment()})

	res, err := p.FindProof(8, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if res.Theorem.Axiom() != 7 {
		t.Errorf("Expected derivation from 7, got %v", res.Theorem)
	}
}

func TestProverIsolatesInputs(t *testing.T) {
	axioms := []int{0}
	rules := []Rule[int]{increment()}
	p := New(axioms, rules)

	axioms[0] = 50
	rules[0] = identity()

	res, err := p.FindProof(2, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("FindProof: %v", err)
	}
	if !res.Found() {
		t.Errorf("caller mutation leaked into prover: %v", res.Status)
	}
	if got := p.Axioms(); got[0] != 0 {
		t.Errorf("Axioms() = %v", got)
	}
}

func TestRepeatedAndConcurrentQueries(t *testing.T) {
	p := New([]int{0}, []Rule[int]{increment(), double()}, WithLogger(zaptest.NewLogger(t)))

	var wg sync.WaitGroup
	for target := 1; target <= 8; target++ {
		wg.Add(1)
		go func(target int) {
			defer wg.Done()
			res, err := p.FindProof(target, DefaultMaxDepth)
			if err != nil || !res.Found() || res.Theorem.Result() != target {
				t.Errorf("FindProof(%d) = %v, %v", target, res.Status, err)
			}
		}(target)
	}
	wg.Wait()

	first, _ := p.Prove(5)
	second, _ := p.Prove(5)
	if diff := cmp.Diff(first.Theorem.RuleNames(), second.Theorem.RuleNames()); diff != "" {
		t.Errorf("repeated queries differ (-first +second):\n%s", diff)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Aborted:       "aborted",
		Found:         "found",
		Exhausted:     "exhausted",
		DepthExceeded: "depth_exceeded",
		Status(9):     "status(9)",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
