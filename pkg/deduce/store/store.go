package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/deduce/pkg/deduce/prover"
)

// Store persists the outcome of proof queries
type Store interface {
	Close() error

	SaveRecord(ctx context.Context, r Record) error
	GetRecord(ctx context.Context, id string) (Record, error)
	// ListRecords returns records newest first. An empty system matches all.
	ListRecords(ctx context.Context, system string, limit int) ([]Record, error)
}

// Record is a completed proof query
type Record struct {
	ID        string
	System    string
	Target    string
	Status    string
	Axiom     string   // empty unless found
	Result    string   // empty unless found
	Rules     []string // rule names, first to last
	Rounds    int
	Explored  int
	CreatedAt time.Time
}

// Found reports whether the query produced a proof
func (r Record) Found() bool {
	return r.Status == prover.Found.String()
}

// Recorder turns prover results into records with ULID identifiers
type Recorder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewRecorder creates a new recorder
func NewRecorder() *Recorder {
	return &Recorder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewRecord builds a record for a search over string facts
func (rc *Recorder) NewRecord(system, target string, res prover.Result[string]) Record {
	rc.mu.Lock()
	now := rc.now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), rc.entropy).String()
	rc.mu.Unlock()

	rec := Record{
		ID:        id,
		System:    system,
		Target:    target,
		Status:    res.Status.String(),
		Rules:     []string{},
		Rounds:    res.Rounds,
		Explored:  res.Explored,
		CreatedAt: now,
	}
	if res.Found() {
		rec.Axiom = res.Theorem.Axiom()
		rec.Result = res.Theorem.Result()
		rec.Rules = res.Theorem.RuleNames()
	}
	return rec
}

// NewRecordOf builds a record for any fact type, rendering facts with %v
func NewRecordOf[F comparable](rc *Recorder, system, target string, res prover.Result[F]) Record {
	strRes := prover.Result[string]{Status: res.Status, Rounds: res.Rounds, Explored: res.Explored}
	rec := rc.NewRecord(system, target, strRes)
	if res.Found() {
		rec.Axiom = fmt.Sprint(res.Theorem.Axiom())
		rec.Result = fmt.Sprint(res.Theorem.Result())
		rec.Rules = res.Theorem.RuleNames()
	}
	return rec
}
