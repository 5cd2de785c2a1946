// Package deduce ties the prover to its configuration, ledger and logs.
package deduce

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/inference"
	"github.com/cognicore/deduce/pkg/deduce/inference/simple"
	"github.com/cognicore/deduce/pkg/deduce/prover"
	"github.com/cognicore/deduce/pkg/deduce/rewrite"
	"github.com/cognicore/deduce/pkg/deduce/store"
)

// Deduce runs proof queries and keeps a ledger of their outcomes
type Deduce struct {
	store    store.Store
	recorder *store.Recorder
	logger   *zap.Logger
}

// Options configures a Deduce instance
type Options struct {
	// Store is optional; without it outcomes are not recorded
	Store  store.Store
	Logger *zap.Logger
}

// New creates a Deduce instance with the given dependencies
func New(opts Options) *Deduce {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduce{
		store:    opts.Store,
		recorder: store.NewRecorder(),
		logger:   logger,
	}
}

// Close cleanly shuts down the Deduce instance
func (d *Deduce) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}

// Outcome is a search result together with what produced it
type Outcome struct {
	Prover *prover.Prover[string]
	Result prover.Result[string]
	Record store.Record
}

// Prove searches a rewrite system for target and records the outcome
func (d *Deduce) Prove(ctx context.Context, sys rewrite.System, target string, maxDepth int) (Outcome, error) {
	log := d.logger.With(zap.String("system", sys.Name), zap.String("target", target))
	p := sys.Prover(prover.WithLogger(log))

	res, err := p.FindProof(target, maxDepth)
	if err != nil {
		log.Error("search aborted", zap.Error(err))
		return Outcome{Prover: p}, fmt.Errorf("prove %s in %s: %w", target, sys.Name, err)
	}

	rec := d.recorder.NewRecord(sys.Name, target, res)
	d.logOutcome(log, rec)

	return Outcome{Prover: p, Result: res, Record: rec}, d.save(ctx, rec)
}

// FindPath searches a knowledge base for a chain from subject to object and
// records the outcome under the given system name
func (d *Deduce) FindPath(ctx context.Context, kb *simple.Engine, system, subject, object string, maxDepth int) ([]inference.Step, store.Record, error) {
	log := d.logger.With(zap.String("system", system), zap.String("subject", subject), zap.String("object", object))

	p, res, err := kb.PathProof(subject, object, maxDepth)
	if err != nil {
		log.Error("search aborted", zap.Error(err))
		return nil, store.Record{}, fmt.Errorf("path %s -> %s: %w", subject, object, err)
	}

	var steps []inference.Step
	target := subject + " -> " + object
	if res.Found() {
		if steps, err = simple.Steps(p, res.Theorem); err != nil {
			return nil, store.Record{}, err
		}
	}

	rec := store.NewRecordOf(d.recorder, system, target, res)
	d.logOutcome(log, rec)
	return steps, rec, d.save(ctx, rec)
}

// History lists recorded outcomes, newest first
func (d *Deduce) History(ctx context.Context, system string, limit int) ([]store.Record, error) {
	if d.store == nil {
		return nil, nil
	}
	return d.store.ListRecords(ctx, system, limit)
}

func (d *Deduce) save(ctx context.Context, rec store.Record) error {
	if d.store == nil {
		return nil
	}
	if err := d.store.SaveRecord(ctx, rec); err != nil {
		d.logger.Warn("failed to record outcome", zap.String("id", rec.ID), zap.Error(err))
		return fmt.Errorf("record %s: %w", rec.ID, err)
	}
	return nil
}

func (d *Deduce) logOutcome(log *zap.Logger, rec store.Record) {
	log.Info("search finished",
		zap.String("id", rec.ID),
		zap.String("status", rec.Status),
		zap.Int("steps", len(rec.Rules)),
		zap.Int("rounds", rec.Rounds),
		zap.Int("explored", rec.Explored))
}
