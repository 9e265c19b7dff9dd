package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/artus-hep/kappa/pkg/kappa/btag"
	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/artus-hep/kappa/pkg/kappa/object"
	"github.com/artus-hep/kappa/pkg/kappa/observability"
	"github.com/google/uuid"
)

// Record is one event with its reconstructed objects.
type Record struct {
	Event   *object.Event
	Product *object.Product
}

// Outcome is the result for one record.
type Outcome struct {
	Verdict
	// Tags holds the corrected tag of each valid jet, aligned with
	// Product.ValidJets. Nil for rejected events.
	Tags       []bool
	TaggedJets int
}

// Summary is the result of a run.
type Summary struct {
	RunID string
	// Outcomes is aligned with the input records.
	Outcomes   []Outcome
	Total      int
	Passed     int
	TaggedJets int
	// Rejected counts rejected events by filter id.
	Rejected map[string]int
	Duration time.Duration
}

// Runner applies a Chain and the b-tag correction to batches of records.
// Run may be called repeatedly; each call builds fresh engines, so runs
// with the same input are identical.
type Runner struct {
	chain     *Chain
	settings  object.Settings
	cfg       runConfig
	btagSys   btag.Systematic
	mistagSys btag.Systematic
	epoch     btag.Epoch
}

// NewRunner creates a Runner. Systematic settings are parsed here, so a
// malformed value is reported before any record is touched.
func NewRunner(chain *Chain, settings object.Settings, opts ...RunOption) (*Runner, error) {
	if chain == nil {
		return nil, kerrors.NewConfigurationError("pipeline.Runner", "chain", "chain is nil")
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	btagSys, err := btag.ParseSystematic(settings.BTagSystematic())
	if err != nil {
		return nil, kerrors.NewConfigurationError("pipeline.Runner", object.KeyBTagSystematic, err.Error())
	}
	mistagSys, err := btag.ParseSystematic(settings.MistagSystematic())
	if err != nil {
		return nil, kerrors.NewConfigurationError("pipeline.Runner", object.KeyMistagSystematic, err.Error())
	}

	return &Runner{
		chain:     chain.WithMetrics(cfg.metrics),
		settings:  settings,
		cfg:       cfg,
		btagSys:   btagSys,
		mistagSys: mistagSys,
		epoch:     btag.Epoch(settings.BTagEpoch()),
	}, nil
}

// Workers returns the configured worker count.
func (r *Runner) Workers() int {
	return r.cfg.workers
}

// Run processes records and returns one Outcome per record.
//
// The context is checked before every record. On cancellation Run returns a
// *CancellationError and no summary.
func (r *Runner) Run(ctx context.Context, records []Record) (summary *Summary, runErr error) {
	for i, rec := range records {
		if rec.Event == nil || rec.Product == nil {
			return nil, fmt.Errorf("record %d: %w", i, ErrIncompleteRecord)
		}
	}

	runID := r.cfg.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	workers := r.cfg.workers
	logger := r.cfg.logger

	startTime := time.Now()
	observability.LogRunStart(logger, runID, len(records), workers)

	ctx, runSpan := r.cfg.spans.StartRunSpan(ctx, runID, len(records))
	defer func() {
		duration := time.Since(startTime)
		durationMs := float64(duration.Microseconds()) / 1000
		r.cfg.spans.EndSpanWithError(runSpan, runErr)
		r.cfg.metrics.RecordRun(ctx, len(records), duration, runErr)
		if runErr != nil {
			observability.LogRunError(logger, runID, runErr, durationMs)
			return
		}
		summary.Duration = duration
		observability.LogRunComplete(logger, runID, durationMs, summary.Passed, summary.Total)
	}()

	engines, err := r.engines(ctx, workers)
	if err != nil {
		return nil, cancellation(runID, 0, len(records), err)
	}

	outcomes := make([]Outcome, len(records))
	errs := make([]error, workers)
	var processed atomic.Int64

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			wctx, span := r.cfg.spans.StartWorkerSpan(ctx, w, engines[w].Seed())
			errs[w] = r.work(wctx, w, workers, engines[w], records, outcomes, &processed,
				observability.EnrichLogger(logger, runID, w))
			r.cfg.spans.EndSpanWithError(span, errs[w])
		}()
	}
	wg.Wait()

	if err := firstError(errs); err != nil {
		return nil, cancellation(runID, int(processed.Load()), len(records), err)
	}

	return summarize(runID, outcomes), nil
}

// engines loads the calibration once and builds one engine per worker.
func (r *Runner) engines(ctx context.Context, workers int) ([]*btag.Engine, error) {
	res := kerrors.WithRetryContext(ctx, r.cfg.retry, r.cfg.source.Load)
	if res.Err != nil {
		return nil, res.Err
	}
	cal := res.Value

	var err error
	engines := make([]*btag.Engine, workers)
	for w := range engines {
		engines[w], err = btag.New(
			btag.WithSeed(r.settings.BTagSeed()+int64(w)),
			btag.WithCalibration(cal),
			btag.WithLogger(r.cfg.logger),
		)
		if err != nil {
			return nil, err
		}
	}

	epochs := make([]int, 0, len(cal.Tables))
	for _, e := range cal.Epochs() {
		epochs = append(epochs, int(e))
	}
	observability.LogCalibrationLoaded(r.cfg.logger, fmt.Sprint(r.cfg.source), epochs)
	return engines, nil
}

// work handles records w, w+n, w+2n, ... in order.
func (r *Runner) work(ctx context.Context, w, n int, engine *btag.Engine, records []Record, outcomes []Outcome, processed *atomic.Int64, logger *slog.Logger) (err error) {
	i := w
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Worker: w, Record: i, Value: p, Stack: string(debug.Stack())}
		}
	}()

	for ; i < len(records); i += n {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcomes[i] = r.process(ctx, engine, records[i], logger)
		processed.Add(1)
	}
	return nil
}

func (r *Runner) process(ctx context.Context, engine *btag.Engine, rec Record, logger *slog.Logger) Outcome {
	out := Outcome{Verdict: r.chain.evaluate(ctx, logger, rec.Event, rec.Product, r.settings)}
	if !out.Passed {
		return out
	}

	out.Tags = make([]bool, len(rec.Product.ValidJets))
	for j, jet := range rec.Product.ValidJets {
		bj := btag.Jet{
			Pt:           jet.Pt,
			Eta:          jet.Eta,
			Discriminant: jet.BTagDiscriminant,
			Flavor:       btag.FlavorFromPDG(jet.HadronFlavour),
			IsData:       rec.Event.IsData,
		}
		d := engine.Decide(bj, r.btagSys, r.mistagSys, r.epoch)
		if !bj.IsData {
			r.cfg.metrics.RecordTagDecision(ctx, bj.Flavor.String(), d.RawTag, d.Tagged)
		}
		out.Tags[j] = d.Tagged
		if d.Tagged {
			out.TaggedJets++
		}
	}
	return out
}

// firstError prefers a panic over cancellations triggered elsewhere.
func firstError(errs []error) error {
	var first error
	for _, err := range errs {
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}

// cancellation wraps context errors in a *CancellationError and returns
// anything else unchanged.
func cancellation(runID string, processed, total int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CancellationError{RunID: runID, Processed: processed, Total: total, Cause: err}
	}
	return err
}

func summarize(runID string, outcomes []Outcome) *Summary {
	s := &Summary{
		RunID:    runID,
		Outcomes: outcomes,
		Total:    len(outcomes),
		Rejected: make(map[string]int),
	}
	for _, o := range outcomes {
		if o.Passed {
			s.Passed++
			s.TaggedJets += o.TaggedJets
		} else {
			s.Rejected[o.RejectedBy]++
		}
	}
	return s
}
