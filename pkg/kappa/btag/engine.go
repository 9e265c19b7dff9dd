package btag

import (
	"fmt"
	"log/slog"
	"math/rand"

	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/artus-hep/kappa/pkg/kappa/observability"
)

// Engine makes corrected tag decisions. It owns a random generator that is
// seeded once and advanced by every simulated decision, so an Engine is not
// safe for concurrent use.
type Engine struct {
	rng       *rand.Rand
	seed      int64
	threshold float64
	tables    map[Epoch]*Table
	epochs    []Epoch
	mistag    EfficiencyCurve
	heavyEff  EfficiencyCurve
	logger    *slog.Logger
	fellBack  map[Epoch]bool
}

// New creates an Engine. It returns a *errors.ConfigurationError if the
// calibration is invalid.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cal := cfg.calibration
	if cal == nil {
		cal = DefaultCalibration()
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}

	heavyEff := cfg.heavyEfficiency
	if heavyEff == nil {
		heavyEff = cal.HeavyEfficiency
	}

	tables := make(map[Epoch]*Table, len(cal.Tables))
	for i := range cal.Tables {
		tables[cal.Tables[i].Epoch] = &cal.Tables[i]
	}

	return &Engine{
		rng:       rand.New(rand.NewSource(cfg.seed)),
		seed:      cfg.seed,
		threshold: cal.Threshold,
		tables:    tables,
		epochs:    cal.Epochs(),
		mistag:    cal.Mistag,
		heavyEff:  heavyEff,
		logger:    cfg.logger,
		fellBack:  make(map[Epoch]bool),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Seed returns the seed the engine was created with.
func (e *Engine) Seed() int64 {
	return e.seed
}

// Threshold returns the operating point.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Epochs returns the supported epochs in ascending order.
func (e *Engine) Epochs() []Epoch {
	return append([]Epoch(nil), e.epochs...)
}

// ResolveEpoch returns epoch if supported, otherwise the nearest supported
// epoch. Ties go to the later epoch.
func (e *Engine) ResolveEpoch(epoch Epoch) Epoch {
	if _, ok := e.tables[epoch]; ok {
		return epoch
	}

	best := e.nearestEpoch(epoch)
	if !e.fellBack[epoch] {
		e.fellBack[epoch] = true
		err := kerrors.DomainRange(fmt.Errorf("epoch %d has no calibration table", epoch), "btag.Engine.ResolveEpoch")
		observability.LogEpochFallback(e.logger, int(epoch), int(best), err)
	}
	return best
}

// nearestEpoch assumes epochs is sorted. Distances are only taken between
// neighbouring supported epochs, so extreme requests cannot overflow.
func (e *Engine) nearestEpoch(epoch Epoch) Epoch {
	first, last := e.epochs[0], e.epochs[len(e.epochs)-1]
	if epoch <= first {
		return first
	}
	if epoch >= last {
		return last
	}
	for i := 1; i < len(e.epochs); i++ {
		hi := e.epochs[i]
		if epoch > hi {
			continue
		}
		lo := e.epochs[i-1]
		if hi-epoch <= epoch-lo {
			return hi
		}
		return lo
	}
	return last
}

func (e *Engine) table(epoch Epoch) *Table {
	return e.tables[e.ResolveEpoch(epoch)]
}

// ScaleFactorB returns the b-jet scale factor.
func (e *Engine) ScaleFactorB(pt, eta float64, sys Systematic, epoch Epoch) float64 {
	return e.table(epoch).Bottom.ScaleFactor(pt, sys)
}

// ScaleFactorC returns the c-jet scale factor.
func (e *Engine) ScaleFactorC(pt, eta float64, sys Systematic, epoch Epoch) float64 {
	return e.table(epoch).Charm.ScaleFactor(pt, sys)
}

// ScaleFactorLight returns the light-flavour (mistag) scale factor.
func (e *Engine) ScaleFactorLight(pt, eta float64, sys Systematic, epoch Epoch) float64 {
	return e.table(epoch).Light.ScaleFactor(pt, eta, sys)
}

// MistagRate returns the simulated light-flavour tagging efficiency.
func (e *Engine) MistagRate(pt, eta float64) float64 {
	return e.mistag.Efficiency(pt, eta)
}

// HeavyEfficiency returns the simulated heavy-flavour tagging efficiency.
func (e *Engine) HeavyEfficiency(pt, eta float64) float64 {
	return e.heavyEff.Efficiency(pt, eta)
}

// Decision records how a tag decision was reached.
type Decision struct {
	// RawTag is the uncorrected decision: discriminant >= threshold.
	RawTag bool
	// Tagged is the final decision.
	Tagged bool
	// ScaleFactor, Efficiency, FlipProbability and Draw are zero for data.
	ScaleFactor     float64
	Efficiency      float64
	FlipProbability float64
	Draw            float64
}

// Flipped reports whether the correction changed the decision.
func (d Decision) Flipped() bool {
	return d.RawTag != d.Tagged
}

// IsTagged returns the corrected tag decision for a jet.
func (e *Engine) IsTagged(jet Jet, btagSys, mistagSys Systematic, epoch Epoch) bool {
	return e.Decide(jet, btagSys, mistagSys, epoch).Tagged
}

// Decide computes the corrected tag decision and its inputs.
//
// Data jets return the raw decision without touching the generator.
// Every simulated jet consumes exactly one draw, whether or not a flip
// was possible, so the draw sequence depends only on the number of
// simulated calls.
func (e *Engine) Decide(jet Jet, btagSys, mistagSys Systematic, epoch Epoch) Decision {
	raw := jet.Discriminant >= e.threshold
	if jet.IsData {
		return Decision{RawTag: raw, Tagged: raw}
	}

	var sf, eff float64
	switch jet.Flavor {
	case FlavorBottom:
		sf = e.ScaleFactorB(jet.Pt, jet.Eta, btagSys, epoch)
		eff = e.HeavyEfficiency(jet.Pt, jet.Eta)
	case FlavorCharm:
		sf = e.ScaleFactorC(jet.Pt, jet.Eta, btagSys, epoch)
		eff = e.HeavyEfficiency(jet.Pt, jet.Eta)
	default:
		sf = e.ScaleFactorLight(jet.Pt, jet.Eta, mistagSys, epoch)
		eff = e.MistagRate(jet.Pt, jet.Eta)
	}

	u := e.rng.Float64()
	p := FlipProbability(raw, sf, eff)

	tagged := raw
	if u < p {
		tagged = !raw
	}

	return Decision{
		RawTag:          raw,
		Tagged:          tagged,
		ScaleFactor:     sf,
		Efficiency:      eff,
		FlipProbability: p,
		Draw:            u,
	}
}

// FlipProbability returns the probability that a raw decision is flipped.
//
// For sf >= 1 only untagged jets move, promoted with probability
// (sf-1)/(1/eff-1); an efficiency outside (0, 1) leaves nothing to promote.
// For sf < 1 only tagged jets move, demoted with probability 1-sf.
func FlipProbability(raw bool, sf, eff float64) float64 {
	if sf >= 1 {
		if raw || eff <= 0 || eff >= 1 {
			return 0
		}
		return (sf - 1) / (1/eff - 1)
	}
	if !raw {
		return 0
	}
	return 1 - sf
}
