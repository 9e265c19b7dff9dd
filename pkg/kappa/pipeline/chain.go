package pipeline

import (
	"context"
	"log/slog"

	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/artus-hep/kappa/pkg/kappa/filter"
	"github.com/artus-hep/kappa/pkg/kappa/object"
	"github.com/artus-hep/kappa/pkg/kappa/observability"
)

// Verdict is the result of evaluating a Chain on one event.
type Verdict struct {
	Passed bool
	// RejectedBy is the id of the first failing filter, empty if Passed.
	RejectedBy string
}

// Chain is an ordered list of filters. An event passes if every filter
// accepts it; evaluation stops at the first rejection. An empty chain
// accepts everything. A Chain is safe for concurrent use.
type Chain struct {
	filters []filter.Filter
	metrics observability.MetricsRecorder
	logger  *slog.Logger
}

// NewChain resolves ids in reg and returns them as a chain in the given order.
func NewChain(reg *filter.Registry, ids ...string) (*Chain, error) {
	if reg == nil {
		return nil, kerrors.NewConfigurationError("pipeline.Chain", "registry", "filter registry is nil")
	}

	filters := make([]filter.Filter, 0, len(ids))
	for _, id := range ids {
		f, err := reg.Lookup(id)
		if err != nil {
			return nil, kerrors.NewConfigurationError("pipeline.Chain", "filters", err.Error())
		}
		filters = append(filters, f)
	}
	return ChainOf(filters...)
}

// ChainFromSettings builds the chain named by the Filters setting. Without
// that setting the chain holds every filter in reg, ordered by id.
func ChainFromSettings(reg *filter.Registry, settings object.Settings) (*Chain, error) {
	ids := settings.Filters()
	if len(ids) == 0 && reg != nil {
		ids = reg.IDs()
	}
	return NewChain(reg, ids...)
}

// ChainOf builds a chain from filters directly, without a registry.
func ChainOf(filters ...filter.Filter) (*Chain, error) {
	for _, f := range filters {
		if f == nil {
			return nil, kerrors.NewConfigurationError("pipeline.Chain", "filters", "filter is nil")
		}
	}
	return &Chain{
		filters: append([]filter.Filter(nil), filters...),
		metrics: observability.NoopMetrics{},
	}, nil
}

// WithMetrics returns a copy of the chain that records every filter decision.
func (c *Chain) WithMetrics(m observability.MetricsRecorder) *Chain {
	cp := *c
	cp.metrics = m
	return &cp
}

// WithLogger returns a copy of the chain that logs rejections at debug level.
func (c *Chain) WithLogger(logger *slog.Logger) *Chain {
	cp := *c
	cp.logger = logger
	return &cp
}

// IDs returns the filter ids in evaluation order.
func (c *Chain) IDs() []string {
	ids := make([]string, len(c.filters))
	for i, f := range c.filters {
		ids[i] = f.ID()
	}
	return ids
}

// Len returns the number of filters.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Evaluate runs the filters on one event.
func (c *Chain) Evaluate(event *object.Event, product *object.Product, settings object.Settings) Verdict {
	return c.evaluate(context.Background(), c.logger, event, product, settings)
}

func (c *Chain) evaluate(ctx context.Context, logger *slog.Logger, event *object.Event, product *object.Product, settings object.Settings) Verdict {
	for _, f := range c.filters {
		passed := f.Evaluate(event, product, settings)
		c.metrics.RecordFilterDecision(ctx, f.ID(), passed)
		if !passed {
			if event != nil {
				observability.LogFilterRejected(logger, f.ID(), event.Run, event.Number)
			}
			return Verdict{RejectedBy: f.ID()}
		}
	}
	return Verdict{Passed: true}
}
