package pipeline_test

import (
	"context"
	"sync"
	"time"

	"github.com/artus-hep/kappa/pkg/kappa/config"
	"github.com/artus-hep/kappa/pkg/kappa/object"
	"github.com/artus-hep/kappa/pkg/kappa/observability"
	"github.com/artus-hep/kappa/pkg/kappa/pipeline"
)

func settings(values map[string]any) object.Settings {
	return object.NewSettings(config.New(values))
}

func newJet(pt, eta, disc float64, pdg int) *object.Jet {
	return &object.Jet{LV: object.LV{Pt: pt, Eta: eta}, BTagDiscriminant: disc, HadronFlavour: pdg}
}

// newRecord builds an event whose jets are all valid and trigger matched,
// with nElectrons matched electrons.
func newRecord(number uint64, isData bool, nElectrons int, jets ...*object.Jet) pipeline.Record {
	p := &object.Product{
		TriggerMatchedElectrons: map[*object.Electron]*object.LV{},
		TriggerMatchedJets:      map[*object.Jet]*object.LV{},
	}
	for range nElectrons {
		e := &object.Electron{LV: object.LV{Pt: 35}}
		p.ValidElectrons = append(p.ValidElectrons, e)
		p.TriggerMatchedElectrons[e] = &e.LV
	}
	for _, j := range jets {
		p.ValidJets = append(p.ValidJets, j)
		p.TriggerMatchedJets[j] = &j.LV
	}
	return pipeline.Record{
		Event:   &object.Event{Run: 1, Number: number, IsData: isData},
		Product: p,
	}
}

// funcFilter adapts a function to filter.Filter.
type funcFilter struct {
	id string
	fn func(*object.Event) bool
}

func (f funcFilter) ID() string { return f.id }

func (f funcFilter) Evaluate(e *object.Event, _ *object.Product, _ object.Settings) bool {
	return f.fn(e)
}

type recordingMetrics struct {
	mu         sync.Mutex
	filters    map[string]int
	rejections map[string]int
	tags       int
	flips      int
	runs       int
	records    int
	runErr     error
}

var _ observability.MetricsRecorder = (*recordingMetrics)(nil)

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{filters: map[string]int{}, rejections: map[string]int{}}
}

func (m *recordingMetrics) RecordFilterDecision(_ context.Context, filterID string, passed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[filterID]++
	if !passed {
		m.rejections[filterID]++
	}
}

func (m *recordingMetrics) RecordTagDecision(_ context.Context, _ string, raw, final bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags++
	if raw != final {
		m.flips++
	}
}

func (m *recordingMetrics) RecordRun(_ context.Context, records int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.records += records
	m.runErr = err
}
