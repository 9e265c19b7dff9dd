package benchmarks

import (
	"testing"

	"github.com/artus-hep/kappa/pkg/kappa/config"
	"github.com/artus-hep/kappa/pkg/kappa/filter"
	"github.com/artus-hep/kappa/pkg/kappa/object"
)

func jetProduct(n int) *object.Product {
	p := &object.Product{TriggerMatchedJets: map[*object.Jet]*object.LV{}}
	for i := range n {
		j := &object.Jet{LV: object.LV{Pt: 30 + float64(i)}}
		p.ValidJets = append(p.ValidJets, j)
		p.TriggerMatchedJets[j] = &j.LV
	}
	return p
}

// BenchmarkJetFilter_4 evaluates the jet filter on 4 matched jets.
func BenchmarkJetFilter_4(b *testing.B) {
	f := filter.NewJetTriggerMatchingFilter()
	p := jetProduct(4)
	s := object.NewSettings(config.New(map[string]any{object.KeyMinNMatchedJets: 2}))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Evaluate(&object.Event{}, p, s)
	}
}

// BenchmarkJetFilter_40 evaluates the jet filter on 40 matched jets.
func BenchmarkJetFilter_40(b *testing.B) {
	f := filter.NewJetTriggerMatchingFilter()
	p := jetProduct(40)
	s := object.Settings{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Evaluate(&object.Event{}, p, s)
	}
}

// BenchmarkRegistryLookup resolves a binding by id.
func BenchmarkRegistryLookup(b *testing.B) {
	reg := filter.NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Lookup(filter.TauTriggerMatchingID)
	}
}
