package filter

import "github.com/artus-hep/kappa/pkg/kappa/object"

// Stable filter ids.
const (
	ElectronTriggerMatchingID = "ElectronTriggerMatchingFilter"
	MuonTriggerMatchingID     = "MuonTriggerMatchingFilter"
	TauTriggerMatchingID      = "TauTriggerMatchingFilter"
	JetTriggerMatchingID      = "JetTriggerMatchingFilter"
)

// NewElectronTriggerMatchingFilter filters events on trigger matched electrons.
// Setting: MinNMatchedElectrons (default 0).
func NewElectronTriggerMatchingFilter() *MatchFilter[object.Electron] {
	return MustMatchFilter(ElectronTriggerMatchingID, Selectors[object.Electron]{
		Matched: func(p *object.Product) map[*object.Electron]*object.LV { return p.TriggerMatchedElectrons },
		Valid:   func(p *object.Product) []*object.Electron { return p.ValidElectrons },
		Minimum: object.Settings.MinNMatchedElectrons,
	})
}

// NewMuonTriggerMatchingFilter filters events on trigger matched muons.
// Setting: MinNMatchedMuons (default 0).
func NewMuonTriggerMatchingFilter() *MatchFilter[object.Muon] {
	return MustMatchFilter(MuonTriggerMatchingID, Selectors[object.Muon]{
		Matched: func(p *object.Product) map[*object.Muon]*object.LV { return p.TriggerMatchedMuons },
		Valid:   func(p *object.Product) []*object.Muon { return p.ValidMuons },
		Minimum: object.Settings.MinNMatchedMuons,
	})
}

// NewTauTriggerMatchingFilter filters events on trigger matched taus.
// Setting: MinNMatchedTaus (default 0).
func NewTauTriggerMatchingFilter() *MatchFilter[object.Tau] {
	return MustMatchFilter(TauTriggerMatchingID, Selectors[object.Tau]{
		Matched: func(p *object.Product) map[*object.Tau]*object.LV { return p.TriggerMatchedTaus },
		Valid:   func(p *object.Product) []*object.Tau { return p.ValidTaus },
		Minimum: object.Settings.MinNMatchedTaus,
	})
}

// NewJetTriggerMatchingFilter filters events on trigger matched jets.
// Setting: MinNMatchedJets (default 0).
func NewJetTriggerMatchingFilter() *MatchFilter[object.Jet] {
	return MustMatchFilter(JetTriggerMatchingID, Selectors[object.Jet]{
		Matched: func(p *object.Product) map[*object.Jet]*object.LV { return p.TriggerMatchedJets },
		Valid:   func(p *object.Product) []*object.Jet { return p.ValidJets },
		Minimum: object.Settings.MinNMatchedJets,
	})
}

// Bindings returns the four category filters in a fixed order:
// electrons, muons, taus, jets.
func Bindings() []Filter {
	return []Filter{
		NewElectronTriggerMatchingFilter(),
		NewMuonTriggerMatchingFilter(),
		NewTauTriggerMatchingFilter(),
		NewJetTriggerMatchingFilter(),
	}
}
