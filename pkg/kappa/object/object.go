// Package object holds the event data contract consumed by the filters and
// the tagging engine: the event record, reconstructed physics objects, the
// per-event product filled by upstream producers, and the job settings.
package object

// Event identifies one collision event. Filters receive it but never read it.
type Event struct {
	Run    uint32
	Lumi   uint32
	Number uint64
	// IsData is false for simulated events.
	IsData bool
}

// LV is a trigger-level object: the four-vector of the object that fired the trigger.
type LV struct {
	Pt   float64
	Eta  float64
	Phi  float64
	Mass float64
}

// Electron is a reconstructed electron candidate.
type Electron struct {
	LV
	Charge int
}

// Muon is a reconstructed muon candidate.
type Muon struct {
	LV
	Charge int
}

// Tau is a reconstructed hadronic tau candidate.
type Tau struct {
	LV
	Charge int
}

// Jet is a reconstructed jet.
type Jet struct {
	LV
	// BTagDiscriminant is the heavy-flavour tagger output.
	BTagDiscriminant float64
	// HadronFlavour is the PDG id of the matched hadron in simulation, 0 if none.
	HadronFlavour int
}

// Product carries the per-event objects derived by upstream producers.
//
// For every category the trigger matching producer fills a map from each
// valid candidate that matched a trigger object to that object. Filters rely
// on the matched keys being a subset of the valid list; this is not checked.
type Product struct {
	ValidElectrons          []*Electron
	TriggerMatchedElectrons map[*Electron]*LV

	ValidMuons          []*Muon
	TriggerMatchedMuons map[*Muon]*LV

	ValidTaus          []*Tau
	TriggerMatchedTaus map[*Tau]*LV

	ValidJets          []*Jet
	TriggerMatchedJets map[*Jet]*LV
}
