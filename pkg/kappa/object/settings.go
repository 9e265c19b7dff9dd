package object

import (
	"fmt"

	"github.com/artus-hep/kappa/pkg/kappa/config"
)

// Setting keys understood by Settings.
const (
	KeyMinNMatchedElectrons = "MinNMatchedElectrons"
	KeyMinNMatchedMuons     = "MinNMatchedMuons"
	KeyMinNMatchedTaus      = "MinNMatchedTaus"
	KeyMinNMatchedJets      = "MinNMatchedJets"

	KeyBTagSeed         = "BTagSeed"
	KeyBTagEpoch        = "BTagEpoch"
	KeyBTagSystematic   = "BTagSystematic"
	KeyMistagSystematic = "MistagSystematic"
	KeyFilters          = "Filters"
)

// DefaultBTagEpoch is the calibration epoch used when BTagEpoch is unset.
const DefaultBTagEpoch = 2012

// Settings exposes the job configuration. Every query has a default, so a
// zero Settings is usable and requires no trigger matches.
type Settings struct {
	cfg config.Config
}

// NewSettings wraps a Config.
func NewSettings(cfg config.Config) Settings {
	return Settings{cfg: cfg}
}

// SettingsFromFile loads and layers settings files, later files winning.
func SettingsFromFile(paths ...string) (Settings, error) {
	cfg, err := config.FromFiles(paths...)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return NewSettings(cfg), nil
}

// Config returns the underlying configuration.
func (s Settings) Config() config.Config {
	return s.cfg
}

// MinNMatchedElectrons is the minimum number of trigger matched electrons.
func (s Settings) MinNMatchedElectrons() int { return s.cfg.Int(KeyMinNMatchedElectrons, 0) }

// MinNMatchedMuons is the minimum number of trigger matched muons.
func (s Settings) MinNMatchedMuons() int { return s.cfg.Int(KeyMinNMatchedMuons, 0) }

// MinNMatchedTaus is the minimum number of trigger matched taus.
func (s Settings) MinNMatchedTaus() int { return s.cfg.Int(KeyMinNMatchedTaus, 0) }

// MinNMatchedJets is the minimum number of trigger matched jets.
func (s Settings) MinNMatchedJets() int { return s.cfg.Int(KeyMinNMatchedJets, 0) }

// BTagSeed seeds the tag decision engines of a job. Workers add their index.
func (s Settings) BTagSeed() int64 { return s.cfg.Int64(KeyBTagSeed, 0) }

// BTagEpoch selects the calibration period.
func (s Settings) BTagEpoch() int { return s.cfg.Int(KeyBTagEpoch, DefaultBTagEpoch) }

// BTagSystematic is the heavy-flavour scale factor variation name.
func (s Settings) BTagSystematic() string { return s.cfg.String(KeyBTagSystematic, "nominal") }

// MistagSystematic is the light-flavour scale factor variation name.
func (s Settings) MistagSystematic() string { return s.cfg.String(KeyMistagSystematic, "nominal") }

// Filters lists the filter ids to run, in order. Empty means all registered filters.
func (s Settings) Filters() []string { return s.cfg.StringSlice(KeyFilters, nil) }
