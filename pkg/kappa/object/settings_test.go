package object

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/artus-hep/kappa/pkg/kappa/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaults(t *testing.T) {
	var s Settings

	assert.Equal(t, 0, s.MinNMatchedElectrons())
	assert.Equal(t, 0, s.MinNMatchedMuons())
	assert.Equal(t, 0, s.MinNMatchedTaus())
	assert.Equal(t, 0, s.MinNMatchedJets())
	assert.Equal(t, int64(0), s.BTagSeed())
	assert.Equal(t, DefaultBTagEpoch, s.BTagEpoch())
	assert.Equal(t, "nominal", s.BTagSystematic())
	assert.Equal(t, "nominal", s.MistagSystematic())
	assert.Empty(t, s.Filters())
}

func TestSettingsValues(t *testing.T) {
	s := NewSettings(config.New(map[string]any{
		KeyMinNMatchedElectrons: 1,
		KeyMinNMatchedMuons:     2,
		KeyMinNMatchedTaus:      3,
		KeyMinNMatchedJets:      4,
		KeyBTagSeed:             int64(77),
		KeyBTagEpoch:            2011,
		KeyBTagSystematic:       "up",
		KeyMistagSystematic:     "down",
		KeyFilters:              []any{"MuonTriggerMatchingFilter"},
	}))

	assert.Equal(t, 1, s.MinNMatchedElectrons())
	assert.Equal(t, 2, s.MinNMatchedMuons())
	assert.Equal(t, 3, s.MinNMatchedTaus())
	assert.Equal(t, 4, s.MinNMatchedJets())
	assert.Equal(t, int64(77), s.BTagSeed())
	assert.Equal(t, 2011, s.BTagEpoch())
	assert.Equal(t, "up", s.BTagSystematic())
	assert.Equal(t, "down", s.MistagSystematic())
	assert.Equal(t, []string{"MuonTriggerMatchingFilter"}, s.Filters())
}

func TestSettingsFromFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	era := filepath.Join(dir, "era.json")
	require.NoError(t, os.WriteFile(base, []byte("MinNMatchedTaus: 2\nBTagEpoch: 2011\n"), 0o644))
	require.NoError(t, os.WriteFile(era, []byte(`{"BTagEpoch": 2012}`), 0o644))

	s, err := SettingsFromFile(base, era)
	require.NoError(t, err)
	assert.Equal(t, 2, s.MinNMatchedTaus())
	assert.Equal(t, 2012, s.BTagEpoch())

	_, err = SettingsFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "load settings")
}
