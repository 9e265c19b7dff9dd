package pipeline

import (
	"fmt"

	"github.com/artus-hep/kappa/pkg/kappa/btag/calibstore"
	"github.com/artus-hep/kappa/pkg/kappa/object"
	"github.com/caarlos0/env/v11"
)

// EnvConfig holds job settings read from the environment.
type EnvConfig struct {
	// SettingsFiles are layered in order; later files override earlier keys.
	SettingsFiles   []string `env:"KAPPA_SETTINGS"         envSeparator:","`
	Workers         int      `env:"KAPPA_WORKERS"          envDefault:"1"`
	RunID           string   `env:"KAPPA_RUN_ID"`
	CalibrationFile string   `env:"KAPPA_CALIBRATION_FILE"`
	CalibrationDB   string   `env:"KAPPA_CALIBRATION_DB"`
}

// ParseEnv loads EnvConfig from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CalibrationFile != "" && cfg.CalibrationDB != "" {
		return EnvConfig{}, fmt.Errorf("parse env: KAPPA_CALIBRATION_FILE and KAPPA_CALIBRATION_DB are exclusive")
	}
	return cfg, nil
}

// Settings loads the settings files, or returns empty settings if none are set.
func (c EnvConfig) Settings() (object.Settings, error) {
	if len(c.SettingsFiles) == 0 {
		return object.Settings{}, nil
	}
	return object.SettingsFromFile(c.SettingsFiles...)
}

// Options returns the runner options described by c. The returned close
// function releases a calibration database and must be called when the
// runner is no longer used.
func (c EnvConfig) Options() (opts []RunOption, closeFn func() error, err error) {
	closeFn = func() error { return nil }
	opts = []RunOption{WithWorkers(c.Workers)}
	if c.RunID != "" {
		opts = append(opts, WithRunID(c.RunID))
	}

	switch {
	case c.CalibrationFile != "":
		opts = append(opts, WithCalibrationSource(calibstore.FileSource{Path: c.CalibrationFile}))
	case c.CalibrationDB != "":
		store, err := calibstore.NewSQLiteStore(c.CalibrationDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open calibration db: %w", err)
		}
		opts = append(opts, WithCalibrationSource(store))
		closeFn = store.Close
	}
	return opts, closeFn, nil
}
