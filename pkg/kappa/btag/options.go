package btag

import "log/slog"

// engineConfig holds construction parameters for an Engine.
type engineConfig struct {
	seed            int64
	calibration     *Calibration
	heavyEfficiency EfficiencyCurve
	logger          *slog.Logger
}

func defaultEngineConfig() engineConfig {
	return engineConfig{seed: DefaultSeed}
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithSeed seeds the engine's random generator.
// Default: DefaultSeed
func WithSeed(seed int64) Option {
	return func(c *engineConfig) {
		c.seed = seed
	}
}

// WithCalibration replaces the built-in calibration.
// The engine keeps a reference; the calibration must not be modified afterwards.
func WithCalibration(cal *Calibration) Option {
	return func(c *engineConfig) {
		c.calibration = cal
	}
}

// WithHeavyEfficiency overrides the calibration's heavy-flavour efficiency curve.
func WithHeavyEfficiency(curve EfficiencyCurve) Option {
	return func(c *engineConfig) {
		c.heavyEfficiency = curve
	}
}

// WithLogger enables debug logging of epoch fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
