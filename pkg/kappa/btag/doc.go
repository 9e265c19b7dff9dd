/*
Package btag corrects heavy-flavour tag decisions of simulated jets so that
the simulated tagging efficiency matches the one measured in data.

# Overview

A jet is tagged when its discriminant reaches the operating point threshold.
Simulation over- or under-estimates how often that happens; the measured
ratio data/simulation is the scale factor SF. Rather than reweighting events,
Engine flips individual simulated tag decisions at random:

  - SF >= 1: an untagged jet is promoted with probability (SF-1)/(1/eff-1),
    where eff is the simulated tagging efficiency for the jet;
  - SF < 1: a tagged jet is demoted with probability 1-SF.

The discriminant itself is never changed. Real data is never corrected.

# Flavours and systematics

Bottom and charm jets use the heavy-flavour scale factors and the heavy
efficiency curve with the b-tag systematic. Everything else uses the
light-flavour (mistag) scale factor and the simulated mistag rate with the
mistag systematic. Each systematic is one of Down, Nominal or Up.

# Calibration

Scale factor and efficiency curves are data, not code. A Calibration holds
one Table per epoch plus the shared efficiency curves; DefaultCalibration
returns the built-in medium working point tables for 2011 and 2012, and the
calibstore package loads replacements from files or SQLite. Out-of-range
kinematics are clamped to the table edges and unsupported epochs resolve to
the nearest supported one; neither is an error.

# Reproducibility

	eng, err := btag.New(btag.WithSeed(42))
	if err != nil {
	    return err
	}
	tagged := eng.IsTagged(jet, btag.Nominal, btag.Nominal, 2012)

An Engine owns its random generator. Results depend on the seed and on the
exact sequence of calls, so an Engine must not be shared between goroutines:
give every worker its own Engine with its own seed.
*/
package btag
