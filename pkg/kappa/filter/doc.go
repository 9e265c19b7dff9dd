/*
Package filter decides whether an event's reconstructed objects were
sufficiently matched to trigger objects.

# Overview

A single generic engine, MatchFilter, is parameterised by three selectors:

  - Matched reads the map from valid candidates to their trigger objects,
  - Valid reads the list of valid candidates,
  - Minimum reads the required number of matches from the settings.

An event passes when every valid candidate is matched and the number of
matches reaches the configured minimum:

	passes = M >= V && M >= Nmin

The minimum is an independent floor, not a replacement for full coverage:
with two valid electrons and one match the event fails even if the minimum
is 1. With no valid candidates and a minimum of 0 the filter passes
vacuously.

# Bindings

Electrons, muons, taus and jets each get a binding that wires the selectors
to the category's Product fields and Settings query:

	f := filter.NewMuonTriggerMatchingFilter()
	ok := f.Evaluate(event, product, settings)

A new object category is supported by constructing one more MatchFilter;
the engine itself never changes.

# Registry

Registry maps the stable filter ids to filters so a job can select filters
by name from its settings:

	reg := filter.NewRegistry()
	f, err := reg.Lookup("TauTriggerMatchingFilter")

# Thread Safety

Filters are pure: they read their inputs and hold no mutable state. One
instance may be shared by any number of workers.
*/
package filter
