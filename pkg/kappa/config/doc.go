/*
Package config provides type-safe extraction of analysis settings from map[string]any.

# Overview

Analysis settings arrive as loosely typed YAML or JSON documents. Config wraps
the decoded map and exposes typed accessors that return a caller-supplied
default when a key is missing or holds a value of the wrong type. This is how
optional settings such as MinNMatchedElectrons default to 0.

# Basic Usage

	cfg := config.New(map[string]any{
	    "MinNMatchedMuons": 1,
	    "BTagEpoch":        2012,
	    "BTagSystematic":   "up",
	})

	muons := cfg.Int("MinNMatchedMuons", 0)    // 1
	taus := cfg.Int("MinNMatchedTaus", 0)      // 0 (missing)
	sys := cfg.String("BTagSystematic", "nominal")

# Type Coercion

Int and Int64 accept int, int64 and float64, but refuse a
float64 with a fractional part, returning the default instead. JSON documents
decode every number as float64, so whole numbers in JSON are still read as
integers.

# File Loading

	cfg, err := config.FromFile("settings.yaml") // .yaml, .yml or .json

# Thread Safety

Config is safe for concurrent reads. The underlying map is never modified
after creation.
*/
package config
