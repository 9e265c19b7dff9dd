package btag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSystematic is returned when parsing an unrecognised variation name.
var ErrUnknownSystematic = errors.New("unknown systematic")

// Systematic is a scale factor variation: Down, Nominal or Up.
// The zero value is Nominal; no other values can be constructed.
type Systematic struct {
	shift int8
}

// The three variations.
var (
	Down    = Systematic{shift: -1}
	Nominal = Systematic{shift: 0}
	Up      = Systematic{shift: 1}
)

// Systematics lists the variations in ascending order.
func Systematics() []Systematic {
	return []Systematic{Down, Nominal, Up}
}

// Shift returns -1, 0 or +1.
func (s Systematic) Shift() float64 {
	return float64(s.shift)
}

// String returns "down", "nominal" or "up".
func (s Systematic) String() string {
	switch s.shift {
	case -1:
		return "down"
	case 1:
		return "up"
	default:
		return "nominal"
	}
}

// ParseSystematic parses a variation name. Matching is case-insensitive and
// the empty string means Nominal.
func ParseSystematic(name string) (Systematic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "down":
		return Down, nil
	case "", "nominal", "central":
		return Nominal, nil
	case "up":
		return Up, nil
	}
	return Nominal, fmt.Errorf("%w: %q", ErrUnknownSystematic, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Systematic) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Systematic) UnmarshalText(text []byte) error {
	parsed, err := ParseSystematic(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Flavor is the truth flavour of a simulated jet.
type Flavor int

const (
	// FlavorLight covers light quarks, gluons and unmatched jets.
	FlavorLight Flavor = iota
	FlavorCharm
	FlavorBottom
)

// FlavorFromPDG maps a hadron flavour PDG id to a Flavor.
func FlavorFromPDG(pdgID int) Flavor {
	switch pdgID {
	case 5, -5:
		return FlavorBottom
	case 4, -4:
		return FlavorCharm
	default:
		return FlavorLight
	}
}

// IsHeavy reports whether the flavour uses the heavy-flavour scale factors.
func (f Flavor) IsHeavy() bool {
	return f == FlavorBottom || f == FlavorCharm
}

// String returns "b", "c" or "light".
func (f Flavor) String() string {
	switch f {
	case FlavorBottom:
		return "b"
	case FlavorCharm:
		return "c"
	default:
		return "light"
	}
}

// Epoch selects a calibration period, usually the data-taking year.
type Epoch int

// Jet is the tagging view of one jet.
type Jet struct {
	Pt           float64
	Eta          float64
	Discriminant float64
	Flavor       Flavor
	IsData       bool
}
