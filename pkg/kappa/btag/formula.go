package btag

import (
	"fmt"
	"math"
)

// FormulaKind names the functional form of a Formula.
type FormulaKind string

const (
	// Polynomial evaluates c0 + c1*x + c2*x^2 + ...
	Polynomial FormulaKind = "polynomial"
	// Rational evaluates c0 * (1 + c1*x) / (1 + c2*x).
	Rational FormulaKind = "rational"
)

// Formula is a parameterised curve in one variable, normally jet pt.
type Formula struct {
	Kind         FormulaKind `yaml:"kind" json:"kind"`
	Coefficients []float64   `yaml:"coefficients" json:"coefficients"`
}

// Poly returns a polynomial with the given coefficients, lowest order first.
func Poly(coefficients ...float64) Formula {
	return Formula{Kind: Polynomial, Coefficients: coefficients}
}

// Ratio returns the rational form c0*(1+c1*x)/(1+c2*x).
func Ratio(c0, c1, c2 float64) Formula {
	return Formula{Kind: Rational, Coefficients: []float64{c0, c1, c2}}
}

// Eval evaluates the formula at x. It must only be called on a validated formula.
func (f Formula) Eval(x float64) float64 {
	c := f.Coefficients
	switch f.Kind {
	case Rational:
		return c[0] * (1 + c[1]*x) / (1 + c[2]*x)
	default:
		// Horner
		v := 0.0
		for i := len(c) - 1; i >= 0; i-- {
			v = v*x + c[i]
		}
		return v
	}
}

func (f Formula) validate() error {
	for _, c := range f.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %v is not finite", c)
		}
	}
	switch f.Kind {
	case Polynomial:
		if len(f.Coefficients) == 0 {
			return fmt.Errorf("polynomial has no coefficients")
		}
	case Rational:
		if len(f.Coefficients) != 3 {
			return fmt.Errorf("rational needs 3 coefficients, got %d", len(f.Coefficients))
		}
	default:
		return fmt.Errorf("unknown formula kind %q", f.Kind)
	}
	return nil
}

// validateOn reports a rational formula whose denominator 1+c2*x reaches zero
// on [lo, hi]. The denominator is linear, so checking the ends is enough.
func (f Formula) validateOn(lo, hi float64) error {
	if err := f.validate(); err != nil {
		return err
	}
	if f.Kind != Rational {
		return nil
	}
	c2 := f.Coefficients[2]
	dlo, dhi := 1+c2*lo, 1+c2*hi
	if dlo == 0 || dhi == 0 || (dlo > 0) != (dhi > 0) {
		return fmt.Errorf("denominator 1%+g*x has a pole in [%v, %v]", c2, lo, hi)
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}
