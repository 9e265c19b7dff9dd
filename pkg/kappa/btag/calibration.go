package btag

import (
	"fmt"
	"math"
	"slices"

	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
)

// HeavyFamily is the scale factor parameterisation for b or c jets.
//
// The nominal value is Nominal evaluated at pt clamped to [PtMin, PtMax].
// Down and Up subtract or add the uncertainty of the pt bin containing the
// clamped pt. Jets whose pt lay outside [PtMin, PtMax] get the edge bin's
// uncertainty multiplied by OutOfRangeScale.
type HeavyFamily struct {
	Nominal         Formula   `yaml:"nominal" json:"nominal"`
	PtMin           float64   `yaml:"pt_min" json:"pt_min"`
	PtMax           float64   `yaml:"pt_max" json:"pt_max"`
	PtEdges         []float64 `yaml:"pt_edges" json:"pt_edges"`
	Uncertainties   []float64 `yaml:"uncertainties" json:"uncertainties"`
	OutOfRangeScale float64   `yaml:"out_of_range_scale" json:"out_of_range_scale"`
}

// ScaleFactor evaluates the family. Heavy-flavour scale factors depend on pt only.
func (h HeavyFamily) ScaleFactor(pt float64, sys Systematic) float64 {
	x := clamp(pt, h.PtMin, h.PtMax)
	sf := h.Nominal.Eval(x)
	if sys == Nominal {
		return sf
	}

	unc := h.Uncertainties[binIndex(h.PtEdges, x)]
	if pt < h.PtMin || pt > h.PtMax {
		unc *= h.OutOfRangeScale
	}
	return sf + sys.Shift()*unc
}

func (h HeavyFamily) validate() error {
	if !(h.PtMin < h.PtMax) {
		return fieldError("pt_min", fmt.Errorf("pt range [%v, %v] is empty", h.PtMin, h.PtMax))
	}
	if err := h.Nominal.validateOn(h.PtMin, h.PtMax); err != nil {
		return fieldError("nominal", err)
	}
	if len(h.Uncertainties) == 0 || len(h.PtEdges) != len(h.Uncertainties)+1 {
		return fieldError("pt_edges", fmt.Errorf("%d edges for %d uncertainties", len(h.PtEdges), len(h.Uncertainties)))
	}
	if !slices.IsSorted(h.PtEdges) {
		return fieldError("pt_edges", fmt.Errorf("edges are not ascending"))
	}
	for _, u := range h.Uncertainties {
		if !(u >= 0) || math.IsInf(u, 0) {
			return fieldError("uncertainties", fmt.Errorf("uncertainty %v must be finite and non-negative", u))
		}
	}
	if !(h.OutOfRangeScale >= 1) {
		return fieldError("out_of_range_scale", fmt.Errorf("scale %v must be at least 1", h.OutOfRangeScale))
	}
	return nil
}

// LightBin holds the light-flavour curves for |eta| below EtaMax.
type LightBin struct {
	EtaMax  float64 `yaml:"eta_max" json:"eta_max"`
	PtMin   float64 `yaml:"pt_min" json:"pt_min"`
	PtMax   float64 `yaml:"pt_max" json:"pt_max"`
	Nominal Formula `yaml:"nominal" json:"nominal"`
	Down    Formula `yaml:"down" json:"down"`
	Up      Formula `yaml:"up" json:"up"`
}

// LightFamily is the mistag scale factor parameterisation, binned in |eta|.
type LightFamily struct {
	Bins []LightBin `yaml:"bins" json:"bins"`
}

// ScaleFactor evaluates the family. |eta| beyond the last bin uses the last bin.
func (l LightFamily) ScaleFactor(pt, eta float64, sys Systematic) float64 {
	b := l.Bins[etaIndex(len(l.Bins), func(i int) float64 { return l.Bins[i].EtaMax }, eta)]
	x := clamp(pt, b.PtMin, b.PtMax)
	switch sys {
	case Down:
		return b.Down.Eval(x)
	case Up:
		return b.Up.Eval(x)
	default:
		return b.Nominal.Eval(x)
	}
}

func (l LightFamily) validate() error {
	if len(l.Bins) == 0 {
		return fieldError("bins", fmt.Errorf("no eta bins"))
	}
	for i, b := range l.Bins {
		if i > 0 && !(b.EtaMax > l.Bins[i-1].EtaMax) {
			return fieldError(fmt.Sprintf("bins[%d].eta_max", i), fmt.Errorf("eta bins are not ascending"))
		}
		if !(b.PtMin < b.PtMax) {
			return fieldError(fmt.Sprintf("bins[%d].pt_min", i), fmt.Errorf("pt range [%v, %v] is empty", b.PtMin, b.PtMax))
		}
		for _, f := range []struct {
			name string
			f    Formula
		}{{"nominal", b.Nominal}, {"down", b.Down}, {"up", b.Up}} {
			if err := f.f.validateOn(b.PtMin, b.PtMax); err != nil {
				return fieldError(fmt.Sprintf("bins[%d].%s", i, f.name), err)
			}
		}
	}
	return nil
}

// EfficiencyCurve supplies the simulated tagging efficiency of a jet.
type EfficiencyCurve interface {
	Efficiency(pt, eta float64) float64
}

// CurveBin is one |eta| bin of a BinnedCurve.
type CurveBin struct {
	EtaMax float64 `yaml:"eta_max" json:"eta_max"`
	PtMin  float64 `yaml:"pt_min" json:"pt_min"`
	PtMax  float64 `yaml:"pt_max" json:"pt_max"`
	Curve  Formula `yaml:"curve" json:"curve"`
}

// BinnedCurve is an efficiency curve binned in |eta| and parameterised in pt.
type BinnedCurve struct {
	Bins []CurveBin `yaml:"bins" json:"bins"`
}

var _ EfficiencyCurve = BinnedCurve{}

// Efficiency evaluates the curve with pt clamped to the bin range.
func (c BinnedCurve) Efficiency(pt, eta float64) float64 {
	b := c.Bins[etaIndex(len(c.Bins), func(i int) float64 { return c.Bins[i].EtaMax }, eta)]
	return b.Curve.Eval(clamp(pt, b.PtMin, b.PtMax))
}

func (c BinnedCurve) validate() error {
	if len(c.Bins) == 0 {
		return fieldError("bins", fmt.Errorf("no eta bins"))
	}
	for i, b := range c.Bins {
		if i > 0 && !(b.EtaMax > c.Bins[i-1].EtaMax) {
			return fieldError(fmt.Sprintf("bins[%d].eta_max", i), fmt.Errorf("eta bins are not ascending"))
		}
		if !(b.PtMin < b.PtMax) {
			return fieldError(fmt.Sprintf("bins[%d].pt_min", i), fmt.Errorf("pt range [%v, %v] is empty", b.PtMin, b.PtMax))
		}
		if err := b.Curve.validateOn(b.PtMin, b.PtMax); err != nil {
			return fieldError(fmt.Sprintf("bins[%d].curve", i), err)
		}
	}
	return nil
}

// ConstantEfficiency is an efficiency independent of the kinematics.
type ConstantEfficiency float64

// Efficiency returns the constant.
func (c ConstantEfficiency) Efficiency(float64, float64) float64 {
	return float64(c)
}

// Table holds the scale factor families of one epoch.
type Table struct {
	Epoch  Epoch       `yaml:"epoch" json:"epoch"`
	Bottom HeavyFamily `yaml:"bottom" json:"bottom"`
	Charm  HeavyFamily `yaml:"charm" json:"charm"`
	Light  LightFamily `yaml:"light" json:"light"`
}

func (t Table) validate() error {
	if err := t.Bottom.validate(); err != nil {
		return fieldError("bottom", err)
	}
	if err := t.Charm.validate(); err != nil {
		return fieldError("charm", err)
	}
	if err := t.Light.validate(); err != nil {
		return fieldError("light", err)
	}
	return nil
}

// Calibration is the complete set of curves for one tagger working point.
type Calibration struct {
	// Threshold is the operating point: jets with discriminant >= Threshold are tagged.
	Threshold float64 `yaml:"threshold" json:"threshold"`
	// Tables holds one entry per supported epoch.
	Tables []Table `yaml:"tables" json:"tables"`
	// Mistag is the simulated light-flavour tagging efficiency.
	Mistag BinnedCurve `yaml:"mistag" json:"mistag"`
	// HeavyEfficiency is the simulated heavy-flavour tagging efficiency.
	HeavyEfficiency BinnedCurve `yaml:"heavy_efficiency" json:"heavy_efficiency"`
}

// Validate checks the calibration and returns a *errors.ConfigurationError
// naming the first malformed field.
func (c *Calibration) Validate() error {
	if c == nil {
		return kerrors.NewConfigurationError("btag.Calibration", "", "calibration is nil")
	}
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return kerrors.NewConfigurationError("btag.Calibration", "threshold", "threshold is not finite")
	}
	if len(c.Tables) == 0 {
		return kerrors.NewConfigurationError("btag.Calibration", "tables", "no epoch tables")
	}

	seen := make(map[Epoch]bool, len(c.Tables))
	for i, t := range c.Tables {
		field := fmt.Sprintf("tables[%d]", i)
		if seen[t.Epoch] {
			return kerrors.NewConfigurationError("btag.Calibration", field+".epoch",
				fmt.Sprintf("epoch %d listed twice", t.Epoch))
		}
		seen[t.Epoch] = true
		if err := t.validate(); err != nil {
			return configError(field, err)
		}
	}

	if err := c.Mistag.validate(); err != nil {
		return configError("mistag", err)
	}
	if err := c.HeavyEfficiency.validate(); err != nil {
		return configError("heavy_efficiency", err)
	}
	return nil
}

// Epochs returns the supported epochs in ascending order.
func (c *Calibration) Epochs() []Epoch {
	epochs := make([]Epoch, 0, len(c.Tables))
	for _, t := range c.Tables {
		epochs = append(epochs, t.Epoch)
	}
	slices.Sort(epochs)
	return epochs
}

// binIndex returns the bin of x for ascending edges, clamped to the first
// and last bins. A value on an inner edge belongs to the upper bin.
func binIndex(edges []float64, x float64) int {
	i, found := slices.BinarySearch(edges, x)
	if found {
		i++
	}
	// i is now the index of the first edge above x; the bin is the one before.
	return min(max(i-1, 0), len(edges)-2)
}

// etaIndex returns the first bin with |eta| < etaMax(i), or the last bin.
func etaIndex(n int, etaMax func(int) float64, eta float64) int {
	a := math.Abs(eta)
	for i := range n - 1 {
		if a < etaMax(i) {
			return i
		}
	}
	return n - 1
}

// pathError carries the dotted path of a malformed field while it bubbles up.
type pathError struct {
	path string
	err  error
}

func (e *pathError) Error() string { return e.path + ": " + e.err.Error() }

func fieldError(name string, err error) error {
	if pe, ok := err.(*pathError); ok {
		return &pathError{path: name + "." + pe.path, err: pe.err}
	}
	return &pathError{path: name, err: err}
}

func configError(prefix string, err error) error {
	path, msg := prefix, err.Error()
	if pe, ok := err.(*pathError); ok {
		path, msg = prefix+"."+pe.path, pe.err.Error()
	}
	return kerrors.NewConfigurationError("btag.Calibration", path, msg)
}
