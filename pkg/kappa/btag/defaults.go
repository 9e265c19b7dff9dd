package btag

// Medium working point of the combined secondary vertex tagger.
const DefaultThreshold = 0.679

// DefaultSeed seeds an Engine created without WithSeed.
const DefaultSeed int64 = 0

var (
	ptEdges2011 = []float64{30, 40, 50, 60, 70, 80, 100, 120, 160, 210, 260, 320, 400, 500, 670}
	sfbErr2011  = []float64{
		0.0295675, 0.0295095, 0.0210867, 0.0219349, 0.0227033, 0.0204062, 0.0185857,
		0.0256242, 0.0383341, 0.0409675, 0.0420284, 0.0541299, 0.0578761, 0.0655432,
	}

	ptEdges2012 = []float64{20, 30, 40, 50, 60, 70, 80, 100, 120, 160, 210, 260, 320, 400, 500, 600, 800}
	sfbErr2012  = []float64{
		0.0554504, 0.0209663, 0.0207019, 0.0230073, 0.0208719, 0.0200453, 0.0264232, 0.0240102,
		0.0229375, 0.0184615, 0.0216242, 0.0248119, 0.0465748, 0.0474666, 0.0718173, 0.0717567,
	}
)

// DefaultCalibration returns the built-in tables for epochs 2011 and 2012.
// Every call returns a fresh copy that the caller may modify.
func DefaultCalibration() *Calibration {
	return &Calibration{
		Threshold: DefaultThreshold,
		Tables:    []Table{table2011(), table2012()},
		Mistag: BinnedCurve{Bins: []CurveBin{
			{EtaMax: 0.8, PtMin: 20, PtMax: 670, Curve: Poly(0.00967751, 2.54564e-05, -6.92256e-10)},
			{EtaMax: 1.6, PtMin: 20, PtMax: 670, Curve: Poly(0.00974141, 5.09503e-05, 2.0641e-08)},
			{EtaMax: 2.4, PtMin: 20, PtMax: 670, Curve: Poly(0.013595, 0.000104538, -1.36087e-08)},
		}},
		HeavyEfficiency: BinnedCurve{Bins: []CurveBin{
			{EtaMax: 2.4, PtMin: 20, PtMax: 800, Curve: Poly(0.719)},
		}},
	}
}

func table2011() Table {
	nominal := Ratio(0.6981, 0.414063, 0.300155)
	return Table{
		Epoch:  2011,
		Bottom: heavy(nominal, 30, 670, ptEdges2011, sfbErr2011, 1),
		Charm:  heavy(nominal, 30, 670, ptEdges2011, sfbErr2011, 2),
		Light: LightFamily{Bins: []LightBin{
			{
				EtaMax: 0.8, PtMin: 20, PtMax: 670,
				Nominal: Poly(1.06182, 0.000617034, -1.5732e-06, 3.02909e-10),
				Down:    Poly(0.972455, 7.51396e-06, 4.91857e-07, -1.47661e-09),
				Up:      Poly(1.15116, 0.00122657, -3.63826e-06, 2.08242e-09),
			},
			{
				EtaMax: 1.6, PtMin: 20, PtMax: 670,
				Nominal: Poly(1.111, -9.64191e-06, 1.80811e-07, -5.44868e-10),
				Down:    Poly(1.02055, -0.000378856, 1.49029e-06, -1.74966e-09),
				Up:      Poly(1.20146, 0.000359543, -1.12866e-06, 6.59918e-10),
			},
			{
				EtaMax: 2.4, PtMin: 20, PtMax: 670,
				Nominal: Poly(1.08498, -0.000701422, 3.43612e-06, -4.11794e-09),
				Down:    Poly(0.983476, -0.000607242, 3.17997e-06, -4.01242e-09),
				Up:      Poly(1.18654, -0.000795808, 3.69226e-06, -4.22347e-09),
			},
		}},
	}
}

func table2012() Table {
	nominal := Ratio(0.726981, 0.253238, 0.188389)
	return Table{
		Epoch:  2012,
		Bottom: heavy(nominal, 20, 800, ptEdges2012, sfbErr2012, 1),
		Charm:  heavy(nominal, 20, 800, ptEdges2012, sfbErr2012, 2),
		Light: LightFamily{Bins: []LightBin{
			{
				EtaMax: 0.8, PtMin: 20, PtMax: 800,
				Nominal: Poly(1.06238, 0.00198635, -4.89082e-06, 3.29312e-09),
				Down:    Poly(0.972746, 0.00104424, -2.36081e-06, 1.53438e-09),
				Up:      Poly(1.15201, 0.00292575, -7.41497e-06, 5.0512e-09),
			},
			{
				EtaMax: 1.6, PtMin: 20, PtMax: 800,
				Nominal: Poly(1.08048, 0.00110831, -2.96189e-06, 2.16266e-09),
				Down:    Poly(0.9836, 0.000649761, -1.59773e-06, 1.14324e-09),
				Up:      Poly(1.17735, 0.00156533, -4.32257e-06, 3.18197e-09),
			},
			{
				EtaMax: 2.4, PtMin: 20, PtMax: 700,
				Nominal: Poly(1.09145, 0.000687171, -2.45054e-06, 1.7844e-09),
				Down:    Poly(1.00616, 0.000358884, -1.23768e-06, 6.86678e-10),
				Up:      Poly(1.17671, 0.0010147, -3.66269e-06, 2.88425e-09),
			},
		}},
	}
}

// heavy builds a heavy family; charm reuses the bottom curve with scaled uncertainties.
func heavy(nominal Formula, ptMin, ptMax float64, edges, errs []float64, errScale float64) HeavyFamily {
	unc := make([]float64, len(errs))
	for i, e := range errs {
		unc[i] = e * errScale
	}
	return HeavyFamily{
		Nominal:         Formula{Kind: nominal.Kind, Coefficients: append([]float64(nil), nominal.Coefficients...)},
		PtMin:           ptMin,
		PtMax:           ptMax,
		PtEdges:         append([]float64(nil), edges...),
		Uncertainties:   unc,
		OutOfRangeScale: 2,
	}
}
