package calibstore_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/artus-hep/kappa/pkg/kappa/btag"
	"github.com/artus-hep/kappa/pkg/kappa/btag/calibstore"
	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
threshold: 0.5
tables:
  - epoch: 2015
    bottom:
      nominal: {kind: polynomial, coefficients: [0.9]}
      pt_min: 20
      pt_max: 400
      pt_edges: [20, 100, 400]
      uncertainties: [0.05, 0.1]
      out_of_range_scale: 2
    charm:
      nominal: {kind: rational, coefficients: [0.9, 0.0, 0.0]}
      pt_min: 20
      pt_max: 400
      pt_edges: [20, 400]
      uncertainties: [0.2]
      out_of_range_scale: 2
    light:
      bins:
        - eta_max: 2.4
          pt_min: 20
          pt_max: 400
          nominal: {kind: polynomial, coefficients: [1.1]}
          down: {kind: polynomial, coefficients: [1.0]}
          up: {kind: polynomial, coefficients: [1.2]}
mistag:
  bins:
    - {eta_max: 2.4, pt_min: 20, pt_max: 400, curve: {kind: polynomial, coefficients: [0.01]}}
heavy_efficiency:
  bins:
    - {eta_max: 2.4, pt_min: 20, pt_max: 400, curve: {kind: polynomial, coefficients: [0.7]}}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStaticSource(t *testing.T) {
	ctx := context.Background()

	cal, err := calibstore.Default().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, btag.DefaultCalibration(), cal)

	custom := btag.DefaultCalibration()
	custom.Threshold = 0.9
	got, err := calibstore.StaticSource{Calibration: custom}.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, custom, got)
}

func TestStaticSource_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calibstore.Default().Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_RoundTrip(t *testing.T) {
	for _, name := range []string{"cal.yaml", "cal.yml", "cal.json"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			src := calibstore.FileSource{Path: filepath.Join(t.TempDir(), name)}

			want := btag.DefaultCalibration()
			require.NoError(t, src.Save(ctx, want))

			got, err := src.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFileSource_HandWritten(t *testing.T) {
	src := calibstore.FileSource{Path: writeFile(t, "cal.yaml", minimalYAML)}

	cal, err := src.Load(context.Background())
	require.NoError(t, err)

	e, err := btag.New(btag.WithCalibration(cal))
	require.NoError(t, err)
	assert.Equal(t, 0.5, e.Threshold())
	assert.Equal(t, []btag.Epoch{2015}, e.Epochs())

	assert.InDelta(t, 0.9, e.ScaleFactorB(50, 0, btag.Nominal, 2012), 1e-12)
	assert.InDelta(t, 0.85, e.ScaleFactorB(50, 0, btag.Down, 2015), 1e-12)
	assert.InDelta(t, 1.0, e.ScaleFactorB(150, 0, btag.Up, 2015), 1e-12)
	assert.InDelta(t, 1.1, e.ScaleFactorB(900, 0, btag.Up, 2015), 1e-12)
	assert.InDelta(t, 1.1, e.ScaleFactorC(150, 0, btag.Up, 2015), 1e-12)
	assert.InDelta(t, 1.2, e.ScaleFactorLight(150, 1, btag.Up, 2015), 1e-12)
	assert.InDelta(t, 0.01, e.MistagRate(150, 3), 1e-12)
}

func TestFileSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   func(t *testing.T) string
		op     string
		target error
	}{
		{
			name:   "missing file",
			path:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
			op:     "read",
			target: fs.ErrNotExist,
		},
		{
			name:   "unsupported extension",
			path:   func(t *testing.T) string { return writeFile(t, "cal.toml", "threshold = 0.5") },
			op:     "decode",
			target: calibstore.ErrUnsupportedFormat,
		},
		{
			name: "unknown yaml field",
			path: func(t *testing.T) string { return writeFile(t, "cal.yaml", "threshold: 0.5\nthreshhold: 0.6\n") },
			op:   "decode",
		},
		{
			name: "unknown json field",
			path: func(t *testing.T) string { return writeFile(t, "cal.json", `{"threshold": 0.5, "extra": true}`) },
			op:   "decode",
		},
		{
			name: "malformed json",
			path: func(t *testing.T) string { return writeFile(t, "cal.json", `{"threshold": `) },
			op:   "decode",
		},
		{
			name: "empty yaml",
			path: func(t *testing.T) string { return writeFile(t, "cal.yaml", "") },
			op:   "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := calibstore.FileSource{Path: tt.path(t)}

			cal, err := src.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, cal)

			var calErr *kerrors.CalibrationError
			require.True(t, errors.As(err, &calErr))
			assert.Equal(t, tt.op, calErr.Op)
			assert.Equal(t, "file:"+src.Path, calErr.Source)
			assert.Equal(t, kerrors.CategoryCalibration, kerrors.Categorize(err))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.False(t, kerrors.IsRetryable(err))
		})
	}
}

func TestFileSource_SaveUnsupported(t *testing.T) {
	src := calibstore.FileSource{Path: filepath.Join(t.TempDir(), "cal.txt")}

	err := src.Save(context.Background(), btag.DefaultCalibration())
	assert.ErrorIs(t, err, calibstore.ErrUnsupportedFormat)
}

func TestFileSource_InvalidContentsFailInEngine(t *testing.T) {
	src := calibstore.FileSource{Path: writeFile(t, "cal.yaml", "threshold: 0.5\n")}

	cal, err := src.Load(context.Background())
	require.NoError(t, err)

	_, err = btag.New(btag.WithCalibration(cal))
	assert.True(t, kerrors.IsConfiguration(err))
}
