// Package calibstore loads b-tagging calibrations from external storage.
//
// A Source returns a decoded *btag.Calibration. Sources do not validate
// what they load; btag.New does that and reports the offending field.
// Failures reading or decoding a source are returned as
// *errors.CalibrationError.
package calibstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/artus-hep/kappa/pkg/kappa/btag"
	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"gopkg.in/yaml.v3"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a store holds no calibration.
	ErrNotFound = errors.New("calibration not found")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("calibration store closed")

	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt = errors.New("corrupt calibration record")

	// ErrUnsupportedFormat is returned for file extensions other than
	// .yaml, .yml and .json.
	ErrUnsupportedFormat = errors.New("unsupported calibration format")
)

// Source supplies a calibration.
type Source interface {
	Load(ctx context.Context) (*btag.Calibration, error)
}

// StaticSource serves a calibration held in memory.
type StaticSource struct {
	// Calibration is returned by Load. Nil means btag.DefaultCalibration.
	Calibration *btag.Calibration
}

var _ Source = StaticSource{}

// Default returns a source serving the built-in calibration.
func Default() StaticSource {
	return StaticSource{}
}

// Load implements Source.
func (s StaticSource) Load(ctx context.Context) (*btag.Calibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Calibration == nil {
		return btag.DefaultCalibration(), nil
	}
	return s.Calibration, nil
}

func (s StaticSource) String() string {
	if s.Calibration == nil {
		return "builtin"
	}
	return "static"
}

// FileSource reads a calibration from a YAML or JSON file.
// The format follows the extension. Unknown fields are rejected.
type FileSource struct {
	Path string
}

var _ Source = FileSource{}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (*btag.Calibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &kerrors.CalibrationError{
			Source:    s.String(),
			Op:        "read",
			Err:       err,
			Transient: !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission),
		}
	}

	cal, err := decode(s.Path, data)
	if err != nil {
		return nil, s.fail("decode", err)
	}
	return cal, nil
}

// Save writes cal to the file in the format given by its extension.
func (s FileSource) Save(ctx context.Context, cal *btag.Calibration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cal)
	case ".json":
		data, err = json.MarshalIndent(cal, "", "  ")
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return s.fail("encode", err)
	}

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return s.fail("write", err)
	}
	return nil
}

func (s FileSource) String() string {
	return "file:" + s.Path
}

func (s FileSource) fail(op string, err error) error {
	return &kerrors.CalibrationError{Source: s.String(), Op: op, Err: err}
}

func decode(path string, data []byte) (*btag.Calibration, error) {
	var cal btag.Calibration

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cal); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("empty document")
			}
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cal); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("empty document")
			}
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	return &cal, nil
}
