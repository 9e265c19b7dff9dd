package calibstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artus-hep/kappa/pkg/kappa/btag"
	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists calibrations to SQLite.
//
// Epoch tables are stored one row per epoch. The threshold and the
// efficiency curves shared by all epochs live in a single row.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

var _ Source = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a calibration store.
// The path should be a file path (e.g., "./calibration.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS epoch_tables (
			epoch INTEGER PRIMARY KEY,
			updated TEXT NOT NULL,
			data BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create epoch table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS shared_curves (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			threshold REAL NOT NULL,
			updated TEXT NOT NULL,
			mistag BLOB NOT NULL,
			heavy_efficiency BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create shared table: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) String() string {
	return "sqlite:" + s.path
}

// Save replaces the stored calibration with cal.
func (s *SQLiteStore) Save(ctx context.Context, cal *btag.Calibration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if cal == nil {
		return s.fail("save", errors.New("calibration is nil"))
	}

	if err := s.save(ctx, cal); err != nil {
		return s.fail("save", err)
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, cal *btag.Calibration) error {
	mistag, err := json.Marshal(cal.Mistag)
	if err != nil {
		return fmt.Errorf("encode mistag: %w", err)
	}
	heavyEff, err := json.Marshal(cal.HeavyEfficiency)
	if err != nil {
		return fmt.Errorf("encode heavy efficiency: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := tx.ExecContext(ctx, `DELETE FROM epoch_tables`); err != nil {
		return fmt.Errorf("clear epoch tables: %w", err)
	}
	for _, t := range cal.Tables {
		if err := upsertTable(ctx, tx, t, now); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO shared_curves (id, threshold, updated, mistag, heavy_efficiency)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			threshold = excluded.threshold,
			updated = excluded.updated,
			mistag = excluded.mistag,
			heavy_efficiency = excluded.heavy_efficiency
	`, cal.Threshold, now, mistag, heavyEff); err != nil {
		return fmt.Errorf("save shared curves: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveTable adds or replaces the table of a single epoch, leaving the
// other epochs and the shared curves untouched.
func (s *SQLiteStore) SaveTable(ctx context.Context, t btag.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err := upsertTable(ctx, s.db, t, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return s.fail("save", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertTable(ctx context.Context, db execer, t btag.Table, updated string) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode epoch %d: %w", t.Epoch, err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO epoch_tables (epoch, updated, data)
		VALUES (?, ?, ?)
		ON CONFLICT(epoch) DO UPDATE SET
			updated = excluded.updated,
			data = excluded.data
	`, int(t.Epoch), updated, data); err != nil {
		return fmt.Errorf("save epoch %d: %w", t.Epoch, err)
	}
	return nil
}

// Load implements Source. It returns ErrNotFound, wrapped in a
// *errors.CalibrationError, if the shared curves or every epoch table
// are missing, and ErrCorrupt if a stored record does not decode.
// Other database failures are marked transient.
func (s *SQLiteStore) Load(ctx context.Context) (*btag.Calibration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	cal, err := s.load(ctx)
	if err != nil {
		return nil, &kerrors.CalibrationError{
			Source:    s.String(),
			Op:        "load",
			Err:       err,
			Transient: ctx.Err() == nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrCorrupt),
		}
	}
	return cal, nil
}

func (s *SQLiteStore) load(ctx context.Context) (*btag.Calibration, error) {
	var (
		cal              btag.Calibration
		mistag, heavyEff []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT threshold, mistag, heavy_efficiency FROM shared_curves WHERE id = 1
	`).Scan(&cal.Threshold, &mistag, &heavyEff)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load shared curves: %w", err)
	}
	if err := json.Unmarshal(mistag, &cal.Mistag); err != nil {
		return nil, fmt.Errorf("%w: mistag: %v", ErrCorrupt, err)
	}
	if err := json.Unmarshal(heavyEff, &cal.HeavyEfficiency); err != nil {
		return nil, fmt.Errorf("%w: heavy efficiency: %v", ErrCorrupt, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT epoch, data FROM epoch_tables ORDER BY epoch
	`)
	if err != nil {
		return nil, fmt.Errorf("load epoch tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			epoch int
			data  []byte
			t     btag.Table
		)
		if err := rows.Scan(&epoch, &data); err != nil {
			return nil, fmt.Errorf("scan epoch table: %w", err)
		}
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("%w: epoch %d: %v", ErrCorrupt, epoch, err)
		}
		t.Epoch = btag.Epoch(epoch)
		cal.Tables = append(cal.Tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate epoch tables: %w", err)
	}

	if len(cal.Tables) == 0 {
		return nil, ErrNotFound
	}
	return &cal, nil
}

// Epochs returns the stored epochs in ascending order.
func (s *SQLiteStore) Epochs(ctx context.Context) ([]btag.Epoch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT epoch FROM epoch_tables ORDER BY epoch`)
	if err != nil {
		return nil, s.fail("list", err)
	}
	defer rows.Close()

	var epochs []btag.Epoch
	for rows.Next() {
		var e int
		if err := rows.Scan(&e); err != nil {
			return nil, s.fail("list", err)
		}
		epochs = append(epochs, btag.Epoch(e))
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", err)
	}
	return epochs, nil
}

// DeleteEpoch removes the table of one epoch.
// Returns nil if the epoch is not stored.
func (s *SQLiteStore) DeleteEpoch(ctx context.Context, epoch btag.Epoch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM epoch_tables WHERE epoch = ?`, int(epoch)); err != nil {
		return s.fail("delete", err)
	}
	return nil
}

// Close releases the database. Closing twice is safe.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore) fail(op string, err error) error {
	return &kerrors.CalibrationError{Source: s.String(), Op: op, Err: err}
}
