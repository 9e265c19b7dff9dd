package calibstore_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/artus-hep/kappa/pkg/kappa/btag"
	"github.com/artus-hep/kappa/pkg/kappa/btag/calibstore"
	kerrors "github.com/artus-hep/kappa/pkg/kappa/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *calibstore.SQLiteStore {
	t.Helper()
	store, err := calibstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Empty(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	cal, err := store.Load(ctx)
	assert.Nil(t, cal)
	assert.ErrorIs(t, err, calibstore.ErrNotFound)
	assert.Equal(t, kerrors.CategoryCalibration, kerrors.Categorize(err))
	assert.False(t, kerrors.IsRetryable(err))

	epochs, err := store.Epochs(ctx)
	require.NoError(t, err)
	assert.Empty(t, epochs)
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	want := btag.DefaultCalibration()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	epochs, err := store.Epochs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []btag.Epoch{2011, 2012}, epochs)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, btag.DefaultCalibration()))

	next := btag.DefaultCalibration()
	next.Threshold = 0.244
	next.Tables = next.Tables[1:]
	require.NoError(t, store.Save(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestSQLiteStore_SaveTableAndDeleteEpoch(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, btag.DefaultCalibration()))

	extra := btag.DefaultCalibration().Tables[1]
	extra.Epoch = 2016
	require.NoError(t, store.SaveTable(ctx, extra))

	epochs, err := store.Epochs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []btag.Epoch{2011, 2012, 2016}, epochs)

	cal, err := store.Load(ctx)
	require.NoError(t, err)
	e, err := btag.New(btag.WithCalibration(cal))
	require.NoError(t, err)
	assert.Equal(t, btag.Epoch(2016), e.ResolveEpoch(2017))

	require.NoError(t, store.DeleteEpoch(ctx, 2011))
	require.NoError(t, store.DeleteEpoch(ctx, 1999))

	epochs, err = store.Epochs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []btag.Epoch{2012, 2016}, epochs)
}

func TestSQLiteStore_TablesWithoutSharedCurves(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTable(ctx, btag.DefaultCalibration().Tables[0]))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, calibstore.ErrNotFound)
}

func TestSQLiteStore_SaveNil(t *testing.T) {
	store := newMemoryStore(t)

	err := store.Save(context.Background(), nil)
	var calErr *kerrors.CalibrationError
	require.ErrorAs(t, err, &calErr)
	assert.Equal(t, "save", calErr.Op)
}

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "calibration.db")

	store1, err := calibstore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Save(ctx, btag.DefaultCalibration()))
	require.NoError(t, store1.Close())

	store2, err := calibstore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, btag.DefaultCalibration(), got)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := calibstore.NewSQLiteStore("/nonexistent/path/calibration.db")
	assert.Error(t, err)
}

func TestSQLiteStore_Closed(t *testing.T) {
	store, err := calibstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())

	assert.ErrorIs(t, store.Save(ctx, btag.DefaultCalibration()), calibstore.ErrStoreClosed)
	assert.ErrorIs(t, store.SaveTable(ctx, btag.Table{}), calibstore.ErrStoreClosed)
	assert.ErrorIs(t, store.DeleteEpoch(ctx, 2012), calibstore.ErrStoreClosed)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, calibstore.ErrStoreClosed)
	_, err = store.Epochs(ctx)
	assert.ErrorIs(t, err, calibstore.ErrStoreClosed)
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, btag.DefaultCalibration()))

	const numGoroutines = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				switch (id + j) % 3 {
				case 0:
					_, _ = store.Load(ctx)
				case 1:
					_, _ = store.Epochs(ctx)
				case 2:
					tbl := btag.DefaultCalibration().Tables[0]
					tbl.Epoch = btag.Epoch(2000 + id)
					_ = store.SaveTable(ctx, tbl)
				}
			}
		}(i)
	}
	wg.Wait()

	cal, err := store.Load(ctx)
	require.NoError(t, err)
	_, err = btag.New(btag.WithCalibration(cal))
	assert.NoError(t, err)
}

func TestSQLiteStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "calibration.db")

	store, err := calibstore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Save(ctx, btag.DefaultCalibration()))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE epoch_tables SET data = ? WHERE epoch = 2011`, []byte("{not json"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, calibstore.ErrCorrupt)
	assert.Contains(t, err.Error(), "epoch 2011")
	assert.False(t, kerrors.IsRetryable(err))
}
