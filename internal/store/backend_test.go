package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

func TestAttachCreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b := NewBackend()
	require.NoError(t, b.Attach(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(dir, dbFileName))
	assert.NoError(t, err)
}

func TestAttachRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config types.Config
		want   error
	}{
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "mysql"}, types.ErrBackendUnknown},
		{"postgres without dsn", types.Config{Backend: types.BackendPostgres}, types.ErrDSNRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend()
			err := b.Attach(context.Background(), tt.config)
			assert.ErrorIs(t, err, tt.want)
			_, err = b.GetTable(types.StoresTable)
			assert.ErrorIs(t, err, types.ErrLedgerDetached)
		})
	}
}

func TestAttachTwiceFails(t *testing.T) {
	b := setupLedger(t)
	err := b.Attach(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrAlreadyAttached)
}

func TestGetTable(t *testing.T) {
	b := setupLedger(t)
	for _, name := range types.StandardTableNames {
		tbl, err := b.GetTable(name)
		require.NoError(t, err, name)
		assert.NotNil(t, tbl)
	}
	_, err := b.GetTable("warehouses")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestDetachStopsOperations(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	tbl, err := b.GetTable(types.StoresTable)
	require.NoError(t, err)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	_, err = tbl.Get(context.Background(), 1)
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
	_, err = b.TopSellingProducts(context.Background())
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
	_, err = b.InsertOrderItem(context.Background(), types.OrderItem{OrderItemID: 1, OrderID: 1, ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
}

func TestDataPersistsAcrossAttach(t *testing.T) {
	ctx := context.Background()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	first := NewBackend()
	require.NoError(t, first.Attach(ctx, cfg))
	stores, err := first.GetTable(types.StoresTable)
	require.NoError(t, err)
	require.NoError(t, stores.Create(ctx, &types.Store{StoreID: 7, Name: "Kochi", Location: "Kerala"}))
	require.NoError(t, first.Detach())

	second := NewBackend()
	require.NoError(t, second.Attach(ctx, cfg))
	defer second.Detach()
	stores, err = second.GetTable(types.StoresTable)
	require.NoError(t, err)
	got, err := stores.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Kochi", got.(*types.Store).Name)
}
