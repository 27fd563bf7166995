package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/leadchat/pkg/adapters/sqlite"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	ports.RunBackendContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "ledger.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "wwl_visitor_data", `{"value":{}}`))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "wwl_visitor_data")
	require.NoError(t, err)
	assert.Equal(t, `{"value":{}}`, got)
	assert.Equal(t, path, reopened.Path())
}

func TestSQLiteStore_Closed(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
