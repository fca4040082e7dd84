package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateOnce(t *testing.T) {
	ctx := context.Background()
	store, st, _ := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, "legacy@x.com", Patch{UserID: Str("old")}))

	migrated, err := MigrateOnce(ctx, st, store, "")
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Empty(t, store.List(ctx))

	require.NoError(t, store.Upsert(ctx, "a@x.com", Patch{UserID: Str("u1")}))
	migrated, err = MigrateOnce(ctx, st, store, "")
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Len(t, store.List(ctx), 1)
}

func TestMigrateOnce_MarkerWriteFails(t *testing.T) {
	ctx := context.Background()
	store, st, _ := newTestStore(t)
	st.failSet = true

	migrated, err := MigrateOnce(ctx, st, store, "marker")
	require.Error(t, err)
	assert.True(t, migrated)

	st.failSet = false
	migrated, err = MigrateOnce(ctx, st, store, "marker")
	require.NoError(t, err)
	assert.True(t, migrated)
}

func TestMigrateOnce_ReadFails(t *testing.T) {
	store, st, _ := newTestStore(t)
	st.failGet = true

	_, err := MigrateOnce(context.Background(), st, store, "")
	require.ErrorIs(t, err, errDisk)
}
