package badgerstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tivity/pkg/storage"
	"github.com/goliatone/go-tivity/pkg/storage/badgerstore"
)

var _ storage.Storage = (*badgerstore.Store)(nil)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := badgerstore.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.GetItem(ctx, "@p")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, "@p", `{"views":2,"version":0}`))
	value, ok, err := s.GetItem(ctx, "@p")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"views":2,"version":0}`, value)

	require.NoError(t, s.RemoveItem(ctx, "@p"))
	_, ok, err = s.GetItem(ctx, "@p")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOnDiskSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := badgerstore.Open(badgerstore.Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, "k", "v"))
	require.NoError(t, s.Close())

	reopened, err := badgerstore.Open(badgerstore.Config{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()
	value, ok, err := reopened.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := badgerstore.Open(badgerstore.Config{})
	assert.Error(t, err)
}
