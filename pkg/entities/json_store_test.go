package entities

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlab/skillforge/pkg/types/entity"
)

func newTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestJSONStoreCreateAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestJSONStore(t)

	e := entity.New(entity.KindSolution, "Roundtrip")
	e.Skills = append(e.Skills, entity.Item{"id": "gateway", "role": "gateway"})
	require.NoError(t, store.Create(ctx, e))

	loaded, err := store.Load(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, loaded.ID)
	assert.Equal(t, "Roundtrip", loaded.Name)
	require.Len(t, loaded.Skills, 1)
	assert.Equal(t, "gateway", loaded.Skills[0]["id"])
}

func TestJSONStoreLoadNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestJSONStore(t)

	_, err := store.Load(ctx, "sol_does_not_exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestJSONStoreSaveRequiresCreate(t *testing.T) {
	ctx := context.Background()
	store := newTestJSONStore(t)

	e := entity.New(entity.KindSolution, "NeverCreated")
	err := store.Save(ctx, e)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound), "save must not silently create")
}

func TestJSONStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestJSONStore(t)

	e := entity.New(entity.KindSolution, "Original")
	require.NoError(t, store.Create(ctx, e))

	e.Name = "Renamed"
	e.Phase = entity.PhaseMockTesting
	require.NoError(t, store.Save(ctx, e))

	loaded, err := store.Load(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
	assert.Equal(t, entity.PhaseMockTesting, loaded.Phase)
}

func TestJSONStoreRemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestJSONStore(t)

	e := entity.New(entity.KindSolution, "Removable")
	require.NoError(t, store.Create(ctx, e))

	require.NoError(t, store.Remove(ctx, e.ID))
	_, err := store.Load(ctx, e.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	// Removing again, or removing something that never existed, succeeds.
	assert.NoError(t, store.Remove(ctx, e.ID))
	assert.NoError(t, store.Remove(ctx, "does-not-exist"))
}

func TestJSONStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestJSONStore(t)

	first := entity.New(entity.KindSolution, "First")
	first.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	second := entity.New(entity.KindSkill, "Second")
	second.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	second.Tools = []entity.Item{{"id": "search"}}

	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Create(ctx, first))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "First", summaries[0].Name, "summaries are ordered by creation time")
	assert.Equal(t, "Second", summaries[1].Name)
	assert.Equal(t, 1, summaries[1].ToolCount)
}

func TestJSONStoreListSkipsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	e := entity.New(entity.KindSolution, "Healthy")
	require.NoError(t, store.Create(ctx, e))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sol_corrupt.json"), []byte("{not json"), 0o644))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestJSONStoreAtomicWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	e := entity.New(entity.KindSolution, "Atomic")
	require.NoError(t, store.Create(ctx, e))
	require.NoError(t, store.Save(ctx, e))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}
