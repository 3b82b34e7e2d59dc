package latte

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirStore(t *testing.T) (*DirStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestDirStore_PutGet(t *testing.T) {
	store, dir := newTestDirStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "header", Source: `== \VAR{title} ==`}))

	t.Run("file lands on disk", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "header"+ComponentFileExt))
		require.NoError(t, err)
		assert.Equal(t, `== \VAR{title} ==`, string(data))
	})

	t.Run("round trip", func(t *testing.T) {
		got, err := store.Get(ctx, "header")
		require.NoError(t, err)
		assert.Equal(t, "header", got.Name)
		assert.Equal(t, `== \VAR{title} ==`, got.Source)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("missing component", func(t *testing.T) {
		_, err := store.Get(ctx, "ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgComponentNotFound)
	})
}

func TestDirStore_List(t *testing.T) {
	store, dir := newTestDirStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "b", Source: "2"}))
	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "a", Source: "1"}))

	// files with a foreign extension are not components
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestDirStore_Delete(t *testing.T) {
	store, dir := newTestDirStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "tmp", Source: "x"}))
	require.NoError(t, store.Delete(ctx, "tmp"))

	_, err := os.Stat(filepath.Join(dir, "tmp"+ComponentFileExt))
	assert.True(t, os.IsNotExist(err))

	t.Run("delete missing", func(t *testing.T) {
		err := store.Delete(ctx, "ghost")
		require.Error(t, err)
	})
}

func TestDirStore_NameValidation(t *testing.T) {
	store, _ := newTestDirStore(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		componentName string
	}{
		{name: "empty", componentName: ""},
		{name: "path traversal", componentName: "../escape"},
		{name: "separator", componentName: "a/b"},
		{name: "backslash", componentName: `a\b`},
		{name: "colon", componentName: "a:b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Put(ctx, &StoredComponent{Name: tt.componentName, Source: "x"})
			require.Error(t, err)
		})
	}
}

func TestDirStore_EngineIntegration(t *testing.T) {
	store, _ := newTestDirStore(t)
	ctx := context.Background()

	engine, err := New(WithStore(store))
	require.NoError(t, err)

	require.NoError(t, engine.RegisterComponent(ctx, "sig", `-- \VAR{who}`))

	got, err := engine.Render(ctx, `\VAR{component('sig', who='Bob')}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "-- Bob", got)
}

func TestDirStore_ExternalEditsVisible(t *testing.T) {
	store, dir := newTestDirStore(t)
	ctx := context.Background()

	engine, err := New(WithStore(store))
	require.NoError(t, err)

	require.NoError(t, engine.RegisterComponent(ctx, "v", "one"))

	first, err := engine.Render(ctx, `\VAR{component('v')}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "one", first)

	// edit behind the engine's back; the parse cache must notice
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v"+ComponentFileExt), []byte("two"), 0o644))

	second, err := engine.Render(ctx, `\VAR{component('v')}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "two", second)
}
