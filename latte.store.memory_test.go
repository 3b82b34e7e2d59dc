package latte

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "header", Source: `\VAR{title}`}))

	got, err := store.Get(ctx, "header")
	require.NoError(t, err)
	assert.Equal(t, "header", got.Name)
	assert.Equal(t, `\VAR{title}`, got.Source)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "v", Source: "one"}))

	first, err := store.Get(ctx, "v")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "v", Source: "two"}))

	second, err := store.Get(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, "two", second.Source)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestMemoryStore_GetCopiesAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "c", Source: "orig"}))

	got, err := store.Get(ctx, "c")
	require.NoError(t, err)
	got.Source = "mutated"

	again, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "orig", again.Source)
}

func TestMemoryStore_DeleteListExists(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "b", Source: "x"}))
	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "a", Source: "y"}))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	exists, err := store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "a"))

	exists, err = store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)

	t.Run("get after delete", func(t *testing.T) {
		_, err := store.Get(ctx, "a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgComponentNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := store.Delete(ctx, "ghost")
		require.Error(t, err)
	})
}

func TestMemoryStore_Closed(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &StoredComponent{Name: "x", Source: "y"}))
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgStoreClosed)

	err = store.Put(ctx, &StoredComponent{Name: "z", Source: "w"})
	require.Error(t, err)
}

func TestMemoryStore_ContextCancelled(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, &StoredComponent{Name: "x", Source: "y"})
	require.Error(t, err)
}

func TestOpenStore_Drivers(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		store, err := OpenStore(DriverNameMemory, "")
		require.NoError(t, err)
		defer store.Close()
		_, ok := store.(*MemoryStore)
		assert.True(t, ok)
	})

	t.Run("dir driver", func(t *testing.T) {
		store, err := OpenStore(DriverNameDir, t.TempDir())
		require.NoError(t, err)
		defer store.Close()
		_, ok := store.(*DirStore)
		assert.True(t, ok)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenStore("carrier-pigeon", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownDriver)
	})

	t.Run("registered drivers listed", func(t *testing.T) {
		drivers := ListStoreDrivers()
		assert.Contains(t, drivers, DriverNameMemory)
		assert.Contains(t, drivers, DriverNameDir)
		assert.Contains(t, drivers, DriverNamePostgres)
	})
}
