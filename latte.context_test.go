package latte

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Get(t *testing.T) {
	ctx := NewContext(map[string]any{
		"name": "ACME",
		"client": map[string]any{
			"address": map[string]any{"city": "Berlin"},
		},
		"n": 42,
	})

	t.Run("flat key", func(t *testing.T) {
		got, ok := ctx.Get("name")
		require.True(t, ok)
		assert.Equal(t, "ACME", got)
	})

	t.Run("dotted path", func(t *testing.T) {
		got, ok := ctx.Get("client.address.city")
		require.True(t, ok)
		assert.Equal(t, "Berlin", got)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := ctx.Get("ghost")
		assert.False(t, ok)
	})

	t.Run("missing nested leaf", func(t *testing.T) {
		_, ok := ctx.Get("client.phone")
		assert.False(t, ok)
	})

	t.Run("path through scalar fails", func(t *testing.T) {
		_, ok := ctx.Get("n.deeper")
		assert.False(t, ok)
	})
}

func TestContext_Child(t *testing.T) {
	parent := NewContext(map[string]any{"a": "parent-a", "b": "parent-b"})
	child := parent.Child(map[string]any{"a": "child-a"})

	t.Run("child shadows parent", func(t *testing.T) {
		got, ok := child.Get("a")
		require.True(t, ok)
		assert.Equal(t, "child-a", got)
	})

	t.Run("falls back to parent", func(t *testing.T) {
		got, ok := child.Get("b")
		require.True(t, ok)
		assert.Equal(t, "parent-b", got)
	})

	t.Run("parent unaffected", func(t *testing.T) {
		got, ok := parent.Get("a")
		require.True(t, ok)
		assert.Equal(t, "parent-a", got)
	})
}

func TestContext_SetAndHelpers(t *testing.T) {
	ctx := NewContext(nil)
	ctx.Set("k", "v")

	assert.True(t, ctx.Has("k"))
	assert.Equal(t, "v", ctx.GetString("k"))
	assert.Equal(t, "fallback", ctx.GetDefault("missing", "fallback"))

	keys := ctx.Keys()
	assert.Equal(t, []string{"k"}, keys)
}
