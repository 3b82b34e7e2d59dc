package latte

import (
	"strings"
	"sync"

	"github.com/lattetex/latte/internal"
)

// Context provides access to template variables. It supports dot-notation
// path resolution (e.g., "client.address.city") and hierarchical scoping
// through parent-child relationships. Component rendering never uses Child:
// a component context is built fresh from its kwargs, so caller variables
// cannot leak in.
type Context struct {
	data   map[string]any
	parent *Context
	mu     sync.RWMutex
}

// NewContext creates a new execution context with the given data.
// If data is nil, an empty map is used.
func NewContext(data map[string]any) *Context {
	if data == nil {
		data = make(map[string]any)
	}
	return &Context{data: data}
}

// Child creates a context layered over this one. Lookups fall back to the
// parent when the child has no value for the leading path segment.
func (c *Context) Child(data map[string]any) *Context {
	child := NewContext(data)
	child.parent = c
	return child
}

// Get retrieves a value by dot-notation path.
// Returns the value and true if found, or nil and false if not found.
func (c *Context) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.getPath(path)
}

// getPath resolves a dot-notation path without locking (internal use).
func (c *Context) getPath(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	head := path
	rest := ""
	if idx := strings.Index(path, internal.PathSeparator); idx >= 0 {
		head = path[:idx]
		rest = path[idx+1:]
	}

	val, ok := c.data[head]
	if !ok {
		if c.parent != nil {
			return c.parent.getPath(path)
		}
		return nil, false
	}

	if rest == "" {
		return val, true
	}
	return internal.ResolvePath(val, rest)
}

// GetString retrieves a string value by path.
// Returns empty string if not found or not a string.
func (c *Context) GetString(path string) string {
	val, ok := c.Get(path)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// GetDefault retrieves a value by path with a fallback default.
func (c *Context) GetDefault(path string, defaultVal any) any {
	val, ok := c.Get(path)
	if !ok {
		return defaultVal
	}
	return val
}

// Set sets a value for a top-level key.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
}

// Has checks if a value exists at the given path.
func (c *Context) Has(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// Keys returns the top-level keys of this context, excluding parent scopes.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}
