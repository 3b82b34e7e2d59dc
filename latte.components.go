package latte

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Registry exposes named components to the template engine. It is a thin
// layer over a ComponentStore that adds validation, logging, and the
// known-names diagnostics the engine attaches to lookup failures.
type Registry struct {
	store  ComponentStore
	logger *zap.Logger
}

// NewRegistry creates a component registry over the given store.
func NewRegistry(store ComponentStore, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:  store,
		logger: logger,
	}
}

// Register stores a component under the given name. Registering an existing
// name overwrites it: the last write wins.
func (r *Registry) Register(ctx context.Context, name, source string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewEmptyComponentNameError()
	}

	err := r.store.Put(ctx, &StoredComponent{Name: name, Source: source})
	if err != nil {
		return err
	}

	r.logger.Debug(LogMsgComponentRegister, zap.String(LogFieldComponent, name))
	return nil
}

// MustRegister stores a component and panics on error.
func (r *Registry) MustRegister(ctx context.Context, name, source string) {
	if err := r.Register(ctx, name, source); err != nil {
		panic(err)
	}
}

// Get retrieves a component by exact, case-sensitive name. An unknown name
// yields a not-found error carrying the sorted list of registered names.
func (r *Registry) Get(ctx context.Context, name string) (*StoredComponent, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewEmptyComponentNameError()
	}

	comp, err := r.store.Get(ctx, name)
	if err != nil {
		ok, existsErr := r.store.Exists(ctx, name)
		if existsErr == nil && !ok {
			known, listErr := r.store.List(ctx)
			if listErr == nil {
				return nil, NewComponentNotFoundError(name, known)
			}
		}
		return nil, err
	}

	return comp, nil
}

// Has checks if a component is registered.
func (r *Registry) Has(ctx context.Context, name string) bool {
	ok, err := r.store.Exists(ctx, name)
	return err == nil && ok
}

// Unregister removes a component by name.
// Returns true if the component existed and was removed.
func (r *Registry) Unregister(ctx context.Context, name string) bool {
	return r.store.Delete(ctx, name) == nil
}

// List returns all registered component names in sorted order.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Count returns the number of registered components.
func (r *Registry) Count(ctx context.Context) (int, error) {
	names, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// LoadDir registers every .tex file in a directory as a component named by
// its file name stem ("header.tex" becomes "header"). The scan is
// non-recursive. Returns the number of components loaded.
func (r *Registry) LoadDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, NewFileReadError(dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ComponentFileExt) {
			continue
		}

		path := filepath.Join(dir, fileName)
		data, err := os.ReadFile(path)
		if err != nil {
			return loaded, NewFileReadError(path, err)
		}

		name := strings.TrimSuffix(fileName, ComponentFileExt)
		if err := r.Register(ctx, name, string(data)); err != nil {
			return loaded, err
		}
		loaded++
	}

	r.logger.Info(LogMsgComponentsLoaded,
		zap.String(LogFieldDir, dir),
		zap.Int(LogFieldCount, loaded))
	return loaded, nil
}
