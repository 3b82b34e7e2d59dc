package latte

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of ComponentStore.
// It is primarily intended for testing and development.
// All data is lost when the process terminates.
type MemoryStore struct {
	mu         sync.RWMutex
	components map[string]*StoredComponent
	closed     bool
}

// MemoryStoreDriver is the driver for creating MemoryStore instances.
type MemoryStoreDriver struct{}

func init() {
	RegisterStoreDriver(DriverNameMemory, &MemoryStoreDriver{})
}

// Open creates a new MemoryStore instance.
// The connection string is ignored for memory stores.
func (d *MemoryStoreDriver) Open(connectionString string) (ComponentStore, error) {
	return NewMemoryStore(), nil
}

// NewMemoryStore creates a new in-memory component store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		components: make(map[string]*StoredComponent),
	}
}

// Get retrieves a component by name.
func (s *MemoryStore) Get(ctx context.Context, name string) (*StoredComponent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	comp, ok := s.components[name]
	if !ok {
		return nil, NewStoreComponentNotFoundError(name)
	}

	return copyStoredComponent(comp), nil
}

// Put stores a component, overwriting any previous one of the same name.
func (s *MemoryStore) Put(ctx context.Context, comp *StoredComponent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if comp == nil || comp.Name == "" {
		return NewEmptyComponentNameError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	now := time.Now().UTC()
	stored := copyStoredComponent(comp)
	stored.UpdatedAt = now

	if existing, ok := s.components[comp.Name]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}

	s.components[comp.Name] = stored
	return nil
}

// Delete removes a component by name.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if _, ok := s.components[name]; !ok {
		return NewStoreComponentNotFoundError(name)
	}

	delete(s.components, name)
	return nil
}

// List returns all component names in sorted order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Exists checks if a component with the given name exists.
func (s *MemoryStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}

	_, ok := s.components[name]
	return ok, nil
}

// Close marks the store as closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// copyStoredComponent returns a shallow copy so callers cannot mutate the
// stored record.
func copyStoredComponent(comp *StoredComponent) *StoredComponent {
	c := *comp
	return &c
}
