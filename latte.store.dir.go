package latte

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itsatony/go-cuserr"
	"github.com/natefinch/atomic"
)

// DirStore keeps each component as a .tex file in a flat directory, named by
// the component: "header" lives in <root>/header.tex. Subdirectories are
// ignored, matching the convention of hand-maintained snippet folders.
type DirStore struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// Filesystem permission constants
const (
	DirStorePermissions = os.FileMode(0o755)
)

// DirStoreDriver is the driver for creating DirStore instances.
type DirStoreDriver struct{}

func init() {
	RegisterStoreDriver(DriverNameDir, &DirStoreDriver{})
}

// Open creates a new DirStore instance.
// The connection string is the component directory path.
func (d *DirStoreDriver) Open(connectionString string) (ComponentStore, error) {
	return NewDirStore(connectionString)
}

// Dir store error messages
const (
	ErrMsgInvalidStoreRoot   = "component directory cannot be empty"
	ErrMsgCreateStoreDir     = "cannot create component directory"
	ErrMsgReadStoreDir       = "cannot read component directory"
	ErrMsgInvalidName        = "invalid component name"
	ErrMsgPathTraversal      = "component name contains path traversal"
)

// NewDirStore creates a component store over a directory of .tex files.
// The directory is created if it doesn't exist.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, cuserr.NewValidationError(ErrCodeStorage, ErrMsgInvalidStoreRoot)
	}

	if err := os.MkdirAll(root, DirStorePermissions); err != nil {
		return nil, cuserr.WrapStdError(err, ErrCodeStorage, ErrMsgCreateStoreDir).
			WithMetadata(MetaKeyFile, root)
	}

	return &DirStore{root: root}, nil
}

// Root returns the store's directory path.
func (s *DirStore) Root() string {
	return s.root
}

// Get retrieves a component by reading its .tex file.
func (s *DirStore) Get(ctx context.Context, name string) (*StoredComponent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateComponentFileName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	path := s.componentPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStoreComponentNotFoundError(name)
		}
		return nil, NewFileReadError(path, err)
	}

	info, err := os.Stat(path)
	var modTime time.Time
	if err == nil {
		modTime = info.ModTime().UTC()
	}

	return &StoredComponent{
		Name:      name,
		Source:    string(data),
		CreatedAt: modTime,
		UpdatedAt: modTime,
	}, nil
}

// Put writes a component's .tex file atomically, overwriting any existing
// file of the same name.
func (s *DirStore) Put(ctx context.Context, comp *StoredComponent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if comp == nil || comp.Name == "" {
		return NewEmptyComponentNameError()
	}
	if err := validateComponentFileName(comp.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	path := s.componentPath(comp.Name)
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(comp.Source))); err != nil {
		return NewFileWriteError(path, err)
	}
	return nil
}

// Delete removes a component's .tex file.
func (s *DirStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateComponentFileName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	path := s.componentPath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return NewStoreComponentNotFoundError(name)
		}
		return NewStorageError(err)
	}
	return nil
}

// List returns the names of all .tex files in the directory, sorted. The
// scan is non-recursive.
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, cuserr.WrapStdError(err, ErrCodeStorage, ErrMsgReadStoreDir).
			WithMetadata(MetaKeyFile, s.root)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ComponentFileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(fileName, ComponentFileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Exists checks if a component's .tex file is present.
func (s *DirStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateComponentFileName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}

	_, err := os.Stat(s.componentPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewStorageError(err)
	}
	return true, nil
}

// Close marks the store as closed.
func (s *DirStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// componentPath maps a component name to its file path.
func (s *DirStore) componentPath(name string) string {
	return filepath.Join(s.root, name+ComponentFileExt)
}

// validateComponentFileName rejects names that would escape the store
// directory or contain filesystem-hostile characters.
func validateComponentFileName(name string) error {
	if name == "" {
		return NewEmptyComponentNameError()
	}
	if strings.Contains(name, "..") {
		return cuserr.NewValidationError(ErrCodeStorage, ErrMsgPathTraversal).
			WithMetadata(MetaKeyComponent, name)
	}
	if strings.ContainsAny(name, "/\\:*?\"<>|") {
		return cuserr.NewValidationError(ErrCodeStorage, ErrMsgInvalidName).
			WithMetadata(MetaKeyComponent, name)
	}
	return nil
}
