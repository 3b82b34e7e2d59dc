package internal

import (
	"fmt"
	"sort"
	"sync"
)

// Filter represents a formatting filter applicable in pipe expressions. The
// piped value is passed separately from the filter's own arguments, so
// MinArgs/MaxArgs count only what appears inside the parentheses.
type Filter struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      func(value any, args []any) (any, error)
}

// FilterRegistry manages registered filters.
type FilterRegistry struct {
	filters map[string]*Filter
	mu      sync.RWMutex
}

// NewFilterRegistry creates a new filter registry.
func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{
		filters: make(map[string]*Filter),
	}
}

// Register adds a filter to the registry.
func (r *FilterRegistry) Register(f *Filter) error {
	if f == nil {
		return NewFilterRegistryError(ErrMsgFilterNilFilter, StringValueEmpty)
	}
	if f.Name == StringValueEmpty {
		return NewFilterRegistryError(ErrMsgFilterEmptyName, StringValueEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.filters[f.Name]; exists {
		return NewFilterRegistryError(ErrMsgFilterAlreadyExists, f.Name)
	}

	r.filters[f.Name] = f
	return nil
}

// MustRegister adds a filter and panics on error.
func (r *FilterRegistry) MustRegister(f *Filter) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Get retrieves a filter by name.
func (r *FilterRegistry) Get(name string) (*Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.filters[name]
	return f, ok
}

// Has checks if a filter is registered.
func (r *FilterRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.filters[name]
	return ok
}

// Call applies a filter by name to the given value.
func (r *FilterRegistry) Call(name string, value any, args []any) (any, error) {
	r.mu.RLock()
	f, ok := r.filters[name]
	r.mu.RUnlock()

	if !ok {
		return nil, NewFilterError(ErrMsgFilterNotFound, name)
	}

	argCount := len(args)
	if argCount < f.MinArgs {
		return nil, NewFilterArgError(ErrMsgFilterTooFewArgs, name, f.MinArgs, argCount)
	}
	if f.MaxArgs >= 0 && argCount > f.MaxArgs {
		return nil, NewFilterArgError(ErrMsgFilterTooManyArgs, name, f.MaxArgs, argCount)
	}

	result, err := f.Fn(value, args)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// List returns all registered filter names, sorted.
func (r *FilterRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered filters.
func (r *FilterRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filters)
}

// FilterRegistryError represents a filter registry error.
type FilterRegistryError struct {
	Message    string
	FilterName string
}

// NewFilterRegistryError creates a new filter registry error.
func NewFilterRegistryError(message, filterName string) *FilterRegistryError {
	return &FilterRegistryError{
		Message:    message,
		FilterName: filterName,
	}
}

// Error implements the error interface.
func (e *FilterRegistryError) Error() string {
	if e.FilterName != StringValueEmpty {
		return fmt.Sprintf("%s: %s", e.Message, e.FilterName)
	}
	return e.Message
}

// FilterError represents a filter lookup error.
type FilterError struct {
	Message    string
	FilterName string
}

// NewFilterError creates a new filter error.
func NewFilterError(message, filterName string) *FilterError {
	return &FilterError{
		Message:    message,
		FilterName: filterName,
	}
}

// Error implements the error interface.
func (e *FilterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.FilterName)
}

// FilterArgError represents a filter argument count error.
type FilterArgError struct {
	Message    string
	FilterName string
	Expected   int
	Actual     int
}

// NewFilterArgError creates a new filter argument error.
func NewFilterArgError(message, filterName string, expected, actual int) *FilterArgError {
	return &FilterArgError{
		Message:    message,
		FilterName: filterName,
		Expected:   expected,
		Actual:     actual,
	}
}

// Error implements the error interface.
func (e *FilterArgError) Error() string {
	return fmt.Sprintf("%s: %s (expected %d, got %d)", e.Message, e.FilterName, e.Expected, e.Actual)
}

// FilterValueError reports a value a filter cannot format. Expected describes
// the shape the filter accepts.
type FilterValueError struct {
	FilterName string
	Value      any
	Expected   string
}

// NewFilterValueError creates a new filter value error.
func NewFilterValueError(filterName string, value any, expected string) *FilterValueError {
	return &FilterValueError{
		FilterName: filterName,
		Value:      value,
		Expected:   expected,
	}
}

// Error implements the error interface.
func (e *FilterValueError) Error() string {
	return fmt.Sprintf("filter %s cannot format %v (%T): expected %s", e.FilterName, e.Value, e.Value, e.Expected)
}

// Filter error messages
const (
	ErrMsgFilterNilFilter     = "filter cannot be nil"
	ErrMsgFilterEmptyName     = "filter name cannot be empty"
	ErrMsgFilterAlreadyExists = "filter already registered"
	ErrMsgFilterNotFound      = "filter not found"
	ErrMsgFilterTooFewArgs    = "too few filter arguments"
	ErrMsgFilterTooManyArgs   = "too many filter arguments"
)

// Built-in filter names
const (
	FilterNameLatexEscape = "latex_escape"
	FilterNameEscape      = "escape"
	FilterNameCurrency    = "currency"
	FilterNameDateFormat  = "date_format"
	FilterNameImage       = "image"
	FilterNameUpper       = "upper"
	FilterNameLower       = "lower"
	FilterNameTrim        = "trim"
	FilterNameJoin        = "join"
	FilterNameLength      = "length"
	FilterNameDefault     = "default"
)
