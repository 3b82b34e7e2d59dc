package latte

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/itsatony/go-cuserr"
	"github.com/lattetex/latte/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point for rendering LaTeX documents. It manages
// parsing, execution, filter registration, and the component registry.
type Engine struct {
	registry *Registry
	filters  *internal.FilterRegistry
	executor *internal.Executor
	config   *engineConfig
	logger   *zap.Logger

	// Parsed-component cache keyed by name. Entries are invalidated when the
	// stored source no longer matches, so overwriting a component takes
	// effect on the next call.
	cacheMu sync.RWMutex
	cache   map[string]*cachedComponent

	tmplMu    sync.RWMutex
	templates map[string]*Template
}

// cachedComponent pairs a parsed AST with the source it was parsed from.
type cachedComponent struct {
	source string
	ast    *internal.RootNode
}

// New creates a new latte Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := config.store
	if store == nil {
		store = NewMemoryStore()
	}

	filters := internal.NewFilterRegistry()
	internal.RegisterBuiltinFilters(filters)

	engine := &Engine{
		registry:  NewRegistry(store, logger),
		filters:   filters,
		config:    config,
		logger:    logger,
		cache:     make(map[string]*cachedComponent),
		templates: make(map[string]*Template),
	}

	executorConfig := internal.ExecutorConfig{
		MaxDepth: config.maxDepth,
		Strict:   config.strict,
	}
	engine.executor = internal.NewExecutor(filters, engine, executorConfig, logger)

	logger.Debug(LogMsgEngineCreated,
		zap.Int(LogFieldCount, filters.Count()),
		zap.Bool(LogFieldStrict, config.strict))
	return engine, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Parse parses a template source string and returns a Template.
// The returned Template can be rendered multiple times with different data.
func (e *Engine) Parse(source string) (*Template, error) {
	ast, err := e.parseAST(source)
	if err != nil {
		return nil, err
	}
	return newTemplate(source, ast, e), nil
}

// parseAST runs the lexer and parser, translating failures into parse
// errors with position metadata.
func (e *Engine) parseAST(source string) (*internal.RootNode, error) {
	lexer := internal.NewLexer(source, e.logger)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, translateParseError(err)
	}

	parser := internal.NewParser(tokens, e.logger)
	ast, err := parser.Parse()
	if err != nil {
		return nil, translateParseError(err)
	}

	e.logger.Debug(LogMsgTemplateParsed, zap.Int(LogFieldSourceLen, len(source)))
	return ast, nil
}

// Render is a convenience method that parses and renders in one step.
// For templates that will be rendered multiple times, use Parse() instead.
func (e *Engine) Render(ctx context.Context, source string, data map[string]any) (string, error) {
	tmpl, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, data)
}

// RegisterComponent stores a component and drops any cached parse of it.
// Registering an existing name overwrites it.
func (e *Engine) RegisterComponent(ctx context.Context, name, source string) error {
	if err := e.registry.Register(ctx, name, source); err != nil {
		return err
	}

	e.cacheMu.Lock()
	delete(e.cache, name)
	e.cacheMu.Unlock()
	return nil
}

// MustRegisterComponent registers a component and panics on error.
func (e *Engine) MustRegisterComponent(ctx context.Context, name, source string) {
	if err := e.RegisterComponent(ctx, name, source); err != nil {
		panic(err)
	}
}

// LoadComponents registers every .tex file in a directory as a component
// named by its file name stem. Returns the number of components loaded.
func (e *Engine) LoadComponents(ctx context.Context, dir string) (int, error) {
	e.cacheMu.Lock()
	e.cache = make(map[string]*cachedComponent)
	e.cacheMu.Unlock()

	return e.registry.LoadDir(ctx, dir)
}

// Components returns the engine's component registry.
func (e *Engine) Components() *Registry {
	return e.registry
}

// RegisterFilter adds a custom formatting filter usable in pipe expressions.
// minArgs and maxArgs bound the filter's parenthesized arguments; use -1 for
// a variadic maximum.
func (e *Engine) RegisterFilter(name string, minArgs, maxArgs int, fn func(value any, args []any) (any, error)) error {
	return e.filters.Register(&internal.Filter{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Fn:      fn,
	})
}

// Filters returns the names of all registered filters, sorted.
func (e *Engine) Filters() []string {
	return e.filters.List()
}

// MaxDepth returns the configured nesting ceiling.
func (e *Engine) MaxDepth() int {
	return e.config.maxDepth
}

// Strict reports whether strict undefined-variable handling is enabled.
func (e *Engine) Strict() bool {
	return e.config.strict
}

// RegisterTemplate registers a named template for later rendering via
// RenderTemplate. Returns an error if the name is empty or taken.
func (e *Engine) RegisterTemplate(name, source string) error {
	if name == "" {
		return NewEmptyTemplateNameError()
	}

	tmpl, err := e.Parse(source)
	if err != nil {
		return err
	}

	e.tmplMu.Lock()
	defer e.tmplMu.Unlock()

	if _, exists := e.templates[name]; exists {
		return cuserr.NewValidationError(ErrCodeValidation, ErrMsgTemplateExists).
			WithMetadata(MetaKeyTemplate, name)
	}

	e.templates[name] = tmpl
	return nil
}

// RenderTemplate renders a registered template by name with the given data.
func (e *Engine) RenderTemplate(ctx context.Context, name string, data map[string]any) (string, error) {
	e.tmplMu.RLock()
	tmpl, ok := e.templates[name]
	e.tmplMu.RUnlock()

	if !ok {
		return "", NewTemplateNotFoundError(name)
	}
	return tmpl.Render(ctx, data)
}

// ListTemplates returns all registered template names in sorted order.
func (e *Engine) ListTemplates() []string {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke renders a component in an isolated context built from kwargs. It
// implements the executor's component resolution: depth continues counting
// from the call site, so recursive component chains hit the ceiling instead
// of recursing forever. Callers never see each other's variables; the
// component context holds exactly the keyword arguments of the call.
func (e *Engine) Invoke(ctx context.Context, name string, kwargs map[string]any, depth int) (string, error) {
	if e.config.maxDepth > 0 && depth+1 > e.config.maxDepth {
		return "", NewRecursionError(e.config.maxDepth, nil)
	}

	ast, err := e.componentAST(ctx, name)
	if err != nil {
		return "", err
	}

	e.logger.Debug(LogMsgComponentInvoked,
		zap.String(LogFieldComponent, name),
		zap.Int(LogFieldCount, len(kwargs)))

	// Copy kwargs so component-side Set calls cannot reach the caller's map.
	isolated := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		isolated[k] = v
	}

	out, err := e.executor.ExecuteAtDepth(ctx, ast, NewContext(isolated), depth+1)
	if err != nil {
		return "", err
	}
	return out, nil
}

// componentAST returns the parsed AST for a component, consulting the cache
// first. A cache entry is reused only while its source matches the store, so
// last-write-wins registration stays visible.
func (e *Engine) componentAST(ctx context.Context, name string) (*internal.RootNode, error) {
	comp, err := e.registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	e.cacheMu.RLock()
	cached, ok := e.cache[name]
	e.cacheMu.RUnlock()

	if ok && cached.source == comp.Source {
		e.logger.Debug(LogMsgTemplateCached, zap.String(LogFieldComponent, name))
		return cached.ast, nil
	}

	ast, err := e.parseAST(comp.Source)
	if err != nil {
		return nil, err
	}

	e.cacheMu.Lock()
	e.cache[name] = &cachedComponent{source: comp.Source, ast: ast}
	e.cacheMu.Unlock()

	return ast, nil
}

// translateParseError converts internal lexer/parser failures into the
// public parse error shape with position metadata.
func translateParseError(err error) error {
	var lexErr *internal.LexError
	if errors.As(err, &lexErr) {
		return NewParseError(ErrMsgParseFailed, lexErr.Pos(), err)
	}

	var parserErr *internal.ParserError
	if errors.As(err, &parserErr) {
		return NewParseError(ErrMsgParseFailed, parserErr.Pos(), err)
	}

	return NewParseError(ErrMsgParseFailed, Position{}, err)
}

// translateRenderError converts internal execution failures into the public
// error taxonomy. Errors that are already categorized pass through.
func translateRenderError(err error) error {
	var custom *cuserr.CustomError
	if errors.As(err, &custom) {
		return custom
	}

	var undefined *internal.UndefinedError
	if errors.As(err, &undefined) {
		return NewUndefinedVariableError(undefined.Path, err)
	}

	var depthErr *internal.MaxDepthError
	if errors.As(err, &depthErr) {
		return NewRecursionError(depthErr.Limit, err)
	}

	var valueErr *internal.FilterValueError
	if errors.As(err, &valueErr) {
		return NewFormatError(valueErr.FilterName, internal.Stringify(valueErr.Value), valueErr.Expected, err)
	}

	return NewRenderError(ErrMsgRenderFailed, err)
}
