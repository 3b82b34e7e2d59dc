package internal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ContextAccessor provides read access to template variables. Paths use
// dotted notation for nested lookup ("client.address.city").
type ContextAccessor interface {
	Get(path string) (any, bool)
	Has(path string) bool
}

// ComponentInvoker renders a registered component with an isolated context
// built from kwargs. depth is the caller's nesting depth; implementations
// must enforce the depth ceiling when descending.
type ComponentInvoker interface {
	Invoke(ctx context.Context, name string, kwargs map[string]any, depth int) (string, error)
}

// ExecutorConfig holds executor configuration options.
type ExecutorConfig struct {
	MaxDepth int  // maximum nesting depth (0 = unlimited)
	Strict   bool // undefined variables in output positions are fatal
}

// DefaultExecutorConfig returns the default executor configuration.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxDepth: DefaultMaxDepth,
	}
}

// Executor traverses an AST and produces output by evaluating directives.
type Executor struct {
	filters *FilterRegistry
	invoker ComponentInvoker
	config  ExecutorConfig
	logger  *zap.Logger
}

// NewExecutor creates a new executor. The filter registry is shared with the
// owning engine so user-registered filters are visible here.
func NewExecutor(filters *FilterRegistry, invoker ComponentInvoker, config ExecutorConfig, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgExecutorCreated)

	return &Executor{
		filters: filters,
		invoker: invoker,
		config:  config,
		logger:  logger,
	}
}

// Execute processes the AST and returns the rendered output.
func (e *Executor) Execute(ctx context.Context, root *RootNode, execCtx ContextAccessor) (string, error) {
	return e.ExecuteAtDepth(ctx, root, execCtx, 0)
}

// ExecuteAtDepth processes the AST starting from a given nesting depth. It is
// the re-entry point for component rendering, which continues counting depth
// across the component boundary.
func (e *Executor) ExecuteAtDepth(ctx context.Context, root *RootNode, execCtx ContextAccessor, depth int) (string, error) {
	e.logger.Debug(LogMsgExecutorStart, zap.Int(LogFieldDepth, depth))

	result, err := e.executeNodes(ctx, root.Children, execCtx, depth)
	if err != nil {
		return StringValueEmpty, err
	}

	e.logger.Debug(LogMsgExecutorEnd)
	return result, nil
}

// executeNodes processes a slice of nodes and concatenates their output.
func (e *Executor) executeNodes(ctx context.Context, nodes []Node, execCtx ContextAccessor, depth int) (string, error) {
	if e.config.MaxDepth > 0 && depth > e.config.MaxDepth {
		return StringValueEmpty, NewMaxDepthError(e.config.MaxDepth)
	}

	if err := ctx.Err(); err != nil {
		return StringValueEmpty, err
	}

	var sb strings.Builder

	for _, node := range nodes {
		output, err := e.executeNode(ctx, node, execCtx, depth)
		if err != nil {
			return StringValueEmpty, err
		}
		sb.WriteString(output)
	}

	return sb.String(), nil
}

// executeNode processes a single node and returns its output.
func (e *Executor) executeNode(ctx context.Context, node Node, execCtx ContextAccessor, depth int) (string, error) {
	switch n := node.(type) {
	case *TextNode:
		return n.Content, nil

	case *OutputNode:
		return e.executeOutput(ctx, n, execCtx, depth)

	case *IfNode:
		return e.executeIf(ctx, n, execCtx, depth)

	case *ForNode:
		return e.executeFor(ctx, n, execCtx, depth)

	default:
		return StringValueEmpty, NewExecutorError(ErrMsgUnknownNodeType, fmt.Sprintf("%T", node), node.Pos())
	}
}

// executeOutput evaluates a \VAR{expr} directive and stringifies the result.
func (e *Executor) executeOutput(ctx context.Context, node *OutputNode, execCtx ContextAccessor, depth int) (string, error) {
	evaluator := e.newEvaluator(ctx, execCtx, depth)

	value, err := evaluator.Evaluate(node.Expr)
	if err != nil {
		return StringValueEmpty, e.wrapEvalError(err, node.Source, node.Position)
	}

	return Stringify(value), nil
}

// executeIf renders the first branch whose condition is truthy. Conditions
// are evaluated leniently: an undefined variable is falsy even in strict
// mode, so templates can guard optional data.
func (e *Executor) executeIf(ctx context.Context, node *IfNode, execCtx ContextAccessor, depth int) (string, error) {
	evaluator := e.newEvaluator(ctx, execCtx, depth)

	for i, branch := range node.Branches {
		if branch.Condition == nil {
			e.logger.Debug(LogMsgBranchSelected, zap.Int(LogFieldBranch, i))
			return e.executeNodes(ctx, branch.Children, execCtx, depth+1)
		}

		result, err := evaluator.EvaluateBool(branch.Condition)
		if err != nil {
			return StringValueEmpty, e.wrapEvalError(err, branch.Source, branch.Position)
		}

		if result {
			e.logger.Debug(LogMsgBranchSelected, zap.Int(LogFieldBranch, i))
			return e.executeNodes(ctx, branch.Children, execCtx, depth+1)
		}
	}

	return StringValueEmpty, nil
}

// executeFor iterates a sequence, rendering the body once per item in a
// child scope that exposes the loop variable and loop metadata.
func (e *Executor) executeFor(ctx context.Context, node *ForNode, execCtx ContextAccessor, depth int) (string, error) {
	evaluator := e.newEvaluator(ctx, execCtx, depth)

	seqValue, err := evaluator.Evaluate(node.SeqExpr)
	if err != nil {
		return StringValueEmpty, e.wrapEvalError(err, node.Source, node.Position)
	}

	items, err := toSequence(seqValue)
	if err != nil {
		return StringValueEmpty, NewExecutorErrorWithCause(ErrMsgNotIterable, node.Source, node.Position, err)
	}

	e.logger.Debug(LogMsgLoopStart, zap.Int(LogFieldItems, len(items)))

	var sb strings.Builder
	length := len(items)

	for i, item := range items {
		scope := newLoopScope(execCtx, node.VarName, item, i, length)

		output, err := e.executeNodes(ctx, node.Children, scope, depth+1)
		if err != nil {
			return StringValueEmpty, err
		}
		sb.WriteString(output)
	}

	return sb.String(), nil
}

// newEvaluator builds an expression evaluator with the component invoker
// bound to the current render context and depth.
func (e *Executor) newEvaluator(ctx context.Context, execCtx ContextAccessor, depth int) *ExprEvaluator {
	var caller ComponentCaller
	if e.invoker != nil {
		caller = &boundComponentCaller{ctx: ctx, invoker: e.invoker, depth: depth}
	}
	return NewExprEvaluator(e.filters, caller, execCtx, e.config.Strict)
}

// wrapEvalError attaches directive source and position to an evaluation
// error, except for errors that already carry their own identity.
func (e *Executor) wrapEvalError(err error, source string, pos Position) error {
	return NewExecutorErrorWithCause(ErrMsgEvalFailed, source, pos, err)
}

// boundComponentCaller adapts a ComponentInvoker to the evaluator's call
// interface, fixing the render context and caller depth.
type boundComponentCaller struct {
	ctx     context.Context
	invoker ComponentInvoker
	depth   int
}

// Call validates the component() arguments and dispatches to the invoker.
func (c *boundComponentCaller) Call(args []any, kwargs map[string]any) (string, error) {
	if len(args) != 1 {
		return StringValueEmpty, NewExprEvalError(ErrMsgComponentArgCount, fmt.Sprintf("got %d", len(args)))
	}

	name, ok := args[0].(string)
	if !ok {
		return StringValueEmpty, NewExprEvalError(ErrMsgComponentNameType, fmt.Sprintf("%T", args[0]))
	}
	if strings.TrimSpace(name) == StringValueEmpty {
		return StringValueEmpty, NewExprEvalError(ErrMsgComponentNameEmpty, StringValueEmpty)
	}

	return c.invoker.Invoke(c.ctx, name, kwargs, c.depth)
}

// toSequence normalizes a value into an iterable slice. Maps iterate their
// keys in sorted order so rendering stays deterministic; nil iterates zero
// times.
func toSequence(v any) ([]any, error) {
	switch seq := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return seq, nil
	case []string:
		items := make([]any, len(seq))
		for i, s := range seq {
			items[i] = s
		}
		return items, nil
	case []map[string]any:
		items := make([]any, len(seq))
		for i, m := range seq {
			items[i] = m
		}
		return items, nil
	case []float64:
		items := make([]any, len(seq))
		for i, f := range seq {
			items[i] = f
		}
		return items, nil
	case []int:
		items := make([]any, len(seq))
		for i, n := range seq {
			items[i] = n
		}
		return items, nil
	case map[string]any:
		keys := make([]string, 0, len(seq))
		for k := range seq {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return items, nil
	default:
		return nil, fmt.Errorf("cannot iterate %T", v)
	}
}

// loopScope is the child variable scope of one loop iteration. It shadows
// the loop variable and the loop metadata map over the parent scope.
type loopScope struct {
	parent ContextAccessor
	vars   map[string]any
}

// newLoopScope creates the scope for iteration i of length n.
func newLoopScope(parent ContextAccessor, varName string, item any, i, n int) *loopScope {
	return &loopScope{
		parent: parent,
		vars: map[string]any{
			varName: item,
			LoopVarName: map[string]any{
				LoopKeyIndex:  i + 1,
				LoopKeyIndex0: i,
				LoopKeyFirst:  i == 0,
				LoopKeyLast:   i == n-1,
				LoopKeyLength: n,
			},
		},
	}
}

// Get resolves a dotted path, trying the iteration variables before the
// parent scope.
func (s *loopScope) Get(path string) (any, bool) {
	head, rest := splitPathHead(path)

	if v, ok := s.vars[head]; ok {
		if rest == StringValueEmpty {
			return v, true
		}
		return ResolvePath(v, rest)
	}

	return s.parent.Get(path)
}

// Has reports whether the path resolves in this scope.
func (s *loopScope) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// splitPathHead splits a dotted path into its first segment and remainder.
func splitPathHead(path string) (string, string) {
	if idx := strings.Index(path, PathSeparator); idx >= 0 {
		return path[:idx], path[idx+1:]
	}
	return path, StringValueEmpty
}

// ResolvePath traverses a value along a dotted path. Each segment descends
// into a map; any other type ends the traversal unresolved.
func ResolvePath(value any, path string) (any, bool) {
	current := value

	for path != StringValueEmpty {
		var seg string
		seg, path = splitPathHead(path)

		switch v := current.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}

	return current, true
}

// MaxDepthError reports that rendering exceeded the nesting ceiling.
type MaxDepthError struct {
	Limit int
}

// NewMaxDepthError creates a new depth ceiling error.
func NewMaxDepthError(limit int) *MaxDepthError {
	return &MaxDepthError{Limit: limit}
}

// Error implements the error interface.
func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("%s (limit %d)", ErrMsgMaxDepthExceeded, e.Limit)
}

// ExecutorError represents a template execution error with position context.
type ExecutorError struct {
	Message  string
	Detail   string
	Position Position
	Cause    error
}

// NewExecutorError creates a new executor error.
func NewExecutorError(message, detail string, pos Position) *ExecutorError {
	return &ExecutorError{Message: message, Detail: detail, Position: pos}
}

// NewExecutorErrorWithCause creates a new executor error wrapping a cause.
func NewExecutorErrorWithCause(message, detail string, pos Position, cause error) *ExecutorError {
	return &ExecutorError{Message: message, Detail: detail, Position: pos, Cause: cause}
}

// Error implements the error interface.
func (e *ExecutorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %q at %s: %v", e.Message, e.Detail, e.Position.String(), e.Cause)
	}
	if e.Detail != StringValueEmpty {
		return fmt.Sprintf("%s %q at %s", e.Message, e.Detail, e.Position.String())
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Position.String())
}

// Unwrap returns the underlying error.
func (e *ExecutorError) Unwrap() error {
	return e.Cause
}

// Pos returns the error position.
func (e *ExecutorError) Pos() Position {
	return e.Position
}

// Executor error message constants
const (
	ErrMsgMaxDepthExceeded   = "maximum nesting depth exceeded"
	ErrMsgUnknownNodeType    = "unknown node type"
	ErrMsgEvalFailed         = "expression evaluation failed"
	ErrMsgNotIterable        = "value is not iterable"
	ErrMsgComponentArgCount  = "component takes exactly one positional argument"
	ErrMsgComponentNameType  = "component name must be a string"
	ErrMsgComponentNameEmpty = "component name cannot be empty"
)
