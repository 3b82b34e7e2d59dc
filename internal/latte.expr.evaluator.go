package internal

import (
	"fmt"
	"reflect"
)

// ComponentCaller resolves a component invocation to its rendered output.
// args are the positional arguments of the component() call, the first of
// which names the component. The executor binds the render context and
// current depth before handing the caller to the evaluator.
type ComponentCaller interface {
	Call(args []any, kwargs map[string]any) (string, error)
}

// ExprEvaluator evaluates expression AST nodes against a context.
type ExprEvaluator struct {
	filters    *FilterRegistry
	components ComponentCaller
	ctx        ContextAccessor
	strict     bool
}

// NewExprEvaluator creates a new expression evaluator.
func NewExprEvaluator(filters *FilterRegistry, components ComponentCaller, ctx ContextAccessor, strict bool) *ExprEvaluator {
	return &ExprEvaluator{
		filters:    filters,
		components: components,
		ctx:        ctx,
		strict:     strict,
	}
}

// Evaluate evaluates an expression and returns the result. In strict mode an
// undefined variable is an error; boolean contexts stay lenient regardless
// (see EvaluateBool).
func (e *ExprEvaluator) Evaluate(node ExprNode) (any, error) {
	return e.eval(node, false)
}

// EvaluateBool evaluates an expression and coerces the result to a boolean.
// Undefined variables resolve to nil (falsy) even in strict mode, so
// conditions can guard against missing data.
func (e *ExprEvaluator) EvaluateBool(node ExprNode) (bool, error) {
	result, err := e.eval(node, true)
	if err != nil {
		return false, err
	}
	return isTruthy(result), nil
}

func (e *ExprEvaluator) eval(node ExprNode, lenient bool) (any, error) {
	if node == nil {
		return nil, NewExprEvalError(ErrMsgExprNilNode, StringValueEmpty)
	}

	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil

	case *IdentifierNode:
		return e.evaluateIdentifier(n, lenient)

	case *UnaryNode:
		return e.evaluateUnary(n)

	case *BinaryNode:
		return e.evaluateBinary(n, lenient)

	case *CallNode:
		return e.evaluateCall(n)

	case *FilterNode:
		return e.evaluateFilter(n, lenient)

	case *ListNode:
		return e.evaluateList(n, lenient)

	case *MapNode:
		return e.evaluateMap(n, lenient)

	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownNodeType, fmt.Sprintf("%T", node))
	}
}

// evaluateIdentifier looks up a variable from the context.
func (e *ExprEvaluator) evaluateIdentifier(node *IdentifierNode, lenient bool) (any, error) {
	if e.ctx == nil {
		return nil, NewExprEvalError(ErrMsgExprNoContext, node.Name)
	}

	val, found := e.ctx.Get(node.Name)
	if !found {
		if e.strict && !lenient {
			return nil, NewUndefinedError(node.Name)
		}
		return nil, nil
	}
	return val, nil
}

// evaluateUnary evaluates a unary operation. The operand of "not" is always
// evaluated leniently so it can test for presence.
func (e *ExprEvaluator) evaluateUnary(node *UnaryNode) (any, error) {
	switch node.Op {
	case ExprTokenTypeNot:
		right, err := e.eval(node.Right, true)
		if err != nil {
			return nil, err
		}
		return !isTruthy(right), nil
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

// evaluateBinary evaluates a binary operation. Logical operators short-circuit
// and return the deciding operand's value, so "x or 'fallback'" works as a
// default for missing data.
func (e *ExprEvaluator) evaluateBinary(node *BinaryNode, lenient bool) (any, error) {
	if node.Op == ExprTokenTypeAnd {
		left, err := e.eval(node.Left, true)
		if err != nil {
			return nil, err
		}
		if !isTruthy(left) {
			return left, nil
		}
		return e.eval(node.Right, lenient)
	}

	if node.Op == ExprTokenTypeOr {
		left, err := e.eval(node.Left, true)
		if err != nil {
			return nil, err
		}
		if isTruthy(left) {
			return left, nil
		}
		return e.eval(node.Right, lenient)
	}

	left, err := e.eval(node.Left, lenient)
	if err != nil {
		return nil, err
	}

	right, err := e.eval(node.Right, lenient)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeEq:
		return compareEqual(left, right), nil
	case ExprTokenTypeNeq:
		return !compareEqual(left, right), nil
	case ExprTokenTypeLt:
		return compareLess(left, right)
	case ExprTokenTypeGt:
		return compareGreater(left, right)
	case ExprTokenTypeLte:
		result, err := compareGreater(left, right)
		if err != nil {
			return nil, err
		}
		return !result, nil
	case ExprTokenTypeGte:
		result, err := compareLess(left, right)
		if err != nil {
			return nil, err
		}
		return !result, nil
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

// evaluateCall evaluates a call expression. The component builtin is the only
// call that accepts keyword arguments; it is dispatched to the bound
// ComponentCaller.
func (e *ExprEvaluator) evaluateCall(node *CallNode) (any, error) {
	args := make([]any, len(node.Args))
	for i, argNode := range node.Args {
		val, err := e.eval(argNode, false)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	if node.Name == ComponentCallName {
		if e.components == nil {
			return nil, NewExprEvalError(ErrMsgExprNoComponentCaller, node.Name)
		}

		kwargs := make(map[string]any, len(node.Kwargs))
		for _, kw := range node.Kwargs {
			val, err := e.eval(kw.Value, false)
			if err != nil {
				return nil, err
			}
			kwargs[kw.Name] = val
		}

		return e.components.Call(args, kwargs)
	}

	if len(node.Kwargs) > 0 {
		return nil, NewExprEvalError(ErrMsgExprKwargsNotSupported, node.Name)
	}

	// Filters double as plain functions: the first argument takes the
	// place of the piped value.
	if e.filters != nil && e.filters.Has(node.Name) {
		if len(args) == 0 {
			return nil, NewExprEvalError(ErrMsgExprCallNeedsValue, node.Name)
		}
		return e.filters.Call(node.Name, args[0], args[1:])
	}

	return nil, NewExprEvalError(ErrMsgExprUnknownFunction, node.Name)
}

// evaluateFilter applies a registered filter to its input value.
func (e *ExprEvaluator) evaluateFilter(node *FilterNode, lenient bool) (any, error) {
	input, err := e.eval(node.Input, lenient)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(node.Args))
	for i, argNode := range node.Args {
		val, err := e.eval(argNode, false)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	if e.filters == nil {
		return nil, NewExprEvalError(ErrMsgExprNoFilterRegistry, node.Name)
	}

	return e.filters.Call(node.Name, input, args)
}

// evaluateList evaluates a list literal.
func (e *ExprEvaluator) evaluateList(node *ListNode, lenient bool) (any, error) {
	items := make([]any, len(node.Items))
	for i, itemNode := range node.Items {
		val, err := e.eval(itemNode, lenient)
		if err != nil {
			return nil, err
		}
		items[i] = val
	}
	return items, nil
}

// evaluateMap evaluates a mapping literal.
func (e *ExprEvaluator) evaluateMap(node *MapNode, lenient bool) (any, error) {
	result := make(map[string]any, len(node.Entries))
	for _, entry := range node.Entries {
		val, err := e.eval(entry.Value, lenient)
		if err != nil {
			return nil, err
		}
		result[entry.Key] = val
	}
	return result, nil
}

// Comparison helper functions

// compareEqual checks if two values are equal.
func compareEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	aNum, aIsNum := toNumber(a)
	bNum, bIsNum := toNumber(b)
	if aIsNum && bIsNum {
		return aNum == bNum
	}

	aStr, aIsStr := a.(string)
	bStr, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return aStr == bStr
	}

	aBool, aIsBool := a.(bool)
	bBool, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		return aBool == bBool
	}

	return a == b
}

// compareLess checks if a < b.
func compareLess(a, b any) (bool, error) {
	aNum, aIsNum := toNumber(a)
	bNum, bIsNum := toNumber(b)
	if aIsNum && bIsNum {
		return aNum < bNum, nil
	}

	aStr, aIsStr := a.(string)
	bStr, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return aStr < bStr, nil
	}

	return false, NewExprEvalError(ErrMsgExprTypeMismatch, fmt.Sprintf("cannot compare %T and %T", a, b))
}

// compareGreater checks if a > b.
func compareGreater(a, b any) (bool, error) {
	aNum, aIsNum := toNumber(a)
	bNum, bIsNum := toNumber(b)
	if aIsNum && bIsNum {
		return aNum > bNum, nil
	}

	aStr, aIsStr := a.(string)
	bStr, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return aStr > bStr, nil
	}

	return false, NewExprEvalError(ErrMsgExprTypeMismatch, fmt.Sprintf("cannot compare %T and %T", a, b))
}

// toNumber attempts to convert a value to float64.
func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// isTruthy determines the truthiness of a value.
// Truthiness rules:
// - nil -> false
// - bool -> value
// - string -> len(s) > 0
// - int/float -> n != 0
// - slice/map -> len(x) > 0
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return len(val) > 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len() > 0
		case reflect.Ptr, reflect.Interface:
			return !rv.IsNil()
		default:
			return true
		}
	}
}

// UndefinedError reports a strict-mode lookup of an unknown variable path.
type UndefinedError struct {
	Path string
}

// NewUndefinedError creates a new undefined variable error.
func NewUndefinedError(path string) *UndefinedError {
	return &UndefinedError{Path: path}
}

// Error implements the error interface.
func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMsgExprUndefinedVariable, e.Path)
}

// ExprEvalError represents an expression evaluation error.
type ExprEvalError struct {
	Message string
	Detail  string
}

// NewExprEvalError creates a new expression evaluation error.
func NewExprEvalError(message, detail string) *ExprEvalError {
	return &ExprEvalError{
		Message: message,
		Detail:  detail,
	}
}

// Error implements the error interface.
func (e *ExprEvalError) Error() string {
	if e.Detail != StringValueEmpty {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Expression evaluator error messages
const (
	ErrMsgExprNilNode            = "nil expression node"
	ErrMsgExprUnknownNodeType    = "unknown expression node type"
	ErrMsgExprNoContext          = "no context available for variable lookup"
	ErrMsgExprUnknownOperator    = "unknown operator"
	ErrMsgExprUnknownFunction    = "unknown function"
	ErrMsgExprKwargsNotSupported = "keyword arguments are only supported by component calls"
	ErrMsgExprCallNeedsValue     = "filter call requires at least one argument"
	ErrMsgExprNoFilterRegistry   = "no filter registry available"
	ErrMsgExprNoComponentCaller  = "no component resolver available"
	ErrMsgExprTypeMismatch       = "type mismatch in comparison"
	ErrMsgExprUndefinedVariable  = "undefined variable"
)
