package internal

// ExprNode is the interface implemented by all expression AST nodes.
type ExprNode interface {
	exprNode()
}

// LiteralNode holds a constant value (string, float64, bool, or nil).
type LiteralNode struct {
	Value any
}

// IdentifierNode is a variable reference, possibly a dotted path (a.b.c).
type IdentifierNode struct {
	Name string
}

// UnaryNode is a prefix operation (not).
type UnaryNode struct {
	Op    ExprTokenType
	Right ExprNode
}

// BinaryNode is an infix operation (and, or, ==, !=, <, >, <=, >=).
type BinaryNode struct {
	Left  ExprNode
	Op    ExprTokenType
	Right ExprNode
}

// Kwarg is a keyword argument in a call.
type Kwarg struct {
	Name  string
	Value ExprNode
}

// CallNode is a function call with positional and keyword arguments.
// The well-known name "component" dispatches to the component resolver;
// any other name is looked up in the filter registry.
type CallNode struct {
	Name   string
	Args   []ExprNode
	Kwargs []Kwarg
}

// FilterNode applies a named filter to an input value: input | name(args).
// Chained pipes nest left-to-right, the leftmost application innermost.
type FilterNode struct {
	Input ExprNode
	Name  string
	Args  []ExprNode
}

// ListNode is a list literal: [a, b, c].
type ListNode struct {
	Items []ExprNode
}

// MapEntry is one key/value pair of a mapping literal.
type MapEntry struct {
	Key   string
	Value ExprNode
}

// MapNode is a mapping literal: {'k': v}. Entries keep source order.
type MapNode struct {
	Entries []MapEntry
}

func (*LiteralNode) exprNode()    {}
func (*IdentifierNode) exprNode() {}
func (*UnaryNode) exprNode()      {}
func (*BinaryNode) exprNode()     {}
func (*CallNode) exprNode()       {}
func (*FilterNode) exprNode()     {}
func (*ListNode) exprNode()       {}
func (*MapNode) exprNode()        {}

// Constructor helpers

// NewLiteralString creates a string literal node.
func NewLiteralString(s string) *LiteralNode { return &LiteralNode{Value: s} }

// NewLiteralNumber creates a numeric literal node.
func NewLiteralNumber(f float64) *LiteralNode { return &LiteralNode{Value: f} }

// NewLiteralBool creates a boolean literal node.
func NewLiteralBool(b bool) *LiteralNode { return &LiteralNode{Value: b} }

// NewLiteralNil creates a nil literal node.
func NewLiteralNil() *LiteralNode { return &LiteralNode{Value: nil} }

// NewIdentifier creates an identifier node.
func NewIdentifier(name string) *IdentifierNode { return &IdentifierNode{Name: name} }

// NewUnary creates a unary operation node.
func NewUnary(op ExprTokenType, right ExprNode) *UnaryNode {
	return &UnaryNode{Op: op, Right: right}
}

// NewBinary creates a binary operation node.
func NewBinary(left ExprNode, op ExprTokenType, right ExprNode) *BinaryNode {
	return &BinaryNode{Left: left, Op: op, Right: right}
}

// NewCall creates a call node.
func NewCall(name string, args []ExprNode, kwargs []Kwarg) *CallNode {
	return &CallNode{Name: name, Args: args, Kwargs: kwargs}
}

// NewFilter creates a filter application node.
func NewFilter(input ExprNode, name string, args []ExprNode) *FilterNode {
	return &FilterNode{Input: input, Name: name, Args: args}
}
