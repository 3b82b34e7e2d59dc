package internal

// Node is the interface implemented by all template AST nodes.
type Node interface {
	Pos() Position
}

// RootNode is the top of a parsed template.
type RootNode struct {
	Children []Node
}

// Pos returns the position of the first child, or the zero position.
func (n *RootNode) Pos() Position {
	if len(n.Children) > 0 {
		return n.Children[0].Pos()
	}
	return Position{}
}

// TextNode is literal document text emitted verbatim.
type TextNode struct {
	Content  string
	Position Position
}

// NewTextNode creates a text node.
func NewTextNode(content string, pos Position) *TextNode {
	return &TextNode{Content: content, Position: pos}
}

// Pos returns the node's source position.
func (n *TextNode) Pos() Position { return n.Position }

// OutputNode is a \VAR{expr} interpolation.
type OutputNode struct {
	Expr     ExprNode
	Source   string // original expression text, kept for diagnostics
	Position Position
}

// NewOutputNode creates an output node.
func NewOutputNode(expr ExprNode, source string, pos Position) *OutputNode {
	return &OutputNode{Expr: expr, Source: source, Position: pos}
}

// Pos returns the node's source position.
func (n *OutputNode) Pos() Position { return n.Position }

// IfBranch is one arm of a conditional. Condition is nil for the else arm.
type IfBranch struct {
	Condition ExprNode
	Source    string
	Children  []Node
	Position  Position
}

// IfNode is an if/elif/else conditional block.
type IfNode struct {
	Branches []IfBranch
	Position Position
}

// NewIfNode creates a conditional node.
func NewIfNode(branches []IfBranch, pos Position) *IfNode {
	return &IfNode{Branches: branches, Position: pos}
}

// Pos returns the node's source position.
func (n *IfNode) Pos() Position { return n.Position }

// ForNode is a for/endfor loop over a sequence expression.
type ForNode struct {
	VarName  string
	SeqExpr  ExprNode
	Source   string
	Children []Node
	Position Position
}

// NewForNode creates a loop node.
func NewForNode(varName string, seq ExprNode, source string, children []Node, pos Position) *ForNode {
	return &ForNode{VarName: varName, SeqExpr: seq, Source: source, Children: children, Position: pos}
}

// Pos returns the node's source position.
func (n *ForNode) Pos() Position { return n.Position }
