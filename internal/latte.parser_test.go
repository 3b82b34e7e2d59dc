package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func parseSource(t *testing.T, source string) *RootNode {
	t.Helper()
	lexer := NewLexer(source, zap.NewNop())
	tokens, err := lexer.Tokenize()
	require.NoError(t, err)
	parser := NewParser(tokens, zap.NewNop())
	root, err := parser.Parse()
	require.NoError(t, err)
	return root
}

func parseError(t *testing.T, source string) *ParserError {
	t.Helper()
	lexer := NewLexer(source, zap.NewNop())
	tokens, err := lexer.Tokenize()
	require.NoError(t, err)
	parser := NewParser(tokens, zap.NewNop())
	_, err = parser.Parse()
	require.Error(t, err)

	var parserErr *ParserError
	require.True(t, errors.As(err, &parserErr))
	return parserErr
}

func TestParser_Parse_TextAndOutput(t *testing.T) {
	root := parseSource(t, `Hello, \VAR{client.name | latex_escape}!`)

	require.Len(t, root.Children, 3)

	text, ok := root.Children[0].(*TextNode)
	require.True(t, ok)
	assert.Equal(t, "Hello, ", text.Content)

	output, ok := root.Children[1].(*OutputNode)
	require.True(t, ok)
	assert.Equal(t, "client.name | latex_escape", output.Source)

	filter, ok := output.Expr.(*FilterNode)
	require.True(t, ok)
	assert.Equal(t, "latex_escape", filter.Name)
}

func TestParser_Parse_If(t *testing.T) {
	t.Run("if endif", func(t *testing.T) {
		root := parseSource(t, `\BLOCK{if paid}PAID\BLOCK{endif}`)

		require.Len(t, root.Children, 1)
		ifNode, ok := root.Children[0].(*IfNode)
		require.True(t, ok)
		require.Len(t, ifNode.Branches, 1)
		assert.NotNil(t, ifNode.Branches[0].Condition)
		require.Len(t, ifNode.Branches[0].Children, 1)
	})

	t.Run("if elif else", func(t *testing.T) {
		root := parseSource(t, `\BLOCK{if a}A\BLOCK{elif b}B\BLOCK{else}C\BLOCK{endif}`)

		ifNode, ok := root.Children[0].(*IfNode)
		require.True(t, ok)
		require.Len(t, ifNode.Branches, 3)
		assert.NotNil(t, ifNode.Branches[0].Condition)
		assert.NotNil(t, ifNode.Branches[1].Condition)
		assert.Nil(t, ifNode.Branches[2].Condition)
	})

	t.Run("nested if", func(t *testing.T) {
		root := parseSource(t, `\BLOCK{if a}\BLOCK{if b}X\BLOCK{endif}\BLOCK{endif}`)

		outer, ok := root.Children[0].(*IfNode)
		require.True(t, ok)
		require.Len(t, outer.Branches[0].Children, 1)
		_, ok = outer.Branches[0].Children[0].(*IfNode)
		assert.True(t, ok)
	})
}

func TestParser_Parse_For(t *testing.T) {
	t.Run("simple loop", func(t *testing.T) {
		root := parseSource(t, `\BLOCK{for item in items}\VAR{item.name}\BLOCK{endfor}`)

		require.Len(t, root.Children, 1)
		forNode, ok := root.Children[0].(*ForNode)
		require.True(t, ok)
		assert.Equal(t, "item", forNode.VarName)
		require.Len(t, forNode.Children, 1)
	})

	t.Run("dotted sequence path", func(t *testing.T) {
		root := parseSource(t, `\BLOCK{for line in invoice.lines}x\BLOCK{endfor}`)

		forNode, ok := root.Children[0].(*ForNode)
		require.True(t, ok)
		assert.Equal(t, "line", forNode.VarName)

		ident, ok := forNode.SeqExpr.(*IdentifierNode)
		require.True(t, ok)
		assert.Equal(t, "invoice.lines", ident.Name)
	})

	t.Run("line statement form", func(t *testing.T) {
		root := parseSource(t, "%% for x in xs\nrow\n%% endfor\n")

		forNode, ok := root.Children[0].(*ForNode)
		require.True(t, ok)
		assert.Equal(t, "x", forNode.VarName)
	})
}

func TestParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{
			name:    "unclosed if",
			source:  `\BLOCK{if paid}PAID`,
			message: ErrMsgUnclosedBlock,
		},
		{
			name:    "unclosed for",
			source:  `\BLOCK{for x in xs}row`,
			message: ErrMsgUnclosedBlock,
		},
		{
			name:    "dangling endif",
			source:  `text\BLOCK{endif}`,
			message: ErrMsgDanglingDirective,
		},
		{
			name:    "dangling else",
			source:  `\BLOCK{else}`,
			message: ErrMsgDanglingDirective,
		},
		{
			name:    "elif after else",
			source:  `\BLOCK{if a}A\BLOCK{else}B\BLOCK{elif c}C\BLOCK{endif}`,
			message: ErrMsgElifAfterElse,
		},
		{
			name:    "duplicate else",
			source:  `\BLOCK{if a}A\BLOCK{else}B\BLOCK{else}C\BLOCK{endif}`,
			message: ErrMsgDuplicateElse,
		},
		{
			name:    "if without condition",
			source:  `\BLOCK{if}A\BLOCK{endif}`,
			message: ErrMsgMissingCondition,
		},
		{
			name:    "unknown directive",
			source:  `\BLOCK{while x}`,
			message: ErrMsgUnknownDirective,
		},
		{
			name:    "malformed for header",
			source:  `\BLOCK{for item items}x\BLOCK{endfor}`,
			message: ErrMsgMalformedFor,
		},
		{
			name:    "dotted loop variable",
			source:  `\BLOCK{for a.b in xs}x\BLOCK{endfor}`,
			message: ErrMsgBadLoopVariable,
		},
		{
			name:    "for closed by endif",
			source:  `\BLOCK{for x in xs}row\BLOCK{endif}`,
			message: ErrMsgDanglingDirective,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parserErr := parseError(t, tt.source)
			assert.Contains(t, parserErr.Error(), tt.message)
		})
	}
}

func TestParser_Parse_BadExpression(t *testing.T) {
	parserErr := parseError(t, `\VAR{1 +}`)
	assert.Equal(t, ErrMsgBadExpression, parserErr.Message)
	assert.Error(t, errors.Unwrap(parserErr))
}
