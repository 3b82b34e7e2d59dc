package internal

import "fmt"

// ExprParser parses expression tokens into an AST.
//
// Grammar, lowest precedence first:
//
//	pipeline   := or ( "|" filterCall )*
//	or         := and ( "or" and )*
//	and        := equality ( "and" equality )*
//	equality   := comparison ( ("==" | "!=") comparison )*
//	comparison := unary ( ("<" | ">" | "<=" | ">=") unary )*
//	unary      := "not" unary | call
//	call       := primary ( "(" arguments ")" )?
//	primary    := literal | identifier | list | mapping | "(" pipeline ")"
//	arguments  := ( argument ("," argument)* )?
//	argument   := IDENT "=" pipeline | pipeline
type ExprParser struct {
	tokens []ExprToken
	pos    int
}

// NewExprParser creates a new expression parser.
func NewExprParser(tokens []ExprToken) *ExprParser {
	return &ExprParser{tokens: tokens}
}

// Parse parses the expression and returns the root AST node.
func (p *ExprParser) Parse() (ExprNode, error) {
	if len(p.tokens) == 0 || (len(p.tokens) == 1 && p.tokens[0].Type == ExprTokenTypeEOF) {
		return nil, NewExprParseError(ErrMsgExprEmptyExpression, 0, StringValueEmpty)
	}

	node, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() && p.peek().Type != ExprTokenTypeEOF {
		return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
	}

	return node, nil
}

// parsePipeline parses filter applications (lowest precedence).
func (p *ExprParser) parsePipeline() (ExprNode, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	for p.match(ExprTokenTypePipe) {
		nameTok := p.peek()
		if nameTok.Type != ExprTokenTypeIdentifier {
			return nil, NewExprParseError(ErrMsgExprExpectedFilterName, nameTok.Pos, nameTok.Value)
		}
		p.advance()

		var args []ExprNode
		if p.match(ExprTokenTypeLParen) {
			args, err = p.parseFilterArgs()
			if err != nil {
				return nil, err
			}
		}
		left = NewFilter(left, nameTok.Value, args)
	}

	return left, nil
}

// parseFilterArgs parses positional filter arguments after an opening paren.
func (p *ExprParser) parseFilterArgs() ([]ExprNode, error) {
	var args []ExprNode

	if !p.check(ExprTokenTypeRParen) {
		for {
			arg, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.match(ExprTokenTypeComma) {
				break
			}
		}
	}

	if !p.match(ExprTokenTypeRParen) {
		return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), StringValueEmpty)
	}

	return args, nil
}

// parseOr parses OR expressions.
func (p *ExprParser) parseOr() (ExprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(ExprTokenTypeOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, ExprTokenTypeOr, right)
	}

	return left, nil
}

// parseAnd parses AND expressions.
func (p *ExprParser) parseAnd() (ExprNode, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.match(ExprTokenTypeAnd) {
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, ExprTokenTypeAnd, right)
	}

	return left, nil
}

// parseEquality parses equality expressions (==, !=).
func (p *ExprParser) parseEquality() (ExprNode, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ExprTokenTypeEq, ExprTokenTypeNeq) {
		op := p.previous().Type
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, op, right)
	}

	return left, nil
}

// parseComparison parses comparison expressions (<, >, <=, >=).
func (p *ExprParser) parseComparison() (ExprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte) {
		op := p.previous().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, op, right)
	}

	return left, nil
}

// parseUnary parses unary expressions (not).
func (p *ExprParser) parseUnary() (ExprNode, error) {
	if p.match(ExprTokenTypeNot) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnary(ExprTokenTypeNot, right), nil
	}

	return p.parseCall()
}

// parseCall parses function calls and primary expressions.
func (p *ExprParser) parseCall() (ExprNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if ident, ok := node.(*IdentifierNode); ok {
		if p.match(ExprTokenTypeLParen) {
			return p.finishCall(ident.Name)
		}
	}

	return node, nil
}

// finishCall parses call arguments after the opening paren. Positional
// arguments must precede keyword arguments.
func (p *ExprParser) finishCall(name string) (ExprNode, error) {
	var args []ExprNode
	var kwargs []Kwarg

	if !p.check(ExprTokenTypeRParen) {
		for {
			if p.check(ExprTokenTypeIdentifier) && p.checkNext(ExprTokenTypeAssign) {
				nameTok := p.advance() // IDENT
				p.advance()            // =
				value, err := p.parsePipeline()
				if err != nil {
					return nil, err
				}
				kwargs = append(kwargs, Kwarg{Name: nameTok.Value, Value: value})
			} else {
				if len(kwargs) > 0 {
					return nil, NewExprParseError(ErrMsgExprPositionalAfterKwarg, p.currentPos(), StringValueEmpty)
				}
				arg, err := p.parsePipeline()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}

			if !p.match(ExprTokenTypeComma) {
				break
			}
		}
	}

	if !p.match(ExprTokenTypeRParen) {
		return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), StringValueEmpty)
	}

	return NewCall(name, args, kwargs), nil
}

// parsePrimary parses literals, identifiers, list and mapping literals, and
// parenthesized expressions.
func (p *ExprParser) parsePrimary() (ExprNode, error) {
	if p.match(ExprTokenTypeString) {
		return NewLiteralString(p.previous().Literal.(string)), nil
	}

	if p.match(ExprTokenTypeNumber) {
		return NewLiteralNumber(p.previous().Literal.(float64)), nil
	}

	if p.match(ExprTokenTypeBool) {
		return NewLiteralBool(p.previous().Literal.(bool)), nil
	}

	if p.match(ExprTokenTypeNil) {
		return NewLiteralNil(), nil
	}

	if p.match(ExprTokenTypeIdentifier) {
		return NewIdentifier(p.previous().Value), nil
	}

	if p.match(ExprTokenTypeLBracket) {
		return p.parseList()
	}

	if p.match(ExprTokenTypeLBrace) {
		return p.parseMap()
	}

	if p.match(ExprTokenTypeLParen) {
		expr, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}

		if !p.match(ExprTokenTypeRParen) {
			return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), StringValueEmpty)
		}

		return expr, nil
	}

	if p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedEOF, p.currentPos(), StringValueEmpty)
	}

	return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
}

// parseList parses a list literal after the opening bracket.
func (p *ExprParser) parseList() (ExprNode, error) {
	var items []ExprNode

	if !p.check(ExprTokenTypeRBracket) {
		for {
			item, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}
			items = append(items, item)

			if !p.match(ExprTokenTypeComma) {
				break
			}
		}
	}

	if !p.match(ExprTokenTypeRBracket) {
		return nil, NewExprParseError(ErrMsgExprExpectedRBracket, p.currentPos(), StringValueEmpty)
	}

	return &ListNode{Items: items}, nil
}

// parseMap parses a mapping literal after the opening brace. Keys are string
// literals or bare identifiers.
func (p *ExprParser) parseMap() (ExprNode, error) {
	var entries []MapEntry

	if !p.check(ExprTokenTypeRBrace) {
		for {
			keyTok := p.peek()
			var key string
			switch keyTok.Type {
			case ExprTokenTypeString:
				key = keyTok.Literal.(string)
			case ExprTokenTypeIdentifier:
				key = keyTok.Value
			default:
				return nil, NewExprParseError(ErrMsgExprExpectedMapKey, keyTok.Pos, keyTok.Value)
			}
			p.advance()

			if !p.match(ExprTokenTypeColon) {
				return nil, NewExprParseError(ErrMsgExprExpectedColon, p.currentPos(), StringValueEmpty)
			}

			value, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: key, Value: value})

			if !p.match(ExprTokenTypeComma) {
				break
			}
		}
	}

	if !p.match(ExprTokenTypeRBrace) {
		return nil, NewExprParseError(ErrMsgExprExpectedRBrace, p.currentPos(), StringValueEmpty)
	}

	return &MapNode{Entries: entries}, nil
}

// Helper methods

func (p *ExprParser) match(tokenType ExprTokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

func (p *ExprParser) matchAny(types ...ExprTokenType) bool {
	for _, t := range types {
		if p.match(t) {
			return true
		}
	}
	return false
}

func (p *ExprParser) check(tokenType ExprTokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

func (p *ExprParser) checkNext(tokenType ExprTokenType) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos+1].Type == tokenType
}

func (p *ExprParser) advance() ExprToken {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *ExprParser) peek() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenTypeEOF, Pos: p.currentPos()}
	}
	return p.tokens[p.pos]
}

func (p *ExprParser) previous() ExprToken {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *ExprParser) isAtEnd() bool {
	return p.pos >= len(p.tokens) || p.peek().Type == ExprTokenTypeEOF
}

func (p *ExprParser) currentPos() int {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1].Pos
		}
		return 0
	}
	return p.tokens[p.pos].Pos
}

// ExprParseError represents an error during expression parsing.
type ExprParseError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprParseError creates a new expression parse error.
func NewExprParseError(message string, pos int, detail string) *ExprParseError {
	return &ExprParseError{Message: message, Pos: pos, Detail: detail}
}

// Error implements the error interface.
func (e *ExprParseError) Error() string {
	if e.Detail != StringValueEmpty {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression parser error messages
const (
	ErrMsgExprEmptyExpression      = "empty expression"
	ErrMsgExprUnexpectedToken      = "unexpected token"
	ErrMsgExprExpectedRParen       = "expected closing parenthesis"
	ErrMsgExprExpectedRBracket     = "expected closing bracket"
	ErrMsgExprExpectedRBrace       = "expected closing brace"
	ErrMsgExprExpectedColon        = "expected colon in mapping literal"
	ErrMsgExprExpectedMapKey       = "expected string or identifier mapping key"
	ErrMsgExprExpectedFilterName   = "expected filter name after pipe"
	ErrMsgExprPositionalAfterKwarg = "positional argument after keyword argument"
	ErrMsgExprUnexpectedEOF        = "unexpected end of expression"
)

// ParseExpression is a convenience function that tokenizes and parses an
// expression string.
func ParseExpression(expr string) (ExprNode, error) {
	tokenizer := NewExprTokenizer(expr)
	tokens, err := tokenizer.Tokenize()
	if err != nil {
		return nil, err
	}

	parser := NewExprParser(tokens)
	return parser.Parse()
}
