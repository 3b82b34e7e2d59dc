package internal

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Parser produces an AST from a token stream. Expressions inside output and
// block directives are parsed eagerly, so all syntax errors surface at parse
// time rather than mid-render.
type Parser struct {
	tokens []Token
	pos    int
	logger *zap.Logger
}

// NewParser creates a new parser for the given token stream.
func NewParser(tokens []Token, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgParserCreated, zap.Int(LogFieldTokens, len(tokens)))
	return &Parser{
		tokens: tokens,
		pos:    0,
		logger: logger,
	}
}

// Parse produces the AST root node from the token stream.
func (p *Parser) Parse() (*RootNode, error) {
	p.logger.Debug(LogMsgParserStart)

	nodes, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() {
		tok := p.current()
		return nil, p.newDirectiveError(ErrMsgUnexpectedDirective, directiveKeyword(tok.Value), tok.Position)
	}

	root := &RootNode{Children: nodes}
	p.logger.Debug(LogMsgParserEnd, zap.Int(LogFieldNodes, len(nodes)))
	return root, nil
}

// parseNodes parses a sequence of nodes until EOF or a block directive whose
// keyword is in terminators. The terminating token is left unconsumed.
func (p *Parser) parseNodes(terminators map[string]bool) ([]Node, error) {
	var nodes []Node

	for !p.isAtEnd() {
		tok := p.current()

		if tok.Type == TokenTypeBlock && terminators[directiveKeyword(tok.Value)] {
			break
		}

		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}

	return nodes, nil
}

// parseNode parses a single node (text, output, or block directive).
func (p *Parser) parseNode() (Node, error) {
	tok := p.current()

	switch tok.Type {
	case TokenTypeText:
		p.advance()
		return NewTextNode(tok.Value, tok.Position), nil

	case TokenTypeOutput:
		return p.parseOutput()

	case TokenTypeBlock:
		return p.parseBlock()

	case TokenTypeEOF:
		return nil, nil

	default:
		return nil, p.newDirectiveError(ErrMsgUnexpectedDirective, string(tok.Type), tok.Position)
	}
}

// parseOutput parses a \VAR{expr} directive.
func (p *Parser) parseOutput() (*OutputNode, error) {
	tok := p.advance()

	source := strings.TrimSpace(tok.Value)
	if source == StringValueEmpty {
		return nil, p.newDirectiveError(ErrMsgEmptyOutput, StringValueEmpty, tok.Position)
	}

	expr, err := ParseExpression(source)
	if err != nil {
		return nil, p.wrapExprError(err, source, tok.Position)
	}

	return NewOutputNode(expr, source, tok.Position), nil
}

// parseBlock parses a \BLOCK{directive} and dispatches on its keyword.
func (p *Parser) parseBlock() (Node, error) {
	tok := p.current()
	keyword := directiveKeyword(tok.Value)

	switch keyword {
	case KeywordIf:
		return p.parseIf()
	case KeywordFor:
		return p.parseFor()
	case KeywordElif, KeywordElse, KeywordEndIf, KeywordEndFor:
		return nil, p.newDirectiveError(ErrMsgDanglingDirective, keyword, tok.Position)
	default:
		return nil, p.newDirectiveError(ErrMsgUnknownDirective, keyword, tok.Position)
	}
}

// ifTerminators are the directives that end an if-branch body.
var ifTerminators = map[string]bool{
	KeywordElif:  true,
	KeywordElse:  true,
	KeywordEndIf: true,
}

// parseIf parses an if/elif/else/endif conditional.
func (p *Parser) parseIf() (*IfNode, error) {
	openTok := p.advance()

	condSource := directiveRest(openTok.Value)
	if condSource == StringValueEmpty {
		return nil, p.newDirectiveError(ErrMsgMissingCondition, KeywordIf, openTok.Position)
	}

	cond, err := ParseExpression(condSource)
	if err != nil {
		return nil, p.wrapExprError(err, condSource, openTok.Position)
	}

	var branches []IfBranch

	children, err := p.parseNodes(ifTerminators)
	if err != nil {
		return nil, err
	}
	branches = append(branches, IfBranch{Condition: cond, Source: condSource, Children: children, Position: openTok.Position})

	seenElse := false
	for {
		if p.isAtEnd() {
			return nil, p.newDirectiveError(ErrMsgUnclosedBlock, KeywordIf, openTok.Position)
		}

		tok := p.advance()
		keyword := directiveKeyword(tok.Value)

		switch keyword {
		case KeywordElif:
			if seenElse {
				return nil, p.newDirectiveError(ErrMsgElifAfterElse, KeywordElif, tok.Position)
			}

			condSource := directiveRest(tok.Value)
			if condSource == StringValueEmpty {
				return nil, p.newDirectiveError(ErrMsgMissingCondition, KeywordElif, tok.Position)
			}

			cond, err := ParseExpression(condSource)
			if err != nil {
				return nil, p.wrapExprError(err, condSource, tok.Position)
			}

			children, err := p.parseNodes(ifTerminators)
			if err != nil {
				return nil, err
			}
			branches = append(branches, IfBranch{Condition: cond, Source: condSource, Children: children, Position: tok.Position})

		case KeywordElse:
			if seenElse {
				return nil, p.newDirectiveError(ErrMsgDuplicateElse, KeywordElse, tok.Position)
			}
			if directiveRest(tok.Value) != StringValueEmpty {
				return nil, p.newDirectiveError(ErrMsgElseWithCondition, KeywordElse, tok.Position)
			}
			seenElse = true

			children, err := p.parseNodes(ifTerminators)
			if err != nil {
				return nil, err
			}
			branches = append(branches, IfBranch{Children: children, Position: tok.Position})

		case KeywordEndIf:
			return NewIfNode(branches, openTok.Position), nil

		default:
			return nil, p.newDirectiveError(ErrMsgUnexpectedDirective, keyword, tok.Position)
		}
	}
}

// forTerminators are the directives that end a for-loop body.
var forTerminators = map[string]bool{
	KeywordEndFor: true,
}

// parseFor parses a for/endfor loop.
func (p *Parser) parseFor() (*ForNode, error) {
	openTok := p.advance()

	varName, seqSource, err := splitForHeader(directiveRest(openTok.Value))
	if err != nil {
		return nil, p.newDirectiveError(err.Error(), KeywordFor, openTok.Position)
	}

	seqExpr, err := ParseExpression(seqSource)
	if err != nil {
		return nil, p.wrapExprError(err, seqSource, openTok.Position)
	}

	children, err := p.parseNodes(forTerminators)
	if err != nil {
		return nil, err
	}

	if p.isAtEnd() {
		return nil, p.newDirectiveError(ErrMsgUnclosedBlock, KeywordFor, openTok.Position)
	}

	closeTok := p.advance()
	if directiveRest(closeTok.Value) != StringValueEmpty {
		return nil, p.newDirectiveError(ErrMsgUnexpectedDirective, closeTok.Value, closeTok.Position)
	}

	return NewForNode(varName, seqExpr, seqSource, children, openTok.Position), nil
}

// splitForHeader splits "x in expr" into the loop variable and sequence
// expression source.
func splitForHeader(header string) (string, string, error) {
	fields := strings.Fields(header)
	if len(fields) < 3 || fields[1] != KeywordIn {
		return StringValueEmpty, StringValueEmpty, errors.New(ErrMsgMalformedFor)
	}

	varName := fields[0]
	if !isValidLoopVar(varName) {
		return StringValueEmpty, StringValueEmpty, errors.New(ErrMsgBadLoopVariable)
	}

	rest := strings.TrimSpace(header[len(varName):])
	seqSource := strings.TrimSpace(rest[len(KeywordIn):])
	if seqSource == StringValueEmpty {
		return StringValueEmpty, StringValueEmpty, errors.New(ErrMsgMalformedFor)
	}

	return varName, seqSource, nil
}

// isValidLoopVar reports whether s is a plain identifier without dots.
func isValidLoopVar(s string) bool {
	if s == StringValueEmpty {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// directiveKeyword extracts the first word of a block directive.
func directiveKeyword(directive string) string {
	directive = strings.TrimSpace(directive)
	if idx := strings.IndexAny(directive, " \t"); idx >= 0 {
		return directive[:idx]
	}
	return directive
}

// directiveRest returns the directive content after the keyword.
func directiveRest(directive string) string {
	directive = strings.TrimSpace(directive)
	if idx := strings.IndexAny(directive, " \t"); idx >= 0 {
		return strings.TrimSpace(directive[idx+1:])
	}
	return StringValueEmpty
}

// Helper methods

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenTypeEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) isAtEnd() bool {
	return p.current().Type == TokenTypeEOF
}

// Error helpers

func (p *Parser) newDirectiveError(message, directive string, pos Position) error {
	return &ParserError{
		Message:   message,
		Directive: directive,
		Position:  pos,
	}
}

func (p *Parser) wrapExprError(err error, source string, pos Position) error {
	return &ParserError{
		Message:   ErrMsgBadExpression,
		Directive: source,
		Position:  pos,
		Cause:     err,
	}
}

// ParserError represents a template parse error with position context.
type ParserError struct {
	Message   string
	Directive string
	Position  Position
	Cause     error
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %q at %s: %v", e.Message, e.Directive, e.Position.String(), e.Cause)
	}
	if e.Directive != StringValueEmpty {
		return fmt.Sprintf("%s %q at %s", e.Message, e.Directive, e.Position.String())
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Position.String())
}

// Unwrap returns the underlying error.
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// Pos returns the error position.
func (e *ParserError) Pos() Position {
	return e.Position
}

// Parser error message constants
const (
	ErrMsgUnexpectedDirective = "unexpected directive"
	ErrMsgUnknownDirective    = "unknown directive"
	ErrMsgDanglingDirective   = "directive outside its block"
	ErrMsgUnclosedBlock       = "unclosed block"
	ErrMsgEmptyOutput         = "empty output directive"
	ErrMsgMissingCondition    = "missing condition"
	ErrMsgElifAfterElse       = "elif after else"
	ErrMsgDuplicateElse       = "duplicate else"
	ErrMsgElseWithCondition   = "else takes no condition"
	ErrMsgBadExpression       = "invalid expression"
	ErrMsgMalformedFor        = "malformed for directive, expected: for <var> in <expr>"
	ErrMsgBadLoopVariable     = "loop variable must be a plain identifier"
)
