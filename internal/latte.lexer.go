package internal

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Position represents a location in template source.
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// TokenType identifies the kind of a template token.
type TokenType string

// Template token types
const (
	TokenTypeText   TokenType = "TEXT"
	TokenTypeOutput TokenType = "OUTPUT" // \VAR{expr}
	TokenTypeBlock  TokenType = "BLOCK"  // \BLOCK{directive} or a %% line statement
	TokenTypeEOF    TokenType = "EOF"
)

// Token is one lexical unit of a template. For OUTPUT and BLOCK tokens,
// Value holds the inner expression or directive text with the delimiters
// stripped.
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// Lexer splits template source into text, output, and block tokens.
// Comments (\#{...}) are consumed and produce no token. A line whose first
// non-blank characters are %% is a line statement: the remainder of the line
// becomes a BLOCK token and the line's trailing newline is swallowed.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	logger *zap.Logger
}

// NewLexer creates a lexer for the given source.
func NewLexer(source string, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		pos:    0,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns the token stream.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.logger.Debug(LogMsgTokenizerStart)
	var tokens []Token

	for !l.isAtEnd() {
		if start, ok := l.atLineStatement(); ok {
			tok, err := l.scanLineStatement(start)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		if l.matchStr(StrVarOpen) {
			pos := l.currentPosition()
			l.advanceN(len(StrVarOpen))
			expr, err := l.scanBraced(pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Type: TokenTypeOutput, Value: expr, Position: pos})
			continue
		}

		if l.matchStr(StrBlockOpen) {
			pos := l.currentPosition()
			l.advanceN(len(StrBlockOpen))
			directive, err := l.scanBraced(pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Type: TokenTypeBlock, Value: strings.TrimSpace(directive), Position: pos})
			continue
		}

		if l.matchStr(StrCommentOpen) {
			pos := l.currentPosition()
			l.advanceN(len(StrCommentOpen))
			if _, err := l.scanBraced(pos); err != nil {
				return nil, err
			}
			continue
		}

		tok := l.scanText()
		if tok.Value != StringValueEmpty {
			tokens = append(tokens, tok)
		}
	}

	tokens = append(tokens, Token{Type: TokenTypeEOF, Position: l.currentPosition()})
	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// scanText scans literal text until the next directive marker.
func (l *Lexer) scanText() Token {
	startPos := l.currentPosition()
	var sb strings.Builder

	for !l.isAtEnd() {
		if l.matchStr(StrVarOpen) || l.matchStr(StrBlockOpen) || l.matchStr(StrCommentOpen) {
			break
		}
		if _, ok := l.atLineStatement(); ok {
			break
		}
		sb.WriteByte(l.advance())
	}

	return Token{Type: TokenTypeText, Value: sb.String(), Position: startPos}
}

// scanBraced scans brace-delimited content after an open marker has been
// consumed. Braces nest, and braces inside string literals do not count, so
// expressions like component('x', opts={'a': 1}) survive intact.
func (l *Lexer) scanBraced(openPos Position) (string, error) {
	var sb strings.Builder
	depth := 1

	for !l.isAtEnd() {
		ch := l.peek()

		if ch == CharDoubleQuote || ch == CharSingleQuote {
			lit, err := l.scanStringLiteral()
			if err != nil {
				return StringValueEmpty, err
			}
			sb.WriteString(lit)
			continue
		}

		if ch == CharOpenBrace {
			depth++
		} else if ch == CharCloseBrace {
			depth--
			if depth == 0 {
				l.advance()
				return sb.String(), nil
			}
		}

		sb.WriteByte(l.advance())
	}

	return StringValueEmpty, NewLexError(ErrMsgUnterminatedDirective, openPos)
}

// scanStringLiteral consumes a quoted string including its quotes, honoring
// backslash escapes, and returns it verbatim.
func (l *Lexer) scanStringLiteral() (string, error) {
	startPos := l.currentPosition()
	quote := l.advance()

	var sb strings.Builder
	sb.WriteByte(quote)

	for !l.isAtEnd() {
		ch := l.advance()
		sb.WriteByte(ch)
		if ch == CharBackslash && !l.isAtEnd() {
			sb.WriteByte(l.advance())
			continue
		}
		if ch == quote {
			return sb.String(), nil
		}
	}

	return StringValueEmpty, NewLexError(ErrMsgUnterminatedString, startPos)
}

// atLineStatement reports whether the lexer sits at the start of a line
// statement. The returned offset is the number of leading blank bytes before
// the %% marker.
func (l *Lexer) atLineStatement() (int, bool) {
	if !l.atLineStart() {
		return 0, false
	}
	i := l.pos
	for i < len(l.source) && (l.source[i] == CharSpace || l.source[i] == CharTab) {
		i++
	}
	if strings.HasPrefix(l.source[i:], StrLineStmt) {
		return i - l.pos, true
	}
	return 0, false
}

// scanLineStatement consumes a whole %% line and returns it as a BLOCK
// token. The trailing newline belongs to the statement and is swallowed.
func (l *Lexer) scanLineStatement(leading int) (Token, error) {
	l.advanceN(leading)
	pos := l.currentPosition()
	l.advanceN(len(StrLineStmt))

	var sb strings.Builder
	for !l.isAtEnd() && l.peek() != CharNewline {
		sb.WriteByte(l.advance())
	}
	if !l.isAtEnd() {
		l.advance() // swallow newline
	}

	directive := strings.TrimSpace(sb.String())
	if directive == StringValueEmpty {
		return Token{}, NewLexError(ErrMsgEmptyLineStatement, pos)
	}
	return Token{Type: TokenTypeBlock, Value: directive, Position: pos}, nil
}

// Helper methods

func (l *Lexer) currentPosition() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) atLineStart() bool {
	return l.pos == 0 || l.source[l.pos-1] == CharNewline
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

func (l *Lexer) matchStr(s string) bool {
	return strings.HasPrefix(l.source[l.pos:], s)
}

// LexError represents a lexer error with position.
type LexError struct {
	Message  string
	Position Position
}

// NewLexError creates a lexer error at the given position.
func NewLexError(message string, pos Position) *LexError {
	return &LexError{Message: message, Position: pos}
}

func (e *LexError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// Pos returns the source position of the error.
func (e *LexError) Pos() Position {
	return e.Position
}

// Lexer error message constants
const (
	ErrMsgUnterminatedDirective = "unterminated directive"
	ErrMsgUnterminatedString    = "unterminated string literal"
	ErrMsgEmptyLineStatement    = "empty line statement"
)
