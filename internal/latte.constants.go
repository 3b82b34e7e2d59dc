package internal

// Directive delimiters. These are a compatibility contract with existing
// templates: the markers are LaTeX commands that no real document uses, so
// template directives never collide with document markup.
const (
	StrVarOpen     = "\\VAR{"
	StrBlockOpen   = "\\BLOCK{"
	StrCommentOpen = "\\#{"
	StrDelimClose  = "}"
	StrLineStmt    = "%%"
)

// Block directive keywords
const (
	KeywordIf     = "if"
	KeywordElif   = "elif"
	KeywordElse   = "else"
	KeywordEndIf  = "endif"
	KeywordFor    = "for"
	KeywordEndFor = "endfor"
	KeywordIn     = "in"
)

// LoopVarName is the name under which loop metadata is exposed inside
// for-loop bodies (loop.index, loop.index0, loop.first, loop.last,
// loop.length).
const LoopVarName = "loop"

// Loop metadata keys
const (
	LoopKeyIndex  = "index"
	LoopKeyIndex0 = "index0"
	LoopKeyFirst  = "first"
	LoopKeyLast   = "last"
	LoopKeyLength = "length"
)

// ComponentCallName is the well-known function name that dispatches to the
// component resolver. It is fixed: the evaluator treats it as a bound
// interface call, not as open-ended dynamic dispatch.
const ComponentCallName = "component"

// PathSeparator for dotted-path variable access
const PathSeparator = "."

// Character constants
const (
	CharNewline     = '\n'
	CharCarriageRet = '\r'
	CharSpace       = ' '
	CharTab         = '\t'
	CharBackslash   = '\\'
	CharOpenBrace   = '{'
	CharCloseBrace  = '}'
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
)

// String value constants
const (
	StringValueEmpty = ""
	StringValueTrue  = "true"
	StringValueFalse = "false"
)

// Default executor limits
const (
	DefaultMaxDepth = 64
)

// Log messages
const (
	LogMsgLexerCreated     = "lexer created"
	LogMsgTokenizerStart   = "tokenizing template source"
	LogMsgTokenizerEnd     = "tokenizing complete"
	LogMsgParserCreated    = "parser created"
	LogMsgParserStart      = "parsing token stream"
	LogMsgParserEnd        = "parsing complete"
	LogMsgExecutorCreated  = "executor created"
	LogMsgExecutorStart    = "executing template"
	LogMsgExecutorEnd      = "execution complete"
	LogMsgBranchSelected   = "conditional branch selected"
	LogMsgLoopStart        = "loop iteration start"
	LogMsgComponentInvoked = "component invoked"
	LogMsgFilterApplied    = "filter applied"
)

// Log field names
const (
	LogFieldSource    = "source_len"
	LogFieldTokens    = "tokens"
	LogFieldNodes     = "nodes"
	LogFieldBranch    = "branch"
	LogFieldComponent = "component"
	LogFieldFilter    = "filter"
	LogFieldItems     = "items"
	LogFieldDepth     = "depth"
)
