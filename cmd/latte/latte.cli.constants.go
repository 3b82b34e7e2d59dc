package main

// Command names
const (
	CmdNameRender     = "render"
	CmdNameFolder     = "folder"
	CmdNameComponents = "components"
	CmdNameVersion    = "version"
	CmdNameHelp       = "help"
)

// Flag names - long form
const (
	FlagTemplate   = "template"
	FlagData       = "data"
	FlagDataFile   = "data-file"
	FlagOutput     = "output"
	FlagComponents = "components"
	FlagConfig     = "config"
	FlagStrict     = "strict"
	FlagQuiet      = "quiet"
	FlagFormat     = "format"
)

// Flag names - short form
const (
	FlagTemplateShort   = "t"
	FlagDataShort       = "d"
	FlagDataFileShort   = "f"
	FlagOutputShort     = "o"
	FlagComponentsShort = "c"
	FlagQuietShort      = "q"
	FlagFormatShort     = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgMissingTemplate   = "template source required"
	ErrMsgMissingFolder     = "document folder required"
	ErrMsgInvalidJSON       = "invalid JSON data"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgRenderFailed      = "rendering failed"
	ErrMsgLoadConfigFailed  = "failed to load configuration"
	ErrMsgLoadCompsFailed   = "failed to load components"
	ErrMsgListCompsFailed   = "failed to list components"
	ErrMsgInvalidFormat     = "invalid output format"
)

// Help text templates
const (
	HelpMainUsage = `latte - LaTeX document rendering CLI

Usage:
    latte <command> [options]

Commands:
    render      Render a template with JSON data
    folder      Render a self-contained document folder
    components  List available components
    version     Show version information
    help        Show help for a command

Use "latte help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with JSON data

Usage:
    latte render [options]

Options:
    -t, --template <file>     Template file (use "-" for stdin)
    -d, --data <json>         JSON data string
    -f, --data-file <file>    JSON data file
    -o, --output <file>       Output file (default: stdout)
    -c, --components <dir>    Directory of .tex component files
    --config <file>           Config file (default: latte.yaml if present)
    --strict                  Fail on undefined variables
    -q, --quiet               Suppress non-error output

Examples:
    latte render -t invoice.tex -f data.json
    latte render -t invoice.tex -d '{"client": {"name": "ACME"}}' -o out.tex
    cat invoice.tex | latte render -t - -f data.json -c ./components`

	HelpFolderUsage = `Render a self-contained document folder

The folder must contain template.tex and data.json. A components/
subdirectory of .tex files is registered before rendering.

Usage:
    latte folder <dir> [options]

Options:
    -o, --output <file>       Output file (default: stdout)
    --strict                  Fail on undefined variables
    -q, --quiet               Suppress non-error output

Examples:
    latte folder ./invoice-2024-001
    latte folder ./invoice-2024-001 -o invoice.tex`

	HelpComponentsUsage = `List available components

Usage:
    latte components [options]

Options:
    -c, --components <dir>    Directory of .tex component files
    --config <file>           Config file (default: latte.yaml if present)
    -F, --format <format>     Output format: text, json (default: text)

Examples:
    latte components -c ./components
    latte components --config latte.yaml -F json`

	HelpVersionUsage = `Show version information

Usage:
    latte version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    latte help [command]

Commands:
    render      Show help for render command
    folder      Show help for folder command
    components  Show help for components command
    version     Show help for version command`
)

// CLI metadata
const (
	CLIName = "latte"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtWroteOutput     = "wrote %s\n"
)
