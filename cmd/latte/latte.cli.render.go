package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/lattetex/latte"
)

// renderConfig holds parsed flags for the render command.
type renderConfig struct {
	templatePath  string
	dataJSON      string
	dataFilePath  string
	outputPath    string
	componentsDir string
	configPath    string
	strict        bool
	quiet         bool
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	cfg := &renderConfig{}

	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.dataJSON, FlagData, "", "")
	fs.StringVar(&cfg.dataJSON, FlagDataShort, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFile, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFileShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.StringVar(&cfg.componentsDir, FlagComponents, "", "")
	fs.StringVar(&cfg.componentsDir, FlagComponentsShort, "", "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.BoolVar(&cfg.strict, FlagStrict, false, "")
	fs.BoolVar(&cfg.quiet, FlagQuiet, false, "")
	fs.BoolVar(&cfg.quiet, FlagQuietShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadData resolves the JSON data from the -d or -f flag.
func loadData(cfg *renderConfig, stdin io.Reader) (map[string]any, error) {
	var raw []byte

	switch {
	case cfg.dataJSON != "":
		raw = []byte(cfg.dataJSON)
	case cfg.dataFilePath != "":
		b, err := readInput(cfg.dataFilePath, stdin)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgReadFileFailed, err)
		}
		raw = b
	default:
		return map[string]any{}, nil
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidJSON, err)
	}
	return data, nil
}

// buildEngine constructs an engine from the optional config file and flags.
// Flags take precedence over config file values.
func buildEngine(configPath string, strict bool) (*latte.Engine, func(), error) {
	if configPath == "" {
		configPath = latte.DefaultConfigFile
	}
	fileCfg, err := latte.LoadConfigIfPresent(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgLoadConfigFailed, err)
	}

	opts, store, err := fileCfg.EngineOptions()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgLoadConfigFailed, err)
	}
	if strict {
		opts = append(opts, latte.WithStrictMode(true))
	}

	engine, err := latte.New(opts...)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return engine, cleanup, nil
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameRender, err)
		fmt.Fprintln(stderr, HelpRenderUsage)
		return ExitCodeUsageError
	}

	if cfg.templatePath == "" {
		fmt.Fprintln(stderr, ErrMsgMissingTemplate)
		fmt.Fprintln(stderr, HelpRenderUsage)
		return ExitCodeUsageError
	}

	source, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	data, err := loadData(cfg, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameRender, err)
		return ExitCodeInputError
	}

	engine, cleanup, err := buildEngine(cfg.configPath, cfg.strict)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameRender, err)
		return ExitCodeValidationError
	}
	defer cleanup()

	ctx := context.Background()

	if cfg.componentsDir != "" {
		if _, err := engine.LoadComponents(ctx, cfg.componentsDir); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadCompsFailed, err)
			return ExitCodeInputError
		}
	}

	output, err := engine.Render(ctx, string(source), data)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRenderFailed, err)
		return ExitCodeError
	}

	if err := writeOutput(cfg.outputPath, []byte(output), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	if !cfg.quiet && cfg.outputPath != FlagDefaultOutput {
		fmt.Fprintf(stdout, FmtWroteOutput, cfg.outputPath)
	}

	return ExitCodeSuccess
}
