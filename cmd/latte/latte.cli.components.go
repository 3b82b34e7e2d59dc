package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

// componentsConfig holds parsed flags for the components command.
type componentsConfig struct {
	componentsDir string
	configPath    string
	format        string
}

func parseComponentsFlags(args []string) (*componentsConfig, error) {
	cfg := &componentsConfig{}

	fs := flag.NewFlagSet(CmdNameComponents, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.componentsDir, FlagComponents, "", "")
	fs.StringVar(&cfg.componentsDir, FlagComponentsShort, "", "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runComponents(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseComponentsFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameComponents, err)
		fmt.Fprintln(stderr, HelpComponentsUsage)
		return ExitCodeUsageError
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgInvalidFormat, cfg.format)
		return ExitCodeUsageError
	}

	engine, cleanup, err := buildEngine(cfg.configPath, false)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameComponents, err)
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

	names, err := engine.Components().List(ctx)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgListCompsFailed, err)
		return ExitCodeError
	}

	if cfg.format == OutputFormatJSON {
		out, err := json.Marshal(names)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgListCompsFailed, err)
			return ExitCodeError
		}
		fmt.Fprintln(stdout, string(out))
		return ExitCodeSuccess
	}

	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return ExitCodeSuccess
}
