package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/lattetex/latte"
)

// folderConfig holds parsed flags for the folder command.
type folderConfig struct {
	dir        string
	outputPath string
	configPath string
	strict     bool
	quiet      bool
}

func parseFolderFlags(args []string) (*folderConfig, error) {
	cfg := &folderConfig{}

	fs := flag.NewFlagSet(CmdNameFolder, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.BoolVar(&cfg.strict, FlagStrict, false, "")
	fs.BoolVar(&cfg.quiet, FlagQuiet, false, "")
	fs.BoolVar(&cfg.quiet, FlagQuietShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		cfg.dir = fs.Arg(0)
	}

	return cfg, nil
}

func runFolder(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFolderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameFolder, err)
		fmt.Fprintln(stderr, HelpFolderUsage)
		return ExitCodeUsageError
	}

	if cfg.dir == "" {
		fmt.Fprintln(stderr, ErrMsgMissingFolder)
		fmt.Fprintln(stderr, HelpFolderUsage)
		return ExitCodeUsageError
	}

	engine, cleanup, err := buildEngine(cfg.configPath, cfg.strict)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameFolder, err)
		return ExitCodeValidationError
	}
	defer cleanup()

	renderer := latte.NewRenderer(engine)

	ctx := context.Background()
	output, err := renderer.RenderFolder(ctx, cfg.dir)
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
