package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the main entry point for the CLI, separated for testing.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, HelpMainUsage)
		return ExitCodeUsageError
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case CmdNameRender:
		return runRender(commandArgs, stdin, stdout, stderr)
	case CmdNameFolder:
		return runFolder(commandArgs, stdout, stderr)
	case CmdNameComponents:
		return runComponents(commandArgs, stdout, stderr)
	case CmdNameVersion:
		return runVersion(commandArgs, stdout, stderr)
	case CmdNameHelp:
		return runHelp(commandArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgUnknownCommand, command)
		fmt.Fprintln(stderr, HelpMainUsage)
		return ExitCodeUsageError
	}
}
