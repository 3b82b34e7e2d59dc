package main

import (
	"fmt"
	"io"
)

func runHelp(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, HelpMainUsage)
		return ExitCodeSuccess
	}

	switch args[0] {
	case CmdNameRender:
		fmt.Fprintln(stdout, HelpRenderUsage)
	case CmdNameFolder:
		fmt.Fprintln(stdout, HelpFolderUsage)
	case CmdNameComponents:
		fmt.Fprintln(stdout, HelpComponentsUsage)
	case CmdNameVersion:
		fmt.Fprintln(stdout, HelpVersionUsage)
	case CmdNameHelp:
		fmt.Fprintln(stdout, HelpHelpUsage)
	default:
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgUnknownCommand, args[0])
		fmt.Fprintln(stderr, HelpMainUsage)
		return ExitCodeUsageError
	}

	return ExitCodeSuccess
}
