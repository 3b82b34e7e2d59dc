package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"runtime"

	"github.com/lattetex/latte"
)

// versionInfo is the JSON shape of the version command output.
type versionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func runVersion(args []string, stdout, stderr io.Writer) int {
	var format string

	fs := flag.NewFlagSet(CmdNameVersion, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameVersion, err)
		fmt.Fprintln(stderr, HelpVersionUsage)
		return ExitCodeUsageError
	}

	info := versionInfo{
		Name:      CLIName,
		Version:   latte.Version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	switch format {
	case OutputFormatJSON:
		out, err := json.Marshal(info)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, CmdNameVersion, err)
			return ExitCodeError
		}
		fmt.Fprintln(stdout, string(out))
	case OutputFormatText:
		fmt.Fprintf(stdout, "%s %s (%s, %s)\n", info.Name, info.Version, info.GoVersion, info.Platform)
	default:
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgInvalidFormat, format)
		return ExitCodeUsageError
	}

	return ExitCodeSuccess
}
