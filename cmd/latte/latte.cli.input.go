package main

import (
	"io"
	"os"
)

// readInput reads from stdin when the path is "-", otherwise from the file.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes to stdout when the path is "-", otherwise to the file.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == InputSourceStdin {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, FilePermissions)
}
