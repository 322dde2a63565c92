// Package cli lets tests drive the jxfetch command tree in-process.
package cli

import (
	"fmt"
	"io"
)

// Handler runs jxfetch with the given arguments and returns the exit code.
// The main package installs it from init; Run only forwards to it.
var Handler func(args []string, stdout, stderr io.Writer) int

// Run executes jxfetch as if invoked from a shell with args.
func Run(args []string, stdout, stderr io.Writer) int {
	if Handler == nil {
		fmt.Fprintln(stderr, "jxfetch: no command handler registered")
		return 1
	}
	return Handler(args, stdout, stderr)
}
