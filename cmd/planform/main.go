// Command planform is a command-line front end for the transform
// engine: validate a plan, apply it to a context, or replay it across
// a batch of contexts.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Error())
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitCommandError)
	}
}
