package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

var validFormats = []string{"text", "json"}

// NewRootCommand builds the planform command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "planform",
		Short: "planform validates and applies declarative JSON state transform plans",
		Long: `planform is a command-line front end for the transform engine: it
validates plans against the bundled meta-schema, applies a plan to a
single event/state context, and replays a plan across a batch of
contexts read from a file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid --format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose diagnostic output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newTransformCommand(opts))
	cmd.AddCommand(newReplayCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
