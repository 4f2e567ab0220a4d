package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planform/engine/core"
)

func newValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Validate a plan against the bundled meta-schema",
		Long: `Validate checks a plan document against the engine's meta-schema
without evaluating it against any context. It accepts JSON or YAML,
selected by file extension.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	traceID := newTraceID()

	planJSON, err := loadDocumentJSON(planPath)
	if err != nil {
		_ = formatter.Error(traceID, "load-error", err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	result, err := core.ValidatePlan(planJSON, nil)
	if err != nil {
		_ = formatter.Error(traceID, "compile-error", err.Error())
		return WrapExitError(ExitCommandError, "meta-schema compilation failed", err)
	}

	if !result.Valid {
		_ = formatter.Error(traceID, "invalid-plan", fmt.Sprintf("%d error(s)", len(result.Errors)))
		if opts.Format != "json" {
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("plan invalid: %d error(s)", len(result.Errors)))
	}

	return formatter.Success(traceID, "plan is valid")
}
