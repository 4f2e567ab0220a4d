package main

import (
	"encoding/json"
	"log"

	"github.com/spf13/cobra"

	"github.com/planform/engine/core"
)

type transformOptions struct {
	*RootOptions
	ContextPath string
}

func newTransformCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &transformOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transform <plan-file>",
		Short: "Apply a plan to a single event/state context",
		Long: `Transform validates a plan, applies it to the context read from
--context (a {"event", "state", "vars"} document), and prints the
resulting state and the primitive operations that produced it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.ContextPath, "context", "", "path to a context document (required)")
	_ = cmd.MarkFlagRequired("context")

	return cmd
}

func runTransform(opts *transformOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	traceID := newTraceID()

	planJSON, err := loadDocumentJSON(planPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load plan", err)
	}

	ctxJSON, err := loadDocumentJSON(opts.ContextPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load context", err)
	}
	var cf contextFile
	if err := json.Unmarshal(ctxJSON, &cf); err != nil {
		return WrapExitError(ExitCommandError, "parse context", err)
	}

	ctx := &core.Context{Event: cf.Event, State: cf.State, Vars: cf.Vars, Extra: cf.Extra}
	formatter.VerboseLog("[%s] transforming %s against %s", traceID, planPath, opts.ContextPath)

	result, err := core.Transform(planJSON, ctx, nil)
	if err != nil {
		_ = formatter.Error(traceID, errorKind(err), err.Error())
		return WrapExitError(ExitFailure, "transform failed", err)
	}

	log.Printf("planform transform trace=%s ops=%d (%s)", traceID, len(result.Ops), core.PrimitiveOpsSummary(result.Ops))
	return formatter.Success(traceID, result)
}

// errorKind classifies a core error into a short, stable label for the
// JSON error envelope.
func errorKind(err error) string {
	switch err.(type) {
	case *core.InvalidPlan:
		return "invalid-plan"
	case *core.PreconditionFailed:
		return "precondition-failed"
	case *core.ParentNotObject:
		return "parent-not-object"
	case *core.OpFailed:
		return "op-failed"
	default:
		return "error"
	}
}
