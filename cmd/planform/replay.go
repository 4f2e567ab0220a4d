package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/planform/engine/core"
)

type replayOptions struct {
	*RootOptions
	ContextsPath string
}

func newReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &replayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <plan-file>",
		Short: "Apply a plan to a batch of contexts read from a file",
		Long: `Replay reads a JSON or YAML array of context documents from
--contexts and applies the plan to each one in order, reporting a
result or error per context. Contexts do not share state; this is a
convenience loop over Transform, not a way to chain state between
events.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.ContextsPath, "contexts", "", "path to an array of context documents (required)")
	_ = cmd.MarkFlagRequired("contexts")

	return cmd
}

type replayEntry struct {
	Index  int           `json:"index"`
	Result *core.Result  `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func runReplay(opts *replayOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	traceID := newTraceID()

	planJSON, err := loadDocumentJSON(planPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load plan", err)
	}

	contextsJSON, err := loadDocumentJSON(opts.ContextsPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load contexts", err)
	}
	var files []contextFile
	if err := json.Unmarshal(contextsJSON, &files); err != nil {
		return WrapExitError(ExitCommandError, "parse contexts", err)
	}

	ctxs := make([]*core.Context, len(files))
	for i, cf := range files {
		ctxs[i] = &core.Context{Event: cf.Event, State: cf.State, Vars: cf.Vars, Extra: cf.Extra}
	}

	formatter.VerboseLog("[%s] replaying %s against %d context(s)", traceID, planPath, len(ctxs))
	results, errs := core.TransformAll(planJSON, ctxs, nil)

	entries := make([]replayEntry, len(ctxs))
	failures := 0
	for i := range ctxs {
		entries[i] = replayEntry{Index: i}
		if errs[i] != nil {
			entries[i].Error = errs[i].Error()
			failures++
			log.Printf("planform replay trace=%s index=%d error=%q", traceID, i, errs[i].Error())
			continue
		}
		entries[i].Result = results[i]
		log.Printf("planform replay trace=%s index=%d ops=%d (%s)", traceID, i, len(results[i].Ops), core.PrimitiveOpsSummary(results[i].Ops))
	}

	log.Printf("planform replay trace=%s contexts=%d failures=%d", traceID, len(ctxs), failures)

	if err := formatter.Success(traceID, entries); err != nil {
		return err
	}
	if failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d context(s) failed", failures, len(ctxs)))
	}
	return nil
}
