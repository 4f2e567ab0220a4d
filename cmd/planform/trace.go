package main

import "github.com/google/uuid"

// newTraceID returns a fresh correlation id for a single command
// invocation, echoed back in JSON output and audit lines so a
// transform run and its logged operations can be tied together.
func newTraceID() string {
	return uuid.NewString()
}
