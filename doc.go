// Package engine provides a declarative, JSON-Schema-driven engine for
// transforming JSON state documents in response to events.
//
// The core code is in package 'core', and the command-line tool is in `cmd/planform`.
package engine
