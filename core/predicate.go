package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Predicate is a compiled schema fragment: a callable boolean over
// data, plus the diagnostics from the last false evaluation.
type Predicate interface {
	Apply(data interface{}) (bool, []string)
}

// SchemaCompiler is the Predicate Engine Adapter's collaborator
// contract (spec §4.2/§6): turn an arbitrary JSON Schema fragment into
// a callable Predicate. The engine treats the fragment as opaque input
// to this collaborator.
type SchemaCompiler interface {
	Compile(schema map[string]interface{}) (Predicate, error)
}

// jsonschemaCompiler is the default SchemaCompiler, backed by
// santhosh-tekuri/jsonschema/v5 configured for draft 2020-12 with
// AssertFormat enabled so format keywords actually constrain.
type jsonschemaCompiler struct {
	seq int
}

// NewDefaultCompiler builds a SchemaCompiler using the engine's
// default validator configuration: draft-2020-12, non-strict,
// assertions enabled. A caller may instead supply an alternative via
// Options.Validator, per spec §6.
func NewDefaultCompiler() SchemaCompiler {
	return &jsonschemaCompiler{}
}

// mapReader marshals a schema fragment back to JSON bytes so it can be
// fed to Compiler.AddResource, which expects an io.Reader of raw JSON
// text (mirrors Mindburn-Labs-helm/core/pkg/firewall's
// strings.NewReader(schemaJSON) call for the string case).
func mapReader(schema map[string]interface{}) io.Reader {
	bs, err := json.Marshal(schema)
	if err != nil {
		return bytes.NewReader([]byte("{}"))
	}
	return bytes.NewReader(bs)
}

func (c *jsonschemaCompiler) Compile(schema map[string]interface{}) (Predicate, error) {
	c.seq++
	url := fmt.Sprintf("mem://transform-plan/schema-%d.json", c.seq)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if err := compiler.AddResource(url, mapReader(schema)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	return &jsonschemaPredicate{schema: compiled}, nil
}

type jsonschemaPredicate struct {
	schema *jsonschema.Schema
}

func (p *jsonschemaPredicate) Apply(data interface{}) (bool, []string) {
	if err := p.schema.Validate(data); err != nil {
		return false, flattenValidationError(err)
	}
	return true, nil
}

// flattenValidationError renders a jsonschema.ValidationError tree as
// a flat list of "instance-path: message" diagnostics. The engine
// requires draft-2020-12 with "allErrors"-equivalent semantics for
// useful diagnostics; jsonschema/v5 gathers the full Causes tree on a
// single Validate call, so no extra configuration is needed to get
// more than the first failure.
func flattenValidationError(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, fmt.Sprintf("%s: %s", e.InstanceLocation, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return out
}
