package core

import (
	_ "embed"
	"encoding/json"
	"sync"
)

// metaschemaJSON is the bundled Transform Plan meta-schema (spec §6),
// shipped verbatim and exposed via MetaSchemaJSON for callers who wish
// to validate plans independently.
//
//go:embed metaschema.json
var metaschemaJSON []byte

// MetaSchemaJSON returns the exact bytes of the bundled meta-schema.
func MetaSchemaJSON() []byte {
	out := make([]byte, len(metaschemaJSON))
	copy(out, metaschemaJSON)
	return out
}

// ValidationResult is what ValidatePlan returns.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

var (
	defaultMetaPredicate     Predicate
	defaultMetaPredicateOnce sync.Once
	defaultMetaPredicateErr  error
)

// compileDefaultMetaSchema compiles the bundled meta-schema exactly
// once per process, guarded so first-use races (spec §5's "Sharing")
// can't produce observable divergence, and caches the result for
// every engine instance that uses the default compiler.
func compileDefaultMetaSchema() (Predicate, error) {
	defaultMetaPredicateOnce.Do(func() {
		var schema map[string]interface{}
		if err := json.Unmarshal(metaschemaJSON, &schema); err != nil {
			defaultMetaPredicateErr = err
			return
		}
		defaultMetaPredicate, defaultMetaPredicateErr = NewDefaultCompiler().Compile(schema)
	})
	return defaultMetaPredicate, defaultMetaPredicateErr
}

// ValidatePlan confirms that raw plan JSON conforms to the Transform
// Plan meta-schema, per spec §4.1.
//
// A non-nil compiler substitutes for the default one and forces a
// fresh compilation of the meta-schema against the caller's instance,
// rather than reusing the process-wide cache.
func ValidatePlan(planJSON []byte, compiler SchemaCompiler) (*ValidationResult, error) {
	var data interface{}
	if err := json.Unmarshal(planJSON, &data); err != nil {
		return &ValidationResult{Valid: false, Errors: []string{err.Error()}}, nil
	}

	predicate, err := metaSchemaPredicate(compiler)
	if err != nil {
		return nil, err
	}

	ok, errs := predicate.Apply(data)
	return &ValidationResult{Valid: ok, Errors: errs}, nil
}

func metaSchemaPredicate(compiler SchemaCompiler) (Predicate, error) {
	if compiler == nil {
		return compileDefaultMetaSchema()
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(metaschemaJSON, &schema); err != nil {
		return nil, err
	}
	return compiler.Compile(schema)
}

// DecodePlan unmarshals raw plan JSON into a *Plan, without validating
// it. Callers that want to enforce the meta-schema should call
// ValidatePlan first, as Transform itself does.
func DecodePlan(planJSON []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(planJSON, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
