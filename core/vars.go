package core

import "strings"

// EvaluateVariables materializes a vars mapping from an ordered set of
// VariableSpecs against the current working context, per spec §4.5.
//
// Specs are evaluated in their declaration order, so a later variable
// may reference an earlier one via "{vars.earlier}". The result is a
// new map; ctx's own "vars" entry is left untouched.
func EvaluateVariables(specs *VariableSpecs, ctx map[string]interface{}) map[string]interface{} {
	base, _ := ctx["vars"].(map[string]interface{})
	working := cloneMap(base)
	if specs == nil {
		return working
	}

	ctxCopy := shallowCopyCtx(ctx)
	ctxCopy["vars"] = working

	for _, name := range specs.Names {
		spec := specs.Specs[name]
		if spec == nil {
			continue
		}
		working[name] = evaluateOne(spec, ctxCopy)
	}
	return working
}

func evaluateOne(spec *VariableSpec, ctx map[string]interface{}) interface{} {
	if spec.HasValue() {
		return spec.Value
	}
	if spec.Get == nil {
		return nil
	}
	expr := *spec.Get
	if strings.HasPrefix(expr, "/") {
		pointer := ToPointer(expr, ctx)
		return pointerGet(ctxRoot(ctx), pointer)
	}
	return dottedLookup(ctx, expr)
}

// ctxRoot builds the root object a pointer-form "get" dereferences
// against: the entire working context {event, state, vars}, per spec
// §4.5 and the §9 open question ("pointer-form get root").
func ctxRoot(ctx map[string]interface{}) map[string]interface{} {
	return ctx
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	acc := make(map[string]interface{}, len(m))
	for k, v := range m {
		acc[k] = v
	}
	return acc
}

func shallowCopyCtx(ctx map[string]interface{}) map[string]interface{} {
	return cloneMap(ctx)
}

// MergeVariables merges override over base, override winning for
// shared names, per spec §4.5's branch-vs-top-level precedence rule.
func MergeVariables(base, override map[string]interface{}) map[string]interface{} {
	acc := cloneMap(base)
	for k, v := range override {
		acc[k] = v
	}
	return acc
}
