package core

// ResolveValueSpec produces a concrete value from a ValueSpec, per
// spec §4.4.
//
//   - {"valueFrom": expr}: expr is a dotted expression, looked up
//     against ctx.
//   - {"literal": v}: v is returned verbatim.
//   - anything else (scalars, arrays, other objects): passed through
//     as-is.
//
// valueFrom uses the dotted-expression grammar, never pointer syntax;
// pointer-style resolution is reserved for variable "get".
func ResolveValueSpec(spec ValueSpec, ctx map[string]interface{}) interface{} {
	obj, isObj := spec.(map[string]interface{})
	if !isObj {
		return spec
	}
	if from, have := obj["valueFrom"]; have {
		expr, _ := from.(string)
		return dottedLookup(ctx, expr)
	}
	if lit, have := obj["literal"]; have {
		return lit
	}
	return spec
}
