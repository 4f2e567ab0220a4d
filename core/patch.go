package core

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// PatchApplier is the external RFC 6902 patch applier collaborator
// (spec §6): apply primitive operations to target in order, return the
// resulting document, and report a per-operation diagnostic. The
// applier itself is non-atomic: on a failing operation it stops, and
// the returned document keeps the effects of the prior operations. The
// default applier works on a JSON copy and leaves target itself
// unchanged; the Executor stores the returned document in ctx.State.
type PatchApplier interface {
	Apply(target interface{}, ops []PrimitiveOp) (interface{}, []error)
}

// jsonPatchApplier is the default PatchApplier, backed by
// evanphx/json-patch/v5. Operations are applied one at a time via
// repeated single-op Patch.Apply calls over a JSON-marshaled
// representation of target, which is the natural way to get
// per-operation partial-application semantics out of a library whose
// Patch.Apply works over a whole document at once.
type jsonPatchApplier struct{}

// NewDefaultPatchApplier builds the engine's default PatchApplier.
func NewDefaultPatchApplier() PatchApplier {
	return &jsonPatchApplier{}
}

func (a *jsonPatchApplier) Apply(target interface{}, ops []PrimitiveOp) (interface{}, []error) {
	doc, err := json.Marshal(target)
	if err != nil {
		return target, []error{err}
	}

	errs := make([]error, len(ops))
	for i, op := range ops {
		opJSON, err := json.Marshal([]PrimitiveOp{op})
		if err != nil {
			errs[i] = err
			break
		}
		patch, err := jsonpatch.DecodePatch(opJSON)
		if err != nil {
			errs[i] = err
			break
		}
		next, err := patch.Apply(doc)
		if err != nil {
			errs[i] = err
			break
		}
		doc = next
	}

	var result interface{}
	if err := json.Unmarshal(doc, &result); err != nil {
		return target, append(errs, err)
	}
	return result, errs
}

// DeepCopy structurally copies v via a JSON marshal/unmarshal
// round-trip, the same technique the teacher's Canonicalize helper
// uses. Used for the pre-application state snapshot (spec §4.6 step
// 8) that atomic rollback restores from.
func DeepCopy(v interface{}) (interface{}, error) {
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(bs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapSetOps translates each "set" PreparedOperation into a primitive
// "add" or "replace", per spec §4.6 step 9. Non-"set" operations pass
// through unchanged (a "remove" prepared by prepareOp has no Value,
// matching the meta-schema's shape rule). state is mutated in place to create any
// missing parent containers along a "set" operation's path; this is
// the only mutation the Executor performs outside the patch applier.
func MapSetOps(state interface{}, ops []PreparedOperation) ([]PrimitiveOp, interface{}, error) {
	out := make([]PrimitiveOp, 0, len(ops))
	for _, op := range ops {
		if op.Op != OpSet {
			out = append(out, PrimitiveOp{
				Op:    op.Op,
				Path:  op.Path,
				From:  op.From,
				Value: op.Value,
			})
			continue
		}

		var err error
		state, err = ensureParents(state, op.Path)
		if err != nil {
			return nil, state, err
		}

		kind := OpAdd
		if _, exists := pointerLookup(state, op.Path); exists {
			kind = OpReplace
		}
		out = append(out, PrimitiveOp{
			Op:    kind,
			Path:  op.Path,
			Value: op.Value,
		})
	}
	return out, state, nil
}

// pointerLookup dereferences pointer against root and reports whether
// the target actually exists (as distinct from existing-but-nil).
func pointerLookup(root interface{}, pointer string) (interface{}, bool) {
	if pointer == "" || pointer == "/" {
		return root, true
	}
	cur := root
	toks := strings.Split(pointer[1:], "/")
	for i, tok := range toks {
		seg := unescapeToken(tok)
		m, isMap := cur.(map[string]interface{})
		if !isMap {
			if arr, isArr := cur.([]interface{}); isArr {
				idx, ok := parseIndex(seg)
				if !ok || idx < 0 || idx >= len(arr) {
					return nil, false
				}
				cur = arr[idx]
				if i == len(toks)-1 {
					return cur, true
				}
				continue
			}
			return nil, false
		}
		val, have := m[seg]
		if !have {
			return nil, false
		}
		cur = val
		if i == len(toks)-1 {
			return cur, true
		}
	}
	return cur, true
}

// ensureParents walks pointer's parent chain and creates any missing
// object container along the way, mutating (and returning, in case the
// root itself needed to be created) state. It raises ParentNotObject
// if a non-nil root or an existing parent segment is not a JSON
// object; array parents are not walked into, so a path through an
// array also raises ParentNotObject.
func ensureParents(state interface{}, pointer string) (interface{}, error) {
	if pointer == "" || pointer == "/" {
		return state, nil
	}
	toks := strings.Split(pointer[1:], "/")
	parents := toks[:len(toks)-1]

	if len(parents) == 0 {
		if state == nil {
			return map[string]interface{}{}, nil
		}
		return state, nil
	}

	if state == nil {
		state = map[string]interface{}{}
	}
	root, ok := state.(map[string]interface{})
	if !ok {
		return state, &ParentNotObject{Path: pointer, Segment: ""}
	}

	cur := root
	for i, tok := range parents {
		seg := unescapeToken(tok)
		next, have := cur[seg]
		if !have || next == nil {
			created := map[string]interface{}{}
			cur[seg] = created
			cur = created
			continue
		}
		nextMap, isMap := next.(map[string]interface{})
		if !isMap {
			return root, &ParentNotObject{
				Path:    pointer,
				Segment: strings.Join(append(append([]string{}, parents[:i+1]...)), "/"),
			}
		}
		cur = nextMap
	}
	return root, nil
}

// PrimitiveOpsSummary renders a short human-readable description of a
// primitive op list, useful for CLI audit lines.
func PrimitiveOpsSummary(ops []PrimitiveOp) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%s %s", op.Op, op.Path)
	}
	return strings.Join(parts, "; ")
}
