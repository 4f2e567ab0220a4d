package core

import (
	"bytes"
	"encoding/json"
)

// Plan is the declarative, serializable description of conditional
// state mutations. See the bundled meta-schema (metaschema.json) for
// the wire-level contract this type mirrors.
type Plan struct {
	Atomic        bool             `json:"atomic,omitempty"`
	Description   string           `json:"description,omitempty"`
	Variables     *VariableSpecs   `json:"variables,omitempty"`
	Preconditions map[string]interface{} `json:"preconditions,omitempty"`
	When          []*WhenBranch    `json:"when"`
}

// VariableSpecs is an ordered name->VariableSpec mapping. Plain
// map[string]*VariableSpec loses the declaration order a JSON object's
// keys were written in; spec §4.5 requires variables to be evaluated
// in that order so a later variable can reference an earlier one via
// "{vars.earlier}". UnmarshalJSON below records key order as it walks
// the raw token stream instead of relying on map iteration.
type VariableSpecs struct {
	Names []string
	Specs map[string]*VariableSpec
}

// UnmarshalJSON records both the specs and the order their keys
// appeared in the source object.
func (vs *VariableSpecs) UnmarshalJSON(data []byte) error {
	raw := make(map[string]*VariableSpec)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	names, err := objectKeyOrder(data)
	if err != nil {
		return err
	}
	vs.Names = names
	vs.Specs = raw
	return nil
}

// MarshalJSON writes the specs back out as a plain object; Go's
// encoding/json does not offer a way to control key order on encode,
// so round-tripping through Marshal does not preserve Names -- callers
// that need a stable wire order should marshal plans that came from
// disk as bytes, not as re-marshaled Go values.
func (vs *VariableSpecs) MarshalJSON() ([]byte, error) {
	if vs == nil {
		return []byte("null"), nil
	}
	return json.Marshal(vs.Specs)
}

// objectKeyOrder walks a JSON object's top-level keys in the order
// they appear in the source bytes.
func objectKeyOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}
	var names []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		names = append(names, key)
		if err := skipJSONValue(dec); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// skipJSONValue consumes exactly one JSON value from dec, whatever its
// shape, so objectKeyOrder can walk keys without decoding values.
func skipJSONValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if _, isDelim := tok.(json.Delim); !isDelim {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// NewVariableSpecs builds a VariableSpecs from an explicit, ordered
// list of names, for callers constructing plans programmatically.
func NewVariableSpecs(names []string, specs map[string]*VariableSpec) *VariableSpecs {
	return &VariableSpecs{Names: names, Specs: specs}
}

// VariableSpec names exactly one of Get or Value; never both, never
// neither. Plan validation rejects anything else.
type VariableSpec struct {
	Get   *string     `json:"get,omitempty"`
	Value interface{} `json:"value,omitempty"`

	// hasValue distinguishes an explicit `value: null` from an absent
	// Value field, since interface{} can't tell the difference after
	// JSON unmarshaling on its own.
	hasValue bool
}

// UnmarshalJSON tracks whether "value" was actually present in the
// source document, since a JSON `null` and an absent key both decode
// to a nil interface{}.
func (vs *VariableSpec) UnmarshalJSON(data []byte) error {
	type alias VariableSpec
	aux := struct {
		*alias
		RawValue *interface{} `json:"value"`
	}{alias: (*alias)(vs)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.RawValue != nil {
		vs.hasValue = true
		vs.Value = *aux.RawValue
	}
	return nil
}

// HasValue reports whether this spec was built with an explicit Value
// (including an explicit JSON null), as opposed to a Get.
func (vs *VariableSpec) HasValue() bool {
	return vs.hasValue
}

// NewValueVariableSpec builds a VariableSpec around a literal value,
// for callers constructing plans programmatically rather than from
// JSON.
func NewValueVariableSpec(v interface{}) *VariableSpec {
	return &VariableSpec{Value: v, hasValue: true}
}

// NewGetVariableSpec builds a VariableSpec around a get expression.
func NewGetVariableSpec(expr string) *VariableSpec {
	return &VariableSpec{Get: &expr}
}

// WhenBranch is one ordered entry of a Plan's branch list.
type WhenBranch struct {
	If   map[string]interface{} `json:"if"`
	Then *Action                `json:"then"`
	Else *Action                `json:"else,omitempty"`
}

// Action is the branch-local work: optional preconditions and
// variables, plus the ordered operations to prepare and apply.
type Action struct {
	Preconditions map[string]interface{} `json:"preconditions,omitempty"`
	Variables     *VariableSpecs         `json:"variables,omitempty"`
	Ops           []*Operation           `json:"ops"`
}

// OpKind enumerates the operation vocabulary. "set" is a convenience
// form the Executor maps to "add" or "replace" before the patch
// applier ever sees it.
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpReplace OpKind = "replace"
	OpRemove  OpKind = "remove"
	OpTest    OpKind = "test"
	OpSet     OpKind = "set"
)

// TestKind is informational; see spec §9's open question. It is
// decoded and validated but not passed on: PreparedOperation and
// PrimitiveOp carry no TestKind, so every "test" op reaches the patch
// applier as a plain RFC 6902 "test" (deep structural equality in the
// default applier), whichever kind the plan names.
type TestKind string

const (
	TestEquality  TestKind = "equality"
	TestDeepEqual TestKind = "deepEqual"
)

// Operation is one entry of an Action's ops list, as written by a plan
// author: paths and values are still templates/specs, not yet
// resolved against any particular Context.
type Operation struct {
	Op       OpKind      `json:"op"`
	Path     PathTemplate `json:"path,omitempty"`
	From     PathTemplate `json:"from,omitempty"`
	Value    ValueSpec   `json:"value,omitempty"`
	TestKind TestKind    `json:"testKind,omitempty"`
}

// PathTemplate is a JSON-Pointer-shaped string that may contain
// "{dotted.expr}" interpolation tokens. See ToPointer.
type PathTemplate string

// ValueSpec is anything a value can be specified as: a literal JSON
// value in place, or an object naming exactly one of "valueFrom" or
// "literal". See ResolveValueSpec.
type ValueSpec = interface{}

// PreparedOperation is an Operation with Path/From/Value fully
// resolved against a particular Context, immediately before
// application. Op is left as-is, including "set" -- MapSetOps handles
// the set->add/replace translation.
type PreparedOperation struct {
	Op    OpKind
	Path  string
	From  string
	Value interface{}
}

// PrimitiveOp is a fully resolved RFC 6902 operation, ready for the
// patch applier. Unlike PreparedOperation, Op here is never "set".
type PrimitiveOp struct {
	Op    OpKind      `json:"op"`
	Path  string      `json:"path"`
	From  string      `json:"from,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// Context is the working object against which all expressions and
// predicates are evaluated: {event, state, vars}. Extra fields are
// preserved but not otherwise interpreted by the engine.
type Context struct {
	Event interface{}
	State interface{}
	Vars  map[string]interface{}
	Extra map[string]interface{}
}

// AsMap renders the Context as the plain map that predicates and
// dotted-expression lookups walk: {"event":..., "state":...,
// "vars":...}, plus any Extra fields merged in at the top level.
func (c *Context) AsMap() map[string]interface{} {
	m := make(map[string]interface{}, 3+len(c.Extra))
	for k, v := range c.Extra {
		m[k] = v
	}
	m["event"] = c.Event
	m["state"] = c.State
	m["vars"] = varsAsMap(c.Vars)
	return m
}

func varsAsMap(vars map[string]interface{}) map[string]interface{} {
	if vars == nil {
		return map[string]interface{}{}
	}
	return vars
}

// Result is what a successful Transform returns.
type Result struct {
	State interface{}   `json:"state"`
	Ops   []PrimitiveOp `json:"ops"`
}
