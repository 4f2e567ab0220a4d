package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

// VariableSpecs.UnmarshalJSON must record key order as written, not the
// order Go's map would iterate them in.
func TestVariableSpecsUnmarshalJSON_PreservesDeclarationOrder(t *testing.T) {
	raw := `{"zebra": {"value": 1}, "mango": {"value": 2}, "apple": {"value": 3}}`
	var vs VariableSpecs
	if err := json.Unmarshal([]byte(raw), &vs); err != nil {
		t.Fatalf("Unmarshal: %s", err)
	}
	want := []string{"zebra", "mango", "apple"}
	if !reflect.DeepEqual(vs.Names, want) {
		t.Errorf("Names = %#v, want %#v", vs.Names, want)
	}
	if len(vs.Specs) != 3 {
		t.Fatalf("Specs = %#v, want 3 entries", vs.Specs)
	}
}

// EvaluateVariables must evaluate in specs.Names order, not map
// iteration order, so a later variable can reference an earlier one.
// "bFirst" is declared before "aSecond" but sorts after it
// alphabetically, so an evaluator that (mistakenly) iterated
// specs.Specs directly would resolve "aSecond" before "bFirst" exists.
func TestEvaluateVariables_LaterReferencesEarlier(t *testing.T) {
	specs := &VariableSpecs{
		Names: []string{"bFirst", "aSecond"},
		Specs: map[string]*VariableSpec{
			"bFirst":  NewValueVariableSpec("base"),
			"aSecond": NewGetVariableSpec("vars.bFirst"),
		},
	}
	ctx := map[string]interface{}{"event": map[string]interface{}{}, "state": map[string]interface{}{}}
	got := EvaluateVariables(specs, ctx)
	want := map[string]interface{}{"bFirst": "base", "aSecond": "base"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("vars = %#v, want %#v", got, want)
	}
}

// Reversing declaration order reverses which variable can see which:
// with "aSecond" declared first, it can no longer see "bFirst".
func TestEvaluateVariables_OrderControlsVisibility(t *testing.T) {
	specs := &VariableSpecs{
		Names: []string{"aSecond", "bFirst"},
		Specs: map[string]*VariableSpec{
			"bFirst":  NewValueVariableSpec("base"),
			"aSecond": NewGetVariableSpec("vars.bFirst"),
		},
	}
	ctx := map[string]interface{}{"event": map[string]interface{}{}, "state": map[string]interface{}{}}
	got := EvaluateVariables(specs, ctx)
	want := map[string]interface{}{"bFirst": "base", "aSecond": nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("vars = %#v, want %#v", got, want)
	}
}
