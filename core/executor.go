package core

import "encoding/json"

// Options configures a Transform/Engine call. A nil *Options is
// equivalent to the zero value: the engine builds its own default
// SchemaCompiler and PatchApplier.
type Options struct {
	// Validator, if set, substitutes for the default SchemaCompiler
	// (spec §6). Supplying one forces recompilation of the meta-schema
	// against the caller's instance instead of reusing the process-wide
	// cache. Preconditions and branch predicates are compiled afresh on
	// every call, with whichever compiler is in use.
	Validator SchemaCompiler

	// Applier, if set, substitutes for the default PatchApplier.
	Applier PatchApplier
}

func (o *Options) compiler() SchemaCompiler {
	if o != nil && o.Validator != nil {
		return o.Validator
	}
	return NewDefaultCompiler()
}

func (o *Options) applier() PatchApplier {
	if o != nil && o.Applier != nil {
		return o.Applier
	}
	return NewDefaultPatchApplier()
}

// Transform runs the end-to-end pipeline of spec §4.6 against a raw
// plan document: validate, evaluate top-level variables and
// preconditions, select a branch, evaluate its variables and
// preconditions, prepare its operations, snapshot state, map "set" to
// primitives, and apply -- with rollback on failure when Atomic.
func Transform(planJSON []byte, ctx *Context, opts *Options) (*Result, error) {
	compiler := opts.compiler()

	vr, err := ValidatePlan(planJSON, schemaCompilerOrNil(opts))
	if err != nil {
		return nil, err
	}
	if !vr.Valid {
		return nil, &InvalidPlan{Errors: vr.Errors}
	}

	plan, err := DecodePlan(planJSON)
	if err != nil {
		return nil, &InvalidPlan{Errors: []string{err.Error()}}
	}

	return TransformPlan(plan, ctx, opts, compiler)
}

// schemaCompilerOrNil returns the Options' explicit Validator (or nil
// to mean "use the process-wide default"), for ValidatePlan's
// recompilation rule.
func schemaCompilerOrNil(opts *Options) SchemaCompiler {
	if opts == nil {
		return nil
	}
	return opts.Validator
}

// TransformPlan runs the pipeline against an already-decoded and
// already-validated *Plan. Transform is the usual entry point;
// TransformPlan is exposed for callers that decode and validate plans
// once and then apply them repeatedly, or that
// built a Plan programmatically rather than from JSON.
func TransformPlan(plan *Plan, ctx *Context, opts *Options, compiler SchemaCompiler) (*Result, error) {
	if compiler == nil {
		compiler = opts.compiler()
	}
	applier := opts.applier()

	working := ctx.AsMap()

	// Step 2: top-level variables.
	vars := EvaluateVariables(plan.Variables, working)
	working["vars"] = vars

	// Step 3: top-level preconditions.
	if plan.Preconditions != nil {
		ok, err := evalPredicate(compiler, plan.Preconditions, working)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &PreconditionFailed{Branch: false}
		}
	}

	// Step 4: branch selection.
	action, err := selectBranch(compiler, plan.When, working)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return &Result{State: ctx.State, Ops: []PrimitiveOp{}}, nil
	}

	// Step 5: branch variables, merged over top-level.
	branchVars := EvaluateVariables(action.Variables, working)
	vars = MergeVariables(vars, branchVars)
	working["vars"] = vars

	// Step 6: branch preconditions.
	if action.Preconditions != nil {
		ok, err := evalPredicate(compiler, action.Preconditions, working)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &PreconditionFailed{Branch: true}
		}
	}

	// Step 7: operation preparation.
	prepared := make([]PreparedOperation, len(action.Ops))
	for i, op := range action.Ops {
		prepared[i] = prepareOp(op, working)
	}

	// Step 8: snapshot state for possible atomic rollback.
	snapshot, err := DeepCopy(ctx.State)
	if err != nil {
		return nil, err
	}

	// Step 9: map "set" to add/replace, creating missing parents.
	// newState is assigned to ctx.State before the error check: a
	// ParentNotObject can occur after earlier "set" ops already
	// created parent containers, and a non-atomic plan must keep
	// those partial effects (spec §7).
	primitives, newState, mapErr := MapSetOps(ctx.State, prepared)
	ctx.State = newState
	if pno, is := mapErr.(*ParentNotObject); is {
		if plan.Atomic {
			ctx.State = snapshot
		}
		return nil, pno
	}
	if mapErr != nil {
		return nil, mapErr
	}

	// Step 10: apply.
	finalState, errs := applier.Apply(ctx.State, primitives)
	ctx.State = finalState

	for i, e := range errs {
		if e != nil {
			opFail := &OpFailed{Position: i, Op: primitives[i], Err: e}
			if plan.Atomic {
				ctx.State = snapshot
			}
			return nil, opFail
		}
	}

	return &Result{State: ctx.State, Ops: primitives}, nil
}

// PrepareOps resolves path/from/value for each Operation against ctx,
// exposed standalone per spec §6's helper list.
func PrepareOps(ops []*Operation, ctx map[string]interface{}) []PreparedOperation {
	out := make([]PreparedOperation, len(ops))
	for i, op := range ops {
		out[i] = prepareOp(op, ctx)
	}
	return out
}

func prepareOp(op *Operation, ctx map[string]interface{}) PreparedOperation {
	p := PreparedOperation{Op: op.Op}
	if op.Path != "" {
		p.Path = ToPointer(string(op.Path), ctx)
	}
	if op.From != "" {
		p.From = ToPointer(string(op.From), ctx)
	}
	if op.Op != OpRemove {
		p.Value = ResolveValueSpec(op.Value, ctx)
	}
	return p
}

func evalPredicate(compiler SchemaCompiler, schema map[string]interface{}, data map[string]interface{}) (bool, error) {
	predicate, err := compiler.Compile(schema)
	if err != nil {
		return false, err
	}
	ok, _ := predicate.Apply(data)
	return ok, nil
}

// selectBranch iterates When in order, compiling and applying each
// branch's "if" against working, per spec §4.6 step 4.
func selectBranch(compiler SchemaCompiler, when []*WhenBranch, working map[string]interface{}) (*Action, error) {
	cache := map[int]Predicate{}
	for i, branch := range when {
		predicate, ok := cache[i]
		if !ok {
			var err error
			predicate, err = compiler.Compile(branch.If)
			if err != nil {
				return nil, err
			}
			cache[i] = predicate
		}

		matched, _ := predicate.Apply(working)
		if matched {
			return branch.Then, nil
		}
		if branch.Else != nil {
			return branch.Else, nil
		}
	}
	return nil, nil
}

// TransformAll runs the same plan over a slice of contexts,
// sequentially, collecting one Result/error pair per context. No
// state or predicate cache is shared between contexts beyond the
// process-wide meta-schema cache; this is a convenience loop, not a
// worker pool, preserving the engine's "no concurrency primitives of
// its own" property (spec §5).
func TransformAll(planJSON []byte, ctxs []*Context, opts *Options) ([]*Result, []error) {
	results := make([]*Result, len(ctxs))
	errs := make([]error, len(ctxs))
	for i, ctx := range ctxs {
		results[i], errs[i] = Transform(planJSON, ctx, opts)
	}
	return results, errs
}

// EncodePlan marshals a Plan back to JSON, for round-tripping
// programmatically constructed plans.
func EncodePlan(plan *Plan) ([]byte, error) {
	return json.Marshal(plan)
}
