// Package vm implements the execution-graph builder (SPEC_FULL §4.2): a
// worklist-driven loop that seeds a method's entry node, dispatches each
// dequeued node to its opcode handler, enqueues copy-on-branch children,
// merges loop back-edges, and enforces the four resource bounds —
// grounded on utils/worklist.Worklist (the teacher's own generic FIFO)
// and on absint.go's dequeue-execute-enqueue-successors loop shape.
package vm

import (
	"github.com/k5h4tr1y4/simplify/cache"
	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/dex"
	"github.com/k5h4tr1y4/simplify/errs"
	"github.com/k5h4tr1y4/simplify/execgraph"
	"github.com/k5h4tr1y4/simplify/opcode"
	"github.com/k5h4tr1y4/simplify/state"
	"github.com/k5h4tr1y4/simplify/utils/worklist"
	"github.com/k5h4tr1y4/simplify/value"
)

// Driver builds one method's ExecutionGraph at a time. It is not safe
// for concurrent use by multiple goroutines against the same
// ClassManager, matching SPEC_FULL §5's single-threaded-core model; a
// caller that wants per-method parallelism must give each goroutine its
// own Driver (and its own ClassState, since that cache is not shared
// across workers).
type Driver struct {
	cm     dex.ClassManager
	safe   *config.SafeList
	cache  *cache.SafeMethodCache
	bounds config.Bounds
}

// NewDriver constructs a Driver against a ClassManager, safe-invoke
// catalog, reflective-resolution cache, and resource bounds.
func NewDriver(cm dex.ClassManager, safe *config.SafeList, c *cache.SafeMethodCache, bounds config.Bounds) *Driver {
	return &Driver{cm: cm, safe: safe, cache: c, bounds: bounds}
}

// Drive builds the execution graph for method, starting from initial
// (a root ExecutionContext whose register file already reflects either
// caller-supplied arguments, for a recursive invoke, or all-Unknown
// parameters for a top-level entry point).
func (d *Driver) Drive(method *dex.Method, initial state.ExecutionContext) (*execgraph.Graph, error) {
	g := execgraph.New(method)
	merger := execgraph.NewLoopMerger()
	checker := newBoundsChecker(d.bounds)
	loopHeaders := loopHeaderSet(method)

	// The entry is always slice position 0, not a lookup by Location —
	// PeepholeNopRemover physically deletes instructions without
	// renumbering the survivors' Location.Index, so an optimized
	// method's original index-0 instruction may no longer exist.
	if len(method.Instructions) == 0 {
		return nil, errs.New(errs.MalformedInstruction, "method has no entry instruction")
	}
	root := method.Instructions[0]
	rootID := g.NewNode(root, initial)

	var failure error
	worklist.Start(rootID, func(id execgraph.NodeID, add func(execgraph.NodeID)) {
		if failure != nil {
			return
		}
		if err := checker.checkExecutionTime(); err != nil {
			failure = err
			return
		}

		node := g.Node(id)
		loc := node.Location()
		if err := checker.checkAddressVisit(loc); err != nil {
			failure = err
			return
		}
		if err := checker.checkMethodVisit(); err != nil {
			failure = err
			return
		}

		res, err := d.execute(node)
		if err != nil {
			failure = err
			return
		}
		node.JoinLevel(res.Level)

		if res.Exception != nil {
			node.SetException(*res.Exception)
			node.SetResult(*res.Exception)
			node.ClearChildren()
			return
		}
		if res.Terminal != nil {
			node.SetResult(*res.Terminal)
			node.ClearChildren()
			return
		}

		for _, succLoc := range res.Next {
			childInsn := method.InstructionAt(succLoc)
			if childInsn == nil {
				failure = errs.New(errs.MalformedInstruction, "branch target not found in method")
				return
			}
			childCtx := node.Context().Branch()

			if loopHeaders[succLoc] {
				childID, isNew := merger.MergeOrCreate(g, childInsn, childCtx)
				node.AddChild(childID)
				if isNew {
					add(childID)
				}
				continue
			}

			childID := g.NewNode(childInsn, childCtx)
			node.AddChild(childID)
			add(childID)
		}
	})

	if failure != nil {
		return nil, failure
	}
	g.Finalize()
	return g, nil
}

// execute dispatches one node's instruction to its opcode handler,
// routing invoke instructions through executeCall since only the driver
// can build a callee context and check the call-depth bound.
func (d *Driver) execute(node *execgraph.Node) (opcode.Result, error) {
	insn := node.Instruction()
	msOp, ctxOp, invOp := opcode.Dispatch(insn)

	switch {
	case msOp != nil:
		ctx := node.Context()
		newMS, res := msOp.ExecuteState(insn, ctx.Method)
		ctx.Method = newMS
		node.SetContext(ctx)
		return res, nil
	case ctxOp != nil:
		newCtx, res := ctxOp.ExecuteContext(insn, node.Context(), d.cm, d.safe)
		node.SetContext(newCtx)
		return res, nil
	case invOp != nil:
		invokeInsn := insn.(dex.InvokeInstruction)
		req := invOp.PrepareCall(invokeInsn, node.Context())
		newCtx, res, err := d.executeCall(node.Context(), req)
		if err != nil {
			return opcode.Result{}, err
		}
		node.SetContext(newCtx)
		return res, nil
	default:
		return opcode.Result{}, errs.New(errs.MalformedInstruction, "no opcode handler for "+insn.Mnemonic())
	}
}

// loopHeaderSet finds every location targeted by a backward branch (a
// successor whose code-unit offset is not after the branching
// instruction's own), the set the driver merges at rather than forking
// unboundedly (SPEC_FULL §4.2 step 5). This is a conservative
// over-approximation of "loop header" — any backward target qualifies,
// whether or not it's truly part of a cycle — which only ever causes an
// extra (harmless) merge, never a missed one.
func loopHeaderSet(method *dex.Method) map[dex.MethodLocation]bool {
	headers := map[dex.MethodLocation]bool{}
	for _, insn := range method.Instructions {
		from := insn.Location()
		for _, succ := range insn.Successors() {
			if succ.Offset <= from.Offset {
				headers[succ] = true
			}
		}
	}
	return headers
}

// executeCall resolves and runs one invoke: a local method whose
// arguments are all concrete recurses into a fresh Driver.Drive call one
// call-depth deeper (a resource-bound error from that build aborts this
// one too); a safe external method with all-concrete arguments resolves
// reflectively via the cache; anything else is a conservative
// STRONG-effect Unknown result.
func (d *Driver) executeCall(ctx state.ExecutionContext, req opcode.CallRequest) (state.ExecutionContext, opcode.Result, error) {
	sig := req.Insn.Target
	depth := ctx.CallDepth + 1

	if d.cm.IsLocal(sig.ClassName) && allConcrete(req.Args) {
		if err := checkCallDepth(d.bounds, depth); err != nil {
			return ctx, opcode.Result{}, err
		}
		method, ok := resolveLocalMethod(d.cm, sig)
		if !ok {
			return assignUnknownResult(ctx, req, value.STRONG)
		}

		callee := ctx.Child(method.RegisterCount)
		callee = seedParameters(callee, method, req.Args)

		sub := NewDriver(d.cm, d.safe, d.cache, d.bounds)
		graph, err := sub.Drive(method, callee)
		if err != nil {
			if errs.Is(err, errs.ResourceBoundExceeded) {
				return ctx, opcode.Result{}, err
			}
			return assignUnknownResult(ctx, req, value.STRONG)
		}

		outcome, ok := graph.ConsensusResult()
		level := graph.AggregateLevel()
		if !ok {
			outcome = value.NewUnknown(sig.ReturnType)
		}
		return assignResult(ctx, req, outcome, level)
	}

	if d.safe.IsSafeMethod(sig.String()) {
		if allConcrete(req.Args) {
			if fn, ok := resolveSafeCall(d.cache, sig.String()); ok {
				if result, ok := invokeSafe(fn, req.Args, sig.ReturnType); ok {
					return assignResult(ctx, req, result, value.NONE)
				}
			}
		}
		return assignUnknownResult(ctx, req, value.STRONG)
	}

	return assignUnknownResult(ctx, req, value.STRONG)
}

func allConcrete(args []value.HeapItem) bool {
	for _, a := range args {
		if !a.IsConcrete() {
			return false
		}
	}
	return true
}

func assignUnknownResult(ctx state.ExecutionContext, req opcode.CallRequest, level value.Level) (state.ExecutionContext, opcode.Result, error) {
	return assignResult(ctx, req, value.NewUnknown(req.Insn.Target.ReturnType), level)
}

func assignResult(ctx state.ExecutionContext, req opcode.CallRequest, outcome value.HeapItem, level value.Level) (state.ExecutionContext, opcode.Result, error) {
	if req.Insn.HasResult {
		ctx.Method = ctx.Method.Assign(req.Insn.MoveDest, outcome)
	}
	return ctx, opcode.Result{Level: level, Next: req.Insn.Successors()}, nil
}

// resolveLocalMethod finds sig's Method within the class it targets.
func resolveLocalMethod(cm dex.ClassManager, sig dex.MethodSignature) (*dex.Method, bool) {
	class, ok := cm.Class(sig.ClassName)
	if !ok {
		return nil, false
	}
	for _, m := range class.AllMethods() {
		if m.Signature.Name == sig.Name && len(m.Signature.ParamTypes) == len(sig.ParamTypes) {
			match := true
			for i, p := range m.Signature.ParamTypes {
				if p != sig.ParamTypes[i] {
					match = false
					break
				}
			}
			if match {
				return m, true
			}
		}
	}
	return nil, false
}

// seedParameters assigns args into a freshly Child()-derived context's
// parameter registers, starting at the callee's ParamRegStart.
func seedParameters(ctx state.ExecutionContext, method *dex.Method, args []value.HeapItem) state.ExecutionContext {
	for i, a := range args {
		ctx.Method = ctx.Method.Assign(method.ParamRegStart+i, a)
	}
	return ctx
}
