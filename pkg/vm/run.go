// Package vm's run.go drives the step loop to completion (spec §2,
// Evaluation Driver's "drives step until the top frame is exhausted").
// pkg/driver builds on top of Run for bootstrap and test-cloning; this
// file only knows how to execute one already-assembled body to a
// value.
package vm

import (
	"github.com/wollok-vm/core/pkg/ast"
	"github.com/wollok-vm/core/pkg/instruction"
	"github.com/wollok-vm/core/pkg/runtime"
)

// Run compiles and executes body against eval, driving step until the
// result is produced, and returns the resulting object's id.
//
// A root frame that resumes on "result" and "return" is pushed first
// and never itself stepped; the body frame above it mirrors
// IF_THEN_ELSE's own wrapping ([PUSH void, body…, INTERRUPT result]) so
// a body that falls through without an explicit value still produces
// one. When the body frame's INTERRUPT(result), or a top-level `return`,
// unwinds into the root frame, only the root frame remains — the loop
// exits and its operand stack top is the answer.
func Run(eval *Evaluation, body *ast.Body) (runtime.ID, error) {
	bodyInstrs := instruction.List{instruction.Push(runtime.VoidID)}
	bodyInstrs = append(bodyInstrs, eval.Compiler.CompileBody(eval.Environment, body)...)
	bodyInstrs = append(bodyInstrs, instruction.Interrupt(instruction.Result))
	return runRooted(eval, bodyInstrs, nil)
}

// RunFrame executes a raw instruction list to completion within eval,
// used by natives that need to invoke a compiled body synchronously —
// a closure's apply/call (SPEC_FULL.md, "Supplemented features") —
// without returning control to the enclosing step loop (Open Question
// decision 4: natives may not suspend). It follows the same
// root-frame-plus-body-frame shape as Run, but takes already-compiled
// instructions and a pre-populated locals map instead of an ast.Body.
func RunFrame(eval *Evaluation, body instruction.List, locals map[string]runtime.ID) (runtime.ID, error) {
	bodyInstrs := instruction.List{instruction.Push(runtime.VoidID)}
	bodyInstrs = append(bodyInstrs, body...)
	bodyInstrs = append(bodyInstrs, instruction.Interrupt(instruction.Result))
	return runRooted(eval, bodyInstrs, locals)
}

// Send performs a synchronous message send from Go code — the
// mechanism a native uses to call back into user code, e.g. a
// closure's apply/call (SPEC_FULL.md, "Supplemented features") invoked
// by a higher-order native like List#forEach. It reuses CALL's own
// dispatch logic by building a one-instruction CALL program rather
// than duplicating method-lookup/binding here.
func (e *Evaluation) Send(receiver runtime.ID, message string, args []runtime.ID) (runtime.ID, error) {
	instrs := instruction.List{instruction.Push(receiver)}
	for _, a := range args {
		instrs = append(instrs, instruction.Push(a))
	}
	instrs = append(instrs, instruction.Call(message, len(args), ""))
	return RunFrame(e, instrs, nil)
}

// runRooted pushes a root frame (resuming on "result" and "return") plus a
// body frame carrying bodyInstrs and locals, then drives step until
// only the root frame added here remains — safe to call reentrantly
// (e.g. from within a native mid-step), since it tracks the frame
// stack depth at entry rather than assuming it starts empty.
func runRooted(eval *Evaluation, bodyInstrs instruction.List, locals map[string]runtime.ID) (runtime.ID, error) {
	base := len(eval.FrameStack)

	root := NewFrame(nil)
	root.Resume[instruction.Result] = true
	root.Resume[instruction.Return] = true
	eval.PushFrame(root)
	eval.PushFrame(WithLocals(bodyInstrs, locals))

	for len(eval.FrameStack) > base+1 {
		if err := step(eval); err != nil {
			return 0, err
		}
	}

	result, err := root.pop()
	if err != nil {
		return 0, (&HostFailure{Reason: err.Error()}).withSnapshot(eval)
	}
	eval.PopFrame()
	return result, nil
}
