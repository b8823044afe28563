// Package vm implements the Frame & Operand Stack and Step Executor
// components (spec §4, components table) — the heart of the execution
// core.
//
// Frame generalizes the teacher's flat VM-owns-everything model (a
// single stack + locals array shared by the whole program, pkg/vm/vm.go
// VM struct) into per-call activation records with their own operand
// stack and local bindings, the way spec §3 requires. The teacher's
// closest analogue to a "frame" is its StackFrame (pkg/vm/errors.go),
// but that exists only for diagnostics — it doesn't carry execution
// state. Here the Frame *is* the execution state.
package vm

import (
	"github.com/wollok-vm/core/pkg/instruction"
	"github.com/wollok-vm/core/pkg/runtime"
)

// Frame is one activation record (spec §3).
type Frame struct {
	Instructions    instruction.List
	NextInstruction int
	Locals          map[string]runtime.ID
	OperandStack    []runtime.ID
	Resume          map[instruction.InterruptionKind]bool
}

// NewFrame creates a frame ready to execute instructions from the
// beginning, with no locals bound and resuming nothing.
func NewFrame(instructions instruction.List) *Frame {
	return &Frame{
		Instructions: instructions,
		Locals:       make(map[string]runtime.ID),
		Resume:       make(map[instruction.InterruptionKind]bool),
	}
}

// WithLocals is NewFrame plus a pre-populated locals map, used for
// CALL/INIT parameter binding and messageNotUnderstood's
// {self, name, args} locals (spec §4.3, §4.4).
func WithLocals(instructions instruction.List, locals map[string]runtime.ID) *Frame {
	f := NewFrame(instructions)
	if locals != nil {
		f.Locals = locals
	}
	return f
}

func (f *Frame) push(id runtime.ID) {
	f.OperandStack = append(f.OperandStack, id)
}

// pop removes and returns the top of the operand stack, failing with a
// host-level error if the stack is empty (spec §7).
func (f *Frame) pop() (runtime.ID, error) {
	if len(f.OperandStack) == 0 {
		return 0, &HostFailure{Reason: "pop from empty operand stack"}
	}
	top := f.OperandStack[len(f.OperandStack)-1]
	f.OperandStack = f.OperandStack[:len(f.OperandStack)-1]
	return top, nil
}

// exhausted reports whether the frame has no more instructions to run.
func (f *Frame) exhausted() bool {
	return f.NextInstruction >= len(f.Instructions)
}

// current returns the instruction at NextInstruction. Callers must
// check exhausted() first.
func (f *Frame) current() instruction.Instruction {
	return f.Instructions[f.NextInstruction]
}

// clone duplicates a frame's mutable state; the instruction list is
// shared by reference since it is immutable (spec §5).
func (f *Frame) clone() *Frame {
	clone := &Frame{
		Instructions:    f.Instructions,
		NextInstruction: f.NextInstruction,
		Locals:          make(map[string]runtime.ID, len(f.Locals)),
		OperandStack:    append([]runtime.ID(nil), f.OperandStack...),
		Resume:          make(map[instruction.InterruptionKind]bool, len(f.Resume)),
	}
	for k, v := range f.Locals {
		clone.Locals[k] = v
	}
	for k, v := range f.Resume {
		clone.Resume[k] = v
	}
	return clone
}
