package vm

import (
	"github.com/wollok-vm/core/pkg/compiler"
	"github.com/wollok-vm/core/pkg/environment"
	"github.com/wollok-vm/core/pkg/instruction"
	"github.com/wollok-vm/core/pkg/runtime"
)

// Evaluation is the whole VM state (spec §3): a shared, read-only
// Environment plus an exclusively owned heap and frame stack.
//
// Compiler is carried on the Evaluation (rather than threaded as a
// parameter through every step/dispatch call) so that a native
// function — which only receives the Evaluation, spec §6 — can still
// drive a nested call (e.g. invoking a closure body) through the same
// compile-memoization cache as the rest of the run.
type Evaluation struct {
	Environment *environment.Environment
	FrameStack  []*Frame
	Heap        *runtime.Heap
	Natives     NativesRegistry
	Compiler    *compiler.Compiler
}

// NewEvaluation creates an evaluation with an empty heap (well-known
// ids already seeded, spec §3) and no frames. Callers push an initial
// frame before stepping.
func NewEvaluation(env *environment.Environment, natives NativesRegistry, comp *compiler.Compiler) *Evaluation {
	return &Evaluation{
		Environment: env,
		Heap:        runtime.NewHeap(),
		Natives:     natives,
		Compiler:    comp,
	}
}

// Top returns the innermost (top) frame, or nil if the frame stack is
// empty.
func (e *Evaluation) Top() *Frame {
	if len(e.FrameStack) == 0 {
		return nil
	}
	return e.FrameStack[len(e.FrameStack)-1]
}

// PushFrame pushes a new top frame (spec §3: pushed by CALL, INIT,
// IF_THEN_ELSE, TRY_CATCH_ALWAYS, and the driver).
func (e *Evaluation) PushFrame(f *Frame) {
	e.FrameStack = append(e.FrameStack, f)
}

// PopFrame removes and returns the top frame.
func (e *Evaluation) PopFrame() *Frame {
	top := e.Top()
	if top != nil {
		e.FrameStack = e.FrameStack[:len(e.FrameStack)-1]
	}
	return top
}

// Clone deep-clones the evaluation for test isolation (spec §5): every
// RuntimeObject and every frame's locals/operand-stack/resume-set are
// duplicated; the shared, immutable Environment and instruction lists
// are referenced, not copied.
func (e *Evaluation) Clone() *Evaluation {
	clone := &Evaluation{
		Environment: e.Environment,
		Heap:        e.Heap.Clone(),
		Natives:     e.Natives,
		Compiler:    e.Compiler,
		FrameStack:  make([]*Frame, len(e.FrameStack)),
	}
	for i, f := range e.FrameStack {
		clone.FrameStack[i] = f.clone()
	}
	return clone
}

// Snapshot captures a diagnostic view of the evaluation (excluding the
// environment, spec §7) for inclusion in host-level failure reports.
type Snapshot struct {
	FrameCount int
	TopFrame   *FrameSnapshot
	HeapSize   int
}

// FrameSnapshot is a diagnostic view of one frame.
type FrameSnapshot struct {
	NextInstruction int
	OperandStack    []runtime.ID
	Locals          map[string]runtime.ID
	Resume          []instruction.InterruptionKind
}

func (e *Evaluation) snapshot() Snapshot {
	s := Snapshot{FrameCount: len(e.FrameStack), HeapSize: len(e.Heap.All())}
	if top := e.Top(); top != nil {
		fs := &FrameSnapshot{
			NextInstruction: top.NextInstruction,
			OperandStack:    append([]runtime.ID(nil), top.OperandStack...),
			Locals:          make(map[string]runtime.ID, len(top.Locals)),
		}
		for k, v := range top.Locals {
			fs.Locals[k] = v
		}
		for k := range top.Resume {
			fs.Resume = append(fs.Resume, k)
		}
		s.TopFrame = fs
	}
	return s
}
