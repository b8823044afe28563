// Package vm - error handling with diagnostic snapshots.
package vm

import (
	"fmt"

	"github.com/wollok-vm/core/pkg/runtime"
)

// HostFailure is a host-level failure (spec §7): a violated interpreter
// invariant rather than a language-level exception. Popping an empty
// stack, an undefined instance or field, an unhandled interruption, a
// missing constructor or local, exhausted instructions, a bad jump
// target, and an un-inferable RESUME_INTERRUPTION all surface as a
// HostFailure. It carries a diagnostic Snapshot of the evaluation
// (heap size + top frame, excluding the environment) the way the
// teacher's RuntimeError carries a StackTrace.
type HostFailure struct {
	Reason   string
	Snapshot Snapshot
}

// Error implements the error interface.
func (e *HostFailure) Error() string {
	msg := fmt.Sprintf("host failure: %s", e.Reason)
	if e.Snapshot.TopFrame != nil {
		msg += fmt.Sprintf(" (frames=%d, heap=%d, ip=%d, operands=%d)",
			e.Snapshot.FrameCount, e.Snapshot.HeapSize,
			e.Snapshot.TopFrame.NextInstruction, len(e.Snapshot.TopFrame.OperandStack))
	}
	return msg
}

// withSnapshot fills in e's diagnostic snapshot from a live evaluation.
// Called by the step executor right before a HostFailure is returned,
// since pop() and the other low-level helpers that originate one don't
// have an *Evaluation in scope.
func (e *HostFailure) withSnapshot(eval *Evaluation) *HostFailure {
	e.Snapshot = eval.snapshot()
	return e
}

// LanguageException wraps an in-flight "exception" interruption value
// that reached the outermost frame unhandled (spec §4.6). It is the
// mechanism by which an uncaught Wollok-level exception is propagated
// up through Go's call stack to run/runTests, mirrored on the way the
// teacher's NonLocalReturn is propagated by value through the error
// return channel rather than by panic/recover.
type LanguageException struct {
	// Value is the heap id of the exception object that was thrown.
	Value runtime.ID
}

// Error implements the error interface. It cannot describe the
// exception's message without access to the heap, so callers that want
// a human-readable description should resolve Value themselves via
// Evaluation.Heap.GetInstance.
func (e *LanguageException) Error() string {
	return fmt.Sprintf("uncaught exception: object %d", e.Value)
}
