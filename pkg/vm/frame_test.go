package vm

import (
	"testing"

	"github.com/wollok-vm/core/pkg/instruction"
	"github.com/wollok-vm/core/pkg/runtime"
)

func TestFramePushAndPop(t *testing.T) {
	f := NewFrame(nil)
	f.push(runtime.TrueID)
	f.push(runtime.FalseID)

	top, err := f.pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if top != runtime.FalseID {
		t.Errorf("pop() = %d, want FalseID", top)
	}

	next, err := f.pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if next != runtime.TrueID {
		t.Errorf("pop() = %d, want TrueID", next)
	}
}

func TestFramePopOnEmptyStackFails(t *testing.T) {
	f := NewFrame(nil)
	if _, err := f.pop(); err == nil {
		t.Error("expected an error popping an empty operand stack")
	}
}

func TestFrameExhausted(t *testing.T) {
	f := NewFrame(instruction.List{instruction.Push(runtime.NullID)})
	if f.exhausted() {
		t.Error("a fresh frame with one instruction should not be exhausted")
	}
	f.NextInstruction++
	if !f.exhausted() {
		t.Error("a frame whose NextInstruction passed the last instruction should be exhausted")
	}
}

func TestWithLocalsUsesGivenMap(t *testing.T) {
	locals := map[string]runtime.ID{"self": runtime.TrueID}
	f := WithLocals(nil, locals)
	if f.Locals["self"] != runtime.TrueID {
		t.Error("WithLocals did not carry the given locals map")
	}
}

func TestWithLocalsNilFallsBackToEmptyMap(t *testing.T) {
	f := WithLocals(nil, nil)
	if f.Locals == nil {
		t.Error("WithLocals(nil) should still produce a usable locals map")
	}
}

func TestFrameCloneIsIndependent(t *testing.T) {
	original := NewFrame(instruction.List{instruction.Push(runtime.NullID)})
	original.Locals["x"] = runtime.TrueID
	original.push(runtime.TrueID)
	original.Resume[instruction.Return] = true

	clone := original.clone()
	clone.Locals["x"] = runtime.FalseID
	clone.push(runtime.FalseID)
	clone.Resume[instruction.Exception] = true

	if original.Locals["x"] != runtime.TrueID {
		t.Error("mutating the clone's locals leaked back into the original frame")
	}
	if len(original.OperandStack) != 1 {
		t.Error("mutating the clone's operand stack leaked back into the original frame")
	}
	if original.Resume[instruction.Exception] {
		t.Error("mutating the clone's resume set leaked back into the original frame")
	}
	if &original.Instructions[0] != &clone.Instructions[0] {
		t.Error("clone should share the immutable instruction list by reference")
	}
}

func TestMissingResumeKindInfersTheAbsentOne(t *testing.T) {
	f := NewFrame(nil)
	f.Resume[instruction.Return] = true
	f.Resume[instruction.Exception] = true

	got, err := missingResumeKind(f)
	if err != nil {
		t.Fatalf("missingResumeKind: %v", err)
	}
	if got != instruction.Result {
		t.Errorf("missingResumeKind = %v, want Result", got)
	}
}

func TestMissingResumeKindFailsWhenNotExactlyTwoSet(t *testing.T) {
	f := NewFrame(nil)
	f.Resume[instruction.Return] = true

	if _, err := missingResumeKind(f); err == nil {
		t.Error("expected an error when the resume set doesn't have exactly two kinds")
	}

	f.Resume[instruction.Exception] = true
	f.Resume[instruction.Result] = true
	if _, err := missingResumeKind(f); err == nil {
		t.Error("expected an error when all three resume kinds are set")
	}
}
