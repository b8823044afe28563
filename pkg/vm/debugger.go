// Package vm - diagnostic snapshot formatting.
//
// Interactive, breakpoint-driven debugging is explicitly out of scope
// for this core (source-level debugging is a listed non-goal); what
// survives from the teacher's interactive Debugger
// (ShowStack/ShowLocals/ShowCallStack) is its formatting style, adapted
// into a non-interactive Inspector that renders the diagnostic
// Snapshot a HostFailure carries.
package vm

import (
	"fmt"
	"strings"
)

// Inspector renders a Snapshot for diagnostics — logs, test failure
// reports, crash output — with no interactive control of its own.
type Inspector struct{}

// NewInspector creates an Inspector.
func NewInspector() *Inspector { return &Inspector{} }

// Format renders a human-readable report of a Snapshot.
func (in *Inspector) Format(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "frames: %d, heap size: %d\n", s.FrameCount, s.HeapSize)
	if s.TopFrame == nil {
		b.WriteString("  (no frames)\n")
		return b.String()
	}
	in.formatFrame(&b, s.TopFrame)
	return b.String()
}

func (in *Inspector) formatFrame(b *strings.Builder, f *FrameSnapshot) {
	fmt.Fprintf(b, "top frame, next instruction: %d\n", f.NextInstruction)

	b.WriteString("operand stack (top to bottom):\n")
	if len(f.OperandStack) == 0 {
		b.WriteString("  (empty)\n")
	} else {
		for i := len(f.OperandStack) - 1; i >= 0; i-- {
			fmt.Fprintf(b, "  [%d] object %d\n", i, f.OperandStack[i])
		}
	}

	b.WriteString("locals:\n")
	if len(f.Locals) == 0 {
		b.WriteString("  (none)\n")
	} else {
		for name, id := range f.Locals {
			fmt.Fprintf(b, "  %s = object %d\n", name, id)
		}
	}

	b.WriteString("resuming: ")
	if len(f.Resume) == 0 {
		b.WriteString("(nothing)\n")
	} else {
		for i, k := range f.Resume {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k.String())
		}
		b.WriteString("\n")
	}
}
