package instruction

import (
	"testing"

	"github.com/wollok-vm/core/pkg/runtime"
)

func TestConstructorsSetKind(t *testing.T) {
	cases := []struct {
		name string
		want Kind
		got  Instruction
	}{
		{"Load", LOAD, Load("x")},
		{"Store", STORE, Store("x", true)},
		{"Push", PUSH, Push(runtime.NullID)},
		{"Get", GET, Get("field")},
		{"Set", SET, Set("field")},
		{"Swap", SWAP, Swap()},
		{"Instantiate", INSTANTIATE, Instantiate(runtime.ModuleNumber, 1.0)},
		{"InheritsOf", INHERITS, InheritsOf(runtime.ModuleObject)},
		{"ConditionalJump", CONDITIONAL_JUMP, ConditionalJump(2)},
		{"Call", CALL, Call("m", 1, "")},
		{"Init", INIT, Init(0, "wollok.lang.Object", true)},
		{"IfThenElse", IF_THEN_ELSE, IfThenElse(nil, nil)},
		{"TryCatchAlways", TRY_CATCH_ALWAYS, TryCatchAlways(nil, nil, nil)},
		{"Interrupt", INTERRUPT, Interrupt(Return)},
		{"ResumeInterruption", RESUME_INTERRUPTION, ResumeInterruption()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.got.Kind != c.want {
				t.Errorf("%s: got kind %v, want %v", c.name, c.got.Kind, c.want)
			}
		})
	}
}

func TestStoreCarriesLookupFlag(t *testing.T) {
	if instr := Store("x", true); !instr.Lookup {
		t.Error("Store(x, true) did not set Lookup")
	}
	if instr := Store("x", false); instr.Lookup {
		t.Error("Store(x, false) unexpectedly set Lookup")
	}
}

func TestKindStringCoversEveryKind(t *testing.T) {
	for k := LOAD; k <= RESUME_INTERRUPTION; k++ {
		if got := k.String(); got == "UNKNOWN" {
			t.Errorf("Kind %d has no String() case", k)
		}
	}
}

func TestInterruptionKindString(t *testing.T) {
	for _, k := range []InterruptionKind{Return, Exception, Result} {
		if got := k.String(); got == "unknown" {
			t.Errorf("InterruptionKind %d has no String() case", k)
		}
	}
}
