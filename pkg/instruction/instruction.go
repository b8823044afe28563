// Package instruction defines the linear stack-machine instruction set
// the compiler emits and the VM's step executor interprets (spec §4.1).
//
// The teacher (pkg/bytecode) represents an instruction as a single
// Opcode byte plus one packed int operand, since its operands are
// always "an index into a constant pool". This instruction set's
// operands are heterogeneous — names, module names, nested instruction
// lists, interruption kinds — so each Kind carries its own typed
// fields on the same Instruction struct instead of packing everything
// through a constant pool. Kind stays a small byte-sized tag, exhaustively
// switched on, the same way the teacher exhaustively switches on Opcode.
package instruction

import "github.com/wollok-vm/core/pkg/runtime"

// Kind tags which instruction variant an Instruction holds.
type Kind byte

const (
	LOAD Kind = iota
	STORE
	PUSH
	GET
	SET
	SWAP
	INSTANTIATE
	INHERITS
	CONDITIONAL_JUMP
	CALL
	INIT
	IF_THEN_ELSE
	TRY_CATCH_ALWAYS
	INTERRUPT
	RESUME_INTERRUPTION
)

func (k Kind) String() string {
	switch k {
	case LOAD:
		return "LOAD"
	case STORE:
		return "STORE"
	case PUSH:
		return "PUSH"
	case GET:
		return "GET"
	case SET:
		return "SET"
	case SWAP:
		return "SWAP"
	case INSTANTIATE:
		return "INSTANTIATE"
	case INHERITS:
		return "INHERITS"
	case CONDITIONAL_JUMP:
		return "CONDITIONAL_JUMP"
	case CALL:
		return "CALL"
	case INIT:
		return "INIT"
	case IF_THEN_ELSE:
		return "IF_THEN_ELSE"
	case TRY_CATCH_ALWAYS:
		return "TRY_CATCH_ALWAYS"
	case INTERRUPT:
		return "INTERRUPT"
	case RESUME_INTERRUPTION:
		return "RESUME_INTERRUPTION"
	default:
		return "UNKNOWN"
	}
}

// InterruptionKind is one of the three unified interruption kinds
// (spec §3, §4.6).
type InterruptionKind byte

const (
	Return InterruptionKind = iota
	Exception
	Result
)

func (k InterruptionKind) String() string {
	switch k {
	case Return:
		return "return"
	case Exception:
		return "exception"
	case Result:
		return "result"
	default:
		return "unknown"
	}
}

// List is an immutable, shareable instruction sequence. It may be
// shared by reference across frames and across cloned evaluations
// (spec §9) because it is never mutated after compilation.
type List []Instruction

// Instruction is a single tagged-union stack-machine instruction.
// Only the fields relevant to Kind are populated; the rest are zero.
type Instruction struct {
	Kind Kind

	// LOAD, STORE, GET, SET
	Name   string
	Lookup bool // STORE only

	// PUSH
	ID runtime.ID

	// INSTANTIATE, INHERITS
	Module     string
	InnerValue interface{} // INSTANTIATE only; nil for ordinary objects

	// CONDITIONAL_JUMP
	Offset int

	// CALL, INIT
	Message     string // CALL only
	Arity       int
	LookupStart string // fully qualified name; "" means "none" (CALL) — required for INIT
	InitFields  bool   // INIT only

	// IF_THEN_ELSE
	Then List
	Else List

	// TRY_CATCH_ALWAYS
	Body   List
	Catch  List
	Always List

	// INTERRUPT
	InterruptionKind InterruptionKind
}

// Load builds a LOAD name instruction.
func Load(name string) Instruction { return Instruction{Kind: LOAD, Name: name} }

// Store builds a STORE name, lookup instruction.
func Store(name string, lookup bool) Instruction {
	return Instruction{Kind: STORE, Name: name, Lookup: lookup}
}

// Push builds a PUSH id instruction.
func Push(id runtime.ID) Instruction { return Instruction{Kind: PUSH, ID: id} }

// Get builds a GET name instruction.
func Get(name string) Instruction { return Instruction{Kind: GET, Name: name} }

// Set builds a SET name instruction.
func Set(name string) Instruction { return Instruction{Kind: SET, Name: name} }

// Swap builds a SWAP instruction.
func Swap() Instruction { return Instruction{Kind: SWAP} }

// Instantiate builds an INSTANTIATE module[, innerValue] instruction.
func Instantiate(module string, innerValue interface{}) Instruction {
	return Instruction{Kind: INSTANTIATE, Module: module, InnerValue: innerValue}
}

// InheritsOf builds an INHERITS module instruction.
func InheritsOf(module string) Instruction { return Instruction{Kind: INHERITS, Module: module} }

// ConditionalJump builds a CONDITIONAL_JUMP n instruction.
func ConditionalJump(n int) Instruction { return Instruction{Kind: CONDITIONAL_JUMP, Offset: n} }

// Call builds a CALL message, arity[, lookupStart] instruction.
func Call(message string, arity int, lookupStart string) Instruction {
	return Instruction{Kind: CALL, Message: message, Arity: arity, LookupStart: lookupStart}
}

// Init builds an INIT arity, lookupStart, initFields instruction.
func Init(arity int, lookupStart string, initFields bool) Instruction {
	return Instruction{Kind: INIT, Arity: arity, LookupStart: lookupStart, InitFields: initFields}
}

// IfThenElse builds an IF_THEN_ELSE then, else instruction.
func IfThenElse(then, els List) Instruction {
	return Instruction{Kind: IF_THEN_ELSE, Then: then, Else: els}
}

// TryCatchAlways builds a TRY_CATCH_ALWAYS body, catch, always instruction.
func TryCatchAlways(body, catch, always List) Instruction {
	return Instruction{Kind: TRY_CATCH_ALWAYS, Body: body, Catch: catch, Always: always}
}

// Interrupt builds an INTERRUPT kind instruction.
func Interrupt(kind InterruptionKind) Instruction {
	return Instruction{Kind: INTERRUPT, InterruptionKind: kind}
}

// ResumeInterruption builds a RESUME_INTERRUPTION instruction.
func ResumeInterruption() Instruction { return Instruction{Kind: RESUME_INTERRUPTION} }
