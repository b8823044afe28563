// Package driver implements the Driver-exposed API spec §6 describes
// as the boundary between this execution core and a host program: it
// turns a linked environment.Environment into a ready-to-run
// vm.Evaluation, and offers run/runTests entry points on top of it.
//
// Grounded on the teacher's cmd/smog-run main — the piece that owns
// "load a program, build a VM, run it" — generalized here from a
// single-file CLI flow into a reusable package so cmd/wollok-vm can
// stay a thin flag-parsing shell.
package driver

import (
	"fmt"

	"github.com/wollok-vm/core/pkg/ast"
	"github.com/wollok-vm/core/pkg/compiler"
	"github.com/wollok-vm/core/pkg/environment"
	"github.com/wollok-vm/core/pkg/instruction"
	"github.com/wollok-vm/core/pkg/natives"
	"github.com/wollok-vm/core/pkg/runtime"
	"github.com/wollok-vm/core/pkg/vm"
)

// BuildEvaluationFor bootstraps an Evaluation for env: it pre-allocates
// a RuntimeObject for every singleton (environment.Singletons) and
// binds each one's id to its fully qualified name in a permanent
// bottom-of-stack frame, then runs each singleton's zero-arity
// constructor to populate its fields.
//
// The bottom frame is never popped by the step loop — it sits below
// every frame Run/RunFrame ever pushes, so LOAD(fqn) can find a
// singleton's id from anywhere in the program for the Evaluation's
// entire lifetime (SPEC_FULL.md, Open Question decision 3). reg may be
// nil, in which case natives.Default() is used.
func BuildEvaluationFor(env *environment.Environment, reg vm.NativesRegistry) (*vm.Evaluation, error) {
	if reg == nil {
		reg = natives.Default()
	}
	eval := vm.NewEvaluation(env, reg, compiler.New())

	globals := make(map[string]runtime.ID)
	singletons := env.Singletons()
	for _, class := range singletons {
		fqn := class.FullyQualifiedName()
		id := eval.Heap.AddInstance(fqn, nil)
		globals[fqn] = id
	}
	eval.PushFrame(vm.WithLocals(nil, globals))

	for _, class := range singletons {
		fqn := class.FullyQualifiedName()
		instrs := instruction.List{instruction.Push(globals[fqn]), instruction.Init(0, fqn, true)}
		if _, err := vm.RunFrame(eval, instrs, nil); err != nil {
			return nil, fmt.Errorf("driver: initializing singleton %s: %w", fqn, err)
		}
	}
	return eval, nil
}

// Run executes body against eval and resolves the result to its
// RuntimeObject (spec §6, "run"). It is the thin wrapper a host
// program calls once buildEvaluationFor has produced an Evaluation.
func Run(eval *vm.Evaluation, body *ast.Body) (*runtime.RuntimeObject, error) {
	id, err := vm.Run(eval, body)
	if err != nil {
		return nil, err
	}
	return eval.Heap.GetInstance(id)
}

// Test names one runnable unit (spec §6, "runTests"): since this core
// has no parser, a host program builds the *ast.Body by hand or via an
// external linker and passes it in directly.
type Test struct {
	Name string
	Body *ast.Body
}

// TestResult reports one Test's outcome.
type TestResult struct {
	Name   string
	Passed bool
	Err    error
}

// RunTests runs each test against its own clone of eval (spec §5,
// "cloning for test isolation"), so that one test's mutations to the
// heap or environment-visible state never leak into another's.
func RunTests(eval *vm.Evaluation, tests []Test) []TestResult {
	results := make([]TestResult, 0, len(tests))
	for _, t := range tests {
		isolated := eval.Clone()
		_, err := vm.Run(isolated, t.Body)
		results = append(results, TestResult{
			Name:   t.Name,
			Passed: err == nil,
			Err:    err,
		})
	}
	return results
}
