package driver_test

import (
	"testing"

	"github.com/wollok-vm/core/pkg/ast"
	"github.com/wollok-vm/core/pkg/driver"
	"github.com/wollok-vm/core/pkg/examples"
)

func TestCounterAccumulatesAcrossSends(t *testing.T) {
	env, body := examples.Counter()
	eval, err := driver.BuildEvaluationFor(env, nil)
	if err != nil {
		t.Fatalf("BuildEvaluationFor: %v", err)
	}
	result, err := driver.Run(eval, body)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InnerValue != 7.0 {
		t.Errorf("counter total = %v, want 7", result.InnerValue)
	}
}

func TestDivisionByNonZeroReturnsTheQuotient(t *testing.T) {
	env, body := examples.Division(10, 2)
	eval, err := driver.BuildEvaluationFor(env, nil)
	if err != nil {
		t.Fatalf("BuildEvaluationFor: %v", err)
	}
	result, err := driver.Run(eval, body)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InnerValue != 5.0 {
		t.Errorf("10 / 2 = %v, want 5", result.InnerValue)
	}
}

func TestDivisionByZeroIsCaughtAndReplaced(t *testing.T) {
	env, body := examples.Division(10, 0)
	eval, err := driver.BuildEvaluationFor(env, nil)
	if err != nil {
		t.Fatalf("BuildEvaluationFor: %v", err)
	}
	result, err := driver.Run(eval, body)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InnerValue != -1.0 {
		t.Errorf("division by zero, caught, = %v, want -1", result.InnerValue)
	}
}

func TestClosureForEachSumsIntoTheAccumulatorField(t *testing.T) {
	env, body := examples.ClosureForEach()
	eval, err := driver.BuildEvaluationFor(env, nil)
	if err != nil {
		t.Fatalf("BuildEvaluationFor: %v", err)
	}
	if _, err := driver.Run(eval, body); err != nil {
		t.Fatalf("Run: %v", err)
	}

	totalsID, ok := eval.FrameStack[0].Locals["main.totals"]
	if !ok {
		t.Fatal("bootstrap frame has no binding for main.totals")
	}
	totals, err := eval.Heap.GetInstance(totalsID)
	if err != nil {
		t.Fatalf("GetInstance(totals): %v", err)
	}
	sumID, ok := totals.Fields["sum"]
	if !ok {
		t.Fatal("totals singleton has no sum field")
	}
	sum, err := eval.Heap.GetInstance(sumID)
	if err != nil {
		t.Fatalf("GetInstance(sum): %v", err)
	}
	if sum.InnerValue != 6.0 {
		t.Errorf("sum = %v, want 6 (1 + 2 + 3)", sum.InnerValue)
	}
}

func TestRunTestsIsolatesEachTestsMutations(t *testing.T) {
	env, _ := examples.Counter()
	eval, err := driver.BuildEvaluationFor(env, nil)
	if err != nil {
		t.Fatalf("BuildEvaluationFor: %v", err)
	}

	singletonRef := &ast.Reference{Name: "main.counter", Kind: ast.RefModule, Target: env.MustResolve("main.counter")}
	addHundred := &ast.Body{Sentences: []ast.Sentence{
		&ast.Send{Receiver: singletonRef, Message: "add", Args: []ast.Sentence{&ast.Literal{Kind: ast.LiteralNumber, Number: 100}}},
		&ast.Return{Value: &ast.Send{Receiver: singletonRef, Message: "total"}},
	}}
	addThousand := &ast.Body{Sentences: []ast.Sentence{
		&ast.Send{Receiver: singletonRef, Message: "add", Args: []ast.Sentence{&ast.Literal{Kind: ast.LiteralNumber, Number: 1000}}},
		&ast.Return{Value: &ast.Send{Receiver: singletonRef, Message: "total"}},
	}}

	results := driver.RunTests(eval, []driver.Test{
		{Name: "addHundred", Body: addHundred},
		{Name: "addThousand", Body: addThousand},
	})

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("test %s failed: %v", r.Name, r.Err)
		}
	}

	baseline, err := driver.Run(eval, &ast.Body{Sentences: []ast.Sentence{
		&ast.Return{Value: &ast.Send{Receiver: singletonRef, Message: "total"}},
	}})
	if err != nil {
		t.Fatalf("Run (baseline): %v", err)
	}
	if baseline.InnerValue != float64(0) {
		t.Errorf("shared eval's counter total = %v after RunTests, want 0 (each test should mutate only its own clone)", baseline.InnerValue)
	}
}
