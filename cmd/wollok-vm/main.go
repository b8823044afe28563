package main

import (
	"fmt"
	"os"

	"github.com/wollok-vm/core/pkg/ast"
	"github.com/wollok-vm/core/pkg/driver"
	"github.com/wollok-vm/core/pkg/environment"
	"github.com/wollok-vm/core/pkg/examples"
	"github.com/wollok-vm/core/pkg/vm"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		fmt.Printf("wollok-vm version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	case "run":
		if len(os.Args) < 3 {
			fmt.Println("Error: no example specified")
			printUsage()
			os.Exit(1)
		}
		runExample(os.Args[2])
	case "examples":
		printExamples()
	default:
		fmt.Printf("Error: unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("wollok-vm - execution core for a small class-based language")
	fmt.Println("\nUsage:")
	fmt.Println("  wollok-vm run <example>     Run a built-in example program")
	fmt.Println("  wollok-vm examples          List built-in example programs")
	fmt.Println("  wollok-vm version           Show version")
	fmt.Println("  wollok-vm help              Show this help")
	fmt.Println("\nThis core has no parser of its own (out of scope); it only runs")
	fmt.Println("already-linked programs, so \"run\" dispatches to a small set of")
	fmt.Println("programs built directly against pkg/ast for demonstration.")
}

func printExamples() {
	fmt.Println("counter   field get/set and arithmetic through a singleton")
	fmt.Println("division  try/catch around a guarded division")
	fmt.Println("foreach   List#forEach invoking a closure via Evaluation.Send")
}

// runExample builds and runs one of the demonstration programs,
// printing its result to stdout; a runtime error goes to stderr with a
// non-zero exit code, the way the teacher's runFile reports one.
func runExample(name string) {
	switch name {
	case "counter":
		env, program := examples.Counter()
		runAndPrint(env, program)
	case "division":
		env, program := examples.Division(10, 0)
		runAndPrint(env, program)
	case "foreach":
		env, program := examples.ClosureForEach()
		runAndPrint(env, program)
	default:
		fmt.Printf("Error: unknown example %q\n", name)
		printExamples()
		os.Exit(1)
	}
}

func runAndPrint(env *environment.Environment, program *ast.Body) {
	eval, err := driver.BuildEvaluationFor(env, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bootstrap error: %v\n", err)
		os.Exit(1)
	}

	result, err := driver.Run(eval, program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		if hf, ok := err.(*vm.HostFailure); ok {
			fmt.Fprint(os.Stderr, vm.NewInspector().Format(hf.Snapshot))
		}
		os.Exit(1)
	}

	fmt.Printf("=> object %d (%s), value %#v\n", result.ID, result.Module, result.InnerValue)
}
