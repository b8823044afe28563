// Package natives is the default implementation of the fully qualified
// native-method surface the VM's natives registry resolves against
// (spec §6, "registry of native implementations"). It is explicitly
// named as an external collaborator in spec §1 — out of scope for the
// core itself — and exists here only because a working heap needs
// *some* arithmetic, comparison, and default-object behavior to be
// exercisable end to end (SPEC_FULL.md, "Supplemented features").
//
// Grounded on MongooseMoo-barn's builtins.Registry
// (builtins/registry.go): a flat name→function table built once at
// startup by a long sequence of Register calls, rather than a type
// switch over the receiver. vm.Registry generalizes the key from a
// bare name to (module, message, arity) since this core's natives are
// resolved per declaring class, not globally.
package natives

import (
	"fmt"
	"math"

	"github.com/wollok-vm/core/pkg/runtime"
	"github.com/wollok-vm/core/pkg/vm"
)

// Default builds the natives registry this module ships: arithmetic
// and comparison on wollok.lang.Number, concatenation and comparison
// on wollok.lang.String, boolean connectives, a minimal List surface,
// and the toString/== fallback every wollok.lang.Object gets.
func Default() *vm.Registry {
	r := vm.NewRegistry()
	registerNumber(r)
	registerString(r)
	registerBoolean(r)
	registerList(r)
	registerObject(r)
	return r
}

func number(eval *vm.Evaluation, id runtime.ID) (float64, error) {
	obj, err := eval.Heap.GetInstance(id)
	if err != nil {
		return 0, err
	}
	n, ok := obj.InnerValue.(float64)
	if !ok {
		return 0, fmt.Errorf("object %d is not a Number", id)
	}
	return n, nil
}

func str(eval *vm.Evaluation, id runtime.ID) (string, error) {
	obj, err := eval.Heap.GetInstance(id)
	if err != nil {
		return "", err
	}
	s, ok := obj.InnerValue.(string)
	if !ok {
		return "", fmt.Errorf("object %d is not a String", id)
	}
	return s, nil
}

func boolOf(id runtime.ID) runtime.ID {
	if id == runtime.TrueID {
		return runtime.TrueID
	}
	return runtime.FalseID
}

func fromBool(b bool) runtime.ID {
	if b {
		return runtime.TrueID
	}
	return runtime.FalseID
}

func registerNumber(r *vm.Registry) {
	binaryNumber := func(op func(a, b float64) float64) vm.NativeFunc {
		return func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
			a, err := number(eval, self)
			if err != nil {
				return 0, err
			}
			b, err := number(eval, args[0])
			if err != nil {
				return 0, err
			}
			return eval.Heap.AddInstance(runtime.ModuleNumber, op(a, b)), nil
		}
	}
	compareNumber := func(op func(a, b float64) bool) vm.NativeFunc {
		return func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
			a, err := number(eval, self)
			if err != nil {
				return 0, err
			}
			b, err := number(eval, args[0])
			if err != nil {
				return 0, err
			}
			return fromBool(op(a, b)), nil
		}
	}

	r.Register(runtime.ModuleNumber, "+", 1, binaryNumber(func(a, b float64) float64 { return a + b }))
	r.Register(runtime.ModuleNumber, "-", 1, binaryNumber(func(a, b float64) float64 { return a - b }))
	r.Register(runtime.ModuleNumber, "*", 1, binaryNumber(func(a, b float64) float64 { return a * b }))
	r.Register(runtime.ModuleNumber, "/", 1, binaryNumber(func(a, b float64) float64 { return a / b }))
	r.Register(runtime.ModuleNumber, ">", 1, compareNumber(func(a, b float64) bool { return a > b }))
	r.Register(runtime.ModuleNumber, "<", 1, compareNumber(func(a, b float64) bool { return a < b }))
	r.Register(runtime.ModuleNumber, ">=", 1, compareNumber(func(a, b float64) bool { return a >= b }))
	r.Register(runtime.ModuleNumber, "<=", 1, compareNumber(func(a, b float64) bool { return a <= b }))
	r.Register(runtime.ModuleNumber, "==", 1, compareNumber(func(a, b float64) bool { return a == b }))

	r.Register(runtime.ModuleNumber, "-", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		a, err := number(eval, self)
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleNumber, -a), nil
	})
	r.Register(runtime.ModuleNumber, "abs", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		a, err := number(eval, self)
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleNumber, math.Abs(a)), nil
	})
	r.Register(runtime.ModuleNumber, "toString", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		a, err := number(eval, self)
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleString, formatNumber(a)), nil
	})
}

// formatNumber drops a trailing ".0000"-style remainder for whole
// numbers, matching how the language prints integral Numbers.
func formatNumber(n float64) string {
	if n == math.Trunc(n) {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%g", n)
}

func registerString(r *vm.Registry) {
	r.Register(runtime.ModuleString, "+", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		a, err := str(eval, self)
		if err != nil {
			return 0, err
		}
		b, err := str(eval, args[0])
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleString, a+b), nil
	})
	r.Register(runtime.ModuleString, "==", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		a, err := str(eval, self)
		if err != nil {
			return 0, err
		}
		b, err := str(eval, args[0])
		if err != nil {
			return 0, err
		}
		return fromBool(a == b), nil
	})
	r.Register(runtime.ModuleString, "length", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		a, err := str(eval, self)
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleNumber, float64(len(a))), nil
	})
	r.Register(runtime.ModuleString, "toString", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		a, err := str(eval, self)
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleString, a), nil
	})
}

func registerBoolean(r *vm.Registry) {
	r.Register(runtime.ModuleBoolean, "&&", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		return fromBool(boolOf(self) == runtime.TrueID && boolOf(args[0]) == runtime.TrueID), nil
	})
	r.Register(runtime.ModuleBoolean, "||", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		return fromBool(boolOf(self) == runtime.TrueID || boolOf(args[0]) == runtime.TrueID), nil
	})
	r.Register(runtime.ModuleBoolean, "negate", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		return fromBool(boolOf(self) != runtime.TrueID), nil
	})
	r.Register(runtime.ModuleBoolean, "==", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		return fromBool(self == args[0]), nil
	})
	r.Register(runtime.ModuleBoolean, "toString", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		if self == runtime.TrueID {
			return eval.Heap.AddInstance(runtime.ModuleString, "true"), nil
		}
		return eval.Heap.AddInstance(runtime.ModuleString, "false"), nil
	})
}

func registerList(r *vm.Registry) {
	elements := func(eval *vm.Evaluation, id runtime.ID) ([]runtime.ID, error) {
		obj, err := eval.Heap.GetInstance(id)
		if err != nil {
			return nil, err
		}
		list, ok := obj.InnerValue.([]runtime.ID)
		if !ok {
			return nil, fmt.Errorf("object %d is not a List", id)
		}
		return list, nil
	}

	r.Register(runtime.ModuleList, "size", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		list, err := elements(eval, self)
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleNumber, float64(len(list))), nil
	})
	r.Register(runtime.ModuleList, "get", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		list, err := elements(eval, self)
		if err != nil {
			return 0, err
		}
		index, err := number(eval, args[0])
		if err != nil {
			return 0, err
		}
		i := int(index)
		if i < 0 || i >= len(list) {
			return 0, fmt.Errorf("list index %d out of bounds (size %d)", i, len(list))
		}
		return list[i], nil
	})
	r.Register(runtime.ModuleList, "add", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		obj, err := eval.Heap.GetInstance(self)
		if err != nil {
			return 0, err
		}
		list, ok := obj.InnerValue.([]runtime.ID)
		if !ok {
			return 0, fmt.Errorf("object %d is not a List", self)
		}
		obj.InnerValue = append(list, args[0])
		return runtime.VoidID, nil
	})
	// forEach invokes a closure's "apply" once per element, synchronously
	// (Evaluation.Send), mirroring the teacher's Block/value mechanism
	// that makes blocks callable from native code.
	r.Register(runtime.ModuleList, "forEach", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		list, err := elements(eval, self)
		if err != nil {
			return 0, err
		}
		for _, elem := range list {
			if _, err := eval.Send(args[0], "apply", []runtime.ID{elem}); err != nil {
				return 0, err
			}
		}
		return runtime.VoidID, nil
	})
}

func registerObject(r *vm.Registry) {
	r.Register(runtime.ModuleObject, "==", 1, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		return fromBool(self == args[0]), nil
	})
	r.Register(runtime.ModuleObject, "toString", 0, func(eval *vm.Evaluation, self runtime.ID, args []runtime.ID) (runtime.ID, error) {
		obj, err := eval.Heap.GetInstance(self)
		if err != nil {
			return 0, err
		}
		return eval.Heap.AddInstance(runtime.ModuleString, fmt.Sprintf("a %s", obj.Module)), nil
	})
}
