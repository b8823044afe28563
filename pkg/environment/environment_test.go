package environment

import (
	"testing"

	"github.com/wollok-vm/core/pkg/ast"
)

func TestHierarchyLinearClasses(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	animal := &ast.Class{Name: "Animal", Package: "main", Superclass: object}
	bird := &ast.Class{Name: "Bird", Package: "main", Superclass: animal}

	env := New(&ast.Program{Classes: []*ast.Class{object, animal, bird}})

	got := env.Hierarchy(bird)
	want := []*ast.Class{bird, animal, object}
	if len(got) != len(want) {
		t.Fatalf("Hierarchy(bird) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Hierarchy(bird)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHierarchyWithMixinsPutsMixinsBeforeSuperclass(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	flyable := &ast.Class{Name: "Flyable", Package: "main", Superclass: object}
	animal := &ast.Class{Name: "Animal", Package: "main", Superclass: object}
	bird := &ast.Class{Name: "Bird", Package: "main", Superclass: animal, Mixins: []*ast.Class{flyable}}

	env := New(&ast.Program{Classes: []*ast.Class{object, flyable, animal, bird}})

	got := env.Hierarchy(bird)
	want := []*ast.Class{bird, flyable, animal, object}
	if len(got) != len(want) {
		t.Fatalf("Hierarchy(bird) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Hierarchy(bird)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInheritsIsReflexive(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	env := New(&ast.Program{Classes: []*ast.Class{object}})
	if !env.Inherits(object, object) {
		t.Error("a class should inherit from itself")
	}
}

func TestMethodLookupWalksToSuperclass(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	animal := &ast.Class{Name: "Animal", Package: "main", Superclass: object}
	speak := &ast.Method{Name: "speak", Owner: animal}
	animal.Methods = []*ast.Method{speak}
	bird := &ast.Class{Name: "Bird", Package: "main", Superclass: animal}

	env := New(&ast.Program{Classes: []*ast.Class{object, animal, bird}})

	got, ok := env.MethodLookup("speak", 0, bird)
	if !ok || got != speak {
		t.Errorf("MethodLookup(speak, 0, bird) = (%v, %v), want (%v, true)", got, ok, speak)
	}
	if _, ok := env.MethodLookup("missing", 0, bird); ok {
		t.Error("MethodLookup found a method that was never declared")
	}
}

func TestMethodLookupVarargsAcceptsAnyArityAtOrAboveFixedParams(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	class := &ast.Class{Name: "Logger", Package: "main", Superclass: object}
	method := &ast.Method{
		Name:   "log",
		Owner:  class,
		Params: []*ast.Parameter{{Name: "first"}, {Name: "rest", Varargs: true}},
	}
	class.Methods = []*ast.Method{method}
	env := New(&ast.Program{Classes: []*ast.Class{object, class}})

	for _, arity := range []int{1, 2, 5} {
		if _, ok := env.MethodLookup("log", arity, class); !ok {
			t.Errorf("MethodLookup(log, %d, class) failed, want a varargs match", arity)
		}
	}
	if _, ok := env.MethodLookup("log", 0, class); ok {
		t.Error("MethodLookup(log, 0, class) matched below the varargs method's minimum arity")
	}
}

func TestMethodLookupFromStartsAboveTheGivenClass(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	base := &ast.Class{Name: "Base", Package: "main", Superclass: object}
	baseGreet := &ast.Method{Name: "greet", Owner: base}
	base.Methods = []*ast.Method{baseGreet}

	mid := &ast.Class{Name: "Mid", Package: "main", Superclass: base}
	midGreet := &ast.Method{Name: "greet", Owner: mid}
	mid.Methods = []*ast.Method{midGreet}

	leaf := &ast.Class{Name: "Leaf", Package: "main", Superclass: mid}

	env := New(&ast.Program{Classes: []*ast.Class{object, base, mid, leaf}})

	got, ok := env.MethodLookupFrom("greet", 0, leaf, mid)
	if !ok || got != baseGreet {
		t.Errorf("MethodLookupFrom(greet, leaf, mid) = (%v, %v), want (%v, true) — super-call should skip Mid's own override", got, ok, baseGreet)
	}
}

func TestConstructorLookupByArity(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	class := &ast.Class{Name: "Point", Package: "main", Superclass: object}
	zero := &ast.Constructor{Owner: class}
	two := &ast.Constructor{Owner: class, Params: []*ast.Parameter{{Name: "x"}, {Name: "y"}}}
	class.Constructors = []*ast.Constructor{zero, two}

	env := New(&ast.Program{Classes: []*ast.Class{object, class}})

	if got, ok := env.ConstructorLookup(0, class); !ok || got != zero {
		t.Errorf("ConstructorLookup(0, class) = (%v, %v), want (%v, true)", got, ok, zero)
	}
	if got, ok := env.ConstructorLookup(2, class); !ok || got != two {
		t.Errorf("ConstructorLookup(2, class) = (%v, %v), want (%v, true)", got, ok, two)
	}
	if _, ok := env.ConstructorLookup(1, class); ok {
		t.Error("ConstructorLookup(1, class) matched an arity nothing declared")
	}
}

func TestAllFieldsOrdersSuperclassFieldsFirst(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	animal := &ast.Class{Name: "Animal", Package: "main", Superclass: object}
	animal.Fields = []*ast.Field{{Name: "name"}}
	bird := &ast.Class{Name: "Bird", Package: "main", Superclass: animal}
	bird.Fields = []*ast.Field{{Name: "wingspan"}}

	env := New(&ast.Program{Classes: []*ast.Class{object, animal, bird}})

	got := env.AllFields(bird)
	if len(got) != 2 || got[0].Name != "name" || got[1].Name != "wingspan" {
		t.Errorf("AllFields(bird) = %v, want [name wingspan]", got)
	}
}

func TestSingletonsReturnsOnlyMarkedClasses(t *testing.T) {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	ordinary := &ast.Class{Name: "Ordinary", Package: "main", Superclass: object}
	global := &ast.Class{Name: "console", Package: "main", Superclass: object, Singleton: true}

	env := New(&ast.Program{Classes: []*ast.Class{object, ordinary, global}})

	got := env.Singletons()
	if len(got) != 1 || got[0] != global {
		t.Errorf("Singletons() = %v, want [%v]", got, global)
	}
}

func TestNewPanicsOnDuplicateFullyQualifiedName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New did not panic on duplicate class names")
		}
	}()
	a := &ast.Class{Name: "Dup", Package: "main"}
	b := &ast.Class{Name: "Dup", Package: "main"}
	New(&ast.Program{Classes: []*ast.Class{a, b}})
}
