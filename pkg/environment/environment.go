// Package environment implements the Environment query service consumed
// by the compiler and VM (spec §6): reference resolution, class
// hierarchy computation, and method/constructor lookup over a linked
// ast.Program.
//
// The Environment itself is read-only and shared across evaluations — it
// has no mutable state beyond the linearization cache it fills lazily,
// one class at a time, on first query (guarded by a mutex), much the way the teacher's bytecode.ClassDefinition
// registry is built once and then only read from.
package environment

import (
	"fmt"
	"sync"

	"github.com/wollok-vm/core/pkg/ast"
)

// Environment is the immutable, linked program representation.
type Environment struct {
	id      int64 // identity for compiler memoization keys
	program *ast.Program

	byFQN       map[string]*ast.Class
	hierarchies map[*ast.Class][]*ast.Class // memoized linearizations

	mu sync.Mutex // guards hierarchies, built lazily
}

var nextEnvironmentID int64

// New links program into a queryable Environment. It panics if two
// classes share a fully qualified name — that is a linker invariant
// violation, not a runtime condition callers should need to handle.
func New(program *ast.Program) *Environment {
	nextEnvironmentID++
	env := &Environment{
		id:          nextEnvironmentID,
		program:     program,
		byFQN:       make(map[string]*ast.Class, len(program.Classes)),
		hierarchies: make(map[*ast.Class][]*ast.Class),
	}
	for _, class := range program.Classes {
		fqn := class.FullyQualifiedName()
		if _, exists := env.byFQN[fqn]; exists {
			panic(fmt.Sprintf("environment: duplicate class %s", fqn))
		}
		env.byFQN[fqn] = class
	}
	return env
}

// ID returns an opaque identity for this Environment, stable for its
// lifetime. Used as half of the compiler's memoization key.
func (e *Environment) ID() int64 { return e.id }

// Resolve looks up a class or singleton by fully qualified name.
func (e *Environment) Resolve(fqn string) (*ast.Class, bool) {
	class, ok := e.byFQN[fqn]
	return class, ok
}

// MustResolve is Resolve but panics on failure; used for well-known
// names the bootstrap process assumes exist (spec §6).
func (e *Environment) MustResolve(fqn string) *ast.Class {
	class, ok := e.Resolve(fqn)
	if !ok {
		panic(fmt.Sprintf("environment: unresolved well-known class %s", fqn))
	}
	return class
}

// FullyQualifiedName returns the dotted path for a class node.
func (e *Environment) FullyQualifiedName(class *ast.Class) string {
	return class.FullyQualifiedName()
}

// Superclass returns the direct superclass, or (nil, false) for the
// root class.
func (e *Environment) Superclass(class *ast.Class) (*ast.Class, bool) {
	if class.Superclass == nil {
		return nil, false
	}
	return class.Superclass, true
}

// Hierarchy returns the method-resolution order for class: the class
// itself, then its mixins innermost-first, then its superclass's own
// hierarchy — up to the root class, which always comes last (a class
// reachable along several paths appears once, at its last position).
// This generalizes spec §6's "class
// itself up to the root class" to support mixins (see SPEC_FULL.md,
// "Supplemented features"); a class with no mixins gets exactly the
// spec's linear chain.
func (e *Environment) Hierarchy(class *ast.Class) []*ast.Class {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hierarchyLocked(class)
}

func (e *Environment) hierarchyLocked(class *ast.Class) []*ast.Class {
	if cached, ok := e.hierarchies[class]; ok {
		return cached
	}
	all := []*ast.Class{class}
	for _, mixin := range class.Mixins {
		all = append(all, e.hierarchyLocked(mixin)...)
	}
	if class.Superclass != nil {
		all = append(all, e.hierarchyLocked(class.Superclass)...)
	}
	// A class reached more than once keeps only its last position, so a
	// shared ancestor (e.g. the root class) comes after every class that
	// inherits from it.
	last := make(map[*ast.Class]int, len(all))
	for i, c := range all {
		last[c] = i
	}
	var order []*ast.Class
	for i, c := range all {
		if last[c] == i {
			order = append(order, c)
		}
	}
	e.hierarchies[class] = order
	return order
}

// Inherits reports whether sub's hierarchy contains sup (reflexively:
// a class inherits from itself).
func (e *Environment) Inherits(sub, sup *ast.Class) bool {
	for _, ancestor := range e.Hierarchy(sub) {
		if ancestor == sup {
			return true
		}
	}
	return false
}

// MethodLookup walks hierarchy(startClass) upward searching for a
// method named name whose arity matches arity (spec §4.3): an exact
// match for fixed-arity methods, or arity >= len(params)-1 for varargs
// methods.
func (e *Environment) MethodLookup(name string, arity int, startClass *ast.Class) (*ast.Method, bool) {
	for _, class := range e.Hierarchy(startClass) {
		for _, method := range class.Methods {
			if method.Name != name {
				continue
			}
			if method.IsVarargs() {
				if arity >= method.Arity()-1 {
					return method, true
				}
				continue
			}
			if arity == method.Arity() {
				return method, true
			}
		}
	}
	return nil, false
}

// MethodLookupFrom is MethodLookup but starts one class above
// lookupStart in receiverClass's own hierarchy — used for super-calls
// (spec §4.3). If lookupStart has no class above it in the hierarchy,
// lookup fails.
func (e *Environment) MethodLookupFrom(name string, arity int, receiverClass, lookupStart *ast.Class) (*ast.Method, bool) {
	hierarchy := e.Hierarchy(receiverClass)
	idx := indexOf(hierarchy, lookupStart)
	if idx < 0 || idx+1 >= len(hierarchy) {
		return nil, false
	}
	for _, class := range hierarchy[idx+1:] {
		for _, method := range class.Methods {
			if method.Name != name {
				continue
			}
			if method.IsVarargs() {
				if arity >= method.Arity()-1 {
					return method, true
				}
				continue
			}
			if arity == method.Arity() {
				return method, true
			}
		}
	}
	return nil, false
}

// ConstructorLookup finds a constructor on class with the given arity
// (spec §4.4). Constructors are not inherited by lookup in the same way
// methods are — INIT resolves the chain explicitly via BaseCall — so
// this only looks at class's own constructors.
func (e *Environment) ConstructorLookup(arity int, class *ast.Class) (*ast.Constructor, bool) {
	for _, ctor := range class.Constructors {
		if ctor.IsVarargs() {
			if arity >= ctor.Arity()-1 {
				return ctor, true
			}
			continue
		}
		if arity == ctor.Arity() {
			return ctor, true
		}
	}
	return nil, false
}

func indexOf(classes []*ast.Class, target *ast.Class) int {
	for i, c := range classes {
		if c == target {
			return i
		}
	}
	return -1
}

// Descendants returns every node reachable from node's children, depth
// first, not including node itself. It exists to satisfy spec §6's
// navigation surface; the compiler and VM in this core never need it
// directly since the AST is already fully resolved (Reference.Target,
// Super.EnclosingClass, etc. are pointers set up by the linker), but a
// future pass (e.g. a linter or an IDE integration) would use it the way
// it uses hierarchy() today.
func (e *Environment) Descendants(node ast.Node) []ast.Node {
	var out []ast.Node
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for _, child := range children(n) {
			out = append(out, child)
			walk(child)
		}
	}
	walk(node)
	return out
}

// children enumerates the direct AST children of n relevant to this
// core's node set.
func children(n ast.Node) []ast.Node {
	switch v := n.(type) {
	case *ast.Body:
		out := make([]ast.Node, len(v.Sentences))
		for i, s := range v.Sentences {
			out[i] = s
		}
		return out
	case *ast.Variable:
		if v.Value != nil {
			return []ast.Node{v.Value}
		}
	case *ast.Return:
		if v.Value != nil {
			return []ast.Node{v.Value}
		}
	case *ast.Assignment:
		if v.Value != nil {
			return []ast.Node{v.Value}
		}
	case *ast.Send:
		out := []ast.Node{v.Receiver}
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	case *ast.New:
		out := make([]ast.Node, len(v.Args))
		for i, a := range v.Args {
			out[i] = a
		}
		return out
	case *ast.If:
		out := []ast.Node{v.Condition, v.Then}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *ast.Throw:
		return []ast.Node{v.Arg}
	case *ast.Try:
		out := []ast.Node{v.Body}
		for _, c := range v.Catches {
			out = append(out, c.Body)
		}
		if v.Always != nil {
			out = append(out, v.Always)
		}
		return out
	}
	return nil
}

// Singletons returns every named global object the driver must
// pre-allocate and initialize during bootstrap (spec §6,
// buildEvaluationFor).
func (e *Environment) Singletons() []*ast.Class {
	var out []*ast.Class
	for _, class := range e.program.Classes {
		if class.Singleton {
			out = append(out, class)
		}
	}
	return out
}

// AllFields returns every field declared anywhere in class's hierarchy,
// ordered so superclass fields precede subclass fields, with
// declaration order preserved within a class (spec §4.4, INIT step 1).
func (e *Environment) AllFields(class *ast.Class) []*ast.Field {
	hierarchy := e.Hierarchy(class)
	var fields []*ast.Field
	for i := len(hierarchy) - 1; i >= 0; i-- {
		fields = append(fields, hierarchy[i].Fields...)
	}
	return fields
}
