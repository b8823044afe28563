// Package examples hand-builds small linked ast.Program values for
// cmd/wollok-vm to run, standing in for what a parser+linker would
// otherwise produce (spec §1, "Out of scope"): this core accepts
// already-linked ASTs, and has no source syntax of its own.
package examples

import (
	"github.com/wollok-vm/core/pkg/ast"
	"github.com/wollok-vm/core/pkg/environment"
)

// wollokLang builds the wollok.lang.Object root and the primitive
// classes every native in pkg/natives is registered against. Every
// hand-built program needs these in its Environment since
// MethodLookup always walks up to Object.
func wollokLang() []*ast.Class {
	object := &ast.Class{Name: "Object", Package: "wollok.lang"}
	object.Constructors = []*ast.Constructor{{Owner: object, Body: &ast.Body{}}}
	prim := func(name string) *ast.Class {
		c := &ast.Class{Name: name, Package: "wollok.lang", Superclass: object}
		c.Constructors = []*ast.Constructor{{Owner: c, Body: &ast.Body{}, CallsSuper: true}}
		return c
	}
	return []*ast.Class{
		object,
		prim("Boolean"),
		prim("Number"),
		prim("String"),
		prim("List"),
		prim("BadParameterException"),
	}
}

// nativeMethod declares a method with no body, dispatched to
// pkg/natives instead of compiled bytecode (spec §4.3, "method.Native").
func nativeMethod(owner *ast.Class, name string, arity int) *ast.Method {
	params := make([]*ast.Parameter, arity)
	for i := range params {
		params[i] = &ast.Parameter{Name: "_"}
	}
	return &ast.Method{Name: name, Params: params, Native: true, Owner: owner}
}

// Counter returns a tiny program exercising fields, a user-defined
// method calling natives, and a singleton bootstrapped with a field
// initializer (spec §8 concrete scenarios: field get/set, arithmetic).
//
// It defines:
//
//	class Counter {
//	  var total = 0
//	  method add(n) { total = total + n }
//	  method total() { return total }
//	}
//	object counter inherits Counter()
//
// and a body that sends add(5), add(2), then total() to the counter
// singleton.
func Counter() (*environment.Environment, *ast.Body) {
	classes := wollokLang()
	object, number := classes[0], classes[2]
	number.Methods = append(number.Methods,
		nativeMethod(number, "+", 1),
		nativeMethod(number, "toString", 0),
	)

	counterClass := &ast.Class{Name: "Counter", Package: "main", Superclass: object}
	totalField := &ast.Field{
		Name:        "total",
		Initializer: &ast.Literal{Kind: ast.LiteralNumber, Number: 0},
	}
	counterClass.Fields = []*ast.Field{totalField}
	counterClass.Constructors = []*ast.Constructor{{Owner: counterClass, Body: &ast.Body{}, CallsSuper: true}}

	nParam := &ast.Parameter{Name: "n"}
	addMethod := &ast.Method{
		Name:   "add",
		Params: []*ast.Parameter{nParam},
		Owner:  counterClass,
		Body: &ast.Body{Sentences: []ast.Sentence{
			&ast.Assignment{
				Name: "total",
				Kind: ast.RefField,
				Value: &ast.Send{
					Receiver: &ast.Reference{Name: "total", Kind: ast.RefField},
					Message:  "+",
					Args:     []ast.Sentence{&ast.Reference{Name: "n", Kind: ast.RefLocal}},
				},
			},
		}},
	}
	totalMethod := &ast.Method{
		Name:  "total",
		Owner: counterClass,
		Body: &ast.Body{Sentences: []ast.Sentence{
			&ast.Return{Value: &ast.Reference{Name: "total", Kind: ast.RefField}},
		}},
	}
	counterClass.Methods = []*ast.Method{addMethod, totalMethod}

	singleton := &ast.Class{
		Name: "counter", Package: "main", Superclass: counterClass, Singleton: true,
	}
	singleton.Constructors = []*ast.Constructor{{Owner: singleton, Body: &ast.Body{}, CallsSuper: true}}

	program := &ast.Program{Classes: append(classes, counterClass, singleton)}
	env := environment.New(program)

	singletonRef := &ast.Reference{Name: "main.counter", Kind: ast.RefModule, Target: singleton}
	body := &ast.Body{Sentences: []ast.Sentence{
		&ast.Send{Receiver: singletonRef, Message: "add", Args: []ast.Sentence{&ast.Literal{Kind: ast.LiteralNumber, Number: 5}}},
		&ast.Send{Receiver: singletonRef, Message: "add", Args: []ast.Sentence{&ast.Literal{Kind: ast.LiteralNumber, Number: 2}}},
		&ast.Return{Value: &ast.Send{Receiver: singletonRef, Message: "total"}},
	}}
	return env, body
}

// Division returns a program exercising try/catch (spec §4.5, §8):
// dividing by zero raises wollok.lang.Exception, caught and replaced
// with -1. The try has no always block.
func Division(dividend, divisor float64) (*environment.Environment, *ast.Body) {
	classes := wollokLang()
	object, number := classes[0], classes[2]
	number.Methods = append(number.Methods,
		nativeMethod(number, "/", 1),
		nativeMethod(number, "==", 1),
	)
	exceptionClass := &ast.Class{Name: "Exception", Package: "wollok.lang", Superclass: object}
	exceptionClass.Fields = []*ast.Field{{Name: "message"}}
	exceptionClass.Constructors = []*ast.Constructor{{Owner: exceptionClass, Body: &ast.Body{}, CallsSuper: true}}

	program := &ast.Program{Classes: append(classes, exceptionClass)}
	env := environment.New(program)

	// The natives package does no zero-check of its own (spec §4.3
	// leaves arithmetic semantics to the natives registry), so this
	// example checks explicitly and throws rather than relying on
	// float64 division producing an exception it never would.
	guarded := &ast.If{
		Condition: &ast.Send{
			Receiver: &ast.Literal{Kind: ast.LiteralNumber, Number: divisor},
			Message:  "==",
			Args:     []ast.Sentence{&ast.Literal{Kind: ast.LiteralNumber, Number: 0}},
		},
		Then: &ast.Body{Sentences: []ast.Sentence{
			&ast.Throw{Arg: &ast.New{ClassName: "wollok.lang.Exception", Target: exceptionClass}},
		}},
		Else: &ast.Body{Sentences: []ast.Sentence{
			&ast.Send{
				Receiver: &ast.Literal{Kind: ast.LiteralNumber, Number: dividend},
				Message:  "/",
				Args:     []ast.Sentence{&ast.Literal{Kind: ast.LiteralNumber, Number: divisor}},
			},
		}},
	}

	body := &ast.Body{Sentences: []ast.Sentence{
		&ast.Try{
			Body: &ast.Body{Sentences: []ast.Sentence{guarded}},
			Catches: []*ast.CatchClause{{
				Type:      exceptionClass,
				ParamName: "e",
				Body: &ast.Body{Sentences: []ast.Sentence{
					&ast.Literal{Kind: ast.LiteralNumber, Number: -1},
				}},
			}},
		},
	}}
	return env, body
}

// ClosureForEach returns a program exercising List#forEach invoking a
// closure's apply method through Evaluation.Send (SPEC_FULL.md,
// "Supplemented features"): summing a literal list of numbers into a
// singleton accumulator field.
func ClosureForEach() (*environment.Environment, *ast.Body) {
	classes := wollokLang()
	object, number, list := classes[0], classes[2], classes[4]
	object.Methods = append(object.Methods, nativeMethod(object, "toString", 0))
	number.Methods = append(number.Methods, nativeMethod(number, "+", 1))
	list.Methods = append(list.Methods, nativeMethod(list, "forEach", 1), nativeMethod(list, "add", 1))

	accClass := &ast.Class{Name: "Accumulator", Package: "main", Superclass: object}
	accClass.Fields = []*ast.Field{{Name: "sum", Initializer: &ast.Literal{Kind: ast.LiteralNumber, Number: 0}}}
	accClass.Constructors = []*ast.Constructor{{Owner: accClass, Body: &ast.Body{}, CallsSuper: true}}
	accClass.Methods = []*ast.Method{{
		Name:   "add",
		Owner:  accClass,
		Params: []*ast.Parameter{{Name: "n"}},
		Body: &ast.Body{Sentences: []ast.Sentence{
			&ast.Assignment{
				Name: "sum",
				Kind: ast.RefField,
				Value: &ast.Send{
					Receiver: &ast.Reference{Name: "sum", Kind: ast.RefField},
					Message:  "+",
					Args:     []ast.Sentence{&ast.Reference{Name: "n", Kind: ast.RefLocal}},
				},
			},
		}},
	}}

	closureClass := &ast.Class{Name: "AddClosure", Package: "main", Superclass: object}
	closureClass.Fields = []*ast.Field{{Name: "acc"}}
	accParam := &ast.Parameter{Name: "acc"}
	closureClass.Constructors = []*ast.Constructor{{
		Owner: closureClass, Params: []*ast.Parameter{accParam}, CallsSuper: true,
		Body: &ast.Body{Sentences: []ast.Sentence{
			&ast.Assignment{Name: "acc", Kind: ast.RefField, Value: &ast.Reference{Name: "acc", Kind: ast.RefLocal}},
		}},
	}}
	closureClass.Methods = []*ast.Method{{
		Name:   "apply",
		Owner:  closureClass,
		Params: []*ast.Parameter{{Name: "n"}},
		Body: &ast.Body{Sentences: []ast.Sentence{
			&ast.Send{
				Receiver: &ast.Reference{Name: "acc", Kind: ast.RefField},
				Message:  "add",
				Args:     []ast.Sentence{&ast.Reference{Name: "n", Kind: ast.RefLocal}},
			},
		}},
	}}

	singleton := &ast.Class{Name: "totals", Package: "main", Superclass: accClass, Singleton: true}
	singleton.Constructors = []*ast.Constructor{{Owner: singleton, Body: &ast.Body{}, CallsSuper: true}}

	program := &ast.Program{Classes: append(classes, accClass, closureClass, singleton)}
	env := environment.New(program)

	values := []ast.Sentence{
		&ast.Literal{Kind: ast.LiteralNumber, Number: 1},
		&ast.Literal{Kind: ast.LiteralNumber, Number: 2},
		&ast.Literal{Kind: ast.LiteralNumber, Number: 3},
	}
	sentences := literalList(list, "elements", values)
	sentences = append(sentences,
		&ast.Send{
			Receiver: &ast.Reference{Name: "elements", Kind: ast.RefLocal},
			Message:  "forEach",
			Args: []ast.Sentence{
				&ast.New{ClassName: "main.AddClosure", Target: closureClass, Args: []ast.Sentence{
					&ast.Reference{Name: "main.totals", Kind: ast.RefModule, Target: singleton},
				}},
			},
		},
		&ast.Return{Value: &ast.Send{
			Receiver: &ast.Reference{Name: "main.totals", Kind: ast.RefModule, Target: singleton},
			Message:  "toString",
		}},
	)
	return env, &ast.Body{Sentences: sentences}
}

// literalList declares a local named name holding a fresh
// wollok.lang.List, then adds each of elements to it in order — since
// this core's ast.Literal has no dedicated list-literal payload. The
// list itself is bound to the local so each add send's void return
// doesn't become the next add's receiver.
func literalList(listClass *ast.Class, name string, elements []ast.Sentence) []ast.Sentence {
	out := []ast.Sentence{
		&ast.Variable{Name: name, Value: &ast.New{ClassName: "wollok.lang.List", Target: listClass}},
	}
	for _, e := range elements {
		out = append(out, &ast.Send{
			Receiver: &ast.Reference{Name: name, Kind: ast.RefLocal},
			Message:  "add",
			Args:     []ast.Sentence{e},
		})
	}
	return out
}
