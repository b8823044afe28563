// Package ast defines the linked abstract-syntax-tree node types the
// compiler and environment operate on.
//
// These nodes stand in for the output of the parser and linker, which
// are out of scope for this core (see spec §1, "Out of scope"): a real
// implementation would receive a fully resolved tree from those
// components. Node identity (pointer identity) is what the compiler's
// memoization table and the environment's reference resolution key on —
// there is no separate "node id" field, the same way the teacher's
// bytecode nodes are identified by their position in a slice.
package ast

// Node is implemented by every AST node. It exists purely so packages
// can hold a node of unknown concrete kind (e.g. a compilation-memo key
// or a resolved reference target).
type Node interface {
	isNode()
}

// Program is the root of a linked environment: every class and
// singleton known to the evaluation.
type Program struct {
	Classes []*Class
}

func (*Program) isNode() {}

// Class is a class or singleton definition.
type Class struct {
	Name         string // simple name
	Package      string // dotted package prefix, e.g. "wollok.lang"; "" makes Name the whole FQN
	Superclass   *Class // nil only for wollok.lang.Object
	Mixins       []*Class
	Fields       []*Field
	Methods      []*Method
	Constructors []*Constructor

	// Singleton is true for named global objects allocated once at
	// bootstrap (spec §6, "Singleton").
	Singleton bool
}

func (*Class) isNode() {}

// FullyQualifiedName returns the dotted path uniquely identifying this
// class, e.g. "wollok.lang.Number" or "myproject.Bird".
func (c *Class) FullyQualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// Field is a field declared directly on a class (not inherited).
type Field struct {
	Name        string
	Initializer Sentence // evaluated in a new instance's INIT frame; nil means "null"
}

func (*Field) isNode() {}

// Parameter is a method/constructor formal parameter.
type Parameter struct {
	Name    string
	Varargs bool // true only for the last parameter of a varargs method
}

// Method is a method declared on a class.
type Method struct {
	Name       string
	Params     []*Parameter
	Body       *Body // nil for abstract methods
	Native     bool  // true if implemented by the natives registry
	Owner      *Class
}

func (*Method) isNode() {}

// Arity reports the method's declared parameter count, including a
// trailing varargs parameter.
func (m *Method) Arity() int { return len(m.Params) }

// IsVarargs reports whether the method's last parameter absorbs the tail
// of the actual arguments into a List.
func (m *Method) IsVarargs() bool {
	return len(m.Params) > 0 && m.Params[len(m.Params)-1].Varargs
}

// Constructor is a constructor declared on a class.
type Constructor struct {
	Params     []*Parameter
	Body       *Body
	CallsSuper bool       // true if the base call targets the superclass (explicit super(...) or the implicit one); false for this(...) delegation
	BaseCall   []Sentence // argument expressions for the implicit or explicit base call
	Owner      *Class
}

func (*Constructor) isNode() {}

func (c *Constructor) Arity() int { return len(c.Params) }

func (c *Constructor) IsVarargs() bool {
	return len(c.Params) > 0 && c.Params[len(c.Params)-1].Varargs
}

// Sentence is any AST node that can appear in a Body: a statement or an
// expression used for its value.
type Sentence interface {
	Node
	isSentence()
}

// Body is an ordered sequence of sentences — a method body, constructor
// body, block body, or branch arm.
type Body struct {
	Sentences []Sentence
}

func (*Body) isNode()     {}
func (*Body) isSentence() {}

// Variable declares a local binding initialized from an expression:
// `var x = value`.
type Variable struct {
	Name  string
	Value Sentence
}

func (*Variable) isNode()     {}
func (*Variable) isSentence() {}

// Return evaluates Value (or pushes void if nil) and raises a `return`
// interruption.
type Return struct {
	Value Sentence // nil means "return void"
}

func (*Return) isNode()     {}
func (*Return) isSentence() {}

// ReferenceKind distinguishes what a Reference/Assignment target resolves
// to, mirroring environment.ResolveTarget's possible results.
type ReferenceKind int

const (
	// RefLocal is a plain local/parameter/outer-frame binding.
	RefLocal ReferenceKind = iota
	// RefField is a field of the enclosing class (implicit self).
	RefField
	// RefModule is a class or singleton, referenced by its fully
	// qualified name.
	RefModule
)

// Assignment stores Value into the binding Name resolves to.
type Assignment struct {
	Name  string
	Kind  ReferenceKind
	Value Sentence
}

func (*Assignment) isNode()     {}
func (*Assignment) isSentence() {}

// Self is the `self` pseudo-reference.
type Self struct{}

func (*Self) isNode()     {}
func (*Self) isSentence() {}

// Reference is a read of a name: a local, a field (implicit self), or a
// module (class/singleton) reference.
type Reference struct {
	Name   string
	Kind   ReferenceKind
	Target *Class // populated when Kind == RefModule
}

func (*Reference) isNode()     {}
func (*Reference) isSentence() {}

// LiteralKind distinguishes the literal node variants of §4.1.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralBoolean
	LiteralNumber
	LiteralString
	// LiteralSingleton is an inline anonymous singleton instantiation
	// with a resolved superclass and super-call arguments.
	LiteralSingleton
	// LiteralClosure is an inline anonymous object/closure instantiation.
	LiteralClosure
)

// Literal is any of the literal node kinds.
type Literal struct {
	Kind   LiteralKind
	Bool   bool
	Number float64
	Str    string

	// LiteralSingleton / LiteralClosure fields:
	ClassName     string // synthesized anonymous class name
	SuperclassFQN string // for LiteralSingleton: fqn of the resolved superclass
	SuperCallArgs []Sentence
	Args          []Sentence // for LiteralClosure: constructor args
}

func (*Literal) isNode()     {}
func (*Literal) isSentence() {}

// Send is a message send: receiver.message(args...).
type Send struct {
	Receiver Sentence
	Message  string
	Args     []Sentence
}

func (*Send) isNode()     {}
func (*Send) isSentence() {}

// Super is `super(args...)` inside a method body. EnclosingMethod and
// EnclosingClass identify where the super call is lexically written, so
// the compiler can compute "one class above" for dispatch.
type Super struct {
	EnclosingMethod *Method
	EnclosingClass  *Class
	Args            []Sentence
}

func (*Super) isNode()     {}
func (*Super) isSentence() {}

// New is `new ClassName(args...)`.
type New struct {
	ClassName string
	Target    *Class
	Args      []Sentence
}

func (*New) isNode()     {}
func (*New) isSentence() {}

// If is `if (condition) then_ else else_`.
type If struct {
	Condition Sentence
	Then      *Body
	Else      *Body // nil means an empty body (pushes void)
}

func (*If) isNode()     {}
func (*If) isSentence() {}

// Throw is `throw arg`.
type Throw struct {
	Arg Sentence
}

func (*Throw) isNode()     {}
func (*Throw) isSentence() {}

// CatchClause is one `catch param : Type { body }` arm of a Try.
type CatchClause struct {
	ParamName string
	Type      *Class
	Body      *Body
}

// Try is `try { body } catch ... then always { always }`.
type Try struct {
	Body    *Body
	Catches []*CatchClause
	Always  *Body // nil means an empty always block
}

func (*Try) isNode()     {}
func (*Try) isSentence() {}
