// Package runtime implements the heap: allocation and lookup of
// RuntimeObjects, identified by Id (spec §3, §4.2).
//
// Grounded on the teacher's Instance (pkg/vm/vm.go: Class + Fields
// slice) generalized from "fixed field slots known at compile time" to
// "named fields looked up by name", since this spec's fields are keyed
// by name rather than by a compiler-assigned index, and on the
// teacher's "fixed array of 256 locals" design philosophy — simple,
// bounds-checked, panics only on a genuine interpreter bug.
package runtime

import (
	"fmt"
	"math"
)

// ID is an opaque identifier uniquely naming a heap object within one
// Evaluation. The design notes (spec §9) allow a UUID string, a 128-bit
// integer, or a monotonically increasing counter; this implementation
// uses a monotonically increasing counter — the simplest of the three
// options the spec explicitly sanctions, and the only one grounded in
// the retrieval pack (no example here actually exercises a UUID
// library; see DESIGN.md).
type ID int64

// Well-known ids, reserved and process-wide stable within an evaluation
// (spec §3).
const (
	NullID ID = iota
	VoidID
	TrueID
	FalseID
)

// Well-known module names (spec §6).
const (
	ModuleObject              = "wollok.lang.Object"
	ModuleBoolean             = "wollok.lang.Boolean"
	ModuleNumber              = "wollok.lang.Number"
	ModuleString              = "wollok.lang.String"
	ModuleList                = "wollok.lang.List"
	ModuleBadParameterError   = "wollok.lang.BadParameterException"
)

// RuntimeObject is a heap-resident value (spec §3).
type RuntimeObject struct {
	ID     ID
	Module string
	Fields map[string]ID

	// InnerValue carries the primitive payload for Number (float64,
	// rounded to 4 decimal places), String (string), Boolean (bool),
	// List ([]ID), or nil for the null sentinel and ordinary objects.
	InnerValue interface{}
}

// UndefinedInstanceError is a host-level failure (spec §7): the heap
// was asked for an id it does not hold.
type UndefinedInstanceError struct{ ID ID }

func (e UndefinedInstanceError) Error() string {
	return fmt.Sprintf("undefined instance: %d", e.ID)
}

// UndefinedFieldError is a host-level failure: GET/SET referenced a
// field the receiver doesn't have.
type UndefinedFieldError struct {
	ID    ID
	Field string
}

func (e UndefinedFieldError) Error() string {
	return fmt.Sprintf("object %d has no field %q", e.ID, e.Field)
}

// Heap owns every RuntimeObject allocated during an Evaluation.
type Heap struct {
	objects map[ID]*RuntimeObject
	nextID  ID
}

// NewHeap creates an empty heap and pre-seeds the four well-known
// sentinel objects (spec §3 invariant: null, void, true, false always
// exist).
func NewHeap() *Heap {
	h := &Heap{objects: make(map[ID]*RuntimeObject), nextID: FalseID + 1}
	h.objects[NullID] = &RuntimeObject{ID: NullID, Module: ModuleObject, InnerValue: nil}
	h.objects[VoidID] = &RuntimeObject{ID: VoidID, Module: ModuleObject, InnerValue: nil}
	h.objects[TrueID] = &RuntimeObject{ID: TrueID, Module: ModuleBoolean, InnerValue: true}
	h.objects[FalseID] = &RuntimeObject{ID: FalseID, Module: ModuleBoolean, InnerValue: false}
	return h
}

// AddInstance allocates a new object of the given module with an
// optional primitive payload, returning its fresh id (spec §4.2).
// Number payloads are rounded to 4 decimal places at allocation time,
// half-away-from-zero, matching the rounding this implementation
// chose to resolve spec §4.2's open rounding-mode question.
func (h *Heap) AddInstance(module string, innerValue interface{}) ID {
	id := h.nextID
	h.nextID++
	if module == ModuleNumber {
		if n, ok := innerValue.(float64); ok {
			innerValue = roundToFour(n)
		}
	}
	if module == ModuleList && innerValue == nil {
		innerValue = []ID{}
	}
	h.objects[id] = &RuntimeObject{ID: id, Module: module, Fields: map[string]ID{}, InnerValue: innerValue}
	return id
}

// AddInstanceWithID allocates an object at a caller-chosen id and moves
// the id counter past it, so later AddInstance calls never reuse it.
// The driver's bootstrap does not use it: singletons get counter ids
// from AddInstance.
func (h *Heap) AddInstanceWithID(id ID, module string) {
	if id >= h.nextID {
		h.nextID = id + 1
	}
	h.objects[id] = &RuntimeObject{ID: id, Module: module, Fields: map[string]ID{}}
}

// GetInstance retrieves a RuntimeObject by id, failing with
// UndefinedInstanceError if absent (spec §4.2).
func (h *Heap) GetInstance(id ID) (*RuntimeObject, error) {
	obj, ok := h.objects[id]
	if !ok {
		return nil, UndefinedInstanceError{ID: id}
	}
	return obj, nil
}

// All returns every object currently on the heap, for deep-clone and
// diagnostic-snapshot purposes. Order is unspecified.
func (h *Heap) All() []*RuntimeObject {
	out := make([]*RuntimeObject, 0, len(h.objects))
	for _, obj := range h.objects {
		out = append(out, obj)
	}
	return out
}

// Clone deep-copies the heap: every RuntimeObject's Fields map and
// InnerValue are duplicated, the way spec §5 requires for evaluation
// cloning. InnerValue for List is copied element-wise; other inner
// values (float64, string, bool, nil) are copied by value already.
func (h *Heap) Clone() *Heap {
	clone := &Heap{objects: make(map[ID]*RuntimeObject, len(h.objects)), nextID: h.nextID}
	for id, obj := range h.objects {
		clone.objects[id] = cloneObject(obj)
	}
	return clone
}

func cloneObject(obj *RuntimeObject) *RuntimeObject {
	clone := &RuntimeObject{ID: obj.ID, Module: obj.Module}
	if obj.Fields != nil {
		clone.Fields = make(map[string]ID, len(obj.Fields))
		for k, v := range obj.Fields {
			clone.Fields[k] = v
		}
	}
	if list, ok := obj.InnerValue.([]ID); ok {
		cp := make([]ID, len(list))
		copy(cp, list)
		clone.InnerValue = cp
	} else {
		clone.InnerValue = obj.InnerValue
	}
	return clone
}

func roundToFour(n float64) float64 {
	const factor = 10000.0
	if n >= 0 {
		return math.Floor(n*factor+0.5) / factor
	}
	return math.Ceil(n*factor-0.5) / factor
}
