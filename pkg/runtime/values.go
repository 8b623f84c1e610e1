package runtime

import (
	"fmt"

	"aps/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindList
	KindProcedure
	KindNative
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	case KindProcedure:
		return "procedure"
	case KindNative:
		return "builtin"
	case KindVoid:
		return "void"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

// VoidValue is the result of a call that returned nothing. Programs cannot
// write it literally and operators reject it.
type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

// Void is the shared void instance.
var Void Value = VoidValue{}

//-----------------------------------------------------------------------------
// Heap values
//-----------------------------------------------------------------------------

// ListValue is a mutable, shared list. Allocate through Heap.NewList so the
// collector can see it.
type ListValue struct {
	gcHeader
	Elements []Value
}

func (*ListValue) Kind() Kind { return KindList }

// Len returns the current number of elements.
func (l *ListValue) Len() int {
	return len(l.Elements)
}

// At returns the element at a 1-based position.
func (l *ListValue) At(pos int) (Value, bool) {
	if pos < 1 || pos > len(l.Elements) {
		return nil, false
	}
	return l.Elements[pos-1], true
}

// Set replaces the element at a 1-based position.
func (l *ListValue) Set(pos int, v Value) bool {
	if pos < 1 || pos > len(l.Elements) {
		return false
	}
	l.Elements[pos-1] = v
	return true
}

// Insert places v at a 1-based position in [1, Len()+1], shifting later
// elements right.
func (l *ListValue) Insert(pos int, v Value) bool {
	if pos < 1 || pos > len(l.Elements)+1 {
		return false
	}
	l.Elements = append(l.Elements, nil)
	copy(l.Elements[pos:], l.Elements[pos-1:])
	l.Elements[pos-1] = v
	return true
}

// Remove deletes the element at a 1-based position, shifting later elements
// left.
func (l *ListValue) Remove(pos int) (Value, bool) {
	if pos < 1 || pos > len(l.Elements) {
		return nil, false
	}
	removed := l.Elements[pos-1]
	copy(l.Elements[pos-1:], l.Elements[pos:])
	l.Elements[len(l.Elements)-1] = nil
	l.Elements = l.Elements[:len(l.Elements)-1]
	return removed, true
}

func (l *ListValue) trace(visit func(heapObject)) {
	for _, el := range l.Elements {
		if obj := asObject(el); obj != nil {
			visit(obj)
		}
	}
}

func (l *ListValue) release() {
	l.Elements = nil
}

// ProcedureValue is a user procedure closed over the scope it was declared in.
type ProcedureValue struct {
	gcHeader
	Declaration *ast.ProcedureDefinition
	Closure     *Environment
}

func (*ProcedureValue) Kind() Kind { return KindProcedure }

// Name returns the declared procedure name.
func (p *ProcedureValue) Name() string {
	if p.Declaration == nil || p.Declaration.ID == nil {
		return "<anonymous>"
	}
	return p.Declaration.ID.Name
}

// Params returns the declared parameter names in order.
func (p *ProcedureValue) Params() []string {
	if p.Declaration == nil {
		return nil
	}
	names := make([]string, len(p.Declaration.Params))
	for i, param := range p.Declaration.Params {
		names[i] = param.Name
	}
	return names
}

func (p *ProcedureValue) trace(visit func(heapObject)) {
	if p.Closure != nil {
		visit(p.Closure)
	}
}

func (p *ProcedureValue) release() {
	p.Closure = nil
}

//-----------------------------------------------------------------------------
// Builtins
//-----------------------------------------------------------------------------

// NativeFunc implements a builtin. Builtins never reach a collection safe
// point, so the argument slice stays valid for the whole call.
type NativeFunc func(args []Value) (Value, error)

// NativeFunctionValue is a builtin procedure. Arity < 0 means variadic.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (*NativeFunctionValue) Kind() Kind { return KindNative }
