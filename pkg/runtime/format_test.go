package runtime

import (
	"math"
	"testing"

	"aps/interpreter-go/pkg/ast"
)

func TestFormatNumber(t *testing.T) {
	tenth, fifth := 0.1, 0.2
	cases := []struct {
		in   float64
		want string
	}{
		{6, "6"},
		{-2, "-2"},
		{2.5, "2.5"},
		{tenth + fifth, "0.30000000000000004"},
		{math.Copysign(0, -1), "0"},
		{1e21, "1000000000000000000000"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "NaN"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatValues(t *testing.T) {
	heap := NewHeap(0)
	inner := heap.NewList([]Value{StringValue{Val: "a"}, BoolValue{Val: false}})
	outer := heap.NewList([]Value{NumberValue{Val: 1}, inner, heap.NewList(nil)})
	proc := heap.NewProcedure(ast.Proc("greet", nil), nil)
	native := &NativeFunctionValue{Name: "LENGTH", Arity: 1}

	cases := []struct {
		value Value
		want  string
	}{
		{StringValue{Val: "Hello user!"}, "Hello user!"},
		{BoolValue{Val: true}, "TRUE"},
		{outer, `[1, ["a", FALSE], []]`},
		{proc, "<procedure greet>"},
		{native, "<builtin LENGTH>"},
		{Void, "<void>"},
	}
	for _, tc := range cases {
		if got := Format(tc.value); got != tc.want {
			t.Fatalf("Format(%T) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestFormatSelfReferentialList(t *testing.T) {
	heap := NewHeap(0)
	list := heap.NewList(numbers(1))
	list.Elements = append(list.Elements, list)
	if got := Format(list); got != "[1, [...]]" {
		t.Fatalf("unexpected rendering %q", got)
	}

	shared := heap.NewList(numbers(7))
	pair := heap.NewList([]Value{shared, shared})
	if got := Format(pair); got != "[[7], [7]]" {
		t.Fatalf("shared (non-cyclic) lists should render fully, got %q", got)
	}
}

func TestEqual(t *testing.T) {
	heap := NewHeap(0)
	a := heap.NewList(numbers(1, 2))
	b := heap.NewList(numbers(1, 2))
	c := heap.NewList(numbers(1, 3))
	procA := heap.NewProcedure(ast.Proc("p", nil), nil)
	procB := heap.NewProcedure(ast.Proc("p", nil), nil)

	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers", NumberValue{Val: 2}, NumberValue{Val: 2}, true},
		{"number vs string", NumberValue{Val: 2}, StringValue{Val: "2"}, false},
		{"strings", StringValue{Val: "x"}, StringValue{Val: "x"}, true},
		{"bools", BoolValue{Val: true}, BoolValue{Val: false}, false},
		{"structural lists", a, b, true},
		{"different lists", a, c, false},
		{"procedure identity", procA, procA, true},
		{"distinct procedures", procA, procB, false},
	}
	for _, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("%s: Equal = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEqualTerminatesOnCycles(t *testing.T) {
	heap := NewHeap(0)
	a := heap.NewList(nil)
	a.Elements = append(a.Elements, a)
	b := heap.NewList(nil)
	b.Elements = append(b.Elements, b)
	if !Equal(a, b) {
		t.Fatalf("isomorphic cyclic lists should be equal")
	}
	c := heap.NewList(numbers(1))
	c.Elements = append(c.Elements, c)
	if Equal(a, c) {
		t.Fatalf("lists of different length should differ")
	}
}

func TestAsInteger(t *testing.T) {
	if n, ok := AsInteger(NumberValue{Val: 4}); !ok || n != 4 {
		t.Fatalf("AsInteger(4) = %d, %v", n, ok)
	}
	for _, v := range []Value{NumberValue{Val: 1.5}, NumberValue{Val: math.NaN()}, StringValue{Val: "1"}} {
		if _, ok := AsInteger(v); ok {
			t.Fatalf("AsInteger(%v) should fail", v)
		}
	}
}
