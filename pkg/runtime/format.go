package runtime

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders n in its shortest decimal form without an exponent.
// Negative zero prints as 0.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == 0:
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Format renders a value the way DISPLAY prints it. Strings are raw at the
// top level and quoted inside lists. A list reached again while it is being
// rendered prints as [...].
func Format(v Value) string {
	var b strings.Builder
	writeValue(&b, v, false, nil)
	return b.String()
}

func writeValue(b *strings.Builder, v Value, nested bool, path []*ListValue) {
	switch val := v.(type) {
	case NumberValue:
		b.WriteString(FormatNumber(val.Val))
	case StringValue:
		if nested {
			b.WriteString(strconv.Quote(val.Val))
		} else {
			b.WriteString(val.Val)
		}
	case BoolValue:
		if val.Val {
			b.WriteString("TRUE")
		} else {
			b.WriteString("FALSE")
		}
	case *ListValue:
		for _, seen := range path {
			if seen == val {
				b.WriteString("[...]")
				return
			}
		}
		path = append(path, val)
		b.WriteByte('[')
		for i, el := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el, true, path)
		}
		b.WriteByte(']')
	case *ProcedureValue:
		b.WriteString("<procedure " + val.Name() + ">")
	case *NativeFunctionValue:
		b.WriteString("<builtin " + val.Name + ">")
	case VoidValue:
		b.WriteString("<void>")
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString("<" + v.Kind().String() + ">")
	}
}

// Equal implements `=`. Values of different kinds are unequal, lists compare
// element-wise, and procedures and builtins compare by identity. Lists that
// contain themselves compare equal when their shapes match.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

type listPair struct {
	a, b *ListValue
}

func equal(a, b Value, assumed []listPair) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case NumberValue:
		return av.Val == b.(NumberValue).Val
	case StringValue:
		return av.Val == b.(StringValue).Val
	case BoolValue:
		return av.Val == b.(BoolValue).Val
	case VoidValue:
		return true
	case *ProcedureValue:
		return av == b.(*ProcedureValue)
	case *NativeFunctionValue:
		return av == b.(*NativeFunctionValue)
	case *ListValue:
		bv := b.(*ListValue)
		if av == bv {
			return true
		}
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for _, pair := range assumed {
			if pair.a == av && pair.b == bv {
				return true
			}
		}
		assumed = append(assumed, listPair{av, bv})
		for i := range av.Elements {
			if !equal(av.Elements[i], bv.Elements[i], assumed) {
				return false
			}
		}
		return true
	}
	return false
}

// AsBool reports the boolean held by v and whether v was a Bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(BoolValue)
	return b.Val, ok
}

// AsNumber reports the number and whether v was one.
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(NumberValue)
	return n.Val, ok
}

// AsInteger reports whether v is a Number with an integral value that is
// exactly representable.
func AsInteger(v Value) (int, bool) {
	n, ok := v.(NumberValue)
	if !ok || math.IsNaN(n.Val) || math.IsInf(n.Val, 0) || n.Val != math.Trunc(n.Val) {
		return 0, false
	}
	if math.Abs(n.Val) > 1<<53 {
		return 0, false
	}
	return int(n.Val), true
}
