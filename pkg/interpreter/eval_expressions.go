package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/runtime"
)

// evaluateExpression handles every expression form. Heap values produced by
// subexpressions are pinned while sibling subexpressions run, because a
// sibling may call a procedure and reach a safe point.
func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.Identifier:
		val, ok := env.Lookup(n.Name)
		if !ok {
			return nil, i.errorf(n, "undefined variable `%s`", n.Name)
		}
		return val, nil
	case *ast.ListLiteral:
		return i.evaluateListLiteral(n, env)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, env)
	case *ast.CallExpression:
		return i.evaluateCall(n, env)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateListLiteral(n *ast.ListLiteral, env *runtime.Environment) (runtime.Value, error) {
	mark := i.heap.PinMark()
	defer i.heap.Release(mark)

	elems := make([]runtime.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		val, err := i.evaluateExpression(el, env)
		if err != nil {
			return nil, err
		}
		if val.Kind() == runtime.KindVoid {
			return nil, i.errorf(el, "cannot store a void value in a list")
		}
		i.heap.Pin(val)
		elems = append(elems, val)
	}
	return i.heap.NewList(elems), nil
}

func (i *Interpreter) evaluateIndexExpression(n *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	mark := i.heap.PinMark()
	defer i.heap.Release(mark)

	list, err := i.evaluateList(n.Object, env)
	if err != nil {
		return nil, err
	}
	i.heap.Pin(list)
	pos, err := i.evaluateListIndex(n.Index, list, env)
	if err != nil {
		return nil, err
	}
	val, _ := list.At(pos)
	return val, nil
}

// evaluateList evaluates expr and requires a list.
func (i *Interpreter) evaluateList(expr ast.Expression, env *runtime.Environment) (*runtime.ListValue, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return nil, err
	}
	list, ok := val.(*runtime.ListValue)
	if !ok {
		return nil, i.errorf(expr, "cannot index %s", describe(val))
	}
	return list, nil
}

// evaluateListIndex evaluates a 1-based index and checks it against list.
func (i *Interpreter) evaluateListIndex(expr ast.Expression, list *runtime.ListValue, env *runtime.Environment) (int, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return 0, err
	}
	pos, ok := runtime.AsInteger(val)
	if !ok {
		return 0, i.errorf(expr, "list index must be a whole number, got %s", describe(val))
	}
	if pos < 1 || pos > list.Len() {
		return 0, i.errorf(expr, "list index %d out of range for list of length %d", pos, list.Len())
	}
	return pos, nil
}

func (i *Interpreter) evaluateUnaryExpression(n *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case ast.OpSub:
		num, ok := runtime.AsNumber(operand)
		if !ok {
			return nil, i.operandError(n.Operand, n.Operator, "a number", operand)
		}
		return runtime.NumberValue{Val: -num}, nil
	case ast.OpNot:
		b, ok := runtime.AsBool(operand)
		if !ok {
			return nil, i.operandError(n.Operand, n.Operator, "a boolean", operand)
		}
		return runtime.BoolValue{Val: !b}, nil
	default:
		return nil, i.errorf(n, "unsupported unary operator %s", n.Operator)
	}
}

func (i *Interpreter) evaluateBinaryExpression(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	if n.Operator == ast.OpAnd || n.Operator == ast.OpOr {
		return i.evaluateLogical(n, env)
	}

	mark := i.heap.PinMark()
	defer i.heap.Release(mark)

	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	i.heap.Pin(left)
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case ast.OpEqual, ast.OpNotEqual:
		if left.Kind() == runtime.KindVoid {
			return nil, i.operandError(n.Left, n.Operator, "a value", left)
		}
		if right.Kind() == runtime.KindVoid {
			return nil, i.operandError(n.Right, n.Operator, "a value", right)
		}
		eq := runtime.Equal(left, right)
		if n.Operator == ast.OpNotEqual {
			eq = !eq
		}
		return runtime.BoolValue{Val: eq}, nil
	}

	l, ok := runtime.AsNumber(left)
	if !ok {
		return nil, i.operandError(n.Left, n.Operator, "numbers", left)
	}
	r, ok := runtime.AsNumber(right)
	if !ok {
		return nil, i.operandError(n.Right, n.Operator, "numbers", right)
	}

	switch n.Operator {
	case ast.OpAdd:
		return runtime.NumberValue{Val: l + r}, nil
	case ast.OpSub:
		return runtime.NumberValue{Val: l - r}, nil
	case ast.OpMul:
		return runtime.NumberValue{Val: l * r}, nil
	case ast.OpDiv:
		if r == 0 {
			return nil, i.errorf(n.Right, "division by zero")
		}
		return runtime.NumberValue{Val: l / r}, nil
	case ast.OpMod:
		if r == 0 {
			return nil, i.errorf(n.Right, "MOD by zero")
		}
		return runtime.NumberValue{Val: math.Mod(l, r)}, nil
	case ast.OpLess:
		return runtime.BoolValue{Val: l < r}, nil
	case ast.OpLessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	case ast.OpGreater:
		return runtime.BoolValue{Val: l > r}, nil
	case ast.OpGreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	default:
		return nil, i.errorf(n, "unsupported binary operator %s", n.Operator)
	}
}

// evaluateLogical short-circuits AND and OR; both operands must be booleans.
func (i *Interpreter) evaluateLogical(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	l, ok := runtime.AsBool(left)
	if !ok {
		return nil, i.operandError(n.Left, n.Operator, "booleans", left)
	}
	if (n.Operator == ast.OpAnd && !l) || (n.Operator == ast.OpOr && l) {
		return runtime.BoolValue{Val: l}, nil
	}
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}
	r, ok := runtime.AsBool(right)
	if !ok {
		return nil, i.operandError(n.Right, n.Operator, "booleans", right)
	}
	return runtime.BoolValue{Val: r}, nil
}

func (i *Interpreter) operandError(operand ast.Expression, op string, want string, got runtime.Value) error {
	if got != nil && got.Kind() == runtime.KindVoid {
		return i.errorf(operand, "`%s` cannot use a procedure result that has no value", op)
	}
	return i.errorf(operand, "`%s` expects %s, got %s", op, want, describe(got))
}

// describe names a value for error messages.
func describe(v runtime.Value) string {
	switch val := v.(type) {
	case nil:
		return "nothing"
	case runtime.NumberValue:
		return "number " + runtime.FormatNumber(val.Val)
	case runtime.StringValue:
		return "string " + strconv.Quote(val.Val)
	case runtime.BoolValue:
		return "boolean " + runtime.Format(val)
	case runtime.VoidValue:
		return "no value"
	default:
		return v.Kind().String()
	}
}
