package interpreter

import (
	"fmt"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/runtime"
)

// outcome reports how a statement finished. A returned outcome carries the
// RETURN value up to the nearest procedure call.
type outcome struct {
	returned bool
	value    runtime.Value
}

var normal = outcome{}

// executeStatements runs a statement sequence in env, stopping at the first
// RETURN or error. Every statement boundary is a collection safe point.
func (i *Interpreter) executeStatements(body []ast.Statement, env *runtime.Environment) (outcome, error) {
	for _, stmt := range body {
		out, err := i.evaluateStatement(stmt, env)
		if err != nil {
			return normal, err
		}
		if out.returned {
			return out, nil
		}
		i.safePoint()
	}
	return normal, nil
}

func (i *Interpreter) executeBlock(block *ast.Block, env *runtime.Environment) (outcome, error) {
	if block == nil {
		return normal, nil
	}
	return i.executeStatements(block.Body, env)
}

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (outcome, error) {
	switch n := node.(type) {
	case *ast.Assignment:
		return normal, i.evaluateAssignment(n, env)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.RepeatTimes:
		return i.evaluateRepeatTimes(n, env)
	case *ast.RepeatUntil:
		return i.evaluateRepeatUntil(n, env)
	case *ast.ForEach:
		return i.evaluateForEach(n, env)
	case *ast.ProcedureDefinition:
		proc := i.heap.NewProcedure(n, env)
		env.Define(n.ID.Name, proc)
		return normal, nil
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env)
	case ast.Expression:
		mark := i.heap.PinMark()
		defer i.heap.Release(mark)
		_, err := i.evaluateExpression(n, env)
		return normal, err
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateAssignment(n *ast.Assignment, env *runtime.Environment) error {
	mark := i.heap.PinMark()
	defer i.heap.Release(mark)

	switch target := n.Target.(type) {
	case *ast.Identifier:
		value, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return err
		}
		env.Define(target.Name, value)
		return nil
	case *ast.IndexExpression:
		list, err := i.evaluateList(target.Object, env)
		if err != nil {
			return err
		}
		i.heap.Pin(list)
		pos, err := i.evaluateListIndex(target.Index, list, env)
		if err != nil {
			return err
		}
		value, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return err
		}
		if value.Kind() == runtime.KindVoid {
			return i.errorf(n.Value, "cannot store a void value in a list")
		}
		if !list.Set(pos, value) {
			return i.errorf(target.Index, "list index %d out of range for list of length %d", pos, list.Len())
		}
		return nil
	default:
		return i.errorf(n.Target, "cannot assign to %s", n.Target.NodeType())
	}
}

func (i *Interpreter) evaluateIfStatement(n *ast.IfStatement, env *runtime.Environment) (outcome, error) {
	cond, err := i.evaluateCondition(n.Condition, "IF", env)
	if err != nil {
		return normal, err
	}
	if cond {
		return i.executeBlock(n.Then, env)
	}
	return i.executeBlock(n.Else, env)
}

func (i *Interpreter) evaluateRepeatTimes(n *ast.RepeatTimes, env *runtime.Environment) (outcome, error) {
	countVal, err := i.evaluateExpression(n.Count, env)
	if err != nil {
		return normal, err
	}
	count, ok := runtime.AsInteger(countVal)
	if !ok || count < 0 {
		return normal, i.errorf(n.Count, "REPEAT count must be a non-negative whole number, got %s", describe(countVal))
	}
	for k := 0; k < count; k++ {
		out, err := i.executeBlock(n.Body, env)
		if err != nil || out.returned {
			return out, err
		}
	}
	return normal, nil
}

func (i *Interpreter) evaluateRepeatUntil(n *ast.RepeatUntil, env *runtime.Environment) (outcome, error) {
	for {
		out, err := i.executeBlock(n.Body, env)
		if err != nil || out.returned {
			return out, err
		}
		done, err := i.evaluateCondition(n.Condition, "REPEAT UNTIL", env)
		if err != nil {
			return normal, err
		}
		if done {
			return normal, nil
		}
	}
}

// evaluateForEach reads the length once; elements are re-read on every
// iteration and the loop ends early if the list shrinks.
func (i *Interpreter) evaluateForEach(n *ast.ForEach, env *runtime.Environment) (outcome, error) {
	mark := i.heap.PinMark()
	defer i.heap.Release(mark)

	listVal, err := i.evaluateExpression(n.List, env)
	if err != nil {
		return normal, err
	}
	list, ok := listVal.(*runtime.ListValue)
	if !ok {
		return normal, i.errorf(n.List, "FOR EACH expects a list, got %s", describe(listVal))
	}
	i.heap.Pin(list)

	length := list.Len()
	for pos := 1; pos <= length; pos++ {
		item, ok := list.At(pos)
		if !ok {
			break
		}
		env.Define(n.Variable.Name, item)
		out, err := i.executeBlock(n.Body, env)
		if err != nil || out.returned {
			return out, err
		}
	}
	return normal, nil
}

func (i *Interpreter) evaluateReturnStatement(n *ast.ReturnStatement, env *runtime.Environment) (outcome, error) {
	if n.Argument == nil {
		return outcome{returned: true, value: runtime.Void}, nil
	}
	value, err := i.evaluateExpression(n.Argument, env)
	if err != nil {
		return normal, err
	}
	return outcome{returned: true, value: value}, nil
}

// evaluateCondition evaluates an expression that must produce a boolean.
func (i *Interpreter) evaluateCondition(expr ast.Expression, construct string, env *runtime.Environment) (bool, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return false, err
	}
	b, ok := runtime.AsBool(val)
	if !ok {
		return false, i.errorf(expr, "%s condition must be a boolean, got %s", construct, describe(val))
	}
	return b, nil
}
