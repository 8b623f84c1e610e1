package interpreter

import (
	"strconv"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateCall(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	mark := i.heap.PinMark()
	defer i.heap.Release(mark)

	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	i.heap.Pin(callee)

	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		i.heap.Pin(val)
		args = append(args, val)
	}

	switch fn := callee.(type) {
	case *runtime.ProcedureValue:
		return i.callProcedure(fn, args, call)
	case *runtime.NativeFunctionValue:
		return i.callNative(fn, args, call)
	default:
		return nil, i.errorf(call.Callee, "cannot call %s", describe(callee))
	}
}

// callProcedure runs a user procedure in a fresh scope chained to the scope
// it was declared in. A missing RETURN yields Void.
func (i *Interpreter) callProcedure(fn *runtime.ProcedureValue, args []runtime.Value, call *ast.CallExpression) (runtime.Value, error) {
	params := fn.Declaration.Params
	if len(args) != len(params) {
		return nil, i.errorf(call, "procedure `%s` expects %s, got %d", fn.Name(), plural(len(params), "argument"), len(args))
	}
	if i.heap.Depth() >= maxCallDepth {
		return nil, i.errorf(call, "maximum call depth of %d exceeded", maxCallDepth)
	}

	scope := i.heap.NewEnvironment(fn.Closure)
	for idx, param := range params {
		scope.Define(param.Name, args[idx])
	}

	i.heap.PushFrame(scope)
	i.callStack = append(i.callStack, call.Span())
	defer func() {
		i.callStack = i.callStack[:len(i.callStack)-1]
		i.heap.PopFrame()
	}()

	out, err := i.executeBlock(fn.Declaration.Body, scope)
	if err != nil {
		return nil, err
	}
	if out.returned && out.value != nil {
		return out.value, nil
	}
	return runtime.Void, nil
}

// callNative invokes a builtin after checking its arity. Builtins never
// receive Void.
func (i *Interpreter) callNative(fn *runtime.NativeFunctionValue, args []runtime.Value, call *ast.CallExpression) (runtime.Value, error) {
	if fn.Arity >= 0 && len(args) != fn.Arity {
		return nil, i.errorf(call, "%s expects %s, got %d", fn.Name, plural(fn.Arity, "argument"), len(args))
	}
	for idx, arg := range args {
		if arg.Kind() == runtime.KindVoid {
			return nil, i.errorf(call.Arguments[idx], "%s cannot use a procedure result that has no value", fn.Name)
		}
	}
	result, err := fn.Impl(args)
	if err != nil {
		return nil, i.builtinError(err, call)
	}
	if result == nil {
		return runtime.Void, nil
	}
	return result, nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
