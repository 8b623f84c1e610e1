package interpreter

import (
	"errors"
	"fmt"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/diagnostics"
)

// RuntimeError stops evaluation. Span points at the offending expression and
// Stack holds the spans of the active procedure calls, innermost first.
type RuntimeError struct {
	Message string
	Span    ast.Span
	Stack   []ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostics converts the error into an error diagnostic followed by one
// "called here" note per active call.
func (e *RuntimeError) Diagnostics() []diagnostics.Diagnostic {
	out := make([]diagnostics.Diagnostic, 0, 1+len(e.Stack))
	out = append(out, diagnostics.Error("%s", e.Message).WithPrimary(e.Span, ""))
	for _, span := range e.Stack {
		out = append(out, diagnostics.Info("called here").WithPrimary(span, ""))
	}
	return out
}

// errorf builds a RuntimeError anchored at node with the current call stack.
func (i *Interpreter) errorf(node ast.Node, format string, args ...any) error {
	return i.errorAt(node.Span(), format, args...)
}

func (i *Interpreter) errorAt(span ast.Span, format string, args ...any) error {
	stack := make([]ast.Span, len(i.callStack))
	for idx, call := range i.callStack {
		stack[len(i.callStack)-1-idx] = call
	}
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Span: span, Stack: stack}
}

// argError lets a builtin blame one of its arguments; the evaluator maps
// Index onto that argument's span.
type argError struct {
	Index   int
	Message string
}

func (e *argError) Error() string {
	return e.Message
}

func argErrorf(index int, format string, args ...any) error {
	return &argError{Index: index, Message: fmt.Sprintf(format, args...)}
}

// builtinError positions an error returned by a builtin.
func (i *Interpreter) builtinError(err error, call *ast.CallExpression) error {
	var rt *RuntimeError
	if errors.As(err, &rt) {
		return err
	}
	var arg *argError
	if errors.As(err, &arg) && arg.Index >= 0 && arg.Index < len(call.Arguments) {
		return i.errorf(call.Arguments[arg.Index], "%s", arg.Message)
	}
	return i.errorf(call, "%s", err.Error())
}
