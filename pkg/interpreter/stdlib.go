package interpreter

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"aps/interpreter-go/pkg/runtime"
)

// numericInput matches lines INPUT converts to numbers.
var numericInput = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ErrNoInput is returned to programs that call INPUT without an input source.
var ErrNoInput = errors.New("no input available")

func (i *Interpreter) registerBuiltins() {
	builtins := []*runtime.NativeFunctionValue{
		{Name: "LENGTH", Arity: 1, Impl: i.builtinLength},
		{Name: "INSERT", Arity: 3, Impl: i.builtinInsert},
		{Name: "APPEND", Arity: 2, Impl: i.builtinAppend},
		{Name: "REMOVE", Arity: 2, Impl: i.builtinRemove},
		{Name: "DISPLAY", Arity: -1, Impl: i.builtinDisplay},
		{Name: "INPUT", Arity: -1, Impl: i.builtinInput},
		{Name: "RANDOM", Arity: 2, Impl: i.builtinRandom},
	}
	for _, b := range builtins {
		i.global.Define(b.Name, b)
	}
}

func listArg(name string, args []runtime.Value, idx int) (*runtime.ListValue, error) {
	list, ok := args[idx].(*runtime.ListValue)
	if !ok {
		return nil, argErrorf(idx, "%s expects a list, got %s", name, describe(args[idx]))
	}
	return list, nil
}

// positionArg validates a 1-based position in [1, limit].
func positionArg(name string, args []runtime.Value, idx int, limit int) (int, error) {
	pos, ok := runtime.AsInteger(args[idx])
	if !ok {
		return 0, argErrorf(idx, "%s index must be a whole number, got %s", name, describe(args[idx]))
	}
	if pos < 1 || pos > limit {
		return 0, argErrorf(idx, "%s index %d out of range (valid 1 to %d)", name, pos, limit)
	}
	return pos, nil
}

func (i *Interpreter) builtinLength(args []runtime.Value) (runtime.Value, error) {
	list, err := listArg("LENGTH", args, 0)
	if err != nil {
		return nil, err
	}
	return runtime.NumberValue{Val: float64(list.Len())}, nil
}

func (i *Interpreter) builtinInsert(args []runtime.Value) (runtime.Value, error) {
	list, err := listArg("INSERT", args, 0)
	if err != nil {
		return nil, err
	}
	pos, err := positionArg("INSERT", args, 1, list.Len()+1)
	if err != nil {
		return nil, err
	}
	list.Insert(pos, args[2])
	return runtime.Void, nil
}

func (i *Interpreter) builtinAppend(args []runtime.Value) (runtime.Value, error) {
	list, err := listArg("APPEND", args, 0)
	if err != nil {
		return nil, err
	}
	list.Insert(list.Len()+1, args[1])
	return runtime.Void, nil
}

func (i *Interpreter) builtinRemove(args []runtime.Value) (runtime.Value, error) {
	list, err := listArg("REMOVE", args, 0)
	if err != nil {
		return nil, err
	}
	if list.Len() == 0 {
		return nil, argErrorf(0, "REMOVE from an empty list")
	}
	pos, err := positionArg("REMOVE", args, 1, list.Len())
	if err != nil {
		return nil, err
	}
	list.Remove(pos)
	return runtime.Void, nil
}

func (i *Interpreter) builtinDisplay(args []runtime.Value) (runtime.Value, error) {
	if err := i.out.write(joinValues(args) + "\n"); err != nil {
		return nil, fmt.Errorf("DISPLAY: %w", err)
	}
	return runtime.Void, nil
}

// builtinInput records the prompt, waits for one line from the host and
// returns it as a Number when it looks like one.
func (i *Interpreter) builtinInput(args []runtime.Value) (runtime.Value, error) {
	prompt := joinValues(args)
	i.out.record(prompt)
	if i.input == nil {
		return nil, fmt.Errorf("INPUT: %w", ErrNoInput)
	}
	line, err := i.input(prompt)
	if err != nil {
		return nil, fmt.Errorf("INPUT: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if i.echo {
		if err := i.out.write(line + "\n"); err != nil {
			return nil, fmt.Errorf("INPUT: %w", err)
		}
	}
	i.logger.Debug("input received", "bytes", len(line))
	return parseInput(line), nil
}

func parseInput(line string) runtime.Value {
	trimmed := strings.TrimSpace(line)
	if numericInput.MatchString(trimmed) {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return runtime.NumberValue{Val: n}
		}
	}
	return runtime.StringValue{Val: trimmed}
}

// builtinRandom returns a uniformly random whole number in [a, b] after
// rounding both bounds.
func (i *Interpreter) builtinRandom(args []runtime.Value) (runtime.Value, error) {
	lo, ok := runtime.AsNumber(args[0])
	if !ok {
		return nil, argErrorf(0, "RANDOM expects numbers, got %s", describe(args[0]))
	}
	hi, ok := runtime.AsNumber(args[1])
	if !ok {
		return nil, argErrorf(1, "RANDOM expects numbers, got %s", describe(args[1]))
	}
	a, b := math.Round(lo), math.Round(hi)
	if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
		return nil, argErrorf(0, "RANDOM bounds must be finite")
	}
	if a > b {
		return nil, argErrorf(1, "RANDOM upper bound %s is below lower bound %s", runtime.FormatNumber(b), runtime.FormatNumber(a))
	}
	if b-a > 1<<53 {
		return nil, argErrorf(1, "RANDOM range is too large")
	}
	span := int64(b - a)
	return runtime.NumberValue{Val: a + float64(i.rng.Int64N(span+1))}, nil
}

func joinValues(args []runtime.Value) string {
	parts := make([]string, len(args))
	for idx, arg := range args {
		parts[idx] = runtime.Format(arg)
	}
	return strings.Join(parts, " ")
}
