package interpreter

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/runtime"
)

// maxCallDepth bounds procedure recursion so runaway programs fail with a
// runtime error instead of exhausting the Go stack.
const maxCallDepth = 2000

// InputFunc reads one line of input for INPUT. It receives the rendered
// prompt and returns the line without its terminator.
type InputFunc func(prompt string) (string, error)

// Options configures a single execution.
type Options struct {
	// Stdout receives output as it is produced. It may be nil.
	Stdout io.Writer
	// Input serves INPUT calls. When nil, INPUT fails.
	Input InputFunc
	// EchoInput appends each line read by INPUT, plus a line break, to the
	// output.
	EchoInput bool
	// GCThreshold is the number of heap allocations between collections.
	// Zero selects runtime.DefaultGCThreshold; negative disables automatic
	// collection.
	GCThreshold int
	// Rand drives RANDOM. When nil a time-seeded source is used.
	Rand *rand.Rand
	// Logger receives debug records. When nil logging is discarded.
	Logger *slog.Logger
}

// Interpreter evaluates one APS program. It is not safe for concurrent use.
type Interpreter struct {
	heap      *runtime.Heap
	global    *runtime.Environment
	out       outputLog
	input     InputFunc
	echo      bool
	rng       *rand.Rand
	logger    *slog.Logger
	callStack []ast.Span
}

// New returns an interpreter with a fresh global scope holding the builtins.
func New(opts Options) *Interpreter {
	threshold := opts.GCThreshold
	switch {
	case threshold == 0:
		threshold = runtime.DefaultGCThreshold
	case threshold < 0:
		threshold = 0
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	heap := runtime.NewHeap(threshold)
	global := heap.NewEnvironment(nil)
	heap.SetGlobal(global)

	i := &Interpreter{
		heap:   heap,
		global: global,
		out:    outputLog{stream: opts.Stdout},
		input:  opts.Input,
		echo:   opts.EchoInput,
		rng:    rng,
		logger: logger,
	}
	i.registerBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter's global scope.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Output returns everything written so far.
func (i *Interpreter) Output() string {
	return i.out.String()
}

// HeapStats reports collector activity.
func (i *Interpreter) HeapStats() runtime.Stats {
	return i.heap.Stats()
}

// Run executes the program's statements in the global scope. A RETURN at top
// level ends the program normally.
func (i *Interpreter) Run(program *ast.Program) error {
	if program == nil {
		return nil
	}
	_, err := i.executeStatements(program.Body, i.global)
	return err
}

// safePoint gives the collector a chance to run between statements.
func (i *Interpreter) safePoint() {
	stats, ran := i.heap.SafePoint()
	if !ran {
		return
	}
	i.logger.Debug("gc cycle",
		slog.Int("marked", stats.Marked),
		slog.Int("reclaimed", stats.Reclaimed),
		slog.Int("live", stats.Live),
	)
}
