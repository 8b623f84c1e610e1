package interpreter

import (
	"errors"
	"log/slog"

	"aps/interpreter-go/pkg/diagnostics"
	"aps/interpreter-go/pkg/parser"
	"aps/interpreter-go/pkg/runtime"
)

// Result is the outcome of Interpret.
type Result struct {
	// Output holds everything DISPLAY and INPUT produced, up to the failure
	// point when the run failed.
	Output string
	// Diagnostics merges lexer, parser and runtime diagnostics.
	Diagnostics []diagnostics.Diagnostic
	// Failed is true when the program did not run to completion.
	Failed bool
	// Stats reports collector activity for the run.
	Stats runtime.Stats
}

// Validate lexes and parses source and returns every diagnostic found.
func Validate(source string) []diagnostics.Diagnostic {
	return parser.Parse(source).Diagnostics
}

// Interpret parses and runs source. Structural parse errors stop the program
// before it starts; superficial ones are reported but the program still runs.
func Interpret(source string, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsed := parser.Parse(source)
	logger.Debug("parsed program",
		slog.Int("diagnostics", len(parsed.Diagnostics)),
		slog.Bool("structural", parsed.Structural),
	)
	result := Result{Diagnostics: parsed.Diagnostics}
	if parsed.Structural {
		result.Failed = true
		return result
	}

	interp := New(opts)
	logger.Debug("run started", slog.Int("statements", len(parsed.Program.Body)))
	err := interp.Run(parsed.Program)
	if err != nil {
		result.Failed = true
		var rt *RuntimeError
		if errors.As(err, &rt) {
			result.Diagnostics = append(result.Diagnostics, rt.Diagnostics()...)
		} else {
			result.Diagnostics = append(result.Diagnostics, diagnostics.Error("%s", err.Error()))
		}
	}
	result.Output = interp.Output()
	result.Stats = interp.HeapStats()
	logger.Debug("run finished",
		slog.Bool("failed", result.Failed),
		slog.Int("output_bytes", len(result.Output)),
		slog.Int("gc_cycles", result.Stats.Cycles),
	)
	return result
}
