package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"aps/interpreter-go/pkg/diagnostics"
	"aps/interpreter-go/pkg/driver"
	"aps/interpreter-go/pkg/interpreter"
	"aps/interpreter-go/pkg/runtime"
)

const cliToolVersion = "aps 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "check":
		return checkEntry(args[1:])
	default:
		return runEntry(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  aps run [flags] <file.aps>")
	fmt.Fprintln(os.Stderr, "  aps check [flags] <file.aps>")
	fmt.Fprintln(os.Stderr, "  aps <file.aps>")
	fmt.Fprintln(os.Stderr, "  aps version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  --format=text|json       diagnostics format")
	fmt.Fprintln(os.Stderr, "  --color=auto|always|never")
	fmt.Fprintln(os.Stderr, "  --gc-stats               print heap statistics after the run")
	fmt.Fprintln(os.Stderr, "  --gc-threshold=N         allocations between collections (0 disables)")
	fmt.Fprintln(os.Stderr, "  --seed=N                 make RANDOM deterministic")
	fmt.Fprintln(os.Stderr, "  --echo                   copy INPUT answers to the output")
	fmt.Fprintln(os.Stderr, "  --debug                  structured debug logs on stderr")
}

// settings is aps.yml merged with the command line.
type settings struct {
	path      string
	format    string
	color     bool
	gcStats   bool
	threshold int
	seed      uint64
	echo      bool
	logger    *slog.Logger
}

type cliFlags struct {
	format    string
	color     string
	gcStats   bool
	threshold int
	seed      uint64
	echo      bool
	debug     bool
}

// parseSettings parses flags for subcommand name and resolves the source
// path. It returns false after reporting a usage error.
func parseSettings(name string, args []string) (*settings, bool) {
	var f cliFlags
	fs := flag.NewFlagSet("aps "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&f.format, "format", "", "diagnostics format (text or json)")
	fs.StringVar(&f.color, "color", "", "color mode (auto, always or never)")
	fs.BoolVar(&f.gcStats, "gc-stats", false, "print heap statistics after the run")
	fs.IntVar(&f.threshold, "gc-threshold", 0, "allocations between collections, 0 disables")
	fs.Uint64Var(&f.seed, "seed", 0, "seed for RANDOM")
	fs.BoolVar(&f.echo, "echo", false, "copy INPUT answers to the output")
	fs.BoolVar(&f.debug, "debug", false, "structured debug logs on stderr")
	if err := fs.Parse(args); err != nil {
		return nil, false
	}
	if fs.NArg() != 1 {
		if fs.NArg() == 0 {
			fmt.Fprintf(os.Stderr, "aps %s requires a source file\n", name)
		} else {
			fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args()[1:], " "))
		}
		return nil, false
	}
	path := fs.Arg(0)

	cfg, err := driver.LoadNearest(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return nil, false
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if set["format"] {
		cfg.Diagnostics.Format = f.format
	}
	if set["color"] {
		cfg.Diagnostics.Color = f.color
	}
	if set["gc-threshold"] {
		cfg.GC.Threshold = f.threshold
	}
	if set["seed"] {
		cfg.Random.Seed = f.seed
	}
	if set["echo"] {
		cfg.Input.Echo = f.echo
	}
	if set["gc-stats"] {
		cfg.GC.Stats = f.gcStats
	}
	if set["debug"] {
		cfg.Logging.Debug = f.debug
	}
	if !driver.ValidFormat(cfg.Diagnostics.Format) {
		fmt.Fprintf(os.Stderr, "unknown --format %q (want text or json)\n", cfg.Diagnostics.Format)
		return nil, false
	}
	if !driver.ValidColor(cfg.Diagnostics.Color) {
		fmt.Fprintf(os.Stderr, "unknown --color %q (want auto, always or never)\n", cfg.Diagnostics.Color)
		return nil, false
	}
	if cfg.GC.Threshold < 0 {
		fmt.Fprintf(os.Stderr, "--gc-threshold must be zero or positive, got %d\n", cfg.GC.Threshold)
		return nil, false
	}

	s := &settings{
		path:      path,
		format:    cfg.Diagnostics.Format,
		color:     useColor(cfg.Diagnostics.Color, os.Stderr),
		gcStats:   cfg.GC.Stats,
		threshold: cfg.GC.Threshold,
		seed:      cfg.Random.Seed,
		echo:      cfg.Input.Echo,
		logger:    slog.New(slog.DiscardHandler),
	}
	if cfg.Logging.Debug {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		s.logger = slog.New(handler).With(slog.String("run_id", uuid.NewString()))
		if cfg.Path != "" {
			s.logger.Debug("loaded config", slog.String("path", cfg.Path))
		}
	}
	return s, true
}

func useColor(mode string, w *os.File) bool {
	switch mode {
	case driver.ColorAlways:
		return true
	case driver.ColorNever:
		return false
	default:
		fd := w.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

func runEntry(args []string) int {
	s, ok := parseSettings("run", args)
	if !ok {
		return 1
	}
	source, err := os.ReadFile(s.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", s.path, err)
		return 1
	}

	input, closeInput := newInputReader(os.Stdin, os.Stdout)
	defer closeInput()

	opts := interpreter.Options{
		Stdout:      os.Stdout,
		Input:       input,
		EchoInput:   s.echo,
		GCThreshold: s.threshold,
		Logger:      s.logger,
	}
	if s.threshold == 0 {
		opts.GCThreshold = -1
	}
	if s.seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(s.seed, s.seed))
	}

	res := interpreter.Interpret(string(source), opts)
	if len(res.Diagnostics) > 0 || s.format == driver.FormatJSON {
		if err := reportDiagnostics(s, string(source), res.Diagnostics); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write diagnostics: %v\n", err)
			return 1
		}
	}
	if s.gcStats {
		printHeapStats(res.Stats)
	}
	if res.Failed || diagnostics.HasErrors(res.Diagnostics) {
		return 1
	}
	return 0
}

func checkEntry(args []string) int {
	s, ok := parseSettings("check", args)
	if !ok {
		return 1
	}
	source, err := os.ReadFile(s.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", s.path, err)
		return 1
	}
	diags := interpreter.Validate(string(source))
	s.logger.Debug("validated", slog.String("path", s.path), slog.Int("diagnostics", len(diags)))
	if s.format == driver.FormatJSON {
		if err := writeJSON(os.Stdout, diags); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write diagnostics: %v\n", err)
			return 1
		}
	} else if len(diags) == 0 {
		fmt.Fprintf(os.Stdout, "%s: ok\n", s.path)
	} else if err := reportDiagnostics(s, string(source), diags); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write diagnostics: %v\n", err)
		return 1
	}
	if diagnostics.HasErrors(diags) {
		return 1
	}
	return 0
}

func reportDiagnostics(s *settings, source string, diags []diagnostics.Diagnostic) error {
	if s.format == driver.FormatJSON {
		return writeJSON(os.Stderr, diags)
	}
	return diagnostics.Render(os.Stderr, source, diags, diagnostics.RenderOptions{
		Name:  s.path,
		Color: s.color,
	})
}

func writeJSON(w io.Writer, diags []diagnostics.Diagnostic) error {
	if diags == nil {
		diags = []diagnostics.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(diags); err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	return nil
}

func printHeapStats(stats runtime.Stats) {
	fmt.Fprintf(os.Stderr, "gc: %s cycles, %s allocations, %s reclaimed, %s live\n",
		humanize.Comma(int64(stats.Cycles)),
		humanize.Comma(int64(stats.Allocations)),
		humanize.Comma(int64(stats.Reclaimed)),
		humanize.Comma(int64(stats.Live)),
	)
}

var errEndOfInput = errors.New("end of input")
