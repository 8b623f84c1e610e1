// Package diagnostics defines the span-anchored messages shared by the lexer,
// parser and evaluator, plus a collector and a plain-text renderer.
package diagnostics

import (
	"fmt"

	"aps/interpreter-go/pkg/ast"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeverityError, SeverityInfo:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("diagnostics: unknown severity %d", int(s))
	}
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("diagnostics: unknown severity %q", string(text))
	}
	return nil
}

// Label anchors part of a diagnostic to a byte range of the source.
type Label struct {
	Range   ast.Span `json:"range"`
	Message string   `json:"message,omitempty"`
	Primary bool     `json:"primary"`
}

// Diagnostic is a single lex, parse or runtime report.
type Diagnostic struct {
	Message  string   `json:"message"`
	Labels   []Label  `json:"labels"`
	Severity Severity `json:"severity"`
}

// Error starts an error diagnostic with the given message.
func Error(format string, args ...any) Diagnostic {
	return Diagnostic{Message: sprintf(format, args...), Severity: SeverityError}
}

// Info starts an informational diagnostic with the given message.
func Info(format string, args ...any) Diagnostic {
	return Diagnostic{Message: sprintf(format, args...), Severity: SeverityInfo}
}

// WithPrimary returns a copy of d with a primary label appended.
func (d Diagnostic) WithPrimary(span ast.Span, message string) Diagnostic {
	d.Labels = append(append([]Label(nil), d.Labels...), Label{Range: span, Message: message, Primary: true})
	return d
}

// WithSecondary returns a copy of d with a secondary label appended.
func (d Diagnostic) WithSecondary(span ast.Span, message string) Diagnostic {
	d.Labels = append(append([]Label(nil), d.Labels...), Label{Range: span, Message: message})
	return d
}

// PrimarySpan returns the range of the first primary label, or of the first
// label when none is marked primary.
func (d Diagnostic) PrimarySpan() (ast.Span, bool) {
	for _, label := range d.Labels {
		if label.Primary {
			return label.Range, true
		}
	}
	if len(d.Labels) > 0 {
		return d.Labels[0].Range, true
	}
	return ast.Span{}, false
}

func (d Diagnostic) String() string {
	if span, ok := d.PrimarySpan(); ok {
		return fmt.Sprintf("%s %d..%d: %s", d.Severity, span.Start, span.End, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// HasErrors reports whether any diagnostic in the list is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
