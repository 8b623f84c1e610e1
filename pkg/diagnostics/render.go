package diagnostics

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiBlue   = "\x1b[34m"
	ansiCyan   = "\x1b[36m"
	ansiYellow = "\x1b[33m"
)

// RenderOptions controls text rendering.
type RenderOptions struct {
	// Name is shown in location lines; defaults to "<source>".
	Name  string
	Color bool
}

// LineCol converts a byte offset into a 1-based line and a 1-based column
// counted in runes. Offsets past the end clamp to the end of the source.
func LineCol(source string, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	line := 1 + strings.Count(source[:offset], "\n")
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1
	return line, utf8.RuneCountInString(source[lineStart:offset]) + 1
}

// Render writes every diagnostic as a text report:
//
//	error: expected `)`, found `{`
//	 --> main.aps:3:11
//	  |
//	3 | IF (x > 1 {
//	  |           ^ expected `)`
func Render(w io.Writer, source string, diags []Diagnostic, opts RenderOptions) error {
	for idx, d := range diags {
		if idx > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, renderOne(source, d, opts)); err != nil {
			return err
		}
	}
	return nil
}

// Format renders a single diagnostic to a string.
func Format(source string, d Diagnostic, opts RenderOptions) string {
	return renderOne(source, d, opts)
}

func renderOne(source string, d Diagnostic, opts RenderOptions) string {
	name := opts.Name
	if name == "" {
		name = "<source>"
	}
	paint := func(code, text string) string {
		if !opts.Color {
			return text
		}
		return code + text + ansiReset
	}

	var b strings.Builder
	severityColor := ansiRed
	if d.Severity == SeverityInfo {
		severityColor = ansiCyan
	}
	b.WriteString(paint(ansiBold+severityColor, d.Severity.String()))
	b.WriteString(paint(ansiBold, ": "+d.Message))
	b.WriteString("\n")

	if len(d.Labels) == 0 {
		return b.String()
	}

	maxLine := 1
	for _, label := range d.Labels {
		if line, _ := LineCol(source, label.Range.Start); line > maxLine {
			maxLine = line
		}
	}
	width := len(strconv.Itoa(maxLine))
	gutter := strings.Repeat(" ", width)

	primary, _ := d.PrimarySpan()
	line, col := LineCol(source, primary.Start)
	fmt.Fprintf(&b, "%s%s %s:%d:%d\n", gutter, paint(ansiBlue, "-->"), name, line, col)
	fmt.Fprintf(&b, "%s %s\n", gutter, paint(ansiBlue, "|"))

	for _, label := range d.Labels {
		lineNo, _ := LineCol(source, label.Range.Start)
		text, lineStart := sourceLine(source, label.Range.Start)
		start := label.Range.Start - lineStart
		end := label.Range.End - lineStart
		if start > len(text) {
			start = len(text)
		}
		if end > len(text) {
			end = len(text)
		}
		if end < start {
			end = start
		}
		marker := "-"
		markerColor := ansiBlue
		if label.Primary {
			marker = "^"
			markerColor = ansiRed
			if d.Severity == SeverityInfo {
				markerColor = ansiYellow
			}
		}
		underline := utf8.RuneCountInString(text[start:end])
		if underline == 0 {
			underline = 1
		}
		fmt.Fprintf(&b, "%*d %s %s\n", width, lineNo, paint(ansiBlue, "|"), text)
		pointer := padding(text[:start]) + strings.Repeat(marker, underline)
		if label.Message != "" {
			pointer += " " + label.Message
		}
		fmt.Fprintf(&b, "%s %s %s\n", gutter, paint(ansiBlue, "|"), paint(markerColor, pointer))
	}
	return b.String()
}

// sourceLine returns the line containing offset (without its terminator) and
// the byte offset where that line starts.
func sourceLine(source string, offset int) (string, int) {
	if offset > len(source) {
		offset = len(source)
	}
	if offset < 0 {
		offset = 0
	}
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[start:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += start
	}
	return strings.TrimRight(source[start:end], "\r"), start
}

// padding mirrors tabs so carets line up under the source text.
func padding(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
