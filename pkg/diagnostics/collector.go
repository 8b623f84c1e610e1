package diagnostics

import "aps/interpreter-go/pkg/ast"

// Collector accumulates diagnostics in the order they are reported.
type Collector struct {
	items []Diagnostic
}

// Add appends a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.items = append(c.items, d)
}

// Errorf records an error with a single primary label.
func (c *Collector) Errorf(span ast.Span, label string, format string, args ...any) {
	c.Add(Error(format, args...).WithPrimary(span, label))
}

// Diagnostics returns a copy of the collected diagnostics; never nil.
func (c *Collector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}
