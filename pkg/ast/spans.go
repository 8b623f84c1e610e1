package ast

// Span is a half-open [Start, End) byte range into the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Cover returns the smallest span containing both a and b.
func Cover(a, b Span) Span {
	out := a
	if b.Start < out.Start {
		out.Start = b.Start
	}
	if b.End > out.End {
		out.End = b.End
	}
	return out
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// WithSpan sets the span on node and returns it, so constructors can be chained.
func WithSpan[T Node](node T, span Span) T {
	SetSpan(node, span)
	return node
}
