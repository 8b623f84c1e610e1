package ast

import "testing"

func TestSetSpanAnnotatesNodes(t *testing.T) {
	call := Call("DISPLAY", Num(1))
	SetSpan(call, Span{Start: 3, End: 13})
	if got, want := call.Span(), (Span{Start: 3, End: 13}); got != want {
		t.Fatalf("span mismatch: got %+v want %+v", got, want)
	}
	if got := call.Arguments[0].Span(); got != (Span{}) {
		t.Fatalf("expected argument span to stay zero, got %+v", got)
	}
	SetSpan(nil, Span{Start: 1, End: 2})
}

func TestCoverSpansBothInputs(t *testing.T) {
	got := Cover(Span{Start: 10, End: 12}, Span{Start: 4, End: 6})
	if want := (Span{Start: 4, End: 12}); got != want {
		t.Fatalf("Cover = %+v, want %+v", got, want)
	}
	if got.Len() != 8 {
		t.Fatalf("Len = %d, want 8", got.Len())
	}
}

func TestWithSpanReturnsSameNode(t *testing.T) {
	id := ID("x")
	if WithSpan(id, Span{Start: 0, End: 1}) != id {
		t.Fatalf("WithSpan should return its argument")
	}
	if id.Span().End != 1 {
		t.Fatalf("expected span to be set, got %+v", id.Span())
	}
}
