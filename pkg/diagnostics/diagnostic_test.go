package diagnostics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"aps/interpreter-go/pkg/ast"
)

func TestDiagnosticJSONShape(t *testing.T) {
	diag := Error("expected `)`").
		WithPrimary(ast.Span{Start: 4, End: 5}, "here").
		WithSecondary(ast.Span{Start: 0, End: 1}, "")
	data, err := json.Marshal(diag)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"message":"expected ` + "`)`" + `","labels":[{"range":{"start":4,"end":5},"message":"here","primary":true},{"range":{"start":0,"end":1},"primary":false}],"severity":"error"}`
	if string(data) != want {
		t.Fatalf("json mismatch\n got: %s\nwant: %s", data, want)
	}

	var decoded Diagnostic
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Severity != SeverityError || len(decoded.Labels) != 2 || !decoded.Labels[0].Primary {
		t.Fatalf("unexpected decoded diagnostic %+v", decoded)
	}
}

func TestSeverityRejectsUnknownText(t *testing.T) {
	var s Severity
	if err := s.UnmarshalText([]byte("warning")); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
}

func TestWithPrimaryDoesNotAliasLabels(t *testing.T) {
	base := Error("boom").WithPrimary(ast.Span{Start: 0, End: 1}, "a")
	first := base.WithSecondary(ast.Span{Start: 1, End: 2}, "b")
	second := base.WithSecondary(ast.Span{Start: 2, End: 3}, "c")
	if first.Labels[1].Message != "b" || second.Labels[1].Message != "c" {
		t.Fatalf("labels aliased: %+v / %+v", first.Labels, second.Labels)
	}
}

func TestCollectorTracksErrors(t *testing.T) {
	var c Collector
	if len(c.Diagnostics()) != 0 {
		t.Fatalf("expected empty collector")
	}
	if diags := c.Diagnostics(); diags == nil {
		t.Fatalf("expected non-nil slice")
	}
	c.Add(Info("note"))
	if HasErrors(c.Diagnostics()) {
		t.Fatalf("info should not count as error")
	}
	c.Errorf(ast.Span{Start: 2, End: 3}, "here", "unexpected %q", "}")
	if diags := c.Diagnostics(); !HasErrors(diags) || len(diags) != 2 {
		t.Fatalf("expected two diagnostics with an error, got %v", c.Diagnostics())
	}
	if got := c.Diagnostics()[1].Message; got != `unexpected "}"` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestLineCol(t *testing.T) {
	src := "a <- 1\nb ← 2\n"
	cases := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{5, 1, 6},
		{7, 2, 1},
		{strings.Index(src, "2"), 2, 5},
		{len(src) + 10, 3, 1},
	}
	for _, tc := range cases {
		line, col := LineCol(src, tc.offset)
		if line != tc.line || col != tc.col {
			t.Fatalf("LineCol(%d) = %d:%d, want %d:%d", tc.offset, line, col, tc.line, tc.col)
		}
	}
}

func TestRenderPlain(t *testing.T) {
	src := "x <- 1\nIF (x > 1 {\n"
	start := strings.Index(src, "{")
	diag := Error("expected `)`, found `{`").WithPrimary(ast.Span{Start: start, End: start + 1}, "expected `)`")

	var buf bytes.Buffer
	if err := Render(&buf, src, []Diagnostic{diag}, RenderOptions{Name: "main.aps"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"error: expected `)`, found `{`",
		" --> main.aps:2:11",
		"  |",
		"2 | IF (x > 1 {",
		"  |           ^ expected `)`",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("render mismatch\n got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRenderColorAndNoLabels(t *testing.T) {
	out := Format("", Info("called here"), RenderOptions{Color: true})
	if !strings.Contains(out, ansiReset) || !strings.Contains(out, "info") {
		t.Fatalf("expected colored info header, got %q", out)
	}
	plain := Format("", Error("boom"), RenderOptions{})
	if plain != "error: boom\n" {
		t.Fatalf("unexpected plain output %q", plain)
	}
}

func TestRenderUnderlinesWholeRange(t *testing.T) {
	src := "DISPLAY(missing)"
	start := strings.Index(src, "missing")
	diag := Error("undefined variable `missing`").WithPrimary(ast.Span{Start: start, End: start + len("missing")}, "")
	out := Format(src, diag, RenderOptions{})
	if !strings.Contains(out, "        ^^^^^^^\n") {
		t.Fatalf("expected seven carets under identifier, got:\n%s", out)
	}
}
