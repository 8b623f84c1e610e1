package parser_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/diagnostics"
	"aps/interpreter-go/pkg/parser"
)

func stripSpans(node ast.Node) {
	ast.Inspect(node, func(n ast.Node) bool {
		ast.SetSpan(n, ast.Span{})
		return true
	})
}

func mustParse(t testing.TB, source string) *ast.Program {
	t.Helper()
	res := parser.Parse(source)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", source, res.Diagnostics)
	}
	if res.Structural {
		t.Fatalf("unexpected structural flag for %q", source)
	}
	return res.Program
}

func assertProgram(t testing.TB, source string, want *ast.Program) {
	t.Helper()
	got := mustParse(t, source)
	stripSpans(got)
	stripSpans(want)
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		t.Fatalf("AST mismatch for %q:\n%s", source, strings.Join(diff, "\n"))
	}
}

func messages(diags []diagnostics.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func TestParseArithmeticPrecedence(t *testing.T) {
	assertProgram(t, "age <- 20 + 5 * 2", ast.Prog(
		ast.Assign(ast.ID("age"), ast.Bin(ast.OpAdd, ast.Num(20), ast.Bin(ast.OpMul, ast.Num(5), ast.Num(2)))),
	))
	assertProgram(t, "x <- 10 - 4 - 3", ast.Prog(
		ast.Assign(ast.ID("x"), ast.Bin(ast.OpSub, ast.Bin(ast.OpSub, ast.Num(10), ast.Num(4)), ast.Num(3))),
	))
	assertProgram(t, "x <- 7 % 3 MOD 2", ast.Prog(
		ast.Assign(ast.ID("x"), ast.Bin(ast.OpMod, ast.Bin(ast.OpMod, ast.Num(7), ast.Num(3)), ast.Num(2))),
	))
}

func TestParseLogicalPrecedence(t *testing.T) {
	assertProgram(t, "ok <- NOT a = b OR c AND d", ast.Prog(
		ast.Assign(ast.ID("ok"), ast.Bin(ast.OpOr,
			ast.Un(ast.OpNot, ast.Bin(ast.OpEqual, ast.ID("a"), ast.ID("b"))),
			ast.Bin(ast.OpAnd, ast.ID("c"), ast.ID("d")),
		)),
	))
	assertProgram(t, "x <- -y * 2 ≤ 3", ast.Prog(
		ast.Assign(ast.ID("x"), ast.Bin(ast.OpLessEqual,
			ast.Bin(ast.OpMul, ast.Un(ast.OpSub, ast.ID("y")), ast.Num(2)),
			ast.Num(3),
		)),
	))
}

func TestParseListsIndexingAndCalls(t *testing.T) {
	assertProgram(t, "L <- [1, \"two\", TRUE, []]\nDISPLAY(L[2], LENGTH(L))\nL[1] ← 5", ast.Prog(
		ast.Assign(ast.ID("L"), ast.List(ast.Num(1), ast.Str("two"), ast.Bool(true), ast.List())),
		ast.Call("DISPLAY", ast.Index(ast.ID("L"), ast.Num(2)), ast.Call("LENGTH", ast.ID("L"))),
		ast.Assign(ast.Index(ast.ID("L"), ast.Num(1)), ast.Num(5)),
	))
}

func TestParseControlFlow(t *testing.T) {
	src := `
IF (x > 1) {
  DISPLAY("big")
} ELSE IF (x = 1) {
  DISPLAY("one")
}
else {
  DISPLAY("small")
}
REPEAT 3 TIMES {
  x <- x + 1
}
REPEAT UNTIL (x >= 10) {
  x <- x * 2
}
FOR EACH item IN items {
  DISPLAY(item)
}
`
	assertProgram(t, src, ast.Prog(
		ast.If(
			ast.Bin(ast.OpGreater, ast.ID("x"), ast.Num(1)),
			ast.Blk(ast.Call("DISPLAY", ast.Str("big"))),
			ast.Blk(ast.If(
				ast.Bin(ast.OpEqual, ast.ID("x"), ast.Num(1)),
				ast.Blk(ast.Call("DISPLAY", ast.Str("one"))),
				ast.Blk(ast.Call("DISPLAY", ast.Str("small"))),
			)),
		),
		ast.Times(ast.Num(3), ast.Assign(ast.ID("x"), ast.Bin(ast.OpAdd, ast.ID("x"), ast.Num(1)))),
		ast.Until(ast.Bin(ast.OpGreaterEqual, ast.ID("x"), ast.Num(10)), ast.Assign(ast.ID("x"), ast.Bin(ast.OpMul, ast.ID("x"), ast.Num(2)))),
		ast.Each("item", ast.ID("items"), ast.Call("DISPLAY", ast.ID("item"))),
	))
}

func TestParseProcedures(t *testing.T) {
	src := `PROCEDURE add (a, b) {
  RETURN a + b
}
PROCEDURE hello () {
  DISPLAY("hi")
  RETURN
}
DISPLAY(add(2, 5))`
	assertProgram(t, src, ast.Prog(
		ast.Proc("add", []string{"a", "b"}, ast.Ret(ast.Bin(ast.OpAdd, ast.ID("a"), ast.ID("b")))),
		ast.Proc("hello", nil, ast.Call("DISPLAY", ast.Str("hi")), ast.Ret(nil)),
		ast.Call("DISPLAY", ast.Call("add", ast.Num(2), ast.Num(5))),
	))
}

func TestParseLowercaseKeywords(t *testing.T) {
	assertProgram(t, "repeat 2 times { display(true) }", ast.Prog(
		ast.Times(ast.Num(2), ast.Call("display", ast.Bool(true))),
	))
}

func TestParseRecordsSpans(t *testing.T) {
	src := "x <- foo(1, 2)"
	prog := mustParse(t, src)
	assign, ok := prog.Body[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected assignment, got %T", prog.Body[0])
	}
	if got := assign.Span(); got != (ast.Span{Start: 0, End: len(src)}) {
		t.Fatalf("assignment span %+v", got)
	}
	call := assign.Value.(*ast.CallExpression)
	if got := src[call.Span().Start:call.Span().End]; got != "foo(1, 2)" {
		t.Fatalf("call span covers %q", got)
	}
	if got := src[call.Arguments[1].Span().Start:call.Arguments[1].Span().End]; got != "2" {
		t.Fatalf("argument span covers %q", got)
	}
}

func TestParseStatementsOnOneLineIsSuperficial(t *testing.T) {
	res := parser.Parse("x <- 1 y <- 2")
	if res.Structural {
		t.Fatalf("layout errors should not be structural")
	}
	if len(res.Program.Body) != 2 {
		t.Fatalf("expected both statements to be kept, got %d", len(res.Program.Body))
	}
	if got := messages(res.Diagnostics); len(got) != 1 || !strings.HasPrefix(got[0], "expected new line after statement") {
		t.Fatalf("unexpected diagnostics %v", got)
	}
}

func TestParseReturnOutsideProcedureIsSuperficial(t *testing.T) {
	res := parser.Parse("DISPLAY(1)\nRETURN")
	if res.Structural {
		t.Fatalf("RETURN at top level should not be structural")
	}
	if got := messages(res.Diagnostics); len(got) != 1 || got[0] != "RETURN outside of a procedure" {
		t.Fatalf("unexpected diagnostics %v", got)
	}
}

func TestParseDuplicateParameters(t *testing.T) {
	res := parser.Parse("PROCEDURE p (a, a) { RETURN a }")
	if res.Structural {
		t.Fatalf("duplicate parameters should not be structural")
	}
	if len(res.Diagnostics) != 1 || len(res.Diagnostics[0].Labels) != 2 {
		t.Fatalf("expected one diagnostic with two labels, got %v", res.Diagnostics)
	}
}

func TestParseMissingCloseBraceHasSecondaryLabel(t *testing.T) {
	src := "IF (x) {\n  DISPLAY(x)\n"
	res := parser.Parse(src)
	if !res.Structural {
		t.Fatalf("expected structural error")
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", res.Diagnostics)
	}
	diag := res.Diagnostics[0]
	if diag.Message != "expected `}`, found end of file" {
		t.Fatalf("unexpected message %q", diag.Message)
	}
	if len(diag.Labels) != 2 || diag.Labels[1].Primary || diag.Labels[1].Message != "block opened here" {
		t.Fatalf("unexpected labels %+v", diag.Labels)
	}
	if diag.Labels[1].Range.Start != strings.Index(src, "{") {
		t.Fatalf("secondary label should point at the opening brace: %+v", diag.Labels[1])
	}
}

func TestParseRecoversAtNextStatement(t *testing.T) {
	src := "x <- (1 + 2\ny <- 2\nIF x > {\n DISPLAY(1)\n}\nDISPLAY(y)"
	res := parser.Parse(src)
	if !res.Structural {
		t.Fatalf("expected structural errors")
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("expected two diagnostics, got %v", messages(res.Diagnostics))
	}
	if n := len(res.Program.Body); n != 2 {
		t.Fatalf("expected the two well-formed statements to survive, got %d: %# v", n, pretty.Formatter(res.Program.Body))
	}
}

func TestParseLexerErrorsAreStructural(t *testing.T) {
	res := parser.Parse("DISPLAY(\"oops)\nDISPLAY(1)")
	if !res.Structural {
		t.Fatalf("expected structural flag")
	}
	if got := messages(res.Diagnostics); len(got) != 1 || got[0] != "unterminated string literal" {
		t.Fatalf("lexer error should be reported once, got %v", got)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	res := parser.Parse("f(1) <- 2")
	if !res.Structural || len(res.Diagnostics) != 1 {
		t.Fatalf("expected one structural diagnostic, got %v", res.Diagnostics)
	}
	if !strings.HasPrefix(res.Diagnostics[0].Message, "invalid assignment target") {
		t.Fatalf("unexpected message %q", res.Diagnostics[0].Message)
	}
}

func TestParseStrayClosingBrace(t *testing.T) {
	res := parser.Parse("}\nDISPLAY(1)")
	if !res.Structural || len(res.Program.Body) != 1 {
		t.Fatalf("expected stray brace to be reported and skipped: %v", res.Diagnostics)
	}
}

func TestParseEmptyInputs(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n", "# just a comment\n# and another"} {
		prog := mustParse(t, src)
		if len(prog.Body) != 0 {
			t.Fatalf("expected empty program for %q", src)
		}
	}
}

func TestParseNeverPanicsOnGarbage(t *testing.T) {
	alphabet := []string{
		"IF", "ELSE", "REPEAT", "TIMES", "UNTIL", "FOR", "EACH", "IN", "PROCEDURE", "RETURN",
		"(", ")", "[", "]", "{", "}", ",", "<-", "+", "*", "NOT", "x", "1", "\"s\"", "\"", "\n", " ", "@", "é", "#",
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		var b strings.Builder
		n := rng.Intn(40)
		for j := 0; j < n; j++ {
			b.WriteString(alphabet[rng.Intn(len(alphabet))])
			if rng.Intn(3) == 0 {
				b.WriteByte(' ')
			}
		}
		src := b.String()
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("parser panicked on %q: %v", src, r)
				}
			}()
			res := parser.Parse(src)
			if res.Program == nil {
				t.Fatalf("nil program for %q", src)
			}
		}()
	}
}
