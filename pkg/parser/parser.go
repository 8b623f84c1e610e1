// Package parser builds an APS syntax tree from source text. The parser is
// error tolerant: it always returns a best-effort program along with every
// lexer and parser diagnostic it produced.
package parser

import (
	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/diagnostics"
	"aps/interpreter-go/pkg/lexer"
)

// Result is the outcome of parsing one source file.
type Result struct {
	Program     *ast.Program
	Diagnostics []diagnostics.Diagnostic
	// Structural is set when at least one diagnostic makes the tree unsafe to
	// execute. Superficial diagnostics (statement layout, RETURN placement,
	// repeated parameter names) leave it false.
	Structural bool
}

// Parse lexes and parses source.
func Parse(source string) Result {
	tokens, lexDiags := lexer.Tokenize(source)
	p := &Parser{tokens: tokens}
	for _, d := range lexDiags {
		p.diags.Add(d)
	}
	p.structural = len(lexDiags) > 0

	program := p.parseProgram()
	program = ast.WithSpan(program, ast.Span{Start: 0, End: len(source)})
	return Result{
		Program:     program,
		Diagnostics: p.diags.Diagnostics(),
		Structural:  p.structural,
	}
}

// Parser walks a token slice produced by the lexer.
type Parser struct {
	tokens     []lexer.Token
	pos        int
	diags      diagnostics.Collector
	structural bool
	procDepth  int
}

func (p *Parser) parseProgram() *ast.Program {
	body := make([]ast.Statement, 0)
	for !p.atEOF() {
		if p.peek().Is(lexer.Delimiter, "}") {
			p.errorAt(p.peek().Span, "unmatched `}`", "unexpected `}`")
			p.advance()
			continue
		}
		if stmt := p.parseStatementLine(); stmt != nil {
			body = append(body, stmt)
		}
	}
	return ast.NewProgram(body)
}

// parseStatementLine parses one statement, recovers when it fails and checks
// that the next statement starts on its own line.
func (p *Parser) parseStatementLine() ast.Statement {
	start := p.pos
	stmt := p.parseStatement()
	if stmt == nil {
		p.synchronize()
		if p.pos == start {
			p.advance()
		}
		return nil
	}
	next := p.peek()
	if next.Kind != lexer.EOF && !next.Is(lexer.Delimiter, "}") && !next.NewlineBefore {
		p.warnAt(next.Span, "", "expected new line after statement, found %s", next.Describe())
	}
	return stmt
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) atEOF() bool {
	return p.peek().Kind == lexer.EOF
}
