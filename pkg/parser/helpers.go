package parser

import (
	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/diagnostics"
	"aps/interpreter-go/pkg/lexer"
)

// errorAt records a structural diagnostic.
func (p *Parser) errorAt(span ast.Span, label string, format string, args ...any) {
	p.structural = true
	p.diags.Errorf(span, label, format, args...)
}

// warnAt records a diagnostic that does not block execution.
func (p *Parser) warnAt(span ast.Span, label string, format string, args ...any) {
	p.diags.Errorf(span, label, format, args...)
}

// unexpected reports that the current token is not what was expected. Lexer
// error tokens were already reported, so they only mark the tree structural.
func (p *Parser) unexpected(what string) {
	tok := p.peek()
	if tok.Kind == lexer.Error {
		p.structural = true
		return
	}
	p.errorAt(tok.Span, "expected "+what, "expected %s, found %s", what, tok.Describe())
}

// unclosed reports a missing closing delimiter with a secondary label on the
// token that opened it.
func (p *Parser) unclosed(closer string, opener lexer.Token, openerLabel string) {
	tok := p.peek()
	if tok.Kind == lexer.Error {
		p.structural = true
		return
	}
	p.structural = true
	p.diags.Add(diagnostics.Error("expected `%s`, found %s", closer, tok.Describe()).
		WithPrimary(tok.Span, "expected `"+closer+"`").
		WithSecondary(opener.Span, openerLabel))
}

func (p *Parser) check(kind lexer.Kind, value string) bool {
	return p.peek().Is(kind, value)
}

func (p *Parser) match(kind lexer.Kind, value string) (lexer.Token, bool) {
	if p.check(kind, value) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

// expect consumes the given token or reports it as missing.
func (p *Parser) expect(kind lexer.Kind, value string) (lexer.Token, bool) {
	if tok, ok := p.match(kind, value); ok {
		return tok, true
	}
	p.unexpected("`" + value + "`")
	return lexer.Token{}, false
}

func (p *Parser) expectKeyword(word string) (lexer.Token, bool) {
	return p.expect(lexer.Keyword, word)
}

func (p *Parser) expectIdentifier(what string) (*ast.Identifier, bool) {
	tok := p.peek()
	if tok.Kind != lexer.Identifier {
		p.unexpected(what)
		return nil, false
	}
	p.advance()
	return ast.WithSpan(ast.NewIdentifier(tok.Value), tok.Span), true
}

// operatorValue returns the normalised operator of the current token, treating
// keyword operators (AND, OR, NOT, MOD) like symbolic ones.
func (p *Parser) operatorValue() string {
	tok := p.peek()
	if tok.Kind == lexer.Operator || tok.Kind == lexer.Keyword {
		return tok.Value
	}
	return ""
}

// synchronize skips tokens until one that can plausibly begin a statement or
// close the enclosing block. Blocks opened while skipping are skipped whole.
func (p *Parser) synchronize() {
	depth := 0
	for {
		tok := p.peek()
		switch {
		case tok.Kind == lexer.EOF:
			return
		case tok.Is(lexer.Delimiter, "{"):
			depth++
		case tok.Is(lexer.Delimiter, "}"):
			if depth == 0 {
				return
			}
			depth--
		case depth > 0:
		case tok.Kind == lexer.Keyword && isStatementKeyword(tok.Value):
			return
		case tok.Kind == lexer.Identifier && tok.NewlineBefore:
			return
		}
		p.advance()
	}
}

func isStatementKeyword(word string) bool {
	_, ok := lexer.StatementKeywords[word]
	return ok
}
