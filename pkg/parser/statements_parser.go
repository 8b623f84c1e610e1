package parser

import (
	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/diagnostics"
	"aps/interpreter-go/pkg/lexer"
)

// parseStatement returns nil after reporting a structural error; the caller
// is responsible for recovery.
func (p *Parser) parseStatement() ast.Statement {
	tok := p.peek()
	if tok.Kind == lexer.Keyword {
		switch tok.Value {
		case "IF":
			return p.parseIf()
		case "REPEAT":
			return p.parseRepeat()
		case "FOR":
			return p.parseForEach()
		case "PROCEDURE":
			return p.parseProcedure()
		case "RETURN":
			return p.parseReturn()
		}
	}
	return p.parseSimpleStatement()
}

// parseSimpleStatement handles assignments and expression statements.
func (p *Parser) parseSimpleStatement() ast.Statement {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if !p.check(lexer.Operator, "<-") {
		return expr
	}
	arrow := p.advance()
	target, ok := expr.(ast.AssignmentTarget)
	if !ok {
		p.errorAt(expr.Span(), "cannot assign to this expression", "invalid assignment target before `%s`", arrow.Lexeme)
		return nil
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return ast.WithSpan(ast.NewAssignment(target, value), ast.Cover(target.Span(), value.Span()))
}

func (p *Parser) parseBlock() *ast.Block {
	open, ok := p.expect(lexer.Delimiter, "{")
	if !ok {
		return nil
	}
	body := make([]ast.Statement, 0)
	for !p.check(lexer.Delimiter, "}") {
		if p.atEOF() {
			p.unclosed("}", open, "block opened here")
			return nil
		}
		if stmt := p.parseStatementLine(); stmt != nil {
			body = append(body, stmt)
		}
	}
	closeTok := p.advance()
	return ast.WithSpan(ast.NewBlock(body), ast.Cover(open.Span, closeTok.Span))
}

func (p *Parser) parseIf() ast.Statement {
	ifTok := p.advance()
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}
	stmt := ast.NewIfStatement(cond, then, nil)
	end := then.Span()
	if _, ok := p.match(lexer.Keyword, "ELSE"); ok {
		if p.check(lexer.Keyword, "IF") {
			nested := p.parseIf()
			if nested == nil {
				return nil
			}
			stmt.Else = ast.WithSpan(ast.NewBlock([]ast.Statement{nested}), nested.Span())
		} else {
			stmt.Else = p.parseBlock()
			if stmt.Else == nil {
				return nil
			}
		}
		end = stmt.Else.Span()
	}
	return ast.WithSpan(stmt, ast.Cover(ifTok.Span, end))
}

func (p *Parser) parseRepeat() ast.Statement {
	repeatTok := p.advance()
	if _, ok := p.match(lexer.Keyword, "UNTIL"); ok {
		cond := p.parseExpression()
		if cond == nil {
			return nil
		}
		body := p.parseBlock()
		if body == nil {
			return nil
		}
		return ast.WithSpan(ast.NewRepeatUntil(cond, body), ast.Cover(repeatTok.Span, body.Span()))
	}
	count := p.parseExpression()
	if count == nil {
		return nil
	}
	if _, ok := p.expectKeyword("TIMES"); !ok {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return ast.WithSpan(ast.NewRepeatTimes(count, body), ast.Cover(repeatTok.Span, body.Span()))
}

func (p *Parser) parseForEach() ast.Statement {
	forTok := p.advance()
	if _, ok := p.expectKeyword("EACH"); !ok {
		return nil
	}
	variable, ok := p.expectIdentifier("loop variable name")
	if !ok {
		return nil
	}
	if _, ok := p.expectKeyword("IN"); !ok {
		return nil
	}
	list := p.parseExpression()
	if list == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return ast.WithSpan(ast.NewForEach(variable, list, body), ast.Cover(forTok.Span, body.Span()))
}

func (p *Parser) parseProcedure() ast.Statement {
	procTok := p.advance()
	name, ok := p.expectIdentifier("procedure name")
	if !ok {
		return nil
	}
	open, ok := p.expect(lexer.Delimiter, "(")
	if !ok {
		return nil
	}
	params := make([]*ast.Identifier, 0)
	seen := make(map[string]*ast.Identifier)
	if !p.check(lexer.Delimiter, ")") {
		for {
			param, ok := p.expectIdentifier("parameter name")
			if !ok {
				return nil
			}
			if first, dup := seen[param.Name]; dup {
				p.diags.Add(diagnostics.Error("duplicate parameter `%s` in procedure `%s`", param.Name, name.Name).
					WithPrimary(param.Span(), "repeated here").
					WithSecondary(first.Span(), "first declared here"))
			} else {
				seen[param.Name] = param
			}
			params = append(params, param)
			if _, more := p.match(lexer.Delimiter, ","); !more {
				break
			}
		}
	}
	if !p.check(lexer.Delimiter, ")") {
		p.unclosed(")", open, "parameter list opened here")
		return nil
	}
	p.advance()

	p.procDepth++
	body := p.parseBlock()
	p.procDepth--
	if body == nil {
		return nil
	}
	return ast.WithSpan(ast.NewProcedureDefinition(name, params, body), ast.Cover(procTok.Span, body.Span()))
}

func (p *Parser) parseReturn() ast.Statement {
	retTok := p.advance()
	if p.procDepth == 0 {
		p.warnAt(retTok.Span, "", "RETURN outside of a procedure")
	}
	next := p.peek()
	if next.Kind == lexer.EOF || next.NewlineBefore || next.Is(lexer.Delimiter, "}") {
		return ast.WithSpan(ast.NewReturnStatement(nil), retTok.Span)
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return ast.WithSpan(ast.NewReturnStatement(value), ast.Cover(retTok.Span, value.Span()))
}
