package parser

import (
	"slices"
	"strconv"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/lexer"
)

// Binary precedence levels from loosest to tightest. NOT sits between AND and
// comparison and is handled by parseNot.
var (
	comparisonOperators = []string{ast.OpEqual, ast.OpNotEqual, ast.OpLessEqual, ast.OpGreaterEqual, ast.OpLess, ast.OpGreater}
	additiveOperators   = []string{ast.OpAdd, ast.OpSub}
	multiplicativeOps   = []string{ast.OpMul, ast.OpDiv, ast.OpMod}
)

// parseExpression returns nil after reporting an error.
func (p *Parser) parseExpression() ast.Expression {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expression {
	return p.parseBinaryLevel(p.parseAnd, ast.OpOr)
}

func (p *Parser) parseAnd() ast.Expression {
	return p.parseBinaryLevel(p.parseNot, ast.OpAnd)
}

func (p *Parser) parseNot() ast.Expression {
	if p.check(lexer.Keyword, ast.OpNot) {
		opTok := p.advance()
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		return ast.WithSpan(ast.NewUnaryExpression(ast.OpNot, operand), ast.Cover(opTok.Span, operand.Span()))
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expression {
	return p.parseBinaryLevel(p.parseAdditive, comparisonOperators...)
}

func (p *Parser) parseAdditive() ast.Expression {
	return p.parseBinaryLevel(p.parseMultiplicative, additiveOperators...)
}

func (p *Parser) parseMultiplicative() ast.Expression {
	return p.parseBinaryLevel(p.parseUnary, multiplicativeOps...)
}

// parseBinaryLevel parses a left-associative chain of the given operators.
func (p *Parser) parseBinaryLevel(operand func() ast.Expression, ops ...string) ast.Expression {
	left := operand()
	if left == nil {
		return nil
	}
	for {
		op := p.operatorValue()
		if op == "" || !slices.Contains(ops, op) {
			return left
		}
		p.advance()
		right := operand()
		if right == nil {
			return nil
		}
		left = ast.WithSpan(ast.NewBinaryExpression(op, left, right), ast.Cover(left.Span(), right.Span()))
	}
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(lexer.Operator, ast.OpSub) || p.check(lexer.Keyword, ast.OpNot) {
		opTok := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return ast.WithSpan(ast.NewUnaryExpression(opTok.Value, operand), ast.Cover(opTok.Span, operand.Span()))
	}
	return p.parsePostfix()
}

// parsePostfix applies indexing and calls. A `[` or `(` on a new line starts
// a new statement rather than continuing the expression.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		tok := p.peek()
		if tok.NewlineBefore {
			return expr
		}
		switch {
		case tok.Is(lexer.Delimiter, "["):
			open := p.advance()
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			if !p.check(lexer.Delimiter, "]") {
				p.unclosed("]", open, "index opened here")
				return nil
			}
			closeTok := p.advance()
			expr = ast.WithSpan(ast.NewIndexExpression(expr, index), ast.Cover(expr.Span(), closeTok.Span))
		case tok.Is(lexer.Delimiter, "("):
			open := p.advance()
			args, closeTok, ok := p.parseArguments(open, ")", "argument list opened here")
			if !ok {
				return nil
			}
			expr = ast.WithSpan(ast.NewCallExpression(expr, args), ast.Cover(expr.Span(), closeTok.Span))
		default:
			return expr
		}
	}
}

// parseArguments parses a comma separated expression list after open up to
// and including the closing delimiter.
func (p *Parser) parseArguments(open lexer.Token, closer string, openLabel string) ([]ast.Expression, lexer.Token, bool) {
	args := make([]ast.Expression, 0)
	if closeTok, ok := p.match(lexer.Delimiter, closer); ok {
		return args, closeTok, true
	}
	for {
		arg := p.parseExpression()
		if arg == nil {
			return nil, lexer.Token{}, false
		}
		args = append(args, arg)
		if _, more := p.match(lexer.Delimiter, ","); !more {
			break
		}
	}
	if !p.check(lexer.Delimiter, closer) {
		p.unclosed(closer, open, openLabel)
		return nil, lexer.Token{}, false
	}
	return args, p.advance(), true
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.errorAt(tok.Span, "", "invalid number literal `%s`", tok.Lexeme)
			return nil
		}
		return ast.WithSpan(ast.NewNumberLiteral(value), tok.Span)
	case lexer.String:
		p.advance()
		return ast.WithSpan(ast.NewStringLiteral(tok.Value), tok.Span)
	case lexer.Identifier:
		p.advance()
		return ast.WithSpan(ast.NewIdentifier(tok.Value), tok.Span)
	case lexer.Keyword:
		if tok.Value == "TRUE" || tok.Value == "FALSE" {
			p.advance()
			return ast.WithSpan(ast.NewBooleanLiteral(tok.Value == "TRUE"), tok.Span)
		}
	case lexer.Delimiter:
		switch tok.Value {
		case "(":
			open := p.advance()
			inner := p.parseExpression()
			if inner == nil {
				return nil
			}
			if !p.check(lexer.Delimiter, ")") {
				p.unclosed(")", open, "parenthesis opened here")
				return nil
			}
			p.advance()
			return inner
		case "[":
			open := p.advance()
			elems, closeTok, ok := p.parseArguments(open, "]", "list opened here")
			if !ok {
				return nil
			}
			return ast.WithSpan(ast.NewListLiteral(elems), ast.Cover(open.Span, closeTok.Span))
		}
	}
	p.unexpected("expression")
	return nil
}
