// Package lexer turns APS source text into a token stream.
package lexer

import (
	"fmt"

	"aps/interpreter-go/pkg/ast"
)

type Kind int

const (
	EOF Kind = iota
	Keyword
	Identifier
	Number
	String
	Operator
	Delimiter
	Error
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Keyword:
		return "keyword"
	case Identifier:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Operator:
		return "operator"
	case Delimiter:
		return "delimiter"
	case Error:
		return "invalid token"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is one lexeme of the source.
//
// Lexeme is the raw source text. Value is the normalised form the parser
// matches on: keywords in upper case, operator aliases mapped to their ASCII
// spelling (`%` to MOD, `←` to `<-`), string contents without quotes.
type Token struct {
	Kind          Kind
	Lexeme        string
	Value         string
	Span          ast.Span
	NewlineBefore bool
}

// Is reports whether the token has the given kind and normalised value.
func (t Token) Is(kind Kind, value string) bool {
	return t.Kind == kind && t.Value == value
}

// IsKeyword reports whether the token is the given upper-case keyword.
func (t Token) IsKeyword(word string) bool {
	return t.Is(Keyword, word)
}

// Describe renders the token for "found ..." messages.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of file"
	case String:
		return fmt.Sprintf("string %q", t.Value)
	case Number:
		return fmt.Sprintf("number `%s`", t.Lexeme)
	case Identifier:
		return fmt.Sprintf("identifier `%s`", t.Lexeme)
	case Error:
		return "invalid token"
	default:
		return fmt.Sprintf("`%s`", t.Lexeme)
	}
}

var keywords = map[string]struct{}{
	"IF":        {},
	"ELSE":      {},
	"REPEAT":    {},
	"TIMES":     {},
	"UNTIL":     {},
	"FOR":       {},
	"EACH":      {},
	"IN":        {},
	"PROCEDURE": {},
	"RETURN":    {},
	"TRUE":      {},
	"FALSE":     {},
	"AND":       {},
	"OR":        {},
	"NOT":       {},
	"MOD":       {},
}

// StatementKeywords are the keywords that may begin a statement.
var StatementKeywords = map[string]struct{}{
	"IF":        {},
	"REPEAT":    {},
	"FOR":       {},
	"PROCEDURE": {},
	"RETURN":    {},
}
