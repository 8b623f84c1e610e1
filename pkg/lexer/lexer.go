package lexer

import (
	"strings"
	"unicode/utf8"

	"aps/interpreter-go/pkg/ast"
	"aps/interpreter-go/pkg/diagnostics"
)

// Tokenize scans the whole source. It never fails: malformed input becomes
// Error tokens with matching diagnostics, and the stream always ends in EOF.
func Tokenize(source string) ([]Token, []diagnostics.Diagnostic) {
	lx := &lexer{src: source, newline: true}
	for {
		tok := lx.next()
		lx.tokens = append(lx.tokens, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return lx.tokens, lx.diags.Diagnostics()
}

type lexer struct {
	src     string
	pos     int
	newline bool
	tokens  []Token
	diags   diagnostics.Collector
}

func (l *lexer) next() Token {
	l.skipTrivia()
	start := l.pos
	if start >= len(l.src) {
		return l.emit(EOF, start, "")
	}

	r, size := utf8.DecodeRuneInString(l.src[start:])
	switch {
	case isIdentStart(r):
		l.pos += size
		for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
			l.pos++
		}
		word := l.src[start:l.pos]
		if isKeyword(word) {
			return l.emit(Keyword, start, strings.ToUpper(word))
		}
		return l.emit(Identifier, start, word)
	case isDigit(r):
		l.scanDigits()
		if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(rune(l.src[l.pos+1])) {
			l.pos++
			l.scanDigits()
		}
		return l.emit(Number, start, l.src[start:l.pos])
	case r == '"':
		return l.scanString()
	}

	if op, width := matchOperator(l.src[start:]); width > 0 {
		l.pos += width
		if op == "(" || op == ")" || op == "[" || op == "]" || op == "{" || op == "}" || op == "," {
			return l.emit(Delimiter, start, op)
		}
		return l.emit(Operator, start, op)
	}

	l.pos += size
	tok := l.emit(Error, start, l.src[start:l.pos])
	if r == utf8.RuneError && size <= 1 {
		l.diags.Errorf(tok.Span, "", "invalid UTF-8 byte in source")
	} else {
		l.diags.Errorf(tok.Span, "", "unrecognized character `%s`", string(r))
	}
	return tok
}

func (l *lexer) emit(kind Kind, start int, value string) Token {
	tok := Token{
		Kind:          kind,
		Lexeme:        l.src[start:l.pos],
		Value:         value,
		Span:          ast.Span{Start: start, End: l.pos},
		NewlineBefore: l.newline,
	}
	l.newline = false
	return tok
}

// skipTrivia consumes whitespace and `#` comments, remembering line breaks.
func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; c {
		case '\n':
			l.newline = true
			l.pos++
		case ' ', '\t', '\r', '\f', '\v':
			l.pos++
		case '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) scanDigits() {
	for l.pos < len(l.src) && isDigit(rune(l.src[l.pos])) {
		l.pos++
	}
}

// scanString reads a literal that must close on the same line. An unclosed
// literal becomes an Error token covering the rest of the line.
func (l *lexer) scanString() Token {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '"':
			l.pos++
			return l.emit(String, start, l.src[start+1:l.pos-1])
		case '\n':
			return l.unterminated(start)
		}
		l.pos++
	}
	return l.unterminated(start)
}

func (l *lexer) unterminated(start int) Token {
	if l.pos > start+1 && l.src[l.pos-1] == '\r' {
		l.pos--
	}
	tok := l.emit(Error, start, l.src[start:l.pos])
	l.diags.Errorf(tok.Span, "string starts here", "unterminated string literal")
	return tok
}

// operators are tried in order, so longer spellings come first.
var operators = []struct {
	text  string
	value string
}{
	{"<-", "<-"},
	{"<=", "<="},
	{">=", ">="},
	{"!=", "!="},
	{"←", "<-"},
	{"≤", "<="},
	{"≥", ">="},
	{"≠", "!="},
	{"+", "+"},
	{"-", "-"},
	{"*", "*"},
	{"/", "/"},
	{"%", "MOD"},
	{"=", "="},
	{"<", "<"},
	{">", ">"},
	{"(", "("},
	{")", ")"},
	{"[", "["},
	{"]", "]"},
	{"{", "{"},
	{"}", "}"},
	{",", ","},
}

func matchOperator(rest string) (string, int) {
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			return op.value, len(op.text)
		}
	}
	return "", 0
}

func isKeyword(word string) bool {
	upper := strings.ToUpper(word)
	if _, ok := keywords[upper]; !ok {
		return false
	}
	return word == upper || word == strings.ToLower(word)
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
