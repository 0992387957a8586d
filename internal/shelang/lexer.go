package shelang

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokString
	TokNumber
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokColon
	TokComma
	TokStar
	TokIllegal
)

var tokenNames = map[TokenKind]string{
	TokEOF:      "end of input",
	TokIdent:    "identifier",
	TokString:   "string",
	TokNumber:   "number",
	TokLBrace:   "'{'",
	TokRBrace:   "'}'",
	TokLBracket: "'['",
	TokRBracket: "']'",
	TokColon:    "':'",
	TokComma:    "','",
	TokStar:     "'*'",
	TokIllegal:  "illegal character",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one lexeme. For strings Text is the unescaped content; for
// numbers it is the literal including any unit suffix ("2000px").
type Token struct {
	Kind TokenKind
	Text string
	Line int
}

func (t Token) String() string {
	switch t.Kind {
	case TokIdent, TokNumber:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case TokString:
		return fmt.Sprintf("string %q", t.Text)
	case TokIllegal:
		return fmt.Sprintf("illegal character %q", t.Text)
	}
	return t.Kind.String()
}

const bom = "\uFEFF"

var punctuation = map[byte]TokenKind{
	'{': TokLBrace, '}': TokRBrace,
	'[': TokLBracket, ']': TokRBracket,
	':': TokColon, ',': TokComma, '*': TokStar,
}

// lexer splits SheLang text into tokens. It never fails: anything it does
// not understand becomes a TokIllegal token and the parser decides what to
// skip.
type lexer struct {
	src  string
	pos  int
	line int
}

// Tokenize returns every token of src followed by a TokEOF token.
// Comments start with '#' or "//" and run to the end of the line.
func Tokenize(src string) []Token {
	lx := &lexer{src: src, line: 1}
	var toks []Token
	for {
		tok := lx.next()
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func (lx *lexer) peek(offset int) byte {
	if lx.pos+offset >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+offset]
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
		case c == 0xEF && strings.HasPrefix(lx.src[lx.pos:], bom):
			lx.pos += len(bom)
		case c == '#' || (c == '/' && lx.peek(1) == '/'):
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func (lx *lexer) next() Token {
	lx.skipSpaceAndComments()
	if lx.pos >= len(lx.src) {
		return Token{Kind: TokEOF, Line: lx.line}
	}

	line := lx.line
	c := lx.src[lx.pos]
	if k, ok := punctuation[c]; ok {
		lx.pos++
		return Token{Kind: k, Text: string(c), Line: line}
	}

	switch {
	case c == '"' || c == '\'':
		return lx.scanString(c)
	case isDigit(c), (c == '-' || c == '+' || c == '.') && isDigit(lx.peek(1)):
		return lx.scanNumber()
	}

	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if isIdentStart(r) {
		return lx.scanIdent()
	}
	lx.pos += size
	return Token{Kind: TokIllegal, Text: string(r), Line: line}
}

func (lx *lexer) scanString(quote byte) Token {
	line := lx.line
	lx.pos++
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == quote:
			lx.pos++
			return Token{Kind: TokString, Text: b.String(), Line: line}
		case c == '\\' && lx.pos+1 < len(lx.src):
			lx.pos++
			e := lx.src[lx.pos]
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(e)
			}
			if e == '\n' {
				lx.line++
			}
			lx.pos++
		default:
			if c == '\n' {
				lx.line++
			}
			b.WriteByte(c)
			lx.pos++
		}
	}
	// Unterminated strings run to the end of input.
	return Token{Kind: TokString, Text: b.String(), Line: line}
}

func (lx *lexer) scanNumber() Token {
	start := lx.pos
	if c := lx.src[lx.pos]; c == '-' || c == '+' {
		lx.pos++
	}
	for lx.pos < len(lx.src) && (isDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '.') {
		lx.pos++
	}
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		rest := lx.src[lx.pos+1:]
		if len(rest) > 0 && (isDigit(rest[0]) || (len(rest) > 1 && (rest[0] == '-' || rest[0] == '+') && isDigit(rest[1]))) {
			lx.pos += 2
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.pos++
			}
		}
	}
	// Unit suffix such as "px" or "%".
	for lx.pos < len(lx.src) && (isLetter(lx.src[lx.pos]) || lx.src[lx.pos] == '%') {
		lx.pos++
	}
	return Token{Kind: TokNumber, Text: lx.src[start:lx.pos], Line: lx.line}
}

func (lx *lexer) scanIdent() Token {
	start := lx.pos
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !isIdentPart(r) {
			break
		}
		lx.pos += size
	}
	return Token{Kind: TokIdent, Text: lx.src[start:lx.pos], Line: lx.line}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '-' || r == '.'
}
