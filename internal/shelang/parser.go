package shelang

import (
	"fmt"
	"strings"
)

// Parse reads SheLang text into a Document. It does not give up on bad
// input: unknown top-level text is skipped, a malformed field is dropped
// up to the next ',' or closing brace, and a block cut off by the end of
// input keeps the fields read so far. Each recovery is reported as a
// FormatError issue.
func Parse(src string) (*Document, []Issue) {
	p := &parser{toks: Tokenize(src)}
	doc := p.document()
	return doc, p.issues
}

type parser struct {
	toks   []Token
	pos    int
	issues []Issue
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(line int, format string, args ...any) {
	p.issues = append(p.issues, Issue{Kind: FormatError, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) document() *Document {
	doc := &Document{}
	junk := false
	for p.peek().Kind != TokEOF {
		if b := p.blockHeader(); b != nil {
			junk = false
			b.Closed = p.fields(TokRBrace, &b.Fields)
			if !b.Closed {
				p.errorf(b.Line, "block %s is not closed", b.Type)
			}
			doc.Blocks = append(doc.Blocks, b)
			continue
		}
		t := p.peek()
		if !junk {
			p.errorf(t.Line, "skipping unexpected %s", t)
			junk = true
		}
		if t.Kind == TokLBrace || t.Kind == TokLBracket {
			p.skipGroup()
		} else {
			p.advance()
		}
	}
	return doc
}

// blockHeader consumes `TYPE [selector] {` and returns the new block, or
// returns nil and consumes nothing.
func (p *parser) blockHeader() *Block {
	t := p.peek()
	if t.Kind != TokIdent {
		return nil
	}
	next := p.peekAt(1)
	switch {
	case next.Kind == TokLBrace:
		p.advance()
		p.advance()
		return &Block{Type: t.Text, Line: t.Line}
	case (next.Kind == TokStar || next.Kind == TokIdent || next.Kind == TokString) && p.peekAt(2).Kind == TokLBrace:
		p.advance()
		p.advance()
		p.advance()
		return &Block{Type: t.Text, Selector: next.Text, Line: t.Line}
	}
	return nil
}

// fields reads `key: value` pairs until closer, appending to out. It
// reports whether the closer was found.
func (p *parser) fields(closer TokenKind, out *[]Field) bool {
	for {
		switch p.peek().Kind {
		case closer:
			p.advance()
			return true
		case TokEOF:
			return false
		case TokComma:
			p.advance()
			continue
		}
		if f, ok := p.field(closer); ok {
			*out = append(*out, f)
		}
	}
}

func (p *parser) field(closer TokenKind) (Field, bool) {
	start := p.peek()
	key, ok := p.key()
	if !ok || p.peek().Kind != TokColon {
		p.errorf(start.Line, "expected field, found %s", p.peek())
		p.skipField(closer)
		return Field{}, false
	}
	p.advance()

	v, ok := p.value(closer)
	if !ok {
		p.skipField(closer)
		return Field{}, false
	}
	f := Field{Key: key, Value: v, Line: start.Line}

	switch t := p.peek(); t.Kind {
	case TokComma:
		p.advance()
	case closer, TokEOF, TokIdent, TokString, TokNumber:
		// A missing comma before the next key is tolerated.
	default:
		p.errorf(t.Line, "unexpected %s after %q", t, key)
		p.skipField(closer)
	}
	return f, true
}

// key joins the identifier, string and number tokens on one line into a
// single key, so `input 1:` reads as "input 1".
func (p *parser) key() (string, bool) {
	first := p.peek()
	var parts []string
	for {
		t := p.peek()
		if t.Line != first.Line || (t.Kind != TokIdent && t.Kind != TokString && t.Kind != TokNumber) {
			break
		}
		parts = append(parts, t.Text)
		p.advance()
	}
	return strings.Join(parts, " "), len(parts) > 0
}

func (p *parser) value(closer TokenKind) (Value, bool) {
	t := p.peek()
	switch t.Kind {
	case TokString:
		p.advance()
		return Value{Kind: KindString, Text: t.Text, Line: t.Line}, true
	case TokNumber:
		p.advance()
		return Value{Kind: KindNumber, Text: t.Text, Line: t.Line}, true
	case TokIdent:
		text, _ := p.key()
		return Value{Kind: KindIdent, Text: text, Line: t.Line}, true
	case TokLBracket:
		return p.list(), true
	case TokLBrace:
		return p.braced(), true
	}
	p.errorf(t.Line, "expected value, found %s", t)
	return Value{}, false
}

func (p *parser) list() Value {
	open := p.advance()
	v := Value{Kind: KindList, Line: open.Line}
	for {
		switch p.peek().Kind {
		case TokRBracket:
			p.advance()
			return v
		case TokEOF, TokRBrace:
			p.errorf(open.Line, "list is not closed")
			return v
		case TokComma:
			p.advance()
			continue
		}
		item, ok := p.value(TokRBracket)
		if !ok {
			p.skipField(TokRBracket)
			continue
		}
		v.Items = append(v.Items, item)
	}
}

// braced reads `{ ... }`. Entries with a key make it an object; a group of
// bare items is a list.
func (p *parser) braced() Value {
	open := p.advance()
	var items []Value
	var fields []Field
	for {
		switch p.peek().Kind {
		case TokRBrace:
			p.advance()
			return bracedValue(open.Line, items, fields)
		case TokEOF:
			p.errorf(open.Line, "group is not closed")
			return bracedValue(open.Line, items, fields)
		case TokComma:
			p.advance()
			continue
		}
		item, ok := p.value(TokRBrace)
		if !ok {
			p.skipField(TokRBrace)
			continue
		}
		if p.peek().Kind == TokColon && (item.Kind == KindIdent || item.Kind == KindString || item.Kind == KindNumber) {
			p.advance()
			val, ok := p.value(TokRBrace)
			if !ok {
				p.skipField(TokRBrace)
				continue
			}
			fields = append(fields, Field{Key: item.Text, Value: val, Line: item.Line})
			continue
		}
		items = append(items, item)
	}
}

func bracedValue(line int, items []Value, fields []Field) Value {
	if len(fields) > 0 || len(items) == 0 {
		return Value{Kind: KindObject, Fields: fields, Line: line}
	}
	return Value{Kind: KindList, Items: items, Braced: true, Line: line}
}

// skipField skips to the next ',' (consumed), closer or '}' (left in
// place) that is not nested inside another group.
func (p *parser) skipField(closer TokenKind) {
	for {
		switch p.peek().Kind {
		case TokEOF, closer, TokRBrace:
			return
		case TokComma:
			p.advance()
			return
		case TokLBrace, TokLBracket:
			p.skipGroup()
		default:
			p.advance()
		}
	}
}

// skipGroup consumes a balanced {...} or [...] group.
func (p *parser) skipGroup() {
	depth := 0
	for {
		switch p.advance().Kind {
		case TokLBrace, TokLBracket:
			depth++
		case TokRBrace, TokRBracket:
			depth--
		case TokEOF:
			return
		}
		if depth <= 0 {
			return
		}
	}
}
