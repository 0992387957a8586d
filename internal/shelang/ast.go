// Package shelang reads and writes SheLang, the block-structured text
// format schemes are saved in:
//
//	FRAME * {
//	    name: "box_1",
//	    position: {x: 100, y: 100},
//	    input_names: ["a", "b"]
//	}
//
// Reading is done in three steps: a tokenizer, a recursive-descent parser
// producing a Document, and per-field resolvers that try a fixed list of
// key spellings. Reading never fails; problems are collected in a Report.
package shelang

import (
	"strconv"
	"strings"
)

// ValueKind classifies a parsed value.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindString
	KindNumber
	KindIdent
	KindList
	KindObject
)

// Value is a parsed field value. Lists come from "[...]" or from a braced
// group whose items have no keys ("{fill-both, expand-both}"); Braced
// tells the two apart.
type Value struct {
	Kind   ValueKind
	Text   string
	Items  []Value
	Fields []Field
	Braced bool
	Line   int
}

// Field is a key/value pair. Multi-token keys such as `input 1` are joined
// with single spaces.
type Field struct {
	Key   string
	Value Value
	Line  int
}

// Block is a top-level `TYPE selector { ... }` group.
type Block struct {
	Type     string
	Selector string
	Fields   []Field
	Line     int
	// Closed is false when input ended before the closing brace.
	Closed bool
}

// Document is a parsed SheLang file.
type Document struct {
	Blocks []*Block
}

// BlocksOf returns the blocks of one type, in document order. Type
// matching ignores case.
func (d *Document) BlocksOf(typ string) []*Block {
	var out []*Block
	for _, b := range d.Blocks {
		if strings.EqualFold(b.Type, typ) {
			out = append(out, b)
		}
	}
	return out
}

// Get returns the first field with the given key, ignoring case.
func (b *Block) Get(key string) (Value, bool) {
	return lookupField(b.Fields, key)
}

// Get returns the first field of an object value with the given key.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	return lookupField(v.Fields, key)
}

func lookupField(fields []Field, key string) (Value, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Str returns the text of a string or identifier.
func (v Value) Str() (string, bool) {
	switch v.Kind {
	case KindString, KindIdent:
		return v.Text, true
	}
	return "", false
}

// Float returns a numeric value. Numbers may carry a unit suffix, and a
// string holding a number ("2000px") is accepted too.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber, KindString:
		return parseNumber(v.Text)
	}
	return 0, false
}

// Int returns a non-fractional numeric value.
func (v Value) Int() (int, bool) {
	f, ok := v.Float()
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Strings returns the items of a list when every item is a string or an
// identifier.
func (v Value) Strings() ([]string, bool) {
	if v.Kind != KindList {
		return nil, false
	}
	out := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		s, ok := it.Str()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func parseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	end := len(text)
	for end > 0 {
		c := text[end-1]
		if isLetter(c) || c == '%' {
			end--
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
