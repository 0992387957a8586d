package shelang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize(t *testing.T) {
	src := "# header\nFRAME * {\n  title: \"a \\\"b\\\"\\n\", // trailing\n  w: 2000px, n: -1.5\n}"
	toks := Tokenize(src)

	assert.Equal(t, []TokenKind{
		TokIdent, TokStar, TokLBrace,
		TokIdent, TokColon, TokString, TokComma,
		TokIdent, TokColon, TokNumber, TokComma, TokIdent, TokColon, TokNumber,
		TokRBrace, TokEOF,
	}, kinds(toks))

	assert.Equal(t, "FRAME", toks[0].Text)
	assert.Equal(t, 2, toks[0].Line)
	assert.Equal(t, "a \"b\"\n", toks[5].Text)
	assert.Equal(t, 3, toks[5].Line)
	assert.Equal(t, "2000px", toks[9].Text)
	assert.Equal(t, "-1.5", toks[13].Text)
	assert.Equal(t, 5, toks[14].Line)
}

func TestTokenizeIdentifiers(t *testing.T) {
	toks := Tokenize("{fill-both, expand-both} input1 box_a.b")
	assert.Equal(t, "fill-both", toks[1].Text)
	assert.Equal(t, "expand-both", toks[3].Text)
	assert.Equal(t, "input1", toks[5].Text)
	assert.Equal(t, "box_a.b", toks[6].Text)
}

func TestTokenizeOddInput(t *testing.T) {
	toks := Tokenize("\uFEFFa = 'single' \"open")
	assert.Equal(t, []TokenKind{TokIdent, TokIllegal, TokString, TokString, TokEOF}, kinds(toks))
	assert.Equal(t, "single", toks[2].Text)
	assert.Equal(t, "open", toks[3].Text)
}
