package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jex-lang/jex/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(src)
	toks, errs := l.ScanTokens()
	require.Empty(t, errs, "unexpected lexer errors: %v", errs)
	return toks
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestPercentKeywordVsModulo(t *testing.T) {
	toks := scanAll(t, "%let x = 1 % 2;")
	require.Equal(t, []token.Type{
		token.KW_LET, token.IDENT, token.EQUAL, token.INT, token.PERCENT, token.INT, token.SEMICOLON, token.EOF,
	}, types(toks))
}

func TestAmpersandVarRefVsAnd(t *testing.T) {
	toks := scanAll(t, "&x && &y")
	require.Equal(t, []token.Type{token.VARREF, token.AND_AND, token.VARREF, token.EOF}, types(toks))
	require.Equal(t, "x", toks[0].Lexeme)
	require.Equal(t, "y", toks[2].Lexeme)
}

func TestLoneAmpersandIsError(t *testing.T) {
	l := New("& 1")
	_, errs := l.ScanTokens()
	require.NotEmpty(t, errs)
}

func TestLonePipeIsError(t *testing.T) {
	l := New("1 | 2")
	_, errs := l.ScanTokens()
	require.NotEmpty(t, errs)
}

func TestOperatorMaximalMunch(t *testing.T) {
	toks := scanAll(t, "== != <= >= < > = !")
	require.Equal(t, []token.Type{
		token.EQUAL_EQUAL, token.BANG_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL,
		token.LESS, token.GREATER, token.EQUAL, token.BANG, token.EOF,
	}, types(toks))
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\tc\\d\"e"`)
	require.Equal(t, "a\nb\tc\\d\"e", toks[0].Literal)
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	_, errs := l.ScanTokens()
	require.NotEmpty(t, errs)
}

func TestComments(t *testing.T) {
	toks := scanAll(t, "%let x = 1; // trailing comment\n/* block\ncomment */ %let y = 2;")
	require.Equal(t, []token.Type{
		token.KW_LET, token.IDENT, token.EQUAL, token.INT, token.SEMICOLON,
		token.KW_LET, token.IDENT, token.EQUAL, token.INT, token.SEMICOLON, token.EOF,
	}, types(toks))
}

func TestUnrecognizedKeyword(t *testing.T) {
	l := New("%bogus")
	_, errs := l.ScanTokens()
	require.NotEmpty(t, errs)
}

func TestJsonPathDollarSegmentsAreDollarDotTokens(t *testing.T) {
	// The lexer only produces DOLLAR + DOT + IDENT/LBRACKET tokens; assembling
	// the JsonPathLit is the parser's job.
	toks := scanAll(t, "$.a.b[0]")
	require.Equal(t, []token.Type{
		token.DOLLAR, token.DOT, token.IDENT, token.DOT, token.IDENT,
		token.LBRACKET, token.INT, token.RBRACKET, token.EOF,
	}, types(toks))
}

func TestNumberLiterals(t *testing.T) {
	toks := scanAll(t, "42 3.14 0")
	require.Equal(t, token.INT, toks[0].Type)
	require.Equal(t, "42", toks[0].Literal)
	require.Equal(t, token.FLOAT, toks[1].Type)
	require.Equal(t, "3.14", toks[1].Literal)
}

func TestCaseInsensitiveKeywords(t *testing.T) {
	toks := scanAll(t, "%LET %If %FOREACH")
	require.Equal(t, []token.Type{token.KW_LET, token.KW_IF, token.KW_FOREACH, token.EOF}, types(toks))
}
