package lex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vc8/lex"
)

func kinds(tokens []lex.Token) []lex.Kind {
	out := make([]lex.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexSimpleDeclaration(t *testing.T) {
	tokens, err := lex.Lex("uint8 x = 5;")
	require.NoError(t, err)
	require.Len(t, tokens, 6) // uint8, x, =, 5, ;, EOF
	assert.Equal(t, lex.Keyword, tokens[0].Kind)
	assert.Equal(t, lex.Ident, tokens[1].Kind)
	assert.Equal(t, lex.Symbol, tokens[2].Kind)
	assert.Equal(t, lex.Number, tokens[3].Kind)
}

func TestLexMultiCharOperators(t *testing.T) {
	tokens, err := lex.Lex("a == b && c << 2")
	require.NoError(t, err)
	var symbols []string
	for _, tok := range tokens {
		if tok.Kind == lex.Symbol {
			symbols = append(symbols, tok.Text)
		}
	}
	assert.Equal(t, []string{"==", "&&", "<<"}, symbols)
}

func TestLexCharLiteralEscapes(t *testing.T) {
	tokens, err := lex.Lex(`'\n' 'a' '\''`)
	require.NoError(t, err)
	assert.Equal(t, "\n", tokens[0].Text)
	assert.Equal(t, "a", tokens[1].Text)
	assert.Equal(t, "'", tokens[2].Text)
}

func TestLexPostfixOperators(t *testing.T) {
	tokens, err := lex.Lex("x++; y--;")
	require.NoError(t, err)
	assert.Equal(t, "++", tokens[1].Text)
	assert.Equal(t, "--", tokens[4].Text)
}

func TestLexStripsLineComments(t *testing.T) {
	tokens, err := lex.Lex("uint8 x; // this is a comment\nuint8 y;")
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.NotContains(t, tok.Text, "comment")
	}
}

func TestLexUnterminatedCharLiteral(t *testing.T) {
	_, err := lex.Lex("'a")
	assert.Error(t, err)
}
