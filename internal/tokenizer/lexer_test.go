package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/yamlerr"
)

func TestLexerPeekIsIdempotent(t *testing.T) {
	l := NewLexer("a: 1")

	first, err := l.Peek()
	require.NoError(t, err)
	second, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, TokenStreamStart, first.Kind)

	next, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, first, next)
}

func TestLexerMarkReset(t *testing.T) {
	l := NewLexer("a: 1\nb: 2")
	_, err := l.Next() // StreamStart
	require.NoError(t, err)

	m := l.Mark()
	var seen []Token
	for i := 0; i < 4; i++ {
		tok, err := l.Next()
		require.NoError(t, err)
		seen = append(seen, tok)
	}

	l.Reset(m)
	for i := 0; i < 4; i++ {
		tok, err := l.Next()
		require.NoError(t, err)
		assert.Equal(t, seen[i], tok)
	}
}

func TestLexerPeekN(t *testing.T) {
	l := NewLexer("[a]")
	tok, err := l.PeekN(2)
	require.NoError(t, err)
	assert.Equal(t, TokenFlowSeqStart, tok.Kind)

	// Looking past the end keeps returning StreamEnd.
	tok, err = l.PeekN(50)
	require.NoError(t, err)
	assert.Equal(t, TokenStreamEnd, tok.Kind)
}

func TestLexerStreamEndIsSticky(t *testing.T) {
	l := NewLexer("x")
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Kind == TokenStreamEnd {
			break
		}
	}
	for i := 0; i < 3; i++ {
		tok, err := l.Next()
		require.NoError(t, err)
		assert.Equal(t, TokenStreamEnd, tok.Kind)
	}
}

func TestLexerTokensAndRestart(t *testing.T) {
	l := NewLexer("- a\n- b\n")

	var kinds []Kind
	for tok, err := range l.Tokens() {
		require.NoError(t, err)
		kinds = append(kinds, tok.Kind)
	}
	require.NotEmpty(t, kinds)
	assert.Equal(t, TokenStreamStart, kinds[0])
	assert.Equal(t, TokenStreamEnd, kinds[len(kinds)-1])

	// Iterating does not move the read position.
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenStreamStart, tok.Kind)

	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Kind == TokenStreamEnd {
			break
		}
	}
	l.Restart()
	var replay []Kind
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		replay = append(replay, tok.Kind)
		if tok.Kind == TokenStreamEnd {
			break
		}
	}
	assert.Equal(t, kinds, replay)
}

func TestLexerTokensStopsAtError(t *testing.T) {
	l := NewLexer("a: \"open")
	var last error
	count := 0
	for _, err := range l.Tokens() {
		count++
		last = err
	}
	require.Error(t, last)
	assert.True(t, yamlerr.Is(last, yamlerr.UnterminatedString))
	assert.Greater(t, count, 1)

	_, err := l.PeekN(count + 1)
	assert.Equal(t, last, err)
}
