package yamlerr

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/ast"
)

func pos(line, col int) ast.Position {
	return ast.Position{Line: line, Column: col, Offset: line*100 + col}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "lexical",
			err:  New(UnterminatedString, pos(3, 7), "found unterminated string"),
			want: "yaml: line 3, column 7: found unterminated string",
		},
		{
			name: "syntactic ignores document",
			err:  New(UnexpectedToken, pos(1, 1), "unexpected %q", "]").WithDocument(2),
			want: `yaml: line 1, column 1: unexpected "]"`,
		},
		{
			name: "semantic with document",
			err:  New(UnresolvedAlias, pos(2, 4), "found undefined alias %q", "x").WithDocument(1),
			want: `yaml: document 1: line 2, column 4: found undefined alias "x"`,
		},
		{
			name: "related positions",
			err:  New(ConflictingAnchor, pos(2, 4), "anchor %q is defined twice", "a").WithRelated(pos(1, 4)),
			want: `yaml: line 2, column 4: anchor "a" is defined twice (see line 1, column 4)`,
		},
		{
			name: "path without position",
			err:  New(ReferenceTracking, ast.Position{}, "dangling edge").WithPath("$.a[0]"),
			want: "yaml: $.a[0]: dangling edge",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindCategory(t *testing.T) {
	tests := []struct {
		kind Kind
		want Category
	}{
		{UnexpectedCharacter, Lexical},
		{EmptyScalar, Lexical},
		{UnexpectedToken, Syntactic},
		{Internal, Syntactic},
		{UnresolvedAlias, Semantic},
		{ReferenceTracking, Semantic},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Category())
		})
	}
	assert.Equal(t, "Unknown", Kind(0).String())
}

func TestIsAndAs(t *testing.T) {
	base := New(CircularReference, pos(1, 4), "cycle")
	wrapped := errors.Wrap(base, "resolve")
	fmtWrapped := fmt.Errorf("load: %w", base)

	for _, err := range []error{base, wrapped, fmtWrapped} {
		assert.True(t, Is(err, CircularReference))
		assert.False(t, Is(err, UnresolvedAlias))
		got, ok := As(err)
		require.True(t, ok)
		assert.Same(t, base, got)
	}

	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, Is(nil, Internal))
}

func TestList(t *testing.T) {
	var l List
	assert.NoError(t, l.Err())
	assert.False(t, l.HasErrors())

	first := New(UnresolvedAlias, pos(1, 4), "first").WithDocument(0)
	second := New(CircularReference, pos(5, 2), "second").WithDocument(1)
	l.Add(first)
	assert.Equal(t, first.Error(), l.Error())

	l.Add(second)
	require.Error(t, l.Err())
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []*Error{second}, l.ByKind(CircularReference))
	assert.Equal(t, []*Error{first}, l.ByDocument(0))
	assert.Contains(t, l.Error(), "2 errors occurred:")
	assert.Contains(t, l.Error(), "\n\t* "+second.Error())

	err := fmt.Errorf("wrapped: %w", l.Err())
	assert.True(t, Is(err, CircularReference))
	got, ok := As(err)
	require.True(t, ok)
	assert.Same(t, first, got)
}
