package yaml

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/semantic"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// ignorePresentation compares trees by content only.
var ignorePresentation = cmp.Options{
	cmpopts.IgnoreTypes(ast.Position{}, ast.ScalarStyle(0), ast.CollectionStyle(0)),
	cmpopts.IgnoreFields(ast.Scalar{}, "Text"),
	cmpopts.IgnoreFields(ast.Null{}, "Text"),
}

func loadRoot(t *testing.T, text string) ast.Node {
	t.Helper()
	doc, err := ParseOne(text)
	require.NoError(t, err)
	return doc.Root
}

func resolvedRoots(t *testing.T, text string) []ast.Node {
	t.Helper()
	res, err := LoadResolved(text)
	require.NoError(t, err)
	var roots []ast.Node
	for _, d := range res.Stream().Documents {
		roots = append(roots, d.Root)
	}
	return roots
}

func TestLoadKeyValue(t *testing.T) {
	m, ok := loadRoot(t, "key: value").(*ast.Mapping)
	require.True(t, ok)
	require.Equal(t, 1, m.Len())

	key := m.Pairs[0].Key.(*ast.Scalar)
	value := m.Pairs[0].Value.(*ast.Scalar)
	assert.Equal(t, ast.StringKind, key.Kind)
	assert.Equal(t, "key", key.Value)
	assert.Equal(t, ast.StringKind, value.Kind)
	assert.Equal(t, "value", value.Value)
}

func TestLoadFlowSequence(t *testing.T) {
	seq, ok := loadRoot(t, "[1, 2, 3]").(*ast.Sequence)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, NodeToInterface(seq))
	for _, item := range seq.Items {
		assert.Equal(t, ast.IntKind, item.(*ast.Scalar).Kind)
	}
}

func TestLoadKeepsKeyOrder(t *testing.T) {
	m := loadRoot(t, "a: 1\nb: 2").(*ast.Mapping)
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	m = loadRoot(t, "z: 1\na: 2\nm: 3").(*ast.Mapping)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
}

func TestLoadTrailingComma(t *testing.T) {
	with := loadRoot(t, "{a: 1, b: 2,}")
	without := loadRoot(t, "{a: 1, b: 2}")
	assert.True(t, ast.Equal(with, without))
	assert.Empty(t, cmp.Diff(without, with, ignorePresentation))

	assert.True(t, ast.Equal(loadRoot(t, "[1, 2,]"), loadRoot(t, "[1, 2]")))
}

func TestLoadStream(t *testing.T) {
	stream, err := Load("---\na: 1\n---\nb: 2")
	require.NoError(t, err)
	require.Equal(t, 2, stream.Len())
	for _, d := range stream.Documents {
		assert.True(t, d.ExplicitStart)
	}
	assert.Equal(t, map[string]any{"a": int64(1)}, NodeToInterface(stream.Documents[0].Root))
	assert.Equal(t, map[string]any{"b": int64(2)}, NodeToInterface(stream.Documents[1].Root))
}

func TestScalarInference(t *testing.T) {
	tests := []struct {
		text string
		kind ast.ScalarKind
		want any
	}{
		{"123", ast.IntKind, int64(123)},
		{"true", ast.BoolKind, true},
		{"3.14", ast.FloatKind, 3.14},
		{"hello", ast.StringKind, "hello"},
		{`"123"`, ast.StringKind, "123"},
		{`"true"`, ast.StringKind, "true"},
		{`"3.14"`, ast.StringKind, "3.14"},
		{`"null"`, ast.StringKind, "null"},
		{`"hello"`, ast.StringKind, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s, ok := loadRoot(t, tt.text).(*ast.Scalar)
			require.True(t, ok)
			assert.Equal(t, tt.kind, s.Kind)
			assert.Equal(t, tt.want, s.Value)
		})
	}

	_, isNull := loadRoot(t, "null").(*ast.Null)
	assert.True(t, isNull)
}

func TestRoundTripStability(t *testing.T) {
	inputs := []string{
		"key: value\n",
		"a: 1\nb: -2.5\nc: true\nd: ~\ne: 'quoted'\nf: \"123\"\ng: hello world\n",
		"- 0x1F\n- .inf\n- 1e3\n- ''\n- \"true\"\n",
		"text: |\n  line one\n  line two\nfolded: >\n  one\n  two\n",
		"{a: [1, 2], b: {c: d}}\n",
		"--- first\n--- second\n",
		"outer:\n  inner:\n    - x\n    - y: z\n",
		"\"quoted key\": \"tab\\there\"\n",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			want := resolvedRoots(t, in)

			stream, err := Load(in)
			require.NoError(t, err)
			text, err := ToText(stream)
			require.NoError(t, err)

			got := resolvedRoots(t, text)
			assert.Empty(t, cmp.Diff(want, got, ignorePresentation), "rendered as:\n%s", text)
		})
	}
}

func TestResolveAliasThroughAPI(t *testing.T) {
	stream, err := Load("base: &b {x: [1, 2]}\none: *b\ntwo: *b\n")
	require.NoError(t, err)
	res, err := Resolve(stream)
	require.NoError(t, err)

	root := res.Documents[0].Root.(*ast.Mapping)
	base, _ := root.Get("base")
	one, _ := root.Get("one")
	two, _ := root.Get("two")
	assert.True(t, ast.Equal(ast.Unwrap(base), one))

	x, _ := one.(*ast.Mapping).Get("x")
	x.(*ast.Sequence).Items = nil
	assert.Equal(t, map[string]any{"x": []any{int64(1), int64(2)}}, NodeToInterface(two))

	_, isAlias := stream.Documents[0].Root.(*ast.Mapping).Pairs[1].Value.(*ast.Alias)
	assert.True(t, isAlias, "Resolve leaves its input alone")
}

func TestResolveSemanticErrors(t *testing.T) {
	_, err := LoadResolved("x: &a [*a]")
	assert.True(t, yamlerr.Is(err, yamlerr.CircularReference))

	_, err = LoadResolved("a: &x 1\nb: &x 2\n")
	e, ok := yamlerr.As(err)
	require.True(t, ok)
	assert.Equal(t, yamlerr.ConflictingAnchor, e.Kind)
	assert.Equal(t, 2, e.Pos.Line)
	require.Len(t, e.Related, 1)
	assert.Equal(t, 1, e.Related[0].Line)
	assert.Contains(t, e.Error(), "line 2, column 4")
	assert.Contains(t, e.Error(), "line 1, column 4")
}

func TestResolveExpansionLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("a: &a [x, x, x, x, x, x, x, x]\n")
	prev := "a"
	for _, name := range []string{"b", "c", "d", "e", "f", "g", "h"} {
		sb.WriteString(name + ": &" + name + " [" + strings.Repeat("*"+prev+", ", 7) + "*" + prev + "]\n")
		prev = name
	}

	cfg := semantic.DefaultConfig()
	cfg.MaxTotalExpansions = 5000
	for range 2 {
		_, err := LoadResolved(sb.String(), WithConfig(cfg))
		e, ok := yamlerr.As(err)
		require.True(t, ok)
		assert.Equal(t, yamlerr.ExpansionLimitExceeded, e.Kind)
		assert.Contains(t, e.Message, "limit of 5000")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  yamlerr.Kind
	}{
		{"valid mapping", "name: Alice\nage: 30", 0},
		{"valid sequence", "- apple\n- banana", 0},
		{"empty", "", 0},
		{"aliases", "a: &a 1\nb: *a", 0},
		{"unclosed flow sequence", "[1, 2", yamlerr.UnexpectedEOF},
		{"undefined alias", "a: *missing", yamlerr.UnresolvedAlias},
		{"unknown tag", "a: !!nope x", yamlerr.UnknownTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.kind == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.kind != yamlerr.UnexpectedEOF {
				assert.True(t, yamlerr.Is(err, tt.kind), err.Error())
			}
		})
	}

	cfg := semantic.DefaultConfig()
	cfg.PermissiveTags = true
	assert.NoError(t, Validate("a: !!nope x", WithConfig(cfg)))
}

func TestParseOne(t *testing.T) {
	doc, err := ParseOne("")
	require.NoError(t, err)
	assert.Nil(t, doc.Root)

	_, err = ParseOne("--- a\n--- b\n")
	assert.True(t, yamlerr.Is(err, yamlerr.UnexpectedToken))
}

func TestParseReader(t *testing.T) {
	stream, err := ParseReader(strings.NewReader("name: Bob\ncity: NYC"))
	require.NoError(t, err)
	require.Equal(t, 1, stream.Len())
	assert.Equal(t, map[string]any{"name": "Bob", "city": "NYC"}, NodeToInterface(stream.Documents[0].Root))

	_, err = ParseReader(iotest.ErrReader(assert.AnError))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWithMaxDepth(t *testing.T) {
	_, err := Load("[[[1]]]", WithMaxDepth(2))
	assert.True(t, yamlerr.Is(err, yamlerr.RecursionLimitExceeded))

	_, err = Load("[[[1]]]", WithMaxDepth(3))
	assert.NoError(t, err)
}
