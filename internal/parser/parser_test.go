package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// Test helpers

// plainValue flattens a tree into Go values. Anchors and tags are looked
// through and aliases become "*name".
func plainValue(n ast.Node) any {
	switch v := n.(type) {
	case nil:
		return nil
	case *ast.Scalar:
		return v.Value
	case *ast.Null:
		return nil
	case *ast.Alias:
		return "*" + v.Name
	case *ast.Anchor:
		return plainValue(v.Node)
	case *ast.Tagged:
		return plainValue(v.Node)
	case *ast.Sequence:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = plainValue(item)
		}
		return out
	case *ast.Mapping:
		out := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			k, _ := ast.KeyText(p.Key)
			out[k] = plainValue(p.Value)
		}
		return out
	}
	return nil
}

func parseRoot(t *testing.T, input string) ast.Node {
	t.Helper()
	doc, err := NewParser(input).Parse()
	require.NoError(t, err)
	return doc.Root
}

func assertErrorKind(t *testing.T, err error, kind yamlerr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, yamlerr.Is(err, kind), "expected %s, got %v", kind, err)
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"plain string", "hello", "hello"},
		{"double quoted", `"world"`, "world"},
		{"single quoted", `'test'`, "test"},
		{"quoted number stays string", `"42"`, "42"},
		{"integer", "42", int64(42)},
		{"negative integer", "-17", int64(-17)},
		{"hex integer", "0xff", int64(255)},
		{"float", "3.14", 3.14},
		{"bool", "true", true},
		{"bool yes", "Yes", true},
		{"null tilde", "~", nil},
		{"null word", "null", nil},
		{"multi-line plain", "one\ntwo\n\nthree", "one two\nthree"},
		{"document start inline", "--- text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, plainValue(parseRoot(t, tt.input)))
		})
	}
}

func TestParseBlockMappings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{
			name:     "flat",
			input:    "a: 1\nb: two\n",
			expected: map[string]any{"a": int64(1), "b": "two"},
		},
		{
			name:     "nested",
			input:    "a: 1\nb: [x, y]\nc:\n  d: true\n",
			expected: map[string]any{"a": int64(1), "b": []any{"x", "y"}, "c": map[string]any{"d": true}},
		},
		{
			name:     "empty values",
			input:    "a:\nb: ~\nc: null\n",
			expected: map[string]any{"a": nil, "b": nil, "c": nil},
		},
		{
			name:     "continued value",
			input:    "a: hello\n  world\nb: 2\n",
			expected: map[string]any{"a": "hello world", "b": int64(2)},
		},
		{
			name:     "compact sequence value",
			input:    "a:\n- 1\n- 2\nb: x\n",
			expected: map[string]any{"a": []any{int64(1), int64(2)}, "b": "x"},
		},
		{
			name:     "quoted keys",
			input:    "\"a b\": 1\n'c': 2\n",
			expected: map[string]any{"a b": int64(1), "c": int64(2)},
		},
		{
			name:     "explicit key",
			input:    "? a\n: b\n",
			expected: map[string]any{"a": "b"},
		},
		{
			name:     "explicit key without value",
			input:    "? a\nb: 1\n",
			expected: map[string]any{"a": nil, "b": int64(1)},
		},
		{
			name:     "comments between entries",
			input:    "# head\na: 1 # one\n# middle\nb: 2\n",
			expected: map[string]any{"a": int64(1), "b": int64(2)},
		},
		{
			name:     "value on next line",
			input:    "a:\n  text\nb: 1\n",
			expected: map[string]any{"a": "text", "b": int64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, plainValue(parseRoot(t, tt.input)))
		})
	}
}

func TestParseBlockMappingKeepsOrder(t *testing.T) {
	root := parseRoot(t, "z: 1\na: 2\nm: 3\n")
	m, ok := root.(*ast.Mapping)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
	assert.Equal(t, ast.Block, m.Style)
}

func TestParseBlockSequences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{
			name:     "flat",
			input:    "- a\n- b\n",
			expected: []any{"a", "b"},
		},
		{
			name:     "mappings",
			input:    "- name: a\n  val: 1\n- name: b\n",
			expected: []any{map[string]any{"name": "a", "val": int64(1)}, map[string]any{"name": "b"}},
		},
		{
			name:     "nested compact",
			input:    "- - a\n  - b\n- c\n",
			expected: []any{[]any{"a", "b"}, "c"},
		},
		{
			name:     "empty entries",
			input:    "-\n- x\n-\n",
			expected: []any{nil, "x", nil},
		},
		{
			name:     "indented under key",
			input:    "items:\n  - 1\n  - 2\n",
			expected: map[string]any{"items": []any{int64(1), int64(2)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, plainValue(parseRoot(t, tt.input)))
		})
	}
}

func TestParseFlowCollections(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"empty sequence", "[]", []any{}},
		{"empty mapping", "{}", map[string]any{}},
		{"sequence", "[1, two, 3.0]", []any{int64(1), "two", 3.0}},
		{"trailing comma", "[a, b,]", []any{"a", "b"}},
		{"mapping", "{a: 1, b: [2, 3], c}", map[string]any{"a": int64(1), "b": []any{int64(2), int64(3)}, "c": nil}},
		{"json style", `{"a":1,"b":[true,null]}`, map[string]any{"a": int64(1), "b": []any{true, nil}}},
		{"pair in sequence", "[a: 1, b]", []any{map[string]any{"a": int64(1)}, "b"}},
		{"explicit pair in sequence", "[? a : 1]", []any{map[string]any{"a": int64(1)}}},
		{"missing value", "{a: , b: 2}", map[string]any{"a": nil, "b": int64(2)}},
		{"multi-line", "[a,\n b\n  c]", []any{"a", "b c"}},
		{"nested", "[[1, [2]], {k: {v: x}}]", []any{[]any{int64(1), []any{int64(2)}}, map[string]any{"k": map[string]any{"v": "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, plainValue(parseRoot(t, tt.input)))
		})
	}
}

func TestParseBlockScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"literal clip", "t: |\n  line1\n  line2\nnext: x\n", "line1\nline2\n"},
		{"literal strip", "t: |-\n  a\n\n", "a"},
		{"literal keep", "t: |+\n  a\n\n", "a\n\n"},
		{"literal no final break", "t: |\n  a", "a"},
		{"folded", "t: >\n  a\n  b\n\n  c\n", "a b\nc\n"},
		{"folded more indented", "t: >\n  a\n    b\n  c\n", "a\n  b\nc\n"},
		{"literal leading empty line", "t: |\n\n  a\n", "\na\n"},
		{"literal keeps indentation", "t: |\n  a\n    b\n", "a\n  b\n"},
		{"indentation indicator", "t: |2\n    a\n", "  a\n"},
		{"in sequence", "- |\n  x\n- y\n", "x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseRoot(t, tt.input)
			var got ast.Node
			switch r := root.(type) {
			case *ast.Mapping:
				got, _ = r.Get("t")
			case *ast.Sequence:
				got = r.Items[0]
			}
			s, ok := got.(*ast.Scalar)
			require.True(t, ok, "got %T", got)
			assert.Equal(t, tt.expected, s.Text)
			assert.Equal(t, ast.StringKind, s.Kind)
		})
	}
}

func TestParseProperties(t *testing.T) {
	t.Run("anchor on value", func(t *testing.T) {
		root := parseRoot(t, "a: &x 1\nb: *x\n")
		m := root.(*ast.Mapping)
		a, _ := m.Get("a")
		anchor, ok := a.(*ast.Anchor)
		require.True(t, ok)
		assert.Equal(t, "x", anchor.Name)
		b, _ := m.Get("b")
		alias, ok := b.(*ast.Alias)
		require.True(t, ok)
		assert.Equal(t, "x", alias.Name)
	})

	t.Run("anchor on block mapping below", func(t *testing.T) {
		root := parseRoot(t, "base: &b\n  x: 1\nref: *b\n")
		base, _ := root.(*ast.Mapping).Get("base")
		anchor, ok := base.(*ast.Anchor)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"x": int64(1)}, plainValue(anchor.Node))
	})

	t.Run("anchor on key", func(t *testing.T) {
		root := parseRoot(t, "&k key: v\n")
		m, ok := root.(*ast.Mapping)
		require.True(t, ok)
		_, isAnchor := m.Pairs[0].Key.(*ast.Anchor)
		assert.True(t, isAnchor)
	})

	t.Run("tag and anchor", func(t *testing.T) {
		root := parseRoot(t, "v: !!str &n 42\n")
		v, _ := root.(*ast.Mapping).Get("v")
		anchor, ok := v.(*ast.Anchor)
		require.True(t, ok)
		tagged, ok := anchor.Node.(*ast.Tagged)
		require.True(t, ok)
		assert.Equal(t, "!!", tagged.Handle)
		assert.Equal(t, "str", tagged.Suffix)
		assert.Equal(t, "!!str", tagged.Shorthand())
	})

	t.Run("tag on document root", func(t *testing.T) {
		root := parseRoot(t, `!!int "42"`)
		tagged, ok := root.(*ast.Tagged)
		require.True(t, ok)
		assert.Equal(t, "int", tagged.Suffix)
		s := tagged.Node.(*ast.Scalar)
		assert.Equal(t, ast.DoubleQuoted, s.Style)
	})

	t.Run("verbatim tag", func(t *testing.T) {
		root := parseRoot(t, "!<tag:example.com,2000:x> v")
		tagged := root.(*ast.Tagged)
		assert.True(t, tagged.Verbatim)
		assert.Equal(t, "tag:example.com,2000:x", tagged.Tag)
	})

	t.Run("tag on empty node", func(t *testing.T) {
		root := parseRoot(t, "a: !!null\nb: 1\n")
		a, _ := root.(*ast.Mapping).Get("a")
		tagged, ok := a.(*ast.Tagged)
		require.True(t, ok)
		_, isNull := tagged.Node.(*ast.Null)
		assert.True(t, isNull)
	})

	t.Run("anchor in flow", func(t *testing.T) {
		root := parseRoot(t, "[&a 1, *a]")
		seq := root.(*ast.Sequence)
		_, isAnchor := seq.Items[0].(*ast.Anchor)
		assert.True(t, isAnchor)
		_, isAlias := seq.Items[1].(*ast.Alias)
		assert.True(t, isAlias)
	})
}

func TestParsePositions(t *testing.T) {
	root := parseRoot(t, "a:\n  - x\n  - y: 1\n")
	m := root.(*ast.Mapping)
	assert.Equal(t, ast.Position{Line: 1, Column: 1, Offset: 0}, m.Pos())

	seq, _ := m.Get("a")
	assert.Equal(t, 2, seq.Pos().Line)
	assert.Equal(t, 3, seq.Pos().Column)

	inner := seq.(*ast.Sequence).Items[1].(*ast.Mapping)
	assert.Equal(t, ast.Position{Line: 3, Column: 5, Offset: 13}, inner.Pos())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  yamlerr.Kind
	}{
		{"doubled comma", "[a,,b]", yamlerr.UnexpectedToken},
		{"leading comma", "[,a]", yamlerr.UnexpectedToken},
		{"leading comma in mapping", "{, a: 1}", yamlerr.UnexpectedToken},
		{"missing comma", `["a" "b"]`, yamlerr.ExpectedToken},
		{"unclosed sequence", "[a, b", yamlerr.UnexpectedEOF},
		{"unclosed mapping", "{a: 1", yamlerr.UnexpectedEOF},
		{"mismatched bracket", "[a}", yamlerr.UnexpectedToken},
		{"duplicate key", "a: 1\na: 2\n", yamlerr.DuplicateKey},
		{"duplicate flow key", "{a: 1, a: 2}", yamlerr.DuplicateKey},
		{"nested mapping on value line", "key: value: x\n", yamlerr.UnexpectedToken},
		{"sequence on value line", "key: - x\n", yamlerr.UnexpectedToken},
		{"deeper sequence entry", "- a\n  - b\n", yamlerr.InvalidIndentation},
		{"deeper mapping entry", "a:\n  b: 1\n c: 2\n", yamlerr.InvalidIndentation},
		{"entry after scalar value", "a: 1\n- b\n", yamlerr.UnexpectedToken},
		{"missing colon", "a: 1\nb\n", yamlerr.ExpectedToken},
		{"content after document", "[a]\nb", yamlerr.UnexpectedToken},
		{"alias with anchor", "a: &x *y\n", yamlerr.InvalidAlias},
		{"two anchors", "a: &x &y 1\n", yamlerr.InvalidAnchor},
		{"block entry in flow", "[- a]", yamlerr.UnexpectedToken},
		{"scanner error", "a: \"open\n", yamlerr.UnterminatedString},
		{"indentation error", "a:\n    b:\n  c: 2\n", yamlerr.InvalidIndentation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(tt.input).ParseStream()
			assertErrorKind(t, err, tt.kind)
		})
	}
}

func TestParseDuplicateKeyPositions(t *testing.T) {
	_, err := NewParser("a: 1\nb: 2\na: 3\n").ParseStream()
	e, ok := yamlerr.As(err)
	require.True(t, ok)
	assert.Equal(t, yamlerr.DuplicateKey, e.Kind)
	assert.Equal(t, 3, e.Pos.Line)
	require.Len(t, e.Related, 1)
	assert.Equal(t, 1, e.Related[0].Line)
}

func TestParseDistinctKeyKinds(t *testing.T) {
	root := parseRoot(t, "1: int\n\"1\": string\n")
	assert.Equal(t, 2, root.(*ast.Mapping).Len())
}

func TestParseMergeKeysMayRepeat(t *testing.T) {
	root := parseRoot(t, "a: &a {x: 1}\nb: &b {y: 2}\nc:\n  <<: *a\n  <<: *b\n")
	c, _ := root.(*ast.Mapping).Get("c")
	assert.Equal(t, 2, c.(*ast.Mapping).Len())
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 600) + strings.Repeat("]", 600)
	_, err := NewParser(deep).ParseStream()
	assertErrorKind(t, err, yamlerr.RecursionLimitExceeded)

	nested := "a:\n  b:\n    c:\n      d: 1\n"
	_, err = NewParser(nested, WithMaxDepth(3)).ParseStream()
	assertErrorKind(t, err, yamlerr.RecursionLimitExceeded)

	_, err = NewParser(nested, WithMaxDepth(10)).ParseStream()
	assert.NoError(t, err)

	shallow := strings.Repeat("[", 100) + strings.Repeat("]", 100)
	_, err = NewParser(shallow).ParseStream()
	assert.NoError(t, err)
}
