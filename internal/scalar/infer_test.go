package scalar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/ast"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		text  string
		kind  ast.ScalarKind
		value any
	}{
		{"hello", ast.StringKind, "hello"},
		{"true", ast.BoolKind, true},
		{"False", ast.BoolKind, false},
		{"YES", ast.BoolKind, true},
		{"off", ast.BoolKind, false},
		{"42", ast.IntKind, int64(42)},
		{"-17", ast.IntKind, int64(-17)},
		{"+3", ast.IntKind, int64(3)},
		{"0x1F", ast.IntKind, int64(31)},
		{"0o17", ast.IntKind, int64(15)},
		{"0b101", ast.IntKind, int64(5)},
		{"-9223372036854775808", ast.IntKind, int64(math.MinInt64)},
		{"9223372036854775808", ast.FloatKind, 9223372036854775808.0},
		{"0xFFFFFFFFFFFFFFFFFF", ast.StringKind, "0xFFFFFFFFFFFFFFFFFF"},
		{"3.14", ast.FloatKind, 3.14},
		{"-0.5", ast.FloatKind, -0.5},
		{".5", ast.FloatKind, 0.5},
		{"1e3", ast.FloatKind, 1000.0},
		{"6.02E+23", ast.FloatKind, 6.02e23},
		{"1.", ast.FloatKind, 1.0},
		{"1_000", ast.StringKind, "1_000"},
		{"1e", ast.StringKind, "1e"},
		{"0x", ast.StringKind, "0x"},
		{"-", ast.StringKind, "-"},
		{".", ast.StringKind, "."},
		{"1.2.3", ast.StringKind, "1.2.3"},
		{"12:30", ast.StringKind, "12:30"},
		{"y", ast.StringKind, "y"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			node := Infer(tt.text, ast.StartPosition())
			s, ok := node.(*ast.Scalar)
			require.True(t, ok, "got %T", node)
			assert.Equal(t, tt.kind, s.Kind)
			assert.Equal(t, tt.value, s.Value)
			assert.Equal(t, tt.text, s.Text)
			assert.Equal(t, ast.Plain, s.Style)
		})
	}
}

func TestInferNull(t *testing.T) {
	for _, text := range []string{"", "~", "null", "Null", "NULL"} {
		node := Infer(text, ast.StartPosition())
		n, ok := node.(*ast.Null)
		require.True(t, ok, "%q: got %T", text, node)
		assert.Equal(t, text, n.Text)
	}
	assert.False(t, IsNull("nULL"))
}

func TestInferSpecialFloats(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{".inf", math.Inf(1)},
		{"+.Inf", math.Inf(1)},
		{"-.INF", math.Inf(-1)},
	}
	for _, tt := range tests {
		f, ok := ParseFloat(tt.text)
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.want, f)
	}

	for _, text := range []string{".nan", ".NaN", ".NAN"} {
		f, ok := ParseFloat(text)
		require.True(t, ok, text)
		assert.True(t, math.IsNaN(f))
	}

	_, ok := ParseFloat("-.nan")
	assert.False(t, ok)
	_, ok = ParseFloat(".Nan")
	assert.False(t, ok)
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{2.5, "2.5"},
		{1e21, "1e+21"},
		{math.Inf(1), ".inf"},
		{math.Inf(-1), "-.inf"},
		{math.NaN(), ".nan"},
	}
	for _, tt := range tests {
		got := FormatFloat(tt.in)
		assert.Equal(t, tt.want, got)
		kind, _ := Resolve(got)
		assert.Equal(t, ast.FloatKind, kind, "%s must resolve back to a float", got)
	}
}
