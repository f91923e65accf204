// Package scalar resolves the type of plain scalars.
//
// Resolution rules:
//
//	null  = "" | "~" | "null" | "Null" | "NULL"
//	bool  = true | false | yes | no | on | off   (any case)
//	int   = [-+]? ( [0-9]+ | "0x" [0-9a-fA-F]+ | "0o" [0-7]+ | "0b" [01]+ )
//	float = [-+]? ( "." [0-9]+ | [0-9]+ ( "." [0-9]* )? ) ( [eE] [-+]? [0-9]+ )?
//	      | [-+]? ".inf" | ".nan"   (with "Inf"/"INF", "NaN"/"NAN" variants)
//
// Anything else is a string. A decimal integer too large for int64 resolves
// to a float; a hexadecimal, octal or binary one stays a string.
package scalar

import (
	"math"
	"strconv"
	"strings"

	"github.com/shapestone/yamlref/pkg/ast"
)

// Infer resolves the text of a plain scalar to a typed node: *ast.Null for
// null spellings, *ast.Scalar otherwise.
func Infer(text string, pos ast.Position) ast.Node {
	if IsNull(text) {
		return &ast.Null{Position: pos, Text: text}
	}
	kind, value := Resolve(text)
	return &ast.Scalar{Position: pos, Style: ast.Plain, Kind: kind, Text: text, Value: value}
}

// Resolve returns the kind and typed value of a non-null plain scalar.
func Resolve(text string) (ast.ScalarKind, any) {
	if b, ok := ParseBool(text); ok {
		return ast.BoolKind, b
	}
	if text == "" {
		return ast.StringKind, text
	}
	switch c := text[0]; {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		if i, ok := ParseInt(text); ok {
			return ast.IntKind, i
		}
		if f, ok := ParseFloat(text); ok {
			return ast.FloatKind, f
		}
	}
	return ast.StringKind, text
}

// IsNull reports whether text spells null.
func IsNull(text string) bool {
	switch text {
	case "", "~", "null", "Null", "NULL":
		return true
	}
	return false
}

// ParseBool parses the boolean spellings, ignoring case.
func ParseBool(text string) (bool, bool) {
	if len(text) < 2 || len(text) > 5 {
		return false, false
	}
	switch strings.ToLower(text) {
	case "true", "yes", "on":
		return true, true
	case "false", "no", "off":
		return false, true
	}
	return false, false
}

// ParseInt parses a signed decimal, hexadecimal (0x), octal (0o) or binary
// (0b) integer. It fails for decimal values that overflow int64 so that they
// can resolve as floats.
func ParseInt(text string) (int64, bool) {
	digits := text
	neg := false
	if len(digits) > 0 && (digits[0] == '-' || digits[0] == '+') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if digits == "" {
		return 0, false
	}

	base := 10
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}
		if base != 10 {
			digits = digits[2:]
		}
	}
	for i := 0; i < len(digits); i++ {
		if !isDigitIn(digits[i], base) {
			return 0, false
		}
	}

	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		if u > 1<<63 {
			return 0, false
		}
		return -int64(u), true
	}
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func isDigitIn(b byte, base int) bool {
	switch base {
	case 2:
		return b == '0' || b == '1'
	case 8:
		return b >= '0' && b <= '7'
	case 16:
		return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	}
	return b >= '0' && b <= '9'
}

// ParseFloat parses the float spellings, including .inf and .nan.
func ParseFloat(text string) (float64, bool) {
	body := text
	sign := 1.0
	if len(body) > 0 && (body[0] == '-' || body[0] == '+') {
		if body[0] == '-' {
			sign = -1
		}
		body = body[1:]
	}
	switch body {
	case ".inf", ".Inf", ".INF":
		return math.Inf(int(sign)), true
	case ".nan", ".NaN", ".NAN":
		if len(text) != len(body) {
			return 0, false
		}
		return math.NaN(), true
	}
	if !isFloatSyntax(body) {
		return 0, false
	}
	f, err := strconv.ParseFloat(body, 64)
	if err != nil {
		// Out of range values still resolve, to ±Inf.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return 0, false
		}
	}
	return sign * f, true
}

// isFloatSyntax checks ( "." [0-9]+ | [0-9]+ ( "." [0-9]* )? ) ( [eE] [-+]? [0-9]+ )?
func isFloatSyntax(s string) bool {
	i := 0
	intDigits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			fracDigits++
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			i++
		}
		expDigits := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(s)
}

// FormatFloat renders f so that it resolves back to a float.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
