package semantic

import (
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/shapestone/yamlref/internal/scalar"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// CoreTagPrefix is the prefix the "!!" handle expands to.
const CoreTagPrefix = "tag:yaml.org,2002:"

// Core tags.
const (
	TagStr   = CoreTagPrefix + "str"
	TagInt   = CoreTagPrefix + "int"
	TagFloat = CoreTagPrefix + "float"
	TagBool  = CoreTagPrefix + "bool"
	TagNull  = CoreTagPrefix + "null"
	TagMap   = CoreTagPrefix + "map"
	TagSeq   = CoreTagPrefix + "seq"

	// NonSpecificTag is the bare "!" tag. It forces a scalar to a string.
	NonSpecificTag = "!"
)

// knownTags lists the tags under CoreTagPrefix that are accepted. Only the
// core schema tags change a node; the others are kept as annotations.
var knownTags = map[string]bool{
	"str": true, "int": true, "float": true, "bool": true, "null": true,
	"map": true, "seq": true,
	"binary": true, "timestamp": true, "set": true, "omap": true, "pairs": true,
	"merge": true, "value": true,
}

// tagHandles returns the handle table for d: the two built-in handles, then
// the configured ones, then the document's %TAG directives.
func (a *Analyzer) tagHandles(d *ast.Document) map[string]string {
	handles := map[string]string{"!": "!", "!!": CoreTagPrefix}
	maps.Copy(handles, a.cfg.TagHandles)
	maps.Copy(handles, d.TagHandles)
	return handles
}

// resolveTags expands the tag of every Tagged node of d and applies the core
// tags to their content. Unknown tags are errors unless PermissiveTags is set.
func (a *Analyzer) resolveTags(doc int, d *ast.Document) *yamlerr.Error {
	if d.Root == nil {
		return nil
	}
	handles := a.tagHandles(d)

	var fatal *yamlerr.Error
	ast.Inspect(d.Root, func(n ast.Node) bool {
		if fatal != nil {
			return false
		}
		t, ok := n.(*ast.Tagged)
		if !ok {
			return true
		}
		tag, err := expandTag(t, handles)
		if err != nil {
			err.WithDocument(doc)
			if a.cfg.PermissiveTags {
				a.result.Warnings = append(a.result.Warnings, warningFrom(err))
				t.Tag = t.Shorthand()
				return true
			}
			fatal = err
			return false
		}
		t.Tag = tag
		node, err := applyTag(tag, t.Node)
		if err != nil {
			fatal = err.WithDocument(doc)
			return false
		}
		t.Node = node
		a.stats.TagsResolved++
		return true
	})
	return fatal
}

// expandTag turns the shorthand of t into a full tag.
func expandTag(t *ast.Tagged, handles map[string]string) (string, *yamlerr.Error) {
	tag := t.Suffix
	if !t.Verbatim {
		if t.Handle == "!" && t.Suffix == "" {
			return NonSpecificTag, nil
		}
		prefix, ok := handles[t.Handle]
		if !ok {
			return "", yamlerr.New(yamlerr.UnknownTagHandle, t.Position, "found undefined tag handle %s", t.Handle)
		}
		tag = prefix + t.Suffix
	}
	if name, core := strings.CutPrefix(tag, CoreTagPrefix); core && !knownTags[name] {
		return "", yamlerr.New(yamlerr.UnknownTag, t.Position, "unknown tag %s", t.Shorthand())
	}
	return tag, nil
}

// applyTag returns n converted to the type the core tag names. Other tags
// leave n unchanged. Content that is still an alias is left alone.
func applyTag(tag string, n ast.Node) (ast.Node, *yamlerr.Error) {
	if _, alias := n.(*ast.Alias); alias {
		return n, nil
	}
	switch tag {
	case TagStr, NonSpecificTag:
		return coerceToString(tag, n)
	case TagInt:
		return coerceToInt(n)
	case TagFloat:
		return coerceToFloat(n)
	case TagBool:
		return coerceToBool(n)
	case TagNull:
		switch v := n.(type) {
		case *ast.Scalar:
			return &ast.Null{Position: v.Position, Text: v.Text}, nil
		case *ast.Null:
			return v, nil
		}
		return nil, kindError(tag, n)
	case TagMap:
		if _, ok := n.(*ast.Mapping); !ok {
			return nil, yamlerr.New(yamlerr.TypeMismatch, n.Pos(), "!!map tag applied to a %s", describe(n))
		}
	case TagSeq:
		if _, ok := n.(*ast.Sequence); !ok {
			return nil, yamlerr.New(yamlerr.TypeMismatch, n.Pos(), "!!seq tag applied to a %s", describe(n))
		}
	}
	return n, nil
}

func coerceToString(tag string, n ast.Node) (ast.Node, *yamlerr.Error) {
	switch v := n.(type) {
	case *ast.Scalar:
		return ast.NewString(v.Text, v.Style, v.Position), nil
	case *ast.Null:
		return ast.NewString(v.Text, ast.Plain, v.Position), nil
	}
	return nil, kindError(tag, n)
}

func coerceToInt(n ast.Node) (ast.Node, *yamlerr.Error) {
	var i int64
	switch v := n.(type) {
	case *ast.Null:
		return retype(v.Position, ast.Plain, ast.IntKind, "0", int64(0)), nil
	case *ast.Scalar:
		switch v.Kind {
		case ast.IntKind:
			return v, nil
		case ast.FloatKind:
			f := v.Value.(float64)
			if math.IsInf(f, 0) || math.IsNaN(f) {
				return nil, conversionError(v, "an integer")
			}
			i = int64(f)
		case ast.BoolKind:
			if v.Value.(bool) {
				i = 1
			}
		default:
			var ok bool
			if i, ok = scalar.ParseInt(v.Text); !ok {
				return nil, conversionError(v, "an integer")
			}
		}
		return retype(v.Position, v.Style, ast.IntKind, strconv.FormatInt(i, 10), i), nil
	}
	return nil, kindError(TagInt, n)
}

func coerceToFloat(n ast.Node) (ast.Node, *yamlerr.Error) {
	var f float64
	switch v := n.(type) {
	case *ast.Null:
		return retype(v.Position, ast.Plain, ast.FloatKind, "0.0", 0.0), nil
	case *ast.Scalar:
		switch v.Kind {
		case ast.FloatKind:
			return v, nil
		case ast.IntKind:
			f = float64(v.Value.(int64))
		case ast.BoolKind:
			if v.Value.(bool) {
				f = 1
			}
		default:
			var ok bool
			if f, ok = scalar.ParseFloat(v.Text); !ok {
				i, isInt := scalar.ParseInt(v.Text)
				if !isInt {
					return nil, conversionError(v, "a float")
				}
				f = float64(i)
			}
		}
		return retype(v.Position, v.Style, ast.FloatKind, scalar.FormatFloat(f), f), nil
	}
	return nil, kindError(TagFloat, n)
}

func coerceToBool(n ast.Node) (ast.Node, *yamlerr.Error) {
	var b bool
	switch v := n.(type) {
	case *ast.Null:
		return retype(v.Position, ast.Plain, ast.BoolKind, "false", false), nil
	case *ast.Scalar:
		switch v.Kind {
		case ast.BoolKind:
			return v, nil
		case ast.IntKind:
			b = v.Value.(int64) != 0
		case ast.FloatKind:
			b = v.Value.(float64) != 0
		default:
			var ok bool
			if b, ok = scalar.ParseBool(v.Text); !ok {
				return nil, conversionError(v, "a boolean")
			}
		}
		return retype(v.Position, v.Style, ast.BoolKind, strconv.FormatBool(b), b), nil
	}
	return nil, kindError(TagBool, n)
}

func retype(pos ast.Position, style ast.ScalarStyle, kind ast.ScalarKind, text string, value any) *ast.Scalar {
	return &ast.Scalar{Position: pos, Style: style, Kind: kind, Text: text, Value: value}
}

func conversionError(s *ast.Scalar, target string) *yamlerr.Error {
	return yamlerr.New(yamlerr.TagResolutionFailed, s.Position, "cannot convert %q to %s", s.Text, target)
}

func kindError(tag string, n ast.Node) *yamlerr.Error {
	short := tag
	if name, core := strings.CutPrefix(tag, CoreTagPrefix); core {
		short = "!!" + name
	}
	return yamlerr.New(yamlerr.InvalidTagKind, n.Pos(), "%s tag cannot be applied to a %s", short, describe(n))
}

// describe names the variant of n for messages.
func describe(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Scalar:
		return v.Kind.String() + " scalar"
	case *ast.Null:
		return "null"
	case *ast.Sequence:
		return "sequence"
	case *ast.Mapping:
		return "mapping"
	case *ast.Alias:
		return "alias"
	case *ast.Anchor:
		return "anchor"
	case *ast.Tagged:
		return "tagged node"
	}
	return "node"
}
