package yaml

import (
	"encoding"
	"math"
	"reflect"
	"time"

	"github.com/pkg/errors"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// Unmarshal loads data, resolves it and decodes the first document into the
// value pointed to by v. Further documents are ignored.
//
// Unmarshal allocates maps, slices and pointers as necessary, with the
// following rules:
//
// A null, or an empty input, sets the target to its zero value.
//
// To decode a mapping into a struct, Unmarshal matches the keys to the field
// names, or to the names given in the "yaml" tag, preferring an exact match
// but also accepting a case-insensitive one. Keys without a field are
// ignored. Only exported fields are set.
//
// To decode into an interface value, Unmarshal stores one of these:
//
//	bool, for YAML booleans
//	int64, for YAML integers
//	float64, for YAML floats
//	string, for YAML strings
//	[]any, for YAML sequences
//	map[string]any, for YAML mappings
//	nil for YAML null
//
// Example:
//
//	type Config struct {
//	    Name string
//	    Port int
//	}
//	var cfg Config
//	err := yaml.Unmarshal([]byte("name: server\nport: 8080"), &cfg)
func Unmarshal(data []byte, v any, opts ...Option) error {
	res, err := LoadResolved(string(data), opts...)
	if err != nil {
		return err
	}
	var root ast.Node
	if docs := res.Stream().Documents; len(docs) > 0 {
		root = docs[0].Root
	}
	return Decode(root, v)
}

// Unmarshaler is the interface implemented by types that decode a YAML node
// themselves.
type Unmarshaler interface {
	UnmarshalYAML(node ast.Node) error
}

var durationType = reflect.TypeOf(time.Duration(0))

// Decode stores the value of a resolved tree in the value pointed to by v.
func Decode(node ast.Node, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || v == nil {
		return errors.New("yaml: Decode(nil)")
	}
	if rv.Kind() != reflect.Ptr {
		return errors.New("yaml: Decode(non-pointer " + rv.Type().String() + ")")
	}
	if rv.IsNil() {
		return errors.New("yaml: Decode(nil " + rv.Type().String() + ")")
	}
	return decodeValue(node, rv.Elem())
}

// decodeValue decodes node into rv
func decodeValue(node ast.Node, rv reflect.Value) error {
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalYAML(node)
		}
	}

	node = ast.Unwrap(node)
	switch n := node.(type) {
	case nil, *ast.Null:
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	case *ast.Alias:
		return yamlerr.New(yamlerr.TypeMismatch, n.Position, "cannot decode unresolved alias %q", n.Name)
	}

	// Handle interface{} specially
	if rv.Kind() == reflect.Interface && rv.NumMethod() == 0 {
		rv.Set(reflect.ValueOf(NodeToInterface(node)))
		return nil
	}

	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeValue(node, rv.Elem())
	}

	switch n := node.(type) {
	case *ast.Scalar:
		return decodeScalar(n, rv)
	case *ast.Sequence:
		return decodeSequence(n, rv)
	case *ast.Mapping:
		return decodeMapping(n, rv)
	}
	return mismatch(node, rv)
}

// decodeScalar decodes a scalar into rv
func decodeScalar(n *ast.Scalar, rv reflect.Value) error {
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if err := u.UnmarshalText([]byte(n.Text)); err != nil {
				return yamlerr.New(yamlerr.TypeMismatch, n.Position, "%v", err)
			}
			return nil
		}
	}

	if rv.Type() == durationType && n.Kind == ast.StringKind {
		d, err := time.ParseDuration(n.Text)
		if err != nil {
			return yamlerr.New(yamlerr.TypeMismatch, n.Position, "cannot decode %q into a duration", n.Text)
		}
		rv.SetInt(int64(d))
		return nil
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(n.Text)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := n.Value.(type) {
		case int64:
			if rv.OverflowInt(v) {
				return overflow(n, rv)
			}
			rv.SetInt(v)
			return nil
		case float64:
			// Allow conversion from float to int if it's a whole number
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				i := int64(v)
				if rv.OverflowInt(i) {
					return overflow(n, rv)
				}
				rv.SetInt(i)
				return nil
			}
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch v := n.Value.(type) {
		case int64:
			if v < 0 || rv.OverflowUint(uint64(v)) {
				return overflow(n, rv)
			}
			rv.SetUint(uint64(v))
			return nil
		case float64:
			if v >= 0 && v == math.Trunc(v) && !math.IsInf(v, 0) {
				u := uint64(v)
				if rv.OverflowUint(u) {
					return overflow(n, rv)
				}
				rv.SetUint(u)
				return nil
			}
		}

	case reflect.Float32, reflect.Float64:
		var f float64
		switch v := n.Value.(type) {
		case float64:
			f = v
		case int64:
			f = float64(v)
		default:
			return mismatch(n, rv)
		}
		if rv.OverflowFloat(f) {
			return overflow(n, rv)
		}
		rv.SetFloat(f)
		return nil

	case reflect.Bool:
		if b, ok := n.Value.(bool); ok {
			rv.SetBool(b)
			return nil
		}
	}
	return mismatch(n, rv)
}

// decodeSequence decodes a sequence into a slice or array
func decodeSequence(n *ast.Sequence, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Slice:
		slice := reflect.MakeSlice(rv.Type(), len(n.Items), len(n.Items))
		for i, item := range n.Items {
			if err := decodeValue(item, slice.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(slice)
		return nil

	case reflect.Array:
		if len(n.Items) > rv.Len() {
			return yamlerr.New(yamlerr.TypeMismatch, n.Position,
				"sequence length %d exceeds target array length %d", len(n.Items), rv.Len())
		}
		for i, item := range n.Items {
			if err := decodeValue(item, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return mismatch(n, rv)
}

// decodeMapping decodes a mapping into a struct or map
func decodeMapping(n *ast.Mapping, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Struct:
		fields := structFields(rv.Type())
		for _, p := range n.Pairs {
			name, ok := ast.KeyText(p.Key)
			if !ok {
				continue
			}
			f, ok := fieldByName(fields, name)
			if !ok {
				continue
			}
			if err := decodeValue(p.Value, rv.FieldByIndex(f.index)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if rv.IsNil() {
			rv.Set(reflect.MakeMapWithSize(rv.Type(), len(n.Pairs)))
		}
		keyType, valueType := rv.Type().Key(), rv.Type().Elem()
		for _, p := range n.Pairs {
			key := reflect.New(keyType).Elem()
			if err := decodeValue(p.Key, key); err != nil {
				return err
			}
			if keyType.Kind() == reflect.Interface && !key.IsNil() && !key.Elem().Type().Comparable() {
				return yamlerr.New(yamlerr.TypeMismatch, p.Key.Pos(), "cannot use a %s as a map key", describeNode(p.Key))
			}
			value := reflect.New(valueType).Elem()
			if err := decodeValue(p.Value, value); err != nil {
				return err
			}
			rv.SetMapIndex(key, value)
		}
		return nil
	}
	return mismatch(n, rv)
}

func mismatch(n ast.Node, rv reflect.Value) error {
	return yamlerr.New(yamlerr.TypeMismatch, n.Pos(), "cannot decode %s into Go value of type %s", describeNode(n), rv.Type())
}

func overflow(n *ast.Scalar, rv reflect.Value) error {
	return yamlerr.New(yamlerr.TypeMismatch, n.Position, "value %s overflows %s", n.Text, rv.Type())
}

func describeNode(n ast.Node) string {
	switch v := ast.Unwrap(n).(type) {
	case *ast.Scalar:
		return "a " + v.Kind.String()
	case *ast.Sequence:
		return "a sequence"
	case *ast.Mapping:
		return "a mapping"
	case *ast.Alias:
		return "an alias"
	}
	return "null"
}
