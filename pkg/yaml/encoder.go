package yaml

import (
	"encoding"
	"math"
	"reflect"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/shapestone/yamlref/internal/scalar"
	"github.com/shapestone/yamlref/pkg/ast"
)

// nodeEncoderFunc builds the tree for rv.
type nodeEncoderFunc func(rv reflect.Value) (ast.Node, error)

// Encoder cache: copy-on-write map behind an atomic.Value.
var (
	encoderCache atomic.Value
	encoderMu    sync.Mutex
)

func init() {
	encoderCache.Store(make(map[reflect.Type]nodeEncoderFunc))
}

var (
	marshalerType     = reflect.TypeOf((*Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	nodeType          = reflect.TypeOf((*ast.Node)(nil)).Elem()
)

// encoderForType returns a cached encoder for the given type, building one if needed.
func encoderForType(t reflect.Type) nodeEncoderFunc {
	// Fast path: lock-free read
	m := encoderCache.Load().(map[reflect.Type]nodeEncoderFunc)
	if enc, ok := m[t]; ok {
		return enc
	}

	encoderMu.Lock()
	m = encoderCache.Load().(map[reflect.Type]nodeEncoderFunc)
	if enc, ok := m[t]; ok {
		encoderMu.Unlock()
		return enc
	}

	// Placeholder for recursive types
	var wg sync.WaitGroup
	wg.Add(1)
	var realEnc nodeEncoderFunc
	placeholder := func(rv reflect.Value) (ast.Node, error) {
		wg.Wait()
		return realEnc(rv)
	}
	storeEncoder(m, t, placeholder)
	encoderMu.Unlock()

	// May recursively call encoderForType for field and element types.
	realEnc = buildEncoder(t)

	encoderMu.Lock()
	storeEncoder(encoderCache.Load().(map[reflect.Type]nodeEncoderFunc), t, realEnc)
	encoderMu.Unlock()
	wg.Done()

	return realEnc
}

func storeEncoder(m map[reflect.Type]nodeEncoderFunc, t reflect.Type, enc nodeEncoderFunc) {
	newM := make(map[reflect.Type]nodeEncoderFunc, len(m)+1)
	for k, v := range m {
		newM[k] = v
	}
	newM[t] = enc
	encoderCache.Store(newM)
}

// buildEncoder creates an encoder for the given type.
func buildEncoder(t reflect.Type) nodeEncoderFunc {
	switch {
	case t.Implements(nodeType):
		return nodeEnc
	case t.Implements(marshalerType):
		return marshalerEnc
	case t.Kind() != reflect.Ptr && reflect.PointerTo(t).Implements(marshalerType):
		return addrEncoder(t, marshalerEnc)
	case t.Implements(textMarshalerType):
		return textMarshalerEnc
	case t.Kind() != reflect.Ptr && reflect.PointerTo(t).Implements(textMarshalerType):
		return addrEncoder(t, textMarshalerEnc)
	}

	switch t.Kind() {
	case reflect.Bool:
		return boolEnc
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intEnc
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintEnc
	case reflect.Float32, reflect.Float64:
		return floatEnc
	case reflect.String:
		return stringEnc
	case reflect.Interface:
		return interfaceEnc
	case reflect.Ptr:
		return ptrEncoder(t)
	case reflect.Struct:
		return structEncoder(t)
	case reflect.Map:
		return mapEncoder(t)
	case reflect.Slice:
		return sliceEncoder(t)
	case reflect.Array:
		return arrayEncoder(t)
	}
	return unsupportedEncoder(t)
}

// encodeValue builds the tree for an arbitrary value.
func encodeValue(rv reflect.Value) (ast.Node, error) {
	if !rv.IsValid() {
		return null(), nil
	}
	return encoderForType(rv.Type())(rv)
}

func null() ast.Node { return &ast.Null{Text: "null"} }

func nodeEnc(rv reflect.Value) (ast.Node, error) {
	if rv.IsNil() {
		return null(), nil
	}
	return ast.Clone(rv.Interface().(ast.Node)), nil
}

func marshalerEnc(rv reflect.Value) (ast.Node, error) {
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return null(), nil
	}
	v, err := rv.Interface().(Marshaler).MarshalYAML()
	if err != nil {
		return nil, err
	}
	return encodeValue(reflect.ValueOf(v))
}

func textMarshalerEnc(rv reflect.Value) (ast.Node, error) {
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return null(), nil
	}
	text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return nil, err
	}
	return ast.NewString(string(text), ast.Plain, ast.Position{}), nil
}

// addrEncoder uses enc on the address of addressable values and falls back
// to the plain kind encoder otherwise.
func addrEncoder(t reflect.Type, enc nodeEncoderFunc) nodeEncoderFunc {
	fallback := buildKindEncoder(t)
	return func(rv reflect.Value) (ast.Node, error) {
		if rv.CanAddr() {
			return enc(rv.Addr())
		}
		return fallback(rv)
	}
}

// buildKindEncoder is buildEncoder without the interface checks.
func buildKindEncoder(t reflect.Type) nodeEncoderFunc {
	switch t.Kind() {
	case reflect.Struct:
		return structEncoder(t)
	case reflect.String:
		return stringEnc
	case reflect.Bool:
		return boolEnc
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intEnc
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintEnc
	case reflect.Float32, reflect.Float64:
		return floatEnc
	case reflect.Map:
		return mapEncoder(t)
	case reflect.Slice:
		return sliceEncoder(t)
	case reflect.Array:
		return arrayEncoder(t)
	}
	return unsupportedEncoder(t)
}

func boolEnc(rv reflect.Value) (ast.Node, error) {
	b := rv.Bool()
	return &ast.Scalar{Kind: ast.BoolKind, Text: strconv.FormatBool(b), Value: b}, nil
}

func intEnc(rv reflect.Value) (ast.Node, error) {
	i := rv.Int()
	return &ast.Scalar{Kind: ast.IntKind, Text: strconv.FormatInt(i, 10), Value: i}, nil
}

func uintEnc(rv reflect.Value) (ast.Node, error) {
	u := rv.Uint()
	if u > math.MaxInt64 {
		return nil, errors.Errorf("yaml: value %d overflows int64", u)
	}
	return &ast.Scalar{Kind: ast.IntKind, Text: strconv.FormatUint(u, 10), Value: int64(u)}, nil
}

func floatEnc(rv reflect.Value) (ast.Node, error) {
	f := rv.Float()
	return &ast.Scalar{Kind: ast.FloatKind, Text: scalar.FormatFloat(f), Value: f}, nil
}

func stringEnc(rv reflect.Value) (ast.Node, error) {
	return ast.NewString(rv.String(), ast.Plain, ast.Position{}), nil
}

func interfaceEnc(rv reflect.Value) (ast.Node, error) {
	if rv.IsNil() {
		return null(), nil
	}
	return encodeValue(rv.Elem())
}

func ptrEncoder(t reflect.Type) nodeEncoderFunc {
	elemEnc := encoderForType(t.Elem())
	return func(rv reflect.Value) (ast.Node, error) {
		if rv.IsNil() {
			return null(), nil
		}
		return elemEnc(rv.Elem())
	}
}

type structField struct {
	fieldInfo
	encoder nodeEncoderFunc
}

func structEncoder(t reflect.Type) nodeEncoderFunc {
	infos := structFields(t)
	fields := make([]structField, len(infos))
	for i, info := range infos {
		fields[i] = structField{fieldInfo: info, encoder: encoderForType(t.FieldByIndex(info.index).Type)}
	}

	return func(rv reflect.Value) (ast.Node, error) {
		m := &ast.Mapping{Pairs: make([]ast.Pair, 0, len(fields))}
		for i := range fields {
			f := &fields[i]
			fv := rv.FieldByIndex(f.index)
			if f.omitEmpty && isEmptyValue(fv) {
				continue
			}
			value, err := f.encoder(fv)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s", f.name)
			}
			if f.flow {
				setFlow(value)
			}
			m.Pairs = append(m.Pairs, ast.Pair{
				Key:   ast.NewString(f.name, ast.Plain, ast.Position{}),
				Value: value,
			})
		}
		return m, nil
	}
}

func setFlow(n ast.Node) {
	switch c := n.(type) {
	case *ast.Sequence:
		c.Style = ast.Flow
	case *ast.Mapping:
		c.Style = ast.Flow
	}
}

func mapEncoder(t reflect.Type) nodeEncoderFunc {
	keyEnc := encoderForType(t.Key())
	valEnc := encoderForType(t.Elem())

	return func(rv reflect.Value) (ast.Node, error) {
		if rv.IsNil() {
			return null(), nil
		}
		m := &ast.Mapping{Pairs: make([]ast.Pair, 0, rv.Len())}
		iter := rv.MapRange()
		for iter.Next() {
			key, err := keyEnc(iter.Key())
			if err != nil {
				return nil, err
			}
			value, err := valEnc(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Pairs = append(m.Pairs, ast.Pair{Key: key, Value: value})
		}
		// Map order is random; sort by key text.
		slices.SortFunc(m.Pairs, func(a, b ast.Pair) int {
			return compareKeys(a.Key, b.Key)
		})
		return m, nil
	}
}

// compareKeys orders numbers numerically and everything else by text.
func compareKeys(a, b ast.Node) int {
	sa, aok := a.(*ast.Scalar)
	sb, bok := b.(*ast.Scalar)
	if aok && bok && sa.Kind == ast.IntKind && sb.Kind == ast.IntKind {
		x, y := sa.Value.(int64), sb.Value.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	ka, kb := keyString(a), keyString(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

func sliceEncoder(t reflect.Type) nodeEncoderFunc {
	arrEnc := arrayEncoder(t)
	return func(rv reflect.Value) (ast.Node, error) {
		if rv.IsNil() {
			return null(), nil
		}
		return arrEnc(rv)
	}
}

func arrayEncoder(t reflect.Type) nodeEncoderFunc {
	elemEnc := encoderForType(t.Elem())
	return func(rv reflect.Value) (ast.Node, error) {
		seq := &ast.Sequence{Items: make([]ast.Node, rv.Len())}
		for i := range seq.Items {
			item, err := elemEnc(rv.Index(i))
			if err != nil {
				return nil, errors.Wrapf(err, "sequence element %d", i)
			}
			seq.Items[i] = item
		}
		return seq, nil
	}
}

func unsupportedEncoder(t reflect.Type) nodeEncoderFunc {
	return func(reflect.Value) (ast.Node, error) {
		return nil, errors.Errorf("yaml: unsupported type %s", t)
	}
}
