package yaml

import (
	"reflect"

	"github.com/shapestone/yamlref/pkg/ast"
)

// Marshal returns the YAML encoding of v.
//
// Marshal builds a document tree for v with InterfaceToNode and renders it
// with ToText. If an encountered value implements Marshaler, Marshal encodes
// the value its MarshalYAML method returns instead. Values implementing
// encoding.TextMarshaler encode as strings.
//
// Otherwise, Marshal uses the following type-dependent default encodings:
//
// Boolean, integer, floating point and string values encode as scalars.
//
// Array and slice values encode as sequences, except that a nil slice
// encodes as null.
//
// Struct values encode as mappings in field declaration order. Each exported
// field becomes an entry keyed by the lowercased field name, unless the
// "yaml" tag names it otherwise. The tag options are:
//
//	omitempty  omit the field if it has an empty value
//	flow       render the sequence or mapping in flow style
//	inline     merge the fields of an embedded struct into the parent
//
// As a special case, if the field tag is "-", the field is always omitted.
//
// Map values encode as mappings sorted by key.
//
// Pointer and interface values encode as the value they hold; nil encodes as
// null. An ast.Node value is copied into the tree as is.
//
// Channel, complex and function values cannot be encoded.
//
// Example:
//
//	type Config struct {
//	    Name string
//	    Port int
//	}
//	data, err := yaml.Marshal(Config{Name: "server", Port: 8080})
//	// data is []byte("name: server\nport: 8080\n")
func Marshal(v any) ([]byte, error) {
	node, err := InterfaceToNode(v)
	if err != nil {
		return nil, err
	}
	text, err := ToText(node)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// Marshaler is the interface implemented by types that choose the value they
// are encoded as.
type Marshaler interface {
	MarshalYAML() (any, error)
}

// InterfaceToNode builds a document tree for a Go value, using the encodings
// described at Marshal.
//
// Example:
//
//	node, _ := yaml.InterfaceToNode(map[string]any{
//	    "name": "Alice",
//	    "tags": []any{"go", "yaml"},
//	})
//	// node is an *ast.Mapping with the keys "name" and "tags"
func InterfaceToNode(v any) (ast.Node, error) {
	return encodeValue(reflect.ValueOf(v))
}
