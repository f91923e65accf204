package yaml

import (
	"fmt"
	"strconv"

	shapeast "github.com/shapestone/shape-core/pkg/ast"

	"github.com/shapestone/yamlref/pkg/ast"
)

// NodeToInterface converts a resolved tree to native Go values.
//
// Converts:
//   - scalars to string, bool, int64 or float64
//   - nulls to nil
//   - sequences to []any
//   - mappings to map[string]any, keyed by the key text
//
// Anchors and tags are looked through. An alias that was never resolved
// converts to nil.
//
// Example:
//
//	res, _ := yaml.LoadResolved("name: Alice\ntags: [go, yaml]")
//	data := yaml.NodeToInterface(res.Documents[0].Root)
//	// map[string]any{"name": "Alice", "tags": []any{"go", "yaml"}}
func NodeToInterface(node ast.Node) any {
	switch n := ast.Unwrap(node).(type) {
	case *ast.Scalar:
		return n.Value
	case *ast.Sequence:
		arr := make([]any, len(n.Items))
		for i, item := range n.Items {
			arr[i] = NodeToInterface(item)
		}
		return arr
	case *ast.Mapping:
		m := make(map[string]any, len(n.Pairs))
		for _, p := range n.Pairs {
			m[keyString(p.Key)] = NodeToInterface(p.Value)
		}
		return m
	}
	return nil
}

// keyString is the map key used for k. Collection keys are rendered with
// their Go value.
func keyString(k ast.Node) string {
	if text, ok := ast.KeyText(k); ok {
		return text
	}
	return fmt.Sprint(NodeToInterface(k))
}

// ToSchemaNode converts a resolved tree to the shape-core unified AST.
//
// Scalars and nulls become *ast.LiteralNode. Mappings become *ast.ObjectNode
// keyed by the key text; sequences become *ast.ObjectNode with the keys "0",
// "1", "2" and so on.
func ToSchemaNode(node ast.Node) shapeast.SchemaNode {
	switch n := ast.Unwrap(node).(type) {
	case *ast.Scalar:
		return shapeast.NewLiteralNode(n.Value, n.Position.SchemaPosition())
	case *ast.Null:
		return shapeast.NewLiteralNode(nil, n.Position.SchemaPosition())
	case *ast.Sequence:
		props := make(map[string]shapeast.SchemaNode, len(n.Items))
		for i, item := range n.Items {
			props[strconv.Itoa(i)] = ToSchemaNode(item)
		}
		return shapeast.NewObjectNode(props, n.Position.SchemaPosition())
	case *ast.Mapping:
		props := make(map[string]shapeast.SchemaNode, len(n.Pairs))
		for _, p := range n.Pairs {
			props[keyString(p.Key)] = ToSchemaNode(p.Value)
		}
		return shapeast.NewObjectNode(props, n.Position.SchemaPosition())
	case nil:
		return shapeast.NewLiteralNode(nil, ast.StartPosition().SchemaPosition())
	}
	return shapeast.NewLiteralNode(nil, node.Pos().SchemaPosition())
}

// ReleaseTree returns every node of a shape-core tree built by ToSchemaNode
// to the shape-core pools. The tree must not be used afterwards.
//
// Example:
//
//	schema := yaml.ToSchemaNode(doc.Root)
//	// ... validate against a schema ...
//	yaml.ReleaseTree(schema)
func ReleaseTree(node shapeast.SchemaNode) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *shapeast.LiteralNode:
		shapeast.ReleaseLiteralNode(n)

	case *shapeast.ObjectNode:
		for _, child := range n.Properties() {
			ReleaseTree(child)
		}
		shapeast.ReleaseObjectNode(n)
	}
}
