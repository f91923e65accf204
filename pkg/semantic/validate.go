package semantic

import (
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// validateDocument checks a resolved document: no alias is left, the tree is
// no deeper than MaxRecursionDepth and no mapping repeats a key.
func (a *Analyzer) validateDocument(doc int, d *ast.Document) *yamlerr.Error {
	if d.Root == nil {
		return nil
	}
	if depth := ast.Depth(d.Root); depth > a.cfg.MaxRecursionDepth {
		return yamlerr.New(yamlerr.ValidationDepthExceeded, d.Root.Pos(),
			"document nests %d levels deep, the limit is %d", depth, a.cfg.MaxRecursionDepth).WithDocument(doc)
	}

	var err *yamlerr.Error
	ast.Inspect(d.Root, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch v := n.(type) {
		case *ast.Alias:
			err = yamlerr.New(yamlerr.ReferenceTracking, v.Position, "alias %q was not resolved", v.Name)
		case *ast.Mapping:
			err = checkUniqueKeys(v)
		}
		return err == nil
	})
	if err != nil {
		return err.WithDocument(doc)
	}
	return nil
}

func checkUniqueKeys(m *ast.Mapping) *yamlerr.Error {
	first := make(map[string]ast.Position, len(m.Pairs))
	for _, p := range m.Pairs {
		id, ok := keyID(p.Key)
		if !ok || isMergeKey(p.Key) {
			continue
		}
		if pos, dup := first[id]; dup {
			text, _ := ast.KeyText(p.Key)
			return yamlerr.New(yamlerr.InvalidDocumentStructure, p.Key.Pos(),
				"mapping key %q appears more than once after resolving aliases", text).WithRelated(pos)
		}
		first[id] = p.Key.Pos()
	}
	return nil
}

// finalValidation runs once for the whole stream: it checks the graph,
// reports unused anchors and compacts the pool when it is fragmented.
func (a *Analyzer) finalValidation() {
	for _, err := range a.graph.CheckAliasTargets() {
		a.fail(err.Document, err)
	}

	for _, def := range a.anchorOrder {
		if def.Resolutions > 0 || a.failed[def.Document] {
			continue
		}
		a.stats.UnusedAnchors++
		a.result.Warnings = append(a.result.Warnings, Diagnostic{
			Kind:     yamlerr.ReferenceTracking,
			Document: def.Document,
			Pos:      def.Pos,
			Path:     def.Path,
			Message:  "anchor \"" + def.Name + "\" is never used",
		})
	}

	if a.pool.Fragmentation() > a.cfg.CompactionThreshold {
		a.compact()
	}
}

// compact compacts the graph and rewrites the node ids held by the anchor
// registry and the cycles. Ids of nodes removed with a failed document
// become NoNode.
func (a *Analyzer) compact() {
	var refs []*NodeID
	for _, def := range a.anchorOrder {
		refs = append(refs, &def.ID)
	}
	for i := range a.result.Cycles {
		for j := range a.result.Cycles[i].Members {
			refs = append(refs, &a.result.Cycles[i].Members[j])
		}
	}
	for _, ref := range refs {
		if _, ok := a.graph.Node(*ref); !ok {
			*ref = NoNode
		}
	}

	moved := a.graph.Compact()
	for _, ref := range refs {
		if to, ok := moved[*ref]; ok {
			*ref = to
		}
	}
	for doc, id := range a.docNodes {
		if to, ok := moved[id]; ok {
			a.docNodes[doc] = to
		}
	}
}
