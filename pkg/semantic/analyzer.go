// Package semantic resolves the references of a parsed YAML stream.
//
// An analysis run works on a deep copy of the stream and goes through five
// phases, each over every document:
//
//	AnchorCollection   register anchors, build the reference graph
//	TagResolution      expand tag shorthands, apply the core tags
//	AliasResolution    find cycles, replace aliases with anchored subtrees
//	DocumentValidation check the resolved trees
//	FinalValidation    check the graph, report unused anchors, compact the pool
//
// A semantic error ends the resolution of its document only. The other
// documents are still resolved.
package semantic

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// Result is the outcome of one analysis run.
type Result struct {
	// Documents holds the resolved documents by index; failed ones are nil.
	Documents []*ast.Document
	Errors    yamlerr.List
	Warnings  []Diagnostic
	Cycles    []Cycle
	Anchors   []*AnchorDefinition

	Statistics Statistics
}

// Stream returns the documents that were resolved.
func (r *Result) Stream() *ast.Stream {
	s := &ast.Stream{}
	for _, d := range r.Documents {
		if d != nil {
			s.Documents = append(s.Documents, d)
		}
	}
	return s
}

// Failed reports whether document doc could not be resolved.
func (r *Result) Failed(doc int) bool {
	return doc >= 0 && doc < len(r.Documents) && r.Documents[doc] == nil
}

// Analyzer runs the semantic phases. It is not safe for concurrent use.
type Analyzer struct {
	cfg     Config
	logger  log.Logger
	metrics *metrics

	runID       string
	pool        *Pool
	graph       *Graph
	cache       *resolutionCache
	anchors     map[anchorKey]*AnchorDefinition
	anchorOrder []*AnchorDefinition
	docNodes    map[int]NodeID
	failed      map[int]bool
	stats       Statistics
	result      *Result
}

// New returns an analyzer. A nil logger discards logs and a nil registerer
// keeps the metrics unregistered.
func New(cfg Config, logger log.Logger, reg prometheus.Registerer) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid analyzer config")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Analyzer{
		cfg:     cfg,
		logger:  logger,
		metrics: newMetrics(reg),
	}, nil
}

// Resolve runs every phase over a copy of stream. The returned error is a
// *yamlerr.List of the errors of every failed document, or nil.
func (a *Analyzer) Resolve(stream *ast.Stream) (*Result, error) {
	if err := a.begin(); err != nil {
		return nil, err
	}
	defer func() { a.result = nil }()

	work := ast.CloneStream(stream)
	if work == nil {
		work = &ast.Stream{}
	}
	a.result = &Result{Documents: make([]*ast.Document, len(work.Documents))}
	a.stats.Documents = len(work.Documents)

	start := time.Now()
	level.Debug(a.logger).Log("msg", "analysis started", "run", a.runID, "documents", len(work.Documents))

	a.runPhase(AnchorCollection, func() {
		for i, d := range work.Documents {
			if err := a.collectAnchors(i, d); err != nil {
				a.fail(i, err)
			}
		}
	})
	a.runPhase(TagResolution, func() {
		for i, d := range work.Documents {
			if a.failed[i] {
				continue
			}
			if err := a.resolveTags(i, d); err != nil {
				a.fail(i, err)
			}
		}
	})
	a.runPhase(AliasResolution, func() {
		for i, d := range work.Documents {
			if a.failed[i] || a.findCycles(i) {
				continue
			}
			root, err := a.newExpander(i).expand(d.Root)
			if err != nil {
				a.fail(i, asError(err, i))
				continue
			}
			d.Root = root
			a.result.Documents[i] = d
		}
	})
	a.runPhase(DocumentValidation, func() {
		for i, d := range a.result.Documents {
			if d == nil {
				continue
			}
			if err := a.validateDocument(i, d); err != nil {
				a.fail(i, err)
			}
		}
	})
	a.runPhase(FinalValidation, a.finalValidation)

	a.stats.FailedDocuments = len(a.failed)
	a.stats.GraphNodes = a.graph.Len()
	a.stats.GraphEdges = a.graph.EdgeCount()
	a.stats.Cache = a.cache.Stats()
	a.stats.Pool = a.pool.Stats()
	a.stats.Duration = time.Since(start)

	res := a.result
	res.Anchors = a.anchorOrder
	res.Statistics = a.stats
	a.metrics.publish(&res.Statistics)

	level.Debug(a.logger).Log("msg", "analysis finished", "run", a.runID,
		"failed", a.stats.FailedDocuments, "aliases", a.stats.AliasesResolved,
		"expansions", a.stats.Expansions, "cycles", a.stats.Cycles, "duration", a.stats.Duration)
	return res, res.Errors.Err()
}

// Reset drops the graph, registry, cache and pool of the last run.
func (a *Analyzer) Reset() {
	if a.cache != nil {
		a.cache.Purge()
	}
	a.runID = ""
	a.pool = nil
	a.graph = nil
	a.cache = nil
	a.anchors = nil
	a.anchorOrder = nil
	a.docNodes = nil
	a.failed = nil
	a.result = nil
}

func (a *Analyzer) begin() error {
	a.Reset()
	cache, err := newResolutionCache(a.cfg)
	if err != nil {
		return err
	}
	a.runID = uuid.NewString()
	a.pool = NewPool(64)
	a.graph = NewGraph(a.pool)
	a.cache = cache
	a.anchors = make(map[anchorKey]*AnchorDefinition)
	a.docNodes = make(map[int]NodeID)
	a.failed = make(map[int]bool)
	a.stats = newStatistics(a.runID)
	return nil
}

func (a *Analyzer) runPhase(p Phase, fn func()) {
	start := time.Now()
	fn()
	took := time.Since(start)
	a.stats.PhaseDurations[p] = took
	level.Debug(a.logger).Log("msg", "phase finished", "run", a.runID, "phase", p.String(), "duration", took, "errors", a.result.Errors.Len())
}

// findCycles reports every cycle of document doc and fails the document when
// there is one.
func (a *Analyzer) findCycles(doc int) bool {
	cycles := a.graph.FindCycles(a.docNodes[doc])
	for _, c := range cycles {
		a.result.Cycles = append(a.result.Cycles, c)
		a.stats.Cycles++
		a.stats.CyclesByType[c.Type]++
		name := ""
		if len(c.Anchors) > 0 {
			name = c.Anchors[0]
		}
		a.fail(doc, yamlerr.New(yamlerr.CircularReference, c.Pos,
			"circular reference through anchor %q (%s cycle: %s)", name, c.Type, c.Describe()).WithPath(c.Path))
	}
	return len(cycles) > 0
}

// fail records err and takes document doc out of the run.
func (a *Analyzer) fail(doc int, err *yamlerr.Error) {
	if err.Document < 0 {
		err.WithDocument(doc)
	}
	a.result.Errors.Add(err)
	if a.failed[doc] {
		return
	}
	a.failed[doc] = true
	a.result.Documents[doc] = nil
	a.graph.RemoveDocument(doc)
	level.Debug(a.logger).Log("msg", "document failed", "run", a.runID, "document", doc, "err", err)
}

func asError(err error, doc int) *yamlerr.Error {
	if e, ok := yamlerr.As(err); ok {
		return e
	}
	return yamlerr.New(yamlerr.Internal, ast.Position{}, "%v", err).WithDocument(doc)
}
