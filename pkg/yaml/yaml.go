// Package yaml loads YAML 1.2 text into document trees and resolves their
// anchors, aliases and tags.
//
// Loading and resolving are separate steps:
//
//	stream, err := yaml.Load(text)       // syntax only
//	res, err := yaml.Resolve(stream)     // anchors, aliases, tags, cycles
//
// Load returns the tree exactly as written, aliases included. Resolve returns
// a semantic.Result whose documents have every alias replaced by a copy of
// the anchored node. The input stream is never modified.
//
// # Thread Safety
//
// The package level functions keep no shared state and may be called from
// several goroutines. A single tree must not be modified concurrently.
//
// # Decoding
//
// Unmarshal loads, resolves and decodes the first document into a Go value:
//
//	var cfg struct {
//	    Name string
//	    Port int
//	}
//	err := yaml.Unmarshal([]byte("name: server\nport: 8080"), &cfg)
package yaml

import (
	"io"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapestone/yamlref/internal/parser"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/semantic"
)

// Load parses every document of text.
//
// Example:
//
//	stream, err := yaml.Load("--- a\n--- b\n")
//	// stream.Len() == 2
func Load(text string, opts ...Option) (*ast.Stream, error) {
	o := newOptions(opts)
	return parser.NewParser(text, parser.WithMaxDepth(o.maxDepth)).ParseStream()
}

// ParseOne parses an input holding exactly one document. An empty input gives
// a document with a nil root.
func ParseOne(text string, opts ...Option) (*ast.Document, error) {
	o := newOptions(opts)
	return parser.NewParser(text, parser.WithMaxDepth(o.maxDepth)).Parse()
}

// ParseReader reads r to the end and parses every document in it.
func ParseReader(r io.Reader, opts ...Option) (*ast.Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "yaml: read input")
	}
	return Load(string(data), opts...)
}

// Resolve runs the semantic analysis over stream. The result holds every
// document that resolved; the error lists the ones that did not.
func Resolve(stream *ast.Stream, opts ...Option) (*semantic.Result, error) {
	o := newOptions(opts)
	a, err := semantic.New(o.config, o.logger, o.registerer)
	if err != nil {
		return nil, err
	}
	return a.Resolve(stream)
}

// LoadResolved loads text and resolves it in one step.
func LoadResolved(text string, opts ...Option) (*semantic.Result, error) {
	stream, err := Load(text, opts...)
	if err != nil {
		return nil, err
	}
	return Resolve(stream, opts...)
}

// Validate reports the first syntax or semantic error of text, or nil.
//
// Example:
//
//	if err := yaml.Validate("a: *missing"); err != nil {
//	    fmt.Println(err) // yaml: document 0: line 1, column 4: found undefined alias "missing"
//	}
func Validate(text string, opts ...Option) error {
	_, err := LoadResolved(text, opts...)
	return err
}

// Option configures Load, Resolve and the functions built on them.
type Option func(*options)

type options struct {
	config     semantic.Config
	logger     log.Logger
	registerer prometheus.Registerer
	maxDepth   int
}

func newOptions(opts []Option) options {
	o := options{config: semantic.DefaultConfig(), maxDepth: parser.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig sets the analyzer configuration.
func WithConfig(cfg semantic.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithLogger sets the analyzer logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegisterer registers the analyzer metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithMaxDepth bounds the nesting the parser accepts.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}
