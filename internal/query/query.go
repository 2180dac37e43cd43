// Package query filters the value snapshots of a document with JSONPath
// expressions.
//
// Each snapshot is evaluated on its own, with the snapshot as the root:
//
//	{"parameter": "Revenues", "context": "FY2017", "attributes": {"unitRef": "USD", ...}}
//
// A snapshot matches when the expression selects anything other than false or
// null. "$.attributes.unitRef" keeps every fact with a unit;
// "$[?(@.numberOfMonths == '3')]" keeps quarterly facts.
package query

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ohler55/ojg/jp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

const chunkSize = 256

// Filter is a compiled JSONPath expression.
type Filter struct {
	expr        jp.Expr
	source      string
	concurrency int
	logger      *zap.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithConcurrency bounds the number of goroutines evaluating snapshots.
func WithConcurrency(n int) Option {
	return func(f *Filter) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets the filter logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// Compile parses expr.
func Compile(expr string, opts ...Option) (*Filter, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	f := &Filter{
		expr:        x,
		source:      expr,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Filter) String() string { return f.source }

// Snapshot converts a record to the generic tree expressions run against.
func Snapshot(r api.ValueRecord) map[string]any {
	attrs := make(map[string]any, len(r.Attributes))
	for k, v := range r.Attributes {
		attrs[k] = v
	}
	return map[string]any{
		"parameter":  r.Parameter,
		"context":    r.Context,
		"attributes": attrs,
	}
}

// Select returns what the expression picks out of r.
func (f *Filter) Select(r api.ValueRecord) []any {
	return f.expr.Get(Snapshot(r))
}

// Match reports whether r satisfies the expression.
func (f *Filter) Match(r api.ValueRecord) bool {
	for _, v := range f.Select(r) {
		if v != nil && v != false {
			return true
		}
	}
	return false
}

// Apply returns the values of doc matching f in document order. The document
// is forced first so that evaluation only reads memoized state.
func (f *Filter) Apply(ctx context.Context, doc *xbrl.Document) ([]*xbrl.FactValue, error) {
	doc.Force()
	values := doc.Values()
	keep := make([]bool, len(values))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.concurrency)
	for start := 0; start < len(values); start += chunkSize {
		end := min(start+chunkSize, len(values))
		eg.Go(func() error {
			for i := start; i < end; i++ {
				if err := egctx.Err(); err != nil {
					return err
				}
				keep[i] = f.Match(values[i].Record())
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []*xbrl.FactValue
	for i, v := range values {
		if keep[i] {
			out = append(out, v)
		}
	}
	f.logger.Debug("jsonpath filter applied",
		zap.String("expr", f.source),
		zap.Int("values", len(values)),
		zap.Int("matched", len(out)))
	return out, nil
}
