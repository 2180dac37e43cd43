// Package ingest loads filing documents (XBRL instances, linkbases and
// inline XBRL) from a filesystem into a fact graph.
package ingest

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/graph"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

// Loader decodes the files of a filing in parallel and appends them to a
// graph in file name order.
type Loader struct {
	fs          billy.Filesystem
	logger      *zap.Logger
	concurrency int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithConcurrency bounds the number of files decoded at once.
func WithConcurrency(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.concurrency = n
		}
	}
}

// NewLoader creates a Loader reading from fs.
func NewLoader(fs billy.Filesystem, opts ...Option) *Loader {
	l := &Loader{
		fs:          fs,
		logger:      zap.NewNop(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the filing at name into a new, unfrozen graph.
func (l *Loader) Load(ctx context.Context, name string) (*graph.Graph, error) {
	files, err := Collect(l.fs, name)
	if err != nil {
		return nil, err
	}

	roots := make([]*element, len(files))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.concurrency)
	for i, f := range files {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			root, err := decode(f)
			if err != nil {
				return err
			}
			roots[i] = root
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g := graph.New()
	for i, root := range roots {
		if err := attach(g, nil, root); err != nil {
			return nil, fmt.Errorf("load %s: %w", files[i].Name, err)
		}
		l.logger.Debug("decoded",
			zap.String("file", files[i].Name),
			zap.Stringer("format", files[i].Format),
			zap.Int("nodes", root.count()))
	}
	l.logger.Info("filing loaded",
		zap.String("path", name),
		zap.Int("files", len(files)),
		zap.Int("nodes", g.Len()))
	return g, nil
}

// LoadDocument loads name and wraps the graph in a Document. The document
// is complete on return, so derived attributes are switched on.
func (l *Loader) LoadDocument(ctx context.Context, name string, opts ...xbrl.Option) (*xbrl.Document, error) {
	g, err := l.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	opts = append([]xbrl.Option{xbrl.WithLogger(l.logger)}, opts...)
	doc := xbrl.New(g, opts...)
	doc.MarkPostProcessingDone()
	return doc, nil
}

// FormType returns the value of the dei:DocumentType fact (e.g. "10-K"),
// or "" when the filing does not report one.
func FormType(g *graph.Graph) string {
	for _, n := range g.Find(graph.Query{Kinds: []graph.Kind{graph.KindValue}, Values: []string{"DocumentType"}}) {
		if n.Attr(api.AttrParameterName) == "DocumentType" {
			return strings.TrimSpace(n.Attr(api.AttrValue))
		}
	}
	return ""
}
