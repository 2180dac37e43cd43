package store

import (
	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/presentation"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

// Export writes every value of doc, the tables of every view of tree (which
// may be nil) and the estimates as one new batch of dbPath, and returns the
// batch id.
func Export(dbPath string, doc *xbrl.Document, tree *presentation.Tree, estimates []api.Estimate, opts ...Option) (string, error) {
	f := doc.Filing()
	w, err := NewWriter(dbPath, f.Form, f.FileName, opts...)
	if err != nil {
		return "", err
	}

	if err := write(w, doc, tree, estimates); err != nil {
		if aerr := w.Abort(); aerr != nil {
			w.logger.Warn("failed to discard export batch", zap.String("batch", w.Batch()), zap.Error(aerr))
		}
		return "", err
	}
	return w.Batch(), w.Close()
}

func write(w *Writer, doc *xbrl.Document, tree *presentation.Tree, estimates []api.Estimate) error {
	for _, v := range doc.Values() {
		if err := w.AddValue(v.Record()); err != nil {
			return err
		}
	}
	if tree != nil {
		for _, view := range tree.Children() {
			for _, t := range view.Tables() {
				if err := w.AddTable(view.Name(), t); err != nil {
					return err
				}
			}
		}
	}
	for _, e := range estimates {
		if err := w.AddEstimate(e); err != nil {
			return err
		}
	}
	return nil
}
