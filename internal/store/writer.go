// Package store exports value snapshots, presentation tables and quarterly
// estimates of a filing to SQLite, one batch per export.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/presentation"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	created INTEGER NOT NULL,
	form TEXT,
	file TEXT
);

CREATE TABLE IF NOT EXISTS value_records (
	batch_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	parameter TEXT NOT NULL,
	context TEXT,
	record JSON NOT NULL,
	PRIMARY KEY (batch_id, seq)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS presentation_rows (
	batch_id TEXT NOT NULL,
	view_name TEXT NOT NULL,
	dimension TEXT NOT NULL,
	subtitle TEXT,
	seq INTEGER NOT NULL,
	label TEXT,
	level INTEGER,
	uom TEXT,
	headers JSON,
	cells JSON,
	PRIMARY KEY (batch_id, view_name, dimension, seq)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS estimates (
	batch_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	parameter TEXT NOT NULL,
	start_date TEXT,
	end_date TEXT,
	value TEXT,
	record JSON NOT NULL,
	PRIMARY KEY (batch_id, seq)
) WITHOUT ROWID;
`

// Writer appends one export batch to a SQLite database. Inserts run in
// transactions committed every batchSize rows.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtValue *sql.Stmt
	stmtRow   *sql.Stmt
	stmtEst   *sql.Stmt
	batch     string
	batchSize int
	count     int
	seq       map[string]int
	logger    *zap.Logger
	mu        sync.Mutex
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the writer logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithBatchSize sets the number of rows per transaction.
func WithBatchSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// NewWriter opens (or creates) the database at dbPath and starts a new
// batch for the given filing.
func NewWriter(dbPath, form, file string, opts ...Option) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{
		db:        db,
		batch:     uuid.NewString(),
		batchSize: 5000,
		seq:       make(map[string]int),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if _, err := db.Exec("INSERT INTO batches (id, created, form, file) VALUES (?, ?, ?, ?)",
		w.batch, time.Now().UnixNano(), form, file); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// Batch is the id rows of this writer are stored under.
func (w *Writer) Batch() string { return w.batch }

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if w.stmtValue, err = w.tx.Prepare(`
		INSERT INTO value_records (batch_id, seq, parameter, context, record)
		VALUES (?, ?, ?, ?, ?)`); err != nil {
		return err
	}
	if w.stmtRow, err = w.tx.Prepare(`
		INSERT INTO presentation_rows (batch_id, view_name, dimension, subtitle, seq, label, level, uom, headers, cells)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`); err != nil {
		return err
	}
	w.stmtEst, err = w.tx.Prepare(`
		INSERT INTO estimates (batch_id, seq, parameter, start_date, end_date, value, record)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	return err
}

func (w *Writer) closeStmts() {
	for _, s := range []*sql.Stmt{w.stmtValue, w.stmtRow, w.stmtEst} {
		if s != nil {
			_ = s.Close()
		}
	}
}

func (w *Writer) commitTx() error {
	w.closeStmts()
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// step counts an inserted row and rolls the transaction over when the
// batch size is reached.
func (w *Writer) step() error {
	w.count++
	if w.count < w.batchSize {
		return nil
	}
	w.count = 0
	if err := w.commitTx(); err != nil {
		return err
	}
	return w.beginTx()
}

func (w *Writer) next(table string) int {
	n := w.seq[table]
	w.seq[table] = n + 1
	return n
}

// AddValue stores one value snapshot.
func (w *Writer) AddValue(r api.ValueRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	record, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal value %s: %w", r.Parameter, err)
	}
	if _, err := w.stmtValue.Exec(w.batch, w.next("value_records"), r.Parameter, r.Context, string(record)); err != nil {
		return fmt.Errorf("insert value %s: %w", r.Parameter, err)
	}
	return w.step()
}

// AddTable stores the rows of a rendered presentation table under view.
func (w *Writer) AddTable(view string, t presentation.Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("marshal columns %s: %w", view, err)
	}
	for i, row := range t.Rows {
		cells, err := json.Marshal(row.Values)
		if err != nil {
			return fmt.Errorf("marshal row %s/%d: %w", view, i, err)
		}
		if _, err := w.stmtRow.Exec(w.batch, view, t.Dimension, t.Subtitle, i, row.Label, row.Level, row.UOM, string(columns), string(cells)); err != nil {
			return fmt.Errorf("insert row %s/%d: %w", view, i, err)
		}
		if err := w.step(); err != nil {
			return err
		}
	}
	return nil
}

// AddEstimate stores one inferred quarterly value.
func (w *Writer) AddEstimate(e api.Estimate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	record, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal estimate %s: %w", e.Parameter, err)
	}
	if _, err := w.stmtEst.Exec(w.batch, w.next("estimates"), e.Parameter, e.Start, e.End, e.Value, string(record)); err != nil {
		return fmt.Errorf("insert estimate %s: %w", e.Parameter, err)
	}
	return w.step()
}

// Close commits pending rows and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	w.logger.Debug("export batch committed",
		zap.String("batch", w.batch),
		zap.Int("values", w.seq["value_records"]),
		zap.Int("estimates", w.seq["estimates"]))
	return w.db.Close()
}

// Abort discards the batch: the open transaction is rolled back and rows
// committed by earlier rollovers are deleted together with the batch entry.
func (w *Writer) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer func() { _ = w.db.Close() }()

	w.closeStmts()
	if w.tx != nil {
		_ = w.tx.Rollback()
	}
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, table := range []string{"value_records", "presentation_rows", "estimates"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE batch_id = ?", w.batch); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete %s of batch %s: %w", table, w.batch, err)
		}
	}
	if _, err := tx.Exec("DELETE FROM batches WHERE id = ?", w.batch); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete batch %s: %w", w.batch, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	w.logger.Debug("export batch discarded", zap.String("batch", w.batch))
	return nil
}
