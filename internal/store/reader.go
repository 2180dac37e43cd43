package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentic-research/xbrlgraph/api"
)

// Batch describes one export.
type Batch struct {
	ID      string
	Created time.Time
	Form    string
	File    string
}

// TableRow is a stored presentation row.
type TableRow struct {
	View      string
	Dimension string
	Subtitle  string
	Label     string
	Level     int
	UOM       string
	Columns   []string
	Values    []string
}

func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	return db, nil
}

// Batches lists the exports in dbPath, oldest first.
func Batches(dbPath string) ([]Batch, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }() // read-only

	rows, err := db.Query("SELECT id, created, form, file FROM batches ORDER BY created, id")
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer func() { _ = rows.Close() }() // read-only

	var out []Batch
	for rows.Next() {
		var b Batch
		var created int64
		var form, file sql.NullString
		if err := rows.Scan(&b.ID, &created, &form, &file); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.Created = time.Unix(0, created)
		b.Form, b.File = form.String, file.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return out, nil
}

// StreamValues calls fn for each value snapshot of batch in export order.
// Only one decoded record is alive at a time.
func StreamValues(dbPath, batch string, fn func(api.ValueRecord) error) error {
	db, err := open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }() // read-only

	rows, err := db.Query("SELECT record FROM value_records WHERE batch_id = ? ORDER BY seq", batch)
	if err != nil {
		return fmt.Errorf("query values: %w", err)
	}
	defer func() { _ = rows.Close() }() // read-only

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan value: %w", err)
		}
		var r api.ValueRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return fmt.Errorf("parse value json: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadValues reads all value snapshots of batch.
func LoadValues(dbPath, batch string) ([]api.ValueRecord, error) {
	var out []api.ValueRecord
	err := StreamValues(dbPath, batch, func(r api.ValueRecord) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// LoadEstimates reads the quarterly estimates of batch.
func LoadEstimates(dbPath, batch string) ([]api.Estimate, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }() // read-only

	rows, err := db.Query("SELECT record FROM estimates WHERE batch_id = ? ORDER BY seq", batch)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer func() { _ = rows.Close() }() // read-only

	var out []api.Estimate
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		var e api.Estimate
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("parse estimate json: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}
	return out, nil
}

// LoadTable reads the rows stored for view in batch, plain table first and
// then per dimension.
func LoadTable(dbPath, batch, view string) ([]TableRow, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }() // read-only

	rows, err := db.Query(`
		SELECT view_name, dimension, subtitle, label, level, uom, headers, cells
		FROM presentation_rows
		WHERE batch_id = ? AND view_name = ?
		ORDER BY dimension, seq`, batch, view)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer func() { _ = rows.Close() }() // read-only

	var out []TableRow
	for rows.Next() {
		var r TableRow
		var subtitle, label, uom sql.NullString
		var headers, cells string
		if err := rows.Scan(&r.View, &r.Dimension, &subtitle, &label, &r.Level, &uom, &headers, &cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Subtitle, r.Label, r.UOM = subtitle.String, label.String, uom.String
		if err := json.Unmarshal([]byte(headers), &r.Columns); err != nil {
			return nil, fmt.Errorf("parse headers json: %w", err)
		}
		if err := json.Unmarshal([]byte(cells), &r.Values); err != nil {
			return nil, fmt.Errorf("parse cells json: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
