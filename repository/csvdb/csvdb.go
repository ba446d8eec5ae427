// Package csvdb implements the delimited record store backing the
// repository layer: one UTF-8 CSV file per entity with a fixed header
// row. Every query is a full-file scan and every mutation rewrites the
// whole file. An exclusive advisory file lock serializes concurrent
// invocations against the same table, so the last-writer-wins race
// between processes cannot drop updates. A crash in the middle of
// WriteAll can still leave a truncated file; there is no journal.
package csvdb

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/od-kfujiwara/tosho-kanri-system/config"
)

// Record is one CSV row keyed by header column name.
type Record map[string]string

// DB hands out tables under a single data directory.
type DB struct {
	dir string
}

// Open ensures the data directory exists and returns a DB rooted there.
func Open(cfg config.Config) (*DB, error) {
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.Data.Dir, err)
	}
	return &DB{dir: cfg.Data.Dir}, nil
}

// Table returns a handle for one entity file. The file itself is
// created lazily, with a header-only line, on first access.
func (db *DB) Table(filename string, header []string) *Table {
	path := filepath.Join(db.dir, filename)
	return &Table{
		path:   path,
		header: header,
		lock:   flock.New(path + ".lock"),
	}
}

// Table is a single CSV file with a fixed header.
type Table struct {
	path   string
	header []string
	lock   *flock.Flock
}

// withLock runs fn while holding the table's exclusive lock, creating
// the file with its header first if it does not exist yet.
func (t *Table) withLock(fn func() error) error {
	if err := t.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", t.path, err)
	}
	defer t.lock.Unlock()
	if err := t.ensure(); err != nil {
		return err
	}
	return fn()
}

func (t *Table) ensure() error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}
	return t.rewrite(nil)
}

// ReadAll returns every record in the file, keyed by the header row as
// stored. Short rows are padded with empty strings.
func (t *Table) ReadAll() ([]Record, error) {
	var records []Record
	err := t.withLock(func() error {
		f, err := os.Open(t.path)
		if err != nil {
			return fmt.Errorf("open %s: %w", t.path, err)
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
		if len(rows) == 0 {
			return nil
		}
		header := rows[0]
		for _, row := range rows[1:] {
			rec := make(Record, len(header))
			for i, name := range header {
				if i < len(row) {
					rec[name] = row[i]
				} else {
					rec[name] = ""
				}
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// WriteAll truncates the file and rewrites header plus one line per record.
func (t *Table) WriteAll(records []Record) error {
	return t.withLock(func() error {
		return t.rewrite(records)
	})
}

// Append adds one record at the end of the file without rereading it.
func (t *Table) Append(rec Record) error {
	return t.withLock(func() error {
		f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open %s: %w", t.path, err)
		}
		defer f.Close()
		w := csv.NewWriter(f)
		if err := w.Write(t.row(rec)); err != nil {
			return fmt.Errorf("append to %s: %w", t.path, err)
		}
		w.Flush()
		return w.Error()
	})
}

// Update applies a read-modify-write cycle under a single lock
// acquisition, which is what save/delete upserts need to stay
// serialized against concurrent invocations.
func (t *Table) Update(fn func(records []Record) ([]Record, error)) error {
	return t.withLock(func() error {
		f, err := os.Open(t.path)
		if err != nil {
			return fmt.Errorf("open %s: %w", t.path, err)
		}
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
		var records []Record
		if len(rows) > 0 {
			header := rows[0]
			for _, row := range rows[1:] {
				rec := make(Record, len(header))
				for i, name := range header {
					if i < len(row) {
						rec[name] = row[i]
					} else {
						rec[name] = ""
					}
				}
				records = append(records, rec)
			}
		}
		records, err = fn(records)
		if err != nil {
			return err
		}
		return t.rewrite(records)
	})
}

func (t *Table) rewrite(records []Record) error {
	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	for _, rec := range records {
		if err := w.Write(t.row(rec)); err != nil {
			return fmt.Errorf("write %s: %w", t.path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// row serializes a record in declared header order.
func (t *Table) row(rec Record) []string {
	row := make([]string, len(t.header))
	for i, name := range t.header {
		row[i] = rec[name]
	}
	return row
}
