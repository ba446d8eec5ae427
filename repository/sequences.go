package repository

import (
	"strconv"

	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
)

// Stored schema for sequences.csv, one row per named ID sequence.
var sequenceHeader = []string{"Name", "Value"}

// nextSequence reserves and returns the next value for a named
// sequence. The stored counter only moves forward, so an ID freed by a
// deletion is never handed out again. floor lets callers account for
// records written before the counter existed (or hand-edited files):
// the reserved value is always past both the counter and the floor.
func (r *repository) nextSequence(name string, floor int) (int, error) {
	next := 0
	err := r.sequencesTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		current := 0
		idx := -1
		for i, rec := range records {
			if rec["Name"] == name {
				idx = i
				if n, err := strconv.Atoi(rec["Value"]); err == nil {
					current = n
				}
			}
		}
		if floor > current {
			current = floor
		}
		next = current + 1
		rec := csvdb.Record{"Name": name, "Value": strconv.Itoa(next)}
		if idx >= 0 {
			records[idx] = rec
			return records, nil
		}
		return append(records, rec), nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
