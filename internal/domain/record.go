package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an identifier lookup matches no profile.
var ErrNotFound = errors.New("influencer not found")

const (
	ColumnID       = "id"
	ColumnUsername = "username"
)

// Record is one influencer row keyed by column name.
type Record map[string]any

// DedupKey identifies one logical influencer across fan-out rows.
type DedupKey struct {
	ID       string
	Username string
}

// Key returns the record's dedup key.
func (r Record) Key() DedupKey {
	return DedupKey{ID: r.stringValue(ColumnID), Username: r.stringValue(ColumnUsername)}
}

// ID returns the id column rendered as a string.
func (r Record) ID() string {
	return r.stringValue(ColumnID)
}

func (r Record) stringValue(column string) string {
	value, ok := r[column]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Deduplicate keeps the first record seen for every DedupKey, preserving input
// order. Later duplicates are dropped without merging their fields.
func Deduplicate(records []Record) []Record {
	if records == nil {
		return nil
	}
	seen := make(map[DedupKey]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, record := range records {
		key := record.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, record)
	}
	return out
}
