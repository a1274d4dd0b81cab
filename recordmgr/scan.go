package recordmgr

import (
	"fmt"

	"github.com/coredb/recordmgr/eval"
)

// Scan iterates every live (non-tombstoned) record in a table, in
// (page, slot) order, skipping records that don't satisfy Cond. Filtering
// happens inside Next before a record is handed to the caller, so a caller
// never sees a record that fails the predicate.
type Scan struct {
	table *Table
	Cond  *eval.Expr

	currentPage int32
	currentSlot int32
	started     bool
}

// StartScan opens a scan over t with predicate cond. A nil cond matches
// every live record.
func StartScan(t *Table, cond *eval.Expr) *Scan {
	return &Scan{table: t, Cond: cond}
}

// recordRow adapts a (Record, Schema) pair to eval.Row so Cond can be
// evaluated against it without the evaluator knowing anything about record
// layout.
type recordRow struct {
	schema *Schema
	rec    *Record
}

func (r recordRow) AttrValue(name string) (eval.Value, error) {
	idx := r.schema.IndexOf(name)
	if idx < 0 {
		return eval.Value{}, fmt.Errorf("%w: unknown attribute %q", ErrInvalidAttribute, name)
	}
	raw, err := GetAttr(r.schema, r.rec, idx)
	if err != nil {
		return eval.Value{}, err
	}
	switch v := raw.(type) {
	case int32:
		return eval.NewInt(v), nil
	case float64:
		return eval.NewFloat(v), nil
	case bool:
		return eval.NewBool(v), nil
	case []byte:
		return eval.NewString(stringFromCString(v)), nil
	default:
		return eval.Value{}, ErrDataTypeError
	}
}

func stringFromCString(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// Next advances the scan to the next record satisfying Cond and returns it.
// It returns ErrNoMoreTuples once the table is exhausted.
func (s *Scan) Next() (*Record, error) {
	t := s.table

	if !s.started {
		s.started = true
		s.currentPage = 0
		s.currentSlot = 0
	}

	for int(s.currentPage) < len(t.entries) {
		entry := t.entries[s.currentPage]
		pos := physicalDataPage(entry.PageID, t.numDirectoryPages)

		if s.currentSlot >= entry.RecordCount {
			s.currentPage++
			s.currentSlot = 0
			continue
		}

		page, err := t.pool.Pin(pos)
		if err != nil {
			return nil, err
		}

		slot := readSlot(page, s.currentSlot)
		if slot.IsFree {
			t.pool.Unpin(pos)
			s.currentSlot++
			continue
		}

		data := readRecordBytes(page, slot.Offset, t.recordSize)
		if err := t.pool.Unpin(pos); err != nil {
			return nil, err
		}

		rec := &Record{Data: data, ID: RID{Page: entry.PageID, Slot: s.currentSlot}}
		s.currentSlot++

		matched, err := eval.Eval(recordRow{schema: t.schema, rec: rec}, s.Cond)
		if err != nil {
			return nil, err
		}
		if matched.Kind == eval.KindBool && matched.B {
			return rec, nil
		}
	}

	return nil, ErrNoMoreTuples
}

// CloseScan releases any resources held by the scan. Scan currently holds
// no pinned pages between calls to Next, so this is a no-op kept for
// symmetry with StartScan and to allow future buffering without breaking
// callers.
func CloseScan(s *Scan) error {
	return nil
}
