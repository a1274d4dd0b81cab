package recordmgr

import (
	"fmt"

	"go.uber.org/zap"
)

// Record is one fixed-layout tuple read out of, or about to be written into,
// a table. Data always holds exactly table.recordSize bytes, laid out
// attribute-by-attribute per the table's schema.
type Record struct {
	Data []byte
	ID   RID
}

// findPageWithFreeSlot returns the index, into t.entries, of the first data
// page with HasFreeSlot set.
func (t *Table) findPageWithFreeSlot() (int, bool) {
	for i, e := range t.entries {
		if e.HasFreeSlot {
			return i, true
		}
	}
	return -1, false
}

// InsertRecord finds a data page with room (or allocates a new one), finds a
// slot on it (a tombstoned slot if one exists, otherwise a fresh one), and
// copies data into that slot's record bytes. data must be exactly
// RecordSize(t.Schema()) bytes long.
func InsertRecord(t *Table, data []byte) (RID, error) {
	if int32(len(data)) != t.recordSize {
		return RID{}, fmt.Errorf("%w: record is %d bytes, schema expects %d", ErrInvalidInput, len(data), t.recordSize)
	}

	pageIdx, found := t.findPageWithFreeSlot()
	growthHappened := false

	if !found {
		if err := t.growDirectoryIfNeeded(); err != nil {
			return RID{}, err
		}
		newPageID := int32(len(t.entries))
		pos := physicalDataPage(newPageID, t.numDirectoryPages)
		if err := zeroPage(t.file, pos); err != nil {
			return RID{}, err
		}
		t.entries = append(t.entries, initPageDirectoryEntry(newPageID))
		t.numPages++
		pageIdx = len(t.entries) - 1
		growthHappened = true
	}

	entry := &t.entries[pageIdx]
	pos := physicalDataPage(entry.PageID, t.numDirectoryPages)
	page, err := t.pool.Pin(pos)
	if err != nil {
		return RID{}, err
	}

	var slot int32
	var reused bool
	if s, ok := findFreeSlot(page, entry.RecordCount); ok {
		slot = s
		reused = true
	} else {
		slot = entry.RecordCount
		entry.RecordCount++
	}

	var offset int32
	if reused {
		offset = readSlot(page, slot).Offset
	} else {
		offset = newSlotRecordOffset(entry.RecordCount, t.recordSize)
	}

	writeRecordBytes(page, offset, data)
	writeSlot(page, slot, SlotEntry{Offset: offset, IsFree: false})

	// Debit free space: a reused slot's directory entry was never credited
	// back on delete (only its record bytes were), so only the record
	// payload is debited here. A brand-new slot debits both the payload and
	// the new slot directory entry it occupies.
	if reused {
		entry.FreeSpace -= t.recordSize
	} else {
		entry.FreeSpace -= t.recordSize + SlotEntrySize
	}
	recomputeHasFreeSlot(entry, t.recordSize)

	if err := t.pool.MarkDirty(pos); err != nil {
		t.pool.Unpin(pos)
		return RID{}, err
	}
	if err := t.pool.Unpin(pos); err != nil {
		return RID{}, err
	}

	if err := t.flushDirectory(growthHappened, pageIdx); err != nil {
		return RID{}, err
	}

	return RID{Page: entry.PageID, Slot: slot}, nil
}

// growDirectoryIfNeeded appends a new (empty) directory page to the chain
// when the next data page would exceed the current chain's capacity.
func (t *Table) growDirectoryIfNeeded() error {
	// The next data page is placed at a fixed physical position computed
	// from the chain length (physicalDataPage), not appended sequentially,
	// so the chain must already have room for it before it is written:
	// trigger on the page about to be created (len(t.entries)), not on
	// numPages, or the new data page and the new directory page can land on
	// the same physical block.
	if int32(len(t.entries)) < MaxEntriesPerPage*t.numDirectoryPages {
		return nil
	}
	newDirIdx := t.numDirectoryPages
	pos := directoryPagePosition(newDirIdx)
	if err := zeroPage(t.file, pos); err != nil {
		return err
	}
	t.numDirectoryPages++
	t.numPages++
	t.log.Debug("directory grew", zap.String("table", t.name), zap.Int32("numDirectoryPages", t.numDirectoryPages))
	return nil
}

// flushDirectory persists the page directory. When the chain's shape
// changed (a new data page or directory page was allocated) the whole chain
// is rewritten so every page's numPages/numDirectoryPages header stays
// consistent; otherwise only the single mutated entry's page is rewritten.
func (t *Table) flushDirectory(chainShapeChanged bool, idx int) error {
	if chainShapeChanged {
		return writeFullDirectoryChain(t.pool, t.entries, t.numPages, t.numDirectoryPages)
	}
	return t.flushDirectoryEntry(idx)
}

func (t *Table) flushDirectoryEntry(idx int) error {
	return writeDirectoryEntryAt(t.pool, t.entries[idx], t.numPages, t.numDirectoryPages)
}

// GetRecord reads the record identified by id. The returned Record.Data is
// a fresh copy owned by the caller.
func GetRecord(t *Table, id RID) (*Record, error) {
	_, entry, err := t.lookupEntry(id.Page)
	if err != nil {
		return nil, err
	}

	pos := physicalDataPage(entry.PageID, t.numDirectoryPages)
	page, err := t.pool.Pin(pos)
	if err != nil {
		return nil, err
	}
	defer t.pool.Unpin(pos)

	if id.Slot < 0 || id.Slot >= entry.RecordCount {
		return nil, ErrInvalidRID
	}
	s := readSlot(page, id.Slot)
	if s.IsFree {
		return nil, ErrRecordNotFound
	}

	data := readRecordBytes(page, s.Offset, t.recordSize)
	return &Record{Data: data, ID: id}, nil
}

// UpdateRecord overwrites the record at id in place: its RID never changes,
// since the slot directory entry already reserves exactly recordSize bytes
// for it and in-place update never needs to relocate a record.
func UpdateRecord(t *Table, id RID, data []byte) error {
	if int32(len(data)) != t.recordSize {
		return fmt.Errorf("%w: record is %d bytes, schema expects %d", ErrInvalidInput, len(data), t.recordSize)
	}

	_, entry, err := t.lookupEntry(id.Page)
	if err != nil {
		return err
	}

	pos := physicalDataPage(entry.PageID, t.numDirectoryPages)
	page, err := t.pool.Pin(pos)
	if err != nil {
		return err
	}

	if id.Slot < 0 || id.Slot >= entry.RecordCount {
		t.pool.Unpin(pos)
		return ErrInvalidRID
	}
	s := readSlot(page, id.Slot)
	if s.IsFree {
		t.pool.Unpin(pos)
		return ErrRecordNotFound
	}

	writeRecordBytes(page, s.Offset, data)

	if err := t.pool.MarkDirty(pos); err != nil {
		t.pool.Unpin(pos)
		return err
	}
	return t.pool.Unpin(pos)
}

// DeleteRecord tombstones the record at id: its slot is marked isFree and
// its first byte is overwritten with the tombstone marker, and the
// directory entry's free space is credited back by recordSize (the slot
// directory entry itself stays reserved for reuse, so it is not credited
// back; see InsertRecord's matching debit rule).
func DeleteRecord(t *Table, id RID) error {
	entryIdx, entry, err := t.lookupEntry(id.Page)
	if err != nil {
		return err
	}

	pos := physicalDataPage(entry.PageID, t.numDirectoryPages)
	page, err := t.pool.Pin(pos)
	if err != nil {
		return err
	}

	if id.Slot < 0 || id.Slot >= entry.RecordCount {
		t.pool.Unpin(pos)
		return ErrInvalidRID
	}
	s := readSlot(page, id.Slot)
	if s.IsFree {
		t.pool.Unpin(pos)
		return ErrRecordNotFound
	}

	writeTombstone(page, s.Offset)
	writeSlot(page, id.Slot, SlotEntry{Offset: s.Offset, IsFree: true})

	entry.FreeSpace += t.recordSize
	recomputeHasFreeSlot(entry, t.recordSize)

	if err := t.pool.MarkDirty(pos); err != nil {
		t.pool.Unpin(pos)
		return err
	}
	if err := t.pool.Unpin(pos); err != nil {
		return err
	}

	return t.flushDirectoryEntry(entryIdx)
}

// lookupEntry finds the PageDirectoryEntry for data page pageID.
func (t *Table) lookupEntry(pageID int32) (int, *PageDirectoryEntry, error) {
	if pageID < 0 || int(pageID) >= len(t.entries) {
		return 0, nil, ErrInvalidRID
	}
	return int(pageID), &t.entries[pageID], nil
}
