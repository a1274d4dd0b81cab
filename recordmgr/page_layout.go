package recordmgr

import (
	"encoding/binary"

	"github.com/coredb/recordmgr/storagefile"
)

// SlotEntrySize is the on-disk size of one slot directory entry: a 4-byte
// offset plus a 1-byte isFree flag.
const SlotEntrySize = 5

// tombstoneMarker is written to the first byte of a deleted record's former
// payload.
const tombstoneMarker = 0xFD

// SlotEntry is the decoded form of one slot directory entry: the byte
// offset of the record's first byte within the page, and whether the slot
// is tombstoned (isFree) but still reserved.
type SlotEntry struct {
	Offset int32
	IsFree bool
}

// slotByteOffset returns the byte position of slot's directory entry. Slot
// directories grow forward from offset 0.
func slotByteOffset(slot int32) int32 {
	return slot * SlotEntrySize
}

// readSlot decodes the slot-th entry of the page's slot directory.
func readSlot(page []byte, slot int32) SlotEntry {
	off := slotByteOffset(slot)
	return SlotEntry{
		Offset: int32(binary.LittleEndian.Uint32(page[off : off+4])),
		IsFree: page[off+4] != 0,
	}
}

// writeSlot encodes entry into the slot-th position of the page's slot
// directory.
func writeSlot(page []byte, slot int32, entry SlotEntry) {
	off := slotByteOffset(slot)
	binary.LittleEndian.PutUint32(page[off:off+4], uint32(entry.Offset))
	if entry.IsFree {
		page[off+4] = 1
	} else {
		page[off+4] = 0
	}
}

// readRecordBytes copies recordSize bytes starting at offset out of page.
func readRecordBytes(page []byte, offset, recordSize int32) []byte {
	out := make([]byte, recordSize)
	copy(out, page[offset:offset+recordSize])
	return out
}

// writeRecordBytes copies data (exactly recordSize bytes) into page at
// offset.
func writeRecordBytes(page []byte, offset int32, data []byte) {
	copy(page[offset:offset+int32(len(data))], data)
}

// writeTombstone marks the record at offset as deleted by writing the
// tombstone byte at its first byte. The rest of the record's former bytes
// are left untouched - only the marker byte matters.
func writeTombstone(page []byte, offset int32) {
	page[offset] = tombstoneMarker
}

// findFreeSlot scans linearly for a tombstoned (isFree) slot among the
// recordCount slots currently on the page, returning the first one found.
// Returns ok=false if none is free.
func findFreeSlot(page []byte, recordCount int32) (slot int32, ok bool) {
	for i := int32(0); i < recordCount; i++ {
		if readSlot(page, i).IsFree {
			return i, true
		}
	}
	return 0, false
}

// newSlotRecordOffset computes the byte offset of the recordCount-th record
// appended to a page (1-indexed, i.e. recordCount is the post-increment
// slot count): records are packed from PAGE_SIZE downward.
func newSlotRecordOffset(recordCount, recordSize int32) int32 {
	return int32(storagefile.PageSize) - recordCount*recordSize
}
