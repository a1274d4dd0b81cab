package recordmgr

import (
	"testing"

	"github.com/coredb/recordmgr/storagefile"
)

func TestSlotEntryRoundTrip(t *testing.T) {
	page := make([]byte, storagefile.PageSize)
	writeSlot(page, 3, SlotEntry{Offset: 4096, IsFree: false})
	writeSlot(page, 4, SlotEntry{Offset: 2048, IsFree: true})

	got := readSlot(page, 3)
	if got.Offset != 4096 || got.IsFree {
		t.Fatalf("slot 3 = %+v", got)
	}
	got = readSlot(page, 4)
	if got.Offset != 2048 || !got.IsFree {
		t.Fatalf("slot 4 = %+v", got)
	}
}

func TestFindFreeSlotFindsFirstTombstoned(t *testing.T) {
	page := make([]byte, storagefile.PageSize)
	writeSlot(page, 0, SlotEntry{Offset: 100, IsFree: false})
	writeSlot(page, 1, SlotEntry{Offset: 200, IsFree: true})
	writeSlot(page, 2, SlotEntry{Offset: 300, IsFree: true})

	slot, ok := findFreeSlot(page, 3)
	if !ok || slot != 1 {
		t.Fatalf("findFreeSlot = (%d, %v), want (1, true)", slot, ok)
	}
}

func TestFindFreeSlotNoneFree(t *testing.T) {
	page := make([]byte, storagefile.PageSize)
	writeSlot(page, 0, SlotEntry{Offset: 100, IsFree: false})
	_, ok := findFreeSlot(page, 1)
	if ok {
		t.Fatal("expected no free slot")
	}
}

func TestRecordBytesRoundTrip(t *testing.T) {
	page := make([]byte, storagefile.PageSize)
	data := []byte{1, 2, 3, 4, 5}
	writeRecordBytes(page, 1000, data)
	got := readRecordBytes(page, 1000, int32(len(data)))
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestTombstoneMarksFirstByte(t *testing.T) {
	page := make([]byte, storagefile.PageSize)
	writeRecordBytes(page, 500, []byte{1, 2, 3})
	writeTombstone(page, 500)
	if page[500] != tombstoneMarker {
		t.Fatalf("page[500] = %x, want %x", page[500], tombstoneMarker)
	}
}

func TestNewSlotRecordOffsetPacksFromEnd(t *testing.T) {
	off := newSlotRecordOffset(1, 100)
	if off != storagefile.PageSize-100 {
		t.Fatalf("newSlotRecordOffset(1,100) = %d, want %d", off, storagefile.PageSize-100)
	}
	off = newSlotRecordOffset(2, 100)
	if off != storagefile.PageSize-200 {
		t.Fatalf("newSlotRecordOffset(2,100) = %d, want %d", off, storagefile.PageSize-200)
	}
}
