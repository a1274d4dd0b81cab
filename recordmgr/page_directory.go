package recordmgr

import (
	"encoding/binary"
	"fmt"

	"github.com/coredb/recordmgr/buffer"
	"github.com/coredb/recordmgr/storagefile"
)

// directoryEntrySize is the on-disk size of one PageDirectoryEntry:
// pageID int32, hasFreeSlot byte, freeSpace int32, recordCount int32.
const directoryEntrySize = 4 + 1 + 4 + 4

// directoryHeaderSize is the on-disk size of a directory page's header:
// numPages int32, numDirectoryPages int32.
const directoryHeaderSize = 4 + 4

// MaxEntriesPerPage is the capacity of a single directory page's body:
// (PAGE_SIZE - 2*sizeof(int)) / sizeof(PageDirectoryEntry).
const MaxEntriesPerPage = (storagefile.PageSize - directoryHeaderSize) / directoryEntrySize

// PageDirectoryEntry tracks, for one data page, its free space, record
// count and a cached "has a reusable slot" hint.
type PageDirectoryEntry struct {
	PageID      int32
	HasFreeSlot bool
	FreeSpace   int32
	RecordCount int32
}

func recomputeHasFreeSlot(e *PageDirectoryEntry, recordSize int32) {
	e.HasFreeSlot = e.FreeSpace >= recordSize+SlotEntrySize
}

// initPageDirectoryEntry builds the entry for a freshly allocated data page.
func initPageDirectoryEntry(pageID int32) PageDirectoryEntry {
	return PageDirectoryEntry{
		PageID:      pageID,
		HasFreeSlot: true,
		FreeSpace:   storagefile.PageSize,
		RecordCount: 0,
	}
}

// directoryPageIndex returns the 0-based index, within the directory chain,
// of the directory page that covers data page dataPageIdx.
func directoryPageIndex(dataPageIdx int32) int32 {
	return dataPageIdx / MaxEntriesPerPage
}

// directoryPagePosition returns the physical block position of the dirIdx-th
// directory page in the chain. This is a pure function of dirIdx and
// MaxEntriesPerPage, not of the table's current numDirectoryPages: each
// directory page's position is fixed at the moment it is created, when
// maxEntriesPerPage*dirIdx data pages and dirIdx earlier directory pages
// already exist, i.e. dirIdx*MaxEntriesPerPage + dirIdx + 1 (the "+1" for
// the schema page). Directory page 0 (the head) always lives at physical
// position 1.
func directoryPagePosition(dirIdx int32) int64 {
	return int64(dirIdx)*int64(MaxEntriesPerPage) + int64(dirIdx) + 1
}

// numDirectoryPagesFor returns how many directory pages a chain covering
// numDataPages data pages needs.
func numDirectoryPagesFor(numDataPages int32) int32 {
	if numDataPages <= 0 {
		return 1
	}
	n := (numDataPages + MaxEntriesPerPage - 1) / MaxEntriesPerPage
	if n < 1 {
		n = 1
	}
	return n
}

// physicalDataPage returns the physical block position of data page p. The
// uniform "p + numDirectoryPages + 1" form is used everywhere - record ops
// and scan alike - so a data page's physical position only ever depends on
// the current directory chain length, never on a page-specific ceiling
// computation.
func physicalDataPage(p int32, numDirectoryPages int32) int64 {
	return int64(p) + int64(numDirectoryPages) + 1
}

func encodeDirectoryEntry(buf []byte, e PageDirectoryEntry) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.PageID))
	if e.HasFreeSlot {
		buf[4] = 1
	} else {
		buf[4] = 0
	}
	binary.LittleEndian.PutUint32(buf[5:9], uint32(e.FreeSpace))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(e.RecordCount))
}

func decodeDirectoryEntry(buf []byte) PageDirectoryEntry {
	return PageDirectoryEntry{
		PageID:      int32(binary.LittleEndian.Uint32(buf[0:4])),
		HasFreeSlot: buf[4] != 0,
		FreeSpace:   int32(binary.LittleEndian.Uint32(buf[5:9])),
		RecordCount: int32(binary.LittleEndian.Uint32(buf[9:13])),
	}
}

// readDirectoryChain reads the full directory chain starting from the head
// page at physical position 1, and returns one PageDirectoryEntry per data
// page (in pageID order) along with the global numPages/numDirectoryPages
// counters stored in the head page's header.
func readDirectoryChain(pool *buffer.Pool) ([]PageDirectoryEntry, int32, int32, error) {
	head, err := pool.Pin(1)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("recordmgr: read directory head: %w", err)
	}
	numPages := int32(binary.LittleEndian.Uint32(head[0:4]))
	numDirectoryPages := int32(binary.LittleEndian.Uint32(head[4:8]))
	if err := pool.Unpin(1); err != nil {
		return nil, 0, 0, err
	}

	numDataPages := numPages - numDirectoryPages + 1
	if numDataPages < 0 {
		return nil, 0, 0, fmt.Errorf("%w: corrupt directory header (numPages=%d numDirectoryPages=%d)", ErrInvalidInput, numPages, numDirectoryPages)
	}

	entries := make([]PageDirectoryEntry, 0, numDataPages)
	remaining := numDataPages

	for dirIdx := int32(0); remaining > 0 || dirIdx == 0; dirIdx++ {
		pos := directoryPagePosition(dirIdx)
		page, err := pool.Pin(pos)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("recordmgr: read directory page %d: %w", dirIdx, err)
		}

		onThisPage := remaining
		if onThisPage > MaxEntriesPerPage {
			onThisPage = MaxEntriesPerPage
		}

		for i := int32(0); i < onThisPage; i++ {
			off := directoryHeaderSize + i*directoryEntrySize
			entries = append(entries, decodeDirectoryEntry(page[off:off+directoryEntrySize]))
		}

		if err := pool.Unpin(pos); err != nil {
			return nil, 0, 0, err
		}

		remaining -= onThisPage
		if remaining <= 0 {
			break
		}
	}

	return entries, numPages, numDirectoryPages, nil
}

// writeDirectoryPage writes the header (numPages, numDirectoryPages) and the
// slice of entries belonging to directory-chain index dirIdx to disk.
func writeDirectoryPage(pool *buffer.Pool, dirIdx int32, pageEntries []PageDirectoryEntry, numPages, numDirectoryPages int32) error {
	pos := directoryPagePosition(dirIdx)
	page, err := pool.Pin(pos)
	if err != nil {
		return fmt.Errorf("recordmgr: pin directory page %d: %w", dirIdx, err)
	}

	binary.LittleEndian.PutUint32(page[0:4], uint32(numPages))
	binary.LittleEndian.PutUint32(page[4:8], uint32(numDirectoryPages))

	for i, e := range pageEntries {
		off := directoryHeaderSize + int32(i)*directoryEntrySize
		encodeDirectoryEntry(page[off:off+directoryEntrySize], e)
	}

	if err := pool.MarkDirty(pos); err != nil {
		return err
	}
	return pool.Unpin(pos)
}

// writeDirectoryEntryAt rewrites a single entry in place on its owning
// directory page, without touching the rest of the chain. Used for ordinary
// free-space/record-count mutations that do not change numPages/
// numDirectoryPages: only the affected chain segment needs to be flushed
// when the chain shape is unchanged.
func writeDirectoryEntryAt(pool *buffer.Pool, entry PageDirectoryEntry, numPages, numDirectoryPages int32) error {
	dirIdx := directoryPageIndex(entry.PageID)
	pos := directoryPagePosition(dirIdx)
	page, err := pool.Pin(pos)
	if err != nil {
		return fmt.Errorf("recordmgr: pin directory page %d: %w", dirIdx, err)
	}

	binary.LittleEndian.PutUint32(page[0:4], uint32(numPages))
	binary.LittleEndian.PutUint32(page[4:8], uint32(numDirectoryPages))

	slotInPage := entry.PageID % MaxEntriesPerPage
	off := directoryHeaderSize + slotInPage*directoryEntrySize
	encodeDirectoryEntry(page[off:off+directoryEntrySize], entry)

	if err := pool.MarkDirty(pos); err != nil {
		return err
	}
	return pool.Unpin(pos)
}

// writeFullDirectoryChain flushes every directory page in the chain. Used
// whenever numPages/numDirectoryPages itself changes (new data page or new
// directory page allocation), so every page's header stays consistent.
func writeFullDirectoryChain(pool *buffer.Pool, entries []PageDirectoryEntry, numPages, numDirectoryPages int32) error {
	numDataPages := int32(len(entries))
	for dirIdx := int32(0); dirIdx*MaxEntriesPerPage < numDataPages || dirIdx == 0; dirIdx++ {
		start := dirIdx * MaxEntriesPerPage
		if start >= numDataPages && dirIdx > 0 {
			break
		}
		end := start + MaxEntriesPerPage
		if end > numDataPages {
			end = numDataPages
		}
		if err := writeDirectoryPage(pool, dirIdx, entries[start:end], numPages, numDirectoryPages); err != nil {
			return err
		}
		if end >= numDataPages {
			break
		}
	}
	return nil
}

// zeroPage writes a zeroed PageSize block directly at pos, bypassing the
// buffer pool. It is used to materialize a brand-new page (directory or
// data) at its formulaic physical position regardless of whether earlier
// pages have been flushed yet.
func zeroPage(file *storagefile.File, pos int64) error {
	var zero [storagefile.PageSize]byte
	return file.WriteBlock(pos, zero[:])
}
