package storagefile

import (
	"path/filepath"
	"testing"
)

func TestCreateOpenReadWriteAppend(t *testing.T) {
	name := filepath.Join(t.TempDir(), "t.tbl")

	f, err := Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pos, err := f.AppendEmptyBlock()
	if err != nil {
		t.Fatalf("AppendEmptyBlock: %v", err)
	}
	if pos != 0 {
		t.Fatalf("expected first appended block at 0, got %d", pos)
	}

	buf := make([]byte, PageSize)
	buf[0] = 0x42
	buf[PageSize-1] = 0x99

	if err := f.WriteBlock(pos, buf); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := f.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	f2, err := Open(name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f2.Close()

	n, err := f2.NumBlocks()
	if err != nil {
		t.Fatalf("NumBlocks: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 block, got %d", n)
	}

	got := make([]byte, PageSize)
	if err := f2.ReadBlock(0, got); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if got[0] != 0x42 || got[PageSize-1] != 0x99 {
		t.Fatalf("read back unexpected contents")
	}
}

func TestReadPastEOFReturnsZeroedBuffer(t *testing.T) {
	name := filepath.Join(t.TempDir(), "t.tbl")
	f, err := Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	buf := make([]byte, PageSize)
	for i := range buf {
		buf[i] = 0xFF
	}

	if err := f.ReadBlock(5, buf); err != nil {
		t.Fatalf("ReadBlock past EOF should not error: %v", err)
	}

	for _, b := range buf {
		if b != 0 {
			t.Fatalf("expected zeroed buffer reading past EOF")
		}
	}
}

func TestDestroy(t *testing.T) {
	name := filepath.Join(t.TempDir(), "t.tbl")
	f, err := Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.Close()

	if err := Destroy(name); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if _, err := Open(name); err == nil {
		t.Fatalf("expected Open to fail after Destroy")
	}
}
