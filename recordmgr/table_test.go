package recordmgr

import (
	"path/filepath"
	"testing"

	"github.com/coredb/recordmgr/rmconfig"
)

func testCfg() rmconfig.Config {
	return rmconfig.Config{BufferPoolFrames: 4, ReplacementPolicy: "lru", LogLevel: "error"}
}

func TestCreateAndOpenTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t1.tbl")
	schema := testSchema(t)

	tbl, err := CreateTable(path, schema, testCfg())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if tbl.Name() != path {
		t.Fatalf("Name() = %q, want %q", tbl.Name(), path)
	}
	if n := GetNumTuples(tbl); n != 0 {
		t.Fatalf("GetNumTuples = %d, want 0", n)
	}
	if err := CloseTable(tbl); err != nil {
		t.Fatalf("CloseTable: %v", err)
	}
	// idempotent
	if err := CloseTable(tbl); err != nil {
		t.Fatalf("second CloseTable: %v", err)
	}

	reopened, err := OpenTable(path, testCfg())
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	defer CloseTable(reopened)

	if reopened.Schema().NumAttr() != schema.NumAttr() {
		t.Fatalf("reopened schema attr count = %d, want %d", reopened.Schema().NumAttr(), schema.NumAttr())
	}
	if len(reopened.entries) != 1 {
		t.Fatalf("reopened entries = %d, want 1", len(reopened.entries))
	}
}

func TestDeleteTableRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t2.tbl")
	schema := testSchema(t)

	tbl, err := CreateTable(path, schema, testCfg())
	if err != nil {
		t.Fatal(err)
	}
	CloseTable(tbl)

	if err := DeleteTable(path); err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	if _, err := OpenTable(path, testCfg()); err == nil {
		t.Fatal("expected OpenTable to fail after DeleteTable")
	}
}
