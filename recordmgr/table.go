package recordmgr

import (
	"encoding/binary"
	"fmt"

	"github.com/coredb/recordmgr/buffer"
	"github.com/coredb/recordmgr/rmconfig"
	"github.com/coredb/recordmgr/storagefile"
	"go.uber.org/zap"
)

// Table is an open handle on a record-managed table file: its schema, its
// buffer pool, and the in-memory mirror of its page directory. Table is not
// safe for concurrent use - its page/slot algorithms assume single-threaded
// access to the pages they touch at any instant. A caller that shares a
// Table across goroutines (cmd/rmserver does) must serialize access itself.
type Table struct {
	name   string
	file   *storagefile.File
	pool   *buffer.Pool
	schema *Schema

	recordSize        int32
	numPages          int32
	numDirectoryPages int32
	entries           []PageDirectoryEntry

	log *zap.Logger
}

// CreateTable creates a new table file named name with the given schema and
// writes its initial two pages: the schema page (page 0) and the head
// directory page (page 1) describing one empty data page (page 0).
func CreateTable(name string, schema *Schema, cfg rmconfig.Config) (*Table, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	recordSize, err := RecordSize(schema)
	if err != nil {
		return nil, err
	}

	file, err := storagefile.Create(name)
	if err != nil {
		return nil, fmt.Errorf("recordmgr: create table %q: %w", name, err)
	}

	schemaPage, err := serializeSchema(schema)
	if err != nil {
		file.Close()
		storagefile.Destroy(name)
		return nil, err
	}
	if err := file.WriteBlock(0, schemaPage); err != nil {
		file.Close()
		return nil, err
	}

	dirPage := make([]byte, storagefile.PageSize)
	entries := []PageDirectoryEntry{initPageDirectoryEntry(0)}
	binary.LittleEndian.PutUint32(dirPage[0:4], 1)
	binary.LittleEndian.PutUint32(dirPage[4:8], 1)
	encodeDirectoryEntry(dirPage[directoryHeaderSize:directoryHeaderSize+directoryEntrySize], entries[0])
	if err := file.WriteBlock(1, dirPage); err != nil {
		file.Close()
		return nil, err
	}

	pool := buffer.NewPool(file, cfg.BufferPoolFrames, policyFromConfig(cfg))
	log := newLogger(cfg)
	log.Info("table created", zap.String("table", name), zap.Int("numAttr", schema.NumAttr()))

	return &Table{
		name:              name,
		file:              file,
		pool:              pool,
		schema:            schema,
		recordSize:        recordSize,
		numPages:          1,
		numDirectoryPages: 1,
		entries:           entries,
		log:               log,
	}, nil
}

// OpenTable opens an existing table file, reading back its schema page and
// its full page directory chain.
func OpenTable(name string, cfg rmconfig.Config) (*Table, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	file, err := storagefile.Open(name)
	if err != nil {
		return nil, fmt.Errorf("recordmgr: open table %q: %w", name, err)
	}

	pool := buffer.NewPool(file, cfg.BufferPoolFrames, policyFromConfig(cfg))

	schemaBuf, err := pool.Pin(0)
	if err != nil {
		pool.Shutdown()
		file.Close()
		return nil, err
	}
	schema, err := deserializeSchema(schemaBuf)
	if uerr := pool.Unpin(0); uerr != nil && err == nil {
		err = uerr
	}
	if err != nil {
		pool.Shutdown()
		file.Close()
		return nil, err
	}

	recordSize, err := RecordSize(schema)
	if err != nil {
		pool.Shutdown()
		file.Close()
		return nil, err
	}

	entries, numPages, numDirectoryPages, err := readDirectoryChain(pool)
	if err != nil {
		pool.Shutdown()
		file.Close()
		return nil, err
	}

	log := newLogger(cfg)
	log.Info("table opened", zap.String("table", name), zap.Int32("numDataPages", int32(len(entries))))

	return &Table{
		name:              name,
		file:              file,
		pool:              pool,
		schema:            schema,
		recordSize:        recordSize,
		numPages:          numPages,
		numDirectoryPages: numDirectoryPages,
		entries:           entries,
		log:               log,
	}, nil
}

// CloseTable flushes and releases a Table's resources. It is safe to call
// more than once.
func CloseTable(t *Table) error {
	if t.file == nil {
		return nil
	}
	if err := t.pool.Shutdown(); err != nil {
		return err
	}
	err := t.file.Close()
	t.file = nil
	if t.log != nil {
		t.log.Info("table closed", zap.String("table", t.name))
	}
	return err
}

// DeleteTable removes a table's underlying file. It does not close an open
// Table on that file.
func DeleteTable(name string) error {
	return storagefile.Destroy(name)
}

// GetNumTuples returns the total record count across every data page.
func GetNumTuples(t *Table) int32 {
	var total int32
	for _, e := range t.entries {
		total += e.RecordCount
	}
	return total
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Name returns the table's name.
func (t *Table) Name() string {
	return t.name
}

// BufferStats reports the table's buffer pool hit/miss/eviction counters,
// used by cmd/rmserver's stats endpoint.
func (t *Table) BufferStats() buffer.Stats {
	return t.pool.Stats()
}

func policyFromConfig(cfg rmconfig.Config) buffer.Policy {
	if cfg.ReplacementPolicy == "clock" {
		return buffer.Clock
	}
	return buffer.LRU
}
