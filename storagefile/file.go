// Package storagefile implements the page-file storage manager: it maps a
// single on-disk file to an ordered sequence of fixed-size blocks and
// provides block-granular create/open/close/destroy/read/write/append
// primitives. It knows nothing about record layout, schemas or slots - that
// is the record manager's job.
package storagefile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// PageSize is the fixed size, in bytes, of every block in every page file.
// It is shared with the buffer pool and the record manager.
const PageSize = 8192

var (
	ErrAlreadyOpen  = errors.New("storagefile: file is already open")
	ErrNotOpen      = errors.New("storagefile: file is not open")
	ErrInvalidBlock = errors.New("storagefile: block number out of range")
)

// File is a page-file storage manager bound to a single on-disk file. It
// always reads and writes exactly PageSize bytes at a block boundary, so
// every call to ReadBlock/WriteBlock/AppendEmptyBlock incurs exactly one
// disk access.
type File struct {
	name string
	f    *os.File
}

// Create creates a new, empty page file at name. It fails if the file
// already exists.
func Create(name string) (*File, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storagefile: create %q: %w", name, err)
	}
	return &File{name: name, f: f}, nil
}

// Open opens an existing page file at name.
func Open(name string) (*File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storagefile: open %q: %w", name, err)
	}
	return &File{name: name, f: f}, nil
}

// Close closes the underlying file descriptor. Close is idempotent: closing
// an already-closed File returns nil.
func (pf *File) Close() error {
	if pf == nil || pf.f == nil {
		return nil
	}
	err := pf.f.Close()
	pf.f = nil
	if err != nil {
		return fmt.Errorf("storagefile: close %q: %w", pf.name, err)
	}
	return nil
}

// Destroy removes the page file at name from disk. It does not close a File
// that is open on it; a file that does not exist is not an error.
func Destroy(name string) error {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storagefile: destroy %q: %w", name, err)
	}
	return nil
}

// NumBlocks returns the number of PageSize blocks currently in the file.
func (pf *File) NumBlocks() (int64, error) {
	if pf.f == nil {
		return 0, ErrNotOpen
	}
	info, err := pf.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("storagefile: stat %q: %w", pf.name, err)
	}
	return info.Size() / PageSize, nil
}

// ReadBlock reads the block at the given position into buf, which must be
// exactly PageSize bytes. Reading past the end of the file (io.EOF) is not
// an error: buf is left holding zero bytes for the unwritten tail.
func (pf *File) ReadBlock(pos int64, buf []byte) error {
	if pf.f == nil {
		return ErrNotOpen
	}
	if len(buf) != PageSize {
		return fmt.Errorf("storagefile: buffer must be %d bytes, got %d", PageSize, len(buf))
	}
	if pos < 0 {
		return ErrInvalidBlock
	}

	for i := range buf {
		buf[i] = 0
	}

	if _, err := pf.f.ReadAt(buf, pos*PageSize); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("storagefile: read block %d of %q: %w", pos, pf.name, err)
	}
	return nil
}

// WriteBlock writes buf (exactly PageSize bytes) to the block at pos.
func (pf *File) WriteBlock(pos int64, buf []byte) error {
	if pf.f == nil {
		return ErrNotOpen
	}
	if len(buf) != PageSize {
		return fmt.Errorf("storagefile: buffer must be %d bytes, got %d", PageSize, len(buf))
	}
	if pos < 0 {
		return ErrInvalidBlock
	}

	if _, err := pf.f.WriteAt(buf, pos*PageSize); err != nil {
		return fmt.Errorf("storagefile: write block %d of %q: %w", pos, pf.name, err)
	}
	return nil
}

// AppendEmptyBlock appends a new zero-filled block to the file and returns
// its position.
func (pf *File) AppendEmptyBlock() (int64, error) {
	n, err := pf.NumBlocks()
	if err != nil {
		return 0, err
	}

	var zero [PageSize]byte
	if err := pf.WriteBlock(n, zero[:]); err != nil {
		return 0, err
	}
	return n, nil
}
