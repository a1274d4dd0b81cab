package recordmgr

import "errors"

// Status sentinels cover every fallible condition the record manager can
// hit. Every fallible operation returns one of these (possibly wrapped with
// additional context via fmt.Errorf("...: %w", ...)) rather than panicking
// or silently recovering.
var (
	ErrInvalidInput          = errors.New("recordmgr: invalid input")
	ErrInvalidName           = errors.New("recordmgr: invalid table name")
	ErrInvalidRID            = errors.New("recordmgr: invalid record id")
	ErrInvalidAttribute      = errors.New("recordmgr: invalid attribute index")
	ErrAttributeTypeMismatch = errors.New("recordmgr: attribute type mismatch")
	ErrDataTypeError         = errors.New("recordmgr: unsupported data type")
	ErrRecordNotFound        = errors.New("recordmgr: record not found")
	ErrMemoryAllocationFail  = errors.New("recordmgr: memory allocation failure")
	ErrPageFull              = errors.New("recordmgr: schema does not fit on a page")
	ErrNoMoreTuples          = errors.New("recordmgr: no more tuples")
)
