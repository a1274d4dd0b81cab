package recordmgr

import "fmt"

// RID identifies a record within a table: the data-page index (0-based,
// directory pages excluded) and the slot-directory index within that page.
// UpdateRecord always overwrites a record in place, so a record keeps its
// RID until it is deleted.
type RID struct {
	Page int32
	Slot int32
}

func NewRID(page, slot int32) RID {
	return RID{Page: page, Slot: slot}
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.Page, r.Slot)
}
