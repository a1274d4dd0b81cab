package recordmgr

import (
	"bytes"
	"errors"
	"testing"
)

func TestSetAttrGetAttrInt(t *testing.T) {
	s := testSchema(t)
	rec := &Record{Data: make([]byte, mustRecordSize(t, s))}

	if err := SetAttr(s, rec, 0, int32(123)); err != nil {
		t.Fatal(err)
	}
	v, err := GetAttr(s, rec, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.(int32) != 123 {
		t.Fatalf("got %v, want 123", v)
	}
}

func TestSetAttrGetAttrString(t *testing.T) {
	s := testSchema(t)
	rec := &Record{Data: make([]byte, mustRecordSize(t, s))}

	if err := SetAttr(s, rec, 1, "ada"); err != nil {
		t.Fatal(err)
	}
	v, err := GetAttr(s, rec, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := v.([]byte)
	if !bytes.Equal(got[:3], []byte("ada")) {
		t.Fatalf("got %q, want %q", got, "ada")
	}
	if got[3] != 0 {
		t.Fatalf("expected NUL terminator after payload, got %v", got)
	}
}

func TestSetAttrStringTruncatesTooLong(t *testing.T) {
	s := testSchema(t)
	rec := &Record{Data: make([]byte, mustRecordSize(t, s))}

	long := "this string is definitely longer than 16 bytes"
	if err := SetAttr(s, rec, 1, long); err != nil {
		t.Fatal(err)
	}
	v, err := GetAttr(s, rec, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := v.([]byte)
	if len(got) != 17 {
		t.Fatalf("len(got) = %d, want 17", len(got))
	}
	if string(got[:16]) != long[:16] {
		t.Fatalf("got %q, want truncation of %q", got[:16], long)
	}
}

func TestSetAttrTypeMismatch(t *testing.T) {
	s := testSchema(t)
	rec := &Record{Data: make([]byte, mustRecordSize(t, s))}
	if err := SetAttr(s, rec, 0, "not an int"); !errors.Is(err, ErrAttributeTypeMismatch) {
		t.Fatalf("got %v, want ErrAttributeTypeMismatch", err)
	}
}

func TestGetAttrBoolAndFloat(t *testing.T) {
	s := testSchema(t)
	rec := &Record{Data: make([]byte, mustRecordSize(t, s))}

	if err := SetAttr(s, rec, 2, true); err != nil {
		t.Fatal(err)
	}
	if err := SetAttr(s, rec, 3, 3.25); err != nil {
		t.Fatal(err)
	}

	b, err := GetAttr(s, rec, 2)
	if err != nil || b.(bool) != true {
		t.Fatalf("bool got %v, err %v", b, err)
	}
	f, err := GetAttr(s, rec, 3)
	if err != nil || f.(float64) != 3.25 {
		t.Fatalf("float got %v, err %v", f, err)
	}
}

func mustRecordSize(t *testing.T, s *Schema) int32 {
	t.Helper()
	sz, err := RecordSize(s)
	if err != nil {
		t.Fatal(err)
	}
	return sz
}
