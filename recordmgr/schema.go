package recordmgr

import (
	"encoding/binary"
	"fmt"

	"github.com/coredb/recordmgr/storagefile"
)

// DataType is the type tag of a schema attribute.
type DataType int8

const (
	TypeInt DataType = iota
	TypeFloat
	TypeBool
	TypeString
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeBool:
		return "BOOL"
	case TypeString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

const (
	sizeOfInt    = 4
	sizeOfFloat  = 8
	sizeOfBool   = 1
)

// sizeOf returns the on-disk byte size of a single attribute of type t.
// typeLength is only meaningful (and only consulted) for TypeString.
func sizeOf(t DataType, typeLength int32) (int32, error) {
	switch t {
	case TypeInt:
		return sizeOfInt, nil
	case TypeFloat:
		return sizeOfFloat, nil
	case TypeBool:
		return sizeOfBool, nil
	case TypeString:
		if typeLength <= 0 {
			return 0, fmt.Errorf("%w: STRING attribute must have a positive typeLength", ErrInvalidInput)
		}
		return typeLength, nil
	default:
		return 0, ErrDataTypeError
	}
}

// Schema is the typed layout of a table's records: attribute names, types,
// per-attribute width (meaningful for STRING) and the key attribute
// indexes.
type Schema struct {
	AttrNames  []string
	DataTypes  []DataType
	TypeLength []int32
	KeyAttrs   []int32
}

// NewSchema builds a Schema from parallel attribute descriptions. len(names)
// must equal len(types) must equal len(typeLength).
func NewSchema(names []string, types []DataType, typeLength []int32, keyAttrs []int32) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: schema must have at least one attribute", ErrInvalidInput)
	}
	if len(names) != len(types) || len(names) != len(typeLength) {
		return nil, fmt.Errorf("%w: attrNames/dataTypes/typeLength must have equal length", ErrInvalidInput)
	}
	for _, k := range keyAttrs {
		if k < 0 || int(k) >= len(names) {
			return nil, fmt.Errorf("%w: key attribute index %d out of range", ErrInvalidInput, k)
		}
	}

	s := &Schema{
		AttrNames:  append([]string(nil), names...),
		DataTypes:  append([]DataType(nil), types...),
		TypeLength: append([]int32(nil), typeLength...),
		KeyAttrs:   append([]int32(nil), keyAttrs...),
	}

	if _, err := RecordSize(s); err != nil {
		return nil, err
	}

	return s, nil
}

// NumAttr returns the number of attributes in the schema.
func (s *Schema) NumAttr() int {
	return len(s.AttrNames)
}

// IndexOf returns the attribute index for name, or -1 if not found.
func (s *Schema) IndexOf(name string) int {
	for i, n := range s.AttrNames {
		if n == name {
			return i
		}
	}
	return -1
}

// RecordSize is the sum of per-attribute sizes: sizeof(int)/sizeof(float)/
// sizeof(bool)/typeLength[i].
func RecordSize(s *Schema) (int32, error) {
	var total int32
	for i, t := range s.DataTypes {
		sz, err := sizeOf(t, s.TypeLength[i])
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}

// AttrOffset is the sum of sizes of attributes 0..k-1.
func AttrOffset(s *Schema, k int) (int32, error) {
	if k < 0 || k >= len(s.AttrNames) {
		return 0, ErrInvalidAttribute
	}
	var offset int32
	for i := 0; i < k; i++ {
		sz, err := sizeOf(s.DataTypes[i], s.TypeLength[i])
		if err != nil {
			return 0, err
		}
		offset += sz
	}
	return offset, nil
}

// serializeSchema writes a Schema into a single PageSize-byte page (page 0
// of the table file), using the wire format:
//
//	int32   numAttr
//	repeat numAttr: cstring attrName (NUL-terminated)
//	repeat numAttr: int8    dataType
//	repeat numAttr: int32   typeLength
//	int32   keySize
//	repeat keySize: int32   keyAttrs[i]
func serializeSchema(s *Schema) ([]byte, error) {
	buf := make([]byte, 0, 256)

	numAttr := int32(len(s.AttrNames))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(numAttr))

	for _, name := range s.AttrNames {
		buf = append(buf, []byte(name)...)
		buf = append(buf, 0)
	}
	for _, t := range s.DataTypes {
		buf = append(buf, byte(t))
	}
	for _, l := range s.TypeLength {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(l))
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.KeyAttrs)))
	for _, k := range s.KeyAttrs {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(k))
	}

	if len(buf) > storagefile.PageSize {
		return nil, ErrPageFull
	}

	page := make([]byte, storagefile.PageSize)
	copy(page, buf)
	return page, nil
}

// deserializeSchema is the inverse of serializeSchema: it reads page
// (page 0 of an opened table file) back into a Schema. Each attribute name
// is duplicated into memory owned by the returned Schema.
func deserializeSchema(page []byte) (*Schema, error) {
	if len(page) != storagefile.PageSize {
		return nil, fmt.Errorf("%w: schema page must be %d bytes", ErrInvalidInput, storagefile.PageSize)
	}

	pos := 0
	readUint32 := func() (uint32, error) {
		if pos+4 > len(page) {
			return 0, fmt.Errorf("%w: truncated schema page", ErrInvalidInput)
		}
		v := binary.LittleEndian.Uint32(page[pos : pos+4])
		pos += 4
		return v, nil
	}

	numAttrU, err := readUint32()
	if err != nil {
		return nil, err
	}
	numAttr := int(numAttrU)
	if numAttr <= 0 || numAttr > 1<<16 {
		return nil, fmt.Errorf("%w: implausible attribute count %d", ErrInvalidInput, numAttr)
	}

	names := make([]string, numAttr)
	for i := 0; i < numAttr; i++ {
		start := pos
		for pos < len(page) && page[pos] != 0 {
			pos++
		}
		if pos >= len(page) {
			return nil, fmt.Errorf("%w: unterminated attribute name in schema page", ErrInvalidInput)
		}
		names[i] = string(append([]byte(nil), page[start:pos]...))
		pos++ // skip NUL
	}

	types := make([]DataType, numAttr)
	for i := 0; i < numAttr; i++ {
		if pos >= len(page) {
			return nil, fmt.Errorf("%w: truncated schema page", ErrInvalidInput)
		}
		types[i] = DataType(page[pos])
		pos++
	}

	typeLengths := make([]int32, numAttr)
	for i := 0; i < numAttr; i++ {
		v, err := readUint32()
		if err != nil {
			return nil, err
		}
		typeLengths[i] = int32(v)
	}

	keySizeU, err := readUint32()
	if err != nil {
		return nil, err
	}
	keyAttrs := make([]int32, keySizeU)
	for i := range keyAttrs {
		v, err := readUint32()
		if err != nil {
			return nil, err
		}
		keyAttrs[i] = int32(v)
	}

	return &Schema{
		AttrNames:  names,
		DataTypes:  types,
		TypeLength: typeLengths,
		KeyAttrs:   keyAttrs,
	}, nil
}
