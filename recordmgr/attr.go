package recordmgr

import (
	"encoding/binary"
	"fmt"
	"math"
)

// GetAttr decodes attribute attrNum out of rec.Data according to schema.
// The returned value is freshly allocated; the caller owns it and may
// mutate it freely. For a STRING attribute the returned []byte is
// typeLength+1 bytes long and NUL-terminated, even though the on-disk
// representation is not NUL-terminated.
func GetAttr(schema *Schema, rec *Record, attrNum int) (interface{}, error) {
	if attrNum < 0 || attrNum >= schema.NumAttr() {
		return nil, ErrInvalidAttribute
	}
	offset, err := AttrOffset(schema, attrNum)
	if err != nil {
		return nil, err
	}

	switch schema.DataTypes[attrNum] {
	case TypeInt:
		if int(offset)+sizeOfInt > len(rec.Data) {
			return nil, fmt.Errorf("%w: record too short for attribute %d", ErrInvalidInput, attrNum)
		}
		return int32(binary.LittleEndian.Uint32(rec.Data[offset : offset+sizeOfInt])), nil

	case TypeFloat:
		if int(offset)+sizeOfFloat > len(rec.Data) {
			return nil, fmt.Errorf("%w: record too short for attribute %d", ErrInvalidInput, attrNum)
		}
		bits := binary.LittleEndian.Uint64(rec.Data[offset : offset+sizeOfFloat])
		return math.Float64frombits(bits), nil

	case TypeBool:
		if int(offset)+sizeOfBool > len(rec.Data) {
			return nil, fmt.Errorf("%w: record too short for attribute %d", ErrInvalidInput, attrNum)
		}
		return rec.Data[offset] != 0, nil

	case TypeString:
		n := schema.TypeLength[attrNum]
		if int(offset)+int(n) > len(rec.Data) {
			return nil, fmt.Errorf("%w: record too short for attribute %d", ErrInvalidInput, attrNum)
		}
		out := make([]byte, n+1)
		copy(out, rec.Data[offset:offset+n])
		return out, nil

	default:
		return nil, ErrDataTypeError
	}
}

// SetAttr encodes value into rec.Data at attribute attrNum's offset,
// per schema. For STRING, value must be a []byte or string; it is copied
// in (truncated or zero-padded) to exactly typeLength bytes - strings are
// fixed width and never NUL-terminated on disk.
func SetAttr(schema *Schema, rec *Record, attrNum int, value interface{}) error {
	if attrNum < 0 || attrNum >= schema.NumAttr() {
		return ErrInvalidAttribute
	}
	offset, err := AttrOffset(schema, attrNum)
	if err != nil {
		return err
	}

	switch schema.DataTypes[attrNum] {
	case TypeInt:
		v, ok := value.(int32)
		if !ok {
			return ErrAttributeTypeMismatch
		}
		binary.LittleEndian.PutUint32(rec.Data[offset:offset+sizeOfInt], uint32(v))

	case TypeFloat:
		v, ok := value.(float64)
		if !ok {
			return ErrAttributeTypeMismatch
		}
		binary.LittleEndian.PutUint64(rec.Data[offset:offset+sizeOfFloat], math.Float64bits(v))

	case TypeBool:
		v, ok := value.(bool)
		if !ok {
			return ErrAttributeTypeMismatch
		}
		if v {
			rec.Data[offset] = 1
		} else {
			rec.Data[offset] = 0
		}

	case TypeString:
		n := schema.TypeLength[attrNum]
		var raw []byte
		switch v := value.(type) {
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		default:
			return ErrAttributeTypeMismatch
		}
		// Trim a NUL terminator if the caller passed one in, as GetAttr's
		// return value does.
		if i := indexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		dst := rec.Data[offset : offset+n]
		for i := range dst {
			dst[i] = 0
		}
		copy(dst, raw)

	default:
		return ErrDataTypeError
	}

	return nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
