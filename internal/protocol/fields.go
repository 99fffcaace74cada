package protocol

import "encoding/binary"

// ValidWidth reports whether n is one of the field widths CFDP allows for
// entity IDs, sequence numbers and file size sensitive fields.
func ValidWidth(n int) bool {
	switch n {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// MaxForWidth returns the largest value representable in width bytes.
func MaxForWidth(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(8*uint(width)) - 1
}

// PutUint writes v big-endian into dst[:width].
func PutUint(dst []byte, width int, v uint64) error {
	if !ValidWidth(width) {
		return Errorf(ErrInvalidConfiguration, "field width %d not in {1,2,4,8}", width)
	}
	if len(dst) < width {
		return TooShort(width, len(dst))
	}
	if v > MaxForWidth(width) {
		return Errorf(ErrInvalidValue, "value %d exceeds %d byte field", v, width)
	}
	switch width {
	case 1:
		dst[0] = uint8(v)
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(dst, v)
	}
	return nil
}

// AppendUint appends v as a width byte big-endian field.
func AppendUint(dst []byte, width int, v uint64) ([]byte, error) {
	var buf [8]byte
	if err := PutUint(buf[:], width, v); err != nil {
		return dst, err
	}
	return append(dst, buf[:width]...), nil
}

// EncodeUint returns v as a fresh width byte big-endian field.
func EncodeUint(v uint64, width int) ([]byte, error) {
	return AppendUint(make([]byte, 0, 8), width, v)
}

// Uint reads a width byte big-endian field from the start of src.
func Uint(src []byte, width int) (uint64, error) {
	if !ValidWidth(width) {
		return 0, Errorf(ErrInvalidConfiguration, "field width %d not in {1,2,4,8}", width)
	}
	if len(src) < width {
		return 0, TooShort(width, len(src))
	}
	switch width {
	case 1:
		return uint64(src[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(src)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(src)), nil
	default:
		return binary.BigEndian.Uint64(src), nil
	}
}
