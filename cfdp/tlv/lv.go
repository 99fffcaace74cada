package tlv

import "github.com/danmuck/spacepackets/internal/protocol"

// Lv is a CFDP Length-Value field: one length byte followed by up to 255
// value bytes.
type Lv []byte

// NewLv validates and copies value.
func NewLv(value []byte) (Lv, error) {
	if len(value) > MaxValueLen {
		return nil, protocol.Errorf(ErrInvalidValue, "lv value length %d exceeds %d", len(value), MaxValueLen)
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	return Lv(buf), nil
}

func (l Lv) PacketLen() int {
	return 1 + len(l)
}

func (l Lv) AppendTo(dst []byte) ([]byte, error) {
	if len(l) > MaxValueLen {
		return dst, protocol.Errorf(ErrInvalidValue, "lv value length %d exceeds %d", len(l), MaxValueLen)
	}
	dst = append(dst, byte(len(l)))
	return append(dst, l...), nil
}

// UnpackLv parses the LV at the start of data.
func UnpackLv(data []byte) (Lv, error) {
	if len(data) < 1 {
		return nil, protocol.TooShort(1, len(data))
	}
	l := int(data[0])
	if len(data)-1 < l {
		return nil, protocol.TooShort(1+l, len(data))
	}
	buf := make([]byte, l)
	copy(buf, data[1:1+l])
	return Lv(buf), nil
}
