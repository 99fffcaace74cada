// Package tlv implements the CFDP Type-Length-Value and Length-Value
// sub-encodings (CCSDS 727.0-B-5 5.1.7) and the TLV catalogue.
package tlv

import (
	"fmt"

	"github.com/danmuck/spacepackets/internal/protocol"
)

const (
	HeaderLen   = 2
	MaxValueLen = 255
)

var (
	ErrInvalidConfiguration = protocol.ErrInvalidConfiguration
	ErrTooShort             = protocol.ErrTooShort
	ErrInvalidValue         = protocol.ErrInvalidValue
	ErrInvalidFormat        = protocol.ErrInvalidFormat
)

// Type is the one byte TLV type field.
type Type uint8

// Type IDs from the CFDP TLV catalogue.
const (
	TypeFilestoreRequest  Type = 0x00
	TypeFilestoreResponse Type = 0x01
	TypeMessageToUser     Type = 0x02
	TypeFaultHandler      Type = 0x04
	TypeFlowLabel         Type = 0x05
	TypeEntityID          Type = 0x06
)

// Known reports whether t is an assigned TLV type.
func (t Type) Known() bool {
	switch t {
	case TypeFilestoreRequest, TypeFilestoreResponse, TypeMessageToUser,
		TypeFaultHandler, TypeFlowLabel, TypeEntityID:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case TypeFilestoreRequest:
		return "filestore_request"
	case TypeFilestoreResponse:
		return "filestore_response"
	case TypeMessageToUser:
		return "message_to_user"
	case TypeFaultHandler:
		return "fault_handler"
	case TypeFlowLabel:
		return "flow_label"
	case TypeEntityID:
		return "entity_id"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

// Value is implemented by every concrete TLV kind.
type Value interface {
	TlvType() Type
	PacketLen() int
	Pack() ([]byte, error)
}

// Tlv is one generic TLV field. It is also the raw fallback for kinds that
// carry no further structure.
type Tlv struct {
	Type  Type
	Value []byte
}

var _ Value = Tlv{}

// New copies value into a TLV of type t.
func New(t Type, value []byte) (Tlv, error) {
	if len(value) > MaxValueLen {
		return Tlv{}, protocol.Errorf(ErrInvalidValue, "tlv value length %d exceeds %d", len(value), MaxValueLen)
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	return Tlv{Type: t, Value: buf}, nil
}

// NewMessageToUser builds a message-to-user TLV.
func NewMessageToUser(msg []byte) (Tlv, error) {
	return New(TypeMessageToUser, msg)
}

// NewFlowLabel builds a flow label TLV.
func NewFlowLabel(label []byte) (Tlv, error) {
	return New(TypeFlowLabel, label)
}

func (t Tlv) TlvType() Type {
	return t.Type
}

func (t Tlv) PacketLen() int {
	return HeaderLen + len(t.Value)
}

func (t Tlv) Pack() ([]byte, error) {
	return t.AppendTo(make([]byte, 0, t.PacketLen()))
}

// AppendTo appends the encoded TLV to dst.
func (t Tlv) AppendTo(dst []byte) ([]byte, error) {
	if len(t.Value) > MaxValueLen {
		return dst, protocol.Errorf(ErrInvalidValue, "tlv value length %d exceeds %d", len(t.Value), MaxValueLen)
	}
	dst = append(dst, byte(t.Type), byte(len(t.Value)))
	return append(dst, t.Value...), nil
}

// Unpack parses the TLV at the start of data. Bytes after the TLV are left to
// the caller; use PacketLen to advance.
func Unpack(data []byte) (Tlv, error) {
	if len(data) < HeaderLen {
		return Tlv{}, protocol.TooShort(HeaderLen, len(data))
	}
	l := int(data[1])
	if len(data)-HeaderLen < l {
		return Tlv{}, protocol.TooShort(HeaderLen+l, len(data))
	}
	val := make([]byte, l)
	copy(val, data[HeaderLen:HeaderLen+l])
	return Tlv{Type: Type(data[0]), Value: val}, nil
}

// Decode parses the TLV at the start of data into its concrete kind.
// Messages to user carrying the "cfdp" prefix come back as ReservedMessage.
// Kinds without further structure come back as Tlv.
func Decode(data []byte) (Value, error) {
	raw, err := Unpack(data)
	if err != nil {
		return nil, err
	}
	switch raw.Type {
	case TypeEntityID:
		return EntityIDFromTlv(raw)
	case TypeFilestoreResponse:
		return FileStoreResponseFromTlv(raw)
	case TypeFilestoreRequest:
		return FileStoreRequestFromTlv(raw)
	case TypeMessageToUser:
		if IsReservedMessage(raw) {
			return ReservedMessageFromTlv(raw)
		}
		return raw, nil
	case TypeFaultHandler, TypeFlowLabel:
		return raw, nil
	default:
		return nil, protocol.Errorf(ErrInvalidFormat, "unknown tlv type 0x%02x", uint8(raw.Type))
	}
}

// DecodeAll decodes a run of TLVs that exactly fills data.
func DecodeAll(data []byte) ([]Value, error) {
	out := make([]Value, 0)
	for i := 0; i < len(data); {
		v, err := Decode(data[i:])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		i += v.PacketLen()
	}
	return out, nil
}

// Clone returns v with every byte slice it holds copied. Values of other
// packages are returned unchanged.
func Clone(v Value) Value {
	switch v := v.(type) {
	case Tlv:
		return Tlv{Type: v.Type, Value: cloneBytes(v.Value)}
	case ReservedMessage:
		return ReservedMessage{MsgType: v.MsgType, Params: cloneBytes(v.Params)}
	case EntityID:
		return EntityID{ID: cloneBytes(v.ID)}
	case FileStoreResponse:
		v.Message = cloneBytes(v.Message)
		return v
	default:
		return v
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func expectType(t Tlv, want Type) error {
	if t.Type != want {
		return protocol.Errorf(ErrInvalidFormat, "tlv type mismatch: got %s want %s", t.Type, want)
	}
	return nil
}
