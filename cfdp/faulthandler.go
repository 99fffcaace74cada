package cfdp

import (
	"github.com/danmuck/spacepackets/cfdp/tlv"
	"github.com/danmuck/spacepackets/internal/protocol"
)

// FaultHandlerOverride is the fault handler override TLV used as a Metadata
// option.
type FaultHandlerOverride struct {
	ConditionCode ConditionCode
	HandlerCode   FaultHandlerCode
}

var _ tlv.Value = FaultHandlerOverride{}

func (f FaultHandlerOverride) TlvType() tlv.Type {
	return tlv.TypeFaultHandler
}

func (f FaultHandlerOverride) PacketLen() int {
	return tlv.HeaderLen + 1
}

func (f FaultHandlerOverride) Pack() ([]byte, error) {
	if !f.ConditionCode.Valid() {
		return nil, protocol.Errorf(ErrInvalidValue, "condition code %d exceeds 4 bits", f.ConditionCode)
	}
	if !f.HandlerCode.Known() {
		return nil, protocol.Errorf(ErrInvalidValue, "unknown fault handler code %d", f.HandlerCode)
	}
	return tlv.Tlv{Type: tlv.TypeFaultHandler, Value: []byte{byte(f.ConditionCode)<<4 | byte(f.HandlerCode)}}.Pack()
}

func FaultHandlerOverrideFromTlv(t tlv.Tlv) (FaultHandlerOverride, error) {
	if t.Type != tlv.TypeFaultHandler {
		return FaultHandlerOverride{}, protocol.Errorf(ErrInvalidFormat, "tlv type %s, want %s", t.Type, tlv.TypeFaultHandler)
	}
	if len(t.Value) != 1 {
		return FaultHandlerOverride{}, protocol.Errorf(ErrInvalidValue, "fault handler value must be 1 byte, got %d", len(t.Value))
	}
	f := FaultHandlerOverride{
		ConditionCode: ConditionCode(t.Value[0] >> 4),
		HandlerCode:   FaultHandlerCode(t.Value[0] & 0x0F),
	}
	if !f.HandlerCode.Known() {
		return FaultHandlerOverride{}, protocol.Errorf(ErrInvalidValue, "unknown fault handler code %d", f.HandlerCode)
	}
	return f, nil
}
