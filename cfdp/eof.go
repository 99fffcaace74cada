package cfdp

import (
	"github.com/danmuck/spacepackets/cfdp/tlv"
	"github.com/danmuck/spacepackets/internal/protocol"
)

// EofPdu signals the end of file data to the receiver.
type EofPdu struct {
	directiveBase
	ConditionCode ConditionCode
	FileChecksum  [4]byte
	FileSize      uint64
	// FaultLocation is optional.
	FaultLocation *tlv.EntityID
}

var _ DirectivePdu = (*EofPdu)(nil)

func NewEofPdu(conf PduConfig, cc ConditionCode, checksum []byte, fileSize uint64, faultLocation *tlv.EntityID) (*EofPdu, error) {
	if len(checksum) != 4 {
		return nil, protocol.Errorf(ErrInvalidConfiguration, "file checksum must be 4 bytes, got %d", len(checksum))
	}
	base, err := newDirectiveBase(conf, DirectiveEOF, TowardsReceiver)
	if err != nil {
		return nil, err
	}
	p := &EofPdu{
		directiveBase: base,
		ConditionCode: cc,
		FileSize:      fileSize,
		FaultLocation: copyFaultLocation(faultLocation),
	}
	copy(p.FileChecksum[:], checksum)
	return p, nil
}

func (p *EofPdu) paramLen() int {
	return 1 + 4 + p.fssWidth() + faultLocationLen(p.FaultLocation)
}

func (p *EofPdu) PacketLen() int {
	return p.packetLen(p.paramLen())
}

func (p *EofPdu) Pack() ([]byte, error) {
	if !p.ConditionCode.Valid() {
		return nil, protocol.Errorf(ErrInvalidValue, "condition code %d exceeds 4 bits", p.ConditionCode)
	}
	buf, err := p.begin(p.paramLen())
	if err != nil {
		return nil, err
	}
	buf = append(buf, byte(p.ConditionCode)<<4)
	buf = append(buf, p.FileChecksum[:]...)
	if buf, err = protocol.AppendUint(buf, p.fssWidth(), p.FileSize); err != nil {
		return nil, err
	}
	if buf, err = appendFaultLocation(buf, p.FaultLocation); err != nil {
		return nil, err
	}
	return p.finish(buf), nil
}

func UnpackEofPdu(data []byte) (*EofPdu, error) {
	p, err := unpackEof(data)
	if err != nil {
		logReject("eof", data, err)
		return nil, err
	}
	return p, nil
}

func unpackEof(data []byte) (*EofPdu, error) {
	base, params, err := parseDirective(data, DirectiveEOF)
	if err != nil {
		return nil, err
	}
	w := base.fssWidth()
	if len(params) < 1+4+4 {
		return nil, base.paramsTooShort(1+4+4, len(params))
	}
	if len(params) < 1+4+w {
		return nil, base.paramsTooShort(1+4+w, len(params))
	}
	p := &EofPdu{
		directiveBase: base,
		ConditionCode: ConditionCode(params[0] >> 4),
	}
	copy(p.FileChecksum[:], params[1:5])
	p.FileSize, _ = protocol.Uint(params[5:], w)
	rest := params[5+w:]
	if len(rest) == 0 {
		return p, nil
	}
	fl, err := unpackTrailingFaultLocation(rest)
	if err != nil {
		return nil, err
	}
	p.FaultLocation = fl
	return p, nil
}

// unpackTrailingFaultLocation parses rest as exactly one entity ID TLV.
func unpackTrailingFaultLocation(rest []byte) (*tlv.EntityID, error) {
	raw, err := tlv.Unpack(rest)
	if err != nil {
		return nil, err
	}
	fl, err := tlv.EntityIDFromTlv(raw)
	if err != nil {
		return nil, err
	}
	if n := raw.PacketLen(); n != len(rest) {
		return nil, protocol.Errorf(ErrInvalidFormat, "%d bytes after fault location", len(rest)-n)
	}
	return &fl, nil
}
