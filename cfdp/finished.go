package cfdp

import (
	"github.com/danmuck/spacepackets/cfdp/tlv"
	"github.com/danmuck/spacepackets/internal/protocol"
)

// FinishedPdu reports the outcome of a transaction to the sender.
type FinishedPdu struct {
	directiveBase
	ConditionCode      ConditionCode
	DeliveryCode       DeliveryCode
	FileStatus         FileStatus
	FileStoreResponses []tlv.FileStoreResponse
	// FaultLocation is optional and always packed last.
	FaultLocation *tlv.EntityID
}

var _ DirectivePdu = (*FinishedPdu)(nil)

func NewFinishedPdu(conf PduConfig, cc ConditionCode, delivery DeliveryCode, status FileStatus,
	responses []tlv.FileStoreResponse, faultLocation *tlv.EntityID) (*FinishedPdu, error) {
	base, err := newDirectiveBase(conf, DirectiveFinished, TowardsSender)
	if err != nil {
		return nil, err
	}
	p := &FinishedPdu{
		directiveBase: base,
		ConditionCode: cc,
		DeliveryCode:  delivery,
		FileStatus:    status,
		FaultLocation: copyFaultLocation(faultLocation),
	}
	for _, r := range responses {
		r.Message = append([]byte(nil), r.Message...)
		p.FileStoreResponses = append(p.FileStoreResponses, r)
	}
	return p, nil
}

func (p *FinishedPdu) paramLen() int {
	n := 1
	for _, r := range p.FileStoreResponses {
		n += r.PacketLen()
	}
	return n + faultLocationLen(p.FaultLocation)
}

func (p *FinishedPdu) PacketLen() int {
	return p.packetLen(p.paramLen())
}

func (p *FinishedPdu) statusByte() (byte, error) {
	if !p.ConditionCode.Valid() {
		return 0, protocol.Errorf(ErrInvalidValue, "condition code %d exceeds 4 bits", p.ConditionCode)
	}
	if p.DeliveryCode > DataIncomplete {
		return 0, protocol.Errorf(ErrInvalidValue, "delivery code %d exceeds 1 bit", p.DeliveryCode)
	}
	if p.FileStatus > FileStatusUnreported {
		return 0, protocol.Errorf(ErrInvalidValue, "file status %d exceeds 2 bits", p.FileStatus)
	}
	return byte(p.ConditionCode)<<4 | byte(p.DeliveryCode)<<2 | byte(p.FileStatus), nil
}

func (p *FinishedPdu) Pack() ([]byte, error) {
	status, err := p.statusByte()
	if err != nil {
		return nil, err
	}
	buf, err := p.begin(p.paramLen())
	if err != nil {
		return nil, err
	}
	buf = append(buf, status)
	for _, r := range p.FileStoreResponses {
		raw, err := r.Pack()
		if err != nil {
			return nil, err
		}
		buf = append(buf, raw...)
	}
	if buf, err = appendFaultLocation(buf, p.FaultLocation); err != nil {
		return nil, err
	}
	return p.finish(buf), nil
}

func UnpackFinishedPdu(data []byte) (*FinishedPdu, error) {
	p, err := unpackFinished(data)
	if err != nil {
		logReject("finished", data, err)
		return nil, err
	}
	return p, nil
}

func unpackFinished(data []byte) (*FinishedPdu, error) {
	base, params, err := parseDirective(data, DirectiveFinished)
	if err != nil {
		return nil, err
	}
	if len(params) < 1 {
		return nil, base.paramsTooShort(1, len(params))
	}
	p := &FinishedPdu{
		directiveBase: base,
		ConditionCode: ConditionCode(params[0] >> 4),
		DeliveryCode:  DeliveryCode(params[0] >> 2 & 0b1),
		FileStatus:    FileStatus(params[0] & 0b11),
	}
	rest := params[1:]
	for idx := 0; idx < len(rest); {
		raw, err := tlv.Unpack(rest[idx:])
		if err != nil {
			return nil, err
		}
		switch raw.Type {
		case tlv.TypeFilestoreResponse:
			r, err := tlv.FileStoreResponseFromTlv(raw)
			if err != nil {
				return nil, err
			}
			p.FileStoreResponses = append(p.FileStoreResponses, r)
		case tlv.TypeEntityID:
			fl, err := unpackTrailingFaultLocation(rest[idx:])
			if err != nil {
				return nil, err
			}
			p.FaultLocation = fl
		default:
			return nil, protocol.Errorf(ErrInvalidFormat, "unexpected %s tlv in finished pdu", raw.Type)
		}
		idx += raw.PacketLen()
	}
	return p, nil
}
