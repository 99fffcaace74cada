package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

const ackParamLen = 2

// AckPdu acknowledges an EOF or Finished PDU.
type AckPdu struct {
	directiveBase
	ackedDirective    DirectiveCode
	ConditionCode     ConditionCode
	TransactionStatus TransactionStatus
}

var _ DirectivePdu = (*AckPdu)(nil)

// NewAckPdu builds an ACK for acked, which must be DirectiveEOF or
// DirectiveFinished. An ACK of EOF travels toward the sender, an ACK of
// Finished toward the receiver.
func NewAckPdu(conf PduConfig, acked DirectiveCode, cc ConditionCode, status TransactionStatus) (*AckPdu, error) {
	dir, err := ackDirection(acked)
	if err != nil {
		return nil, err
	}
	base, err := newDirectiveBase(conf, DirectiveAck, dir)
	if err != nil {
		return nil, err
	}
	return &AckPdu{
		directiveBase:     base,
		ackedDirective:    acked,
		ConditionCode:     cc,
		TransactionStatus: status,
	}, nil
}

func ackDirection(acked DirectiveCode) (Direction, error) {
	switch acked {
	case DirectiveEOF:
		return TowardsSender, nil
	case DirectiveFinished:
		return TowardsReceiver, nil
	default:
		return 0, protocol.Errorf(ErrInvalidValue, "ack can only acknowledge eof or finished, got %s", acked)
	}
}

// AckedDirective returns the directive code being acknowledged.
func (p *AckPdu) AckedDirective() DirectiveCode {
	return p.ackedDirective
}

func (p *AckPdu) subtype() byte {
	if p.ackedDirective == DirectiveFinished {
		return 0b0001
	}
	return 0b0000
}

func (p *AckPdu) PacketLen() int {
	return p.packetLen(ackParamLen)
}

func (p *AckPdu) Pack() ([]byte, error) {
	if !p.ConditionCode.Valid() {
		return nil, protocol.Errorf(ErrInvalidValue, "condition code %d exceeds 4 bits", p.ConditionCode)
	}
	if p.TransactionStatus > TransactionUnrecognized {
		return nil, protocol.Errorf(ErrInvalidValue, "transaction status %d exceeds 2 bits", p.TransactionStatus)
	}
	buf, err := p.begin(ackParamLen)
	if err != nil {
		return nil, err
	}
	buf = append(buf,
		byte(p.ackedDirective)<<4|p.subtype(),
		byte(p.ConditionCode)<<4|byte(p.TransactionStatus),
	)
	return p.finish(buf), nil
}

func UnpackAckPdu(data []byte) (*AckPdu, error) {
	p, err := unpackAck(data)
	if err != nil {
		logReject("ack", data, err)
		return nil, err
	}
	return p, nil
}

func unpackAck(data []byte) (*AckPdu, error) {
	base, params, err := parseDirective(data, DirectiveAck)
	if err != nil {
		return nil, err
	}
	if len(params) < ackParamLen {
		return nil, base.paramsTooShort(ackParamLen, len(params))
	}
	if len(params) > ackParamLen {
		return nil, protocol.Errorf(ErrInvalidFormat, "ack has %d unexpected parameter bytes", len(params)-ackParamLen)
	}
	acked := DirectiveCode(params[0] >> 4)
	subtype := params[0] & 0x0F
	switch {
	case acked == DirectiveEOF && subtype == 0b0000:
	case acked == DirectiveFinished && subtype == 0b0001:
	default:
		return nil, protocol.Errorf(ErrInvalidValue, "invalid acked directive %s with subtype %d", acked, subtype)
	}
	return &AckPdu{
		directiveBase:     base,
		ackedDirective:    acked,
		ConditionCode:     ConditionCode(params[1] >> 4),
		TransactionStatus: TransactionStatus(params[1] & 0b11),
	}, nil
}
