package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

// SegmentRequest is one missing byte range [Start, End) of file data.
type SegmentRequest struct {
	Start uint64
	End   uint64
}

// NakPdu requests retransmission of missing file data within a scope.
type NakPdu struct {
	directiveBase
	StartOfScope    uint64
	EndOfScope      uint64
	SegmentRequests []SegmentRequest
}

var _ DirectivePdu = (*NakPdu)(nil)

func NewNakPdu(conf PduConfig, startOfScope, endOfScope uint64, segments []SegmentRequest) (*NakPdu, error) {
	base, err := newDirectiveBase(conf, DirectiveNak, TowardsSender)
	if err != nil {
		return nil, err
	}
	return &NakPdu{
		directiveBase:   base,
		StartOfScope:    startOfScope,
		EndOfScope:      endOfScope,
		SegmentRequests: append([]SegmentRequest(nil), segments...),
	}, nil
}

func (p *NakPdu) paramLen() int {
	w := p.fssWidth()
	return 2*w + len(p.SegmentRequests)*2*w
}

func (p *NakPdu) PacketLen() int {
	return p.packetLen(p.paramLen())
}

func (p *NakPdu) Pack() ([]byte, error) {
	w := p.fssWidth()
	buf, err := p.begin(p.paramLen())
	if err != nil {
		return nil, err
	}
	if buf, err = protocol.AppendUint(buf, w, p.StartOfScope); err != nil {
		return nil, err
	}
	if buf, err = protocol.AppendUint(buf, w, p.EndOfScope); err != nil {
		return nil, err
	}
	for i, seg := range p.SegmentRequests {
		if buf, err = protocol.AppendUint(buf, w, seg.Start); err != nil {
			return nil, protocol.Errorf(ErrInvalidValue, "segment request %d start: %v", i, err)
		}
		if buf, err = protocol.AppendUint(buf, w, seg.End); err != nil {
			return nil, protocol.Errorf(ErrInvalidValue, "segment request %d end: %v", i, err)
		}
	}
	return p.finish(buf), nil
}

// MaxSegmentRequests returns how many segment requests fit into a NAK PDU
// of at most maxPacketLen bytes with this PDU's configuration.
func (p *NakPdu) MaxSegmentRequests(maxPacketLen int) int {
	return MaxSegmentRequestsFor(p.conf, maxPacketLen)
}

func MaxSegmentRequestsFor(conf PduConfig, maxPacketLen int) int {
	w := conf.LargeFile.FssWidth()
	fixed := HeaderLen(conf) + DirectiveCodeLen + 2*w + conf.crcLen()
	if maxPacketLen < fixed {
		return 0
	}
	return (maxPacketLen - fixed) / (2 * w)
}

func UnpackNakPdu(data []byte) (*NakPdu, error) {
	p, err := unpackNak(data)
	if err != nil {
		logReject("nak", data, err)
		return nil, err
	}
	return p, nil
}

func unpackNak(data []byte) (*NakPdu, error) {
	base, params, err := parseDirective(data, DirectiveNak)
	if err != nil {
		return nil, err
	}
	w := base.fssWidth()
	if len(params) < 2*w {
		return nil, base.paramsTooShort(2*w, len(params))
	}
	p := &NakPdu{directiveBase: base}
	p.StartOfScope, _ = protocol.Uint(params, w)
	p.EndOfScope, _ = protocol.Uint(params[w:], w)
	rest := params[2*w:]
	if len(rest)%(2*w) != 0 {
		return nil, protocol.Errorf(ErrInvalidFormat, "%d segment request bytes not a multiple of %d", len(rest), 2*w)
	}
	for i := 0; i < len(rest); i += 2 * w {
		start, _ := protocol.Uint(rest[i:], w)
		end, _ := protocol.Uint(rest[i+w:], w)
		p.SegmentRequests = append(p.SegmentRequests, SegmentRequest{Start: start, End: end})
	}
	return p, nil
}
