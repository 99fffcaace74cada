package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

// KeepAlivePdu reports the receiver's progress offset to the sender.
type KeepAlivePdu struct {
	directiveBase
	Progress uint64
}

var _ DirectivePdu = (*KeepAlivePdu)(nil)

func NewKeepAlivePdu(conf PduConfig, progress uint64) (*KeepAlivePdu, error) {
	base, err := newDirectiveBase(conf, DirectiveKeepAlive, TowardsSender)
	if err != nil {
		return nil, err
	}
	return &KeepAlivePdu{directiveBase: base, Progress: progress}, nil
}

func (p *KeepAlivePdu) PacketLen() int {
	return p.packetLen(p.fssWidth())
}

func (p *KeepAlivePdu) Pack() ([]byte, error) {
	buf, err := p.begin(p.fssWidth())
	if err != nil {
		return nil, err
	}
	if buf, err = protocol.AppendUint(buf, p.fssWidth(), p.Progress); err != nil {
		return nil, err
	}
	return p.finish(buf), nil
}

func UnpackKeepAlivePdu(data []byte) (*KeepAlivePdu, error) {
	p, err := unpackKeepAlive(data)
	if err != nil {
		logReject("keep_alive", data, err)
		return nil, err
	}
	return p, nil
}

func unpackKeepAlive(data []byte) (*KeepAlivePdu, error) {
	base, params, err := parseDirective(data, DirectiveKeepAlive)
	if err != nil {
		return nil, err
	}
	w := base.fssWidth()
	if len(params) < w {
		return nil, base.paramsTooShort(w, len(params))
	}
	if len(params) > w {
		return nil, protocol.Errorf(ErrInvalidFormat, "keep alive has %d unexpected parameter bytes", len(params)-w)
	}
	p := &KeepAlivePdu{directiveBase: base}
	p.Progress, _ = protocol.Uint(params, w)
	return p, nil
}
