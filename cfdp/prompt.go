package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

// ResponseRequired selects what a Prompt PDU asks the receiver to send.
type ResponseRequired uint8

const (
	ResponseNak       ResponseRequired = 0
	ResponseKeepAlive ResponseRequired = 1
)

const promptParamLen = 1

type PromptPdu struct {
	directiveBase
	ResponseRequired ResponseRequired
}

var _ DirectivePdu = (*PromptPdu)(nil)

func NewPromptPdu(conf PduConfig, resp ResponseRequired) (*PromptPdu, error) {
	base, err := newDirectiveBase(conf, DirectivePrompt, TowardsReceiver)
	if err != nil {
		return nil, err
	}
	return &PromptPdu{directiveBase: base, ResponseRequired: resp}, nil
}

func (p *PromptPdu) PacketLen() int {
	return p.packetLen(promptParamLen)
}

func (p *PromptPdu) Pack() ([]byte, error) {
	if p.ResponseRequired > ResponseKeepAlive {
		return nil, protocol.Errorf(ErrInvalidValue, "response required %d exceeds 1 bit", p.ResponseRequired)
	}
	buf, err := p.begin(promptParamLen)
	if err != nil {
		return nil, err
	}
	buf = append(buf, byte(p.ResponseRequired)<<7)
	return p.finish(buf), nil
}

func UnpackPromptPdu(data []byte) (*PromptPdu, error) {
	p, err := unpackPrompt(data)
	if err != nil {
		logReject("prompt", data, err)
		return nil, err
	}
	return p, nil
}

func unpackPrompt(data []byte) (*PromptPdu, error) {
	base, params, err := parseDirective(data, DirectivePrompt)
	if err != nil {
		return nil, err
	}
	if len(params) < promptParamLen {
		return nil, base.paramsTooShort(promptParamLen, len(params))
	}
	if len(params) > promptParamLen {
		return nil, protocol.Errorf(ErrInvalidFormat, "prompt has %d unexpected parameter bytes", len(params)-promptParamLen)
	}
	return &PromptPdu{
		directiveBase:    base,
		ResponseRequired: ResponseRequired(params[0] >> 7),
	}, nil
}
