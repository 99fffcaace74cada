package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

// Pdu is implemented by every concrete PDU type.
type Pdu interface {
	PduType() PduType
	Config() PduConfig
	PacketLen() int
	Pack() ([]byte, error)
}

// DirectivePdu is a Pdu with a directive code.
type DirectivePdu interface {
	Pdu
	DirectiveCode() DirectiveCode
}

// PduTypeOf reads the PDU type bit of the header at the start of data.
func PduTypeOf(data []byte) (PduType, error) {
	if len(data) < FixedHeaderLen {
		return 0, protocol.TooShort(FixedHeaderLen, len(data))
	}
	return PduType(data[0] >> 4 & 1), nil
}

// DirectiveCodeOf returns the directive code of a file directive PDU.
func DirectiveCodeOf(data []byte) (DirectiveCode, error) {
	t, err := PduTypeOf(data)
	if err != nil {
		return 0, err
	}
	if t != PduTypeFileDirective {
		return 0, protocol.Errorf(ErrInvalidFormat, "file data pdu has no directive code")
	}
	_, hlen, err := UnpackHeader(data)
	if err != nil {
		return 0, err
	}
	if len(data) < hlen+DirectiveCodeLen {
		return 0, protocol.TooShort(hlen+DirectiveCodeLen, len(data))
	}
	return DirectiveCode(data[hlen]), nil
}

// Unpack decodes one PDU of any supported type. data must hold exactly one
// PDU.
func Unpack(data []byte) (Pdu, error) {
	t, err := PduTypeOf(data)
	if err != nil {
		return nil, err
	}
	if t == PduTypeFileData {
		return asPdu(UnpackFileDataPdu(data))
	}
	code, err := DirectiveCodeOf(data)
	if err != nil {
		return nil, err
	}
	switch code {
	case DirectiveEOF:
		return asPdu(UnpackEofPdu(data))
	case DirectiveFinished:
		return asPdu(UnpackFinishedPdu(data))
	case DirectiveAck:
		return asPdu(UnpackAckPdu(data))
	case DirectiveMetadata:
		return asPdu(UnpackMetadataPdu(data))
	case DirectiveNak:
		return asPdu(UnpackNakPdu(data))
	case DirectivePrompt:
		return asPdu(UnpackPromptPdu(data))
	case DirectiveKeepAlive:
		return asPdu(UnpackKeepAlivePdu(data))
	default:
		err := protocol.Errorf(ErrInvalidFormat, "unsupported directive code %s", code)
		logReject(code.String(), data, err)
		return nil, err
	}
}

// asPdu keeps a failed typed unpack from surfacing as a non-nil interface.
func asPdu[T Pdu](p T, err error) (Pdu, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
