package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

// DirectiveCodeLen is the one byte directive code following the header.
const DirectiveCodeLen = 1

// directiveBase is the framing shared by every file directive PDU.
type directiveBase struct {
	conf PduConfig
	code DirectiveCode
}

func newDirectiveBase(conf PduConfig, code DirectiveCode, dir Direction) (directiveBase, error) {
	if err := conf.Validate(); err != nil {
		return directiveBase{}, err
	}
	c := conf.Clone()
	c.Direction = dir
	return directiveBase{conf: c, code: code}, nil
}

func (d directiveBase) PduType() PduType {
	return PduTypeFileDirective
}

func (d directiveBase) DirectiveCode() DirectiveCode {
	return d.code
}

// Config returns a copy of the PDU configuration.
func (d directiveBase) Config() PduConfig {
	return d.conf.Clone()
}

// SetLargeFile switches the width of file size sensitive fields. It is the
// only way to change the copied configuration after construction.
func (d *directiveBase) SetLargeFile(flag LargeFileFlag) {
	d.conf.LargeFile = flag
}

func (d directiveBase) fssWidth() int {
	return d.conf.LargeFile.FssWidth()
}

func (d directiveBase) dataFieldLen(paramLen int) int {
	return DirectiveCodeLen + paramLen + d.conf.crcLen()
}

func (d directiveBase) packetLen(paramLen int) int {
	return HeaderLen(d.conf) + d.dataFieldLen(paramLen)
}

// begin emits the header and directive code. The caller appends paramLen
// parameter bytes and hands the buffer to finish.
func (d directiveBase) begin(paramLen int) ([]byte, error) {
	h, err := NewHeader(d.conf, PduTypeFileDirective, false, d.dataFieldLen(paramLen))
	if err != nil {
		return nil, err
	}
	buf, err := h.AppendTo(make([]byte, 0, h.PacketLen()))
	if err != nil {
		return nil, err
	}
	return append(buf, byte(d.code)), nil
}

func (d directiveBase) finish(buf []byte) []byte {
	if d.conf.hasCrc() {
		return protocol.AppendCRC16(buf)
	}
	return buf
}

// checkFrame reconciles the buffer with the length announced by its header
// and verifies the CRC trailer when the header says one is present.
// Length is checked first so truncation reads as ErrTooShort; a corrupted
// length field in header bytes 1-3 therefore surfaces as a length error
// rather than ErrInvalidCrc.
func checkFrame(data []byte) (int, error) {
	total, err := PeekPacketLen(data)
	if err != nil {
		return 0, err
	}
	if len(data) < total {
		return 0, protocol.TooShort(total, len(data))
	}
	if len(data) > total {
		return 0, protocol.Errorf(ErrInvalidFormat, "%d bytes after the announced pdu length %d", len(data)-total, total)
	}
	if data[0]>>1&1 == byte(CrcPresent) {
		if err := protocol.VerifyCRC16(data); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// parseDirective validates the framing of a directive PDU with the given
// code and returns its header and parameter bytes, CRC stripped.
func parseDirective(data []byte, code DirectiveCode) (directiveBase, []byte, error) {
	total, err := checkFrame(data)
	if err != nil {
		return directiveBase{}, nil, err
	}
	h, hlen, err := UnpackHeader(data)
	if err != nil {
		return directiveBase{}, nil, err
	}
	if len(data) < hlen+DirectiveCodeLen {
		return directiveBase{}, nil, protocol.TooShort(hlen+DirectiveCodeLen, len(data))
	}
	if h.PduType != PduTypeFileDirective {
		return directiveBase{}, nil, protocol.Errorf(ErrInvalidFormat, "pdu type is %s, want file_directive", h.PduType)
	}
	if got := DirectiveCode(data[hlen]); got != code {
		return directiveBase{}, nil, protocol.Errorf(ErrInvalidFormat, "directive code %s, want %s", got, code)
	}
	end := total - h.conf.crcLen()
	if end < hlen+DirectiveCodeLen {
		return directiveBase{}, nil, protocol.Errorf(ErrInvalidFormat, "data field length %d too small for directive", h.DataFieldLen)
	}
	return directiveBase{conf: h.conf, code: code}, data[hlen+DirectiveCodeLen : end], nil
}

// paramsTooShort reports a parameter field shorter than need, in terms of
// the whole PDU.
func (d directiveBase) paramsTooShort(need, have int) error {
	return protocol.TooShort(d.packetLen(need), d.packetLen(have))
}
