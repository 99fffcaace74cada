package cfdp

import (
	"encoding/binary"

	"github.com/danmuck/spacepackets/internal/protocol"
)

const (
	// FixedHeaderLen is the part of the header before the variable width IDs.
	FixedHeaderLen = 4
	Version        = 0b001
	// MaxDataFieldLen is the largest value the 16 bit length field holds.
	MaxDataFieldLen = 0xFFFF
)

// Header is the common PDU header.
type Header struct {
	Version         uint8
	PduType         PduType
	SegmentMetadata bool
	DataFieldLen    int
	conf            PduConfig
}

func NewHeader(conf PduConfig, pduType PduType, segmentMetadata bool, dataFieldLen int) (Header, error) {
	if err := conf.Validate(); err != nil {
		return Header{}, err
	}
	if dataFieldLen < 0 || dataFieldLen > MaxDataFieldLen {
		return Header{}, protocol.Errorf(ErrInvalidValue, "data field length %d exceeds %d", dataFieldLen, MaxDataFieldLen)
	}
	return Header{
		Version:         Version,
		PduType:         pduType,
		SegmentMetadata: segmentMetadata,
		DataFieldLen:    dataFieldLen,
		conf:            conf.Clone(),
	}, nil
}

// HeaderLen returns the header length implied by conf.
func HeaderLen(conf PduConfig) int {
	return FixedHeaderLen + 2*len(conf.SourceEntityID) + len(conf.TransactionSeqNum)
}

func (h Header) Len() int {
	return HeaderLen(h.conf)
}

// PacketLen is the full PDU length the header announces.
func (h Header) PacketLen() int {
	return h.Len() + h.DataFieldLen
}

// Config returns a copy of the configuration carried in the header.
func (h Header) Config() PduConfig {
	return h.conf.Clone()
}

func (h Header) AppendTo(dst []byte) ([]byte, error) {
	c := h.conf
	if err := c.Validate(); err != nil {
		return dst, err
	}
	b0 := Version<<5 | byte(h.PduType&1)<<4 | byte(c.Direction)<<3 |
		byte(c.TransmissionMode)<<2 | byte(c.CrcFlag)<<1 | byte(c.LargeFile)
	dst = append(dst, b0)
	dst = binary.BigEndian.AppendUint16(dst, uint16(h.DataFieldLen))
	b3 := byte(c.SegmentationControl)<<7 | byte(len(c.SourceEntityID)-1)<<4 |
		byte(len(c.TransactionSeqNum)-1)
	if h.SegmentMetadata {
		b3 |= 1 << 3
	}
	dst = append(dst, b3)
	dst = append(dst, c.SourceEntityID...)
	dst = append(dst, c.TransactionSeqNum...)
	return append(dst, c.DestEntityID...), nil
}

// UnpackHeader parses the header at the start of data and returns it with
// the number of bytes it occupies.
func UnpackHeader(data []byte) (Header, int, error) {
	if len(data) < FixedHeaderLen {
		return Header{}, 0, protocol.TooShort(FixedHeaderLen, len(data))
	}
	if v := data[0] >> 5; v != Version {
		return Header{}, 0, protocol.Errorf(ErrInvalidFormat, "unsupported pdu version %d", v)
	}
	entityLen := int(data[3]>>4&0x07) + 1
	seqLen := int(data[3]&0x07) + 1
	if !protocol.ValidWidth(entityLen) || !protocol.ValidWidth(seqLen) {
		return Header{}, 0, protocol.Errorf(ErrInvalidValue, "header length codes entity=%d seq=%d not in {1,2,4,8}", entityLen, seqLen)
	}
	n := FixedHeaderLen + 2*entityLen + seqLen
	if len(data) < n {
		return Header{}, 0, protocol.TooShort(n, len(data))
	}
	conf := PduConfig{
		Direction:           Direction(data[0] >> 3 & 1),
		TransmissionMode:    TransmissionMode(data[0] >> 2 & 1),
		CrcFlag:             CrcFlag(data[0] >> 1 & 1),
		LargeFile:           LargeFileFlag(data[0] & 1),
		SegmentationControl: SegmentationControl(data[3] >> 7),
	}
	idx := FixedHeaderLen
	conf.SourceEntityID = append([]byte(nil), data[idx:idx+entityLen]...)
	idx += entityLen
	conf.TransactionSeqNum = append([]byte(nil), data[idx:idx+seqLen]...)
	idx += seqLen
	conf.DestEntityID = append([]byte(nil), data[idx:idx+entityLen]...)
	return Header{
		Version:         Version,
		PduType:         PduType(data[0] >> 4 & 1),
		SegmentMetadata: data[3]>>3&1 == 1,
		DataFieldLen:    int(binary.BigEndian.Uint16(data[1:3])),
		conf:            conf,
	}, n, nil
}

// PeekPacketLen returns the total PDU length announced by the header at the
// start of data. Only the fixed header bytes are needed.
func PeekPacketLen(data []byte) (int, error) {
	if len(data) < FixedHeaderLen {
		return 0, protocol.TooShort(FixedHeaderLen, len(data))
	}
	entityLen := int(data[3]>>4&0x07) + 1
	seqLen := int(data[3]&0x07) + 1
	dataLen := int(binary.BigEndian.Uint16(data[1:3]))
	return FixedHeaderLen + 2*entityLen + seqLen + dataLen, nil
}
