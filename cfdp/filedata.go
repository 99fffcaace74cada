package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

// MaxSegmentMetadataLen is bounded by the 6 bit length field.
const MaxSegmentMetadataLen = 63

// SegmentMetadata is the optional block between the offset and the file
// data. Its presence is signalled by the header's segment metadata flag.
type SegmentMetadata struct {
	RecordContinuationState RecordContinuationState
	Metadata                []byte
}

// FileDataPdu carries one segment of file data. It has no directive code.
type FileDataPdu struct {
	conf            PduConfig
	Offset          uint64
	Data            []byte
	SegmentMetadata *SegmentMetadata
}

var _ Pdu = (*FileDataPdu)(nil)

func NewFileDataPdu(conf PduConfig, offset uint64, data []byte, segment *SegmentMetadata) (*FileDataPdu, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	c := conf.Clone()
	c.Direction = TowardsReceiver
	p := &FileDataPdu{
		conf:   c,
		Offset: offset,
		Data:   append([]byte(nil), data...),
	}
	if segment != nil {
		if len(segment.Metadata) > MaxSegmentMetadataLen {
			return nil, protocol.Errorf(ErrInvalidValue, "segment metadata length %d exceeds %d", len(segment.Metadata), MaxSegmentMetadataLen)
		}
		p.SegmentMetadata = &SegmentMetadata{
			RecordContinuationState: segment.RecordContinuationState,
			Metadata:                append([]byte(nil), segment.Metadata...),
		}
	}
	return p, nil
}

func (p *FileDataPdu) PduType() PduType {
	return PduTypeFileData
}

func (p *FileDataPdu) Config() PduConfig {
	return p.conf.Clone()
}

func (p *FileDataPdu) SetLargeFile(flag LargeFileFlag) {
	p.conf.LargeFile = flag
}

func (p *FileDataPdu) dataFieldLen() int {
	n := p.conf.LargeFile.FssWidth() + len(p.Data) + p.conf.crcLen()
	if p.SegmentMetadata != nil {
		n += 1 + len(p.SegmentMetadata.Metadata)
	}
	return n
}

func (p *FileDataPdu) PacketLen() int {
	return HeaderLen(p.conf) + p.dataFieldLen()
}

func (p *FileDataPdu) Pack() ([]byte, error) {
	sm := p.SegmentMetadata
	if sm != nil {
		if len(sm.Metadata) > MaxSegmentMetadataLen {
			return nil, protocol.Errorf(ErrInvalidValue, "segment metadata length %d exceeds %d", len(sm.Metadata), MaxSegmentMetadataLen)
		}
		if sm.RecordContinuationState > StartAndEnd {
			return nil, protocol.Errorf(ErrInvalidValue, "record continuation state %d exceeds 2 bits", sm.RecordContinuationState)
		}
	}
	h, err := NewHeader(p.conf, PduTypeFileData, sm != nil, p.dataFieldLen())
	if err != nil {
		return nil, err
	}
	buf, err := h.AppendTo(make([]byte, 0, h.PacketLen()))
	if err != nil {
		return nil, err
	}
	if buf, err = protocol.AppendUint(buf, p.conf.LargeFile.FssWidth(), p.Offset); err != nil {
		return nil, err
	}
	if sm != nil {
		buf = append(buf, byte(sm.RecordContinuationState)<<6|byte(len(sm.Metadata)))
		buf = append(buf, sm.Metadata...)
	}
	buf = append(buf, p.Data...)
	if p.conf.hasCrc() {
		buf = protocol.AppendCRC16(buf)
	}
	return buf, nil
}

func UnpackFileDataPdu(data []byte) (*FileDataPdu, error) {
	p, err := unpackFileData(data)
	if err != nil {
		logReject("file_data", data, err)
		return nil, err
	}
	return p, nil
}

func unpackFileData(data []byte) (*FileDataPdu, error) {
	total, err := checkFrame(data)
	if err != nil {
		return nil, err
	}
	h, hlen, err := UnpackHeader(data)
	if err != nil {
		return nil, err
	}
	if h.PduType != PduTypeFileData {
		return nil, protocol.Errorf(ErrInvalidFormat, "pdu type is %s, want file_data", h.PduType)
	}
	end := total - h.conf.crcLen()
	w := h.conf.LargeFile.FssWidth()
	if end < hlen+w {
		return nil, protocol.TooShort(hlen+w+h.conf.crcLen(), len(data))
	}
	p := &FileDataPdu{conf: h.conf}
	p.Offset, _ = protocol.Uint(data[hlen:], w)
	idx := hlen + w
	if h.SegmentMetadata {
		if idx >= end {
			return nil, protocol.TooShort(idx+1+h.conf.crcLen(), len(data))
		}
		smLen := int(data[idx] & 0x3F)
		sm := &SegmentMetadata{RecordContinuationState: RecordContinuationState(data[idx] >> 6)}
		idx++
		if idx+smLen > end {
			return nil, protocol.TooShort(idx+smLen+h.conf.crcLen(), len(data))
		}
		sm.Metadata = append([]byte(nil), data[idx:idx+smLen]...)
		idx += smLen
		p.SegmentMetadata = sm
	}
	p.Data = append([]byte(nil), data[idx:end]...)
	return p, nil
}
