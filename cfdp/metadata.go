package cfdp

import (
	"github.com/danmuck/spacepackets/cfdp/tlv"
	"github.com/danmuck/spacepackets/internal/protocol"
)

// MetadataPdu opens a transaction: file size, file names and options.
type MetadataPdu struct {
	directiveBase
	ClosureRequested bool
	ChecksumType     ChecksumType
	FileSize         uint64
	SourceFileName   string
	DestFileName     string
	// Options holds filestore requests, messages to user, fault handler
	// overrides and flow labels in wire order.
	Options []tlv.Value
}

var _ DirectivePdu = (*MetadataPdu)(nil)

func NewMetadataPdu(conf PduConfig, closureRequested bool, checksum ChecksumType, fileSize uint64,
	sourceFile, destFile string, options []tlv.Value) (*MetadataPdu, error) {
	base, err := newDirectiveBase(conf, DirectiveMetadata, TowardsReceiver)
	if err != nil {
		return nil, err
	}
	if len(sourceFile) > tlv.MaxValueLen || len(destFile) > tlv.MaxValueLen {
		return nil, protocol.Errorf(ErrInvalidValue, "file name longer than %d bytes", tlv.MaxValueLen)
	}
	var opts []tlv.Value
	for _, o := range options {
		opts = append(opts, tlv.Clone(o))
	}
	return &MetadataPdu{
		directiveBase:    base,
		ClosureRequested: closureRequested,
		ChecksumType:     checksum,
		FileSize:         fileSize,
		SourceFileName:   sourceFile,
		DestFileName:     destFile,
		Options:          opts,
	}, nil
}

func (p *MetadataPdu) paramLen() int {
	n := 1 + p.fssWidth() + tlv.Lv(p.SourceFileName).PacketLen() + tlv.Lv(p.DestFileName).PacketLen()
	for _, o := range p.Options {
		n += o.PacketLen()
	}
	return n
}

func (p *MetadataPdu) PacketLen() int {
	return p.packetLen(p.paramLen())
}

func (p *MetadataPdu) Pack() ([]byte, error) {
	if p.ChecksumType > 0x0F {
		return nil, protocol.Errorf(ErrInvalidValue, "checksum type %d exceeds 4 bits", p.ChecksumType)
	}
	buf, err := p.begin(p.paramLen())
	if err != nil {
		return nil, err
	}
	var first byte
	if p.ClosureRequested {
		first |= 1 << 6
	}
	buf = append(buf, first|byte(p.ChecksumType))
	if buf, err = protocol.AppendUint(buf, p.fssWidth(), p.FileSize); err != nil {
		return nil, err
	}
	if buf, err = tlv.Lv(p.SourceFileName).AppendTo(buf); err != nil {
		return nil, err
	}
	if buf, err = tlv.Lv(p.DestFileName).AppendTo(buf); err != nil {
		return nil, err
	}
	for _, o := range p.Options {
		raw, err := o.Pack()
		if err != nil {
			return nil, err
		}
		buf = append(buf, raw...)
	}
	return p.finish(buf), nil
}

func UnpackMetadataPdu(data []byte) (*MetadataPdu, error) {
	p, err := unpackMetadata(data)
	if err != nil {
		logReject("metadata", data, err)
		return nil, err
	}
	return p, nil
}

func unpackMetadata(data []byte) (*MetadataPdu, error) {
	base, params, err := parseDirective(data, DirectiveMetadata)
	if err != nil {
		return nil, err
	}
	w := base.fssWidth()
	// two empty file name LVs follow the file size
	if need := 1 + w + 2; len(params) < need {
		return nil, base.paramsTooShort(need, len(params))
	}
	p := &MetadataPdu{
		directiveBase:    base,
		ClosureRequested: params[0]>>6&1 == 1,
		ChecksumType:     ChecksumType(params[0] & 0x0F),
	}
	p.FileSize, _ = protocol.Uint(params[1:], w)
	idx := 1 + w
	src, err := tlv.UnpackLv(params[idx:])
	if err != nil {
		return nil, err
	}
	idx += src.PacketLen()
	dst, err := tlv.UnpackLv(params[idx:])
	if err != nil {
		return nil, err
	}
	idx += dst.PacketLen()
	p.SourceFileName = string(src)
	p.DestFileName = string(dst)
	if idx < len(params) {
		if p.Options, err = decodeOptions(params[idx:]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func decodeOptions(data []byte) ([]tlv.Value, error) {
	vals, err := tlv.DecodeAll(data)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		switch v.TlvType() {
		case tlv.TypeFaultHandler:
			raw, _ := v.(tlv.Tlv)
			fh, err := FaultHandlerOverrideFromTlv(raw)
			if err != nil {
				return nil, err
			}
			vals[i] = fh
		case tlv.TypeFilestoreResponse, tlv.TypeEntityID:
			return nil, protocol.Errorf(ErrInvalidFormat, "%s tlv is not a metadata option", v.TlvType())
		}
	}
	return vals, nil
}
