package inspect

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/danmuck/spacepackets/cfdp"
	"github.com/danmuck/spacepackets/cfdp/tlv"
	"github.com/danmuck/spacepackets/internal/observability"
)

var ErrUnknownKind = errors.New("inspect: unknown pdu kind")

type Segment struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Header overrides the configured PDU header fields. Nil fields keep the
// configured values; IDs keep the configured widths.
type Header struct {
	SourceEntityID    *uint64 `json:"source_entity_id,omitempty"`
	DestEntityID      *uint64 `json:"dest_entity_id,omitempty"`
	TransactionSeqNum *uint64 `json:"transaction_seq_num,omitempty"`
	Crc               *bool   `json:"crc,omitempty"`
	LargeFile         *bool   `json:"large_file,omitempty"`
}

// EncodeRequest describes a PDU to build. Only the fields relevant to Kind
// are read.
type EncodeRequest struct {
	Kind   string `json:"kind"`
	Header Header `json:"header"`

	ConditionCode uint8   `json:"condition_code"`
	FaultLocation *uint64 `json:"fault_location,omitempty"`

	// eof
	FileChecksum string `json:"file_checksum"`
	FileSize     uint64 `json:"file_size"`

	// ack
	AckedDirective    string `json:"acked_directive"`
	TransactionStatus uint8  `json:"transaction_status"`

	// nak
	StartOfScope uint64    `json:"start_of_scope"`
	EndOfScope   uint64    `json:"end_of_scope"`
	Segments     []Segment `json:"segments"`

	// finished
	DeliveryIncomplete bool  `json:"delivery_incomplete"`
	FileStatus         uint8 `json:"file_status"`

	// file_data
	Offset  uint64 `json:"offset"`
	DataHex string `json:"data_hex"`

	// metadata
	ClosureRequested bool   `json:"closure_requested"`
	ChecksumType     uint8  `json:"checksum_type"`
	SourceFile       string `json:"source_file"`
	DestFile         string `json:"dest_file"`

	// prompt, keep_alive
	ResponseKeepAlive bool   `json:"response_keep_alive"`
	Progress          uint64 `json:"progress"`
}

func (r EncodeRequest) config(base cfdp.PduConfig) (cfdp.PduConfig, error) {
	c := base.Clone()
	h := r.Header
	var err error
	if h.SourceEntityID != nil {
		if c.SourceEntityID, err = cfdp.EntityIDFromUint(*h.SourceEntityID, len(base.SourceEntityID)); err != nil {
			return c, err
		}
	}
	if h.DestEntityID != nil {
		if c.DestEntityID, err = cfdp.EntityIDFromUint(*h.DestEntityID, len(base.DestEntityID)); err != nil {
			return c, err
		}
	}
	if h.TransactionSeqNum != nil {
		if c.TransactionSeqNum, err = cfdp.EntityIDFromUint(*h.TransactionSeqNum, len(base.TransactionSeqNum)); err != nil {
			return c, err
		}
	}
	if h.Crc != nil {
		c.CrcFlag = cfdp.CrcNotPresent
		if *h.Crc {
			c.CrcFlag = cfdp.CrcPresent
		}
	}
	if h.LargeFile != nil {
		c.LargeFile = cfdp.NormalFile
		if *h.LargeFile {
			c.LargeFile = cfdp.LargeFile
		}
	}
	return c, nil
}

func (r EncodeRequest) faultLocation(conf cfdp.PduConfig) (*tlv.EntityID, error) {
	if r.FaultLocation == nil {
		return nil, nil
	}
	id, err := cfdp.EntityIDFromUint(*r.FaultLocation, len(conf.SourceEntityID))
	if err != nil {
		return nil, err
	}
	e, err := tlv.NewEntityID(id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Build constructs the PDU described by r on top of base.
func Build(r EncodeRequest, base cfdp.PduConfig) (cfdp.Pdu, error) {
	conf, err := r.config(base)
	if err != nil {
		return nil, err
	}
	cc := cfdp.ConditionCode(r.ConditionCode)
	switch r.Kind {
	case "eof":
		fl, err := r.faultLocation(conf)
		if err != nil {
			return nil, err
		}
		sum := make([]byte, 4)
		if r.FileChecksum != "" {
			if sum, err = ParseHex(r.FileChecksum); err != nil {
				return nil, err
			}
		}
		return asPdu(cfdp.NewEofPdu(conf, cc, sum, r.FileSize, fl))
	case "ack":
		var acked cfdp.DirectiveCode
		switch r.AckedDirective {
		case "eof", "":
			acked = cfdp.DirectiveEOF
		case "finished":
			acked = cfdp.DirectiveFinished
		default:
			return nil, fmt.Errorf("%w: acked directive %q", ErrUnknownKind, r.AckedDirective)
		}
		return asPdu(cfdp.NewAckPdu(conf, acked, cc, cfdp.TransactionStatus(r.TransactionStatus)))
	case "nak":
		segs := make([]cfdp.SegmentRequest, 0, len(r.Segments))
		for _, s := range r.Segments {
			segs = append(segs, cfdp.SegmentRequest{Start: s.Start, End: s.End})
		}
		return asPdu(cfdp.NewNakPdu(conf, r.StartOfScope, r.EndOfScope, segs))
	case "finished":
		fl, err := r.faultLocation(conf)
		if err != nil {
			return nil, err
		}
		delivery := cfdp.DataComplete
		if r.DeliveryIncomplete {
			delivery = cfdp.DataIncomplete
		}
		return asPdu(cfdp.NewFinishedPdu(conf, cc, delivery, cfdp.FileStatus(r.FileStatus), nil, fl))
	case "file_data":
		data, err := ParseHex(r.DataHex)
		if err != nil {
			return nil, err
		}
		return asPdu(cfdp.NewFileDataPdu(conf, r.Offset, data, nil))
	case "metadata":
		return asPdu(cfdp.NewMetadataPdu(conf, r.ClosureRequested, cfdp.ChecksumType(r.ChecksumType),
			r.FileSize, r.SourceFile, r.DestFile, nil))
	case "prompt":
		resp := cfdp.ResponseNak
		if r.ResponseKeepAlive {
			resp = cfdp.ResponseKeepAlive
		}
		return asPdu(cfdp.NewPromptPdu(conf, resp))
	case "keep_alive":
		return asPdu(cfdp.NewKeepAlivePdu(conf, r.Progress))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
}

// Encode builds and packs r, recording the outcome in the codec metrics.
func Encode(r EncodeRequest, base cfdp.PduConfig) ([]byte, cfdp.Pdu, error) {
	p, err := Build(r, base)
	if err != nil {
		kind := r.Kind
		if errors.Is(err, ErrUnknownKind) {
			kind = "unknown"
		}
		observability.RecordEncode(kind, 0, err)
		return nil, nil, err
	}
	raw, err := p.Pack()
	observability.RecordEncode(Kind(p), len(raw), err)
	if err != nil {
		return nil, nil, err
	}
	return raw, p, nil
}

func asPdu[T cfdp.Pdu](p T, err error) (cfdp.Pdu, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

func EncodeHex(r EncodeRequest, base cfdp.PduConfig) (string, error) {
	raw, _, err := Encode(r, base)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
