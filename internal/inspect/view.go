// Package inspect renders CFDP PDUs as JSON friendly views and builds PDUs
// from JSON encode requests. It backs both cfdpctl and the HTTP API.
package inspect

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/spacepackets/cfdp"
	"github.com/danmuck/spacepackets/cfdp/tlv"
	"github.com/danmuck/spacepackets/internal/observability"
	"github.com/danmuck/spacepackets/internal/protocol/frame"
)

type HeaderView struct {
	PduType           string `json:"pdu_type"`
	Direction         string `json:"direction"`
	TransmissionMode  string `json:"transmission_mode"`
	Crc               bool   `json:"crc"`
	LargeFile         bool   `json:"large_file"`
	SourceEntityID    uint64 `json:"source_entity_id"`
	DestEntityID      uint64 `json:"dest_entity_id"`
	TransactionSeqNum uint64 `json:"transaction_seq_num"`
	EntityIDWidth     int    `json:"entity_id_width"`
	SeqNumWidth       int    `json:"seq_num_width"`
}

// PduView is the decoded summary of one PDU.
type PduView struct {
	Kind   string         `json:"kind"`
	Length int            `json:"length"`
	Header HeaderView     `json:"header"`
	Fields map[string]any `json:"fields"`
}

// Kind names the PDU type of p.
func Kind(p cfdp.Pdu) string {
	if d, ok := p.(cfdp.DirectivePdu); ok {
		return d.DirectiveCode().String()
	}
	return cfdp.PduTypeFileData.String()
}

func Describe(p cfdp.Pdu) PduView {
	c := p.Config()
	v := PduView{
		Kind:   Kind(p),
		Length: p.PacketLen(),
		Header: HeaderView{
			PduType:           p.PduType().String(),
			Direction:         c.Direction.String(),
			TransmissionMode:  c.TransmissionMode.String(),
			Crc:               c.CrcFlag == cfdp.CrcPresent,
			LargeFile:         c.LargeFile == cfdp.LargeFile,
			SourceEntityID:    c.SourceID(),
			DestEntityID:      c.DestID(),
			TransactionSeqNum: c.SeqNum(),
			EntityIDWidth:     len(c.SourceEntityID),
			SeqNumWidth:       len(c.TransactionSeqNum),
		},
		Fields: map[string]any{},
	}
	f := v.Fields
	switch pdu := p.(type) {
	case *cfdp.EofPdu:
		f["condition_code"] = pdu.ConditionCode.String()
		f["file_checksum"] = hex.EncodeToString(pdu.FileChecksum[:])
		f["file_size"] = pdu.FileSize
		putFaultLocation(f, pdu.FaultLocation)
	case *cfdp.AckPdu:
		f["acked_directive"] = pdu.AckedDirective().String()
		f["condition_code"] = pdu.ConditionCode.String()
		f["transaction_status"] = pdu.TransactionStatus.String()
	case *cfdp.NakPdu:
		f["start_of_scope"] = pdu.StartOfScope
		f["end_of_scope"] = pdu.EndOfScope
		segs := make([][2]uint64, 0, len(pdu.SegmentRequests))
		for _, s := range pdu.SegmentRequests {
			segs = append(segs, [2]uint64{s.Start, s.End})
		}
		f["segment_requests"] = segs
	case *cfdp.FinishedPdu:
		f["condition_code"] = pdu.ConditionCode.String()
		f["delivery_complete"] = pdu.DeliveryCode == cfdp.DataComplete
		f["file_status"] = uint8(pdu.FileStatus)
		responses := make([]map[string]any, 0, len(pdu.FileStoreResponses))
		for _, r := range pdu.FileStoreResponses {
			responses = append(responses, map[string]any{
				"action":      r.Action.String(),
				"status":      uint8(r.Status),
				"first_name":  r.FirstName,
				"second_name": r.SecondName,
				"message":     string(r.Message),
			})
		}
		f["filestore_responses"] = responses
		putFaultLocation(f, pdu.FaultLocation)
	case *cfdp.FileDataPdu:
		f["offset"] = pdu.Offset
		f["data_len"] = len(pdu.Data)
		f["data_hex"] = hex.EncodeToString(pdu.Data)
		if sm := pdu.SegmentMetadata; sm != nil {
			f["record_continuation_state"] = uint8(sm.RecordContinuationState)
			f["segment_metadata_hex"] = hex.EncodeToString(sm.Metadata)
		}
	case *cfdp.MetadataPdu:
		f["closure_requested"] = pdu.ClosureRequested
		f["checksum_type"] = uint8(pdu.ChecksumType)
		f["file_size"] = pdu.FileSize
		f["source_file"] = pdu.SourceFileName
		f["dest_file"] = pdu.DestFileName
		opts := make([]string, 0, len(pdu.Options))
		for _, o := range pdu.Options {
			if m, ok := o.(tlv.ReservedMessage); ok {
				opts = append(opts, m.MsgType.String())
				continue
			}
			opts = append(opts, o.TlvType().String())
		}
		f["options"] = opts
	case *cfdp.PromptPdu:
		f["response_required"] = map[cfdp.ResponseRequired]string{
			cfdp.ResponseNak:       "nak",
			cfdp.ResponseKeepAlive: "keep_alive",
		}[pdu.ResponseRequired]
	case *cfdp.KeepAlivePdu:
		f["progress"] = pdu.Progress
	}
	return v
}

func putFaultLocation(f map[string]any, fl *tlv.EntityID) {
	if fl != nil {
		f["fault_location"] = fl.Uint()
	}
}

// Decode unpacks raw and records the outcome in the codec metrics.
func Decode(raw []byte) (PduView, error) {
	p, err := cfdp.Unpack(raw)
	if err != nil {
		observability.RecordDecode(peekKind(raw), len(raw), err)
		return PduView{}, err
	}
	v := Describe(p)
	observability.RecordDecode(v.Kind, len(raw), nil)
	return v, nil
}

// DecodeHex decodes a hex string; whitespace and a 0x prefix are ignored.
func DecodeHex(s string) (PduView, error) {
	raw, err := ParseHex(s)
	if err != nil {
		return PduView{}, err
	}
	return Decode(raw)
}

func ParseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHex, err)
	}
	return raw, nil
}

func peekKind(raw []byte) string {
	t, err := cfdp.PduTypeOf(raw)
	if err != nil {
		return "unknown"
	}
	if t == cfdp.PduTypeFileData {
		return t.String()
	}
	code, err := cfdp.DirectiveCodeOf(raw)
	if err != nil {
		return "unknown"
	}
	return code.String()
}

var ErrBadHex = errors.New("inspect: invalid hex input")

// ErrorKind maps codec errors onto stable names for API responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, cfdp.ErrTooShort):
		return "too_short"
	case errors.Is(err, cfdp.ErrInvalidCrc):
		return "invalid_crc"
	case errors.Is(err, cfdp.ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, cfdp.ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, cfdp.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, frame.ErrShortHeader), errors.Is(err, frame.ErrShortPdu):
		return "short_stream"
	case errors.Is(err, frame.ErrPduTooLarge):
		return "too_large"
	case errors.Is(err, ErrBadHex):
		return "bad_hex"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	default:
		return "internal"
	}
}
