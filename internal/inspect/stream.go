package inspect

import (
	"encoding/hex"
	"errors"
	"io"

	"github.com/danmuck/spacepackets/internal/observability"
	"github.com/danmuck/spacepackets/internal/protocol/frame"
)

// StreamEntry is one PDU read from a concatenated stream. Either Pdu or
// Error is set.
type StreamEntry struct {
	Index     int      `json:"index"`
	Offset    int      `json:"offset"`
	Hex       string   `json:"hex"`
	Pdu       *PduView `json:"pdu,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// DecodeStream splits r into PDUs and decodes each one. A PDU that fails to
// decode is reported in its entry and reading continues; framing errors stop
// the stream and are returned with the entries read so far.
func DecodeStream(r io.Reader, limits frame.Limits) ([]StreamEntry, error) {
	var (
		entries []StreamEntry
		offset  int
	)
	for {
		raw, err := frame.ReadRaw(r, limits)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			observability.RecordDecode("unknown", 0, err)
			return entries, err
		}
		e := StreamEntry{Index: len(entries), Offset: offset, Hex: hex.EncodeToString(raw)}
		v, err := Decode(raw)
		if err != nil {
			e.Error = err.Error()
			e.ErrorKind = ErrorKind(err)
		} else {
			e.Pdu = &v
		}
		entries = append(entries, e)
		offset += len(raw)
	}
}
