// Package frame reads and writes whole CFDP PDUs on byte streams. PDU
// boundaries come from the data field length in each PDU header.
package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/spacepackets/cfdp"
)

// MaxPduLen is the largest PDU a header can announce: 8 byte entity IDs and
// sequence number plus a full 16 bit data field.
const MaxPduLen = cfdp.FixedHeaderLen + 2*8 + 8 + cfdp.MaxDataFieldLen

var (
	ErrShortHeader = errors.New("frame: short pdu header")
	ErrShortPdu    = errors.New("frame: stream ended inside pdu")
	ErrPduTooLarge = errors.New("frame: pdu too large")
)

// Limits constrains decode/encode memory use.
type Limits struct {
	MaxPduBytes int
}

func DefaultLimits() Limits {
	return Limits{MaxPduBytes: MaxPduLen}
}

// ReadRaw reads the next PDU from r and returns its bytes. It returns io.EOF
// when r ends cleanly between PDUs.
func ReadRaw(r io.Reader, limits Limits) ([]byte, error) {
	var fixed [cfdp.FixedHeaderLen]byte
	n, err := io.ReadFull(r, fixed[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}

	total, err := cfdp.PeekPacketLen(fixed[:])
	if err != nil {
		return nil, err
	}
	if total > limits.MaxPduBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrPduTooLarge, total, limits.MaxPduBytes)
	}

	buf := make([]byte, total)
	copy(buf, fixed[:])
	if _, err := io.ReadFull(r, buf[cfdp.FixedHeaderLen:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortPdu
		}
		return nil, err
	}
	return buf, nil
}

// ReadPdu reads and decodes the next PDU from r.
func ReadPdu(r io.Reader, limits Limits) (cfdp.Pdu, []byte, error) {
	raw, err := ReadRaw(r, limits)
	if err != nil {
		return nil, nil, err
	}
	p, err := cfdp.Unpack(raw)
	if err != nil {
		return nil, raw, err
	}
	return p, raw, nil
}

// WritePdu packs p and writes it to w.
func WritePdu(w io.Writer, p cfdp.Pdu, limits Limits) error {
	if n := p.PacketLen(); n > limits.MaxPduBytes {
		return fmt.Errorf("%w: %d > %d", ErrPduTooLarge, n, limits.MaxPduBytes)
	}
	raw, err := p.Pack()
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
