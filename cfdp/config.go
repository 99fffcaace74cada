package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

// PduConfig is the per-transaction parameter bundle shared by every PDU
// header. PDUs keep their own copy.
type PduConfig struct {
	SourceEntityID      []byte
	DestEntityID        []byte
	TransactionSeqNum   []byte
	TransmissionMode    TransmissionMode
	CrcFlag             CrcFlag
	LargeFile           LargeFileFlag
	Direction           Direction
	SegmentationControl SegmentationControl
}

// DefaultPduConfig returns a configuration with one byte entity IDs and
// sequence number, acknowledged mode, no CRC and normal file sizes.
func DefaultPduConfig() PduConfig {
	return PduConfig{
		SourceEntityID:    []byte{0},
		DestEntityID:      []byte{0},
		TransactionSeqNum: []byte{0},
	}
}

// EntityIDFromUint encodes v as a width byte big-endian entity ID or
// sequence number.
func EntityIDFromUint(v uint64, width int) ([]byte, error) {
	return protocol.EncodeUint(v, width)
}

func (c PduConfig) Validate() error {
	if !protocol.ValidWidth(len(c.SourceEntityID)) {
		return protocol.Errorf(ErrInvalidConfiguration, "source entity id length %d not in {1,2,4,8}", len(c.SourceEntityID))
	}
	if !protocol.ValidWidth(len(c.DestEntityID)) {
		return protocol.Errorf(ErrInvalidConfiguration, "dest entity id length %d not in {1,2,4,8}", len(c.DestEntityID))
	}
	if len(c.SourceEntityID) != len(c.DestEntityID) {
		return protocol.Errorf(ErrInvalidConfiguration, "source and dest entity id lengths differ: %d != %d", len(c.SourceEntityID), len(c.DestEntityID))
	}
	if !protocol.ValidWidth(len(c.TransactionSeqNum)) {
		return protocol.Errorf(ErrInvalidConfiguration, "transaction sequence number length %d not in {1,2,4,8}", len(c.TransactionSeqNum))
	}
	if c.TransmissionMode > Unacknowledged || c.CrcFlag > CrcPresent || c.LargeFile > LargeFile ||
		c.Direction > TowardsSender || c.SegmentationControl > BoundariesPreserved {
		return protocol.Errorf(ErrInvalidConfiguration, "header flag out of range")
	}
	return nil
}

// Clone deep-copies the ID byte slices.
func (c PduConfig) Clone() PduConfig {
	out := c
	out.SourceEntityID = append([]byte(nil), c.SourceEntityID...)
	out.DestEntityID = append([]byte(nil), c.DestEntityID...)
	out.TransactionSeqNum = append([]byte(nil), c.TransactionSeqNum...)
	return out
}

// SourceID returns the source entity ID as an unsigned integer.
func (c PduConfig) SourceID() uint64 {
	v, _ := protocol.Uint(c.SourceEntityID, len(c.SourceEntityID))
	return v
}

func (c PduConfig) DestID() uint64 {
	v, _ := protocol.Uint(c.DestEntityID, len(c.DestEntityID))
	return v
}

func (c PduConfig) SeqNum() uint64 {
	v, _ := protocol.Uint(c.TransactionSeqNum, len(c.TransactionSeqNum))
	return v
}

func (c PduConfig) hasCrc() bool {
	return c.CrcFlag == CrcPresent
}

func (c PduConfig) crcLen() int {
	if c.hasCrc() {
		return protocol.CrcLen
	}
	return 0
}
