package cfdp

import (
	"testing"

	"github.com/danmuck/spacepackets/cfdp/tlv"
)

// twoByteConfig mirrors a mission profile with 16 bit entity IDs and
// sequence numbers.
func twoByteConfig() PduConfig {
	return PduConfig{
		SourceEntityID:    []byte{0x00, 0x00},
		DestEntityID:      []byte{0x00, 0x01},
		TransactionSeqNum: []byte{0x00, 0x01},
	}
}

func withFlags(conf PduConfig, large LargeFileFlag, crc CrcFlag) PduConfig {
	c := conf.Clone()
	c.LargeFile = large
	c.CrcFlag = crc
	return c
}

func mustEntityID(t *testing.T, id ...byte) *tlv.EntityID {
	t.Helper()
	e, err := tlv.NewEntityID(id)
	if err != nil {
		t.Fatalf("entity id: %v", err)
	}
	return &e
}

func mustPack(t *testing.T, p Pdu) []byte {
	t.Helper()
	raw, err := p.Pack()
	if err != nil {
		t.Fatalf("pack %T: %v", p, err)
	}
	if len(raw) != p.PacketLen() {
		t.Fatalf("%T: packed %d bytes, PacketLen=%d", p, len(raw), p.PacketLen())
	}
	return raw
}
