package cfdp

import "github.com/danmuck/spacepackets/cfdp/tlv"

func faultLocationLen(fl *tlv.EntityID) int {
	if fl == nil {
		return 0
	}
	return fl.PacketLen()
}

func appendFaultLocation(dst []byte, fl *tlv.EntityID) ([]byte, error) {
	if fl == nil {
		return dst, nil
	}
	return fl.AppendTo(dst)
}

func copyFaultLocation(fl *tlv.EntityID) *tlv.EntityID {
	if fl == nil {
		return nil
	}
	out := tlv.EntityID{ID: append([]byte(nil), fl.ID...)}
	return &out
}
