package protocol

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

const CrcLen = 2

// CCSDS uses the CCITT-FALSE parameters: poly 0x1021, init 0xFFFF, no reflection.
var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// CRC16 computes the CRC-16/CCITT checksum of data.
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// AppendCRC16 appends the big-endian checksum of buf to buf.
func AppendCRC16(buf []byte) []byte {
	return binary.BigEndian.AppendUint16(buf, CRC16(buf))
}

// VerifyCRC16 checks that the final two bytes of buf hold the checksum of
// everything before them.
func VerifyCRC16(buf []byte) error {
	if len(buf) < CrcLen {
		return TooShort(CrcLen, len(buf))
	}
	body := buf[:len(buf)-CrcLen]
	want := CRC16(body)
	got := binary.BigEndian.Uint16(buf[len(buf)-CrcLen:])
	if want != got {
		return &CrcError{Expected: want, Actual: got}
	}
	return nil
}
