// Package protocol owns the wire primitives shared by the CFDP codec.
//
// Ownership boundary:
// - error taxonomy for pack/unpack failures
// - variable-width big-endian integer fields
// - CRC-16/CCITT trailer computation and verification
package protocol
