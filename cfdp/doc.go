// Package cfdp packs and unpacks CCSDS File Delivery Protocol PDUs
// (CCSDS 727.0-B-5).
//
// Ownership boundary:
// - PDU configuration and the common PDU header
// - directive framing with the optional CRC-16/CCITT trailer
// - EOF, ACK, NAK, Finished, Metadata, Prompt, Keep Alive and File Data PDUs
// - dispatch of raw buffers to the matching PDU type
//
// The package holds no transaction state. PDUs are plain values; a PDU
// copies the configuration it is built from.
package cfdp
