package tlv

import (
	"bytes"
	"fmt"

	"github.com/danmuck/spacepackets/internal/protocol"
)

// ReservedPrefix opens the value of every reserved CFDP message
// (CCSDS 727.0-B-5 6.1).
const ReservedPrefix = "cfdp"

// reservedHeaderLen is the prefix plus the message type byte.
const reservedHeaderLen = len(ReservedPrefix) + 1

// ReservedMessageType is the byte following the "cfdp" prefix.
type ReservedMessageType uint8

const (
	MsgProxyPutRequest           ReservedMessageType = 0x00
	MsgProxyMessageToUser        ReservedMessageType = 0x01
	MsgProxyFilestoreRequest     ReservedMessageType = 0x02
	MsgProxyFaultHandlerOverride ReservedMessageType = 0x03
	MsgProxyTransmissionMode     ReservedMessageType = 0x04
	MsgProxyFlowLabel            ReservedMessageType = 0x05
	MsgProxySegmentationControl  ReservedMessageType = 0x06
	MsgProxyPutResponse          ReservedMessageType = 0x07
	MsgProxyFilestoreResponse    ReservedMessageType = 0x08
	MsgProxyPutCancel            ReservedMessageType = 0x09
	MsgOriginatingTransactionID  ReservedMessageType = 0x0A
	MsgProxyClosureRequest       ReservedMessageType = 0x0B
	MsgDirListingRequest         ReservedMessageType = 0x10
	MsgDirListingResponse        ReservedMessageType = 0x11
	// MsgDirListingOptions is not assigned by the standard. It carries the
	// recursive and all flags of a directory listing.
	MsgDirListingOptions ReservedMessageType = 0x15
)

func (m ReservedMessageType) IsProxyOperation() bool {
	return m <= MsgProxyClosureRequest && m != MsgOriginatingTransactionID
}

func (m ReservedMessageType) IsDirectoryOperation() bool {
	switch m {
	case MsgDirListingRequest, MsgDirListingResponse, MsgDirListingOptions:
		return true
	default:
		return false
	}
}

func (m ReservedMessageType) String() string {
	switch m {
	case MsgProxyPutRequest:
		return "proxy_put_request"
	case MsgProxyMessageToUser:
		return "proxy_message_to_user"
	case MsgProxyFilestoreRequest:
		return "proxy_filestore_request"
	case MsgProxyFaultHandlerOverride:
		return "proxy_fault_handler_override"
	case MsgProxyTransmissionMode:
		return "proxy_transmission_mode"
	case MsgProxyFlowLabel:
		return "proxy_flow_label"
	case MsgProxySegmentationControl:
		return "proxy_segmentation_control"
	case MsgProxyPutResponse:
		return "proxy_put_response"
	case MsgProxyFilestoreResponse:
		return "proxy_filestore_response"
	case MsgProxyPutCancel:
		return "proxy_put_cancel"
	case MsgOriginatingTransactionID:
		return "originating_transaction_id"
	case MsgProxyClosureRequest:
		return "proxy_closure_request"
	case MsgDirListingRequest:
		return "directory_listing_request"
	case MsgDirListingResponse:
		return "directory_listing_response"
	case MsgDirListingOptions:
		return "directory_listing_options"
	default:
		return fmt.Sprintf("reserved(0x%02x)", uint8(m))
	}
}

// ReservedMessage is a message-to-user TLV whose value starts with "cfdp"
// and a message type. Params holds the bytes after the type.
type ReservedMessage struct {
	MsgType ReservedMessageType
	Params  []byte
}

var _ Value = ReservedMessage{}

func NewReservedMessage(msgType ReservedMessageType, params []byte) (ReservedMessage, error) {
	if n := reservedHeaderLen + len(params); n > MaxValueLen {
		return ReservedMessage{}, protocol.Errorf(ErrInvalidValue, "reserved message value length %d exceeds %d", n, MaxValueLen)
	}
	buf := make([]byte, len(params))
	copy(buf, params)
	return ReservedMessage{MsgType: msgType, Params: buf}, nil
}

func (m ReservedMessage) TlvType() Type {
	return TypeMessageToUser
}

func (m ReservedMessage) PacketLen() int {
	return HeaderLen + reservedHeaderLen + len(m.Params)
}

// ToTlv returns the generic message-to-user form.
func (m ReservedMessage) ToTlv() Tlv {
	value := make([]byte, 0, reservedHeaderLen+len(m.Params))
	value = append(value, ReservedPrefix...)
	value = append(value, byte(m.MsgType))
	value = append(value, m.Params...)
	return Tlv{Type: TypeMessageToUser, Value: value}
}

func (m ReservedMessage) Pack() ([]byte, error) {
	return m.ToTlv().Pack()
}

// IsReservedMessage reports whether t is a message to user carrying a
// reserved CFDP message.
func IsReservedMessage(t Tlv) bool {
	return t.Type == TypeMessageToUser &&
		len(t.Value) >= reservedHeaderLen &&
		bytes.Equal(t.Value[:len(ReservedPrefix)], []byte(ReservedPrefix))
}

func ReservedMessageFromTlv(t Tlv) (ReservedMessage, error) {
	if err := expectType(t, TypeMessageToUser); err != nil {
		return ReservedMessage{}, err
	}
	if !IsReservedMessage(t) {
		return ReservedMessage{}, protocol.Errorf(ErrInvalidFormat, "message to user is not a reserved cfdp message")
	}
	return NewReservedMessage(ReservedMessageType(t.Value[len(ReservedPrefix)]), t.Value[reservedHeaderLen:])
}

func (m ReservedMessage) expect(want ReservedMessageType) error {
	if m.MsgType != want {
		return protocol.Errorf(ErrInvalidFormat, "reserved message is %s, want %s", m.MsgType, want)
	}
	return nil
}

// flagByte returns the single parameter byte of one byte messages.
func (m ReservedMessage) flagByte(want ReservedMessageType) (byte, error) {
	if err := m.expect(want); err != nil {
		return 0, err
	}
	if len(m.Params) != 1 {
		return 0, protocol.Errorf(ErrInvalidFormat, "%s carries %d parameter bytes, want 1", m.MsgType, len(m.Params))
	}
	return m.Params[0], nil
}

// reservedLvs reads exactly n LVs filling params.
func reservedLvs(params []byte, n int) ([]Lv, error) {
	out := make([]Lv, 0, n)
	idx := 0
	for i := 0; i < n; i++ {
		lv, err := innerLv(params[idx:], "reserved message parameter")
		if err != nil {
			return nil, err
		}
		out = append(out, lv)
		idx += lv.PacketLen()
	}
	if idx != len(params) {
		return nil, protocol.Errorf(ErrInvalidFormat, "reserved message has %d unconsumed bytes", len(params)-idx)
	}
	return out, nil
}

func appendLvs(dst []byte, values ...[]byte) ([]byte, error) {
	var err error
	for _, v := range values {
		if dst, err = Lv(v).AppendTo(dst); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

// ProxyPutRequestParams asks the receiving entity to send a file to
// DestEntityID on behalf of the requester.
type ProxyPutRequestParams struct {
	DestEntityID   []byte
	SourceFileName string
	DestFileName   string
}

func NewProxyPutRequest(p ProxyPutRequestParams) (ReservedMessage, error) {
	if !protocol.ValidWidth(len(p.DestEntityID)) {
		return ReservedMessage{}, protocol.Errorf(ErrInvalidConfiguration, "entity id length %d not in {1,2,4,8}", len(p.DestEntityID))
	}
	params, err := appendLvs(nil, p.DestEntityID, []byte(p.SourceFileName), []byte(p.DestFileName))
	if err != nil {
		return ReservedMessage{}, err
	}
	return NewReservedMessage(MsgProxyPutRequest, params)
}

func (m ReservedMessage) ProxyPutRequest() (ProxyPutRequestParams, error) {
	if err := m.expect(MsgProxyPutRequest); err != nil {
		return ProxyPutRequestParams{}, err
	}
	lvs, err := reservedLvs(m.Params, 3)
	if err != nil {
		return ProxyPutRequestParams{}, err
	}
	if !protocol.ValidWidth(len(lvs[0])) {
		return ProxyPutRequestParams{}, protocol.Errorf(ErrInvalidValue, "entity id length %d not in {1,2,4,8}", len(lvs[0]))
	}
	return ProxyPutRequestParams{
		DestEntityID:   []byte(lvs[0]),
		SourceFileName: string(lvs[1]),
		DestFileName:   string(lvs[2]),
	}, nil
}

// ProxyPutResponseParams reports the outcome of a proxied put. The codes use
// the Finished PDU encoding.
type ProxyPutResponseParams struct {
	ConditionCode uint8
	DeliveryCode  uint8
	FileStatus    uint8
}

func NewProxyPutResponse(p ProxyPutResponseParams) (ReservedMessage, error) {
	if p.ConditionCode > 0x0F || p.DeliveryCode > 1 || p.FileStatus > 0b11 {
		return ReservedMessage{}, protocol.Errorf(ErrInvalidValue, "proxy put response fields out of range: %+v", p)
	}
	return NewReservedMessage(MsgProxyPutResponse, []byte{p.ConditionCode<<4 | p.DeliveryCode<<2 | p.FileStatus})
}

func (m ReservedMessage) ProxyPutResponse() (ProxyPutResponseParams, error) {
	b, err := m.flagByte(MsgProxyPutResponse)
	if err != nil {
		return ProxyPutResponseParams{}, err
	}
	return ProxyPutResponseParams{
		ConditionCode: b >> 4,
		DeliveryCode:  b >> 2 & 1,
		FileStatus:    b & 0b11,
	}, nil
}

func NewProxyPutCancel() (ReservedMessage, error) {
	return NewReservedMessage(MsgProxyPutCancel, nil)
}

func NewProxyClosureRequest(requested bool) (ReservedMessage, error) {
	return NewReservedMessage(MsgProxyClosureRequest, []byte{boolByte(requested)})
}

func (m ReservedMessage) ProxyClosureRequested() (bool, error) {
	b, err := m.flagByte(MsgProxyClosureRequest)
	return b&1 == 1, err
}

// NewProxyTransmissionMode carries the header transmission mode bit:
// 0 acknowledged, 1 unacknowledged.
func NewProxyTransmissionMode(mode uint8) (ReservedMessage, error) {
	if mode > 1 {
		return ReservedMessage{}, protocol.Errorf(ErrInvalidValue, "transmission mode %d is not a single bit", mode)
	}
	return NewReservedMessage(MsgProxyTransmissionMode, []byte{mode})
}

func (m ReservedMessage) ProxyTransmissionMode() (uint8, error) {
	b, err := m.flagByte(MsgProxyTransmissionMode)
	return b & 1, err
}

// NewOriginatingTransactionID identifies the transaction that caused this
// one. Both fields must be 1, 2, 4 or 8 bytes wide.
func NewOriginatingTransactionID(sourceID, seqNum []byte) (ReservedMessage, error) {
	if !protocol.ValidWidth(len(sourceID)) || !protocol.ValidWidth(len(seqNum)) {
		return ReservedMessage{}, protocol.Errorf(ErrInvalidConfiguration,
			"originating transaction id widths %d/%d not in {1,2,4,8}", len(sourceID), len(seqNum))
	}
	params := make([]byte, 0, 1+len(sourceID)+len(seqNum))
	params = append(params, byte(len(sourceID)-1)<<4|byte(len(seqNum)-1))
	params = append(params, sourceID...)
	params = append(params, seqNum...)
	return NewReservedMessage(MsgOriginatingTransactionID, params)
}

func (m ReservedMessage) OriginatingTransactionID() (sourceID, seqNum []byte, err error) {
	if err := m.expect(MsgOriginatingTransactionID); err != nil {
		return nil, nil, err
	}
	if len(m.Params) < 1 {
		return nil, nil, protocol.Errorf(ErrInvalidValue, "originating transaction id has no width byte")
	}
	srcLen := int(m.Params[0]>>4&0b111) + 1
	seqLen := int(m.Params[0]&0b111) + 1
	if !protocol.ValidWidth(srcLen) || !protocol.ValidWidth(seqLen) {
		return nil, nil, protocol.Errorf(ErrInvalidValue, "originating transaction id widths %d/%d not in {1,2,4,8}", srcLen, seqLen)
	}
	if need := 1 + srcLen + seqLen; len(m.Params) < need {
		return nil, nil, protocol.Errorf(ErrInvalidValue, "originating transaction id needs %d bytes, has %d", need, len(m.Params))
	} else if len(m.Params) > need {
		return nil, nil, protocol.Errorf(ErrInvalidFormat, "originating transaction id has %d unconsumed bytes", len(m.Params)-need)
	}
	sourceID = append([]byte(nil), m.Params[1:1+srcLen]...)
	seqNum = append([]byte(nil), m.Params[1+srcLen:]...)
	return sourceID, seqNum, nil
}

// DirectoryParams names the directory to list and the file the listing is
// written to.
type DirectoryParams struct {
	DirPath     string
	DirFileName string
}

type DirListingOptions struct {
	Recursive bool
	All       bool
}

func NewDirectoryListingRequest(p DirectoryParams) (ReservedMessage, error) {
	params, err := appendLvs(nil, []byte(p.DirPath), []byte(p.DirFileName))
	if err != nil {
		return ReservedMessage{}, err
	}
	return NewReservedMessage(MsgDirListingRequest, params)
}

func (m ReservedMessage) DirectoryListingRequest() (DirectoryParams, error) {
	if err := m.expect(MsgDirListingRequest); err != nil {
		return DirectoryParams{}, err
	}
	lvs, err := reservedLvs(m.Params, 2)
	if err != nil {
		return DirectoryParams{}, err
	}
	return DirectoryParams{DirPath: string(lvs[0]), DirFileName: string(lvs[1])}, nil
}

func NewDirectoryListingResponse(success bool, p DirectoryParams) (ReservedMessage, error) {
	params, err := appendLvs([]byte{boolByte(success) << 7}, []byte(p.DirPath), []byte(p.DirFileName))
	if err != nil {
		return ReservedMessage{}, err
	}
	return NewReservedMessage(MsgDirListingResponse, params)
}

func (m ReservedMessage) DirectoryListingResponse() (bool, DirectoryParams, error) {
	if err := m.expect(MsgDirListingResponse); err != nil {
		return false, DirectoryParams{}, err
	}
	if len(m.Params) < 1 {
		return false, DirectoryParams{}, protocol.Errorf(ErrInvalidValue, "directory listing response has no status byte")
	}
	lvs, err := reservedLvs(m.Params[1:], 2)
	if err != nil {
		return false, DirectoryParams{}, err
	}
	return m.Params[0]>>7 == 1, DirectoryParams{DirPath: string(lvs[0]), DirFileName: string(lvs[1])}, nil
}

func NewDirectoryListingOptions(o DirListingOptions) (ReservedMessage, error) {
	return NewReservedMessage(MsgDirListingOptions, []byte{boolByte(o.Recursive)<<1 | boolByte(o.All)})
}

func (m ReservedMessage) DirectoryListingOptions() (DirListingOptions, error) {
	b, err := m.flagByte(MsgDirListingOptions)
	if err != nil {
		return DirListingOptions{}, err
	}
	return DirListingOptions{Recursive: b>>1&1 == 1, All: b&1 == 1}, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
