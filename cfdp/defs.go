package cfdp

import "fmt"

// PduType is bit 4 of the first header byte.
type PduType uint8

const (
	PduTypeFileDirective PduType = 0
	PduTypeFileData      PduType = 1
)

func (t PduType) String() string {
	if t == PduTypeFileData {
		return "file_data"
	}
	return "file_directive"
}

type Direction uint8

const (
	TowardsReceiver Direction = 0
	TowardsSender   Direction = 1
)

func (d Direction) String() string {
	if d == TowardsSender {
		return "towards_sender"
	}
	return "towards_receiver"
}

type TransmissionMode uint8

const (
	Acknowledged   TransmissionMode = 0
	Unacknowledged TransmissionMode = 1
)

func (m TransmissionMode) String() string {
	if m == Unacknowledged {
		return "unacknowledged"
	}
	return "acknowledged"
}

type CrcFlag uint8

const (
	CrcNotPresent CrcFlag = 0
	CrcPresent    CrcFlag = 1
)

// LargeFileFlag selects 32 or 64 bit file size sensitive fields.
type LargeFileFlag uint8

const (
	NormalFile LargeFileFlag = 0
	LargeFile  LargeFileFlag = 1
)

// FssWidth returns the width of file size sensitive fields.
func (f LargeFileFlag) FssWidth() int {
	if f == LargeFile {
		return 8
	}
	return 4
}

type SegmentationControl uint8

const (
	BoundariesNotPreserved SegmentationControl = 0
	BoundariesPreserved    SegmentationControl = 1
)

type DirectiveCode uint8

const (
	DirectiveEOF       DirectiveCode = 0x04
	DirectiveFinished  DirectiveCode = 0x05
	DirectiveAck       DirectiveCode = 0x06
	DirectiveMetadata  DirectiveCode = 0x07
	DirectiveNak       DirectiveCode = 0x08
	DirectivePrompt    DirectiveCode = 0x09
	DirectiveKeepAlive DirectiveCode = 0x0C
)

func (c DirectiveCode) String() string {
	switch c {
	case DirectiveEOF:
		return "eof"
	case DirectiveFinished:
		return "finished"
	case DirectiveAck:
		return "ack"
	case DirectiveMetadata:
		return "metadata"
	case DirectiveNak:
		return "nak"
	case DirectivePrompt:
		return "prompt"
	case DirectiveKeepAlive:
		return "keep_alive"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(c))
	}
}

type ConditionCode uint8

const (
	NoError                 ConditionCode = 0b0000
	PositiveAckLimitReached ConditionCode = 0b0001
	KeepAliveLimitReached   ConditionCode = 0b0010
	InvalidTransmissionMode ConditionCode = 0b0011
	FilestoreRejection      ConditionCode = 0b0100
	FileChecksumFailure     ConditionCode = 0b0101
	FileSizeError           ConditionCode = 0b0110
	NakLimitReached         ConditionCode = 0b0111
	InactivityDetected      ConditionCode = 0b1000
	CheckLimitReached       ConditionCode = 0b1010
	UnsupportedChecksumType ConditionCode = 0b1011
	SuspendRequestReceived  ConditionCode = 0b1110
	CancelRequestReceived   ConditionCode = 0b1111
)

func (c ConditionCode) Valid() bool {
	return c <= 0x0F
}

func (c ConditionCode) String() string {
	switch c {
	case NoError:
		return "no_error"
	case PositiveAckLimitReached:
		return "positive_ack_limit_reached"
	case KeepAliveLimitReached:
		return "keep_alive_limit_reached"
	case InvalidTransmissionMode:
		return "invalid_transmission_mode"
	case FilestoreRejection:
		return "filestore_rejection"
	case FileChecksumFailure:
		return "file_checksum_failure"
	case FileSizeError:
		return "file_size_error"
	case NakLimitReached:
		return "nak_limit_reached"
	case InactivityDetected:
		return "inactivity_detected"
	case CheckLimitReached:
		return "check_limit_reached"
	case UnsupportedChecksumType:
		return "unsupported_checksum_type"
	case SuspendRequestReceived:
		return "suspend_request_received"
	case CancelRequestReceived:
		return "cancel_request_received"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(c))
	}
}

// TransactionStatus is carried by ACK PDUs.
type TransactionStatus uint8

const (
	TransactionUndefined    TransactionStatus = 0b00
	TransactionActive       TransactionStatus = 0b01
	TransactionTerminated   TransactionStatus = 0b10
	TransactionUnrecognized TransactionStatus = 0b11
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionUndefined:
		return "undefined"
	case TransactionActive:
		return "active"
	case TransactionTerminated:
		return "terminated"
	case TransactionUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(s))
	}
}

type DeliveryCode uint8

const (
	DataComplete   DeliveryCode = 0
	DataIncomplete DeliveryCode = 1
)

type FileStatus uint8

const (
	DiscardedDeliberately       FileStatus = 0b00
	DiscardedFilestoreRejection FileStatus = 0b01
	FileRetained                FileStatus = 0b10
	FileStatusUnreported        FileStatus = 0b11
)

type ChecksumType uint8

const (
	ChecksumModular         ChecksumType = 0
	ChecksumCRC32Proximity1 ChecksumType = 1
	ChecksumCRC32C          ChecksumType = 2
	ChecksumCRC32           ChecksumType = 3
	ChecksumNull            ChecksumType = 15
)

type FaultHandlerCode uint8

const (
	NoticeOfCancellation FaultHandlerCode = 0b0001
	NoticeOfSuspension   FaultHandlerCode = 0b0010
	IgnoreError          FaultHandlerCode = 0b0011
	AbandonTransaction   FaultHandlerCode = 0b0100
)

func (h FaultHandlerCode) Known() bool {
	return h >= NoticeOfCancellation && h <= AbandonTransaction
}

// RecordContinuationState is the top two bits of the File Data segment
// metadata byte.
type RecordContinuationState uint8

const (
	NoStartNoEnd    RecordContinuationState = 0b00
	StartWithoutEnd RecordContinuationState = 0b01
	EndWithoutStart RecordContinuationState = 0b10
	StartAndEnd     RecordContinuationState = 0b11
)
