package cfdp

import "github.com/danmuck/spacepackets/internal/protocol"

var (
	ErrInvalidConfiguration = protocol.ErrInvalidConfiguration
	ErrTooShort             = protocol.ErrTooShort
	ErrInvalidCrc           = protocol.ErrInvalidCrc
	ErrInvalidValue         = protocol.ErrInvalidValue
	ErrInvalidFormat        = protocol.ErrInvalidFormat
)

type (
	TooShortError = protocol.TooShortError
	CrcError      = protocol.CrcError
)
