package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("cfdp: invalid configuration")
	ErrTooShort             = errors.New("cfdp: too short")
	ErrInvalidCrc           = errors.New("cfdp: invalid crc")
	ErrInvalidValue         = errors.New("cfdp: invalid value")
	ErrInvalidFormat        = errors.New("cfdp: invalid format")
)

// TooShortError reports how many bytes a structure needed and how many were available.
type TooShortError struct {
	Expected int
	Actual   int
}

func (e *TooShortError) Error() string {
	return fmt.Sprintf("cfdp: too short: expected %d bytes, got %d", e.Expected, e.Actual)
}

func (e *TooShortError) Is(target error) bool {
	return target == ErrTooShort
}

// CrcError carries the checksum found in the trailer and the one computed over the PDU.
type CrcError struct {
	Expected uint16
	Actual   uint16
}

func (e *CrcError) Error() string {
	return fmt.Sprintf("cfdp: invalid crc: computed 0x%04x, trailer 0x%04x", e.Expected, e.Actual)
}

func (e *CrcError) Is(target error) bool {
	return target == ErrInvalidCrc
}

func TooShort(expected, actual int) error {
	return &TooShortError{Expected: expected, Actual: actual}
}

// Errorf wraps kind with a formatted detail message.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
