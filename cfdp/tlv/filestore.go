package tlv

import (
	"errors"
	"fmt"

	"github.com/danmuck/spacepackets/internal/protocol"
)

// ActionCode is the filestore action (CCSDS 727.0-B-5 table 5-16).
type ActionCode uint8

const (
	ActionCreateFile      ActionCode = 0b0000
	ActionDeleteFile      ActionCode = 0b0001
	ActionRenameFile      ActionCode = 0b0010
	ActionAppendFile      ActionCode = 0b0011
	ActionReplaceFile     ActionCode = 0b0100
	ActionCreateDirectory ActionCode = 0b0101
	ActionRemoveDirectory ActionCode = 0b0110
	ActionDenyFile        ActionCode = 0b0111
	ActionDenyDirectory   ActionCode = 0b1000
)

// StatusCode is the 4 bit filestore response status. Its meaning depends on
// the action code.
type StatusCode uint8

const (
	StatusSuccess      StatusCode = 0b0000
	StatusNotPerformed StatusCode = 0b1111
)

var validStatus = map[ActionCode][]StatusCode{
	ActionCreateFile:      {0b0000, 0b0001, 0b1111},
	ActionDeleteFile:      {0b0000, 0b0001, 0b0010, 0b1111},
	ActionRenameFile:      {0b0000, 0b0001, 0b0010, 0b0011, 0b1111},
	ActionAppendFile:      {0b0000, 0b0001, 0b0010, 0b0011, 0b1111},
	ActionReplaceFile:     {0b0000, 0b0001, 0b0010, 0b0011, 0b1111},
	ActionCreateDirectory: {0b0000, 0b0001, 0b1111},
	ActionRemoveDirectory: {0b0000, 0b0001, 0b0010, 0b1111},
	ActionDenyFile:        {0b0000, 0b0010, 0b1111},
	ActionDenyDirectory:   {0b0000, 0b0010, 0b1111},
}

func (a ActionCode) Known() bool {
	_, ok := validStatus[a]
	return ok
}

// HasSecondName reports whether the action operates on two files.
func (a ActionCode) HasSecondName() bool {
	switch a {
	case ActionRenameFile, ActionAppendFile, ActionReplaceFile:
		return true
	default:
		return false
	}
}

func (a ActionCode) String() string {
	switch a {
	case ActionCreateFile:
		return "create_file"
	case ActionDeleteFile:
		return "delete_file"
	case ActionRenameFile:
		return "rename_file"
	case ActionAppendFile:
		return "append_file"
	case ActionReplaceFile:
		return "replace_file"
	case ActionCreateDirectory:
		return "create_directory"
	case ActionRemoveDirectory:
		return "remove_directory"
	case ActionDenyFile:
		return "deny_file"
	case ActionDenyDirectory:
		return "deny_directory"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ValidStatus reports whether s is defined for action a.
func ValidStatus(a ActionCode, s StatusCode) bool {
	for _, v := range validStatus[a] {
		if v == s {
			return true
		}
	}
	return false
}

// FileStoreRequest is the filestore request TLV carried in Metadata PDUs.
type FileStoreRequest struct {
	Action     ActionCode
	FirstName  string
	SecondName string
}

var _ Value = FileStoreRequest{}

func NewFileStoreRequest(action ActionCode, first, second string) (FileStoreRequest, error) {
	r := FileStoreRequest{Action: action, FirstName: first, SecondName: second}
	if err := validateNames(action, first, second, 0); err != nil {
		return FileStoreRequest{}, err
	}
	return r, nil
}

func (r FileStoreRequest) TlvType() Type {
	return TypeFilestoreRequest
}

func (r FileStoreRequest) PacketLen() int {
	return HeaderLen + namesLen(r.Action, r.FirstName, r.SecondName)
}

func (r FileStoreRequest) Pack() ([]byte, error) {
	if err := validateNames(r.Action, r.FirstName, r.SecondName, 0); err != nil {
		return nil, err
	}
	value := make([]byte, 0, r.PacketLen()-HeaderLen)
	value = append(value, byte(r.Action)<<4)
	value, err := appendNames(value, r.Action, r.FirstName, r.SecondName)
	if err != nil {
		return nil, err
	}
	return Tlv{Type: TypeFilestoreRequest, Value: value}.Pack()
}

func UnpackFileStoreRequest(data []byte) (FileStoreRequest, error) {
	raw, err := Unpack(data)
	if err != nil {
		return FileStoreRequest{}, err
	}
	return FileStoreRequestFromTlv(raw)
}

func FileStoreRequestFromTlv(t Tlv) (FileStoreRequest, error) {
	if err := expectType(t, TypeFilestoreRequest); err != nil {
		return FileStoreRequest{}, err
	}
	action, spare, idx, first, second, err := parseNames(t.Value)
	if err != nil {
		return FileStoreRequest{}, err
	}
	if spare != 0 {
		return FileStoreRequest{}, protocol.Errorf(ErrInvalidFormat, "filestore request spare bits set: 0x%x", uint8(spare))
	}
	if idx != len(t.Value) {
		return FileStoreRequest{}, protocol.Errorf(ErrInvalidFormat, "filestore request has %d unconsumed bytes", len(t.Value)-idx)
	}
	return FileStoreRequest{Action: action, FirstName: first, SecondName: second}, nil
}

// FileStoreResponse is the filestore response TLV carried in Finished PDUs.
type FileStoreResponse struct {
	Action     ActionCode
	Status     StatusCode
	FirstName  string
	SecondName string
	Message    []byte
}

var _ Value = FileStoreResponse{}

func NewFileStoreResponse(action ActionCode, status StatusCode, first, second string, msg []byte) (FileStoreResponse, error) {
	r := FileStoreResponse{
		Action:     action,
		Status:     status,
		FirstName:  first,
		SecondName: second,
		Message:    append([]byte(nil), msg...),
	}
	if err := r.validate(); err != nil {
		return FileStoreResponse{}, err
	}
	return r, nil
}

func (r FileStoreResponse) validate() error {
	if !ValidStatus(r.Action, r.Status) {
		return protocol.Errorf(ErrInvalidValue, "status %d invalid for action %s", r.Status, r.Action)
	}
	return validateNames(r.Action, r.FirstName, r.SecondName, 1+len(r.Message))
}

func (r FileStoreResponse) TlvType() Type {
	return TypeFilestoreResponse
}

func (r FileStoreResponse) PacketLen() int {
	return HeaderLen + namesLen(r.Action, r.FirstName, r.SecondName) + 1 + len(r.Message)
}

func (r FileStoreResponse) Pack() ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	value := make([]byte, 0, r.PacketLen()-HeaderLen)
	value = append(value, byte(r.Action)<<4|byte(r.Status)&0x0F)
	value, err := appendNames(value, r.Action, r.FirstName, r.SecondName)
	if err != nil {
		return nil, err
	}
	value, err = Lv(r.Message).AppendTo(value)
	if err != nil {
		return nil, err
	}
	return Tlv{Type: TypeFilestoreResponse, Value: value}.Pack()
}

func UnpackFileStoreResponse(data []byte) (FileStoreResponse, error) {
	raw, err := Unpack(data)
	if err != nil {
		return FileStoreResponse{}, err
	}
	return FileStoreResponseFromTlv(raw)
}

func FileStoreResponseFromTlv(t Tlv) (FileStoreResponse, error) {
	if err := expectType(t, TypeFilestoreResponse); err != nil {
		return FileStoreResponse{}, err
	}
	action, status, idx, first, second, err := parseNames(t.Value)
	if err != nil {
		return FileStoreResponse{}, err
	}
	if !ValidStatus(action, status) {
		return FileStoreResponse{}, protocol.Errorf(ErrInvalidValue, "status %d invalid for action %s", status, action)
	}
	msg, err := innerLv(t.Value[idx:], "filestore message")
	if err != nil {
		return FileStoreResponse{}, err
	}
	idx += msg.PacketLen()
	if len(msg) == 0 {
		msg = nil
	}
	if idx != len(t.Value) {
		return FileStoreResponse{}, protocol.Errorf(ErrInvalidFormat, "filestore response has %d unconsumed bytes", len(t.Value)-idx)
	}
	return FileStoreResponse{
		Action:     action,
		Status:     status,
		FirstName:  first,
		SecondName: second,
		Message:    []byte(msg),
	}, nil
}

func namesLen(action ActionCode, first, second string) int {
	n := 1 + 1 + len(first)
	if action.HasSecondName() {
		n += 1 + len(second)
	}
	return n
}

// validateNames checks the name fields. extra is the number of value bytes
// following the names.
func validateNames(action ActionCode, first, second string, extra int) error {
	if !action.Known() {
		return protocol.Errorf(ErrInvalidValue, "unknown filestore action %d", action)
	}
	if len(first) > MaxValueLen || len(second) > MaxValueLen {
		return protocol.Errorf(ErrInvalidValue, "file name longer than %d bytes", MaxValueLen)
	}
	if !action.HasSecondName() && second != "" {
		return protocol.Errorf(ErrInvalidValue, "action %s takes one file name", action)
	}
	if total := namesLen(action, first, second) + extra; total > MaxValueLen {
		return protocol.Errorf(ErrInvalidValue, "filestore value length %d exceeds %d", total, MaxValueLen)
	}
	return nil
}

func appendNames(dst []byte, action ActionCode, first, second string) ([]byte, error) {
	dst, err := Lv(first).AppendTo(dst)
	if err != nil {
		return dst, err
	}
	if action.HasSecondName() {
		return Lv(second).AppendTo(dst)
	}
	return dst, nil
}

func parseNames(value []byte) (ActionCode, StatusCode, int, string, string, error) {
	if len(value) < 1 {
		return 0, 0, 0, "", "", protocol.TooShort(1, len(value))
	}
	action := ActionCode(value[0] >> 4)
	status := StatusCode(value[0] & 0x0F)
	if !action.Known() {
		return 0, 0, 0, "", "", protocol.Errorf(ErrInvalidValue, "unknown filestore action %d", action)
	}
	idx := 1
	first, err := innerLv(value[idx:], "first file name")
	if err != nil {
		return 0, 0, 0, "", "", err
	}
	idx += first.PacketLen()
	var second Lv
	if action.HasSecondName() {
		second, err = innerLv(value[idx:], "second file name")
		if err != nil {
			return 0, 0, 0, "", "", err
		}
		idx += second.PacketLen()
	}
	return action, status, idx, string(first), string(second), nil
}

// innerLv reads an LV nested in a TLV value. A length byte that runs past the
// enclosing value is a value error rather than a short buffer.
func innerLv(data []byte, what string) (Lv, error) {
	lv, err := UnpackLv(data)
	if errors.Is(err, ErrTooShort) {
		return nil, protocol.Errorf(ErrInvalidValue, "%s length does not match tlv value: %v", what, err)
	}
	return lv, err
}
