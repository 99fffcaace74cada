package tlv

import "github.com/danmuck/spacepackets/internal/protocol"

// EntityID is the entity ID TLV, used as the fault location of EOF and
// Finished PDUs.
type EntityID struct {
	ID []byte
}

var _ Value = EntityID{}

func NewEntityID(id []byte) (EntityID, error) {
	if !protocol.ValidWidth(len(id)) {
		return EntityID{}, protocol.Errorf(ErrInvalidConfiguration, "entity id length %d not in {1,2,4,8}", len(id))
	}
	buf := make([]byte, len(id))
	copy(buf, id)
	return EntityID{ID: buf}, nil
}

func (e EntityID) TlvType() Type {
	return TypeEntityID
}

func (e EntityID) PacketLen() int {
	return HeaderLen + len(e.ID)
}

func (e EntityID) Pack() ([]byte, error) {
	return e.AppendTo(make([]byte, 0, e.PacketLen()))
}

func (e EntityID) AppendTo(dst []byte) ([]byte, error) {
	if !protocol.ValidWidth(len(e.ID)) {
		return dst, protocol.Errorf(ErrInvalidConfiguration, "entity id length %d not in {1,2,4,8}", len(e.ID))
	}
	return Tlv{Type: TypeEntityID, Value: e.ID}.AppendTo(dst)
}

// Uint returns the entity ID as an unsigned integer.
func (e EntityID) Uint() uint64 {
	v, _ := protocol.Uint(e.ID, len(e.ID))
	return v
}

func UnpackEntityID(data []byte) (EntityID, error) {
	raw, err := Unpack(data)
	if err != nil {
		return EntityID{}, err
	}
	return EntityIDFromTlv(raw)
}

func EntityIDFromTlv(t Tlv) (EntityID, error) {
	if err := expectType(t, TypeEntityID); err != nil {
		return EntityID{}, err
	}
	if !protocol.ValidWidth(len(t.Value)) {
		return EntityID{}, protocol.Errorf(ErrInvalidValue, "entity id length %d not in {1,2,4,8}", len(t.Value))
	}
	return NewEntityID(t.Value)
}
