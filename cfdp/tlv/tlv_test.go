package tlv

import (
	"bytes"
	"errors"
	"testing"
)

func TestTlvPackUnpackRoundTrip(t *testing.T) {
	in, err := New(TypeMessageToUser, []byte("hello"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	raw, err := in.Pack()
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	want := []byte{0x02, 0x05, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(raw, want) {
		t.Fatalf("packed=% x want=% x", raw, want)
	}
	if in.PacketLen() != len(raw) {
		t.Fatalf("packet len %d != %d", in.PacketLen(), len(raw))
	}
	out, err := Unpack(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.Type != TypeMessageToUser || !bytes.Equal(out.Value, in.Value) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestTlvValueTooLong(t *testing.T) {
	if _, err := New(TypeFlowLabel, make([]byte, 256)); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := New(TypeFlowLabel, make([]byte, 255)); err != nil {
		t.Fatalf("255 byte value should be accepted: %v", err)
	}
}

func TestTlvUnpackShortInputs(t *testing.T) {
	if _, err := Unpack([]byte{0x06}); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort for 1 byte, got %v", err)
	}
	if _, err := Unpack([]byte{0x06, 0x04, 0x00, 0x01}); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort for declared length overflow, got %v", err)
	}
}

func TestUnpackPreservesUnknownTypeButDecodeRejects(t *testing.T) {
	raw := []byte{0x03, 0x01, 0xAA}
	tl, err := Unpack(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if tl.Type.Known() {
		t.Fatalf("type 0x03 should be unassigned")
	}
	if _, err := Decode(raw); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestEntityIDTlv(t *testing.T) {
	e, err := NewEntityID([]byte{0x00, 0x02})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if e.PacketLen() != 4 {
		t.Fatalf("expected packet len 4, got %d", e.PacketLen())
	}
	raw, err := e.Pack()
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if !bytes.Equal(raw, []byte{0x06, 0x02, 0x00, 0x02}) {
		t.Fatalf("unexpected bytes % x", raw)
	}
	out, err := UnpackEntityID(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.Uint() != 2 {
		t.Fatalf("unexpected id %d", out.Uint())
	}

	if _, err := NewEntityID([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := UnpackEntityID([]byte{0x06, 0x03, 1, 2, 3}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for 3 byte id, got %v", err)
	}
	if _, err := UnpackEntityID([]byte{0x05, 0x01, 1}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for wrong type, got %v", err)
	}
}

func TestLvRoundTrip(t *testing.T) {
	lv, err := NewLv([]byte("a.bin"))
	if err != nil {
		t.Fatalf("new lv: %v", err)
	}
	raw, err := lv.AppendTo(nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if raw[0] != 5 || lv.PacketLen() != 6 {
		t.Fatalf("unexpected lv encoding % x", raw)
	}
	back, err := UnpackLv(raw)
	if err != nil || string(back) != "a.bin" {
		t.Fatalf("unpack lv=%q err=%v", back, err)
	}
	if _, err := UnpackLv([]byte{3, 'a'}); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestDecodeAllDispatchesKinds(t *testing.T) {
	e, _ := NewEntityID([]byte{7})
	fl, _ := NewFlowLabel([]byte{1, 2})
	req, _ := NewFileStoreRequest(ActionDeleteFile, "old.txt", "")
	var buf []byte
	for _, v := range []Value{e, fl, req} {
		raw, err := v.Pack()
		if err != nil {
			t.Fatalf("pack %s: %v", v.TlvType(), err)
		}
		buf = append(buf, raw...)
	}
	vals, err := DecodeAll(buf)
	if err != nil {
		t.Fatalf("decode all: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vals))
	}
	if _, ok := vals[0].(EntityID); !ok {
		t.Fatalf("expected EntityID, got %T", vals[0])
	}
	if _, ok := vals[1].(Tlv); !ok {
		t.Fatalf("expected raw Tlv, got %T", vals[1])
	}
	got, ok := vals[2].(FileStoreRequest)
	if !ok || got.FirstName != "old.txt" || got.Action != ActionDeleteFile {
		t.Fatalf("unexpected request %#v", vals[2])
	}
}
