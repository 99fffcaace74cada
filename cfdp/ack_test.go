package cfdp

import (
	"bytes"
	"errors"
	"testing"
)

func TestAckPduFinished(t *testing.T) {
	p, err := NewAckPdu(twoByteConfig(), DirectiveFinished, NoError, TransactionTerminated)
	if err != nil {
		t.Fatalf("new ack: %v", err)
	}
	raw := mustPack(t, p)
	want := []byte{0x20, 0x00, 0x03, 0x11, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x06, 0x51, 0x02}
	if !bytes.Equal(raw, want) {
		t.Fatalf("packed=% x want=% x", raw, want)
	}
	out, err := UnpackAckPdu(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.AckedDirective() != DirectiveFinished || out.ConditionCode != NoError || out.TransactionStatus != TransactionTerminated {
		t.Fatalf("unexpected ack %+v", out)
	}
	if out.Config().Direction != TowardsReceiver {
		t.Fatalf("ack of finished must travel toward the receiver")
	}
}

func TestAckPduEof(t *testing.T) {
	conf := PduConfig{
		SourceEntityID:    []byte{0x10, 0x00, 0x01, 0x02},
		DestEntityID:      []byte{0x30, 0x00, 0x01, 0x03},
		TransactionSeqNum: []byte{0x50, 0x00, 0x10, 0x01},
		TransmissionMode:  Unacknowledged,
	}
	p, err := NewAckPdu(conf, DirectiveEOF, PositiveAckLimitReached, TransactionActive)
	if err != nil {
		t.Fatalf("new ack: %v", err)
	}
	raw := mustPack(t, p)
	want := []byte{
		0x2C, 0x00, 0x03, 0x33,
		0x10, 0x00, 0x01, 0x02,
		0x50, 0x00, 0x10, 0x01,
		0x30, 0x00, 0x01, 0x03,
		0x06, 0x40, 0x11,
	}
	if !bytes.Equal(raw, want) {
		t.Fatalf("packed=% x want=% x", raw, want)
	}
	out, err := UnpackAckPdu(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.AckedDirective() != DirectiveEOF || out.ConditionCode != PositiveAckLimitReached || out.TransactionStatus != TransactionActive {
		t.Fatalf("unexpected ack %+v", out)
	}
}

func TestAckPduConstructionGuard(t *testing.T) {
	for _, code := range []DirectiveCode{DirectiveAck, DirectiveMetadata, DirectiveNak, DirectivePrompt, DirectiveKeepAlive, 0} {
		if _, err := NewAckPdu(DefaultPduConfig(), code, NoError, TransactionActive); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("acked %s: expected ErrInvalidValue, got %v", code, err)
		}
	}
}

func TestAckPduUnpackSubtypeMismatch(t *testing.T) {
	p, _ := NewAckPdu(DefaultPduConfig(), DirectiveEOF, NoError, TransactionActive)
	raw := mustPack(t, p)
	idx := len(raw) - 2
	for _, b := range []byte{0x41, 0x50, 0x81} {
		bad := append([]byte(nil), raw...)
		bad[idx] = b
		if _, err := UnpackAckPdu(bad); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("acked byte 0x%02x: expected ErrInvalidValue, got %v", b, err)
		}
	}
}
