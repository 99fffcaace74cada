package cfdp

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/spacepackets/cfdp/tlv"
)

func metadataOptions(t *testing.T) []tlv.Value {
	t.Helper()
	req, err := tlv.NewFileStoreRequest(tlv.ActionRenameFile, "a.bin", "b.bin")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	msg, err := tlv.NewMessageToUser([]byte("hi"))
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	flow, err := tlv.NewFlowLabel([]byte{0x01})
	if err != nil {
		t.Fatalf("flow label: %v", err)
	}
	return []tlv.Value{
		req,
		msg,
		FaultHandlerOverride{ConditionCode: FileChecksumFailure, HandlerCode: IgnoreError},
		flow,
	}
}

func TestMetadataPduRoundTrip(t *testing.T) {
	p, err := NewMetadataPdu(DefaultPduConfig(), true, ChecksumCRC32, 1024, "src.txt", "dst.txt", metadataOptions(t))
	if err != nil {
		t.Fatalf("new metadata: %v", err)
	}
	raw := mustPack(t, p)
	if raw[8] != 0x43 {
		t.Fatalf("first parameter byte 0x%02x", raw[8])
	}
	out, err := UnpackMetadataPdu(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !reflect.DeepEqual(out, p) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", out, p)
	}
}

func TestMetadataPduReservedMessageOption(t *testing.T) {
	put, err := tlv.NewProxyPutRequest(tlv.ProxyPutRequestParams{
		DestEntityID:   []byte{5},
		SourceFileName: "hello.txt",
		DestFileName:   "hello2.txt",
	})
	if err != nil {
		t.Fatalf("proxy put: %v", err)
	}
	origin, err := tlv.NewOriginatingTransactionID([]byte{0x00, 0x01}, []byte{0x00, 0x05})
	if err != nil {
		t.Fatalf("originating id: %v", err)
	}
	p, err := NewMetadataPdu(DefaultPduConfig(), false, ChecksumNull, 0, "", "", []tlv.Value{put, origin})
	if err != nil {
		t.Fatalf("new metadata: %v", err)
	}
	out, err := UnpackMetadataPdu(mustPack(t, p))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(out.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(out.Options))
	}
	got, ok := out.Options[0].(tlv.ReservedMessage)
	if !ok {
		t.Fatalf("expected reserved message, got %T", out.Options[0])
	}
	params, err := got.ProxyPutRequest()
	if err != nil || params.DestFileName != "hello2.txt" {
		t.Fatalf("params=%#v err=%v", params, err)
	}
	if !reflect.DeepEqual(out.Options, p.Options) {
		t.Fatalf("options mismatch:\n got=%+v\nwant=%+v", out.Options, p.Options)
	}
}

func TestMetadataPduCopiesOptionBytes(t *testing.T) {
	msg, err := tlv.NewMessageToUser([]byte("hello"))
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	p, err := NewMetadataPdu(DefaultPduConfig(), false, ChecksumNull, 0, "a", "b", []tlv.Value{msg})
	if err != nil {
		t.Fatalf("new metadata: %v", err)
	}
	before := mustPack(t, p)
	msg.Value[0] = 'J'
	after := mustPack(t, p)
	if !bytes.Equal(before, after) {
		t.Fatalf("caller mutation leaked into pdu:\nbefore=% x\n after=% x", before, after)
	}
}

func TestMetadataPduEmptyNames(t *testing.T) {
	p, _ := NewMetadataPdu(DefaultPduConfig(), false, ChecksumNull, 0, "", "", nil)
	raw := mustPack(t, p)
	if len(raw) != 7+1+1+4+2 {
		t.Fatalf("expected 15 bytes, got %d", len(raw))
	}
	out, err := UnpackMetadataPdu(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.ChecksumType != ChecksumNull || out.Options != nil {
		t.Fatalf("unexpected metadata %+v", out)
	}
}

func TestMetadataPduRejectsFinishedOnlyTlv(t *testing.T) {
	fl := mustEntityID(t, 1)
	p, _ := NewMetadataPdu(DefaultPduConfig(), false, ChecksumModular, 10, "a", "b", []tlv.Value{*fl})
	raw := mustPack(t, p)
	if _, err := UnpackMetadataPdu(raw); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestFaultHandlerOverride(t *testing.T) {
	f := FaultHandlerOverride{ConditionCode: NakLimitReached, HandlerCode: AbandonTransaction}
	raw, err := f.Pack()
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(raw) != 3 || raw[0] != 0x04 || raw[1] != 0x01 || raw[2] != 0x74 {
		t.Fatalf("unexpected bytes % x", raw)
	}
	tl, _ := tlv.Unpack(raw)
	back, err := FaultHandlerOverrideFromTlv(tl)
	if err != nil || back != f {
		t.Fatalf("back=%+v err=%v", back, err)
	}
	tl.Value[0] = 0x70
	if _, err := FaultHandlerOverrideFromTlv(tl); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestPromptPdu(t *testing.T) {
	for _, resp := range []ResponseRequired{ResponseNak, ResponseKeepAlive} {
		p, err := NewPromptPdu(DefaultPduConfig(), resp)
		if err != nil {
			t.Fatalf("new prompt: %v", err)
		}
		raw := mustPack(t, p)
		if raw[8] != byte(resp)<<7 {
			t.Fatalf("parameter byte 0x%02x", raw[8])
		}
		out, err := UnpackPromptPdu(raw)
		if err != nil {
			t.Fatalf("unpack: %v", err)
		}
		if out.ResponseRequired != resp {
			t.Fatalf("response %d, want %d", out.ResponseRequired, resp)
		}
	}
}

func TestKeepAlivePdu(t *testing.T) {
	p, err := NewKeepAlivePdu(twoByteConfig(), 0xFFFF)
	if err != nil {
		t.Fatalf("new keep alive: %v", err)
	}
	if p.PacketLen() != 10+1+4 {
		t.Fatalf("expected 15, got %d", p.PacketLen())
	}
	p.SetLargeFile(LargeFile)
	p.Progress = 1 << 40
	raw := mustPack(t, p)
	out, err := UnpackKeepAlivePdu(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.Progress != 1<<40 || out.Config().Direction != TowardsSender {
		t.Fatalf("unexpected keep alive %+v", out)
	}
}
