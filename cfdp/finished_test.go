package cfdp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/spacepackets/cfdp/tlv"
)

func TestFinishedPduMinimal(t *testing.T) {
	p, err := NewFinishedPdu(DefaultPduConfig(), NoError, DataComplete, FileStatusUnreported, nil, nil)
	if err != nil {
		t.Fatalf("new finished: %v", err)
	}
	raw := mustPack(t, p)
	want := []byte{0x28, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x05, 0x03}
	if !bytes.Equal(raw, want) {
		t.Fatalf("packed=% x want=% x", raw, want)
	}
	out, err := UnpackFinishedPdu(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if out.FileStatus != FileStatusUnreported || out.DeliveryCode != DataComplete || out.FileStoreResponses != nil || out.FaultLocation != nil {
		t.Fatalf("unexpected finished %+v", out)
	}
}

func finishedWithResponse(t *testing.T) (*FinishedPdu, tlv.FileStoreResponse) {
	t.Helper()
	resp, err := tlv.NewFileStoreResponse(tlv.ActionRemoveDirectory, tlv.StatusSuccess, "test.txt", "", nil)
	if err != nil {
		t.Fatalf("response: %v", err)
	}
	p, err := NewFinishedPdu(DefaultPduConfig(), FilestoreRejection, DataIncomplete, DiscardedDeliberately,
		[]tlv.FileStoreResponse{resp}, mustEntityID(t, 0x00, 0x02))
	if err != nil {
		t.Fatalf("new finished: %v", err)
	}
	return p, resp
}

func TestFinishedPduWithResponseAndFaultLocation(t *testing.T) {
	p, resp := finishedWithResponse(t)
	if p.PacketLen() != 9+resp.PacketLen()+4 {
		t.Fatalf("expected packet len %d, got %d", 9+resp.PacketLen()+4, p.PacketLen())
	}
	raw := mustPack(t, p)
	if raw[8] != 0x44 {
		t.Fatalf("status byte 0x%02x", raw[8])
	}
	out, err := UnpackFinishedPdu(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(out.FileStoreResponses) != 1 || out.FileStoreResponses[0].FirstName != "test.txt" {
		t.Fatalf("responses %+v", out.FileStoreResponses)
	}
	if out.FaultLocation == nil || out.FaultLocation.Uint() != 2 {
		t.Fatalf("fault location %+v", out.FaultLocation)
	}
	if out.ConditionCode != FilestoreRejection || out.DeliveryCode != DataIncomplete {
		t.Fatalf("unexpected finished %+v", out)
	}
}

func TestFinishedPduCorruptFaultLocationType(t *testing.T) {
	p, resp := finishedWithResponse(t)
	raw := mustPack(t, p)
	idx := 9 + resp.PacketLen()
	for _, typ := range []byte{0x03, 0x02, 0x7F} {
		bad := append([]byte(nil), raw...)
		bad[idx] = typ
		if _, err := UnpackFinishedPdu(bad); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("type 0x%02x: expected ErrInvalidFormat, got %v", typ, err)
		}
	}
}

func TestFinishedPduFaultLocationMustBeLast(t *testing.T) {
	resp, _ := tlv.NewFileStoreResponse(tlv.ActionDeleteFile, tlv.StatusSuccess, "a", "", nil)
	respRaw, _ := resp.Pack()
	p, _ := NewFinishedPdu(DefaultPduConfig(), FilestoreRejection, DataComplete, FileRetained, nil, mustEntityID(t, 0x01))
	raw := mustPack(t, p)
	raw = append(raw, respRaw...)
	raw[2] += byte(len(respRaw))
	if _, err := UnpackFinishedPdu(raw); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestFinishedPduInvalidResponseVoidsPdu(t *testing.T) {
	p, _ := finishedWithResponse(t)
	raw := mustPack(t, p)
	// status 5 is undefined for remove directory
	raw[9+2] = byte(tlv.ActionRemoveDirectory)<<4 | 0x05
	out, err := UnpackFinishedPdu(raw)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no partial result")
	}
}
