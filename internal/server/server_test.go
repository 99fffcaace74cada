package server

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/spacepackets/internal/config"
	"github.com/danmuck/spacepackets/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

const ackHex = "20000311000000010001065102"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	s, err := New(config.Default())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	s.RegisterRoutes()
	return s
}

func do(t *testing.T, s *Server, method, path, contentType string, body []byte) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode body: %v body=%s", err, rr.Body.String())
		}
	}
	return rr.Code, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, body := do(t, s, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || body["status"] != "ok" || body["service"] != "cfdpctl" {
		t.Fatalf("unexpected health code=%d body=%#v", code, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/pdus/decode", "application/json", []byte(`{"hex":"`+ackHex+`"}`))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "spacepackets_cfdp_pdus_decoded_total") {
		t.Fatalf("decode counter missing from metrics output")
	}
}

func TestDecodeJSONHex(t *testing.T) {
	s := newTestServer(t)
	code, body := do(t, s, http.MethodPost, "/pdus/decode", "application/json", []byte(`{"hex":"`+ackHex+`"}`))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%#v", code, body)
	}
	pdu, _ := body["pdu"].(map[string]any)
	if pdu["kind"] != "ack" || pdu["length"] != float64(13) {
		t.Fatalf("unexpected pdu %#v", pdu)
	}
	fields, _ := pdu["fields"].(map[string]any)
	if fields["acked_directive"] != "finished" {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestDecodeRawBody(t *testing.T) {
	s := newTestServer(t)
	raw, _ := hex.DecodeString(ackHex)
	code, body := do(t, s, http.MethodPost, "/pdus/decode", "application/octet-stream", raw)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%#v", code, body)
	}
}

func TestDecodeRejects(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name string
		ct   string
		body string
		code int
		kind string
	}{
		{name: "truncated", ct: "application/json", body: `{"hex":"2000031100"}`, code: http.StatusUnprocessableEntity, kind: "too_short"},
		{name: "bad hex", ct: "application/json", body: `{"hex":"zz"}`, code: http.StatusBadRequest, kind: "bad_hex"},
		{name: "bad json", ct: "application/json", body: `{"hex":`, code: http.StatusBadRequest, kind: "bad_request"},
		{name: "unknown directive", ct: "application/json", body: `{"hex":"200001000000000b"}`, code: http.StatusUnprocessableEntity, kind: "invalid_format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, s, http.MethodPost, "/pdus/decode", tc.ct, []byte(tc.body))
			if code != tc.code || body["error_kind"] != tc.kind {
				t.Fatalf("code=%d kind=%v want %d %s", code, body["error_kind"], tc.code, tc.kind)
			}
		})
	}
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Limits.MaxPduBytes = 8
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	s.RegisterRoutes()
	raw, _ := hex.DecodeString(ackHex)
	code, body := do(t, s, http.MethodPost, "/pdus/decode", "application/octet-stream", raw)
	if code != http.StatusRequestEntityTooLarge || body["error_kind"] != "too_large" {
		t.Fatalf("code=%d body=%#v", code, body)
	}
}

func TestEncodeKeepAlive(t *testing.T) {
	s := newTestServer(t)
	code, body := do(t, s, http.MethodPost, "/pdus/encode", "application/json", []byte(`{"kind":"keep_alive","progress":42}`))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%#v", code, body)
	}
	// keep alive travels toward the sender: direction bit set in byte 0
	if body["hex"] != "280005000000000c0000002a" || body["length"] != float64(12) {
		t.Fatalf("unexpected encode response %#v", body)
	}
}

func TestEncodeRejects(t *testing.T) {
	s := newTestServer(t)
	code, body := do(t, s, http.MethodPost, "/pdus/encode", "application/json", []byte(`{"kind":"telecommand"}`))
	if code != http.StatusUnprocessableEntity || body["error_kind"] != "unknown_kind" {
		t.Fatalf("code=%d body=%#v", code, body)
	}
	code, body = do(t, s, http.MethodPost, "/pdus/encode", "application/json", []byte(`{"kind":"eof","file_checksum":"dead"}`))
	if code != http.StatusUnprocessableEntity || body["error_kind"] != "invalid_configuration" {
		t.Fatalf("code=%d body=%#v", code, body)
	}
}

func TestStream(t *testing.T) {
	s := newTestServer(t)
	ack, _ := hex.DecodeString(ackHex)
	stream := append(append([]byte{}, ack...), ack[:5]...)
	code, body := do(t, s, http.MethodPost, "/pdus/stream", "application/octet-stream", stream)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["count"] != float64(1) || body["error_kind"] != "short_stream" {
		t.Fatalf("unexpected stream response %#v", body)
	}
}

func TestStreamRejectsOversizedBody(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Limits.MaxPduBytes = 16
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	s.RegisterRoutes()
	// 16 byte file data PDU: 7 byte header, 4 byte offset, 5 data bytes.
	fd, _ := hex.DecodeString("300009000000000000000068656c6c6f")

	atCap := bytes.Repeat(fd, maxStreamPdus)
	code, body := do(t, s, http.MethodPost, "/pdus/stream", "application/octet-stream", atCap)
	if code != http.StatusOK || body["count"] != float64(maxStreamPdus) || body["error"] != nil {
		t.Fatalf("at cap: code=%d count=%v error=%v", code, body["count"], body["error"])
	}

	over := bytes.Repeat(fd, 100)
	code, body = do(t, s, http.MethodPost, "/pdus/stream", "application/octet-stream", over)
	if code != http.StatusRequestEntityTooLarge || body["error_kind"] != "too_large" {
		t.Fatalf("over cap: code=%d body=%#v", code, body)
	}
}

func TestAuthTokenGuardsPduRoutes(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.AuthToken = "s3cret"
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	s.RegisterRoutes()

	body := []byte(`{"hex":"` + ackHex + `"}`)
	code, resp := do(t, s, http.MethodPost, "/pdus/decode", "application/json", body)
	if code != http.StatusUnauthorized || resp["error_kind"] != "unauthorized" {
		t.Fatalf("expected 401, got %d %#v", code, resp)
	}

	req := httptest.NewRequest(http.MethodPost, "/pdus/decode", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d body=%s", rr.Code, rr.Body.String())
	}

	if code, _ := do(t, s, http.MethodGet, "/health", "", nil); code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", code)
	}
}
