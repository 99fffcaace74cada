package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/spacepackets/cfdp"
	"github.com/danmuck/spacepackets/internal/testutil/testlog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "cfdpctl.toml")
	if err := WriteTemplate(path, "cfdpctl", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, "cfdpctl", false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	pc, err := cfg.PduConfig()
	if err != nil {
		t.Fatalf("pdu config: %v", err)
	}
	if !bytes.Equal(pc.SourceEntityID, []byte{0, 1}) || !bytes.Equal(pc.DestEntityID, []byte{0, 2}) {
		t.Fatalf("unexpected entity ids %+v", pc)
	}
	if pc.CrcFlag != cfdp.CrcPresent || pc.LargeFile != cfdp.NormalFile {
		t.Fatalf("unexpected flags %+v", pc)
	}
	if cfg.FrameLimits().MaxPduBytes != 4096 {
		t.Fatalf("limits %+v", cfg.Limits)
	}
	if err := CheckStrict(path); err != nil {
		t.Fatalf("strict check: %v", err)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeFile(t, "[pdu]\nlarge_file = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Server.Name != def.Server.Name || cfg.Server.Addr != def.Server.Addr {
		t.Fatalf("server section changed: %+v", cfg.Server)
	}
	if !cfg.Pdu.LargeFile || cfg.Pdu.EntityIDWidth != 1 || cfg.Pdu.TransmissionMode != ModeAcknowledged {
		t.Fatalf("unexpected pdu section %+v", cfg.Pdu)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"width":      "[pdu]\nentity_id_width = 3\n",
		"overflow":   "[pdu]\nsource_entity_id = 300\n",
		"mode":       "[pdu]\ntransmission_mode = \"sometimes\"\n",
		"addr":       "[server]\naddr = \"\"\n",
		"limit":      "[limits]\nmax_pdu_bytes = 1\n",
		"unknown":    "[pdu]\ncolour = \"blue\"\n",
		"bad syntax": "[pdu\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, body)); err == nil {
				t.Fatalf("expected load failure")
			}
		})
	}
}

func TestLoadAuthToken(t *testing.T) {
	cfg, err := Load(writeFile(t, "[server]\nauth_token = \"  s3cret \"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.AuthToken != "s3cret" {
		t.Fatalf("auth token not trimmed: %q", cfg.Server.AuthToken)
	}
}

func TestCheckStrictReportsUnknownKey(t *testing.T) {
	err := CheckStrict(writeFile(t, "[server]\nport = 9\n"))
	if err == nil || !strings.Contains(err.Error(), "port") {
		t.Fatalf("expected unknown key error naming port, got %v", err)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.CorsOrigins = []string{"http://localhost:3000"}
	out, err := Render(cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	back, err := Load(writeFile(t, string(out)))
	if err != nil {
		t.Fatalf("load rendered: %v", err)
	}
	if back.Server.Addr != cfg.Server.Addr || back.Limits != cfg.Limits || back.Pdu != cfg.Pdu {
		t.Fatalf("rendered config changed: %+v", back)
	}
}
