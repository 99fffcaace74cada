// Package config loads the cfdpctl TOML configuration: the default PDU
// configuration used when encoding, the inspection server and frame limits.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/spacepackets/cfdp"
	"github.com/danmuck/spacepackets/internal/protocol/frame"
)

const (
	ModeAcknowledged   = "acknowledged"
	ModeUnacknowledged = "unacknowledged"
)

type Config struct {
	Pdu    PduSection    `toml:"pdu"`
	Server ServerSection `toml:"server"`
	Limits LimitsSection `toml:"limits"`
}

type PduSection struct {
	SourceEntityID      uint64 `toml:"source_entity_id"`
	DestEntityID        uint64 `toml:"dest_entity_id"`
	EntityIDWidth       int    `toml:"entity_id_width"`
	TransactionSeqNum   uint64 `toml:"transaction_seq_num"`
	SeqNumWidth         int    `toml:"seq_num_width"`
	TransmissionMode    string `toml:"transmission_mode"`
	Crc                 bool   `toml:"crc"`
	LargeFile           bool   `toml:"large_file"`
	SegmentationControl bool   `toml:"segmentation_control"`
}

type ServerSection struct {
	Name        string   `toml:"name"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	// AuthToken, when set, is required as a bearer token on POST routes.
	AuthToken string `toml:"auth_token"`
}

type LimitsSection struct {
	MaxPduBytes int `toml:"max_pdu_bytes"`
}

func Default() Config {
	return Config{
		Pdu: PduSection{
			EntityIDWidth:    1,
			SeqNumWidth:      1,
			TransmissionMode: ModeAcknowledged,
		},
		Server: ServerSection{
			Name: "cfdpctl",
			Addr: ":9200",
		},
		Limits: LimitsSection{
			MaxPduBytes: frame.MaxPduLen,
		},
	}
}

// Load decodes path over Default. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("pdu", "source_entity_id") {
		cfg.Pdu.SourceEntityID = raw.Pdu.SourceEntityID
	}
	if meta.IsDefined("pdu", "dest_entity_id") {
		cfg.Pdu.DestEntityID = raw.Pdu.DestEntityID
	}
	if meta.IsDefined("pdu", "entity_id_width") {
		cfg.Pdu.EntityIDWidth = raw.Pdu.EntityIDWidth
	}
	if meta.IsDefined("pdu", "transaction_seq_num") {
		cfg.Pdu.TransactionSeqNum = raw.Pdu.TransactionSeqNum
	}
	if meta.IsDefined("pdu", "seq_num_width") {
		cfg.Pdu.SeqNumWidth = raw.Pdu.SeqNumWidth
	}
	if meta.IsDefined("pdu", "transmission_mode") {
		cfg.Pdu.TransmissionMode = strings.ToLower(strings.TrimSpace(raw.Pdu.TransmissionMode))
	}
	if meta.IsDefined("pdu", "crc") {
		cfg.Pdu.Crc = raw.Pdu.Crc
	}
	if meta.IsDefined("pdu", "large_file") {
		cfg.Pdu.LargeFile = raw.Pdu.LargeFile
	}
	if meta.IsDefined("pdu", "segmentation_control") {
		cfg.Pdu.SegmentationControl = raw.Pdu.SegmentationControl
	}

	if meta.IsDefined("server", "name") {
		cfg.Server.Name = strings.TrimSpace(raw.Server.Name)
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("server", "auth_token") {
		cfg.Server.AuthToken = strings.TrimSpace(raw.Server.AuthToken)
	}

	if meta.IsDefined("limits", "max_pdu_bytes") {
		cfg.Limits.MaxPduBytes = raw.Limits.MaxPduBytes
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, err := cfg.PduConfig(); err != nil {
		return fmt.Errorf("pdu section invalid: %w", err)
	}
	if strings.TrimSpace(cfg.Server.Name) == "" {
		return fmt.Errorf("server config missing name")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if cfg.Limits.MaxPduBytes < cfdp.FixedHeaderLen || cfg.Limits.MaxPduBytes > frame.MaxPduLen {
		return fmt.Errorf("limits.max_pdu_bytes must be in [%d, %d], got %d", cfdp.FixedHeaderLen, frame.MaxPduLen, cfg.Limits.MaxPduBytes)
	}
	return nil
}

// PduConfig converts the pdu section into a codec configuration.
func (c Config) PduConfig() (cfdp.PduConfig, error) {
	p := c.Pdu
	src, err := cfdp.EntityIDFromUint(p.SourceEntityID, p.EntityIDWidth)
	if err != nil {
		return cfdp.PduConfig{}, fmt.Errorf("source_entity_id: %w", err)
	}
	dst, err := cfdp.EntityIDFromUint(p.DestEntityID, p.EntityIDWidth)
	if err != nil {
		return cfdp.PduConfig{}, fmt.Errorf("dest_entity_id: %w", err)
	}
	seq, err := cfdp.EntityIDFromUint(p.TransactionSeqNum, p.SeqNumWidth)
	if err != nil {
		return cfdp.PduConfig{}, fmt.Errorf("transaction_seq_num: %w", err)
	}
	out := cfdp.PduConfig{
		SourceEntityID:    src,
		DestEntityID:      dst,
		TransactionSeqNum: seq,
	}
	switch p.TransmissionMode {
	case ModeAcknowledged:
		out.TransmissionMode = cfdp.Acknowledged
	case ModeUnacknowledged:
		out.TransmissionMode = cfdp.Unacknowledged
	default:
		return cfdp.PduConfig{}, fmt.Errorf("unknown transmission_mode %q", p.TransmissionMode)
	}
	if p.Crc {
		out.CrcFlag = cfdp.CrcPresent
	}
	if p.LargeFile {
		out.LargeFile = cfdp.LargeFile
	}
	if p.SegmentationControl {
		out.SegmentationControl = cfdp.BoundariesPreserved
	}
	return out, out.Validate()
}

func (c Config) FrameLimits() frame.Limits {
	return frame.Limits{MaxPduBytes: c.Limits.MaxPduBytes}
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
