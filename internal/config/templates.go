package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "cfdpctl", "":
		return cfdpctlTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const cfdpctlTemplate = `[pdu]
source_entity_id = 1
dest_entity_id = 2
entity_id_width = 2
transaction_seq_num = 0
seq_num_width = 2
transmission_mode = "acknowledged"
crc = true
large_file = false
segmentation_control = false

[server]
name = "cfdpctl"
addr = ":9200"
cors_origins = ["http://localhost:3000"]
auth_token = ""

[limits]
max_pdu_bytes = 4096
`
