package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/spacepackets/cfdp"
	"github.com/danmuck/spacepackets/internal/config"
	"github.com/danmuck/spacepackets/internal/inspect"
	"github.com/danmuck/spacepackets/internal/logging"
	"github.com/danmuck/spacepackets/internal/observability"
	"github.com/danmuck/spacepackets/internal/protocol/frame"
	"github.com/danmuck/spacepackets/internal/server"
	"github.com/rs/zerolog/log"
)

const usage = `usage: cfdpctl <command> [flags] [args]

commands:
  decode [-config path] <hex>...     decode hex PDUs ("-" reads hex from stdin)
  stream [-config path] <file>       split and decode a binary PDU stream ("-" for stdin)
  encode [-config path] [-out file] <request.json>
                                     build PDUs from a JSON request or array of requests
  serve  [-config path]              run the HTTP inspection server
`

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "serve" {
		observability.InitLogger("cfdpctl")
	} else {
		logging.ConfigureRuntime()
	}
	cfdp.SetLogger(log.Logger)

	if err := run(args, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "cfdpctl: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", "", "config path (defaults are used when empty)")
	out := fs.String("out", "", "append encoded PDUs to this file instead of printing JSON (encode)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	switch cmd {
	case "decode":
		return runDecode(fs.Args(), stdin, stdout)
	case "stream":
		return runStream(fs.Args(), stdin, stdout, cfg.FrameLimits())
	case "encode":
		return runEncode(fs.Args(), stdin, stdout, cfg, *out)
	case "serve":
		s, err := server.New(cfg)
		if err != nil {
			return err
		}
		return s.Serve()
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	log.Debug().Str("path", path).Msg("loaded cfdpctl config")
	return cfg, nil
}

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: decode needs at least one hex PDU", errUsage)
	}
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		args = strings.Split(strings.TrimSpace(string(data)), "\n")
	}
	failed := 0
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		view, err := inspect.DecodeHex(arg)
		if err != nil {
			failed++
			if err := writeJSON(stdout, map[string]string{"error": err.Error(), "error_kind": inspect.ErrorKind(err)}); err != nil {
				return err
			}
			continue
		}
		if err := writeJSON(stdout, view); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d pdu(s) failed to decode", failed)
	}
	return nil
}

func runStream(args []string, stdin io.Reader, stdout io.Writer, limits frame.Limits) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: stream needs exactly one file", errUsage)
	}
	r := stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	entries, err := inspect.DecodeStream(r, limits)
	for _, e := range entries {
		if werr := writeJSON(stdout, e); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("stream stopped after %d pdu(s): %w", len(entries), err)
	}
	log.Info().Int("pdus", len(entries)).Msg("stream decoded")
	return nil
}

type encodeResult struct {
	Hex    string          `json:"hex"`
	Length int             `json:"length"`
	Pdu    inspect.PduView `json:"pdu"`
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer, cfg config.Config, out string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: encode needs exactly one request file", errUsage)
	}
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	reqs, err := parseRequests(data)
	if err != nil {
		return err
	}
	base, err := cfg.PduConfig()
	if err != nil {
		return err
	}
	limits := cfg.FrameLimits()

	var sink *os.File
	if out != "" {
		sink, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer sink.Close()
	}

	for i, req := range reqs {
		raw, p, err := inspect.Encode(req, base)
		if err != nil {
			return fmt.Errorf("request %d (%s): %w", i, req.Kind, err)
		}
		if sink != nil {
			if err := frame.WritePdu(sink, p, limits); err != nil {
				return fmt.Errorf("request %d (%s): %w", i, req.Kind, err)
			}
			continue
		}
		if err := writeJSON(stdout, encodeResult{Hex: fmt.Sprintf("%x", raw), Length: len(raw), Pdu: inspect.Describe(p)}); err != nil {
			return err
		}
	}
	if sink != nil {
		log.Info().Str("out", out).Int("pdus", len(reqs)).Msg("pdus appended")
	}
	return nil
}

// parseRequests accepts a single request object or an array of them.
func parseRequests(data []byte) ([]inspect.EncodeRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []inspect.EncodeRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, fmt.Errorf("parse requests: %w", err)
		}
		return reqs, nil
	}
	var req inspect.EncodeRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return []inspect.EncodeRequest{req}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
