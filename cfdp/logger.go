package cfdp

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var pkgLogger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	pkgLogger.Store(&nop)
}

// SetLogger installs the logger used for decode diagnostics.
func SetLogger(l zerolog.Logger) {
	pkgLogger.Store(&l)
}

func logger() *zerolog.Logger {
	return pkgLogger.Load()
}

func logReject(kind string, data []byte, err error) {
	logger().Debug().
		Str("pdu", kind).
		Int("len", len(data)).
		Err(err).
		Msg("cfdp: rejected pdu")
}
