package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spacepackets",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spacepackets",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	pdusDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spacepackets",
			Subsystem: "cfdp",
			Name:      "pdus_decoded_total",
			Help:      "CFDP PDUs unpacked, by kind and result.",
		},
		[]string{"kind", "result"},
	)
	pdusEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spacepackets",
			Subsystem: "cfdp",
			Name:      "pdus_encoded_total",
			Help:      "CFDP PDUs packed, by kind and result.",
		},
		[]string{"kind", "result"},
	)
	pduSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spacepackets",
			Subsystem: "cfdp",
			Name:      "pdu_size_bytes",
			Help:      "Size of successfully handled CFDP PDUs.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 7),
		},
		[]string{"kind", "op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, pdusDecoded, pdusEncoded, pduSize)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode counts one unpack attempt. size is the input length.
func RecordDecode(kind string, size int, err error) {
	RegisterMetrics()
	if err != nil {
		pdusDecoded.WithLabelValues(kind, ResultError).Inc()
		return
	}
	pdusDecoded.WithLabelValues(kind, ResultOK).Inc()
	pduSize.WithLabelValues(kind, "decode").Observe(float64(size))
}

func RecordEncode(kind string, size int, err error) {
	RegisterMetrics()
	if err != nil {
		pdusEncoded.WithLabelValues(kind, ResultError).Inc()
		return
	}
	pdusEncoded.WithLabelValues(kind, ResultOK).Inc()
	pduSize.WithLabelValues(kind, "encode").Observe(float64(size))
}
