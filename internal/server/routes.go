package server

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danmuck/spacepackets/internal/inspect"
	"github.com/danmuck/spacepackets/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// maxStreamPdus bounds a /pdus/stream body to this many maximum sized PDUs.
const maxStreamPdus = 64

type decodeRequest struct {
	Hex string `json:"hex"`
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"source_entity_id":    s.pdu.SourceID(),
			"dest_entity_id":      s.pdu.DestID(),
			"transaction_seq_num": s.pdu.SeqNum(),
			"entity_id_width":     len(s.pdu.SourceEntityID),
			"seq_num_width":       len(s.pdu.TransactionSeqNum),
			"transmission_mode":   s.pdu.TransmissionMode.String(),
			"max_pdu_bytes":       s.limits.MaxPduBytes,
		})
	})

	pdus := s.router.Group("/pdus", s.requireToken())
	pdus.POST("/decode", s.handleDecode)
	pdus.POST("/stream", s.handleStream)
	pdus.POST("/encode", s.handleEncode)
}

// handleDecode accepts {"hex": "..."} as JSON or the raw PDU bytes.
func (s *Server) handleDecode(c *gin.Context) {
	raw, ok := s.readPdu(c)
	if !ok {
		return
	}
	view, err := inspect.Decode(raw)
	if err != nil {
		s.reject(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.Set(observability.ContextPduKind, view.Kind)
	c.JSON(http.StatusOK, gin.H{"pdu": view})
}

func (s *Server) handleStream(c *gin.Context) {
	limit := int64(s.limits.MaxPduBytes) * maxStreamPdus
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		s.reject(c, http.StatusBadRequest, err)
		return
	}
	if int64(len(body)) > limit {
		s.tooLarge(c, fmt.Sprintf("stream exceeds %d bytes (%d max sized pdus)", limit, maxStreamPdus))
		return
	}
	entries, err := inspect.DecodeStream(bytes.NewReader(body), s.limits)
	resp := gin.H{"count": len(entries), "pdus": entries}
	if err != nil {
		resp["error"] = err.Error()
		resp["error_kind"] = inspect.ErrorKind(err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEncode(c *gin.Context) {
	var req inspect.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "bad_request"})
		return
	}
	raw, p, err := inspect.Encode(req, s.pdu)
	if err != nil {
		s.reject(c, http.StatusUnprocessableEntity, err)
		return
	}
	if len(raw) > s.limits.MaxPduBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "encoded pdu exceeds max_pdu_bytes", "error_kind": "too_large"})
		return
	}
	c.Set(observability.ContextPduKind, inspect.Kind(p))
	c.JSON(http.StatusOK, gin.H{
		"hex":    hex.EncodeToString(raw),
		"length": len(raw),
		"pdu":    inspect.Describe(p),
	})
}

func (s *Server) readPdu(c *gin.Context) ([]byte, bool) {
	if c.ContentType() == gin.MIMEJSON {
		var req decodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "bad_request"})
			return nil, false
		}
		raw, err := inspect.ParseHex(req.Hex)
		if err != nil {
			s.reject(c, http.StatusBadRequest, err)
			return nil, false
		}
		if len(raw) > s.limits.MaxPduBytes {
			s.tooLarge(c, "pdu exceeds max_pdu_bytes")
			return nil, false
		}
		return raw, true
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(s.limits.MaxPduBytes)+1))
	if err != nil {
		s.reject(c, http.StatusBadRequest, err)
		return nil, false
	}
	if len(raw) > s.limits.MaxPduBytes {
		s.tooLarge(c, "pdu exceeds max_pdu_bytes")
		return nil, false
	}
	return raw, true
}

func (s *Server) tooLarge(c *gin.Context, msg string) {
	c.Set(observability.ContextErrorKind, "too_large")
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msg, "error_kind": "too_large"})
}

func (s *Server) reject(c *gin.Context, status int, err error) {
	kind := inspect.ErrorKind(err)
	c.Set(observability.ContextErrorKind, kind)
	if kind == "internal" {
		status = http.StatusInternalServerError
		log.Error().Str("server", s.Name).Err(err).Msg("pdu request failed")
	} else {
		log.Debug().Str("server", s.Name).Str("kind", kind).Err(err).Msg("pdu request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error(), "error_kind": kind})
}
