// Package server exposes the PDU codec over HTTP: decode hex or binary PDUs,
// split PDU streams and encode PDUs from JSON requests.
package server

import (
	"net/http"
	"time"

	"github.com/danmuck/spacepackets/cfdp"
	"github.com/danmuck/spacepackets/internal/auth"
	"github.com/danmuck/spacepackets/internal/config"
	"github.com/danmuck/spacepackets/internal/observability"
	"github.com/danmuck/spacepackets/internal/protocol/frame"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

type Server struct {
	Name     string    `json:"name"`
	Addr     string    `json:"addr"`
	Appeared time.Time `json:"appeared"`

	pdu    cfdp.PduConfig
	limits frame.Limits
	auth   auth.Validator
	router *gin.Engine
}

// New builds a server from cfg. Routes are registered by Serve or
// RegisterRoutes.
func New(cfg config.Config) (*Server, error) {
	pdu, err := cfg.PduConfig()
	if err != nil {
		return nil, err
	}
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Server.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.Server.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Name:     cfg.Server.Name,
		Addr:     cfg.Server.Addr,
		Appeared: time.Now(),
		pdu:      pdu,
		limits:   cfg.FrameLimits(),
		auth:     auth.FromConfig(cfg.Server.AuthToken),
		router:   r,
	}, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	log.Info().
		Str("server", s.Name).
		Str("addr", s.Addr).
		Int("max_pdu_bytes", s.limits.MaxPduBytes).
		Msg("pdu inspection server listening")
	return s.router.Run(s.Addr)
}

// requireToken rejects requests whose bearer token the validator refuses.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := auth.BearerToken(c.GetHeader("Authorization"))
		if err := s.auth.Validate(token); err != nil {
			log.Warn().Str("server", s.Name).Str("path", c.Request.URL.Path).Msg("unauthorized pdu request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_kind": "unauthorized"})
			return
		}
		c.Next()
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
