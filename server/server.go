// Package server is the thin transport layer: it marshals HTTP requests to
// the orchestrator and renders its output. No domain logic lives here.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
	ledgerx "github.com/vinayakrana/Hotel-Chat-BE/agent/ledger"
	orchestratorx "github.com/vinayakrana/Hotel-Chat-BE/agent/orchestrator"
	toolx "github.com/vinayakrana/Hotel-Chat-BE/agent/tool"
)

type Config struct {
	Port            string        `envconfig:"PORT" split_words:"true" default:"8000"`
	Mode            string        `envconfig:"MODE" split_words:"true" default:"release"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

// Exchanger is the orchestrator surface the transport needs.
type Exchanger interface {
	Exchange(ctx context.Context, caller contractx.Identity, text string) (orchestratorx.Result, error)
}

type Server struct {
	cfg          Config
	identities   contractx.IdentityResolver
	orchestrator Exchanger
	ledger       *ledgerx.Ledger
	catalog      *toolx.Catalog
	modelReady   bool

	engine *gin.Engine
}

func New(
	cfg Config,
	identities contractx.IdentityResolver,
	orchestrator Exchanger,
	ledger *ledgerx.Ledger,
	catalog *toolx.Catalog,
	modelReady bool,
) (*Server, error) {
	if identities == nil {
		return nil, errors.New("identity resolver is required")
	}
	if orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}

	if mode := strings.TrimSpace(cfg.Mode); mode != "" {
		gin.SetMode(mode)
	}

	s := &Server{
		cfg:          cfg,
		identities:   identities,
		orchestrator: orchestrator,
		ledger:       ledger,
		catalog:      catalog,
		modelReady:   modelReady,
	}
	s.engine = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, headerUserEmail)
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)
	r.GET("/rooms", s.handleRooms)

	authed := r.Group("/", s.Authenticate())
	authed.POST("/chat", s.handleChat)
	authed.GET("/bookings", s.handleBookings)
	authed.GET("/agent-info", s.handleAgentInfo)

	return r
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strings.TrimPrefix(s.cfg.Port, ":"),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	log.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
