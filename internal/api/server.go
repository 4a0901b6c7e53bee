// Package api exposes the normalization engine over HTTP: a parse endpoint,
// a health check, and a websocket feed of produced envelopes.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"trade-parser-bot/config"
	"trade-parser-bot/internal/auth"
	"trade-parser-bot/internal/database"
	"trade-parser-bot/internal/engine"
)

// SymbolCounter reports how many rows are stored for a symbol; satisfied by
// the Postgres repository.
type SymbolCounter interface {
	CountBySymbol(ctx context.Context, symbol string) (int, error)
}

// Server is the HTTP API server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	engine     *engine.Engine
	store      database.TradeStore
	counter    SymbolCounter
	hub        *WSHub
	config     config.ServerConfig
	jwtManager *auth.JWTManager
	logger     zerolog.Logger
}

// NewServer creates the API server. jwtManager may be nil when auth is
// disabled; counter may be nil when the storage backend cannot count.
func NewServer(
	cfg config.ServerConfig,
	eng *engine.Engine,
	store database.TradeStore,
	counter SymbolCounter,
	hub *WSHub,
	jwtManager *auth.JWTManager,
	logger zerolog.Logger,
) *Server {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:     router,
		engine:     eng,
		store:      store,
		counter:    counter,
		hub:        hub,
		config:     cfg,
		jwtManager: jwtManager,
		logger:     logger.With().Str("component", "APIServer").Logger(),
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	v1 := s.router.Group("/api/v1")
	if s.jwtManager != nil {
		v1.Use(auth.Middleware(s.jwtManager))
	}
	v1.POST("/parse", s.handleParse)
	if s.counter != nil {
		v1.GET("/stats/:symbol", s.handleSymbolStats)
	}
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("API server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Router returns the underlying router; used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}
