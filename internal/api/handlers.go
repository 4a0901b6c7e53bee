package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trade-parser-bot/internal/engine"
)

// ParseRequest is the body of POST /api/v1/parse.
type ParseRequest struct {
	Text             string `json:"text" binding:"required"`
	ReferenceDate    string `json:"reference_date"`    // YYYY-MM-DD, defaults to today
	DefaultTimeframe string `json:"default_timeframe"` // defaults to engine config
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"storage": s.store.Name(),
	})
}

// handleParse runs one message through the engine and returns the envelope
// verbatim. The endpoint never persists; it is the engine as a service.
func (s *Server) handleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	refDate := time.Now().UTC()
	if req.ReferenceDate != "" {
		parsed, err := time.Parse(time.DateOnly, req.ReferenceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference_date must be YYYY-MM-DD"})
			return
		}
		refDate = parsed
	}

	requestID := uuid.NewString()
	result := s.engine.Process(engine.RawMessage{
		Text:             req.Text,
		ReferenceDate:    refDate,
		DefaultTimeframe: req.DefaultTimeframe,
	})

	s.logger.Info().
		Str("request_id", requestID).
		Str("class", result.Class.String()).
		Int("trades", len(result.Envelope.Trades)).
		Int("dropped", result.Dropped).
		Msg("parse request handled")

	if s.hub != nil {
		s.hub.BroadcastJSON(result.Envelope)
	}

	c.Header("X-Request-ID", requestID)
	c.JSON(http.StatusOK, result.Envelope)
}

func (s *Server) handleSymbolStats(c *gin.Context) {
	symbol := c.Param("symbol")
	count, err := s.counter.CountBySymbol(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "stored_rows": count})
}
