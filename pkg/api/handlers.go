// Package api serves course-section autocomplete over HTTP with gin.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/bastiangx/courseserve/internal/logger"
	"github.com/bastiangx/courseserve/internal/utils"
	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/config"
	"github.com/bastiangx/courseserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageSuccess and MessageBadQuery are the fixed response messages.
const (
	MessageSuccess  = "success"
	MessageBadQuery = "Incorrect query parameters"
)

// AutocompleteResponse is the body of a successful lookup.
type AutocompleteResponse struct {
	Message string           `json:"message"`
	Data    []catalog.Record `json:"data"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness and graph statistics.
type HealthResponse struct {
	Status string         `json:"status"`
	Graph  map[string]int `json:"graph"`
}

// Handlers holds the dependencies of the HTTP endpoints.
type Handlers struct {
	completer suggest.ICompleter
	cfg       *config.Live
	logger    *log.Logger
}

// NewHandlers creates handlers over completer. cfg is read on every request.
func NewHandlers(completer suggest.ICompleter, cfg *config.Live) *Handlers {
	return &Handlers{
		completer: completer,
		cfg:       cfg,
		logger:    logger.New("api"),
	}
}

// HandleAutocomplete handles GET /api/autocomplete.
//
// Query Parameters:
//
//	input: free text; when present every other parameter is ignored
//	prefix, number, professorName, sectionNumber: structured fields
//	limit: required with fields, a positive integer
//
// Response:
//
//	200 OK: AutocompleteResponse
//	400 Bad Request: ErrorResponse{"Incorrect query parameters"}
func (h *Handlers) HandleAutocomplete(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	cfg := h.cfg.Get()

	q, err := catalog.ParseValues(c.Request.URL.Query())
	if err == nil && q.Raw && utils.TooLong(q.Input, cfg.Server.MaxInput) {
		err = &catalog.InvalidQueryError{Reason: "input too long"}
	}
	if err != nil {
		h.logger.Debug("Rejected query", "request_id", requestID, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: MessageBadQuery})
		return
	}
	if !q.Raw && q.Limit > cfg.Server.MaxLimit {
		q.Limit = cfg.Server.MaxLimit
	}

	start := time.Now()
	records, err := h.completer.Resolve(c.Request.Context(), q, min(cfg.Search.RawLimit, cfg.Server.MaxLimit))
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: MessageBadQuery})
			return
		}
		h.logger.Error("Autocomplete failed", "request_id", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
		return
	}

	if records == nil {
		records = []catalog.Record{}
	}
	h.logger.Debug("Autocomplete",
		"request_id", requestID,
		"raw", q.Raw,
		"results", len(records),
		"took", time.Since(start))
	c.JSON(http.StatusOK, AutocompleteResponse{Message: MessageSuccess, Data: records})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Graph: h.completer.Stats()})
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	c.Set(requestIDKey, requestID)
	return requestID
}
