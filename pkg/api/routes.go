package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bastiangx/courseserve/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the API endpoints with the router group.
//
// Endpoints:
//
//	GET  /api/autocomplete - course, professor and section autocomplete
//	GET  /health           - liveness and graph statistics
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	api := rg.Group("/api")
	{
		api.GET("/autocomplete", handlers.HandleAutocomplete)
	}
	rg.GET("/health", handlers.HandleHealth)
}

// NewRouter builds the engine with middleware, the API routes and, when
// enabled, GET /metrics.
func NewRouter(handlers *Handlers, cfg *config.Live) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(), rateLimit(cfg))
	RegisterRoutes(&router.RouterGroup, handlers)
	if cfg.Get().HTTP.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return router
}

// Serve runs router on addr until ctx is canceled, then shuts down within
// http.shutdown_timeout seconds.
func Serve(ctx context.Context, addr string, router http.Handler, cfg *config.Live) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Debugf("HTTP listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := time.Duration(cfg.Get().HTTP.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	log.Debug("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
