// Package server wires the broker together: HTTP bootstrap, websocket
// endpoint, simulator UI hosting, health and metrics.
package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/glasskit/broker/internal/api/middleware"
	"github.com/glasskit/broker/internal/catalog"
	"github.com/glasskit/broker/internal/config"
	"github.com/glasskit/broker/internal/logging"
	"github.com/glasskit/broker/internal/monitoring"
	"github.com/glasskit/broker/internal/pairing"
	"github.com/glasskit/broker/internal/registry"
	"github.com/glasskit/broker/internal/relay"
	"github.com/glasskit/broker/internal/session"
	"github.com/glasskit/broker/internal/ws"
)

// Server hosts the pairing broker
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	registry *registry.Registry
	manager  *session.Manager
	metrics  *monitoring.Metrics
	catalog  *catalog.Catalog
	httpSrv  *http.Server
}

// New builds the broker from configuration
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.New()
	reg := registry.New()
	manager := session.NewManager(reg, cat, pairing.New(), log.Named("session"), metrics)
	router := relay.NewRouter(reg, log.Named("relay"), metrics)
	wsHandler := ws.NewHandler(manager, router, log.Named("ws"), metrics)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: reg,
		manager:  manager,
		metrics:  metrics,
		catalog:  cat,
	}

	engine.GET("/health", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/models", s.models)
	engine.GET("/ws", wsHandler.HandleConnection)

	s.mountStatic(engine)

	s.httpSrv = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: engine,
	}
	return s, nil
}

// Run blocks serving HTTP until Shutdown or a listener error
func (s *Server) Run() error {
	s.log.Info("broker listening",
		zap.String("addr", s.cfg.Server.Addr()),
		zap.String("static_dir", s.cfg.Server.StaticDir))

	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains the HTTP server. Live websockets are torn down by
// their read loops when the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// health reports broker liveness plus a metrics snapshot
func (s *Server) health(c *gin.Context) {
	snapshot := s.metrics.GetSnapshot()

	body := gin.H{
		"status":  "ok",
		"model":   s.manager.SelectedModel(),
		"roles":   s.registry.CountByRole(),
		"metrics": snapshot,
	}
	if binding, ok := s.manager.Binding(); ok {
		body["binding"] = gin.H{
			"id":          binding.ID,
			"simulator":   binding.SimulatorID.String(),
			"application": binding.ApplicationID.String(),
		}
	}
	c.JSON(http.StatusOK, body)
}

// models lists the capability catalog
func (s *Server) models(c *gin.Context) {
	ids := s.catalog.Models()

	entries := make([]gin.H, 0, len(ids))
	for _, modelID := range ids {
		entry, _ := s.catalog.Get(modelID)
		entries = append(entries, gin.H{
			"id":           entry.ID,
			"name":         entry.DisplayName,
			"capabilities": entry.Capabilities,
		})
	}
	c.JSON(http.StatusOK, gin.H{"models": entries, "default": catalog.DefaultModel})
}

// mountStatic serves the built simulator UI with an index.html
// fallback for client-side routes. Skipped when the directory is
// absent.
func (s *Server) mountStatic(engine *gin.Engine) {
	dir := s.cfg.Server.StaticDir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.log.Info("static dir not found, UI hosting disabled", zap.String("dir", dir))
		return
	}

	index := filepath.Join(dir, "index.html")
	engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusNotFound)
			return
		}

		path := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
		c.File(index)
	})
}
