// Package server - HTTP-Backend fuer attnviz
// Beinhaltet: Server-Struct, Router-Registrierung, Middleware
package server

import (
	"net"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/attnviz/attnviz/envconfig"
	"github.com/attnviz/attnviz/store"
	"github.com/attnviz/attnviz/transformer"
	"github.com/attnviz/attnviz/version"
)

var mode string = gin.DebugMode

// Server haelt das Modell und die optionale Run-History
type Server struct {
	addr  net.Addr
	model *transformer.Transformer

	// history ist nil, wenn ATTNVIZ_NOHISTORY gesetzt ist
	history *store.Store

	// runs der Browser-Ansicht, damit ein Head-Wechsel nicht neu rechnet
	runs *runCache
}

// New creates a server around model. history may be nil.
func New(addr net.Addr, model *transformer.Transformer, history *store.Store) *Server {
	return &Server{addr: addr, model: model, history: history, runs: newRunCache(viewRunsCap)}
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() (http.Handler, error) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(
		cors.New(corsConfig),
		allowedHostsMiddleware(s.addr),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "attnviz is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "attnviz is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Inference
	r.GET("/api/health", s.HealthHandler)
	r.POST("/api/process", s.ProcessHandler)

	// History
	r.GET("/api/history", s.HistoryHandler)
	r.GET("/api/history/:id", s.RunHandler)

	// Browser view
	r.GET("/view", s.ViewHandler)
	r.GET("/view/heatmap.svg", s.HeatmapHandler)
	r.GET("/view/diagram.svg", s.DiagramHandler)

	return r, nil
}
