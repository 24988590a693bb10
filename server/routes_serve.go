// routes_serve.go - Server-Start und Lifecycle-Management
// Enthaelt: Serve() - Hauptfunktion zum Starten des HTTP-Servers

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/attnviz/attnviz/envconfig"
	"github.com/attnviz/attnviz/logutil"
	"github.com/attnviz/attnviz/store"
	"github.com/attnviz/attnviz/transformer"
	"github.com/attnviz/attnviz/version"
)

// Serve startet den HTTP-Server auf ln und blockiert bis SIGINT/SIGTERM
func Serve(ln net.Listener) error {
	level := envconfig.LogLevel()
	slog.SetDefault(logutil.NewLogger(os.Stderr, level))
	slog.Info("server config", "env", envconfig.Values())

	if level > slog.LevelDebug && mode == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	model, err := transformer.New(transformer.ConfigFromEnvironment())
	if err != nil {
		return err
	}

	cfg := model.Config()
	slog.Info("model loaded", "d_model", cfg.DModel, "nhead", cfg.NHead, "head_dim", cfg.HeadDim(), "dim_feedforward", cfg.DimFeedforward, "dropout", cfg.Dropout)

	var history *store.Store
	if !envconfig.NoHistory() {
		history = &store.Store{DBPath: envconfig.History()}
		defer history.Close()
		slog.Info("run history enabled", "path", history.DBPath)
	}

	s := New(ln.Addr(), model, history)

	h, err := s.GenerateRoutes()
	if err != nil {
		return err
	}

	ctx, done := context.WithCancel(context.Background())

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	srvr := &http.Server{Handler: h}

	// listen for a ctrl+c
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		srvr.Close()
		done()
	}()

	err = srvr.Serve(ln)
	// If server is closed from the signal handler, wait for the ctx to be done
	// otherwise error out quickly
	if !slices.Contains([]error{http.ErrServerClosed}, err) {
		return err
	}
	<-ctx.Done()
	return nil
}
