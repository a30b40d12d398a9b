// Command raknetd runs the RakNet transport server standalone, grounded
// on ventosilenzioso-go-raknet's core/main.go: a startup banner, config
// load, a server goroutine, and a wait on OS signals for graceful
// shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ventosilenzioso/raknet-go/internal/config"
	"github.com/ventosilenzioso/raknet-go/internal/server"
	"github.com/ventosilenzioso/raknet-go/pkg/logger"
)

const version = "0.1.0"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		cfg = config.Default()
	}

	logger.Init(cfg.LogLevel, cfg.LogPath)
	logger.Banner("RakNet Transport Server", version)

	logger.Infof("binding %s:%d", cfg.BindHost, cfg.BindPort)
	logger.Infof("max players: %d", cfg.MaxPlayers)
	logger.Infof("server name: %s", cfg.MOTD.ServerName)
	logger.Infof("world: %s (%s)", cfg.MOTD.WorldName, cfg.MOTD.GameMode)

	srv, err := server.New(cfg)
	if err != nil {
		logger.Fatalf("bind failed: %v", err)
	}

	go serveMetrics(cfg.MetricsAddr)

	ctx, cancel := context.WithCancel(context.Background())
	go drainEvents(srv)
	go srv.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan
	logger.Warnf("received signal: %v", sig)
	logger.Infof("shutting down gracefully...")

	cancel()
	time.Sleep(200 * time.Millisecond) // let Run drain its disconnect datagrams

	logger.Infof("server stopped")
}

// drainEvents logs upward transport events. A real game layer would
// instead dispatch these into its own entity/session bookkeeping; this
// binary has none, so it only observes.
func drainEvents(srv *server.Server) {
	for ev := range srv.Events() {
		switch ev.Kind {
		case server.EventSessionOpened:
			logger.Infof("session %s connected from %s", ev.TraceID, ev.Peer)
		case server.EventSessionClosed:
			logger.Infof("session %s disconnected (%s)", ev.TraceID, ev.Reason)
		case server.EventPayloadReceived:
			logger.Debugf("session %s payload: %d bytes", ev.TraceID, len(ev.Payload))
		}
	}
}

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warnf("metrics server stopped: %v", err)
	}
}
