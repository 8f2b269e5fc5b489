// Command venue wires the matching core (internal/core) to the adapter
// stack (A4-A7) and serves it over HTTP + WebSocket, following the graceful
// shutdown shape of the teacher's cmd/server/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	adapterconfig "github.com/ionex-markets/matchcore/internal/adapter/config"
	"github.com/ionex-markets/matchcore/internal/adapter/persistence"
	"github.com/ionex-markets/matchcore/internal/adapter/rest"
	"github.com/ionex-markets/matchcore/internal/adapter/wsfeed"
	"github.com/ionex-markets/matchcore/internal/core/types"
	"github.com/ionex-markets/matchcore/internal/core/venue"
	"github.com/ionex-markets/matchcore/pkg/matchingengine"
)

const (
	appName    = "matchcore"
	appVersion = "v1.0.0"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration directory")
		version    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s %s\n", appName, appVersion)
		os.Exit(0)
	}

	cfg, err := adapterconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := adapterconfig.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to snapshot store", zap.Error(err))
	}
	snapshots := persistence.NewSnapshotRepository(db, logger)
	if err := snapshots.Migrate(context.Background()); err != nil {
		logger.Fatal("failed to migrate snapshot store", zap.Error(err))
	}

	v := venue.New()
	if snap, found, err := snapshots.GetLatest(context.Background()); err != nil {
		logger.Fatal("failed to load latest snapshot", zap.Error(err))
	} else if found {
		if err := v.LoadSnapshot(snap); err != nil {
			logger.Fatal("failed to restore venue from snapshot", zap.Error(err))
		}
		logger.Info("restored venue from snapshot")
	} else {
		for _, inst := range cfg.Instruments {
			if err := v.AddInstrument(types.InstrumentID(inst.ID), inst.Symbol); err != nil {
				logger.Fatal("failed to seed instrument", zap.Error(err), zap.Uint64("instrument_id", inst.ID))
			}
		}
		logger.Info("seeded venue from configuration", zap.Int("instrument_count", len(cfg.Instruments)))
	}

	locked := matchingengine.NewLocked(v)
	gate := rest.NewGate()
	hub := wsfeed.NewHub(logger)

	router := rest.NewRouter(rest.NewHandler(locked, gate, logger, hub))
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		hub.HandleConnection(conn)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if err := snapshots.Create(context.Background(), v.Snapshot()); err != nil {
		logger.Error("failed to persist final snapshot", zap.Error(err))
	}

	logger.Info("stopped")
}
