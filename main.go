package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/wordrace/config"
	"github.com/wfunc/wordrace/logger"
	"github.com/wfunc/wordrace/monitor"
	"github.com/wfunc/wordrace/persistence"
	"github.com/wfunc/wordrace/room"
	"github.com/wfunc/wordrace/rpc"
	"github.com/wfunc/wordrace/server"
	"github.com/wfunc/wordrace/services"
	"github.com/wfunc/wordrace/timer"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		logger.Log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Finished-game archive
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if cfg.Database.Driver != config.DriverNone {
		logger.Log.Infof("Archiving finished games with driver %q", cfg.Database.Driver)
	}

	mon := monitor.NewMonitor("wordrace")
	mon.StartServer(cfg.Server.MetricsAddress)

	rooms := room.NewRoomManager()
	timers := timer.NewTimerManager(0)
	defer timers.Stop()

	gameService := services.NewGameService(rooms, services.Settings{
		DefaultRounds:     cfg.Game.DefaultRounds,
		DefaultTimeLimit:  cfg.Game.DefaultTimeLimit,
		DefaultCategories: cfg.Game.DefaultCategories,
		LetterDelay:       cfg.Game.LetterDelay,
		SweepInterval:     cfg.Game.SweepInterval,
		FinishedRoomTTL:   cfg.Game.FinishedRoomTTL,
	},
		services.WithScheduler(timers),
		services.WithArchive(db),
		services.WithMetrics(mon),
	)

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, gameService, mon)
	gameService.Start()

	// Admin RPC
	adminServer, err := rpc.NewServer(cfg.Server.RPCAddress, rpc.NewAdminService(rooms, db))
	if err != nil {
		logger.Log.Fatalf("Failed to start admin RPC: %v", err)
	}
	go adminServer.Start()

	health, err := rpc.NewHealthServer(cfg.Server.HealthAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to start health server: %v", err)
	}
	go health.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- gameServer.Start()
	}()
	health.SetServing(true)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Log.Infof("Received %s, shutting down", s)
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("Game server stopped: %v", err)
		}
	}

	health.SetServing(false)
	gameService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Warnf("Game server shutdown: %v", err)
	}
	adminServer.Stop()
	health.Stop()
	if err := mon.Stop(); err != nil {
		logger.Log.Warnf("Metrics server shutdown: %v", err)
	}
	logger.Log.Info("Shutdown complete")
}
