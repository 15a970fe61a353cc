package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fourfront/fourfront-server/internal/config"
	"github.com/fourfront/fourfront-server/internal/game"
	"github.com/fourfront/fourfront-server/internal/game/templates"
	"github.com/fourfront/fourfront-server/internal/match"
	"github.com/fourfront/fourfront-server/internal/server"
	"github.com/fourfront/fourfront-server/internal/telemetry"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting fourfront server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to set up telemetry", zap.Error(err))
	}

	// Templates are shared read-only by every match
	catalog, err := loadCatalog(cfg.Game.TemplatesDir)
	if err != nil {
		logger.Fatal("failed to load templates", zap.String("dir", cfg.Game.TemplatesDir), zap.Error(err))
	}
	logger.Info("templates loaded",
		zap.Int("units", len(catalog.Units)),
		zap.Int("buildings", len(catalog.Buildings)),
		zap.Int("cards", len(catalog.Cards)),
	)

	manager := match.NewManager(catalog, matchOptions(cfg.Game), nil, nil, logger)
	hub := server.NewHub(manager, cfg.Server.HTTP, cfg.Game.MaxNameLength, logger)
	manager.SetRouter(hub)
	manager.StartCleanup(ctx, cfg.Game.CleanupInterval)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTP.Address,
		Handler:           server.NewRouter(hub, manager, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.HTTP.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
			stop()
		}
	}()

	var ops *server.OpsServer
	if cfg.Server.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
		if err != nil {
			logger.Fatal("failed to listen", zap.String("address", cfg.Server.GRPC.Address), zap.Error(err))
		}
		ops = server.NewOpsServer(logger)
		go func() {
			if serveErr := ops.Serve(lis); serveErr != nil {
				logger.Error("gRPC server error", zap.Error(serveErr))
			}
		}()
	}

	logger.Info("fourfront server initialized",
		zap.String("version", version),
		zap.String("http_address", cfg.Server.HTTP.Address),
		zap.Bool("grpc_enabled", cfg.Server.GRPC.Enabled),
		zap.Int("field_size", cfg.Game.FieldSize),
		zap.Duration("turn_length", cfg.Game.TurnLength),
	)

	// Wait for termination signal
	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if ops != nil {
		ops.Stop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	for _, s := range manager.List() {
		if s.Status == match.StatusRunning.String() {
			_ = manager.Remove(s.ID)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown incomplete", zap.Error(err))
	}

	logger.Info("fourfront server stopped")
}

func loadCatalog(dir string) (*templates.Catalog, error) {
	if dir == "" {
		return templates.LoadBuiltin()
	}
	return templates.LoadDir(dir)
}

// matchOptions maps the game config onto match rules. Each match draws
// its own shuffle seed.
func matchOptions(cfg config.GameConfig) match.Options {
	opts := game.DefaultOptions()
	opts.FieldSize = cfg.FieldSize
	opts.HandLimit = cfg.HandLimit
	opts.OpeningHand = cfg.OpeningHand
	opts.StartingMoney = cfg.StartingMoney
	opts.StartingEnergy = cfg.StartingEnergy
	opts.DeckCopies = cfg.DeckCopies
	opts.Seed = 0
	return match.Options{Game: opts, TurnLength: cfg.TurnLength, Retention: cfg.MatchRetention}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
