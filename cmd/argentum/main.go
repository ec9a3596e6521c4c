// Command argentum runs a scripted game between two starter decks, records its
// replay and verifies the replay reproduces the game.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wingedsheep/argentum-engine/internal/config"
	"github.com/wingedsheep/argentum-engine/internal/game"
	"github.com/wingedsheep/argentum-engine/internal/persist"
	"github.com/wingedsheep/argentum-engine/internal/registry"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	seed       = flag.Uint64("seed", 1, "library shuffle seed")
	maxActions = flag.Int("max-actions", 2000, "stop the demo game after this many actions")
	verify     = flag.String("verify", "", "verify the saved replay of this game id and exit")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting argentum",
		zap.String("version", version),
		zap.String("config", *configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	providers := []registry.SetProvider{registry.Starter()}
	for _, path := range cfg.Registry.Sets {
		providers = append(providers, &registry.File{Path: path})
	}
	reg, err := registry.New(logger.Named("registry"), providers...)
	if err != nil {
		return fmt.Errorf("load card registry: %w", err)
	}

	engine := game.NewEngine(reg, logger.Named("engine"), game.Config{
		StartingLife:     cfg.Engine.StartingLife,
		StartingHandSize: cfg.Engine.StartingHandSize,
		MaxHandSize:      cfg.Engine.MaxHandSize,
		MaxIterations:    cfg.Engine.MaxIterations,
		CheckInvariants:  cfg.Engine.CheckInvariants,
	})
	recorder := game.NewReplayRecorder(logger.Named("replay"), cfg.Replay.Directory)
	engine.SetRecorder(recorder)

	if *verify != "" {
		return verifyReplay(engine, recorder, logger, *verify)
	}

	var store *persist.SnapshotStore
	if cfg.Database.Enabled {
		db, err := persist.NewDB(ctx, cfg.Database, logger.Named("db"))
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return err
		}
		store = persist.NewSnapshotStore(db)
	}

	d := &demo{engine: engine, store: store, logger: logger.Named("demo")}
	setup, err := d.setup(reg, *seed)
	if err != nil {
		return err
	}
	st, err := engine.NewGame(setup)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	final, err := d.play(ctx, st, *maxActions)
	if err != nil {
		return err
	}

	if err := recorder.SaveReplay(final.ID()); err != nil {
		return err
	}
	return verifyReplay(engine, recorder, logger, final.ID())
}

func verifyReplay(engine *game.Engine, recorder *game.ReplayRecorder, logger *zap.Logger, gameID string) error {
	replay, err := recorder.LoadReplay(gameID)
	if err != nil {
		return err
	}
	st, err := engine.Play(replay)
	if err != nil {
		return fmt.Errorf("verify replay: %w", err)
	}
	logger.Info("Replay verified",
		zap.String("game", gameID),
		zap.Int("actions", replay.Size()),
		zap.Int("turn", st.Turn().Number),
		zap.String("winner", string(st.Winner())))
	return nil
}

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
