package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/rpsarena/rps-arena-go/internal/dependencies/clock"
	"github.com/rpsarena/rps-arena-go/internal/dependencies/random"
	"github.com/rpsarena/rps-arena-go/internal/notify"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
	"github.com/rpsarena/rps-arena-go/internal/services/match"
	"github.com/rpsarena/rps-arena-go/internal/services/ranking"
	"github.com/rpsarena/rps-arena-go/internal/services/rounds"
	"github.com/rpsarena/rps-arena-go/internal/sse"
	"github.com/rpsarena/rps-arena-go/internal/storage"
	"github.com/rpsarena/rps-arena-go/internal/storage/memory"
	"github.com/rpsarena/rps-arena-go/internal/storage/postgres"
	redisstorage "github.com/rpsarena/rps-arena-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RoundLedger     *rounds.Ledger
	MatchController *match.Controller
	AuthService     *auth.Service
	RankingService  *ranking.Service

	// Realtime
	HubManager  *sse.HubManager
	GlobalHub   *sse.Hub
	Broadcaster *notify.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the Postgres DSN (required if StorageType is "postgres")
	DatabaseURL string
	// BroadcastInterval is how often the global lists are re-published
	// If zero, defaults to notify.DefaultBroadcastInterval
	BroadcastInterval time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		pgStore, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	clk := clock.New()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if authCfg.TokenDuration == 0 && authCfg.Secret == "" {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, cfg.BroadcastInterval, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	broadcastInterval time.Duration,
	logger *slog.Logger,
) *App {
	ledger := rounds.NewLedger(store, logger)
	matchController := match.NewController(store, ledger, clk, rnd, logger)
	authService := auth.New(store, clk, authCfg)
	rankingService := ranking.New(store, logger)

	hubManager := sse.NewHubManager(logger)
	globalHub := sse.NewHub("global", logger)
	go globalHub.Run()

	broadcaster := notify.NewBroadcaster(
		hubManager, globalHub, store, rankingService, broadcastInterval, logger,
	)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		RoundLedger:     ledger,
		MatchController: matchController,
		AuthService:     authService,
		RankingService:  rankingService,
		HubManager:      hubManager,
		GlobalHub:       globalHub,
		Broadcaster:     broadcaster,
	}
}
