package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parkwash/backend/libs/db"
	libredis "parkwash/backend/libs/redis"
	"parkwash/backend/services/parking-service/internal/config"
	httpserver "parkwash/backend/services/parking-service/internal/http"
	"parkwash/backend/services/parking-service/internal/http/handlers"
	"parkwash/backend/services/parking-service/internal/live"
	"parkwash/backend/services/parking-service/internal/metrics"
	"parkwash/backend/services/parking-service/internal/pricing"
	redisstore "parkwash/backend/services/parking-service/internal/redis"
	"parkwash/backend/services/parking-service/internal/repository"
	"parkwash/backend/services/parking-service/internal/service"
)

const (
	migrateTimeout   = 30 * time.Second
	liveWriteTimeout = 10 * time.Second
)

// App wires parking-service dependencies.
type App struct {
	server      *httpserver.Server
	sessions    *service.SessionService
	hub         *live.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	hourly, daily, err := cfg.DefaultRates()
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := db.Migrate(ctx, sqlDB, repository.Migrations); err != nil {
		sqlDB.Close()
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(libredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	customerRepo := repository.NewCustomerRepository(sqlDB)
	carRepo := repository.NewCarRepository(sqlDB)
	zoneRepo := repository.NewZoneRepository(sqlDB)
	rateRepo := repository.NewRateRepository(sqlDB)
	sessionRepo := repository.NewSessionRepository(sqlDB)
	transactionRepo := repository.NewTransactionRepository(sqlDB)

	rateService, err := service.NewRateService(rateRepo, hourly, daily, cfg.Billing.RateCacheSize, logger)
	if err != nil {
		sqlDB.Close()
		redisClient.Close()
		return nil, fmt.Errorf("init rate service: %w", err)
	}

	openSessions := redisstore.NewStore(redisClient)
	slotLocker := redisstore.NewSlotLocker(redisClient, cfg.SlotLockTTL())
	sessionService := service.NewSessionService(
		sessionRepo,
		rateService,
		slotLocker,
		openSessions,
		pricing.NewCalculator(nil),
		logger,
	)

	ranges := service.RangeParser{Location: loc}
	transactionService := service.NewTransactionService(transactionRepo, ranges)
	dashboardService := service.NewDashboardService(transactionRepo, sessionRepo, ranges, logger)

	hub := live.NewHub(sessionService, cfg.LiveInterval(), logger)
	liveServer := live.NewServer(hub, liveWriteTimeout, logger)

	routes := httpserver.Routes{
		Health:       handlers.NewHealthHandler(),
		Metrics:      metrics.Handler(),
		Live:         liveServer.HandleWS,
		Customers:    handlers.NewCustomersHandler(service.NewCustomerService(customerRepo, logger), logger),
		Cars:         handlers.NewCarsHandler(service.NewCarService(carRepo, logger), logger),
		Zones:        handlers.NewZonesHandler(service.NewZoneService(zoneRepo, logger), logger),
		Rates:        handlers.NewRatesHandler(rateService, logger),
		Sessions:     handlers.NewSessionsHandler(sessionService, logger),
		Transactions: handlers.NewTransactionsHandler(transactionService, logger),
		Transaction:  handlers.NewTransactionHandler(transactionService, logger),
		Dashboard:    handlers.NewDashboardHandler(dashboardService, logger),
	}

	router := httpserver.NewRouter(routes, cfg.JWT.Secret, logger)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		sessions:    sessionService,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run rebuilds the open-session cache, starts the live feed and serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.sessions.WarmCache(ctx); err != nil {
		a.logger.Warn("failed to warm open-session cache", zap.Error(err))
	}

	go a.hub.Start(ctx)

	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
