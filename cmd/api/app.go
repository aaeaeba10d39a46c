package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/persistence"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	"github.com/spec-kit/helpdesk-sla/internal/worker"
)

type bootstrapOptions struct {
	migrate      bool
	forceMigrate bool
	skipTargets  bool
}

// application holds the wired object graph shared by every command.
type application struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics

	pg    *persistence.Postgres
	redis *persistence.Redis

	customerCache *repository.CachedCustomerRepository
	targetStore   repository.SLATargetRepository

	tickets   *service.TicketService
	customers *service.CustomerService
	sla       *service.SLAService
	monitor   *worker.BreachMonitor
}

func bootstrap(ctx context.Context, opts bootstrapOptions) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return nil, err
	}

	a := &application{cfg: cfg, logger: logger, metrics: observability.NewMetrics()}

	a.pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		a.Close()
		return nil, err
	}

	if err := requirePool(a.pg); err != nil {
		logger.Error("postgres unavailable", zap.Error(err))
		a.Close()
		return nil, err
	}

	if opts.forceMigrate || (opts.migrate && cfg.Postgres.RunMigrations) {
		if err := persistence.RunMigrations(ctx, a.pg.PoolHandle(), logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			a.Close()
			return nil, err
		}
	}

	a.redis = persistence.NewRedis(cfg.Redis, logger)

	pool := a.pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	logRepo := repository.NewTicketLogRepository(pool)
	a.targetStore = repository.NewSLATargetRepository(pool)
	a.customerCache = repository.NewCachedCustomerRepository(repository.NewCustomerRepository(pool), cfg.Cache.CustomerTTL())

	if opts.skipTargets {
		return a, nil
	}

	engine, table, err := buildEngine(ctx, cfg, a.targetStore, logger)
	if err != nil {
		logger.Error("failed to configure sla engine", zap.Error(err))
		a.Close()
		return nil, err
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	a.tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		LogRepo:    logRepo,
		Customers:  a.customerCache,
		Engine:     engine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	a.customers = service.NewCustomerService(a.customerCache)
	a.sla = service.NewSLAService(service.SLADependencies{
		TicketRepo: ticketRepo,
		Engine:     engine,
		Targets:    table,
	})
	a.monitor = worker.NewBreachMonitor(worker.BreachMonitorDependencies{
		Scanner:    a.sla,
		Marker:     a.redis,
		Dispatcher: dispatcher,
		Metrics:    a.metrics,
		Logger:     logger,
		Interval:   cfg.SLA.ScanInterval(),
		DedupeTTL:  cfg.SLA.NotifyDedupeTTL(),
	})
	return a, nil
}

// Every command reads tickets or targets, so running without a pool is a
// startup error.
func requirePool(pg *persistence.Postgres) error {
	if pg.PoolHandle() == nil {
		return errors.New("POSTGRES_DSN is required")
	}
	return nil
}

func buildEngine(ctx context.Context, cfg *config.Config, store repository.SLATargetRepository, logger *zap.Logger) (*sla.Engine, *sla.TargetTable, error) {
	week, err := cfg.SLA.WorkWeek()
	if err != nil {
		return nil, nil, err
	}
	calendar, err := sla.NewCalendar(week)
	if err != nil {
		return nil, nil, fmt.Errorf("business calendar: %w", err)
	}
	envDefault := cfg.SLA.DefaultHours()
	table, err := service.LoadTargetTable(ctx, service.TargetSources{
		Store:      store,
		FilePath:   cfg.SLA.TargetsFile,
		EnvDefault: &envDefault,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return sla.NewEngine(calendar, table), table, nil
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	if a.customerCache != nil {
		a.customerCache.Stop()
	}
	a.redis.Close()
	a.pg.Close()
	_ = a.logger.Sync()
}
