package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/availability"
	"github.com/Leganyst/booking-engine/internal/checkout"
	"github.com/Leganyst/booking-engine/internal/config"
	"github.com/Leganyst/booking-engine/internal/db"
	"github.com/Leganyst/booking-engine/internal/gateway"
	"github.com/Leganyst/booking-engine/internal/hold"
	"github.com/Leganyst/booking-engine/internal/logging"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/mq"
	"github.com/Leganyst/booking-engine/internal/pricing"
	"github.com/Leganyst/booking-engine/internal/repository"
)

// app holds everything a command needs; build it with openApp and Close it.
type app struct {
	cfg       *config.AppConfig
	dbCfg     *config.DBConfig
	db        *gorm.DB
	store     *repository.GormStore
	holds     *hold.Manager
	orch      *checkout.Orchestrator
	omise     gateway.OmiseAPI
	publisher *mq.Publisher
	log       *logrus.Logger
}

type appOptions struct {
	migrate bool
	// broker connects the event publisher; off for one-shot commands
	broker bool
}

func openApp(opts appOptions) (*app, error) {
	// 1. Конфиг из env.
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	// 2. БД и миграции.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	a := &app{cfg: cfg, dbCfg: dbCfg, db: gormDB, store: repository.NewGormStore(gormDB), log: log}
	if opts.migrate {
		if err := model.AutoMigrate(gormDB); err != nil {
			a.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	// 3. Доменные сервисы.
	engine, err := pricing.NewEngine(cfg.ServiceFeeRate, cfg.TaxRate)
	if err != nil {
		a.Close()
		return nil, err
	}

	// На Postgres блокировки общие для всех реплик и держат одно соединение на
	// операцию: работа под блокировкой идёт в транзакции блокировки.
	// На SQLite хватает процессных.
	locker := hold.Locker(hold.NewKeyedMutex())
	if dbCfg.Driver == config.DriverPostgres {
		locker = hold.NewPGAdvisoryLocker(gormDB)
	}
	a.holds = hold.NewManager(
		a.store.Holds(),
		availability.NewResolver(a.store.Bookings(), a.store.Holds()),
		hold.WithLocker(locker),
		hold.WithLogger(log),
	)

	gw, err := a.gateway()
	if err != nil {
		a.Close()
		return nil, err
	}

	orchOpts := []checkout.Option{checkout.WithLogger(log)}
	if dbCfg.Driver == config.DriverPostgres {
		orchOpts = append(orchOpts, checkout.WithSessionLocker(locker))
	}
	if opts.broker && cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.publisher = pub
		orchOpts = append(orchOpts, checkout.WithPublisher(pub))
	}

	a.orch = checkout.New(a.store, engine, a.holds, gw, checkout.Config{
		HoldTTL:        cfg.HoldTTL,
		PriceTolerance: cfg.PriceTolerance,
		Currency:       cfg.Currency,
		ReturnURL:      cfg.PaymentReturnURL,
	}, orchOpts...)
	return a, nil
}

func (a *app) gateway() (gateway.Adapter, error) {
	switch a.cfg.Gateway {
	case config.GatewayOmise:
		api, err := gateway.NewOmiseAPI(a.cfg.OmisePublicKey, a.cfg.OmiseSecretKey)
		if err != nil {
			return nil, err
		}
		a.omise = api
		return gateway.NewOmise(api, a.cfg.OmiseSourceType), nil
	default:
		return gateway.NewSandbox(a.cfg.SandboxCheckoutBaseURL), nil
	}
}

func (a *app) Close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
