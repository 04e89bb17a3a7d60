package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"smsledger/internal/domain/heuristic"
	"smsledger/internal/domain/ingest"
	"smsledger/internal/domain/notification"
	"smsledger/internal/domain/rule"
	"smsledger/internal/domain/transaction"
	"smsledger/internal/infrastructure/firebase"
	"smsledger/internal/infrastructure/gcs"
	"smsledger/internal/infrastructure/postgres"
	"smsledger/internal/infrastructure/postgres/listener"
	httphandlers "smsledger/internal/interfaces/http"
	"smsledger/internal/interfaces/scheduler"
	"smsledger/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	RuleStore    *rule.Store
	Pool         *scheduler.WorkerPool
	RuleListener *listener.RuleListener
	RuleSync     *scheduler.RuleSync // nil unless RULES_SYNC_ENABLED

	// Handlers
	MessageHandler *httphandlers.MessageHandler
	PendingHandler *httphandlers.PendingHandler
	RuleHandler    *httphandlers.RuleHandler
	DeviceHandler  *httphandlers.DeviceHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	connStr := cfg.Database.ConnectionString()
	db, err := postgres.New(connStr, postgres.DefaultPool)
	if err != nil {
		return nil, err
	}
	if err := db.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Connected to database")

	loc, err := time.LoadLocation(cfg.Rules.Location)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load rules location: %w", err)
	}

	// Repositories
	kv := postgres.NewKVStore(db)
	pendingRepo := postgres.NewPendingRepository(kv)
	ruleRepo := postgres.NewRuleRepository(db, kv)
	deviceRepo := postgres.NewDeviceRepository(db)

	// Outbound messaging
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, deviceRepo.DeactivateToken, log)
		if err != nil {
			db.Close()
			return nil, err
		}
		messenger = fcm
		log.Info().Msg("Firebase messaging enabled")
	} else {
		log.Warn().Msg("FIREBASE_CREDENTIALS_FILE not set, notifications are logged only")
	}
	notificationService := notification.NewService(deviceRepo, messenger, notification.NewFormatter(cfg.Ingest.CurrencySymbol), log)

	// Parsing core
	ruleStore := rule.NewStore(ruleRepo, rule.BundledDocument(), log)
	builder := transaction.NewBuilder()
	engine := rule.NewEngine(ruleStore, builder, loc, log)

	var fallback ingest.Classifier
	if cfg.Ingest.LegacyFallback {
		fallback = heuristic.NewClassifier(builder)
	}

	ingestService := ingest.NewService(engine, fallback, pendingRepo, notificationService, ingest.Config{
		LegacyFallback:   cfg.Ingest.LegacyFallback,
		MinMessageLength: cfg.Ingest.MinMessageLength,
	}, log)
	pendingService := transaction.NewPendingService(pendingRepo, notificationService, log)

	pool := scheduler.NewWorkerPool(cfg.Ingest.WorkerCount, cfg.Ingest.JobDelay, cfg.Ingest.QueueSize, log)
	ruleListener := listener.NewRuleListener(connStr, postgres.RuleUpdateChannel, ruleStore, log)

	var ruleSync *scheduler.RuleSync
	if cfg.Rules.SyncEnabled {
		remote, err := gcs.NewRuleSource(cfg.Rules.RemoteURL, cfg.Firebase.CredentialsFile)
		if err != nil {
			db.Close()
			return nil, err
		}
		ruleSync = scheduler.NewRuleSync(remote, ruleStore, log)
	}

	return &Dependencies{
		DB:             db,
		RuleStore:      ruleStore,
		Pool:           pool,
		RuleListener:   ruleListener,
		RuleSync:       ruleSync,
		MessageHandler: httphandlers.NewMessageHandler(ingestService, pool),
		PendingHandler: httphandlers.NewPendingHandler(pendingService),
		RuleHandler:    httphandlers.NewRuleHandler(ruleStore),
		DeviceHandler:  httphandlers.NewDeviceHandler(notificationService),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
