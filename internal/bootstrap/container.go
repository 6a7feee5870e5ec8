package bootstrap

import (
	"context"
	"log"

	"sahayak-be/internal/config"
	"sahayak-be/internal/controller"
	"sahayak-be/internal/mapper"
	"sahayak-be/internal/pkg/logger"
	"sahayak-be/internal/repository/memory"
	"sahayak-be/internal/repository/redisstore"
	"sahayak-be/internal/repository/unitofwork"
	"sahayak-be/internal/service"
	"sahayak-be/internal/websocket"
	"sahayak-be/pkg/dialog/intent"
	pktNats "sahayak-be/pkg/nats"
	"sahayak-be/pkg/scheme"
	"sahayak-be/pkg/session"
	"sahayak-be/pkg/speech"
	"sahayak-be/pkg/speech/gcp"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// archiveTopic is the in-process channel carrying end-of-session archive
// messages from the conversation service to the archive consumer.
const archiveTopic = "session_archive"

type Container struct {
	// Controllers
	AssistantController   controller.IAssistantController
	SchemeAdminController controller.ISchemeAdminController

	// Background Services (Exposed for main.go to run)
	ArchiveService service.IArchiveService
	SweeperService service.ISweeperService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	sessionMapper := mapper.NewSessionMapper()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// Live session store. Redis survives restarts and fans out across
	// replicas; memory is the single-node default.
	var sessionStore service.SweepStore
	if cfg.Session.Store == "redis" {
		sessionStore = redisstore.NewSessionStore(rdb)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionStore = memory.NewSessionStore()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// 3. Services
	publisherService := service.NewPublisherService(archiveTopic, pubSub, sysLogger)
	metricsService := service.NewMetricsService(uowFactory, sessionMapper, sysLogger)

	sessionManager := session.NewManager(
		sessionStore,
		session.WithTTL(cfg.Session.TTL),
		session.WithClock(clockwork.NewRealClock()),
		session.WithRecords(service.NewRecordsLookup(uowFactory, cfg.Session.RetentionDays)),
		session.WithArchiver(publisherService),
		session.WithHooks(session.Hooks{
			ExpiredRead: metricsService.RecordExpiredRead,
		}),
	)

	schemeCache := scheme.NewCache(service.NewSchemeSource(uowFactory))
	if n, err := schemeCache.Warm(context.Background()); err != nil {
		log.Printf("[WARN] Failed to warm scheme cache: %v", err)
	} else {
		log.Printf("[INFO] Scheme cache warmed: %d schemes", n)
	}

	// Speech is optional; text turns work without it.
	var recognizer speech.Recognizer
	var synthesizer speech.Synthesizer
	if cfg.Speech.Enabled {
		if r, err := gcp.NewRecognizer(context.Background()); err != nil {
			log.Printf("[WARN] Failed to initialize speech recognizer: %v", err)
		} else {
			recognizer = r
		}
		if s, err := gcp.NewSynthesizer(context.Background()); err != nil {
			log.Printf("[WARN] Failed to initialize speech synthesizer: %v", err)
		} else {
			synthesizer = s
		}
	}

	schemeService := service.NewSchemeService(uowFactory, schemeCache, natsPub, sysLogger)

	// Cross-replica cache coherence: admin writes anywhere invalidate the
	// cached scheme everywhere.
	if natsSub != nil {
		invalidationService := service.NewInvalidationService(natsSub, schemeCache, sysLogger)
		if err := invalidationService.Start(); err != nil {
			log.Printf("[WARN] Failed to start scheme invalidation listener: %v", err)
		}
	}
	archiveService := service.NewArchiveService(pubSub, archiveTopic, uowFactory, sessionMapper, sysLogger)

	conversationService := service.NewConversationService(
		uowFactory,
		sessionManager,
		schemeCache,
		intent.NewRuleClassifier(),
		wsHub,
		metricsService,
		natsPub,
		recognizer,
		synthesizer,
		cfg,
		sysLogger,
	)

	sweeperService := service.NewSweeperService(
		sessionStore,
		wsHub,
		clockwork.NewRealClock(),
		cfg.Session.SweepInterval,
		cfg.Session.IdleGuidance,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		WebSocketHub:          wsHub,
		AssistantController:   controller.NewAssistantController(conversationService, wsHub),
		SchemeAdminController: controller.NewSchemeAdminController(schemeService, metricsService),

		ArchiveService: archiveService,
		SweeperService: sweeperService,
	}
}
