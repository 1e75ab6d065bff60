package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/ericnishio/scribe-adapter/internal/api"
	"github.com/ericnishio/scribe-adapter/internal/httpclient"
	"github.com/ericnishio/scribe-adapter/internal/jobs"
	"github.com/ericnishio/scribe-adapter/internal/notify"
	"github.com/ericnishio/scribe-adapter/internal/rate"
	"github.com/ericnishio/scribe-adapter/internal/scribe"
	internalsecrets "github.com/ericnishio/scribe-adapter/internal/secrets"
	"github.com/ericnishio/scribe-adapter/internal/session"
	"github.com/ericnishio/scribe-adapter/internal/store"
	"github.com/ericnishio/scribe-adapter/pkg/config"
	"github.com/ericnishio/scribe-adapter/pkg/eventbus"
	"github.com/ericnishio/scribe-adapter/pkg/logger"
	"github.com/ericnishio/scribe-adapter/pkg/model"
	"github.com/ericnishio/scribe-adapter/pkg/secrets"
	"github.com/ericnishio/scribe-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [scribe-adapter]...")
	logg.Info("upstream base URL: ", cfg.ScribeBaseURL)
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
	}

	// --- Event bus ---
	bus := eventbus.New()

	// --- Store (Redis + Postgres hybrid, optional) ---
	var st store.Store
	if cfg.RedisAddr != "" {
		hybrid, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.DatabaseURL, store.PGPoolConfig{
			MaxConns:          int32(cfg.PGMaxConns),
			MinConns:          int32(cfg.PGMinConns),
			MaxConnLifetime:   cfg.PGMaxConnLifetime,
			MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
			HealthCheckPeriod: cfg.PGHealthCheckPeriod,
		}, logger.L())
		if err != nil {
			logg.Fatalw("failed to init store", "error", err)
		}
		st = hybrid
	} else {
		logg.Warn("REDIS_ADDR not configured; catalog store disabled")
	}

	// --- Session audit trail ---
	if st != nil {
		record := func(event, note string) {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := st.RecordSessionEvent(rctx, event, note); err != nil {
				logg.Warnw("store.session_event_failed", "event", event, "error", err)
			}
		}
		bus.Subscribe(model.SessionStarted{}, func(e interface{}) {
			if evt, ok := e.(model.SessionStarted); ok {
				record("session_started", "expires "+evt.ExpiresAt.Format(time.RFC3339))
			}
		})
		bus.Subscribe(model.SessionEnded{}, func(e interface{}) {
			if evt, ok := e.(model.SessionEnded); ok {
				record("session_ended", evt.EndedAt.Format(time.RFC3339))
			}
		})
		bus.Subscribe(model.SessionExpired{}, func(e interface{}) {
			if evt, ok := e.(model.SessionExpired); ok {
				record("session_expired", "expired "+evt.ExpiredAt.Format(time.RFC3339))
			}
		})
	}

	// --- Session manager ---
	var tokenStore session.TokenStore
	var sessionRedis *redis.Client
	if cfg.SessionStore == "redis" {
		sessionRedis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		tokenStore = session.NewRedisStore(sessionRedis, "")
	}
	sess := session.NewManager(logger.L(), bus, tokenStore)
	if sess.Restore(ctx) {
		logg.Info("restored persisted session token")
	}

	// --- User notifications ---
	notifier := notify.NewMultiNotifier(
		notify.NewLogNotifier(logger.L()),
		notify.NewBusNotifier(bus),
	)

	// --- Connect to NATS (optional) ---
	var nc *nats.Conn
	var pub *notify.Publisher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		nc = conn

		pub, err = notify.NewPublisher(nc, cfg.OutboundSubject, cfg.ServiceName, cfg.ScribeAccount)
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		pub.Bind(bus)
	} else {
		logg.Warn("NATS_URL not configured; outbound events disabled")
	}

	// --- RabbitMQ bridge (optional) ---
	var bridge *notify.RabbitBridge
	if cfg.RabbitURL != "" {
		b, err := notify.NewRabbitBridge(cfg.RabbitURL, bus, logger.L())
		if err != nil {
			logg.Warnw("failed to connect to RabbitMQ; bridge disabled", "error", err)
		} else {
			bridge = b
		}
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Cooldown:          cfg.RateCooldown,
	})

	// --- Scribe HTTP client ---
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	disp := httpclient.New(logger.L(), cfg.ScribeBaseURL, httpClient, sess, rateMgr, cfg.RetryMax, cfg.AuthFailClosed)
	client := scribe.NewClient(logger.L(), disp)

	var creator scribe.PostCreator = client
	if cfg.StubCreatePost {
		creator = scribe.NewStubCreator(logger.L(), cfg.CreateStubDelay)
		logg.Info("post creation running in stub mode")
	}

	// --- Scribe service ---
	svc := scribe.NewService(logger.L(), client, sess, creator, notifier)

	// --- Bootstrap login via AWS Secrets Manager (optional) ---
	var stopCleaner chan struct{}
	if cfg.ScribeAccount != "" {
		awsProvider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}

		credsCache := secrets.NewCache[internalsecrets.Credentials](cfg.CacheTTL)
		stopCleaner = make(chan struct{})
		go credsCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

		resolver := internalsecrets.NewCredentialsResolver(logger.L(), cfg.Env, awsProvider, credsCache)

		accounts, err := resolver.DiscoverAccounts(ctx)
		if err != nil {
			logg.Warnw("failed to discover accounts from AWS Secrets Manager", "error", err)
		} else {
			logg.Infow("discovered Scribe accounts", "count", len(accounts), "accounts", accounts)
		}

		creds, err := resolver.Resolve(ctx, cfg.ScribeAccount)
		if err != nil {
			logg.Warnw("failed to resolve Scribe credentials; starting unauthenticated",
				"account", cfg.ScribeAccount, "error", err)
		} else if svc.Login(ctx, creds.Identifier, creds.Secret) {
			logg.Infow("bootstrap login succeeded", "account", cfg.ScribeAccount)
		}
	}

	// --- Catalog syncer (optional) ---
	if st != nil && cfg.CatalogSyncInterval > 0 {
		syncer := scribe.NewCatalogSyncer(logger.L(), client, st, cfg.CatalogSyncInterval)
		go syncer.Start(ctx)
	}

	// --- Catalog summary refresher (optional, needs Postgres and NATS) ---
	var refresher *jobs.SummaryRefresher
	if pub != nil && cfg.SummaryRefreshInterval > 0 {
		if hybrid, ok := st.(*store.HybridStore); ok && hybrid.PG != nil {
			refresher = jobs.NewSummaryRefresher(logger.L(), hybrid.PG, pub, cfg.SummaryRefreshInterval)
			go refresher.Start(ctx)
		}
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	var catalog api.CatalogReader
	if st != nil {
		catalog = st
	}
	handler := api.NewScribeHandler(logger.L(), svc, catalog)
	api.RegisterRoutes(app, nc, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	// --- Main process stays alive until interrupted ---
	logg.Infow("[scribe-adapter] running",
		"env", cfg.Env,
		"nats", cfg.NATSURL,
		"session_store", cfg.SessionStore,
		"stub_create", cfg.StubCreatePost)

	<-ctx.Done()
	logg.Info("shutting down [scribe-adapter]...")

	if stopCleaner != nil {
		close(stopCleaner)
	}
	if refresher != nil {
		refresher.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if bridge != nil {
		if err := bridge.Close(); err != nil {
			logg.Warnw("rabbit.close_failed", "error", err)
		}
	}
	if sessionRedis != nil {
		if err := sessionRedis.Close(); err != nil {
			logg.Warnw("session_redis.close_failed", "error", err)
		}
	}
	if st != nil {
		if err := st.Close(); err != nil {
			logg.Warnw("store.close_failed", "error", err)
		}
	}
}
