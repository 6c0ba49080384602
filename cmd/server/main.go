package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	donationhandler "uplift/internal/donations/handler"
	"uplift/internal/donations/store/donation"
	"uplift/internal/platform/config"
	"uplift/internal/platform/database"
	"uplift/internal/platform/health"
	"uplift/internal/platform/logger"
	platformmetrics "uplift/internal/platform/metrics"
	platformredis "uplift/internal/platform/redis"
	rlconfig "uplift/internal/ratelimit/config"
	rlhandler "uplift/internal/ratelimit/handler"
	rlmetrics "uplift/internal/ratelimit/metrics"
	rlmiddleware "uplift/internal/ratelimit/middleware"
	lockoutsvc "uplift/internal/ratelimit/service/lockout"
	"uplift/internal/ratelimit/service/requestlimit"
	"uplift/internal/ratelimit/store/counter"
	lockoutstore "uplift/internal/ratelimit/store/lockout"
	"uplift/internal/ratelimit/workers/cleanup"
	whhandler "uplift/internal/webhook/handler"
	whmetrics "uplift/internal/webhook/metrics"
	whservice "uplift/internal/webhook/service"
	"uplift/internal/webhook/store/receipt"
	"uplift/pkg/platform/audit"
	auditpg "uplift/pkg/platform/audit/store/postgres"
	"uplift/pkg/platform/middleware/request"
	"uplift/pkg/platform/middleware/requesttime"
)

// main wires the abuse-prevention services, the webhook pipeline, and the
// server lifecycle. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	log.Info("initializing uplift",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	// Shared cache. A nil client is valid: every hybrid store pins to its
	// in-process fallback until a cache is configured and reachable.
	cache, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("invalid redis configuration", "error", err)
		os.Exit(1)
	}
	if cache == nil {
		log.Warn("shared cache not configured, rate limit state is per-process")
	}

	// Database. Without one, the webhook ledger and audit trail fall back to
	// in-memory stores; acceptable for local development only.
	var pool *database.Pool
	if cfg.DatabaseURL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		pool, err = database.New(dbCfg)
		if err != nil {
			log.Error("failed to open database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	} else {
		log.Warn("database not configured, webhook ledger and audit trail are in-memory")
	}

	var auditStore audit.Store
	if pool != nil {
		auditStore = auditpg.New(pool.DB())
	} else {
		auditStore = audit.NewInMemoryStore()
	}
	auditLogger := audit.NewLogger(log, auditStore)

	rlCfg := rlconfig.DefaultConfig()
	rlMetrics := rlmetrics.New()

	// One hybrid counter store per limiter; windows differ per endpoint class.
	limiters := make(map[string]*requestlimit.Limiter, len(rlCfg.Limiters()))
	for _, lc := range rlCfg.Limiters() {
		var shared counter.Store
		if cache != nil {
			shared = counter.NewRedis(cache.Client, lc.Window)
		}
		store := counter.NewHybrid(shared, counter.NewMemory(lc.Window), cache.Ready, log)
		limiter, err := requestlimit.New(store, lc,
			requestlimit.WithLogger(log),
			requestlimit.WithMetrics(rlMetrics),
			requestlimit.WithDisabled(cfg.IsTest() || rlCfg.Disabled),
		)
		if err != nil {
			log.Error("failed to build rate limiter", "limiter", lc.Name, "error", err)
			os.Exit(1)
		}
		limiters[lc.Name] = limiter
	}

	var sharedLockouts lockoutstore.Store
	if cache != nil {
		sharedLockouts = lockoutstore.NewRedis(cache.Client)
	}
	localLockouts := lockoutstore.NewMemory()
	lockouts, err := lockoutsvc.New(
		lockoutstore.NewHybrid(sharedLockouts, localLockouts, cache.Ready, log),
		lockoutsvc.WithLogger(log),
		lockoutsvc.WithAuditLogger(auditLogger),
		lockoutsvc.WithConfig(&rlCfg.Lockout),
		lockoutsvc.WithMetrics(rlMetrics),
	)
	if err != nil {
		log.Error("failed to build lockout tracker", "error", err)
		os.Exit(1)
	}

	var donations donation.Store
	var receipts receipt.Store
	if pool != nil {
		donations = donation.NewPostgres(pool.DB())
		receipts = receipt.NewPostgres(pool.DB(), log)
	} else {
		donations = donation.NewMemory()
		receipts = receipt.NewMemory()
	}

	processor, err := whservice.New(receipts, donations, "stripe",
		whservice.WithLogger(log),
		whservice.WithAuditLogger(auditLogger),
		whservice.WithMetrics(whmetrics.New()),
	)
	if err != nil {
		log.Error("failed to build webhook processor", "error", err)
		os.Exit(1)
	}

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}
	// The shared cache is deliberately absent from readiness: the hybrid
	// stores degrade, they do not fail.

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(request.Recovery(log))
	router.Use(platformmetrics.New().Instrument)
	router.Use(request.Logger(log))

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	// Webhook deliveries authenticate by signature, not by source IP, so
	// they sit outside the general API limiter.
	if cfg.WebhookSigningSecret != "" {
		verifier, err := whhandler.NewHMACVerifier(cfg.WebhookSigningSecret)
		if err != nil {
			log.Error("failed to build webhook verifier", "error", err)
			os.Exit(1)
		}
		whhandler.New(verifier, processor, log).RegisterRoutes(router)
	} else {
		log.Warn("PAYMENT_WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(rlmiddleware.RateLimit(limiters[rlCfg.API.Name], nil, log))
		r.Use(request.ContentTypeJSON)
		donationhandler.New(donations, log).RegisterRoutes(r)
		rlhandler.New(lockouts, log).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(rootCtx)

	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Sweep expired lockout records out of the local fallback map. Not run
	// in tests; lazy expiry keeps results correct without it.
	if !cfg.IsTest() {
		sweeper := cleanup.New(localLockouts,
			cleanup.WithLogger(log),
			cleanup.WithInterval(cfg.LockoutSweepInterval),
			cleanup.WithMetrics(rlMetrics),
		)
		group.Go(func() error {
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
