package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/pfinance/insights/internal/auth"
	"github.com/castlemilk/pfinance/insights/internal/cache"
	"github.com/castlemilk/pfinance/insights/internal/classifier"
	"github.com/castlemilk/pfinance/insights/internal/config"
	"github.com/castlemilk/pfinance/insights/internal/demo"
	"github.com/castlemilk/pfinance/insights/internal/notify"
	"github.com/castlemilk/pfinance/insights/internal/service"
	"github.com/castlemilk/pfinance/insights/internal/store"
	"github.com/castlemilk/pfinance/insights/internal/tax"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid config")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	ctx := context.Background()

	backend, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer closeStore()

	if cfg.SeedDemo {
		if cfg.StoreBackend != config.BackendMemory {
			logger.Fatal("SEED_DEMO is only supported with the memory store")
		}
		counts, err := demo.Seed(ctx, backend, demo.Generate(auth.LocalDevUserID, time.Now(), 42))
		if err != nil {
			logger.WithError(err).Fatal("Failed to seed demo data")
		}
		logger.WithFields(logrus.Fields{
			"user_id":      auth.LocalDevUserID,
			"transactions": counts.Transactions,
		}).Info("Seeded demo data")
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithAnomalyThreshold(cfg.AnomalyThreshold),
	}
	if cfg.CategoryRulesPath != "" {
		rules, err := classifier.LoadRules(cfg.CategoryRulesPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load category rules")
		}
		opts = append(opts, service.WithClassifier(classifier.New(rules)))
		logger.WithField("version", rules.Version).Info("Loaded category rules")
	}
	if cfg.TaxTablePath != "" {
		table, err := tax.LoadTable(cfg.TaxTablePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load tax table")
		}
		calc, err := tax.NewCalculator(table)
		if err != nil {
			logger.WithError(err).Fatal("Invalid tax table")
		}
		opts = append(opts, service.WithTaxCalculator(calc))
		logger.WithField("year", table.Year).Info("Loaded tax table")
	}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer rdb.Close()
		opts = append(opts, service.WithDigestCache(cache.NewDigestCache(rdb, cache.DefaultDigestTTL)))
		logger.WithField("addr", cfg.RedisAddr).Info("Caching weekly digests in Redis")
	}
	if cfg.SMTPHost != "" {
		mailer := notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.DigestFrom,
		}, logger)
		opts = append(opts, service.WithDigestNotifier(mailer))
		logger.WithField("host", cfg.SMTPHost).Info("Emailing weekly digests")
	}
	insightsService := service.NewInsightsService(backend, opts...)

	// Auth runs first so the logging interceptor sees the caller.
	var interceptors []connect.Interceptor
	switch {
	case cfg.LocalDev:
		logger.Warn("SKIP_AUTH enabled - using local development authentication")
		interceptors = append(interceptors, auth.LocalDevInterceptor())
	case cfg.JWTSecret != "":
		logger.Info("Using bearer token authentication")
		interceptors = append(interceptors, auth.BearerInterceptor([]byte(cfg.JWTSecret)))
	default:
		interceptors = append(interceptors, auth.HeaderInterceptor())
	}
	interceptors = append(interceptors, service.LoggingInterceptor(logger))

	router := mux.NewRouter()
	service.Register(router, insightsService, connect.WithInterceptors(interceptors...))

	scheduler := cron.New()
	if _, err := insightsService.ScheduleWeeklyDigest(scheduler, cfg.DigestSchedule); err != nil {
		logger.WithError(err).Fatal("Failed to schedule weekly digest")
	}
	scheduler.Start()
	defer scheduler.Stop()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"User-Agent",
			auth.UserIDHeader,
			auth.UserEmailHeader,
			service.RequestIDHeader,
		},
		ExposedHeaders: []string{
			service.RequestIDHeader,
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(c.Handler(router), &http2.Server{}),
	}

	logger.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"store": cfg.StoreBackend,
	}).Info("Starting server")
	if err := srv.ListenAndServe(); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}
