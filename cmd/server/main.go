package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/maumeum/internal/es"
	"github.com/Skotchmaster/maumeum/internal/httpserver"
	"github.com/Skotchmaster/maumeum/internal/jobs"
	authmw "github.com/Skotchmaster/maumeum/internal/middleware/auth"
	"github.com/Skotchmaster/maumeum/internal/middleware/csrf"
	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
	"github.com/Skotchmaster/maumeum/internal/repo"
	"github.com/Skotchmaster/maumeum/internal/service"
	"github.com/Skotchmaster/maumeum/internal/service/search"
	"github.com/Skotchmaster/maumeum/pkg/config"
	"github.com/Skotchmaster/maumeum/pkg/db"
	"github.com/Skotchmaster/maumeum/pkg/hash"
	"github.com/Skotchmaster/maumeum/pkg/logging"
	loggingmw "github.com/Skotchmaster/maumeum/pkg/middleware/logging"
	"github.com/Skotchmaster/maumeum/pkg/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	if cfg.UsingFallbackSecrets() {
		logger.Warn("insecure_config", "reason", "ACCESS_SECRET or REFRESH_SECRET not set, using built-in fallback")
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var events service.EventPublisher = mykafka.Noop{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		events = producer
	} else {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index *search.Index
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		esCancel()
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
		index = search.New(client, cfg.ESIndex)
	} else {
		logger.Info("search_disabled", "reason", "ES_URL is empty, using database search")
	}

	store := repo.New(gdb)
	hasher := hash.NewHasher(cfg.BcryptCost)
	accessSecret, refreshSecret := []byte(cfg.AccessSecret), []byte(cfg.RefreshSecret)
	issuer := tokens.NewIssuer(accessSecret, refreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	validator := tokens.NewValidator(accessSecret, refreshSecret)

	sessions := service.NewSessionService(store, issuer, hasher, events)
	sessions.RevokeOnLogout = cfg.RevokeOnLogout

	postings := &service.PostingService{Repo: store, Events: events}
	closer := &jobs.StatusCloser{Store: store, Events: events, Logger: logger}
	if index != nil {
		postings.Index = index
		closer.Index = index
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))
	if cfg.FrontServer != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.FrontServer},
			AllowCredentials: true,
		}))
	}

	cookies := httpserver.CookieConfig{Secure: cfg.CookieSecure, AccessTTL: cfg.AccessTTL, RefreshTTL: cfg.RefreshTTL}
	deps := &httpserver.Deps{
		Sessions: &httpserver.SessionHTTP{Svc: sessions, Cookies: cookies},
		Users:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: store, Hasher: hasher, Events: events}, Cookies: cookies},
		Postings: &httpserver.PostingHTTP{Svc: postings},
		Community: &httpserver.CommunityHTTP{
			Posts:    &service.CommunityService{Repo: store, Events: events},
			Comments: &service.CommentService{Repo: store, Events: events},
		},
		Gate: authmw.NewGate(validator),
		DB:   gdb,
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		deps.CSRF = &csrfCfg
	}
	httpserver.Register(e, deps)

	jobCtx, stopJobs := context.WithCancel(context.Background())
	scheduler, err := jobs.Schedule(jobCtx, cfg.JobSchedule, cfg.Location(), closer, logger)
	if err != nil {
		log.Fatal(err)
	}
	scheduler.Start()
	logger.Info("job_scheduled", "job", "posting_status", "schedule", cfg.JobSchedule, "timezone", cfg.Location().String())

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// waits for a running scan to finish
	<-scheduler.Stop().Done()
	stopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown complete")
}
