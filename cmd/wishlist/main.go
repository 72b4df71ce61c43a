package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wishlist/internal/config"
	"wishlist/internal/http_server/handlers/add"
	"wishlist/internal/http_server/handlers/additem"
	"wishlist/internal/http_server/handlers/deleteitem"
	"wishlist/internal/http_server/handlers/deletewishlist"
	"wishlist/internal/http_server/handlers/health"
	"wishlist/internal/http_server/handlers/items"
	"wishlist/internal/http_server/handlers/mark"
	"wishlist/internal/http_server/handlers/recovery"
	"wishlist/internal/http_server/handlers/reservations"
	"wishlist/internal/http_server/handlers/share"
	"wishlist/internal/http_server/handlers/view"
	rateLimit "wishlist/internal/http_server/middleware/ratelimit"
	"wishlist/internal/http_server/middleware/session"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/mail"
	"wishlist/internal/metrics"
	"wishlist/internal/rabbitmq"
	"wishlist/internal/storage"
	"wishlist/internal/storage/memory"
	"wishlist/internal/storage/postgres"
	"wishlist/internal/storage/redis"
	"wishlist/internal/wishlist"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("")

	log := setupLogger(cfg.Env)

	log.Info("starting wishlist", slog.String("env", cfg.Env), slog.String("location", cfg.App.Location()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	store, err := setupStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer store.Close()

	mailer, closeMailer, err := setupMailer(cfg)
	if err != nil {
		log.Error("failed to init mail transport", sl.Err(err))
		os.Exit(1)
	}
	defer closeMailer()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []wishlist.Option{
		wishlist.WithMetrics(metrics.New(reg)),
		wishlist.WithMailLimit(cfg.MailLimit.Window, cfg.MailLimit.Recent()),
	}

	if cfg.Redis.Enabled {
		cache, err := redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SessionTTL)
		if err != nil {
			log.Error("failed to connect redis", sl.Err(err))
			os.Exit(1)
		}
		defer cache.Close()

		opts = append(opts, wishlist.WithSessionCache(cache))
	}

	composer := mail.NewComposer(cfg.Email.FromAddress, cfg.App.Location(), cfg.App.Title)
	service := wishlist.New(log, store, mailer, composer, opts...)

	router := setupRouter(log, cfg, service, store, reg)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("wishlist stopped")
}

func setupStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	case "postgres":
		dsn := postgres.DSN(cfg.Postgres)
		if err := postgres.Migrate(dsn); err != nil {
			return nil, err
		}
		pg, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// setupMailer returns the configured transport and a func releasing it.
func setupMailer(cfg *config.Config) (wishlist.Mailer, func(), error) {
	switch cfg.Email.Transport {
	case "smtp":
		return &mail.SMTPSender{
			Host:     cfg.Email.RelayServer,
			Port:     cfg.Email.RelayPort,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
		}, func() {}, nil
	case "rabbitmq":
		client, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Email.Transport)
	}
}

func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	service *wishlist.Service,
	store storage.Store,
	reg *prometheus.Registry,
) http.Handler {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.App.IsProxied {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", health.New(log, store))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(session.New(log, service, cfg.App.SessionKey, cfg.App.IsSSL))

		r.With(rateLimit.Add()).Post("/add", add.New(log, validate, service))
		r.With(rateLimit.Recover()).Post("/recover", recovery.New(log, validate, service))
		r.Get("/reservations", reservations.New(log, service))

		r.Route("/{wishlistID}", func(r chi.Router) {
			r.Get("/", view.New(log, service))
			r.With(rateLimit.Manage()).Delete("/", deletewishlist.New(log, service))
			r.Get("/items", items.New(log, service))
			r.With(rateLimit.Share()).Post("/share", share.New(log, validate, service))
			r.With(rateLimit.Manage()).Post("/item/add", additem.New(log, validate, service))
			r.With(rateLimit.Mark()).Post("/item/{itemID}/mark", mark.New(log, validate, service))
			r.With(rateLimit.Manage()).Delete("/item/{itemID}", deleteitem.New(log, service))
		})
	})

	if base := cfg.App.BasePath(); base != "/" {
		root := chi.NewRouter()
		root.Mount(base, r)
		return root
	}

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
