package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/infra/memory"
	pgstore "live-quiz-service/internal/infra/postgres"
	redisstore "live-quiz-service/internal/infra/redis"
	"live-quiz-service/internal/metrics"
	transport "live-quiz-service/internal/transport/http"
	"live-quiz-service/internal/validation"
)

const (
	defaultSubscriberBuffer = 32
	defaultIdleTTL          = 30 * time.Minute
	evictionInterval        = time.Minute
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	config.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	buffer := cfg.Live.SubscriberBuffer
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var store app.QuizStore = memory.NewQuizStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewQuizStore(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var sessions app.SessionRepository = memory.NewSessionStore(buffer)
	if redisClient != nil {
		store = redisstore.NewQuizCache(redisClient, store, quizTTL)
		sessions = redisstore.NewSessionStore(redisClient, redisTTL, buffer)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := []app.Option{app.WithMetrics(metrics.New(registry))}
	if redisClient != nil {
		opts = append(opts, app.WithAnswerMirror(redisstore.NewAnswerMirror(redisClient, redisTTL)))
	}

	quizCatalog := catalog.Quiz()
	gate := validation.NewGate(quizCatalog, logrus.StandardLogger())
	service := app.NewQuizService(gate, store, sessions, opts...)
	handler := transport.NewHandler(service, quizCatalog, catalog.Auth(), catalog.User())
	router := transport.NewRouter(handler, transport.NewWSHandler(service), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go service.RunEviction(evictCtx, evictionInterval, config.TTLDuration(cfg.Live.IdleTTL, defaultIdleTTL))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":     finalPort,
			"postgres": cfg.Postgres.URL != "",
			"redis":    redisClient != nil,
		}).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logrus.Info("shutting down server")
	case <-ctx.Done():
		logrus.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
