package cli

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

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"interview-coach-service/internal/analytics"
	"interview-coach-service/internal/app"
	"interview-coach-service/internal/config"
	"interview-coach-service/internal/evaluation"
	"interview-coach-service/internal/events"
	"interview-coach-service/internal/infra/memory"
	"interview-coach-service/internal/infra/postgres"
	redisstore "interview-coach-service/internal/infra/redis"
	"interview-coach-service/internal/infra/sqlite"
	"interview-coach-service/internal/llm"
	"interview-coach-service/internal/questiongen"
	transport "interview-coach-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the interview coach server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

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

	deps, cleanup, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("starting interview coach service", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// wire picks a backend per concern: Postgres, then Redis, then SQLite, then
// memory for sessions; Redis or memory for caches.
func wire(ctx context.Context, cfg config.Config) (*transport.Container, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*transport.Container, func(), error) {
		cleanup()
		return nil, nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		closers = append(closers, pool.Close)
	}

	var store app.SessionRepository
	switch {
	case pool != nil:
		store = postgres.NewSessionStore(pool)
	case redisClient != nil:
		store = redisstore.NewSessionStore(redisClient)
	case cfg.SQLite.Path != "":
		path := cfg.SQLite.Path
		if path == "default" {
			var err error
			if path, err = sqlite.DefaultPath(); err != nil {
				return fail(err)
			}
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = s.Close() })
		store = s
	default:
		store = memory.NewSessionStore()
	}

	progressTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	var cache app.ProgressCache
	if redisClient != nil {
		cache = redisstore.NewProgressCache(redisClient, progressTTL)
	} else {
		cache = memory.NewProgressCache(progressTTL)
	}

	var source questiongen.Source = questiongen.NewStaticSource(questiongen.BuiltinQuestions())
	if pool != nil {
		source = postgres.NewQuestionLoader(pool)
	}
	questionTTL := config.TTLDuration(cfg.Questions.CacheTTL, 10*time.Minute)
	if redisClient != nil {
		source = redisstore.NewQuestionCache(redisClient, source, questionTTL)
	} else {
		source = memory.NewQuestionCache(source, questionTTL)
	}

	provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), slog.Default())
	if err != nil {
		return fail(err)
	}

	var generator questiongen.Generator = questiongen.NewBankGenerator(source)
	if provider != nil {
		generator = questiongen.NewFallbackGenerator(
			questiongen.NewLLMGenerator(provider, questiongen.DefaultConfig()),
			generator,
		)
	}
	engine := evaluation.NewEngine(provider, cfg.EvaluationConfig())

	publisher, err := events.NewPublisher(cfg.RabbitMQ.URL)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { _ = publisher.Close() })

	sessions := app.NewSessionService(store, generator, engine,
		app.WithProgressCache(cache),
		app.WithCompletionPublisher(publisher))
	progress := app.NewProgressService(store, cache, analytics.New(cfg.Analytics))

	slog.Info("backends wired",
		slog.String("sessions", fmt.Sprintf("%T", store)),
		slog.String("progress_cache", fmt.Sprintf("%T", cache)),
		slog.Bool("llm", provider != nil),
		slog.Bool("events", cfg.RabbitMQ.URL != ""))

	return &transport.Container{Sessions: sessions, Progress: progress, Evaluator: engine}, cleanup, nil
}
