package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/auth"
	"mathquiz-service/internal/config"
	"mathquiz-service/internal/infra/memory"
	pginfra "mathquiz-service/internal/infra/postgres"
	redisinfra "mathquiz-service/internal/infra/redis"
	transport "mathquiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
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
	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth secret not configured")
	}

	logger := log.New(os.Stderr, "mathquiz ", log.LstdFlags)

	evaluator := app.NewEvaluator(logger)
	scorer := app.NewScorer(evaluator)
	generator := app.NewGenerator(evaluator)

	var quizzes app.QuizRepository = memory.NewQuizRepository()
	var answers app.AnswerSource

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		quizzes = pginfra.NewQuizRepository(db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		answers = pginfra.NewAnswerLoader(pool, scorer)
	} else {
		answers = app.NewRepositoryAnswerSource(quizzes, scorer)
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheTTL := config.TTLDuration(cfg.AnswerCache.TTL, 10*time.Minute)
		answers = redisinfra.NewAnswerCache(redisClient, answers, cacheTTL)
	}

	service := app.NewQuizService(quizzes, answers, generator, scorer, logger)
	tokens := auth.NewService(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewHandler(service, tokens, logger).Register(mux)
	practice := transport.NewPracticeHandler(service, evaluator, logger)
	mux.HandleFunc("/ws/practice", practice.ServePractice)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Println("shutting down server...")
	case <-ctx.Done():
		logger.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
