package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiznight-service/internal/app"
	"quiznight-service/internal/config"
	"quiznight-service/internal/domain"
	"quiznight-service/internal/infra/memory"
	pgloader "quiznight-service/internal/infra/postgres"
	redisstore "quiznight-service/internal/infra/redis"
	"quiznight-service/internal/obslog"
	transporthttp "quiznight-service/internal/transport/http"
	transportnats "quiznight-service/internal/transport/nats"
)

// NewStartCmd builds the CLI subcommand to start the coordinator.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz coordinator",
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
	log := obslog.New()
	defer log.Sync() //nolint:errcheck

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var catalog app.QuestionCatalog
	if redisClient != nil {
		catalog = redisstore.NewQuestionCatalog(redisClient, loader, questionTTL)
	} else {
		catalog = memory.NewQuestionCatalog(loader, questionTTL)
	}

	initialState := domain.RoundState{
		Phase:          domain.PhaseHidden,
		ActiveQuestion: cfg.Game.StartQuestion,
	}
	var store app.ScoreStore
	if redisClient != nil {
		store = redisstore.NewScoreStore(redisClient, initialState)
	} else {
		store = memory.NewScoreStore(initialState)
	}

	coordinator := app.NewCoordinator(store, catalog, cfg.Game, log)

	var channel *transportnats.SubmissionChannel
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer nc.Close()

		channel, err = transportnats.NewSubmissionChannel(nc, transportnats.ChannelConfig{
			Stream:   cfg.NATS.Stream,
			Subject:  cfg.NATS.Subject,
			Consumer: cfg.NATS.Consumer,
		}, coordinator.HandleSubmission, log)
		if err != nil {
			return err
		}
		if err := channel.Start(ctx); err != nil {
			return err
		}
		defer channel.Stop()
	} else {
		log.Warn("nats url not configured; submissions will not be consumed")
	}

	monitor := transporthttp.NewMonitorHandler(coordinator, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", monitor.ServeWS)
	mux.HandleFunc("/scoreboard", monitor.ServeScoreboard)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiznight coordinator", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a small demo set; configure Postgres to load a
// real catalog in production.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID: "q1",
			Parts: []domain.QuestionPart{
				{Prompt: "Which band performs this song?", Answer: "ABBA", Kind: domain.PartExact},
				{Prompt: "In which year was it released?", Answer: "1975", Kind: domain.PartYear},
			},
		},
		{
			ID: "q2",
			Parts: []domain.QuestionPart{
				{Prompt: "Which city hosts this landmark?", Answer: "Paris", Kind: domain.PartExact},
				{Prompt: "In which year was it completed?", Answer: "1889", Kind: domain.PartYear},
			},
		},
		{
			ID: "q3",
			Parts: []domain.QuestionPart{
				{Prompt: "In which year did this clip first air?", Answer: "1998", Kind: domain.PartYear},
			},
		},
	}
}
