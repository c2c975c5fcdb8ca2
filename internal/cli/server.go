package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"fakeout-service/internal/config"
	"fakeout-service/internal/content"
	"fakeout-service/internal/domain"
	"fakeout-service/internal/game"
	"fakeout-service/internal/infra/memory"
	pginfra "fakeout-service/internal/infra/postgres"
	redisinfra "fakeout-service/internal/infra/redis"
	transport "fakeout-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var source content.TopicSource = memory.NewStaticTopicSource(sampleQuestions())
	if pool != nil {
		source = pginfra.NewQuestionLoader(pool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var cached content.TopicSource
	if redisClient != nil {
		cached = redisinfra.NewQuestionCache(redisClient, source, contentTTL)
	} else {
		cached = memory.NewQuestionCache(source, contentTTL)
	}
	provider := content.NewProvider(cached)

	var registry game.RoomRegistry = memory.NewRoomRegistry()
	if redisClient != nil {
		registry = redisinfra.NewRoomRegistry(redisClient, redisTTL)
	}

	var results game.ResultStore = memory.NewResultStore()
	var accounts transport.AccountStore
	if cfg.Postgres.URL != "" {
		store, err := pginfra.OpenResultStore(cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer store.Close()
		results = store
		accounts = store
	}

	coord := game.NewCoordinator(registry, provider, results)
	hub := transport.NewHub()
	gateway := transport.NewGateway(coord, hub)
	rooms := transport.NewRoomHandler(coord, accounts)
	router := transport.NewRouter(rooms, gateway)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting fakeout service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides built-in content for database-less runs.
func sampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"Geography": {
			{ID: 1, Topic: "Geography", Text: "What is the capital of Australia?", CorrectAnswer: "Canberra", Explanation: "Sydney and Melbourne are larger but Canberra was purpose-built as the capital."},
			{ID: 2, Topic: "Geography", Text: "Which river is the longest in the world?", CorrectAnswer: "The Nile", Explanation: "The Nile edges out the Amazon by most measurements."},
			{ID: 3, Topic: "Geography", Text: "Which country has the most time zones?", CorrectAnswer: "France", Explanation: "Overseas territories give France twelve time zones."},
		},
		"Science": {
			{ID: 4, Topic: "Science", Text: "What is the chemical symbol for gold?", CorrectAnswer: "Au", Explanation: "From the Latin aurum."},
			{ID: 5, Topic: "Science", Text: "How many bones does an adult human have?", CorrectAnswer: "206", Explanation: "Babies are born with around 300 that fuse over time."},
			{ID: 6, Topic: "Science", Text: "What planet has the most moons?", CorrectAnswer: "Saturn", Explanation: "Saturn overtook Jupiter after a wave of new discoveries."},
		},
		"History": {
			{ID: 7, Topic: "History", Text: "In which year did the Berlin Wall fall?", CorrectAnswer: "1989", Explanation: "The wall fell on 9 November 1989."},
			{ID: 8, Topic: "History", Text: "Who was the first person to reach the South Pole?", CorrectAnswer: "Roald Amundsen", Explanation: "Amundsen's team arrived weeks ahead of Scott's."},
			{ID: 9, Topic: "History", Text: "Which empire built Machu Picchu?", CorrectAnswer: "The Inca Empire", Explanation: "Built around 1450 in the Andes."},
		},
	}
}
