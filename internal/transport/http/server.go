package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"promptplay-api/internal/config"
	"promptplay-api/internal/database"
	"promptplay-api/internal/handler"
	"promptplay-api/internal/queue"
	"promptplay-api/internal/redis"
	"promptplay-api/internal/repository"
	"promptplay-api/internal/service"
	"promptplay-api/internal/worker"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// 3. Connect to Redis (optional). Without it, events are dropped and the
	// notification worker is not started.
	publisher := queue.NewNopPublisher()
	var consumer queue.Consumer
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		log.Println("Connected to Redis successfully")

		publisher = queue.NewPublisher(redisClient.Client)
		consumer = queue.NewConsumer(redisClient.Client)
	} else {
		log.Println("REDIS_URL not set, notifications disabled")
	}

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	joinRepo := repository.NewJoinRequestRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// 5. Initialize Services
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo)
	groqClient := service.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL)
	extractionService := service.NewExtractionService(groqClient)
	matchService := service.NewMatchService(groqClient, gameRepo)
	gameService := service.NewGameService(gameRepo, joinRepo, userRepo, extractionService, publisher)
	joinService := service.NewJoinService(joinRepo, gameRepo, repository.NewTxRunner(db), publisher)
	notifService := service.NewNotificationService(notifRepo)

	// 6. Start Notification Worker
	if consumer != nil {
		manager := worker.NewManager(consumer, worker.NewHandler(notifService), worker.DefaultManagerConfig())
		if err := manager.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start notification worker: %w", err)
		}
		defer manager.Stop()
	}

	// 7. Initialize Handlers
	authHandler := handler.NewAuthHandler(userService, authService)
	gameHandler := handler.NewGameHandler(gameService, matchService)
	joinHandler := handler.NewJoinHandler(joinService)
	notifHandler := handler.NewNotificationHandler(notifService)

	// 8. Setup Router
	router := NewRouter(RouterConfig{
		AuthHandler:         authHandler,
		GameHandler:         gameHandler,
		JoinHandler:         joinHandler,
		NotificationHandler: notifHandler,
		TokenDecoder:        authService,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
