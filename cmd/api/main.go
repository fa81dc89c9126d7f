package main

import (
	"context"
	"log"

	"telemed-chat/config"
	"telemed-chat/internal/chat"
	"telemed-chat/internal/events"
	"telemed-chat/internal/handler"
	"telemed-chat/internal/redis"
	"telemed-chat/internal/repository"
	"telemed-chat/internal/server"
	"telemed-chat/internal/services"
	"telemed-chat/internal/session"
	"telemed-chat/internal/storage"
	"telemed-chat/pkg/database"
	"telemed-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	if err := run(cfg, l); err != nil {
		l.Errorf("server exited: %v", err)
		l.Sync()
		log.Fatal(err)
	}
}

func run(cfg *config.Config, l *logger.Logger) error {
	ctx := context.Background()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	deps := server.Dependencies{
		Auth: services.NewAuthService(cfg),
		HealthChecks: map[string]server.HealthCheck{
			"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		},
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisEnabled {
		client := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := redis.Ping(ctx, client); err != nil {
			return err
		}

		publisher = events.NewChannelPublisher(redis.NewPublisher(client))
		deps.Sessions = redis.NewSessionStore(client, cfg.SessionTTL)

		limiter := redis.NewRateLimiter(client, redis.RateLimitConfig{
			MessageLimit:  cfg.RateLimitMessagesPerMin,
			MessageWindow: redis.DefaultRateLimitConfig().MessageWindow,
			UploadLimit:   cfg.RateLimitUploadsPerMin,
			UploadWindow:  redis.DefaultRateLimitConfig().UploadWindow,
		})
		deps.MessageLimit = limiter.AllowMessage
		deps.UploadLimit = limiter.AllowUpload
		deps.HealthChecks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, client) }
		l.Infof("Redis connected at %s", cfg.RedisAddr())
	} else {
		deps.Sessions = session.NewMemoryStore(cfg.SessionTTL)
		l.Warnf("Redis disabled: sessions are kept in memory and events are not published")
	}

	var presigner services.Presigner
	if cfg.S3Enabled() {
		client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			return err
		}
		presigner = client
	} else {
		l.Warnf("S3 not configured: attachment uploads are disabled")
	}

	repos := repository.NewRepositories(db)
	tx := repository.NewTransactor(db)

	rooms := services.NewRoomService(repos, tx, publisher, l)
	messages := services.NewMessageService(repos, tx, publisher, l)
	attachments := services.NewAttachmentService(repos.Rooms, presigner, cfg.AttachmentMaxBytes)

	handlers := &server.Handlers{
		Chat:       handler.NewChatHandler(chat.NewGateway(rooms, messages)),
		Attachment: handler.NewAttachmentHandler(attachments),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, deps)
	return srv.Start()
}
