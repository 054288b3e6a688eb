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

	"adoptchat/infrastructure/db"
	"adoptchat/infrastructure/ws"
	"adoptchat/internal/config"
	httpHandler "adoptchat/internal/delivery/http"
	"adoptchat/internal/delivery/websocket"
	"adoptchat/internal/repository"
	"adoptchat/internal/usecase"
	"adoptchat/pkg/jwt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		messageRepo repository.MessageRepository
		userRepo    repository.UserRepository
		pinger      httpHandler.Pinger
	)
	switch cfg.StorageDriver {
	case config.StorageMongo:
		store, err := db.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("mongo connection failed: %w", err)
		}
		defer func() {
			log.Info("Closing MongoDB...")
			_ = store.Close(context.Background())
		}()
		if err := repository.EnsureMessageIndexes(ctx, store.DB); err != nil {
			return err
		}
		if err := repository.EnsureUserIndexes(ctx, store.DB); err != nil {
			return err
		}
		log.Info("Connected to MongoDB", "database", cfg.MongoDatabase)

		messageRepo = repository.NewMessageRepository(store.DB)
		userRepo = repository.NewUserRepository(store.DB)
		pinger = store

	case config.StorageMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		messageRepo = repository.NewMemoryMessageRepository(nil)
		userRepo = repository.NewMemoryUserRepository()
	}

	secret, configured := cfg.Secret()
	if !configured {
		log.Warn("Using default JWT secret. Set JWT_SECRET for production")
	}
	jwtManager := jwt.NewJWTManager(secret, cfg.AccessTokenTTL)

	hub, err := newHub(ctx, cfg, log)
	if err != nil {
		return err
	}
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	authUc := usecase.NewAuthUsecase(userRepo, jwtManager)
	userUc := usecase.NewUserUseCase(userRepo, cfg.UserCacheTTL)
	defer userUc.Close()
	messageUc := usecase.NewMessageUseCase(messageRepo, userUc)
	fanout := usecase.NewDeliveryFanout(hub, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(httpHandler.Cors(cfg.AllowedOrigins))

	httpH := httpHandler.NewHttpHandler(messageUc, fanout, userUc, pinger, log)
	websocketH := websocket.NewWebsocketHandler(hub, authUc, messageUc, fanout, cfg.AllowedOrigins, log)
	authH := httpHandler.NewAuthHandler(authUc, log)
	authMiddleware := httpHandler.NewAuthMiddleware(authUc)

	httpHandler.MapHttpRoutes(router, httpH, websocketH, authH, authMiddleware)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("HTTP server is running", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	// Closing the hub ends every live session, which hijacked connections
	// need since Shutdown does not wait for them.
	stopHub()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}

// newHub picks the Redis relay when REDIS_ADDR is set, so several instances
// can serve the same users.
func newHub(ctx context.Context, cfg config.Config, log *slog.Logger) (ws.IHub, error) {
	if cfg.RedisAddr == "" {
		log.Info("Using in-memory hub (single server)")
		return ws.NewHub(log), nil
	}

	serverID := cfg.ServerID
	if serverID == "" {
		serverID = uuid.NewString()
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Info("Using Redis hub", "address", cfg.RedisAddr, "server", serverID)
	return ws.NewRedisHub(log, redisClient, serverID), nil
}
