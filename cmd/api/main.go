package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-auth-gateway/internal/application"
	"discord-auth-gateway/internal/config"
	"discord-auth-gateway/internal/domain"
	"discord-auth-gateway/internal/infrastructure/discord"
	"discord-auth-gateway/internal/infrastructure/metrics"
	"discord-auth-gateway/internal/infrastructure/repository"
	sessioninfra "discord-auth-gateway/internal/infrastructure/session"
	"discord-auth-gateway/internal/server"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Both backing stores must be reachable before the listener accepts
	// traffic, so no request ever races a half-connected client.
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("MongoDB is not reachable")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("Redis is not reachable")
	}

	db := mongoClient.Database(cfg.DBName)
	allowList := repository.NewMongoAllowList(db)
	sessions := sessioninfra.NewRedisStore(redisClient, domain.SessionLifetime)
	provider := discord.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.Scope, cfg.RedirectURL, logger)

	authService := application.NewAuthService(provider, allowList, logger)

	srv := server.New(authService, sessions, metrics.New(), server.Options{
		EntryPoint:    cfg.EntryPoint,
		CookieDomain:  cfg.CookieDomain,
		SessionSecret: cfg.SessionSecret,
	}, logger)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting gateway")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown did not complete cleanly")
	}
}
