// @title           Access API
// @version         1.0
// @description     Role and permission service of the garage CRM: sessions, team membership and access decisions.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/garagecrm/access-api/internal/api"
	"github.com/garagecrm/access-api/internal/api/middleware"
	"github.com/garagecrm/access-api/internal/core/service"
	"github.com/garagecrm/access-api/internal/infrastructure/config"
	"github.com/garagecrm/access-api/internal/infrastructure/db/mongo"
	"github.com/garagecrm/access-api/internal/infrastructure/db/redis"
	"github.com/garagecrm/access-api/internal/infrastructure/http/handlers"
	"github.com/garagecrm/access-api/internal/infrastructure/queue"
	"github.com/garagecrm/access-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	boot := logger.FromEnv(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		boot.Warn().Err(envErr).Msg("ignoring unreadable .env file")
	}
	cfg := config.Load(boot)
	log := logger.For("api")

	log.Info().Str("env", cfg.Env).Msg("starting access api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	users := mongo.NewUserRepository(db)
	securityEvents := mongo.NewSecurityEventRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, securityEvents); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}
	tokens := redis.NewTokenStore(rdb)

	// --- Audit trail ---
	auditCtx, stopAudit := context.WithCancel(context.Background())
	audit := queue.NewAuditDispatcher(cfg.AuditWorkers, securityEvents, logger.For("audit"))
	audit.Start(auditCtx)

	// --- HTTP ---
	guard := middleware.NewGuard(
		middleware.NewAuthenticator(cfg.JWTSecret, tokens),
		audit,
		logger.For("guard"),
		cfg.IsProduction(),
	)
	e := api.NewRouter(api.Dependencies{
		Log:            logger.For("http"),
		Guard:          guard,
		AuthService:    service.NewAuthService(users, tokens, cfg.JWTSecret, cfg.TokenTTL),
		TeamService:    service.NewTeamService(users),
		SecurityEvents: securityEvents,
		ReadinessChecks: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// No request can record a denial any more; flush the audit queue.
	stopAudit()
	audit.Wait()

	log.Info().Msg("server exited")
}
