package http

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/infrastructure/audit"
	"github.com/servana-inc/servana/internal/infrastructure/auth"
	"github.com/servana-inc/servana/internal/infrastructure/cache"
	"github.com/servana-inc/servana/internal/infrastructure/config"
	"github.com/servana-inc/servana/internal/infrastructure/email"
	"github.com/servana-inc/servana/internal/infrastructure/ratelimit"
	"github.com/servana-inc/servana/internal/infrastructure/repository"
	"github.com/servana-inc/servana/internal/interfaces/http/handlers"
	"github.com/servana-inc/servana/internal/interfaces/http/middleware"
	"github.com/servana-inc/servana/internal/shared/logger"
)

// Container wires infrastructure, use cases, handlers, and middleware
// together and owns the redis connection for graceful shutdown.
type Container struct {
	db    *gorm.DB
	cfg   *config.Config
	log   logger.Interface
	redis *redis.Client

	authHandler    *handlers.AuthHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
}

// NewContainer builds the full dependency graph.
func NewContainer(cfg *config.Config, db *gorm.DB, log logger.Interface) *Container {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	accountRepo := repository.NewAccountRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)

	stateStore := cache.NewRedisStateStore(redisClient, "auth:state:",
		time.Duration(cfg.OAuth.StateTTLMinutes)*time.Minute)
	sessionStore := cache.NewRedisCallbackSessionStore(redisClient, "auth:session:",
		time.Duration(cfg.OAuth.CallbackSessionTTLMinutes)*time.Minute)

	providerClient := auth.NewGoogleOAuthClient(cfg.OAuth.Google)
	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes, cfg.Auth.JWT.RefreshExpDays)
	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)

	auditSink := audit.NewGormAuditSink(db, log)

	var notifier usecases.Notifier
	if cfg.Email.Enabled {
		notifier = email.NewSMTPNotifier(cfg.Email)
	} else {
		notifier = email.NewNoopNotifier()
	}

	beginUC := usecases.NewBeginAuthorizationUseCase(providerClient, stateStore, auditSink, log)
	callbackUC := usecases.NewHandleCallbackUseCase(
		providerClient, stateStore, accountRepo, jwtSvc, refreshRepo, auditSink, notifier, log)
	pickupUC := usecases.NewConsumeCallbackSessionUseCase(sessionStore, log)
	linkUC := usecases.NewLinkExternalIdentityUseCase(accountRepo, auditSink, notifier, log)
	unlinkUC := usecases.NewUnlinkExternalIdentityUseCase(
		accountRepo, providerClient.Provider(), auditSink, notifier, log)
	refreshUC := usecases.NewRefreshSessionUseCase(accountRepo, jwtSvc, refreshRepo, log)
	setSecretUC := usecases.NewSetLocalSecretUseCase(accountRepo, hasher, log)

	authHandler := handlers.NewAuthHandler(
		beginUC, callbackUC, pickupUC, linkUC, unlinkUC, refreshUC, setSecretUC,
		accountRepo, providerClient, sessionStore,
		cfg.Server.FrontendCallbackURL, log)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, log)
	rateLimiter := middleware.NewRateLimiter(
		ratelimit.NewRedisLimiter(redisClient, "ratelimit:auth:"),
		ratelimit.Limit{Requests: 20, Window: time.Minute},
		log)

	return &Container{
		db:             db,
		cfg:            cfg,
		log:            log,
		redis:          redisClient,
		authHandler:    authHandler,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
	}
}

// Shutdown releases connections held by the container.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
	return nil
}
