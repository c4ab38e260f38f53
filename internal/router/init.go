package router

import (
	"context"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/container"
	repouser "github.com/oksasatya/go-user-accounts/internal/domain/repository"
	mongoinfra "github.com/oksasatya/go-user-accounts/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-user-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/router/modules"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
)

type UserModuleDeps struct {
	Repo        repouser.UserRepository
	Service     *userapp.Service
	Auth        *userapp.AuthService
	UserHandler *handlers.UserHandler
	AuthHandler *handlers.AuthHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := mongoinfra.NewUserRepository(container.GetMongo(), cfg.MongoUsersCollection, cfg.MongoTimeout)

	// A nil publisher is fine: QueueMailer reports it and the service only logs.
	var pub mailer.Publisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	opts := []userapp.Option{
		userapp.WithActivationTTL(cfg.ActivationCodeTTL),
		userapp.WithLegacyUpdateMatch(cfg.UserUpdateLegacyMatch),
	}
	if es := container.GetES(); es != nil {
		opts = append(opts, userapp.WithIndexer(search.NewUserIndex(es, cfg.ESUsersIndex)))
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		opts = append(opts, userapp.WithStorage(helpers.NewGCSStorage(gcs, cfg.GCSBucket)))
	}
	if pool := container.GetAuditPool(); pool != nil {
		opts = append(opts, userapp.WithAudit(pginfra.NewAuditRepository(pool)))
	}

	service := userapp.NewService(
		repo,
		helpers.NewBcryptHasher(0),
		mailer.NewQueueMailer(pub, cfg.MailSendEnabled),
		logger,
		opts...,
	)
	auth := userapp.NewAuthService(service, container.GetJWT(), logger)

	return UserModuleDeps{
		Repo:        repo,
		Service:     service,
		Auth:        auth,
		UserHandler: handlers.NewUserHandler(service, logger),
		AuthHandler: handlers.NewAuthHandler(auth, logger, cfg.CookieDomain, cfg.CookieSecure),
	}
}

func healthChecks() map[string]modules.Check {
	checks := map[string]modules.Check{
		"mongodb": func(ctx context.Context) error {
			return container.GetMongo().Client().Ping(ctx, nil)
		},
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if pool := container.GetAuditPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildUserDeps()
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	r.Add(modules.NewHealthModule(healthChecks()))
	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.Service, jwt, rdb))
	r.Add(modules.NewUserModule(deps.UserHandler, deps.Service, jwt, rdb))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
