package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-user-accounts/config"
	"github.com/oksasatya/go-user-accounts/internal/container"
	mongoinfra "github.com/oksasatya/go-user-accounts/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-user-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/search"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/internal/router"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB user store
	db, mongoClient, err := mongoinfra.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	users := mongoinfra.NewUserRepository(db, cfg.MongoUsersCollection, cfg.MongoTimeout)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure user indexes: %v", err)
	}

	// Postgres audit log (optional)
	if cfg.AuditEnabled {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetAuditPool(pool)
	}

	// Redis (rate limiting); the limiter fails open, so a ping failure is only logged
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb, 2*time.Second); err != nil {
		helpers.LogError(logger, "redis unavailable, rate limiting disabled until it recovers", err, logrus.Fields{"addr": cfg.RedisAddr})
	}

	// GCS avatars (optional)
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
	}

	// Elasticsearch user search (optional)
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass, 5*time.Second)
	if err != nil {
		log.Fatalf("failed to init elasticsearch client: %v", err)
	}
	if es != nil {
		if err := search.NewUserIndex(es, cfg.ESUsersIndex).EnsureIndex(ctx); err != nil {
			helpers.LogError(logger, "elasticsearch index setup failed", err, logrus.Fields{"index": cfg.ESUsersIndex})
		}
		container.SetES(es)
	}

	// RabbitMQ mail queue
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			// registration keeps working; activation emails are logged as failed
			helpers.LogError(logger, "rabbitmq unavailable, activation emails will not be queued", err, nil)
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	} else {
		helpers.LogInfo(logger, "MAIL_SEND_ENABLED=false; activation emails are skipped", nil)
	}

	// JWT
	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL, cfg.AppName)

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(db)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
