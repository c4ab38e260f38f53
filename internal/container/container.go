package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-user-accounts/config"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongo.Database
	auditPool   *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	rabbitPub  *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetMongo(db *mongo.Database)             { mongoDB = db }
func GetMongo() *mongo.Database               { return mongoDB }
func SetAuditPool(p *pgxpool.Pool)            { auditPool = p }
func GetAuditPool() *pgxpool.Pool             { return auditPool }
func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetGCS(s *storage.Client)                { gcsClient = s }
func GetGCS() *storage.Client                 { return gcsClient }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetJWT(m *helpers.JWTManager)            { jwtManager = m }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}
