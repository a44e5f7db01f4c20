package main

import (
	"context"
	"log"
	"time"

	"property-ingestion-backend/internal/cache"
	"property-ingestion-backend/internal/config"
	"property-ingestion-backend/internal/models"
	"property-ingestion-backend/internal/oracle"
	"property-ingestion-backend/internal/routes"
	"property-ingestion-backend/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	db := config.InitDB(cfg)

	db.AutoMigrate(
		&models.UploadRecord{},
		&models.Tenant{},
		&models.Building{},
		&models.Expense{},
		&models.Unit{},
		&models.Payment{},
	)

	store, err := storage.NewDiskStore(cfg.StorageDir)
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}

	oracleClient, err := oracle.NewOpenAIClient(oracle.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	}, logger)
	if err != nil {
		logger.Fatal("failed to init classification client", zap.Error(err))
	}

	var c cache.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, using in-memory cache", zap.Error(err))
			c = cache.NewMemoryCache()
		} else {
			c = redisCache
		}
	} else {
		c = cache.NewMemoryCache()
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, oracleClient, store, c, logger)

	logger.Info("server listening", zap.String("port", cfg.Port))
	r.Run(":" + cfg.Port)
}

func newLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}
