package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aquaflow/aquaflow-backend/internal/config"
	"github.com/aquaflow/aquaflow-backend/internal/database"
	"github.com/aquaflow/aquaflow-backend/internal/handlers"
	"github.com/aquaflow/aquaflow-backend/internal/queue"
	"github.com/aquaflow/aquaflow-backend/internal/services"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	var store storage.Storage
	switch cfg.StorageBackend {
	case "postgres":
		db, err := database.InitDB(cfg.DatabaseURL)
		if err != nil {
			logrus.Fatalf("Failed to initialize database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			logrus.Fatalf("Failed to get database instance: %v", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)

		store = storage.NewGormStorage(db)
		logrus.Info("Using postgres storage backend")
	case "memory":
		store = storage.NewMemStorage()
		logrus.Warn("Using in-memory storage backend; data is not persisted")
	default:
		logrus.Fatalf("Unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if err := services.InitRedis(cfg.RedisURL); err != nil {
		logrus.Fatalf("Failed to initialize Redis: %v", err)
	}

	if err := services.InitFirebase(cfg.FirebaseCreds); err != nil {
		logrus.Warnf("Firebase initialization warning: %v", err)
	}

	if err := services.InitUploads(); err != nil {
		logrus.Fatalf("Failed to initialize upload storage: %v", err)
	}

	hub := services.NewHub()
	go hub.Run()

	if cfg.RabbitMQURL != "" {
		go queue.StartAnomalyConsumer(cfg.RabbitMQURL, store)
	} else {
		logrus.Warn("RABBITMQ_URL not set; anomaly event intake disabled")
	}

	r := handlers.NewRouter(store, hub)

	logrus.WithField("port", cfg.Port).Info("Starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
