package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	c "github.com/SebastianDabkowski/mercato-1-sub013/internal/cache"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/catalog"
	pl "github.com/SebastianDabkowski/mercato-1-sub013/internal/poller"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/promo"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/repository"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Configuration
	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017")
	mongoDBName := getEnv("MONGO_DB_NAME", "cartdb")
	catalogDBPath := getEnv("CATALOG_DB_PATH", "catalog.db")
	catalogMigrations := getEnv("CATALOG_MIGRATIONS_PATH", "migrations/catalog")
	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	ctx := context.Background()

	// Cart store (MongoDB)
	mongoCfg := repository.MongoConfig{
		ConnectTimeout:         time.Duration(getEnvInt("MONGO_CONNECT_TIMEOUT_SEC", 10)) * time.Second,
		ServerSelectionTimeout: time.Duration(getEnvInt("MONGO_SERVER_SELECTION_TIMEOUT_SEC", 5)) * time.Second,
		MaxPoolSize:            uint64(getEnvInt("MONGO_MAX_POOL_SIZE", 100)),
		MinPoolSize:            uint64(getEnvInt("MONGO_MIN_POOL_SIZE", 10)),
	}
	mongoDB, err := repository.ConnectMongoDB(ctx, mongoURI, mongoDBName, mongoCfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	repo := repository.NewMongoRepository(mongoDB)
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", mongoURI)

	// Cart cache (Redis)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")
	cartCache := c.NewRedisCache(redisClient)

	// Catalog lookup (sqlite)
	catalogRepo, err := catalog.NewRepository(catalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(catalogMigrations); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	// Promo code store (Postgres)
	promoCred := &promo.Credentials{
		Host:              getEnv("PROMO_DB_HOST", "localhost"),
		Port:              getEnvInt("PROMO_DB_PORT", 5432),
		User:              getEnv("PROMO_DB_USER", "postgres"),
		Password:          getEnv("PROMO_DB_PASSWORD", "postgres"),
		DBName:            getEnv("PROMO_DB_NAME", "promodb"),
		MigrationsDirPath: getEnv("PROMO_MIGRATIONS_PATH", "migrations/promo"),
	}
	promoRepo, err := promo.NewPostgresRepository(promoCred)
	if err != nil {
		log.Fatalf("Failed to connect to promo database: %v", err)
	}
	defer promoRepo.Close()
	if err := promoRepo.RunMigrations(promoCred); err != nil {
		log.Fatalf("Failed to run promo migrations: %v", err)
	}
	log.Printf("Connected to promo database at %s:%d", promoCred.Host, promoCred.Port)

	// The cart service and checkout validator are constructed by the embedding
	// web layer on top of these stores; this binary prepares the stores and
	// hosts the order-confirmation consumer.
	pollerCtx, cancelPoller := context.WithCancel(ctx)
	poller := pl.NewPoller(repo, promoRepo, cartCache, kafkaBrokers...)
	go poller.Run(pollerCtx)
	log.Printf("Order-confirmation consumer started on %v", kafkaBrokers)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down cart engine...")
	cancelPoller()
	poller.Close()
	mongoDB.Client().Disconnect(ctx)
	log.Println("Cart engine stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
