package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/yashgautam99/jewellry/internal/cart"
	"github.com/yashgautam99/jewellry/internal/cart/cache"
	cartrepo "github.com/yashgautam99/jewellry/internal/cart/repository"
	"github.com/yashgautam99/jewellry/internal/catalog"
	"github.com/yashgautam99/jewellry/internal/checkout"
	h "github.com/yashgautam99/jewellry/internal/http"
	"github.com/yashgautam99/jewellry/internal/order"
	"github.com/yashgautam99/jewellry/internal/pricing"
	"github.com/yashgautam99/jewellry/internal/publisher"
)

type Config struct {
	HTTPPort string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	Postgres order.Credentials

	KafkaBrokers []string

	FreeShippingThreshold int64
	FlatShippingFee       int64

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "jewellry"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		Postgres: order.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "jewellry"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "migrations"),
		},

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		FreeShippingThreshold: int64(getEnvInt("FREE_SHIPPING_THRESHOLD", pricing.DefaultFreeShippingThreshold)),
		FlatShippingFee:       int64(getEnvInt("FLAT_SHIPPING_FEE", pricing.DefaultFlatShippingFee)),

		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoDB.Client().Disconnect(disconnectCtx); err != nil {
			log.Printf("error disconnecting mongodb: %v", err)
		}
	}()

	cartRepository := cartrepo.NewMongoRepository(mongoDB)
	if err := cartrepo.EnsureIndexes(context.Background(), cartRepository); err != nil {
		log.Printf("failed to create cart indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	cartService := cart.NewService(cartRepository, cache.NewRedisCache(redisClient))

	orderRepository, err := order.NewRepository(&cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer orderRepository.Close()

	if err := orderRepository.RunMigrations(&cfg.Postgres); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	resolver := pricing.NewResolver(catalog.NewRepository(orderRepository.DB()), pricing.Config{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	})

	orderWriter := order.NewWriter(orderRepository)
	checkoutService := checkout.NewService(resolver, orderWriter)

	opsPoller := publisher.NewOpsPoller(orderRepository, cfg.KafkaBrokers...)
	defer opsPoller.Close()

	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	defer pollerCancel()
	go opsPoller.Run(pollerCtx)

	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cartService, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(orderWriter, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.CartSessionMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddLine)
			r.Put("/items/{variant_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{variant_id}", cartHandler.RemoveLine)
		})

		r.Post("/checkout", checkoutHandler.PlaceOrder)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})

		r.Patch("/admin/orders/{order_id}/status", ordersHandler.UpdateStatus)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	pollerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
