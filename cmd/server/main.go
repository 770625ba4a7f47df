package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/agritech/backend/internal/cache"
	"github.com/agritech/backend/internal/delivery/http"
	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/internal/reference"
	"github.com/agritech/backend/internal/repository/postgres"
	"github.com/agritech/backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	// Reference tables are embedded; a bad table is a build defect
	store, err := reference.Load()
	if err != nil {
		log.Fatalf("Failed to load reference data: %v", err)
	}

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			if pool != nil {
				pool.Close()
				pool = nil
			}
		} else {
			defer pool.Close()
			log.Println("Connected to PostgreSQL")
		}
	}

	// Dependency Injection: Repositories
	var dataRepo service.DataRepository
	if pool != nil {
		dataRepo = postgres.NewPostgresRepository(pool)
	} else {
		log.Println("Running with in-memory repository")
		dataRepo = postgres.NewMockRepository()
	}

	// Weather cache: Redis when configured, otherwise in-process
	var weatherCache cache.Cache[domain.WeatherSnapshot]
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Printf("Warning: Could not connect to Redis: %v", err)
		} else {
			defer client.Close()
			log.Printf("Connected to Redis at %s", cfg.RedisAddr)
			weatherCache = cache.NewRedis[domain.WeatherSnapshot](client, "weather:", cfg.WeatherCacheTTL)
		}
	}
	if weatherCache == nil {
		weatherCache = cache.NewMemory[domain.WeatherSnapshot](cfg.WeatherCacheTTL, nil)
	}

	// External forecasters, consulted in order
	var forecasters []service.ExternalForecaster
	if cfg.ModelPath != "" {
		artifact, err := service.LoadArtifact(cfg.ModelPath)
		if err != nil {
			log.Printf("Warning: Could not load model artifact: %v", err)
		} else {
			log.Printf("Loaded model artifact %s", artifact.Version())
			forecasters = append(forecasters, artifact)
		}
	}
	if cfg.MLServiceURL != "" {
		mlBridge := service.NewMLBridge(cfg.MLServiceURL)
		if err := mlBridge.Health(ctx); err != nil {
			log.Printf("Warning: ML service unavailable, forecasts will not be blended until it is: %v", err)
		}
		forecasters = append(forecasters, mlBridge)
	}

	// Dependency Injection: Services
	weatherSvc := service.NewWeatherService(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, weatherCache, store)
	agriSvc := service.NewAgriService(store, weatherSvc, dataRepo, forecasters...)
	translator := service.NewTranslator(store)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Agricultural Advisory API v" + http.Version,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, agriSvc, translator)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	agriSvc.WaitBackground()
	log.Println("Server exited gracefully")
}

type Config struct {
	DatabaseURL        string
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	MLServiceURL       string
	ModelPath          string
	RedisAddr          string
	RedisPassword      string
	WeatherCacheTTL    time.Duration
	Port               string
	Env                string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		OpenWeatherAPIKey:  getEnv("OPENWEATHER_API_KEY", ""),
		OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", service.DefaultOpenWeatherURL),
		MLServiceURL:       getEnv("ML_SERVICE_URL", ""),
		ModelPath:          getEnv("MODEL_PATH", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		WeatherCacheTTL:    getDuration("WEATHER_CACHE_TTL", cache.DefaultTTL),
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
