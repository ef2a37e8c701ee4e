package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/postgres/agentrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/outletrepo"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultSweepInterval = 2 * time.Minute

func main() {
	configs := getConfigs()
	if err := configs.Validate(); err != nil {
		log.Fatalf("Invalid DEFAULT_ALGORITHM: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustOpenDB(configs)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
	})

	root := cmd.NewCompositionRoot(configs, gormDB, redisClient, logger)

	jobManager := jobs.NewJobManager(
		root.CreateSweepOverdueOrdersCommandHandler(),
		sweepInterval(configs),
		logger,
	)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(root, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		RedisAddr:     goDotEnvVariable("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DefaultAlgorithm:     goDotEnvVariable("DEFAULT_ALGORITHM"),
		OverdueSweepInterval: os.Getenv("OVERDUE_SWEEP_INTERVAL"),
	}
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustOpenDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &outletrepo.OutletDTO{}, &agentrepo.AgentDTO{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func sweepInterval(configs cmd.Config) time.Duration {
	if configs.OverdueSweepInterval == "" {
		return defaultSweepInterval
	}

	interval, err := time.ParseDuration(configs.OverdueSweepInterval)
	if err != nil {
		log.Fatalf("Invalid OVERDUE_SWEEP_INTERVAL: %v", err)
	}
	return interval
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.Use(middleware.Recover())

	root.CreateHTTPServer().RegisterRoutes(e)
	e.GET("/ws", root.Hub().ServeWS)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
