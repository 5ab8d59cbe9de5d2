package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/devanshmehta/scholarmatch/internal/config"
	"github.com/devanshmehta/scholarmatch/internal/domain/fiber/handler"
	"github.com/devanshmehta/scholarmatch/internal/middleware"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/devanshmehta/scholarmatch/internal/repository"
	"github.com/devanshmehta/scholarmatch/internal/service"
	"github.com/devanshmehta/scholarmatch/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	zapLogger, err := newLogger(appConfig.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer zapLogger.Sync()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB(zapLogger)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewStudentProfileRepository(db)
	scholarshipRepo := repository.NewScholarshipRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)

	provider, err := newEmbeddingProvider(ctx, zapLogger)
	if err != nil {
		zapLogger.Fatal("embedding provider init failed", zap.Error(err))
	}
	embeddings := service.NewEmbeddingService(provider, zapLogger)

	matchingUC := usecase.NewMatchingUsecase(profileRepo, scholarshipRepo, embeddings, zapLogger)
	scholarshipUC := usecase.NewScholarshipUsecase(scholarshipRepo, embeddings, zapLogger)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, zapLogger)
	profileUC := usecase.NewProfileUsecase(profileRepo, userRepo, zapLogger)

	auth := middleware.Auth()

	handler.NewMatchHandler(matchingUC, zapLogger).RegisterRoutes(app, auth)
	handler.NewEmbeddingHandler(embeddings, zapLogger).RegisterRoutes(app)
	handler.NewScholarshipHandler(scholarshipUC).RegisterRoutes(app, auth)
	handler.NewApplicationHandler(applicationUC).RegisterRoutes(app, auth)
	handler.NewProfileHandler(profileUC).RegisterRoutes(app, auth)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			zapLogger.Debug("active goroutines", zap.Int("count", runtime.NumGoroutine()))
		}
	}()

	zapLogger.Info("server running", zap.String("port", appConfig.Port))
	if err := app.Listen(appConfig.Port); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newEmbeddingProvider(ctx context.Context, logger *zap.Logger) (service.EmbeddingProvider, error) {
	switch config.LoadEmbeddingConfig().Provider {
	case "gemini":
		return service.NewGeminiService(ctx, logger)
	default:
		return service.NewOpenAIService(logger), nil
	}
}

func ConnectDB(zapLogger *zap.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zapLogger.Fatal("could not connect to database", zap.Error(err))
	}
	pgDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("could not get database instance", zap.Error(err))
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		zapLogger.Fatal("could not enable pgvector extension", zap.Error(err))
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		zapLogger.Fatal("could not enable uuid-ossp extension", zap.Error(err))
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.StudentProfile{},
		&model.Scholarship{},
		&model.Application{},
	)
	if err != nil {
		zapLogger.Fatal("migration failed", zap.Error(err))
	}

	err = db.Exec(`
        CREATE INDEX IF NOT EXISTS scholarships_vector_embedding_idx
        ON scholarships
        USING ivfflat (vector_embedding vector_cosine_ops)
        WITH (lists = 100)
    `).Error
	if err != nil {
		zapLogger.Fatal("could not create vector index", zap.Error(err))
	}

	return db
}
