package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codetrack-go-api/internal/config"
	"github.com/noah-isme/codetrack-go-api/internal/database"
	"github.com/noah-isme/codetrack-go-api/internal/handler"
	"github.com/noah-isme/codetrack-go-api/internal/middleware"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
	"github.com/noah-isme/codetrack-go-api/internal/router"
	"github.com/noah-isme/codetrack-go-api/internal/service"
	"github.com/noah-isme/codetrack-go-api/pkg/platform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Problem{},
		&models.Submission{},
		&models.TestSession{},
		&models.TestPenalty{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	sessionRepo := repository.NewTestSessionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	gfgClient := platform.NewGFGClient(platform.GFGConfig{
		BulkURL: cfg.GFGCheckerURL,
		Logger:  logger,
	})
	leetcodeClient := platform.NewLeetCodeClient(platform.LeetCodeConfig{Logger: logger})
	hackerrankClient := platform.NewHackerRankClient(platform.HackerRankConfig{Logger: logger})

	leetcodeSync := service.NewLeetCodeSyncService(leetcodeClient, submissionRepo, assignmentRepo, userRepo, logger)
	hackerrankSync := service.NewHackerRankSyncService(hackerrankClient, submissionRepo, assignmentRepo, userRepo, logger)
	reconcileService := service.NewReconcileService(
		submissionRepo, assignmentRepo, userRepo,
		gfgClient, leetcodeSync, hackerrankSync,
		service.ReconcileConfig{
			BatchSize:  cfg.SweepBatchSize,
			BatchPause: cfg.SweepBatchPause,
		},
		logger,
	)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationPrefix, natsConn, validate, logger)
	antiCheatService := service.NewAntiCheatService(sessionRepo, notificationService, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classRepo, submissionRepo, validate, logger)
	classService := service.NewClassService(classRepo, assignmentRepo, submissionRepo, userRepo, redisClient, cfg.LeaderboardTTL, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)

	classHandler := handler.NewClassHandler(classService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	syncHandler := handler.NewSyncHandler(reconcileService, logger)
	violationHandler := handler.NewViolationHandler(antiCheatService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive)
	userHandler := handler.NewUserHandler(userService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ClassHandler:        classHandler,
		AssignmentHandler:   assignmentHandler,
		SyncHandler:         syncHandler,
		ViolationHandler:    violationHandler,
		NotificationHandler: notificationHandler,
		UserHandler:         userHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
