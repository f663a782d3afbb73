// File: slotwise/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotwise/config"
	"slotwise/cron"
	"slotwise/database"
	availabilityRepoPkg "slotwise/database/repository/availability"
	clientRepoPkg "slotwise/database/repository/client"
	recurrenceRepoPkg "slotwise/database/repository/recurrence"
	serviceRepoPkg "slotwise/database/repository/service"
	slotRepoPkg "slotwise/database/repository/slot"
	waitlistRepoPkg "slotwise/database/repository/waitlist"
	"slotwise/handlers"
	"slotwise/middleware"
	"slotwise/routes"
	"slotwise/services/audit"
	"slotwise/services/generator"
	"slotwise/services/impact"
	"slotwise/services/notification"
	"slotwise/services/recurrence"
	"slotwise/services/slots"
	"slotwise/services/tasks"
	"slotwise/services/waitlist"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	svcRepo := serviceRepoPkg.NewMongoServiceRepo()
	availRepo := availabilityRepoPkg.NewMongoAvailabilityRepo()
	slotRepo := slotRepoPkg.NewMongoSlotRepo()
	recRepo := recurrenceRepoPkg.NewMongoRecurrenceRepo()
	wlRepo := waitlistRepoPkg.NewMongoWaitlistRepo()
	cliRepo := clientRepoPkg.NewMongoClientRepo()

	if err := slotRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure slot indexes: %v", err)
	}
	if err := recRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure recurrence indexes: %v", err)
	}
	if err := wlRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure waitlist indexes: %v", err)
	}

	// background task queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer asynqClient.Close()
	runner := tasks.NewRunner(asynqClient)

	clock := utils.RealClock{}
	locker := &utils.RedisLocker{Client: utils.GetLockClient()}
	auditSvc := audit.NewMongoAuditService()
	notifySvc := notification.NewQueueNotificationService(runner)

	// services.
	waitlistEngine := &waitlist.DefaultEngine{
		Repo:     wlRepo,
		Slots:    slotRepo,
		Services: svcRepo,
		Notify:   notifySvc,
		Audit:    auditSvc,
		Locker:   locker,
		Clock:    clock,
		Logger:   logger,
	}

	slotEngine := &slots.DefaultSlotEngine{
		Repo:     slotRepo,
		Waitlist: waitlistEngine,
		Audit:    auditSvc,
		Clock:    clock,
		Logger:   logger,
	}

	recurrenceEngine := &recurrence.DefaultEngine{
		Repo:          recRepo,
		Slots:         slotRepo,
		Audit:         auditSvc,
		Clock:         clock,
		Logger:        logger,
		ScanMonths:    config.AppConfig.RecurrenceScanMonths,
		ForeverMonths: config.AppConfig.RecurrenceForeverMonths,
	}

	generatorSvc := &generator.DefaultGeneratorService{
		Services:     svcRepo,
		Availability: availRepo,
		Slots:        slotRepo,
		Recurrences:  recurrenceEngine,
		Clock:        clock,
		Logger:       logger,
		ChunkDays:    config.AppConfig.GenerateChunkDays,
		BatchSize:    config.AppConfig.PersistBatchSize,
	}

	analyzer := &impact.DefaultAnalyzer{
		Slots:        slotRepo,
		Availability: availRepo,
		Clients:      cliRepo,
		Notify:       notifySvc,
		Audit:        auditSvc,
		Runner:       runner,
		Clock:        clock,
		Logger:       logger,
	}

	// handlers.
	serviceHandler := handlers.NewServiceHandler(svcRepo)
	availabilityHandler := handlers.NewAvailabilityHandler(availRepo, analyzer)
	generationHandler := handlers.NewGenerationHandler(generatorSvc, runner)
	slotHandler := handlers.NewSlotHandler(slotEngine, slotRepo)
	recurrenceHandler := handlers.NewRecurrenceHandler(recurrenceEngine)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistEngine)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		CreateServiceHandler: serviceHandler.CreateServiceHandler,
		UpdateServiceHandler: serviceHandler.UpdateServiceHandler,
		DeleteServiceHandler: serviceHandler.DeleteServiceHandler,
		GetServiceHandler:    serviceHandler.GetServiceHandler,
		ListServicesHandler:  serviceHandler.ListServicesHandler,

		SetWindowsHandler:           availabilityHandler.SetWindowsHandler,
		GetWindowsHandler:           availabilityHandler.GetWindowsHandler,
		DeleteWindowHandler:         availabilityHandler.DeleteWindowHandler,
		CreateUnavailabilityHandler: availabilityHandler.CreateUnavailabilityHandler,
		DeleteUnavailabilityHandler: availabilityHandler.DeleteUnavailabilityHandler,
		AnalyzeImpactHandler:        availabilityHandler.AnalyzeImpactHandler,
		ApplyChangeHandler:          availabilityHandler.ApplyChangeHandler,

		GenerateForServiceHandler: generationHandler.GenerateForServiceHandler,
		ExtendByOneDayHandler:     generationHandler.ExtendByOneDayHandler,

		ListSlotsHandler:             slotHandler.ListSlotsHandler,
		EnrollHandler:                slotHandler.EnrollHandler,
		UnenrollHandler:              slotHandler.UnenrollHandler,
		ListClientEnrollmentsHandler: slotHandler.ListClientEnrollmentsHandler,

		CheckFeasibilityHandler: recurrenceHandler.CheckFeasibilityHandler,
		CreateRecurrenceHandler: recurrenceHandler.CreateRecurrenceHandler,
		CancelRecurrenceHandler: recurrenceHandler.CancelRecurrenceHandler,

		EnqueueWaitlistHandler:     waitlistHandler.EnqueueWaitlistHandler,
		CancelWaitlistEntryHandler: waitlistHandler.CancelWaitlistEntryHandler,

		HealthHandler: handlers.HealthHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background worker and periodic triggers.
	cron.InitTaskWorker(generatorSvc, analyzer, notification.LogSender{})
	scheduler := cron.StartScheduler(generatorSvc, slotEngine, waitlistEngine)

	utils.StartHealthMonitor(database.MongoClient, map[string]*redis.Client{
		"cache": utils.GetCacheClient(),
		"locks": utils.GetLockClient(),
	})

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
