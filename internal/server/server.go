package server

import (
	"context"
	"log"
	"net/http"
	"time"

	config "devarena/configs"
	"devarena/internal/dbs"
	"devarena/internal/handlers"
	"devarena/internal/logger"
	"devarena/internal/middlewares"
	"devarena/internal/repositories"
	"devarena/internal/services"
	"devarena/internal/workerpool"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func StartGinServer() {
	logger.InitLogger()
	defer logger.SyncLogger()

	cfg := config.LoadConfig()

	db, err := dbs.Init(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := dbs.InitRedis(ctx, cfg.RedisAddr); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer dbs.CloseRedis()

	cache := services.NewRedisCache(dbs.RedisClient)

	userRepo := repositories.NewUserRepository(db, cache)
	problemRepo := repositories.NewProblemRepository(db, cache)
	progressRepo := repositories.NewProgressRepository(db)

	tokenService := services.NewTokenService(cfg.JWTSecret)
	executor := services.NewJudgeClient(cfg.JudgeURL, cfg.JudgeAPIKey, cfg.JudgeAPIHost)
	runner := services.NewTestCaseRunner(executor)
	syncQueue := services.NewProgressSyncQueue(dbs.RedisClient, services.ProgressSyncStream)

	submissionService := services.NewSubmissionService(
		userRepo, problemRepo, progressRepo, runner, executor, syncQueue,
		cfg.CountFirstSolveSubmission,
	)
	statsService := services.NewStatsService(userRepo, progressRepo)

	pool := workerpool.NewSyncWorkerPool(
		cfg.NumberOfWorkers, dbs.RedisClient,
		services.ProgressSyncStream, "stats_syncers", statsService,
	)
	if err := pool.Start(ctx); err != nil {
		logger.Log.Error("Failed starting worker pool")
		log.Fatalf("failed to start worker pool: %v", err)
	}
	defer pool.Stop()

	router := gin.New()
	router.Use(middlewares.ErrorHandlerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	handlers.NewAuthHandler(userRepo, tokenService).RegisterRoutes(router)
	handlers.NewProblemHandler(problemRepo, progressRepo, tokenService).RegisterRoutes(router)
	handlers.NewSubmissionHandler(submissionService, tokenService).RegisterRoutes(router)
	handlers.NewProgressHandler(statsService, userRepo, syncQueue, tokenService).RegisterRoutes(router)

	port := ":" + cfg.ServerPort
	log.Printf("Starting server on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
