package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"devarena/internal/logger"
	"devarena/internal/middlewares"
	"devarena/internal/models"
	"devarena/internal/repositories"
	"devarena/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProgressHandler struct {
	stats        *services.StatsService
	userRepo     repositories.UserRepository
	syncer       services.SyncEnqueuer
	tokenService *services.TokenService
}

func NewProgressHandler(stats *services.StatsService, userRepo repositories.UserRepository, syncer services.SyncEnqueuer, tokenService *services.TokenService) *ProgressHandler {
	return &ProgressHandler{
		stats:        stats,
		userRepo:     userRepo,
		syncer:       syncer,
		tokenService: tokenService,
	}
}

// GetSolvedProblems returns the solved set for a user, oldest solve first.
func (h *ProgressHandler) GetSolvedProblems(c *gin.Context) {
	identifier := c.Param("username")

	solved, err := h.stats.GetSolvedProblems(context.Background(), identifier)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Log.Error("Failed to get solved problems", zap.String("identifier", identifier), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"solved_problems": solved, "count": len(solved)})
}

// GetProblemAttempt returns the attempt detail for one solved problem.
func (h *ProgressHandler) GetProblemAttempt(c *gin.Context) {
	identifier := c.Param("username")
	problemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || problemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	attempt, err := h.stats.GetProblemAttempt(context.Background(), identifier, problemID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, models.ErrAttemptNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not solved yet"})
		default:
			logger.Log.Error("Failed to get problem attempt",
				zap.String("identifier", identifier),
				zap.Int("problem_id", problemID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attempt"})
		}
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *ProgressHandler) GetUserStats(c *gin.Context) {
	identifier := c.Param("username")

	stats, err := h.stats.GetUserStats(context.Background(), identifier)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Log.Error("Failed to get user stats", zap.String("identifier", identifier), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// SyncUserStats schedules a background recompute of the user's counters from
// the ledger.
func (h *ProgressHandler) SyncUserStats(c *gin.Context) {
	identifier := c.Param("username")

	user, err := h.userRepo.ResolveUser(context.Background(), identifier)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Log.Error("Failed to resolve user for stats sync", zap.String("identifier", identifier), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule sync"})
		return
	}

	if err := h.syncer.EnqueueStatsSync(context.Background(), user.ID); err != nil {
		logger.Log.Error("Failed to enqueue stats sync", zap.Int("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule sync"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Stats sync scheduled"})
}

func (h *ProgressHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/progress/:username", h.GetSolvedProblems)
	router.GET("/progress/:username/problems/:id", h.GetProblemAttempt)

	statsGroup := router.Group("/stats")
	{
		statsGroup.GET("/:username", h.GetUserStats)
		statsGroup.POST("/:username/sync",
			middlewares.AuthMiddleware(h.tokenService),
			middlewares.AdminMiddleware(),
			h.SyncUserStats)
	}
}
