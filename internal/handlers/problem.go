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

type ProblemHandler struct {
	problemRepo  repositories.ProblemRepository
	progressRepo repositories.ProgressRepository
	tokenService *services.TokenService
}

func NewProblemHandler(problemRepo repositories.ProblemRepository, progressRepo repositories.ProgressRepository, tokenService *services.TokenService) *ProblemHandler {
	return &ProblemHandler{
		problemRepo:  problemRepo,
		progressRepo: progressRepo,
		tokenService: tokenService,
	}
}

// ListProblems returns the catalog. For an authenticated caller each entry
// carries whether they have solved it.
func (h *ProblemHandler) ListProblems(c *gin.Context) {
	problems, err := h.problemRepo.GetProblems(context.Background())
	if err != nil {
		logger.Log.Error("Failed to list problems", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}
	if problems == nil {
		problems = []models.ProblemListItem{}
	}

	if userID := middlewares.UserIDFromContext(c); userID > 0 {
		solved, err := h.progressRepo.GetSolvedProblems(context.Background(), userID)
		if err != nil {
			logger.Log.Warn("Failed to load solved set for problem list",
				zap.Int("user_id", userID),
				zap.Error(err))
		} else {
			solvedIDs := make(map[int]bool, len(solved))
			for _, p := range solved {
				solvedIDs[p.ID] = true
			}
			for i := range problems {
				problems[i].IsSolved = solvedIDs[problems[i].ID]
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"problems": problems})
}

func (h *ProblemHandler) GetProblem(c *gin.Context) {
	problemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || problemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	problem, err := h.problemRepo.GetProblemByID(context.Background(), problemID)
	if err != nil {
		if errors.Is(err, models.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to get problem", zap.Int("problem_id", problemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		return
	}

	c.JSON(http.StatusOK, problem)
}

func (h *ProblemHandler) GetProblemBySlug(c *gin.Context) {
	problemSlug := c.Param("slug")
	if problemSlug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem slug"})
		return
	}

	problem, err := h.problemRepo.GetProblemBySlug(context.Background(), problemSlug)
	if err != nil {
		if errors.Is(err, models.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to get problem by slug", zap.String("slug", problemSlug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		return
	}

	c.JSON(http.StatusOK, problem)
}

func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	var req models.CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	problem, err := h.problemRepo.CreateProblem(context.Background(), &req)
	if err != nil {
		logger.Log.Error("Failed to create problem", zap.String("title", req.Title), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create problem"})
		return
	}

	c.JSON(http.StatusCreated, problem)
}

func (h *ProblemHandler) UpdateProblem(c *gin.Context) {
	problemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || problemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var req models.CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.problemRepo.UpdateProblem(context.Background(), problemID, &req); err != nil {
		if errors.Is(err, models.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to update problem", zap.Int("problem_id", problemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update problem"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ProblemHandler) DeleteProblem(c *gin.Context) {
	problemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || problemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	if err := h.problemRepo.DeleteProblem(context.Background(), problemID); err != nil {
		if errors.Is(err, models.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to delete problem", zap.Int("problem_id", problemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete problem"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ProblemHandler) RegisterRoutes(router *gin.Engine) {
	problemGroup := router.Group("/problems")
	problemGroup.Use(middlewares.OptionalAuthMiddleware(h.tokenService))
	{
		problemGroup.GET("", h.ListProblems)
		problemGroup.GET("/:id", h.GetProblem)
		problemGroup.GET("/slug/:slug", h.GetProblemBySlug)
	}

	adminGroup := router.Group("/problems")
	adminGroup.Use(middlewares.AuthMiddleware(h.tokenService), middlewares.AdminMiddleware())
	{
		adminGroup.POST("", h.CreateProblem)
		adminGroup.PUT("/:id", h.UpdateProblem)
		adminGroup.DELETE("/:id", h.DeleteProblem)
	}
}
