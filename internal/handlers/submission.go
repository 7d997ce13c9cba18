package handlers

import (
	"context"
	"errors"
	"net/http"

	"devarena/internal/logger"
	"devarena/internal/middlewares"
	"devarena/internal/models"
	"devarena/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	submissions  *services.SubmissionService
	tokenService *services.TokenService
}

func NewSubmissionHandler(submissions *services.SubmissionService, tokenService *services.TokenService) *SubmissionHandler {
	return &SubmissionHandler{
		submissions:  submissions,
		tokenService: tokenService,
	}
}

// RunCode executes code without recording anything. With a problem_id the
// code is evaluated against the problem's stored test cases.
func (h *SubmissionHandler) RunCode(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.submissions.RunCode(context.Background(), &req)
	if err != nil {
		h.writeSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Submit evaluates code against a problem and records the solve when every
// test case passes. A wrong answer is a 200 with all_passed=false, not an
// error.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A logged-in session outranks whatever identity the payload carries.
	if userID := middlewares.UserIDFromContext(c); userID > 0 {
		req.UserID = userID
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.submissions.Submit(context.Background(), &req)
	if err != nil {
		h.writeSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SubmissionHandler) writeSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnsupportedLanguage):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "Unsupported language",
			"supported_languages": services.SupportedLanguages(),
		})
	case errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, models.ErrProblemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
	default:
		logger.Log.Error("Submission request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error running code. Please try again."})
	}
}

func (h *SubmissionHandler) RegisterRoutes(router *gin.Engine) {
	submissionGroup := router.Group("/submissions")
	submissionGroup.Use(middlewares.OptionalAuthMiddleware(h.tokenService))
	{
		submissionGroup.POST("/run", h.RunCode)
		submissionGroup.POST("/submit", h.Submit)
	}
}
