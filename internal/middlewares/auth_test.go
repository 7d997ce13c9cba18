package middlewares

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"devarena/internal/logger"
	"devarena/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newProtectedRouter(tokenService *services.TokenService, adminOnly bool) *gin.Engine {
	router := gin.New()
	chain := []gin.HandlerFunc{AuthMiddleware(tokenService)}
	if adminOnly {
		chain = append(chain, AdminMiddleware())
	}
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserIDFromContext(c)})
	})
	router.GET("/protected", chain...)
	return router
}

func requestWithToken(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	tokenService := services.NewTokenService("secret")
	router := newProtectedRouter(tokenService, false)

	if w := requestWithToken(router, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := requestWithToken(router, "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}

	access, _, err := tokenService.GenerateTokens(7, "alice", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	if w := requestWithToken(router, access); w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestAdminMiddlewareRejectsNonAdmins(t *testing.T) {
	tokenService := services.NewTokenService("secret")
	router := newProtectedRouter(tokenService, true)

	userToken, _, err := tokenService.GenerateTokens(7, "alice", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	if w := requestWithToken(router, userToken); w.Code != http.StatusForbidden {
		t.Errorf("user role: status = %d, want 403", w.Code)
	}

	adminToken, _, err := tokenService.GenerateTokens(1, "root", "root@example.com", "admin")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	if w := requestWithToken(router, adminToken); w.Code != http.StatusOK {
		t.Errorf("admin role: status = %d, want 200", w.Code)
	}
}
