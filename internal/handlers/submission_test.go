package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"devarena/internal/logger"
	"devarena/internal/models"
	"devarena/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type echoExecutor struct {
	outputs map[string]string
}

func (e *echoExecutor) Execute(ctx context.Context, sourceCode string, language services.Language, stdin string) (*services.ExecutionResult, error) {
	return &services.ExecutionResult{Stdout: e.outputs[stdin]}, nil
}

type stubUserStore struct{ user models.User }

func (s *stubUserStore) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	if userID != s.user.ID {
		return nil, models.ErrUserNotFound
	}
	u := s.user
	return &u, nil
}

func (s *stubUserStore) ResolveUser(ctx context.Context, identifier string) (*models.User, error) {
	if identifier != s.user.Username {
		return nil, models.ErrUserNotFound
	}
	u := s.user
	return &u, nil
}

func (s *stubUserStore) ApplySolveStats(ctx context.Context, userID int, upd models.SolveStatsUpdate, prevLastSolvedAt *time.Time) (bool, error) {
	return true, nil
}

func (s *stubUserStore) IncrementSubmissionCounters(ctx context.Context, userID, totalDelta, successfulDelta int) error {
	return nil
}

type stubProblemStore struct {
	problem   models.Problem
	testCases []services.TestCase
}

func (s *stubProblemStore) GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error) {
	if problemID != s.problem.ID {
		return nil, models.ErrProblemNotFound
	}
	p := s.problem
	return &p, nil
}

func (s *stubProblemStore) GetTestCases(ctx context.Context, problemID int) ([]services.TestCase, error) {
	return s.testCases, nil
}

type stubProgressStore struct{}

func (s *stubProgressStore) RecordFirstSolve(ctx context.Context, attempt *models.ProblemAttempt, totalDelta int) (bool, error) {
	return true, nil
}

func (s *stubProgressStore) RecordRepeatSolve(ctx context.Context, userID, problemID int, solveTimeMs *int64, language string, now time.Time) error {
	return nil
}

func newSubmissionRouter() *gin.Engine {
	executor := &echoExecutor{outputs: map[string]string{"": "ok\n", "2 3": "5\n"}}
	svc := services.NewSubmissionService(
		&stubUserStore{user: models.User{ID: 7, Username: "alice"}},
		&stubProblemStore{
			problem:   models.Problem{ID: 42, Title: "Add Two Numbers"},
			testCases: []services.TestCase{{ID: 1, Input: "2 3", Expected: "5"}},
		},
		&stubProgressStore{},
		services.NewTestCaseRunner(executor),
		executor,
		nil,
		false,
	)

	router := gin.New()
	NewSubmissionHandler(svc, services.NewTokenService("test-secret")).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRunCodeEndpoint(t *testing.T) {
	router := newSubmissionRouter()

	w := postJSON(t, router, "/submissions/run", `{"code":"print('ok')","language":"python"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		EvaluationID string `json:"evaluation_id"`
		Output       string `json:"output"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Output != "ok\n" {
		t.Errorf("output = %q", resp.Output)
	}
	if resp.EvaluationID == "" {
		t.Errorf("evaluation_id missing")
	}
}

func TestRunCodeRejectsUnsupportedLanguage(t *testing.T) {
	router := newSubmissionRouter()

	w := postJSON(t, router, "/submissions/run", `{"code":"x","language":"ruby"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp struct {
		Error              string   `json:"error"`
		SupportedLanguages []string `json:"supported_languages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.SupportedLanguages) == 0 {
		t.Errorf("supported_languages missing from rejection")
	}
}

func TestSubmitEndpointHappyPath(t *testing.T) {
	router := newSubmissionRouter()

	w := postJSON(t, router, "/submissions/submit",
		`{"username":"alice","problem_id":42,"language":"python","code":"code"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp services.SubmitResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.AllPassed || !resp.ProgressSaved {
		t.Errorf("all_passed = %v, progress_saved = %v", resp.AllPassed, resp.ProgressSaved)
	}
}

func TestSubmitEndpointUnknownProblem(t *testing.T) {
	router := newSubmissionRouter()

	w := postJSON(t, router, "/submissions/submit",
		`{"username":"alice","problem_id":999,"language":"python","code":"code"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSubmitEndpointUnknownUser(t *testing.T) {
	router := newSubmissionRouter()

	w := postJSON(t, router, "/submissions/submit",
		`{"username":"nobody","problem_id":42,"language":"python","code":"code"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSubmitEndpointMissingIdentity(t *testing.T) {
	router := newSubmissionRouter()

	w := postJSON(t, router, "/submissions/submit",
		`{"problem_id":42,"language":"python","code":"code"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
