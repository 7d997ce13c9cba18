package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devarena/internal/logger"
	"devarena/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrProgressPersist marks a bookkeeping failure after the code already
// passed every test case. The verdict is still delivered to the caller.
var ErrProgressPersist = errors.New("failed to persist progress")

// solveStatsRetries bounds the compare-and-swap loop on the user row.
const solveStatsRetries = 3

// UserStore is the slice of the user repository the workflow needs.
type UserStore interface {
	GetUserByID(ctx context.Context, userID int) (*models.User, error)
	ResolveUser(ctx context.Context, identifier string) (*models.User, error)
	ApplySolveStats(ctx context.Context, userID int, upd models.SolveStatsUpdate, prevLastSolvedAt *time.Time) (bool, error)
	IncrementSubmissionCounters(ctx context.Context, userID, totalDelta, successfulDelta int) error
}

// ProblemStore resolves problems and their stored test cases.
type ProblemStore interface {
	GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error)
	GetTestCases(ctx context.Context, problemID int) ([]TestCase, error)
}

// ProgressStore mutates the per-user progress ledger. Both record calls are
// atomic: a failure leaves no partial rows behind, so a failed submission can
// always be retried from the top.
type ProgressStore interface {
	RecordFirstSolve(ctx context.Context, attempt *models.ProblemAttempt, totalDelta int) (bool, error)
	RecordRepeatSolve(ctx context.Context, userID, problemID int, solveTimeMs *int64, language string, now time.Time) error
}

// SyncEnqueuer schedules a background reconciliation of a user's counters.
type SyncEnqueuer interface {
	EnqueueStatsSync(ctx context.Context, userID int) error
}

type SubmitResult struct {
	EvaluationID  string                    `json:"evaluation_id"`
	AllPassed     bool                      `json:"all_passed"`
	Results       []TestCaseResult          `json:"results"`
	AlreadySolved bool                      `json:"already_solved"`
	ProgressSaved bool                      `json:"progress_saved"`
	Message       string                    `json:"message,omitempty"`
	UserStats     *models.UserStatsSnapshot `json:"user_stats,omitempty"`
}

type RunResult struct {
	EvaluationID string           `json:"evaluation_id"`
	Output       string           `json:"output,omitempty"`
	Results      []TestCaseResult `json:"results,omitempty"`
	AllPassed    *bool            `json:"all_passed,omitempty"`
}

// SubmissionService orchestrates one evaluation: it runs the submitted code
// against the problem's test cases and, when everything passes, records the
// solve in the ledger and the user's counters.
type SubmissionService struct {
	users    UserStore
	problems ProblemStore
	progress ProgressStore
	runner   *TestCaseRunner
	executor CodeExecutor
	syncer   SyncEnqueuer

	// countFirstSolve also counts first-time solves toward total
	// submissions. The reference behavior leaves first solves out.
	countFirstSolve bool

	now func() time.Time
}

func NewSubmissionService(
	users UserStore,
	problems ProblemStore,
	progress ProgressStore,
	runner *TestCaseRunner,
	executor CodeExecutor,
	syncer SyncEnqueuer,
	countFirstSolve bool,
) *SubmissionService {
	return &SubmissionService{
		users:           users,
		problems:        problems,
		progress:        progress,
		runner:          runner,
		executor:        executor,
		syncer:          syncer,
		countFirstSolve: countFirstSolve,
		now:             time.Now,
	}
}

// RunCode executes code without mutating any persistent state. With a
// problem reference it evaluates the stored test cases; otherwise it runs
// once against the provided stdin.
func (s *SubmissionService) RunCode(ctx context.Context, req *models.RunRequest) (*RunResult, error) {
	lang, err := ParseLanguage(req.Language)
	if err != nil {
		return nil, err
	}

	evalID := uuid.NewString()

	if req.ProblemID != nil {
		problem, err := s.problems.GetProblemByID(ctx, *req.ProblemID)
		if err != nil {
			return nil, err
		}

		testCases, err := s.problems.GetTestCases(ctx, problem.ID)
		if err != nil {
			return nil, err
		}

		report, err := s.runner.RunAll(ctx, req.Code, lang, testCases)
		if err != nil {
			return nil, err
		}

		logger.Log.Info("Run code evaluated against problem",
			zap.String("evaluation_id", evalID),
			zap.Int("problem_id", problem.ID),
			zap.Bool("all_passed", report.AllPassed))

		return &RunResult{
			EvaluationID: evalID,
			Results:      report.Results,
			AllPassed:    &report.AllPassed,
		}, nil
	}

	result, err := s.executor.Execute(ctx, req.Code, lang, req.Stdin)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		EvaluationID: evalID,
		Output:       result.Output(),
	}, nil
}

// Submit evaluates the code and, on a fully passing run, updates the
// progress ledger and user statistics. A bookkeeping failure after a passing
// run never suppresses the verdict: the caller gets all_passed=true with
// progress_saved=false and may re-submit, which is a safe no-op upgrade.
func (s *SubmissionService) Submit(ctx context.Context, req *models.SubmitRequest) (*SubmitResult, error) {
	lang, err := ParseLanguage(req.Language)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, req)
	if err != nil {
		return nil, err
	}

	problem, err := s.problems.GetProblemByID(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}

	testCases, err := s.problems.GetTestCases(ctx, problem.ID)
	if err != nil {
		return nil, err
	}

	evalID := uuid.NewString()
	result := &SubmitResult{EvaluationID: evalID}

	report, err := s.runner.RunAll(ctx, req.Code, lang, testCases)
	if err != nil {
		if errors.Is(err, ErrNoTestCases) {
			// Data problem on our side; report a failed verdict rather
			// than crash the submission.
			logger.Log.Error("Problem has no test cases",
				zap.String("evaluation_id", evalID),
				zap.Int("problem_id", problem.ID))
			result.Message = "Problem has no test cases configured"
			return result, nil
		}
		return nil, err
	}

	result.Results = report.Results
	result.AllPassed = report.AllPassed

	if !report.AllPassed {
		result.Message = "One or more test cases failed"
		return result, nil
	}

	now := s.now()
	snapshot, alreadySolved, persistErr := s.recordSolve(ctx, user, problem.ID, lang.String(), req.SolveTimeMs, now)
	result.AlreadySolved = alreadySolved
	if persistErr != nil {
		logger.Log.Error("Failed to persist progress after passing submission",
			zap.String("evaluation_id", evalID),
			zap.Int("user_id", user.ID),
			zap.Int("problem_id", problem.ID),
			zap.Error(persistErr))

		if s.syncer != nil {
			if err := s.syncer.EnqueueStatsSync(ctx, user.ID); err != nil {
				logger.Log.Warn("Failed to enqueue stats sync", zap.Error(err))
			}
		}

		result.ProgressSaved = false
		result.Message = "Solved, but progress was not saved. Submit again to record it."
		return result, nil
	}

	result.ProgressSaved = true
	result.UserStats = snapshot
	if alreadySolved {
		result.Message = "Problem attempt recorded"
	} else {
		result.Message = "Problem marked as solved"
	}

	logger.Log.Info("Submission accepted",
		zap.String("evaluation_id", evalID),
		zap.Int("user_id", user.ID),
		zap.Int("problem_id", problem.ID),
		zap.Bool("already_solved", alreadySolved))

	return result, nil
}

func (s *SubmissionService) resolveUser(ctx context.Context, req *models.SubmitRequest) (*models.User, error) {
	if req.UserID > 0 {
		return s.users.GetUserByID(ctx, req.UserID)
	}
	return s.users.ResolveUser(ctx, req.Username)
}

func (s *SubmissionService) recordSolve(ctx context.Context, user *models.User, problemID int, language string, solveTimeMs *int64, now time.Time) (*models.UserStatsSnapshot, bool, error) {
	totalDelta := 0
	if s.countFirstSolve {
		totalDelta = 1
	}

	attempt := &models.ProblemAttempt{
		UserID:        user.ID,
		ProblemID:     problemID,
		Attempts:      1,
		FirstSolvedAt: now,
		LastAttemptAt: now,
		BestTimeMs:    solveTimeMs,
	}
	if language != "" {
		attempt.Language = &language
	}

	// All first-solve progress rows commit in one transaction; a failure
	// here leaves nothing behind, so the retry takes this path again.
	firstSolve, err := s.progress.RecordFirstSolve(ctx, attempt, totalDelta)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrProgressPersist, err)
	}

	if firstSolve {
		snapshot, err := s.applyFirstSolveStats(ctx, user, totalDelta, now)
		return snapshot, false, err
	}

	snapshot, err := s.recordRepeatSolve(ctx, user.ID, problemID, language, solveTimeMs, now)
	return snapshot, true, err
}

// applyFirstSolveStats updates the user row after the progress rows have
// committed. The row is shared between concurrent submissions, so the streak
// is applied with a conditional write keyed on the previous last_solved_at
// and recomputed on contention. A failure here is repaired from the ledger by
// the reconciliation worker.
func (s *SubmissionService) applyFirstSolveStats(ctx context.Context, user *models.User, totalDelta int, now time.Time) (*models.UserStatsSnapshot, error) {
	current := user
	for i := 0; i < solveStatsRetries; i++ {
		streak, longest := NextStreak(current.CurrentStreak, current.StreakDays, current.LastSolvedAt, now)
		upd := models.SolveStatsUpdate{
			ProblemsSolvedDelta:        1,
			TotalSubmissionsDelta:      totalDelta,
			SuccessfulSubmissionsDelta: 1,
			CurrentStreak:              streak,
			StreakDays:                 longest,
			LastSolvedAt:               now,
		}

		applied, err := s.users.ApplySolveStats(ctx, user.ID, upd, current.LastSolvedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProgressPersist, err)
		}
		if applied {
			return &models.UserStatsSnapshot{
				ProblemsSolved:        current.ProblemsSolved + 1,
				TotalSubmissions:      current.TotalSubmissions + totalDelta,
				SuccessfulSubmissions: current.SuccessfulSubmissions + 1,
				CurrentStreak:         streak,
				StreakDays:            longest,
			}, nil
		}

		current, err = s.users.GetUserByID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProgressPersist, err)
		}
	}

	return nil, fmt.Errorf("%w: user stats contention after %d attempts", ErrProgressPersist, solveStatsRetries)
}

func (s *SubmissionService) recordRepeatSolve(ctx context.Context, userID, problemID int, language string, solveTimeMs *int64, now time.Time) (*models.UserStatsSnapshot, error) {
	if err := s.progress.RecordRepeatSolve(ctx, userID, problemID, solveTimeMs, language, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProgressPersist, err)
	}
	if err := s.users.IncrementSubmissionCounters(ctx, userID, 1, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProgressPersist, err)
	}

	updated, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProgressPersist, err)
	}

	return &models.UserStatsSnapshot{
		ProblemsSolved:        updated.ProblemsSolved,
		TotalSubmissions:      updated.TotalSubmissions,
		SuccessfulSubmissions: updated.SuccessfulSubmissions,
		CurrentStreak:         updated.CurrentStreak,
		StreakDays:            updated.StreakDays,
	}, nil
}
