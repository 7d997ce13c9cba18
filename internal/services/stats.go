package services

import (
	"context"
	"errors"
	"math"
	"time"

	"devarena/internal/logger"
	"devarena/internal/models"

	"go.uber.org/zap"
)

// UserStatsStore is the read/repair slice of the user repository the
// aggregator needs.
type UserStatsStore interface {
	ResolveUser(ctx context.Context, identifier string) (*models.User, error)
	SyncStats(ctx context.Context, userID, problemsSolved, totalSubmissions, successfulSubmissions int) error
}

// ProgressReader is the read-only slice of the progress repository.
type ProgressReader interface {
	GetLedger(ctx context.Context, userID int) (*models.ProgressLedger, error)
	GetAttempt(ctx context.Context, userID, problemID int) (*models.ProblemAttempt, error)
	CountSolved(ctx context.Context, userID int) (int, error)
	GetSolvedProblems(ctx context.Context, userID int) ([]models.ProblemListItem, error)
	GetRecentSolved(ctx context.Context, userID, limit int) ([]models.ProblemListItem, error)
	GetDifficultyBreakdown(ctx context.Context, userID int) (map[string]int, error)
}

type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

type UserStatsResponse struct {
	User         StatsUser     `json:"user"`
	Stats        StatsCounters `json:"stats"`
	Progress     StatsProgress `json:"progress"`
	Achievements []Achievement `json:"achievements"`
}

type StatsUser struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	JoinedAt  time.Time `json:"joined_at"`
	IsPremium bool      `json:"is_premium"`
}

type StatsCounters struct {
	ProblemsSolved        int        `json:"problems_solved"`
	TotalSubmissions      int        `json:"total_submissions"`
	SuccessfulSubmissions int        `json:"successful_submissions"`
	SuccessRate           float64    `json:"success_rate"`
	CurrentStreak         int        `json:"current_streak"`
	StreakDays            int        `json:"streak_days"`
	LastSolvedAt          *time.Time `json:"last_solved_at"`
}

type StatsProgress struct {
	TotalProblems   int                      `json:"total_problems"`
	DifficultyStats map[string]int           `json:"difficulty_stats"`
	RecentProblems  []models.ProblemListItem `json:"recent_problems"`
}

// StatsService derives statistics and achievements from the user record and
// the progress ledger. Everything is computed per read; nothing is stored.
type StatsService struct {
	users    UserStatsStore
	progress ProgressReader
}

func NewStatsService(users UserStatsStore, progress ProgressReader) *StatsService {
	return &StatsService{users: users, progress: progress}
}

// GetSolvedProblems returns the user's solved set in insertion order. Users
// without a ledger yet get an empty list, not an error.
func (s *StatsService) GetSolvedProblems(ctx context.Context, identifier string) ([]models.ProblemListItem, error) {
	user, err := s.users.ResolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	solved, err := s.progress.GetSolvedProblems(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if solved == nil {
		solved = []models.ProblemListItem{}
	}
	return solved, nil
}

// GetProblemAttempt returns the bookkeeping record for one solved problem:
// attempt count, first solve time, best time, last language used.
func (s *StatsService) GetProblemAttempt(ctx context.Context, identifier string, problemID int) (*models.ProblemAttempt, error) {
	user, err := s.users.ResolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.progress.GetAttempt(ctx, user.ID, problemID)
}

func (s *StatsService) GetUserStats(ctx context.Context, identifier string) (*UserStatsResponse, error) {
	user, err := s.users.ResolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	solvedCount, err := s.progress.CountSolved(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.progress.GetDifficultyBreakdown(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	recent, err := s.progress.GetRecentSolved(ctx, user.ID, 5)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.ProblemListItem{}
	}

	successRate := ComputeSuccessRate(user.SuccessfulSubmissions, user.TotalSubmissions)

	return &UserStatsResponse{
		User: StatsUser{
			Username:  user.Username,
			Email:     user.Email,
			JoinedAt:  user.JoinedAt,
			IsPremium: user.IsPremium,
		},
		Stats: StatsCounters{
			// The solved count comes from the ledger, not the user
			// counter, so a pending reconciliation never shows stale data.
			ProblemsSolved:        solvedCount,
			TotalSubmissions:      user.TotalSubmissions,
			SuccessfulSubmissions: user.SuccessfulSubmissions,
			SuccessRate:           successRate,
			CurrentStreak:         user.CurrentStreak,
			StreakDays:            user.StreakDays,
			LastSolvedAt:          user.LastSolvedAt,
		},
		Progress: StatsProgress{
			TotalProblems:   solvedCount,
			DifficultyStats: breakdown,
			RecentProblems:  recent,
		},
		Achievements: ComputeAchievements(solvedCount, user.CurrentStreak, successRate),
	}, nil
}

// SyncUserStats recomputes the user's counters from the ledger. Idempotent;
// safe to run any number of times, including for users without a ledger.
func (s *StatsService) SyncUserStats(ctx context.Context, userID int) error {
	ledger, err := s.progress.GetLedger(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrLedgerNotFound) {
			return nil
		}
		return err
	}

	solvedCount, err := s.progress.CountSolved(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.SyncStats(ctx, userID, solvedCount, ledger.TotalSubmissions, ledger.SuccessfulSubmissions); err != nil {
		return err
	}

	logger.Log.Info("Synced user stats from ledger",
		zap.Int("user_id", userID),
		zap.Int("problems_solved", solvedCount),
		zap.Int("total_submissions", ledger.TotalSubmissions))

	return nil
}

// ComputeSuccessRate returns the percentage of successful submissions,
// rounded to one decimal place. Zero submissions means a zero rate.
func ComputeSuccessRate(successful, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(successful) / float64(total) * 100
	return math.Round(rate*10) / 10
}

// ComputeAchievements returns the unlocked achievements for the given
// counters. Thresholds are fixed; achievements are never persisted.
func ComputeAchievements(solvedCount, currentStreak int, successRate float64) []Achievement {
	achievements := []Achievement{}

	solvedMilestones := []struct {
		threshold   int
		name        string
		description string
	}{
		{1, "First Problem", "Solved your first problem"},
		{5, "Getting Started", "Solved 5 problems"},
		{10, "Problem Solver", "Solved 10 problems"},
		{25, "Code Warrior", "Solved 25 problems"},
		{50, "Algorithm Master", "Solved 50 problems"},
		{100, "Coding Legend", "Solved 100 problems"},
	}
	for _, m := range solvedMilestones {
		if solvedCount >= m.threshold {
			achievements = append(achievements, Achievement{Name: m.name, Description: m.description, Unlocked: true})
		}
	}

	streakMilestones := []struct {
		threshold   int
		name        string
		description string
	}{
		{3, "Streak Starter", "3-day solving streak"},
		{7, "Week Warrior", "7-day solving streak"},
		{30, "Monthly Master", "30-day solving streak"},
	}
	for _, m := range streakMilestones {
		if currentStreak >= m.threshold {
			achievements = append(achievements, Achievement{Name: m.name, Description: m.description, Unlocked: true})
		}
	}

	if successRate >= 80 {
		achievements = append(achievements, Achievement{Name: "High Achiever", Description: "80%+ success rate", Unlocked: true})
	}
	if successRate >= 95 {
		achievements = append(achievements, Achievement{Name: "Perfectionist", Description: "95%+ success rate", Unlocked: true})
	}

	return achievements
}
