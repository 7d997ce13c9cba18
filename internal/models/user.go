package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	IsPremium    bool      `db:"is_premium" json:"is_premium"`
	JoinedAt     time.Time `db:"joined_at" json:"joined_at"`

	// Problem solving statistics, mutated by the submission workflow.
	ProblemsSolved        int        `db:"problems_solved" json:"problems_solved"`
	TotalSubmissions      int        `db:"total_submissions" json:"total_submissions"`
	SuccessfulSubmissions int        `db:"successful_submissions" json:"successful_submissions"`
	LastSolvedAt          *time.Time `db:"last_solved_at" json:"last_solved_at"`
	CurrentStreak         int        `db:"current_streak" json:"current_streak"`
	StreakDays            int        `db:"streak_days" json:"streak_days"`
}

// SolveStatsUpdate is the computed next state of a user's solve counters,
// applied with a conditional write keyed on the previous last_solved_at.
type SolveStatsUpdate struct {
	ProblemsSolvedDelta        int
	TotalSubmissionsDelta      int
	SuccessfulSubmissionsDelta int
	CurrentStreak              int
	StreakDays                 int
	LastSolvedAt               time.Time
}

// UserStatsSnapshot is returned to the caller after a submission so the UI
// can render updated counters without a second read.
type UserStatsSnapshot struct {
	ProblemsSolved        int `json:"problems_solved"`
	TotalSubmissions      int `json:"total_submissions"`
	SuccessfulSubmissions int `json:"successful_submissions"`
	CurrentStreak         int `json:"current_streak"`
	StreakDays            int `json:"streak_days"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username cannot be empty")
	}
	if len(r.Username) < 3 || len(r.Username) > 50 {
		return errors.New("username must be between 3 and 50 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)
	if !emailRegex.MatchString(strings.ToLower(r.Email)) {
		return errors.New("invalid email format")
	}

	if len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters long")
	}
	if !regexp.MustCompile(`[A-Z]`).MatchString(r.Password) {
		return errors.New("password must contain at least 1 capital letter")
	}
	if !regexp.MustCompile(`[0-9]`).MatchString(r.Password) {
		return errors.New("password must contain at least 1 number")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
