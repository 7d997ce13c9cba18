package models

import (
	"errors"
	"strings"
)

// RunRequest executes code without touching any persistent state. With a
// problem ID the code runs against the problem's stored test cases; without
// one it runs once with the provided stdin.
type RunRequest struct {
	Code      string `json:"code" binding:"required"`
	Language  string `json:"language" binding:"required"`
	Stdin     string `json:"stdin"`
	ProblemID *int   `json:"problem_id"`
}

func (r *RunRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code cannot be empty")
	}
	if strings.TrimSpace(r.Language) == "" {
		return errors.New("language is required")
	}
	if r.ProblemID != nil && *r.ProblemID <= 0 {
		return errors.New("problem ID must be a positive integer")
	}
	return nil
}

// SubmitRequest evaluates code against a problem's test cases and, when all
// of them pass, records the solve in the user's progress ledger. The user is
// referenced either by ID or by username (the frontend sends whichever it
// has; usernames fall back to an email lookup).
type SubmitRequest struct {
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	ProblemID   int    `json:"problem_id" binding:"required"`
	Language    string `json:"language" binding:"required"`
	Code        string `json:"code" binding:"required"`
	SolveTimeMs *int64 `json:"solve_time_ms"`
}

func (r *SubmitRequest) Validate() error {
	if r.UserID <= 0 && strings.TrimSpace(r.Username) == "" {
		return errors.New("user_id or username is required")
	}
	if r.ProblemID <= 0 {
		return errors.New("problem ID must be a positive integer")
	}
	if strings.TrimSpace(r.Language) == "" {
		return errors.New("language is required")
	}
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code cannot be empty")
	}
	if r.SolveTimeMs != nil && *r.SolveTimeMs < 0 {
		return errors.New("solve time cannot be negative")
	}
	return nil
}
