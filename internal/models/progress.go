package models

import "time"

// ProgressLedger is the per-user header row of the progress document. The
// solved set and attempt records live in their own tables; a ledger row is
// created lazily on the user's first submission.
type ProgressLedger struct {
	UserID                int       `db:"user_id" json:"user_id"`
	TotalSubmissions      int       `db:"total_submissions" json:"total_submissions"`
	SuccessfulSubmissions int       `db:"successful_submissions" json:"successful_submissions"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// ProblemAttempt is the per-(user, problem) bookkeeping record. It exists
// exactly when the problem is in the user's solved set.
type ProblemAttempt struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"user_id"`
	ProblemID     int        `db:"problem_id" json:"problem_id"`
	Attempts      int        `db:"attempts" json:"attempts"`
	FirstSolvedAt time.Time  `db:"first_solved_at" json:"first_solved_at"`
	LastAttemptAt time.Time  `db:"last_attempt_at" json:"last_attempt_at"`
	BestTimeMs    *int64     `db:"best_time_ms" json:"best_time_ms"`
	Language      *string    `db:"language" json:"language"`
}
