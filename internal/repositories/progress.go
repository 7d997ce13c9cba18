package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devarena/internal/models"

	"github.com/jmoiron/sqlx"
)

type ProgressRepository interface {
	GetLedger(ctx context.Context, userID int) (*models.ProgressLedger, error)

	RecordFirstSolve(ctx context.Context, attempt *models.ProblemAttempt, totalDelta int) (bool, error)
	RecordRepeatSolve(ctx context.Context, userID, problemID int, solveTimeMs *int64, language string, now time.Time) error
	GetAttempt(ctx context.Context, userID, problemID int) (*models.ProblemAttempt, error)

	CountSolved(ctx context.Context, userID int) (int, error)
	GetSolvedProblems(ctx context.Context, userID int) ([]models.ProblemListItem, error)
	GetRecentSolved(ctx context.Context, userID, limit int) ([]models.ProblemListItem, error)
	GetDifficultyBreakdown(ctx context.Context, userID int) (map[string]int, error)
}

type progressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetLedger(ctx context.Context, userID int) (*models.ProgressLedger, error) {
	query := `SELECT user_id, total_submissions, successful_submissions, updated_at
              FROM user_progress WHERE user_id = ?`

	var ledger models.ProgressLedger
	if err := r.db.GetContext(ctx, &ledger, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to get progress ledger: %w", err)
	}
	return &ledger, nil
}

// RecordFirstSolve records a first-time solve in one transaction: the ledger
// header (created lazily), the solved-set row, the attempt record, and the
// ledger totals commit together or not at all, so a solved-set row can never
// exist without its attempt record. The UNIQUE(user_id, problem_id) key makes
// the solved-set insert safe against concurrent submissions: exactly one
// caller observes true, everyone else gets false with nothing else written.
func (r *progressRepository) RecordFirstSolve(ctx context.Context, attempt *models.ProblemAttempt, totalDelta int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT IGNORE INTO user_progress (user_id, total_submissions, successful_submissions) VALUES (?, 0, 0)`,
		attempt.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to ensure progress ledger: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO solved_problems (user_id, problem_id) VALUES (?, ?)`,
		attempt.UserID, attempt.ProblemID)
	if err != nil {
		return false, fmt.Errorf("failed to mark problem solved: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		// Already solved; keep the lazily created ledger header.
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return false, nil
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO problem_attempts
             (user_id, problem_id, attempts, first_solved_at, last_attempt_at, best_time_ms, language)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attempt.UserID,
		attempt.ProblemID,
		attempt.Attempts,
		attempt.FirstSolvedAt,
		attempt.LastAttemptAt,
		attempt.BestTimeMs,
		attempt.Language,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert attempt record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	attempt.ID = int(id)

	_, err = tx.ExecContext(ctx,
		`UPDATE user_progress SET total_submissions = total_submissions + ?,
             successful_submissions = successful_submissions + 1,
             updated_at = CURRENT_TIMESTAMP
         WHERE user_id = ?`,
		totalDelta, attempt.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to update ledger totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// RecordRepeatSolve bumps the attempt counter, keeps the best time, and adds
// the run to the ledger totals in one transaction. The attempt UPDATE is a
// single atomic statement, so concurrent repeat solves never lose updates.
func (r *progressRepository) RecordRepeatSolve(ctx context.Context, userID, problemID int, solveTimeMs *int64, language string, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE problem_attempts SET
             attempts = attempts + 1,
             last_attempt_at = ?,
             best_time_ms = CASE
                 WHEN ? IS NOT NULL AND (best_time_ms IS NULL OR ? < best_time_ms) THEN ?
                 ELSE best_time_ms
             END,
             language = COALESCE(NULLIF(?, ''), language)
         WHERE user_id = ? AND problem_id = ?`,
		now, solveTimeMs, solveTimeMs, solveTimeMs, language, userID, problemID)
	if err != nil {
		return fmt.Errorf("failed to record repeat attempt: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return models.ErrAttemptNotFound
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE user_progress SET total_submissions = total_submissions + 1,
             updated_at = CURRENT_TIMESTAMP
         WHERE user_id = ?`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to update ledger totals: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return models.ErrLedgerNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *progressRepository) GetAttempt(ctx context.Context, userID, problemID int) (*models.ProblemAttempt, error) {
	query := `SELECT id, user_id, problem_id, attempts, first_solved_at, last_attempt_at, best_time_ms, language
              FROM problem_attempts WHERE user_id = ? AND problem_id = ?`

	var attempt models.ProblemAttempt
	if err := r.db.GetContext(ctx, &attempt, query, userID, problemID); err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt record: %w", err)
	}
	return &attempt, nil
}

func (r *progressRepository) CountSolved(ctx context.Context, userID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM solved_problems WHERE user_id = ?`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count solved problems: %w", err)
	}
	return count, nil
}

// GetSolvedProblems returns the solved set in insertion order.
func (r *progressRepository) GetSolvedProblems(ctx context.Context, userID int) ([]models.ProblemListItem, error) {
	query := `SELECT p.id, p.title, p.slug, p.difficulty, p.tags
              FROM solved_problems sp
              JOIN problems p ON p.id = sp.problem_id
              WHERE sp.user_id = ?
              ORDER BY sp.id`

	var problems []models.ProblemListItem
	if err := r.db.SelectContext(ctx, &problems, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get solved problems: %w", err)
	}
	for i := range problems {
		problems[i].IsSolved = true
	}
	return problems, nil
}

// GetRecentSolved returns the last N solved problems, most recent last, to
// mirror the tail of the insertion-ordered solved list.
func (r *progressRepository) GetRecentSolved(ctx context.Context, userID, limit int) ([]models.ProblemListItem, error) {
	query := `SELECT p.id, p.title, p.slug, p.difficulty, p.tags
              FROM (SELECT problem_id, id FROM solved_problems WHERE user_id = ? ORDER BY id DESC LIMIT ?) recent
              JOIN problems p ON p.id = recent.problem_id
              ORDER BY recent.id`

	var problems []models.ProblemListItem
	if err := r.db.SelectContext(ctx, &problems, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent solved problems: %w", err)
	}
	for i := range problems {
		problems[i].IsSolved = true
	}
	return problems, nil
}

func (r *progressRepository) GetDifficultyBreakdown(ctx context.Context, userID int) (map[string]int, error) {
	query := `SELECT p.difficulty AS difficulty, COUNT(*) AS total
              FROM solved_problems sp
              JOIN problems p ON p.id = sp.problem_id
              WHERE sp.user_id = ?
              GROUP BY p.difficulty`

	var rows []struct {
		Difficulty string `db:"difficulty"`
		Total      int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get difficulty breakdown: %w", err)
	}

	breakdown := make(map[string]int, len(rows))
	for _, row := range rows {
		breakdown[row.Difficulty] = row.Total
	}
	return breakdown, nil
}
