package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"devarena/internal/models"
	"devarena/internal/services"
	"devarena/internal/utils"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password_hash, role, is_premium, joined_at,
    problems_solved, total_submissions, successful_submissions,
    last_solved_at, current_streak, streak_days`

type UserRepository interface {
	CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	GetUserByID(ctx context.Context, userID int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ResolveUser(ctx context.Context, identifier string) (*models.User, error)

	ApplySolveStats(ctx context.Context, userID int, upd models.SolveStatsUpdate, prevLastSolvedAt *time.Time) (bool, error)
	IncrementSubmissionCounters(ctx context.Context, userID, totalDelta, successfulDelta int) error
	SyncStats(ctx context.Context, userID, problemsSolved, totalSubmissions, successfulSubmissions int) error

	StoreRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (int, error)
	RevokeToken(ctx context.Context, token string) error
}

type userRepository struct {
	db    *sqlx.DB
	cache services.Cache
}

func NewUserRepository(db *sqlx.DB, cache services.Cache) UserRepository {
	return &userRepository{db: db, cache: cache}
}

func (r *userRepository) CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, req.Username, req.Email, hashedPassword, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return &models.User{
		ID:       int(id),
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleUser,
	}, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *userRepository) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ResolveUser looks the identifier up as a username first, then as an email.
// The frontend sends whichever it has for the logged-in account.
func (r *userRepository) ResolveUser(ctx context.Context, identifier string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}
	return r.GetUserByEmail(ctx, identifier)
}

// ApplySolveStats performs a conditional update keyed on the previous
// last_solved_at value so two concurrent first solves cannot both apply
// their streak computation. Returns false when the row moved underneath us.
func (r *userRepository) ApplySolveStats(ctx context.Context, userID int, upd models.SolveStatsUpdate, prevLastSolvedAt *time.Time) (bool, error) {
	query := `UPDATE users SET
                  problems_solved = problems_solved + ?,
                  total_submissions = total_submissions + ?,
                  successful_submissions = successful_submissions + ?,
                  current_streak = ?,
                  streak_days = ?,
                  last_solved_at = ?
              WHERE id = ? AND last_solved_at <=> ?`

	result, err := r.db.ExecContext(ctx, query,
		upd.ProblemsSolvedDelta,
		upd.TotalSubmissionsDelta,
		upd.SuccessfulSubmissionsDelta,
		upd.CurrentStreak,
		upd.StreakDays,
		upd.LastSolvedAt,
		userID,
		prevLastSolvedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to apply solve stats: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *userRepository) IncrementSubmissionCounters(ctx context.Context, userID, totalDelta, successfulDelta int) error {
	query := `UPDATE users SET total_submissions = total_submissions + ?,
                  successful_submissions = successful_submissions + ?
              WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, totalDelta, successfulDelta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment submission counters: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 && totalDelta+successfulDelta != 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SyncStats overwrites the user's counters with values recomputed from the
// progress ledger. Idempotent; used by the reconciliation worker.
func (r *userRepository) SyncStats(ctx context.Context, userID, problemsSolved, totalSubmissions, successfulSubmissions int) error {
	query := `UPDATE users SET problems_solved = ?, total_submissions = ?, successful_submissions = ?
              WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, problemsSolved, totalSubmissions, successfulSubmissions, userID); err != nil {
		return fmt.Errorf("failed to sync user stats: %w", err)
	}
	return nil
}

func (r *userRepository) StoreRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	key := fmt.Sprintf("refresh_token:%s", token)
	ttl := time.Until(expiresAt)

	if ttl <= 0 {
		return fmt.Errorf("token expiration is in the past")
	}

	if err := r.cache.Set(ctx, key, userID, ttl); err != nil {
		return fmt.Errorf("failed to store refresh token in cache: %w", err)
	}
	return nil
}

func (r *userRepository) GetRefreshToken(ctx context.Context, token string) (int, error) {
	key := fmt.Sprintf("refresh_token:%s", token)
	var userID int

	if err := r.cache.Get(ctx, key, &userID); err != nil {
		return 0, fmt.Errorf("refresh token not found in cache: %w", err)
	}
	return userID, nil
}

func (r *userRepository) RevokeToken(ctx context.Context, token string) error {
	key := fmt.Sprintf("refresh_token:%s", token)
	if err := r.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to revoke token from cache: %w", err)
	}
	return nil
}
