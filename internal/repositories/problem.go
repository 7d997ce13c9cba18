package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devarena/internal/logger"
	"devarena/internal/models"
	"devarena/internal/services"

	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
)

type ProblemRepository interface {
	GetProblems(ctx context.Context) ([]models.ProblemListItem, error)
	GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error)
	GetProblemBySlug(ctx context.Context, problemSlug string) (*models.Problem, error)
	GetTestCases(ctx context.Context, problemID int) ([]services.TestCase, error)
	CreateProblem(ctx context.Context, req *models.CreateProblemRequest) (*models.Problem, error)
	UpdateProblem(ctx context.Context, problemID int, req *models.CreateProblemRequest) error
	DeleteProblem(ctx context.Context, problemID int) error
}

type problemRepository struct {
	db    *sqlx.DB
	cache services.Cache
}

func NewProblemRepository(db *sqlx.DB, cache services.Cache) ProblemRepository {
	return &problemRepository{db: db, cache: cache}
}

func (r *problemRepository) GetProblems(ctx context.Context) ([]models.ProblemListItem, error) {
	query := `SELECT id, title, slug, difficulty, tags FROM problems ORDER BY id`

	var problems []models.ProblemListItem
	if err := r.db.SelectContext(ctx, &problems, query); err != nil {
		return nil, fmt.Errorf("failed to get problems: %w", err)
	}

	return problems, nil
}

func (r *problemRepository) GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error) {
	query := `SELECT id, title, slug, description, difficulty, tags, constraints, solution, created_at
              FROM problems WHERE id = ?`

	var problem models.Problem
	if err := r.db.GetContext(ctx, &problem, query, problemID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %d", models.ErrProblemNotFound, problemID)
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	if err := r.loadExamples(ctx, &problem); err != nil {
		return nil, err
	}

	return &problem, nil
}

func (r *problemRepository) GetProblemBySlug(ctx context.Context, problemSlug string) (*models.Problem, error) {
	query := `SELECT id, title, slug, description, difficulty, tags, constraints, solution, created_at
              FROM problems WHERE slug = ?`

	var problem models.Problem
	if err := r.db.GetContext(ctx, &problem, query, problemSlug); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", models.ErrProblemNotFound, problemSlug)
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	if err := r.loadExamples(ctx, &problem); err != nil {
		return nil, err
	}

	return &problem, nil
}

func (r *problemRepository) loadExamples(ctx context.Context, problem *models.Problem) error {
	query := `SELECT id, problem_id, input, output, explanation FROM problem_examples
              WHERE problem_id = ? ORDER BY id`

	if err := r.db.SelectContext(ctx, &problem.Examples, query, problem.ID); err != nil {
		return fmt.Errorf("failed to get problem examples: %w", err)
	}
	return nil
}

func (r *problemRepository) GetTestCases(ctx context.Context, problemID int) ([]services.TestCase, error) {
	cacheKey := fmt.Sprintf("problem:%d:testcases", problemID)

	var testCases []services.TestCase
	if err := r.cache.Get(ctx, cacheKey, &testCases); err == nil {
		return testCases, nil
	}
	logger.Log.Debug("Test cases not in cache, retrieving from DB")

	query := `SELECT id, input, expected_output FROM test_cases WHERE problem_id = ? ORDER BY id`

	if err := r.db.SelectContext(ctx, &testCases, query, problemID); err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, testCases, 1*time.Hour)

	return testCases, nil
}

func (r *problemRepository) CreateProblem(ctx context.Context, req *models.CreateProblemRequest) (*models.Problem, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	problemSlug := slug.Make(req.Title)

	query := `INSERT INTO problems (title, slug, description, difficulty, tags, constraints, solution)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		req.Title,
		problemSlug,
		req.Description,
		req.Difficulty,
		models.StringList(req.Tags),
		req.Constraints,
		req.Solution,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	problemID := int(id)

	for _, ex := range req.Examples {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO problem_examples (problem_id, input, output, explanation) VALUES (?, ?, ?, ?)`,
			problemID, ex.Input, ex.Output, ex.Explanation)
		if err != nil {
			return nil, fmt.Errorf("failed to insert example: %w", err)
		}
	}

	for _, tc := range req.TestCases {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO test_cases (problem_id, input, expected_output) VALUES (?, ?, ?)`,
			problemID, tc.Input, tc.ExpectedOutput)
		if err != nil {
			return nil, fmt.Errorf("failed to insert test case: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Problem{
		ID:          problemID,
		Title:       req.Title,
		Slug:        problemSlug,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Tags:        models.StringList(req.Tags),
		Constraints: req.Constraints,
		Solution:    req.Solution,
	}, nil
}

func (r *problemRepository) UpdateProblem(ctx context.Context, problemID int, req *models.CreateProblemRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE problems SET title = ?, slug = ?, description = ?, difficulty = ?,
                  tags = ?, constraints = ?, solution = ?
              WHERE id = ?`
	result, err := tx.ExecContext(ctx, query,
		req.Title,
		slug.Make(req.Title),
		req.Description,
		req.Difficulty,
		models.StringList(req.Tags),
		req.Constraints,
		req.Solution,
		problemID,
	)
	if err != nil {
		return fmt.Errorf("failed to update problem: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		// MySQL also reports 0 when nothing changed; verify existence.
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM problems WHERE id = ?`, problemID); err != nil {
			return fmt.Errorf("failed to verify problem: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %d", models.ErrProblemNotFound, problemID)
		}
	}

	if len(req.TestCases) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM test_cases WHERE problem_id = ?`, problemID); err != nil {
			return fmt.Errorf("failed to clear test cases: %w", err)
		}
		for _, tc := range req.TestCases {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO test_cases (problem_id, input, expected_output) VALUES (?, ?, ?)`,
				problemID, tc.Input, tc.ExpectedOutput)
			if err != nil {
				return fmt.Errorf("failed to insert test case: %w", err)
			}
		}
	}

	if len(req.Examples) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM problem_examples WHERE problem_id = ?`, problemID); err != nil {
			return fmt.Errorf("failed to clear examples: %w", err)
		}
		for _, ex := range req.Examples {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO problem_examples (problem_id, input, output, explanation) VALUES (?, ?, ?, ?)`,
				problemID, ex.Input, ex.Output, ex.Explanation)
			if err != nil {
				return fmt.Errorf("failed to insert example: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	_ = r.cache.Delete(ctx, fmt.Sprintf("problem:%d:testcases", problemID))

	return nil
}

func (r *problemRepository) DeleteProblem(ctx context.Context, problemID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM test_cases WHERE problem_id = ?`,
		`DELETE FROM problem_examples WHERE problem_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, problemID); err != nil {
			return fmt.Errorf("failed to delete problem data: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM problems WHERE id = ?`, problemID)
	if err != nil {
		return fmt.Errorf("failed to delete problem: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %d", models.ErrProblemNotFound, problemID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	_ = r.cache.Delete(ctx, fmt.Sprintf("problem:%d:testcases", problemID))

	return nil
}
