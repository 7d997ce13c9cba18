package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// StringList stores a list of tags as a JSON text column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

type Problem struct {
	ID          int        `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Description string     `db:"description" json:"description"`
	Difficulty  string     `db:"difficulty" json:"difficulty"`
	Tags        StringList `db:"tags" json:"tags"`
	Constraints string     `db:"constraints" json:"constraints"`
	Solution    *string    `db:"solution" json:"solution,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	// Loaded separately by the repository.
	Examples []Example `json:"examples,omitempty"`
}

// Example is a documentation-only input/output pair shown on problem pages.
type Example struct {
	ID          int    `db:"id" json:"-"`
	ProblemID   int    `db:"problem_id" json:"-"`
	Input       string `db:"input" json:"input"`
	Output      string `db:"output" json:"output"`
	Explanation string `db:"explanation" json:"explanation,omitempty"`
}

type ProblemListItem struct {
	ID         int        `db:"id" json:"id"`
	Title      string     `db:"title" json:"title"`
	Slug       string     `db:"slug" json:"slug"`
	Difficulty string     `db:"difficulty" json:"difficulty"`
	Tags       StringList `db:"tags" json:"tags"`
	IsSolved   bool       `db:"-" json:"is_solved"`
}

type CreateProblemRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Difficulty  string    `json:"difficulty"`
	Tags        []string  `json:"tags"`
	Constraints string    `json:"constraints"`
	Solution    *string   `json:"solution"`
	Examples    []Example `json:"examples"`
	TestCases   []struct {
		Input          string `json:"input"`
		ExpectedOutput string `json:"expected_output"`
	} `json:"test_cases"`
}

func (r *CreateProblemRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.Description == "" {
		return errors.New("description is required")
	}
	switch r.Difficulty {
	case "":
		r.Difficulty = DifficultyEasy
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("invalid difficulty: %s", r.Difficulty)
	}
	return nil
}
