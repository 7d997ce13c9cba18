package services

import (
	"context"
	"errors"
	"strings"

	"devarena/internal/logger"

	"go.uber.org/zap"
)

// ErrNoTestCases marks a problem with an empty test case list. An empty list
// is a data problem, never a vacuous pass.
var ErrNoTestCases = errors.New("problem has no test cases")

type TestCase struct {
	ID       int    `db:"id" json:"id"`
	Input    string `db:"input" json:"input"`
	Expected string `db:"expected_output" json:"expected_output"`
}

type TestCaseResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	Passed         bool   `json:"passed"`
}

type RunReport struct {
	Results   []TestCaseResult `json:"results"`
	AllPassed bool             `json:"all_passed"`
}

// TestCaseRunner evaluates a submission against a problem's test cases, one
// sandbox call per case, in the stored order.
type TestCaseRunner struct {
	executor CodeExecutor
}

func NewTestCaseRunner(executor CodeExecutor) *TestCaseRunner {
	return &TestCaseRunner{executor: executor}
}

// RunAll executes every test case sequentially. A sandbox error on one case
// marks that case failed and evaluation continues, so the results list always
// matches the test case list in length and order.
func (r *TestCaseRunner) RunAll(ctx context.Context, sourceCode string, language Language, testCases []TestCase) (*RunReport, error) {
	if len(testCases) == 0 {
		return nil, ErrNoTestCases
	}

	report := &RunReport{
		Results:   make([]TestCaseResult, 0, len(testCases)),
		AllPassed: true,
	}

	for _, tc := range testCases {
		result, err := r.executor.Execute(ctx, sourceCode, language, tc.Input)
		if err != nil {
			logger.Log.Warn("Test case execution failed",
				zap.Int("testcase_id", tc.ID),
				zap.String("language", language.String()),
				zap.Error(err))

			report.Results = append(report.Results, TestCaseResult{
				Input:          tc.Input,
				ExpectedOutput: tc.Expected,
				ActualOutput:   "Error",
				Passed:         false,
			})
			report.AllPassed = false
			continue
		}

		actual := strings.TrimSpace(result.Output())
		expected := strings.TrimSpace(tc.Expected)
		passed := actual == expected

		report.Results = append(report.Results, TestCaseResult{
			Input:          tc.Input,
			ExpectedOutput: expected,
			ActualOutput:   actual,
			Passed:         passed,
		})
		if !passed {
			report.AllPassed = false
		}
	}

	return report, nil
}
