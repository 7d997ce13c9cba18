package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// scriptedExecutor maps stdin to a canned result or error.
type scriptedExecutor struct {
	outputs map[string]string
	errors  map[string]error
	calls   []string
}

func (e *scriptedExecutor) Execute(ctx context.Context, sourceCode string, language Language, stdin string) (*ExecutionResult, error) {
	e.calls = append(e.calls, stdin)
	if err, ok := e.errors[stdin]; ok {
		return nil, err
	}
	return &ExecutionResult{Stdout: e.outputs[stdin]}, nil
}

func TestRunAllTrimsWhitespaceBeforeComparing(t *testing.T) {
	executor := &scriptedExecutor{outputs: map[string]string{"2 3": "5\n"}}
	runner := NewTestCaseRunner(executor)

	report, err := runner.RunAll(context.Background(), "code", LanguagePython, []TestCase{
		{ID: 1, Input: "2 3", Expected: "5"},
	})
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}

	if !report.AllPassed {
		t.Errorf("AllPassed = false, want true")
	}
	if report.Results[0].ActualOutput != "5" {
		t.Errorf("ActualOutput = %q, want trimmed %q", report.Results[0].ActualOutput, "5")
	}
}

func TestRunAllPreservesOrderOnFailure(t *testing.T) {
	executor := &scriptedExecutor{
		outputs: map[string]string{"a": "1", "c": "3"},
		errors:  map[string]error{"b": errors.New("sandbox down")},
	}
	runner := NewTestCaseRunner(executor)

	testCases := []TestCase{
		{ID: 1, Input: "a", Expected: "1"},
		{ID: 2, Input: "b", Expected: "2"},
		{ID: 3, Input: "c", Expected: "3"},
	}

	report, err := runner.RunAll(context.Background(), "code", LanguageJavaScript, testCases)
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}

	if len(report.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(report.Results))
	}
	if report.AllPassed {
		t.Errorf("AllPassed = true, want false")
	}

	for i, tc := range testCases {
		if report.Results[i].Input != tc.Input {
			t.Errorf("result %d input = %q, want %q", i, report.Results[i].Input, tc.Input)
		}
	}

	if report.Results[1].ActualOutput != "Error" {
		t.Errorf("failed case ActualOutput = %q, want %q", report.Results[1].ActualOutput, "Error")
	}
	if report.Results[1].Passed {
		t.Errorf("failed case Passed = true, want false")
	}
	if !report.Results[0].Passed || !report.Results[2].Passed {
		t.Errorf("surrounding cases should still pass")
	}

	if fmt.Sprint(executor.calls) != fmt.Sprint([]string{"a", "b", "c"}) {
		t.Errorf("execution order = %v", executor.calls)
	}
}

func TestRunAllEmptyTestCases(t *testing.T) {
	runner := NewTestCaseRunner(&scriptedExecutor{})

	_, err := runner.RunAll(context.Background(), "code", LanguageC, nil)
	if !errors.Is(err, ErrNoTestCases) {
		t.Fatalf("error = %v, want ErrNoTestCases", err)
	}
}

func TestRunAllSilentRunComparesAgainstSentinel(t *testing.T) {
	// A program that prints nothing reports the success sentinel, so a test
	// case expecting no output must expect the sentinel too.
	executor := &scriptedExecutor{outputs: map[string]string{"": ""}}
	runner := NewTestCaseRunner(executor)

	report, err := runner.RunAll(context.Background(), "code", LanguageJava, []TestCase{
		{ID: 1, Input: "", Expected: NoOutputMessage},
	})
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if !report.AllPassed {
		t.Errorf("AllPassed = false, want true")
	}
}
