package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJudgeClientExecute(t *testing.T) {
	var captured judgeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/submissions" {
			t.Errorf("path = %s, want /submissions", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("base64_encoded") != "false" || q.Get("wait") != "true" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Errorf("missing API key header")
		}
		if r.Header.Get("X-RapidAPI-Host") != "test-host" {
			t.Errorf("missing API host header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		stdout := "42\n"
		json.NewEncoder(w).Encode(judgeResponse{Stdout: &stdout})
	}))
	defer server.Close()

	client := NewJudgeClient(server.URL, "test-key", "test-host")
	result, err := client.Execute(context.Background(), "print(42)", LanguagePython, "input")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if captured.SourceCode != "print(42)" {
		t.Errorf("source_code = %q", captured.SourceCode)
	}
	if captured.LanguageID != 71 {
		t.Errorf("language_id = %d, want 71", captured.LanguageID)
	}
	if captured.Stdin != "input" {
		t.Errorf("stdin = %q, want %q", captured.Stdin, "input")
	}
	if result.Output() != "42\n" {
		t.Errorf("Output() = %q, want %q", result.Output(), "42\n")
	}
}

func TestJudgeClientNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewJudgeClient(server.URL, "k", "h")
	_, err := client.Execute(context.Background(), "x", LanguageC, "")
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution", err)
	}
}

func TestExecutionResultOutputFallback(t *testing.T) {
	cases := []struct {
		name   string
		result ExecutionResult
		want   string
	}{
		{"stdout wins", ExecutionResult{Stdout: "out", Stderr: "err", CompileOutput: "comp"}, "out"},
		{"stderr next", ExecutionResult{Stderr: "err", CompileOutput: "comp"}, "err"},
		{"compile output last", ExecutionResult{CompileOutput: "comp"}, "comp"},
		{"silence is success", ExecutionResult{}, NoOutputMessage},
	}

	for _, tc := range cases {
		if got := tc.result.Output(); got != tc.want {
			t.Errorf("%s: Output() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
