package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"devarena/internal/logger"

	"go.uber.org/zap"
)

var ErrExecution = errors.New("code execution failed")

// NoOutputMessage is reported when a run produced nothing on any channel.
// Silence without an error is treated as success, not failure.
const NoOutputMessage = "Success"

// ExecutionResult carries the three output channels of one sandbox run.
type ExecutionResult struct {
	Stdout        string
	Stderr        string
	CompileOutput string
}

// Output normalizes the three channels into one display string: stdout wins,
// then stderr, then compiler diagnostics.
func (r *ExecutionResult) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	if r.CompileOutput != "" {
		return r.CompileOutput
	}
	return NoOutputMessage
}

// CodeExecutor runs one piece of source code against one stdin.
type CodeExecutor interface {
	Execute(ctx context.Context, sourceCode string, language Language, stdin string) (*ExecutionResult, error)
}

// JudgeClient is a thin client for the remote execution sandbox. Each call
// is synchronous (wait=true) and bounded by the HTTP client timeout; there
// is no retry policy.
type JudgeClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
}

func NewJudgeClient(baseURL, apiKey, apiHost string) *JudgeClient {
	return &JudgeClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiHost:    apiHost,
	}
}

type judgeRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type judgeResponse struct {
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
}

func (c *JudgeClient) Execute(ctx context.Context, sourceCode string, language Language, stdin string) (*ExecutionResult, error) {
	payload, err := json.Marshal(judgeRequest{
		SourceCode: sourceCode,
		LanguageID: language.JudgeID(),
		Stdin:      stdin,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrExecution, err)
	}

	url := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrExecution, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Log.Error("Judge returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("language", language.String()),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("%w: judge returned status %d", ErrExecution, resp.StatusCode)
	}

	var decoded judgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrExecution, err)
	}

	result := &ExecutionResult{}
	if decoded.Stdout != nil {
		result.Stdout = *decoded.Stdout
	}
	if decoded.Stderr != nil {
		result.Stderr = *decoded.Stderr
	}
	if decoded.CompileOutput != nil {
		result.CompileOutput = *decoded.CompileOutput
	}

	return result, nil
}
