// Package parser submits raw document bytes to the LlamaParse cloud API and
// waits for the asynchronous parsing job to produce markdown text.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

var (
	// ErrUploadRejected means the parsing service refused the submission itself.
	ErrUploadRejected = errors.New("parser rejected upload")
	// ErrParseFailed means the parsing job reached a terminal failure state.
	ErrParseFailed = errors.New("parse job failed")
	// ErrTimeout means the job did not reach a terminal state within the poll budget.
	ErrTimeout = errors.New("parse job timed out")
)

const (
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"
	statusFailure = "FAILURE"
)

// Client is a LlamaParse job client: upload, poll, fetch result.
type Client struct {
	baseURL         string
	apiKey          string
	pollInterval    time.Duration
	maxPollAttempts int
	httpClient      *http.Client
}

type Config struct {
	BaseURL         string
	APIKey          string
	PollInterval    time.Duration
	MaxPollAttempts int
	Timeout         time.Duration
}

func New(cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 150
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		pollInterval:    cfg.PollInterval,
		maxPollAttempts: cfg.MaxPollAttempts,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Parse runs one document through the parsing service and returns the
// normalized markdown text. It blocks, sleeping between status polls, until
// the job terminates or the attempt budget is exhausted.
func (c *Client) Parse(ctx context.Context, filename string, data []byte) (string, error) {
	jobID, err := c.submit(ctx, filename, data)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < c.maxPollAttempts; attempt++ {
		if err := sleep(ctx, c.pollInterval); err != nil {
			return "", err
		}

		status, err := c.jobStatus(ctx, jobID)
		if err != nil {
			return "", err
		}
		switch status {
		case statusSuccess:
			return c.fetchMarkdown(ctx, jobID)
		case statusError, statusFailure:
			return "", fmt.Errorf("%w: job %s", ErrParseFailed, jobID)
		}
	}

	return "", fmt.Errorf("%w: job %s not terminal after %d polls", ErrTimeout, jobID, c.maxPollAttempts)
}

func (c *Client) submit(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parsing/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadRejected, resp.StatusCode, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: no job id in response", ErrUploadRejected)
	}
	return out.ID, nil
}

func (c *Client) jobStatus(ctx context.Context, jobID string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/parsing/job/%s", c.baseURL, jobID), &out); err != nil {
		return "", fmt.Errorf("poll job %s: %w", jobID, err)
	}
	return out.Status, nil
}

func (c *Client) fetchMarkdown(ctx context.Context, jobID string) (string, error) {
	var out struct {
		Markdown string `json:"markdown"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/parsing/job/%s/result/markdown", c.baseURL, jobID), &out); err != nil {
		return "", fmt.Errorf("fetch result for job %s: %w", jobID, err)
	}
	return out.Markdown, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
