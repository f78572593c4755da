// Package client talks to the annotrain HTTP API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// TrainRequest mirrors the training form; zero fields keep server defaults.
type TrainRequest struct {
	Model        string  `json:"model"`
	Epochs       int     `json:"epochs,omitempty"`
	ImgSize      int     `json:"imgsz,omitempty"`
	Batch        int     `json:"batch,omitempty"`
	Device       string  `json:"device,omitempty"`
	TrainRatio   float64 `json:"train_ratio,omitempty"`
	ExportFormat string  `json:"export_format,omitempty"`
	ExportOpset  int     `json:"export_opset,omitempty"`
}

// Response is the envelope of train and stop.
type Response struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// Run is a run directory of a task.
type Run struct {
	Name       string `json:"name"`
	MTime      int64  `json:"mtime"`
	HasWeights bool   `json:"has_weights"`
	Weights    string `json:"weights"`
}

// ModTime returns the modification time of the run.
func (r Run) ModTime() time.Time {
	return time.Unix(r.MTime, 0)
}

// Job is a job as listed by the server.
type Job struct {
	domain.Job
	DurationSeconds float64 `json:"duration_seconds"`
}

// Health is the answer of /health.
type Health struct {
	Status      string `json:"status"`
	QueueLength int    `json:"queue_length"`
}

// Client is an authenticated API client.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		// No overall timeout, log streams stay open for the whole job.
		http: &http.Client{},
	}
}

func taskPath(owner, task, suffix string) string {
	return fmt.Sprintf("/api/tasks/%s/%s/%s", url.PathEscape(owner), url.PathEscape(task), suffix)
}

// Health queries the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	return &h, c.do(ctx, http.MethodGet, "/health", nil, &h)
}

// Models lists the base weight files on the server.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var models []string
	return models, c.do(ctx, http.MethodGet, "/api/models", nil, &models)
}

// Train queues a training job for owner/task.
func (c *Client) Train(ctx context.Context, owner, task string, req TrainRequest) (*Response, error) {
	var resp Response
	return &resp, c.do(ctx, http.MethodPost, taskPath(owner, task, "train"), req, &resp)
}

// Status reports whether a job is active for owner/task.
func (c *Client) Status(ctx context.Context, owner, task string) (*domain.TaskStatus, error) {
	var st domain.TaskStatus
	return &st, c.do(ctx, http.MethodGet, taskPath(owner, task, "status"), nil, &st)
}

// Runs lists the run directories of owner/task.
func (c *Client) Runs(ctx context.Context, owner, task string) ([]Run, error) {
	var runs []Run
	return runs, c.do(ctx, http.MethodGet, taskPath(owner, task, "runs"), nil, &runs)
}

// Jobs lists the jobs visible to the caller.
func (c *Client) Jobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	return jobs, c.do(ctx, http.MethodGet, "/api/jobs", nil, &jobs)
}

// Job fetches one job.
func (c *Client) Job(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	return &j, c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(jobID), nil, &j)
}

// Stop asks the server to cancel a job.
func (c *Client) Stop(ctx context.Context, jobID string) (*Response, error) {
	var resp Response
	return &resp, c.do(ctx, http.MethodPost, "/api/jobs/"+url.PathEscape(jobID)+"/stop", nil, &resp)
}

// Download writes the tar.zst archive of a run to w and returns its size.
func (c *Client) Download(ctx context.Context, owner, task, run string, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, http.MethodGet, taskPath(owner, task, "runs/"+url.PathEscape(run)+"/download"), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(w, resp.Body)
}

// Stream follows the log of jobID from cursor and calls fn for every line
// with the cursor to resume from. It returns nil after the end of stream
// marker, or the first error of fn.
func (c *Client) Stream(ctx context.Context, jobID string, cursor int64, fn func(cursor int64, line string) error) error {
	path := "/stream/" + url.PathEscape(jobID)
	if cursor > 0 {
		path += "?cursor=" + strconv.FormatInt(cursor, 10)
	}
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var (
		id   int64
		data []string
	)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data == nil {
				continue
			}
			text := strings.Join(data, "\n")
			data = nil
			if err := fn(id, text); err != nil {
				return err
			}
			if text == domain.SentinelEndOfStream {
				return nil
			}
		case strings.HasPrefix(line, ":"):
			// keep-alive
		case strings.HasPrefix(line, "id:"):
			if n, perr := strconv.ParseInt(strings.TrimSpace(line[3:]), 10, 64); perr == nil {
				id = n
			}
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(line[5:], " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return io.ErrUnexpectedEOF
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// send performs the request and turns non-2xx answers into *APIError.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(apiErr)
		return nil, apiErr
	}
	return resp, nil
}
