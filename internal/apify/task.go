package apify

import (
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

	"github.com/cploetz77/port-to-port-map-generator/internal/metrics"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

const (
	defaultBaseURL       = "https://api.apify.com"
	defaultWaitForFinish = 120 * time.Second
	// The transport timeout must outlast the server-side wait.
	transportHeadroom = 30 * time.Second
)

// TaskClient implements Scraper by running an Apify actor task and reading
// its default dataset.
type TaskClient struct {
	token         string
	taskID        string
	baseURL       string
	waitForFinish time.Duration
	client        *http.Client
	runLimiter    *RunLimiter
}

// TaskOption configures the TaskClient.
type TaskOption func(*TaskClient)

// WithBaseURL overrides the default Apify API endpoint.
func WithBaseURL(u string) TaskOption {
	return func(c *TaskClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) TaskOption {
	return func(c *TaskClient) {
		c.client = hc
	}
}

// WithWaitForFinish overrides how long the run endpoint blocks for the
// task to finish. The value is sent in whole seconds, minimum one.
func WithWaitForFinish(d time.Duration) TaskOption {
	return func(c *TaskClient) {
		c.waitForFinish = d
	}
}

// WithRunLimiter injects the limiter that paces and caps run submissions.
func WithRunLimiter(l *RunLimiter) TaskOption {
	return func(c *TaskClient) {
		c.runLimiter = l
	}
}

// NewTaskClient creates a client for the given task. Both token and taskID
// are required.
func NewTaskClient(token, taskID string, opts ...TaskOption) (*TaskClient, error) {
	var missing []string
	if strings.TrimSpace(token) == "" {
		missing = append(missing, "token")
	}
	if strings.TrimSpace(taskID) == "" {
		missing = append(missing, "task_id")
	}
	if len(missing) > 0 {
		return nil, &MissingCredentialsError{Fields: missing}
	}

	c := &TaskClient{
		token:         token,
		taskID:        taskID,
		baseURL:       defaultBaseURL,
		waitForFinish: defaultWaitForFinish,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.waitForFinish + transportHeadroom}
	}
	return c, nil
}

// Run starts the task for the sailing, waits for it to finish and returns
// the cleaned dataset.
func (c *TaskClient) Run(ctx context.Context, in RunInput) (*RunOutput, error) {
	if c.runLimiter != nil {
		if err := c.runLimiter.AcquireRun(ctx); err != nil {
			return nil, fmt.Errorf("acquiring run: %w", err)
		}
	}

	start := time.Now()
	defer func() {
		metrics.ApifyRunDuration.Observe(time.Since(start).Seconds())
	}()

	run, err := c.startRun(ctx, in)
	if err != nil {
		metrics.ApifyCallsTotal.WithLabelValues("run", "error").Inc()
		return nil, err
	}
	metrics.ApifyCallsTotal.WithLabelValues("run", "ok").Inc()

	dataset, err := c.fetchDataset(ctx, run.Data.DefaultDatasetID)
	if err != nil {
		metrics.ApifyCallsTotal.WithLabelValues("dataset", "error").Inc()
		return nil, err
	}
	metrics.ApifyCallsTotal.WithLabelValues("dataset", "ok").Inc()

	return &RunOutput{
		RunID:     run.Data.ID,
		DatasetID: run.Data.DefaultDatasetID,
		Dataset:   dataset,
	}, nil
}

func (c *TaskClient) startRun(ctx context.Context, in RunInput) (*runResponse, error) {
	payload, err := json.Marshal(newTaskInput(in))
	if err != nil {
		return nil, fmt.Errorf("marshaling task input: %w", err)
	}

	params := url.Values{}
	params.Set("waitForFinish", strconv.Itoa(waitSeconds(c.waitForFinish)))
	u := c.baseURL + "/v2/actor-tasks/" + url.PathEscape(c.taskID) + "/runs?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("executing run request: %w", err)
	}

	if status < 200 || status >= 300 {
		return nil, &ScrapeRunFailedError{Status: status, Body: string(body)}
	}

	var run runResponse
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, &ScrapeRunFailedError{Status: status, Body: string(body)}
	}
	if run.Data.DefaultDatasetID == "" {
		return nil, &ScrapeRunFailedError{Status: status, Body: string(body)}
	}

	return &run, nil
}

func (c *TaskClient) fetchDataset(ctx context.Context, datasetID string) ([]domain.SailingRecord, error) {
	params := url.Values{}
	params.Set("clean", "true")
	params.Set("format", "json")
	u := c.baseURL + "/v2/datasets/" + url.PathEscape(datasetID) + "/items?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating dataset request: %w", err)
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("executing dataset request: %w", err)
	}

	if status < 200 || status >= 300 {
		return nil, &DatasetFetchFailedError{Status: status, Body: string(body)}
	}

	var items []domain.SailingRecord
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON array of records", ErrEmptyDataset)
	}
	if len(items) == 0 {
		return nil, ErrEmptyDataset
	}

	return items, nil
}

// Probe fetches the task definition to confirm the token and task id work.
func (c *TaskClient) Probe(ctx context.Context) error {
	u := c.baseURL + "/v2/actor-tasks/" + url.PathEscape(c.taskID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating probe request: %w", err)
	}

	status, body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("executing probe request: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("apify API error (status %d): %s", status, string(body))
	}
	return nil
}

func (c *TaskClient) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func waitSeconds(d time.Duration) int {
	s := int(d / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
