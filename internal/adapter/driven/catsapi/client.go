// Package catsapi implements the TaskService port against the Cats house HTTP API.
package catsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

// DefaultBaseURL is the production API origin.
const DefaultBaseURL = "https://api.catshouse.club"

// Compile-time interface satisfaction check.
var _ driven.TaskService = (*Client)(nil)

// browserHeaders impersonate the Telegram mini-app running in mobile Chrome.
var browserHeaders = map[string]string{
	"Accept":             "*/*",
	"Accept-Language":    "en-US,en;q=0.5",
	"Content-Type":       "application/json",
	"Origin":             "https://cats-frontend.tgapps.store",
	"Referer":            "https://cats-frontend.tgapps.store/",
	"Sec-Ch-Ua":          `"Not)A;Brand";v="99", "Google Chrome";v="127", "Chromium";v="127"`,
	"Sec-Ch-Ua-Mobile":   "?1",
	"Sec-Ch-Ua-Platform": `"Android"`,
	"User-Agent":         "Mozilla/5.0 (Linux; Android 6.0; Nexus 5 Build/MRA58N) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Mobile Safari/537.36",
}

// Client implements the driven.TaskService port with plain HTTP + JSON.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient creates a Client for the given base URL. requestTimeout bounds every
// request as a safety net alongside context cancellation; zero disables it.
func NewClient(baseURL string, requestTimeout time.Duration) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{Timeout: requestTimeout}, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}

	return &Client{http: httpClient, baseURL: u}, nil
}

// userResponse is the subset of GET /user the farm uses.
type userResponse struct {
	FirstName    string  `json:"firstName"`
	TotalRewards float64 `json:"totalRewards"`
	ReferrerCode string  `json:"referrerCode"`
}

type tasksResponse struct {
	Tasks []struct {
		ID        int64  `json:"id"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	} `json:"tasks"`
}

type completeResponse struct {
	Success bool `json:"success"`
}

// FetchAccountInfo retrieves the account snapshot via GET /user.
func (c *Client) FetchAccountInfo(ctx context.Context, credential model.Credential) (model.AccountInfo, error) {
	const op = "fetch account info"

	var body userResponse
	if err := c.do(ctx, op, http.MethodGet, "/user", nil, credential, &body); err != nil {
		return model.AccountInfo{}, err
	}

	return model.AccountInfo{
		FirstName:    body.FirstName,
		TotalRewards: body.TotalRewards,
		ReferrerCode: body.ReferrerCode,
	}, nil
}

// FetchTasks retrieves the user's tasks of one group via GET /tasks/user.
func (c *Client) FetchTasks(ctx context.Context, credential model.Credential, group string) ([]model.Task, error) {
	const op = "fetch tasks"

	path := "/tasks/user?" + url.Values{"group": {group}}.Encode()

	var body tasksResponse
	if err := c.do(ctx, op, http.MethodGet, path, nil, credential, &body); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(body.Tasks))
	for _, t := range body.Tasks {
		tasks = append(tasks, model.Task{ID: t.ID, Title: t.Title, Completed: t.Completed})
	}

	return tasks, nil
}

// SubmitCompletion marks a task as completed via POST /tasks/{id}/complete.
func (c *Client) SubmitCompletion(ctx context.Context, credential model.Credential, taskID int64) (bool, error) {
	const op = "complete task"

	path := "/tasks/" + strconv.FormatInt(taskID, 10) + "/complete"

	var body completeResponse
	if err := c.do(ctx, op, http.MethodPost, path, []byte("{}"), credential, &body); err != nil {
		return false, err
	}

	return body.Success, nil
}

// do issues one request and decodes a 2xx JSON response into out. Every failure
// is returned as *driven.ServiceError.
func (c *Client) do(ctx context.Context, op, method, path string, payload []byte, credential model.Credential, out any) error {
	if credential == "" {
		return &driven.ServiceError{Op: op, Err: driven.ErrEmptyCredential}
	}

	ref, err := url.Parse(path)
	if err != nil {
		return &driven.ServiceError{Op: op, Err: fmt.Errorf("building URL: %w", err)}
	}
	target := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return &driven.ServiceError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "tma "+string(credential))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &driven.ServiceError{Op: op, Err: unwrapURLError(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("task service request",
		"op", op,
		"method", method,
		"path", target.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &driven.ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &driven.ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

// unwrapURLError strips the *url.Error envelope so messages don't repeat the
// method and URL, while keeping context errors matchable with errors.Is.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
