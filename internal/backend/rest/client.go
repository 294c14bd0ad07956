// Package rest implements the service.Service interface over the task REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"tasktrack/internal/logger"
	"tasktrack/internal/service"
)

const (
	registerPath = "/api/auth/register"
	loginPath    = "/api/auth/login"
	tasksPath    = "/api/tasks"
	healthPath   = "/health"
)

// Client implements service.Service against a tasktrack server.
type Client struct {
	baseURL   string
	transport http.RoundTripper
	log       logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the underlying round tripper (for testing).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: http.DefaultTransport,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, reg service.Registration) error {
	return c.do(ctx, http.MethodPost, registerPath, "", reg, nil)
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.LoginResult, error) {
	var res service.LoginResult
	if err := c.do(ctx, http.MethodPost, loginPath, "", creds, &res); err != nil {
		return service.LoginResult{}, err
	}
	return res, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, token string) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, tasksPath, token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, token, title, description string) (service.Task, error) {
	body := struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}{title, description}

	var task service.Task
	if err := c.do(ctx, http.MethodPost, tasksPath, token, body, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, token, id string, patch service.TaskPatch) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), token, patch, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), token, nil, nil)
}

// Health implements service.Service.
func (c *Client) Health(ctx context.Context) (string, error) {
	var res struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, healthPath, "", nil, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

// httpClient returns a client that attaches the bearer token, if any.
func (c *Client) httpClient(token string) *http.Client {
	if token == "" {
		return &http.Client{Transport: c.transport}
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &http.Client{Transport: &oauth2.Transport{Source: src, Base: c.transport}}
}

// do sends one request. in is JSON-encoded when non-nil; a 2xx body is
// decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode body: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		c.log.WithError(err).WithField("op", op).Debug("request failed")
		return &service.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"op":          op,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("request completed")

	if err := googleapi.CheckResponse(resp); err != nil {
		return rejection(err)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: invalid response body: %w", op, err)
	}
	return nil
}

// rejection converts a googleapi error into a service.RejectedError,
// picking up the server's {"message": ...} body when present.
func rejection(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	msg := gerr.Message
	if msg == "" {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal([]byte(gerr.Body), &payload) == nil {
			msg = payload.Message
		}
	}
	return &service.RejectedError{Code: gerr.Code, Message: msg, Err: gerr}
}
