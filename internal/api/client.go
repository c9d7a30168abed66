// Package api talks to the remote task store over its REST interface.
package api

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Makepad-fr/taskview/internal/model"
)

// Service is everything the view needs from the task store.
// Implementations return *Error for failed calls.
type Service interface {
	// List returns every task in server order.
	List(ctx context.Context) ([]model.Task, error)

	// Create stores a new task. The response body is not used.
	Create(ctx context.Context, task model.Task) error

	// Update replaces the task identified by task.ID with task.
	Update(ctx context.Context, task model.Task) error

	// Delete removes the task identified by id.
	Delete(ctx context.Context, id model.ID) error
}

const (
	tasksPath = "/tasks"

	// maxBodySize caps how much of a list response is read.
	maxBodySize = 8 << 20
)

// Options configure a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:15000.
	BaseURL string

	// Token, when set, is sent as a bearer token.
	Token string

	// Timeout bounds each call. Zero means no timeout.
	Timeout time.Duration

	// StrictStatus makes non-2xx responses to create, update and delete
	// count as failures. When false only the list call checks status.
	StrictStatus bool

	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client

	Logger *log.Logger
}

// Client implements Service over HTTP.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	strict  bool
	logger  *log.Logger
}

// New creates a Client. The base URL must be absolute.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if token := StripBearer(opts.Token); token != "" {
		authed := *hc
		authed.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   hc.Transport,
		}
		hc = &authed
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		base:    base,
		http:    hc,
		timeout: opts.Timeout,
		strict:  opts.StrictStatus,
		logger:  logger,
	}, nil
}

// BaseURL is the normalized API root.
func (c *Client) BaseURL() string { return c.base }

// List fetches the full task collection.
func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	status, body, err := c.do(ctx, http.MethodGet, tasksPath, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, &Error{Method: http.MethodGet, Path: tasksPath, Status: status}
	}
	if err := validateCollection(body); err != nil {
		return nil, c.fail(http.MethodGet, tasksPath, status, err)
	}

	var tasks []model.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, c.fail(http.MethodGet, tasksPath, status, fmt.Errorf("%w: %v", ErrInvalidResponse, err))
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Create posts a new task.
func (c *Client) Create(ctx context.Context, task model.Task) error {
	return c.mutate(ctx, http.MethodPost, tasksPath, task)
}

// Update puts the full task back under its id.
func (c *Client) Update(ctx context.Context, task model.Task) error {
	if task.ID.IsZero() {
		return &Error{Method: http.MethodPut, Path: tasksPath + "/", Err: errors.New("task has no id")}
	}
	return c.mutate(ctx, http.MethodPut, taskPath(task.ID), task)
}

// Delete removes a task by id.
func (c *Client) Delete(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return &Error{Method: http.MethodDelete, Path: tasksPath + "/", Err: errors.New("empty id")}
	}
	return c.mutate(ctx, http.MethodDelete, taskPath(id), nil)
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) error {
	status, _, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if c.strict && !ok(status) {
		return &Error{Method: method, Path: path, Status: status}
	}
	return nil
}

// do sends one request and reads the whole response. Transport failures
// come back as *Error; any response, whatever its status, is returned to
// the caller.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, &Error{Method: method, Path: path, Err: fmt.Errorf("encode body: %w", err)}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return 0, nil, &Error{Method: method, Path: path, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := c.logger.With("method", method, "path", path, "request_id", reqID)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("request failed", "err", err)
		return 0, nil, &Error{Method: method, Path: path, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logger.Warn("read body failed", "status", resp.StatusCode, "err", err)
		return 0, nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	logger.Debug("request done", "status", resp.StatusCode, "took", time.Since(start))
	if !ok(resp.StatusCode) {
		logger.Warn("non-success status", "status", resp.StatusCode)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) fail(method, path string, status int, err error) error {
	c.logger.Warn("bad response", "method", method, "path", path, "status", status, "err", err)
	return &Error{Method: method, Path: path, Status: status, Err: err}
}

func taskPath(id model.ID) string {
	return tasksPath + "/" + url.PathEscape(id.String())
}

func ok(status int) bool { return status >= 200 && status < 300 }

// unwrapURLError drops the *url.Error wrapper, whose message repeats the
// method and full URL already carried by Error.
func unwrapURLError(err error) error {
	if ue, isURL := err.(*url.Error); isURL {
		return ue.Err
	}
	return err
}

// StripBearer removes a leading "Bearer " scheme from a pasted token.
func StripBearer(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
