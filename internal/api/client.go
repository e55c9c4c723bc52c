// Package api talks to the remote todo REST resource.
package api

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/todosync/internal/model"
)

// Resource is the collection path under the base URL.
const Resource = "todos"

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Logger     *log.Logger
	Token      string        // sent as a bearer token when set
	Timeout    time.Duration // 0 means no timeout
	UserAgent  string
}

// Client is a todo API client.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	logger     *log.Logger
	token      string
	userAgent  string
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "todosync"
	}
	return &Client{base: u, httpClient: hc, logger: logger, token: opts.Token, userAgent: ua}, nil
}

// List fetches the collection. limit <= 0 fetches everything.
func (c *Client) List(ctx context.Context, limit int) ([]model.Todo, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("_limit", strconv.Itoa(limit))
	}
	var todos []model.Todo
	if err := c.do(ctx, "list", http.MethodGet, Resource, q, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create posts a new record and returns what the server assigned.
func (c *Client) Create(ctx context.Context, in model.CreateInput) (model.Todo, error) {
	var out model.Todo
	err := c.do(ctx, "create", http.MethodPost, Resource, nil, in, &out)
	return out, err
}

// Update replaces the record with t.ID and returns the echoed record.
func (c *Client) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	var out model.Todo
	err := c.do(ctx, "update", http.MethodPut, itemPath(t.ID), nil, t, &out)
	return out, err
}

// Delete removes the record with id. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete", http.MethodDelete, itemPath(id), nil, nil, nil)
}

func itemPath(id int) string { return Resource + "/" + strconv.Itoa(id) }

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body, result any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	fail := func(status int, msg string, err error) error {
		return &RequestError{Op: op, Method: method, URL: u.String(), Status: status, Message: msg, Err: err}
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fail(0, "", fmt.Errorf("encode request: %w", err))
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fail(0, "", fmt.Errorf("create request: %w", err))
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "op", op, "method", method, "url", u.String(), "request_id", reqID, "err", err)
		return fail(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	c.logger.Debug("api request", "op", op, "method", method, "url", u.String(), "request_id", reqID,
		"status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(payload))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fail(resp.StatusCode, msg, nil)
	}
	if result == nil {
		return nil
	}

	schema := todoSchema
	if _, isList := result.(*[]model.Todo); isList {
		schema = todoListSchema
	}
	if err := decodeValidated(payload, schema, result); err != nil {
		return fail(resp.StatusCode, "", err)
	}
	return nil
}
