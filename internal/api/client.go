// Package api is the HTTP client for the tasks CRUD service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rogersnm/taskdesk/internal/model"
	log "github.com/sirupsen/logrus"
)

const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries a per-request id so client and server logs line up.
const RequestIDHeader = "X-Request-Id"

// StatusError is returned for any non-2xx response. The body is not interpreted.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error %d: %s %s", e.StatusCode, e.Method, e.Path)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client talks to a tasks API rooted at a base URL:
//
//	GET    /      list every record
//	POST   /      create
//	PATCH  /{id}  partial update
//	DELETE /{id}  delete
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     log.FieldLogger
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- HTTP helpers ---

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	entry := c.log.WithFields(log.Fields{"request_id": reqID, "method": method, "path": path})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	entry.WithFields(log.Fields{"status": resp.StatusCode, "elapsed": time.Since(start)}).Debug("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func decode[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("decoding response: %w", err)
	}
	return v, nil
}

func recordPath(id int) string {
	return "/" + strconv.Itoa(id)
}

// --- Records ---

// List fetches the full collection.
func (c *Client) List(ctx context.Context) ([]model.Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	recs, err := decode[[]model.Record](resp)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.Record{}
	}
	return recs, nil
}

// Create posts a new record. Servers that reply without a body yield a nil
// record and no error.
func (c *Client) Create(ctx context.Context, in model.RecordInput) (*model.Record, error) {
	resp, err := c.do(ctx, http.MethodPost, "/", in)
	if err != nil {
		return nil, err
	}
	return decodeOptional(resp)
}

func (c *Client) Update(ctx context.Context, id int, patch model.RecordPatch) (*model.Record, error) {
	resp, err := c.do(ctx, http.MethodPatch, recordPath(id), patch)
	if err != nil {
		return nil, err
	}
	return decodeOptional(resp)
}

func (c *Client) Delete(ctx context.Context, id int) error {
	resp, err := c.do(ctx, http.MethodDelete, recordPath(id), nil)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func decodeOptional(resp *http.Response) (*model.Record, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var r model.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &r, nil
}
