// Package client is a typed HTTP client for the estudiantes API. It
// offers what a browser front end does: the five record operations plus
// a client-side search and summary over the full list.
package client

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

	"github.com/aanand-mishra/estudiantes-api/internal/types"
	"github.com/aanand-mishra/estudiantes-api/internal/utils/response"
)

// DefaultBaseURL is where a locally started server listens.
const DefaultBaseURL = "http://localhost:4000"

const estudiantesPath = "/api/estudiantes"

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for baseURL (scheme and host, no trailing path).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client.New: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client.New: base url %q needs scheme and host", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// mutation mirrors response.Mutation with a concrete record type.
type mutation struct {
	Message    string        `json:"message"`
	Estudiante types.Student `json:"estudiante"`
}

// do sends body (when non-nil) as JSON and decodes a 2xx reply into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope response.Response
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
			apiErr.Detail = envelope.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func studentPath(id string) string {
	return estudiantesPath + "/" + url.PathEscape(id)
}

// List returns every student.
func (c *Client) List(ctx context.Context) ([]types.Student, error) {
	var students []types.Student
	if err := c.do(ctx, http.MethodGet, estudiantesPath, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Get returns one student.
func (c *Client) Get(ctx context.Context, id string) (types.Student, error) {
	var student types.Student
	err := c.do(ctx, http.MethodGet, studentPath(id), nil, &student)
	return student, err
}

// Create adds a student and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, in types.StudentInput) (types.Student, error) {
	var out mutation
	err := c.do(ctx, http.MethodPost, estudiantesPath, in, &out)
	return out.Estudiante, err
}

// Update replaces the writable fields of a student.
func (c *Client) Update(ctx context.Context, id string, in types.StudentInput) (types.Student, error) {
	var out mutation
	err := c.do(ctx, http.MethodPut, studentPath(id), in, &out)
	return out.Estudiante, err
}

// Delete removes a student and returns the removed record.
func (c *Client) Delete(ctx context.Context, id string) (types.Student, error) {
	var out mutation
	err := c.do(ctx, http.MethodDelete, studentPath(id), nil, &out)
	return out.Estudiante, err
}
