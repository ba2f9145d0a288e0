// Package rest talks to the remote note collection over HTTP+JSON.
//
//	GET    {base}/notes
//	POST   {base}/notes
//	PATCH  {base}/notes/{id}
//	DELETE {base}/notes/{id}
//
// Each call is a single attempt. Every failure wraps core.ErrRemoteUnavailable.
package rest

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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/notesync/pkg/core"
)

// DefaultBaseURL matches a local json-server.
const DefaultBaseURL = "http://localhost:3000"

// Error describes a failed remote call.
type Error struct {
	Op         string
	StatusCode int // zero for transport errors
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every Error match core.ErrRemoteUnavailable.
func (e *Error) Is(target error) bool {
	return target == core.ErrRemoteUnavailable
}

// Client implements core.Remote.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger for request traces. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the collection at baseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the whole collection. An empty body yields an empty slice.
func (c *Client) List(ctx context.Context) ([]core.Note, error) {
	var out []core.Note
	if err := c.doJSON(ctx, "list", http.MethodGet, "/notes", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Note{}
	}
	return out, nil
}

// Create posts the draft and returns the note with the server-assigned id.
func (c *Client) Create(ctx context.Context, d core.Draft) (core.Note, error) {
	var out core.Note
	if err := c.doJSON(ctx, "create", http.MethodPost, "/notes", d, &out); err != nil {
		return core.Note{}, err
	}
	if out.ID == "" {
		return core.Note{}, &Error{Op: "create", Err: errors.New("response carries no id")}
	}
	return out, nil
}

// Update sends a PATCH carrying only the fields set in p.
func (c *Client) Update(ctx context.Context, id core.ID, p core.Patch) error {
	return c.doJSON(ctx, "update", http.MethodPatch, notePath(id), p, nil)
}

// Delete removes the note. A 404 counts as success: the note is already gone,
// which is the case for ids the remote never issued.
func (c *Client) Delete(ctx context.Context, id core.ID) error {
	err := c.doJSON(ctx, "delete", http.MethodDelete, notePath(id), nil, nil)
	var rerr *Error
	if errors.As(err, &rerr) && rerr.StatusCode == http.StatusNotFound {
		c.logger.Debug("note already absent on remote", "id", id)
		return nil
	}
	return err
}

func notePath(id core.ID) string {
	return "/notes/" + url.PathEscape(string(id))
}

func (c *Client) doJSON(ctx context.Context, op, method, requestPath string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("failed to encode body: %w", err)}
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bodyReader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Correlation-Id", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("remote call failed", "op", op, "error", err)
		return &Error{Op: op, Err: err}
	}
	payload, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	c.logger.Debug("remote call", "op", op, "status", resp.StatusCode, "duration", time.Since(start))
	if readErr != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errPayload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(payload, &errPayload)
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: errPayload.Message}
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

var _ core.Remote = (*Client)(nil)
