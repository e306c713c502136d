// Package api is the thin REST layer between the client core and the
// Verdin backend. It owns request plumbing only; every cache semantics
// decision lives in the stores.
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
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/logging"
	"github.com/verdinapp/verdin/internal/models"
)

const defaultTimeout = 15 * time.Second

// Client errors.
var (
	ErrUnauthorized = errors.New("request was rejected as unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// StatusError is returned for non-2xx responses that are not one of the
// sentinel cases.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// TokenProvider returns the current session token, or "" when logged out.
type TokenProvider func() string

// Client talks JSON to the backend. The session token is attached to every
// outbound request; it is provided by the session layer, not stored here.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenProvider
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request end to end.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenProvider sets the session token source.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.token = tp
		}
	}
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		token:   func() string { return "" },
		logger:  logging.Component("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Str("method", method).Str("path", path).
			Msg(logging.Redact(fmt.Sprintf("request failed: %v", err)))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Body: logging.Redact(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchThreads loads one page of the thread feed.
func (c *Client) FetchThreads(ctx context.Context, page, size int) (models.Page[models.Thread], error) {
	var out models.Page[models.Thread]
	path := fmt.Sprintf("/api/threads?page=%d&size=%d", page, size)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// FetchThread loads a single thread.
func (c *Client) FetchThread(ctx context.Context, id string) (models.Thread, error) {
	var out models.Thread
	err := c.do(ctx, http.MethodGet, "/api/threads/"+url.PathEscape(id), nil, &out)
	return out, err
}

// DeleteThread removes a thread the current user owns.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/threads/"+url.PathEscape(id), nil, nil)
}

// ReportView tells the backend the thread was viewed this session.
func (c *Client) ReportView(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/threads/"+url.PathEscape(id)+"/views", nil, nil)
}

// SetThreadLiked sets or clears the like on a thread.
func (c *Client) SetThreadLiked(ctx context.Context, id string, liked bool) error {
	path := "/api/threads/" + url.PathEscape(id) + "/like"
	if liked {
		return c.do(ctx, http.MethodPost, path, nil, nil)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SetThreadSaved sets or clears the save on a thread.
func (c *Client) SetThreadSaved(ctx context.Context, id string, saved bool) error {
	path := "/api/threads/" + url.PathEscape(id) + "/save"
	if saved {
		return c.do(ctx, http.MethodPost, path, nil, nil)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// AddComment posts a reply and returns the created comment.
func (c *Client) AddComment(ctx context.Context, threadID, text string) (models.Comment, error) {
	var out models.Comment
	body := map[string]string{"body": text}
	err := c.do(ctx, http.MethodPost, "/api/threads/"+url.PathEscape(threadID)+"/comments", body, &out)
	return out, err
}

// DeleteComment removes a reply.
func (c *Client) DeleteComment(ctx context.Context, threadID, commentID string) error {
	path := "/api/threads/" + url.PathEscape(threadID) + "/comments/" + url.PathEscape(commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// FetchComments loads one page of a thread's replies.
func (c *Client) FetchComments(ctx context.Context, threadID string, page, size int) (models.Page[models.Comment], error) {
	var out models.Page[models.Comment]
	path := "/api/threads/" + url.PathEscape(threadID) + "/comments?page=" + strconv.Itoa(page) + "&size=" + strconv.Itoa(size)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// FetchUser loads a single profile.
func (c *Client) FetchUser(ctx context.Context, username string) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(username), nil, &out)
	return out, err
}

// SearchUsers runs the profile autocomplete query.
func (c *Client) SearchUsers(ctx context.Context, query string, page, size int) (models.Page[models.User], error) {
	var out models.Page[models.User]
	path := fmt.Sprintf("/api/users/search?q=%s&page=%d&size=%d", url.QueryEscape(query), page, size)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// SetUserFollowed sets or clears a follow on a profile.
func (c *Client) SetUserFollowed(ctx context.Context, username string, followed bool) error {
	path := "/api/users/" + url.PathEscape(username) + "/follow"
	if followed {
		return c.do(ctx, http.MethodPost, path, nil, nil)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// FetchCategories loads every category.
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out)
	return out, err
}

// SetCategoryFollowed sets or clears a follow on a category.
func (c *Client) SetCategoryFollowed(ctx context.Context, id string, followed bool) error {
	path := "/api/categories/" + url.PathEscape(id) + "/follow"
	if followed {
		return c.do(ctx, http.MethodPost, path, nil, nil)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// unreadResponse is the body of the unread-summary endpoint.
type unreadResponse struct {
	HasUnread bool `json:"hasUnread"`
}

// FetchUnread asks whether unread notifications exist.
func (c *Client) FetchUnread(ctx context.Context) (bool, error) {
	var out unreadResponse
	err := c.do(ctx, http.MethodGet, "/api/notifications/unread", nil, &out)
	return out.HasUnread, err
}

// MarkNotificationsRead marks every notification read.
func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read", nil, nil)
}

// quotaResponse is the body of the quota endpoint.
type quotaResponse struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// FetchQuota returns the server's view of the daily interaction quota.
func (c *Client) FetchQuota(ctx context.Context) (limit, remaining int, err error) {
	var out quotaResponse
	if err := c.do(ctx, http.MethodGet, "/api/quota", nil, &out); err != nil {
		return 0, 0, err
	}
	return out.Limit, out.Remaining, nil
}
