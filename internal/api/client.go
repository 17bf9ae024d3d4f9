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

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/validation"
)

// TokenSource supplies the bearer token for each request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Client struct {
	baseURL   string
	timeout   time.Duration
	http      *http.Client
	tokens    TokenSource
	userAgent string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New builds a client for baseURL (e.g. http://localhost:3001/api). Every
// request is bounded by timeout; zero selects constants.DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
		http:      &http.Client{},
		userAgent: constants.AppName + "/" + constants.Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource swaps the token source after construction. The session
// manager needs the client to log in, and the client needs the manager for
// tokens.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *Client) BaseURL() string { return c.baseURL }

// ListHabits returns the user's habits. A 404 means "no habits yet" and
// yields an empty list.
func (c *Client) ListHabits(ctx context.Context) ([]models.Habit, error) {
	var list models.HabitList
	err := c.do(ctx, "list habits", http.MethodGet, "/habits", "", nil, &list)
	if err != nil {
		if IsNotFound(err) {
			logger.Debug("habit list not found, treating as empty")
			return []models.Habit{}, nil
		}
		return nil, err
	}
	if list == nil {
		return []models.Habit{}, nil
	}
	return list, nil
}

// CreateHabit trims and validates its inputs before sending anything
func (c *Client) CreateHabit(ctx context.Context, name, description string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validation.Habit(name, description); err != nil {
		return models.Habit{}, err
	}

	var habit models.Habit
	req := models.CreateHabitRequest{Name: name, Description: description}
	if err := c.do(ctx, "create habit", http.MethodPost, "/habits", "", req, &habit); err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (c *Client) DeleteHabit(ctx context.Context, id int) error {
	return c.do(ctx, "delete habit", http.MethodDelete, "/habits/"+strconv.Itoa(id), "", nil, nil)
}

func (c *Client) GetStats(ctx context.Context) (models.HabitStats, error) {
	var stats models.HabitStats
	if err := c.do(ctx, "get stats", http.MethodGet, "/habits/stats", "", nil, &stats); err != nil {
		return models.HabitStats{}, err
	}
	return stats, nil
}

// ToggleHabit sets today's completion for habit id and returns the updated habit
func (c *Client) ToggleHabit(ctx context.Context, id int, completed bool) (models.Habit, error) {
	var habit models.Habit
	path := "/habits/" + strconv.Itoa(id) + "/toggle"
	req := models.ToggleHabitRequest{Completed: completed}
	if err := c.do(ctx, "toggle habit", http.MethodPatch, path, "", req, &habit); err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

// Login exchanges credentials for a user profile carrying the access token
func (c *Client) Login(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	req := models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", req, &user); err != nil {
		return models.User{}, err
	}
	if user.AccessToken == "" {
		return models.User{}, fmt.Errorf("login: response did not include an access token")
	}
	return user, nil
}

// Logout notifies the server that token is no longer in use. With no token
// there is nothing to revoke and no request is made.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", token, struct{}{}, nil)
}

func (c *Client) CheckVersion(ctx context.Context) (models.VersionInfo, error) {
	var info models.VersionInfo
	if err := c.do(ctx, "check version", http.MethodGet, constants.VersionEndpoint, "", nil, &info); err != nil {
		return models.VersionInfo{}, err
	}
	return info, nil
}

// do sends one request. token overrides the token source when non-empty.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w after %s", op, ErrTimeout, c.timeout)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w after %s", op, ErrTimeout, c.timeout)
		}
		return fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	logger.Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(resp.StatusCode, raw),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
