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
)

// Profile is the public view of an account.
type Profile struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LoginResult holds the issued token and the profile echoed by the server.
type LoginResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type messageBody struct {
	Message string `json:"message"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with subsequent requests.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (string, error) {
	var out messageBody
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	return out.Message, err
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	out := &LoginResult{}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*Profile, error) {
	out := &Profile{}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, id string) (*Task, error) {
	out := &Task{}
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, title, description string) (*Task, error) {
	out := &Task{}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", map[string]string{
		"title": title, "description": description,
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTask sends the full editable state; the server overwrites all three
// fields.
func (c *HTTPClient) UpdateTask(ctx context.Context, id, title, description string, completed bool) (*Task, error) {
	out := &Task{}
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), map[string]any{
		"title": title, "description": description, "completed": completed,
	}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg messageBody
		_ = json.Unmarshal(data, &msg)
		if msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.Join(ErrUnauthorized, apiErr)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
