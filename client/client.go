package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nonsonwune/hostel_admin/models"
)

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 512

// Client talks to the hostel backend's admin endpoints
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. for a custom transport
// or timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchStudents calls GET /users/all.
func (c *Client) FetchStudents(ctx context.Context) ([]models.Student, error) {
	const op = "fetch students"

	req, err := c.newRequest(ctx, http.MethodGet, "/users/all", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}

	var students []models.Student
	if err := json.NewDecoder(resp.Body).Decode(&students); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return students, nil
}

// ManageHostel calls POST /users/{id}/manage-hostel. The response body is
// not consumed beyond the status code.
func (c *Client) ManageHostel(ctx context.Context, studentID string, action models.HostelAction) error {
	op := fmt.Sprintf("%s hostel request for %s", action, studentID)

	if strings.TrimSpace(studentID) == "" {
		return fmt.Errorf("%s: empty student id", op)
	}

	body, err := json.Marshal(map[string]string{"action": string(action)})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	path := "/users/" + url.PathEscape(studentID) + "/manage-hostel"
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       errorMessage(raw),
	}
	if resp.StatusCode == http.StatusNotFound {
		apiErr.Err = ErrNotFound
	}
	return apiErr
}

// errorMessage prefers the backend's {"message": "..."} shape and falls back
// to the raw text.
func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
