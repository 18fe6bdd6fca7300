// Package client is a Go SDK for the study plan API. It keeps the caller's
// identity in an explicit Session and treats server state as authoritative.
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

	"studyplan-backend/models"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err if it is an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

type CreatePlanInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Client performs raw API calls. It is safe for concurrent use; the bearer
// token is passed per call by Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Register(ctx context.Context, name, email, password, college string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"college":  college,
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.UserResponse, error) {
	var user models.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListPlans(ctx context.Context, token string) ([]models.PlanResponse, error) {
	var plans []models.PlanResponse
	if err := c.do(ctx, http.MethodGet, "/api/plans", token, nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *Client) PendingInvitations(ctx context.Context, token string) ([]models.PlanResponse, error) {
	var plans []models.PlanResponse
	if err := c.do(ctx, http.MethodGet, "/api/plans/invitations", token, nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *Client) GetPlan(ctx context.Context, token, planID string) (*models.PlanResponse, error) {
	return c.plan(ctx, http.MethodGet, "/api/plans/"+url.PathEscape(planID), token, nil)
}

func (c *Client) CreatePlan(ctx context.Context, token string, in CreatePlanInput) (*models.PlanResponse, error) {
	return c.plan(ctx, http.MethodPost, "/api/plans", token, in)
}

func (c *Client) Invite(ctx context.Context, token, planID, email string) (*models.PlanResponse, error) {
	return c.plan(ctx, http.MethodPost, planPath(planID, "invite"), token, map[string]string{"email": email})
}

func (c *Client) RespondToInvitation(ctx context.Context, token, planID, invitationID, status string) (*models.PlanResponse, error) {
	return c.plan(ctx, http.MethodPost, planPath(planID, "invitations", invitationID), token, map[string]string{"status": status})
}

func (c *Client) CreateTask(ctx context.Context, token, planID string, in CreateTaskInput) (*models.PlanResponse, error) {
	return c.plan(ctx, http.MethodPost, planPath(planID, "tasks"), token, in)
}

func (c *Client) UpdateTaskStatus(ctx context.Context, token, planID, taskID, status string) (*models.PlanResponse, error) {
	return c.plan(ctx, http.MethodPatch, planPath(planID, "tasks", taskID), token, map[string]string{"status": status})
}

func (c *Client) AssignTask(ctx context.Context, token, planID, taskID, userID string) (*models.PlanResponse, error) {
	return c.plan(ctx, http.MethodPost, planPath(planID, "tasks", taskID, "assign"), token, map[string]string{"userId": userID})
}

func (c *Client) plan(ctx context.Context, method, path, token string, body any) (*models.PlanResponse, error) {
	var plan models.PlanResponse
	if err := c.do(ctx, method, path, token, body, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func planPath(planID string, parts ...string) string {
	segments := []string{"/api/plans", url.PathEscape(planID)}
	for _, p := range parts {
		segments = append(segments, url.PathEscape(p))
	}
	return strings.Join(segments, "/")
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
