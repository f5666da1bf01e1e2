package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/services"
)

// APIError is a server rejection decoded from the response envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Transient reports whether an error is worth retrying: network
// failures and 5xx responses are, validation rejections are not.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return true
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Client is the typed REST client the auto-save session talks through.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func New(baseURL string, timeout time.Duration, baseLog *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     baseLog.With("component", "APIClient"),
	}
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", res.StatusCode, err)
	}
	if !env.Success {
		return &APIError{Status: res.StatusCode, Code: env.Error, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}

func (c *Client) AutoSave(ctx context.Context, req services.SaveBatchRequest) (services.SaveBatchResult, error) {
	var result services.SaveBatchResult
	err := c.post(ctx, "/api/evaluations/auto-save", req, &result)
	return result, err
}

func (c *Client) Submit(ctx context.Context, req services.SaveBatchRequest) (services.SubmitResult, error) {
	var result services.SubmitResult
	err := c.post(ctx, "/api/evaluations/submit", req, &result)
	return result, err
}

func (c *Client) CanSubmit(ctx context.Context, leaderID uuid.UUID) (services.SubmitReadiness, error) {
	var readiness services.SubmitReadiness
	err := c.get(ctx, "/api/evaluations/can-submit/"+leaderID.String(), &readiness)
	return readiness, err
}
