// Package api is the single HTTP entry point to the Mira backend. Every
// request carries the current credential when one is set, and every
// failure is normalized into *Error so callers never see a raw transport
// error or have to parse response bodies themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentmira/mira-go/internal/logger"
	"github.com/agentmira/mira-go/internal/property"
)

// Client is a client for the Mira backend API.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a new Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetToken attaches a bearer token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken detaches the credential.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// SendMessage posts a chat turn.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat/message", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", req, nil)
}

// SaveProperty persists a property to the user's saved list.
func (c *Client) SaveProperty(ctx context.Context, req SaveRequest) (*SaveResponse, error) {
	var resp SaveResponse
	if err := c.do(ctx, http.MethodPost, "/user/save", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SavedProperties fetches the authoritative saved list.
func (c *Client) SavedProperties(ctx context.Context) ([]property.Record, error) {
	var resp savedResponse
	if err := c.do(ctx, http.MethodGet, "/user/saved", nil, &resp); err != nil {
		return nil, err
	}
	return resp.SavedProperties, nil
}

// UnsaveProperty removes a property from the user's saved list.
func (c *Client) UnsaveProperty(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/user/saved/"+url.PathEscape(id), nil, nil)
}

// SearchProperties queries the property listing directly, without a chat turn.
func (c *Client) SearchProperties(ctx context.Context, filters Filters) ([]property.Record, error) {
	q := url.Values{}
	if filters.Location != "" {
		q.Set("location", filters.Location)
	}
	if filters.Budget != "" {
		q.Set("budget", filters.Budget)
	}
	if filters.Bedrooms != "" {
		q.Set("bedrooms", filters.Bedrooms)
	}
	path := "/properties"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

// do issues one request and normalizes the outcome. A transport failure
// yields an Error with HasResponse false; a non-2xx status yields an Error
// built from the response body. 2xx bodies are decoded into out when given.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return newTransportError(err)
		}
		reqBody = bytes.NewBuffer(buf)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return newTransportError(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.L.Warn("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return newTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
			logger.L.Debug("error body not JSON", "path", path, "status", resp.StatusCode)
		}
		apiErr := newResponseError(resp.StatusCode, eb)
		logger.L.Debug("request rejected", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newTransportError(fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}
