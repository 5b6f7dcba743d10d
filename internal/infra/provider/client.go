package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// TokenSource supplies the bearer token owned by the CRM's auth layer. The
// engine forwards it unchanged on every provider call.
type TokenSource interface {
	BearerToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed token, used in tests and
// single-tenant deployments.
type StaticToken string

func (t StaticToken) BearerToken(context.Context) (string, error) { return string(t), nil }

// Client talks to the booking-provider backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenSource
	Logger  *slog.Logger
}

func (c *Client) newRequest(ctx context.Context, method, path, inquiryToken string, body any) (*http.Request, error) {
	if c == nil || c.HTTP == nil {
		return nil, errors.New("provider: http client not configured")
	}
	if c.BaseURL == "" {
		return nil, errors.New("provider: base url not configured")
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Tokens != nil {
		token, err := c.Tokens.BearerToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("provider: bearer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Inquiry-Token", inquiryToken)
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logError("provider request failed", req, err)
		return fmt.Errorf("provider: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		httpErr := &HTTPError{Status: resp.StatusCode, Message: strings.TrimSpace(string(snippet))}
		c.logError("provider returned error", req, httpErr)
		return httpErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logError("provider decode failed", req, err)
		return fmt.Errorf("provider: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) logError(msg string, req *http.Request, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "method", req.Method, "path", req.URL.Path, "error", err)
}
