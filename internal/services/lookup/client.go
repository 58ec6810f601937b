// Package lookup resolves account handles and uuids against a Mojang-style
// profile API. Any non-success is reported to the caller and never retried.
package lookup

import (
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
)

// Errors
var (
	ErrNotFound    = errors.New("profile not found")
	ErrRateLimited = errors.New("lookup rate limited")
)

// StatusError reports an unexpected response status
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lookup failed with status %d", e.Code)
}

// Profile is a resolved account
type Profile struct {
	UUID string `json:"id"`
	Name string `json:"name"`
}

// Config holds configuration for the lookup client
type Config struct {
	// BaseURL serves /users/profiles/minecraft/{name}
	BaseURL string
	// SessionURL serves /user/profile/{uuid}
	SessionURL string
	Timeout    time.Duration
}

// DefaultConfig returns the public Mojang endpoints
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://api.mojang.com",
		SessionURL: "https://api.mojang.com",
		Timeout:    10 * time.Second,
	}
}

// Client calls the profile API
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a lookup client
func New(cfg Config, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.SessionURL == "" {
		cfg.SessionURL = def.SessionURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.SessionURL = strings.TrimRight(cfg.SessionURL, "/")
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout, Transport: http.DefaultTransport.(*http.Transport).Clone()},
		logger: logger,
	}
}

// Close releases idle connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// ByName resolves a handle to its canonical name and uuid
func (c *Client) ByName(ctx context.Context, name string) (Profile, error) {
	if name == "" {
		return Profile{}, fmt.Errorf("%w: empty name", ErrNotFound)
	}
	return c.get(ctx, c.cfg.BaseURL+"/users/profiles/minecraft/"+url.PathEscape(name))
}

// ByUUID returns the current name of the account with the uuid
func (c *Client) ByUUID(ctx context.Context, id string) (Profile, error) {
	normalized, err := NormalizeUUID(id)
	if err != nil {
		return Profile{}, err
	}
	return c.get(ctx, c.cfg.SessionURL+"/user/profile/"+normalized)
}

func (c *Client) get(ctx context.Context, target string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("profile lookup",
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
	)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNoContent:
		return Profile{}, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return Profile{}, ErrRateLimited
	default:
		return Profile{}, &StatusError{Code: resp.StatusCode}
	}

	var p Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.UUID, err = NormalizeUUID(p.UUID); err != nil {
		return Profile{}, err
	}
	if p.Name == "" {
		return Profile{}, fmt.Errorf("decode profile: missing name")
	}
	return p, nil
}

// NormalizeUUID accepts a dashed or undashed uuid and returns the undashed,
// lower-case form the registry stores
func NormalizeUUID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
