// Package remote fetches raw file content from a hosted repository mirror.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound      = errors.New("remote: not found")
	ErrUnavailable   = errors.New("remote: unavailable")
	ErrNotConfigured = errors.New("remote: base url not configured")
)

const (
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBytes caps a single fetched file.
	DefaultMaxBytes = 64 << 20
)

// Config names the raw-content endpoint, e.g.
// BaseURL "https://raw.githubusercontent.com/XAMS-nikhef/amstrax_files" and
// Ref "master".
type Config struct {
	BaseURL  string
	Ref      string
	Timeout  time.Duration
	MaxBytes int64
}

// Client fetches files at a fixed ref.
type Client struct {
	base     *url.URL
	ref      string
	maxBytes int64
	http     *http.Client
}

// NewClient validates cfg and builds a client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("remote: base url %q must be http(s)", raw)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	ref := strings.Trim(strings.TrimSpace(cfg.Ref), "/")
	if ref == "" {
		ref = "master"
	}
	return &Client{base: u, ref: ref, maxBytes: maxBytes, http: httpClient}, nil
}

// URL returns the address of name at the configured ref.
func (c *Client) URL(name string) string {
	u := *c.base
	u.Path = path.Join("/", u.Path, c.ref, strings.TrimPrefix(path.Clean("/"+name), "/"))
	return u.String()
}

// Fetch downloads name. A 404 maps to ErrNotFound, every other failure to
// ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	target := c.URL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request %s: %v", ErrUnavailable, target, err)
	}

	log.Debug().Str("url", target).Msg("remote fetch")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s status=%d", ErrUnavailable, target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, target, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrUnavailable, target, c.maxBytes)
	}
	return body, nil
}
