package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	UserAgent       = "JobBoard/1.0 (+ingest)"
	DefaultTimeout  = 20 * time.Second
	maxResponseSize = 8 << 20
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// NewClient returns an http.Client bounded by timeout (DefaultTimeout when <= 0).
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// DoJSON waits for the host limiter, sends req and decodes a 2xx JSON body into out.
func DoJSON(ctx context.Context, hc *http.Client, limiter *HostLimiter, req *http.Request, out any) error {
	if err := limiter.WaitURL(ctx, req.URL.String()); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		return &StatusError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Redact replaces every occurrence of secret in s.
func Redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "****")
}
