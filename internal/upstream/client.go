package upstream

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

	"github.com/rs/zerolog"

	"systrack/console/internal/config"
)

const maxResponseBytes = 4 << 20

// Recorder observes upstream call outcomes. Implemented by the
// metrics collector; a nil recorder disables observation.
type Recorder interface {
	RecordUpstream(route string, status int, elapsed time.Duration)
}

// Client is the typed REST client for the SysTrack backend. The
// backend remains the single source of truth for every entity; this
// client only translates calls and classifies failures.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	rec     Recorder
}

func NewClient(cfg config.UpstreamConfig, log zerolog.Logger, rec Recorder) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
		rec:     rec,
	}
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// do issues one request and decodes the response into out (when out is
// non-nil). Non-2xx responses are classified into the error taxonomy;
// transport failures become NetworkError.
func (c *Client) do(ctx context.Context, route, method, path, token string, query url.Values, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if c.rec != nil {
			c.rec.RecordUpstream(route, 0, time.Since(start))
		}
		c.log.Error().Err(err).Str("route", route).Msg("upstream request failed")
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if c.rec != nil {
		c.rec.RecordUpstream(route, resp.StatusCode, time.Since(start))
	}
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func classify(status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{StatusCode: status, Message: env.Message}
	case status == http.StatusNotFound:
		return &NotFoundError{Message: env.Message}
	case len(env.Errors) > 0:
		return &ValidationError{Fields: env.Errors}
	case status == http.StatusConflict || status == http.StatusBadRequest:
		return &ConflictError{Message: env.Message}
	default:
		return &APIError{StatusCode: status, Message: env.Message}
	}
}
