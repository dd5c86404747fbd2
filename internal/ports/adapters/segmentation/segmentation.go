// Package segmentation talks to an image segmentation inference server.
package segmentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/mediashop/internal/types"
)

const (
	requestTimeout = 5 * time.Minute
	defaultModel   = "Xenova/modnet"
)

type Client struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

func New(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		key:     apiKey,
		model:   model,
		baseURL: normalizeBaseURL(baseURL),
		client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

type request struct {
	Model string `json:"model"`
	Mime  string `json:"mime,omitempty"`
	Image []byte `json:"image"`
}

// Segment posts the image and returns the server's masks, foreground first.
func (c *Client) Segment(ctx context.Context, image []byte, mime string) ([]types.Segmentation, error) {
	if len(image) == 0 {
		return nil, errors.New("segmentation: empty image")
	}
	body, err := json.Marshal(request{Model: c.model, Mime: mime, Image: image})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/v1/segment", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("segmentation timeout after %s (model=%s)", requestTimeout, c.model)
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("segmentation status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("segmentation status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), c.key), 400))
	}

	var out []types.Segmentation
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode segmentation response: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("segmentation: no masks returned")
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
