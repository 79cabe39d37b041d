package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"coverstudio/internal/domain"
)

// Cover is a generated image decoded from the server's base64 payload.
type Cover struct {
	Data []byte
	MIME string
}

const maxErrorBody = 64 << 10

// GenerateCover posts req to /api/generate-cover and decodes the image.
func (c *Client) GenerateCover(ctx context.Context, req CoverRequest, opts ...RequestOption) (*Cover, error) {
	cfg := c.config(opts...)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL+"/api/generate-cover", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if cfg.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", cfg.IdempotencyKey)
	}
	for k, v := range cfg.Headers {
		httpReq.Header[k] = v
	}

	resp, err := cfg.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: generate cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, decodeError(resp)
	}

	var payload domain.CoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("client: decode response: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(payload.B64)
	if err != nil {
		return nil, fmt.Errorf("client: decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("client: server returned an empty image")
	}
	mime := payload.MIME
	if mime == "" {
		mime = "image/webp"
	}
	return &Cover{Data: data, MIME: mime}, nil
}

// Health reports whether GET /health answers {"ok": true}.
func (c *Client) Health(ctx context.Context, opts ...RequestOption) error {
	cfg := c.config(opts...)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	resp, err := cfg.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client: health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	var body struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("client: decode health: %w", err)
	}
	if !body.OK {
		return &Error{StatusCode: resp.StatusCode, Message: "server not ok"}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body domain.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return &Error{StatusCode: resp.StatusCode, Message: body.Error}
	}
	return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
