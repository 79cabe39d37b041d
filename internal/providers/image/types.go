package image

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResult is returned when a provider answers without image bytes.
var ErrEmptyResult = errors.New("image: provider returned no image data")

// GenerateRequest is the provider-neutral input of one generation.
type GenerateRequest struct {
	Prompt    string
	RequestID string
}

// Asset is a generated image held in memory.
type Asset struct {
	Data []byte
	MIME string
}

// Generator is the contract implemented by all image providers. A call maps to
// exactly one upstream request; providers must not retry on their own.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}

// FormatMIME maps an output format token to its media type.
func FormatMIME(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "png":
		return "image/png"
	case "jpeg", "jpg":
		return "image/jpeg"
	default:
		return "image/webp"
	}
}
