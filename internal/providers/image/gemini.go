package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	ProviderGemini = "gemini"

	defaultGeminiModel = "gemini-2.5-flash-image"
)

// GeminiOptions configures the Gemini image client.
type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// GeminiGenerator renders covers with a Gemini image model via GenerateContent.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	config := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &GeminiGenerator{client: client, model: coalesce(opts.Model, defaultGeminiModel)}, nil
}

func (g *GeminiGenerator) Name() string {
	return ProviderGemini
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("gemini: prompt is required")
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	return firstInlineImage(resp)
}

// firstInlineImage returns the first inline image part of the first candidate.
func firstInlineImage(resp *genai.GenerateContentResponse) (*Asset, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrEmptyResult
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil, ErrEmptyResult
	}
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return &Asset{Data: part.InlineData.Data, MIME: mime}, nil
	}
	return nil, ErrEmptyResult
}

var _ Generator = (*GeminiGenerator)(nil)
