package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"coverstudio/internal/infra"
)

const (
	ProviderOpenAI = "openai"

	defaultOpenAIModel  = "gpt-image-1"
	defaultOpenAISize   = "1024x1024"
	defaultOpenAIFormat = "webp"
)

// OpenAIOptions configures the OpenAI Images client.
type OpenAIOptions struct {
	APIKey       string
	BaseURL      string
	Organization string
	Model        string
	Size         string
	Format       string
	HTTPClient   *http.Client
	Timeout      time.Duration
	Logger       *infra.Logger
}

// OpenAIGenerator renders covers through the OpenAI Images API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	size   string
	format string
	logger *infra.Logger
}

// NewOpenAIGenerator validates the options and builds the SDK client with
// retries disabled, so each Generate call is a single upstream attempt.
func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}
	if org := strings.TrimSpace(opts.Organization); org != "" {
		requestOpts = append(requestOpts, option.WithOrganization(org))
	}
	logger := opts.Logger
	if logger == nil {
		nop := infra.NopLogger()
		logger = &nop
	}
	return &OpenAIGenerator{
		client: openai.NewClient(requestOpts...),
		model:  coalesce(opts.Model, defaultOpenAIModel),
		size:   coalesce(opts.Size, defaultOpenAISize),
		format: coalesce(opts.Format, defaultOpenAIFormat),
		logger: logger,
	}, nil
}

func (g *OpenAIGenerator) Name() string {
	return ProviderOpenAI
}

// Generate requests one image and decodes its base64 payload.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("openai: prompt is required")
	}
	result, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:        openai.ImageModel(g.model),
		Prompt:       prompt,
		Size:         openai.ImageGenerateParamsSize(g.size),
		OutputFormat: openai.ImageGenerateParamsOutputFormat(g.format),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: generate image: %w", convertError(err))
	}
	if result == nil || len(result.Data) == 0 {
		return nil, ErrEmptyResult
	}
	encoded := strings.TrimSpace(result.Data[0].B64JSON)
	if encoded == "" {
		return nil, ErrEmptyResult
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("openai: decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}
	g.logger.Debug().
		Str("model", g.model).
		Str("request_id", req.RequestID).
		Int("bytes", len(data)).
		Msg("openai: generated cover image")
	return &Asset{Data: data, MIME: FormatMIME(g.format)}, nil
}

// convertError flattens SDK API errors into status + message so the cause
// logged server-side stays readable.
func convertError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return fmt.Errorf("status %d: %w", apierr.StatusCode, err)
	}
	return err
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var _ Generator = (*OpenAIGenerator)(nil)
