package image

import (
	"context"
	"fmt"

	"coverstudio/internal/infra"
)

// NewFromConfig builds the generator selected by IMAGE_PROVIDER.
func NewFromConfig(ctx context.Context, cfg *infra.Config, logger infra.Logger) (Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("image: config is required")
	}
	switch cfg.ImageProvider {
	case ProviderOpenAI, "":
		return NewOpenAIGenerator(OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			Model:        cfg.OpenAIImageModel,
			Size:         cfg.ImageSize,
			Format:       cfg.ImageFormat,
			Timeout:      cfg.UpstreamTimeout,
			Logger:       &logger,
		})
	case ProviderGemini:
		return NewGeminiGenerator(ctx, GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiImageModel,
			Timeout: cfg.UpstreamTimeout,
		})
	default:
		return nil, fmt.Errorf("image: unsupported provider %q", cfg.ImageProvider)
	}
}
