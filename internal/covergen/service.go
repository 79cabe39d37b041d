package covergen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"coverstudio/internal/domain"
	"coverstudio/internal/infra"
	"coverstudio/internal/providers/image"
)

const defaultUpstreamTimeout = 120 * time.Second

// Validate applies the server-side request rules. It is called before any
// prompt is built or any upstream request is made.
func Validate(req domain.CoverRequest) error {
	return req.Validate()
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Generator image.Generator
	Logger    infra.Logger
	// Timeout bounds the single upstream call.
	Timeout time.Duration
	// RequestID extracts the request correlation ID from a context.
	RequestID func(context.Context) string
}

// Result is a generated cover plus the metadata the usage ledger records.
type Result struct {
	Image    domain.CoverImage
	Provider string
	Latency  time.Duration
	// Shared is true when the result came from a flight started by another
	// request carrying the same idempotency key.
	Shared bool
}

// Service turns cover requests into images with one upstream call each.
type Service struct {
	generator image.Generator
	logger    infra.Logger
	timeout   time.Duration
	requestID func(context.Context) string
	flights   singleflight.Group
}

func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("covergen: generator is required: %w", domain.ErrMissingConfig)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}
	requestID := opts.RequestID
	if requestID == nil {
		requestID = func(context.Context) string { return "" }
	}
	return &Service{
		generator: opts.Generator,
		logger:    opts.Logger,
		timeout:   timeout,
		requestID: requestID,
	}, nil
}

// Provider names the configured upstream.
func (s *Service) Provider() string {
	return s.generator.Name()
}

// Generate validates req, builds its prompt and performs one upstream call.
// Requests sharing a non-empty idempotencyKey and an identical prompt while a
// call is in flight wait for that call instead of starting another. Nothing is
// cached once the call returns.
func (s *Service) Generate(ctx context.Context, req domain.CoverRequest, idempotencyKey string) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	prompt := BuildPrompt(req)
	rid := s.requestID(ctx)

	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		return s.call(ctx, prompt, rid)
	}

	// singleflight marks every caller of a shared flight as shared, the one
	// that started it included. Only the caller whose closure ran is the owner.
	var owner bool
	ch := s.flights.DoChan(flightKey(key, prompt), func() (any, error) {
		owner = true
		// The flight outlives whichever caller started it.
		return s.call(context.WithoutCancel(ctx), prompt, rid)
	})
	select {
	case <-ctx.Done():
		return nil, &domain.UpstreamError{Provider: s.generator.Name(), Err: ctx.Err()}
	case res := <-ch:
		// owner was written before the result was sent on ch.
		if res.Err != nil {
			var uerr *domain.UpstreamError
			if !owner && errors.As(res.Err, &uerr) {
				joined := *uerr
				joined.Shared = true
				return nil, &joined
			}
			return nil, res.Err
		}
		out := *res.Val.(*Result)
		out.Shared = !owner
		return &out, nil
	}
}

func (s *Service) call(ctx context.Context, prompt, rid string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	provider := s.generator.Name()
	start := time.Now()
	asset, err := s.generator.Generate(ctx, image.GenerateRequest{Prompt: prompt, RequestID: rid})
	latency := time.Since(start)
	if err == nil && (asset == nil || len(asset.Data) == 0) {
		err = image.ErrEmptyResult
	}
	if err != nil {
		if errors.Is(err, image.ErrEmptyResult) {
			err = fmt.Errorf("%w: %w", domain.ErrEmptyImage, err)
		}
		s.logger.Error().
			Err(err).
			Str("request_id", rid).
			Str("provider", provider).
			Dur("latency", latency).
			Msg("cover generation failed")
		return nil, &domain.UpstreamError{Provider: provider, Err: err}
	}

	mime := asset.MIME
	if mime == "" {
		mime = image.FormatMIME("")
	}
	s.logger.Info().
		Str("request_id", rid).
		Str("provider", provider).
		Int("bytes", len(asset.Data)).
		Dur("latency", latency).
		Msg("cover generated")
	return &Result{
		Image:    domain.CoverImage{Data: asset.Data, MIME: mime},
		Provider: provider,
		Latency:  latency,
	}, nil
}

func flightKey(idempotencyKey, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return idempotencyKey + ":" + hex.EncodeToString(sum[:])
}
