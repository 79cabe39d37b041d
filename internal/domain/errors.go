package domain

import "errors"

var (
	ErrInvalidCover    = errors.New("invalid cover request")
	ErrProviderFailure = errors.New("provider failure")
	ErrEmptyImage      = errors.New("provider returned no image data")
	ErrMissingConfig   = errors.New("missing configuration")
)

// ValidationError reports a malformed cover request. Message is safe to show
// to end users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidCover
}

// UpstreamError wraps a failure of the external image provider. Its cause is
// meant for server logs only; clients get GenericUpstreamMessage.
type UpstreamError struct {
	Provider string
	Err      error
	// Shared is set when the failed call was started by another request
	// with the same idempotency key.
	Shared bool
}

// GenericUpstreamMessage is the only upstream detail a client ever sees.
const GenericUpstreamMessage = "Image generation failed"

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Provider + ": " + ErrProviderFailure.Error()
	}
	return e.Provider + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrProviderFailure
}
