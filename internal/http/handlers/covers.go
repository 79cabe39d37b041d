package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"coverstudio/internal/covergen"
	"coverstudio/internal/domain"
	"coverstudio/internal/middleware"
)

const (
	// IdempotencyKeyHeader lets a client collapse concurrent duplicate submissions.
	IdempotencyKeyHeader = "Idempotency-Key"

	usageRecordTimeout = 2 * time.Second
)

// GenerateCover handles POST /api/generate-cover.
func (a *App) GenerateCover(w http.ResponseWriter, r *http.Request) {
	limit := int64(1 << 20)
	if a.Config != nil && a.Config.MaxBodyBytes > 0 {
		limit = a.Config.MaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req domain.CoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		a.error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	start := a.clock()
	res, err := a.Covers.Generate(r.Context(), req, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			a.error(w, http.StatusBadRequest, verr.Message)
			return
		}
		a.recordUsage(r, req, nil, err, a.clock().Sub(start))
		a.error(w, http.StatusInternalServerError, domain.GenericUpstreamMessage)
		return
	}
	a.recordUsage(r, req, res, nil, res.Latency)

	a.json(w, http.StatusOK, domain.CoverResponse{
		B64:  base64.StdEncoding.EncodeToString(res.Image.Data),
		MIME: res.Image.MIME,
	})
}

// recordUsage stores request metadata when the ledger is enabled. Ledger
// failures never affect the response.
func (a *App) recordUsage(r *http.Request, req domain.CoverRequest, res *covergen.Result, genErr error, latency time.Duration) {
	if a.Usage == nil {
		return
	}
	// Joiners of a shared flight leave the event to the request that owned it.
	if res != nil && res.Shared {
		return
	}
	var uerr *domain.UpstreamError
	if errors.As(genErr, &uerr) && uerr.Shared {
		return
	}
	event := domain.UsageEvent{
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Occasion:  req.Occasion,
		Provider:  a.Covers.Provider(),
		Success:   genErr == nil,
		ErrorKind: errorKind(genErr),
		LatencyMS: latency.Milliseconds(),
		CreatedAt: a.clock(),
	}
	if a.Geo != nil {
		if country, err := a.Geo.CountryCode(r.RemoteAddr); err == nil {
			event.Country = country
		}
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), usageRecordTimeout)
	defer cancel()
	if err := a.Usage.Record(ctx, event); err != nil {
		a.Logger.Warn().Err(err).Str("request_id", event.RequestID).Msg("usage record failed")
	}
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrEmptyImage):
		return "empty_image"
	default:
		return "upstream"
	}
}
