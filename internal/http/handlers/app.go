package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"coverstudio/internal/covergen"
	"coverstudio/internal/domain"
	"coverstudio/internal/infra"
	"coverstudio/internal/infra/geoip"
)

// CoverGenerator is the slice of covergen.Service the handlers use.
type CoverGenerator interface {
	Generate(ctx context.Context, req domain.CoverRequest, idempotencyKey string) (*covergen.Result, error)
	Provider() string
}

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	Config *infra.Config
	Logger zerolog.Logger
	Covers CoverGenerator
	// Usage is nil when no DATABASE_URL is configured.
	Usage domain.UsageRepository
	// Geo is nil when no GeoIP database is configured.
	Geo geoip.CountryResolver

	now func() time.Time
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, covers CoverGenerator) *App {
	return &App{Config: cfg, Logger: logger, Covers: covers, now: time.Now}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, domain.ErrorResponse{Error: message})
}

func (a *App) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}
