package handlers

import (
	"net/http"
	"strings"
	"time"
)

const (
	defaultStatsWindow = 24 * time.Hour
	maxStatsWindow     = 30 * 24 * time.Hour
)

type statsResponse struct {
	WindowSeconds int64         `json:"windowSeconds"`
	Requests      int64         `json:"requests"`
	Succeeded     int64         `json:"succeeded"`
	Failed        int64         `json:"failed"`
	AvgLatencyMS  int64         `json:"avgLatencyMs"`
	TopOccasions  []topOccasion `json:"topOccasions"`
}

type topOccasion struct {
	Occasion string `json:"occasion"`
	Count    int64  `json:"count"`
}

// StatsSummary handles GET /api/stats?window=24h.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	if a.Usage == nil {
		a.error(w, http.StatusServiceUnavailable, "Usage statistics are not enabled")
		return
	}
	window := defaultStatsWindow
	if raw := strings.TrimSpace(r.URL.Query().Get("window")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 || d > maxStatsWindow {
			a.error(w, http.StatusBadRequest, "window must be a positive duration up to 720h")
			return
		}
		window = d
	}

	summary, err := a.Usage.Summary(r.Context(), window)
	if err != nil {
		a.Logger.Error().Err(err).Msg("usage summary failed")
		a.error(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	resp := statsResponse{
		WindowSeconds: int64(summary.Window / time.Second),
		Requests:      summary.Requests,
		Succeeded:     summary.Succeeded,
		Failed:        summary.Failed,
		AvgLatencyMS:  summary.AvgLatencyMS,
		TopOccasions:  make([]topOccasion, 0, len(summary.TopOccasions)),
	}
	for _, oc := range summary.TopOccasions {
		resp.TopOccasions = append(resp.TopOccasions, topOccasion{Occasion: oc.Occasion, Count: oc.Count})
	}
	a.json(w, http.StatusOK, resp)
}
