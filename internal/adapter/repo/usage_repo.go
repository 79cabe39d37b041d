package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coverstudio/internal/domain"
	"coverstudio/internal/infra"
	"coverstudio/internal/sqlinline"
)

const topOccasionLimit = 5

// UsageRepositoryPG implements domain.UsageRepository on PostgreSQL.
type UsageRepositoryPG struct {
	db  infra.SQLExecutor
	now func() time.Time
}

// NewUsageRepository constructs the repository over a marker-checking executor.
func NewUsageRepository(db infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{db: db, now: time.Now}
}

// EnsureSchema creates the ledger table when missing.
func (r *UsageRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, sqlinline.QEnsureUsageSchema); err != nil {
		return fmt.Errorf("usage: ensure schema: %w", err)
	}
	return nil
}

// Record inserts one usage event.
func (r *UsageRepositoryPG) Record(ctx context.Context, event domain.UsageEvent) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	_, err := r.db.Exec(ctx, sqlinline.QInsertUsageEvent,
		event.RequestID,
		strings.TrimSpace(event.Occasion),
		event.Provider,
		event.Success,
		event.ErrorKind,
		event.LatencyMS,
		event.Country,
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("usage: record: %w", err)
	}
	return nil
}

// Summary aggregates events newer than window.
func (r *UsageRepositoryPG) Summary(ctx context.Context, window time.Duration) (*domain.UsageSummary, error) {
	if window <= 0 {
		return nil, fmt.Errorf("usage: window must be positive")
	}
	secs := window.Seconds()

	summary := &domain.UsageSummary{Window: window}
	if err := r.db.QueryRow(ctx, sqlinline.QUsageTotals, secs).Scan(
		&summary.Requests,
		&summary.Succeeded,
		&summary.Failed,
		&summary.AvgLatencyMS,
	); err != nil {
		return nil, fmt.Errorf("usage: totals: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlinline.QUsageTopOccasions, secs, topOccasionLimit)
	if err != nil {
		return nil, fmt.Errorf("usage: top occasions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var oc domain.OccasionCount
		if err := rows.Scan(&oc.Occasion, &oc.Count); err != nil {
			return nil, fmt.Errorf("usage: scan occasion: %w", err)
		}
		summary.TopOccasions = append(summary.TopOccasions, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usage: iterate occasions: %w", err)
	}
	return summary, nil
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)
