package usecase

import (
	"context"
	"fmt"
	"time"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
	analyticsDays   = 7
)

// Dashboard serves read-only views of the ledger.
type Dashboard struct {
	repo ports.LedgerRepository
	now  func() time.Time
}

// NewDashboard builds the read model.
func NewDashboard(repo ports.LedgerRepository) *Dashboard {
	return &Dashboard{repo: repo, now: time.Now}
}

// Stats returns today's (UTC) record count for every platform, including
// platforms with no records.
func (d *Dashboard) Stats(ctx context.Context) ([]domain.PlatformCount, error) {
	counts, err := d.repo.CountSince(ctx, startOfDay(d.now()))
	if err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}

	stats := make([]domain.PlatformCount, 0, len(domain.Platforms()))
	for _, p := range domain.Platforms() {
		stats = append(stats, domain.PlatformCount{Platform: p, Count: counts[p]})
	}
	return stats, nil
}

// Logs returns the latest records, optionally for one platform.
func (d *Dashboard) Logs(ctx context.Context, limit int, platform domain.Platform) ([]domain.ProcessingRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultLogLimit
	case limit > MaxLogLimit:
		limit = MaxLogLimit
	}

	records, err := d.repo.Recent(ctx, limit, platform)
	if err != nil {
		return nil, fmt.Errorf("recent records: %w", err)
	}
	if records == nil {
		records = []domain.ProcessingRecord{}
	}
	return records, nil
}

// Analytics returns per-day counts for the last seven days, oldest first.
func (d *Dashboard) Analytics(ctx context.Context) ([]domain.DailyCount, error) {
	today := startOfDay(d.now())
	from := today.AddDate(0, 0, -(analyticsDays - 1))

	records, err := d.repo.ProcessedSince(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("records since %s: %w", from.Format(time.DateOnly), err)
	}

	days := make([]domain.DailyCount, analyticsDays)
	for i := range days {
		days[i].Date = from.AddDate(0, 0, i).Format("02.01")
	}

	for _, rec := range records {
		idx := int(startOfDay(rec.ProcessedAt).Sub(from) / (24 * time.Hour))
		if idx < 0 || idx >= analyticsDays {
			continue
		}
		switch rec.Platform {
		case domain.PlatformWildberries:
			days[idx].Wildberries++
		case domain.PlatformOzon:
			days[idx].Ozon++
		}
	}
	return days, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
