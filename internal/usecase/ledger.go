package usecase

import (
	"context"
	"log/slog"
	"time"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
)

const appendTimeout = 5 * time.Second

// Ledger is the best-effort view of the processing ledger used by the
// reply pipeline: storage errors are logged, never returned.
type Ledger struct {
	repo   ports.LedgerRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewLedger wraps a repository.
func NewLedger(repo ports.LedgerRepository, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{repo: repo, logger: logger, now: time.Now}
}

// Append records an outcome. The write is detached from ctx cancellation
// so a reply already accepted by the platform still lands in the ledger
// during shutdown.
func (l *Ledger) Append(ctx context.Context, rec domain.ProcessingRecord) {
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = l.now().UTC()
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
	defer cancel()

	if err := l.repo.Insert(writeCtx, rec); err != nil {
		l.logger.Error("ledger append failed",
			"platform", rec.Platform,
			"shop_id", rec.ShopID,
			"review_id", rec.ReviewID,
			"error", err)
	}
}

// WasSuccessfullyReplied reports whether the review has a success record.
// A lookup failure is logged and reported as false.
func (l *Ledger) WasSuccessfullyReplied(ctx context.Context, platform domain.Platform, reviewID string) bool {
	ok, err := l.repo.ExistsSuccessful(ctx, platform, reviewID)
	if err != nil {
		l.logger.Error("ledger lookup failed", "platform", platform, "review_id", reviewID, "error", err)
		return false
	}
	return ok
}
