package usecase

import (
	"context"
	"testing"
	"time"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/logging"
)

func TestLedgerAppendStampsTime(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	ledger := NewLedger(repo, logging.Discard())
	fixed := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return fixed }

	ledger.Append(context.Background(), domain.ProcessingRecord{Platform: domain.PlatformOzon, ReviewID: "r-1", Success: true})

	records := repo.all()
	if len(records) != 1 || !records[0].ProcessedAt.Equal(fixed) {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLedgerAppendSurvivesCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeRepo{}
	NewLedger(repo, logging.Discard()).Append(ctx, domain.ProcessingRecord{Platform: domain.PlatformOzon, ReviewID: "r-1"})

	if len(repo.all()) != 1 {
		t.Fatalf("append must not depend on caller cancellation")
	}
}

func TestLedgerErrorsAreSwallowed(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{insertErr: errBoom, lookupErr: errBoom}
	ledger := NewLedger(repo, logging.Discard())

	ledger.Append(context.Background(), domain.ProcessingRecord{Platform: domain.PlatformOzon, ReviewID: "r-1"})
	if ledger.WasSuccessfullyReplied(context.Background(), domain.PlatformOzon, "r-1") {
		t.Fatalf("a failed lookup reads as not replied")
	}
}

func TestLedgerOnlyCountsSuccess(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{records: []domain.ProcessingRecord{
		{Platform: domain.PlatformOzon, ReviewID: "failed", Success: false},
		{Platform: domain.PlatformOzon, ReviewID: "ok", Success: true},
	}}
	ledger := NewLedger(repo, logging.Discard())

	if ledger.WasSuccessfullyReplied(context.Background(), domain.PlatformOzon, "failed") {
		t.Fatalf("unsuccessful record must not count")
	}
	if !ledger.WasSuccessfullyReplied(context.Background(), domain.PlatformOzon, "ok") {
		t.Fatalf("successful record must count")
	}
	if ledger.WasSuccessfullyReplied(context.Background(), domain.PlatformWildberries, "ok") {
		t.Fatalf("lookup is scoped by platform")
	}
}
