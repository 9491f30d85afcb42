package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FeedbackResponder/internal/config"
	"FeedbackResponder/internal/domain"
)

var (
	// ErrNoCredential is returned by a generator with no API key configured.
	ErrNoCredential = errors.New("generation credential is not configured")
	// ErrEmptyCompletion is returned when the model produced no usable text.
	ErrEmptyCompletion = errors.New("generation returned no candidate output")
)

// StatusError is returned by platform clients for non-2xx responses.
type StatusError struct {
	Platform   string
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Platform, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Platform, e.Op, e.StatusCode, e.Body)
}

// ReviewScoped reports whether the rejection concerns only the submitted
// review. Auth failures, throttling and server errors affect the whole
// account.
func (e *StatusError) ReviewScoped() bool {
	switch e.StatusCode {
	case 401, 403, 429:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// ReviewSource checks one platform for reviews pending a reply and answers them.
type ReviewSource interface {
	Platform() domain.Platform
	CheckForNewReviews(ctx context.Context, settings config.Settings) error
}

// MarketplaceClient is the remote API of a single platform.
type MarketplaceClient interface {
	FetchPending(ctx context.Context, cred domain.Credential) ([]domain.Review, error)
	SubmitReply(ctx context.Context, cred domain.Credential, reviewID, text string) error
}

// ReplyGenerator produces reply text for a review.
type ReplyGenerator interface {
	Generate(ctx context.Context, gen config.OpenAISettings, req domain.ReplyRequest) (string, error)
}

// LedgerRepository persists processing records.
type LedgerRepository interface {
	Insert(ctx context.Context, rec domain.ProcessingRecord) error
	ExistsSuccessful(ctx context.Context, platform domain.Platform, reviewID string) (bool, error)
	Recent(ctx context.Context, limit int, platform domain.Platform) ([]domain.ProcessingRecord, error)
	CountSince(ctx context.Context, since time.Time) (map[domain.Platform]int, error)
	ProcessedSince(ctx context.Context, since time.Time) ([]domain.ProcessingRecord, error)
	Ping(ctx context.Context) error
}

// SettingsProvider resolves the current live settings on every call.
type SettingsProvider interface {
	Load() config.Settings
}

// RunState is the process-wide start/stop switch.
type RunState interface {
	Running() bool
	SetRunning(running bool)
}

// Sleeper pauses until the duration elapses or ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}
