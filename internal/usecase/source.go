package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"FeedbackResponder/internal/config"
	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
	"FeedbackResponder/internal/reviewtext"
)

// EmptyReviewPlaceholder is recorded as the review text of fallback rows.
const EmptyReviewPlaceholder = "Пустой отзыв"

// SourceDeps wires the collaborators of a review source.
type SourceDeps struct {
	Client    ports.MarketplaceClient
	Generator ports.ReplyGenerator
	Ledger    *Ledger
	Logger    *slog.Logger
}

// ReviewSource answers pending reviews for every account of one platform.
// The two variants differ in their dedup policy, text assembly and in
// whether a zero rating means "no rating".
type ReviewSource struct {
	platform      domain.Platform
	ledgerDedup   bool
	zeroIsUnrated bool
	assemble      func(domain.Review) string

	client    ports.MarketplaceClient
	generator ports.ReplyGenerator
	ledger    *Ledger
	logger    *slog.Logger
}

var _ ports.ReviewSource = (*ReviewSource)(nil)

// NewWildberriesSource trusts the remote isAnswered=false filter and
// folds pros/cons into the review text. A zero valuation is an unrated
// review and bypasses the rating threshold.
func NewWildberriesSource(deps SourceDeps) *ReviewSource {
	s := newReviewSource(domain.PlatformWildberries, false, reviewtext.Assemble, deps)
	s.zeroIsUnrated = true
	return s
}

// NewOzonSource also consults the ledger, since the remote NOT_REPLIED
// filter is known to resurface answered reviews. Ozon reviews always carry
// a rating, so 0 is compared against the threshold like any other value.
func NewOzonSource(deps SourceDeps) *ReviewSource {
	bodyOnly := func(r domain.Review) string { return reviewtext.Clean(r.Text) }
	return newReviewSource(domain.PlatformOzon, true, bodyOnly, deps)
}

func newReviewSource(p domain.Platform, ledgerDedup bool, assemble func(domain.Review) string, deps SourceDeps) *ReviewSource {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewSource{
		platform:    p,
		ledgerDedup: ledgerDedup,
		assemble:    assemble,
		client:      deps.Client,
		generator:   deps.Generator,
		ledger:      deps.Ledger,
		logger:      logger.With("platform", string(p)),
	}
}

// Platform identifies the variant.
func (s *ReviewSource) Platform() domain.Platform {
	return s.platform
}

// CheckForNewReviews walks the configured accounts in order. Failures are
// contained per account; only cancellation is returned.
func (s *ReviewSource) CheckForNewReviews(ctx context.Context, settings config.Settings) error {
	creds := settings.Accounts.Credentials(s.platform)
	if len(creds) == 0 {
		s.logger.Warn("no accounts configured, skipping")
		return nil
	}

	for _, cred := range creds {
		if cred.Blank() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.logger.Info("checking account", "shop_id", cred.ShopID())
		if err := s.processAccount(ctx, settings, cred); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("account processing aborted", "shop_id", cred.ShopID(), "error", err)
		}
	}
	return nil
}

func (s *ReviewSource) processAccount(ctx context.Context, settings config.Settings, cred domain.Credential) error {
	reviews, err := s.client.FetchPending(ctx, cred)
	if err != nil {
		return fmt.Errorf("fetch pending reviews: %w", err)
	}
	if len(reviews) == 0 {
		s.logger.Info("no pending reviews", "shop_id", cred.ShopID())
		return nil
	}
	s.logger.Info("pending reviews fetched", "shop_id", cred.ShopID(), "count", len(reviews))

	for _, review := range reviews {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processReview(ctx, settings, cred, review); err != nil {
			return err
		}
	}
	return nil
}

// processReview returns an error only when the rest of the account should
// be abandoned.
func (s *ReviewSource) processReview(ctx context.Context, settings config.Settings, cred domain.Credential, review domain.Review) error {
	log := s.logger.With("shop_id", cred.ShopID(), "review_id", review.ID)
	worker := settings.Worker

	unrated := s.zeroIsUnrated && review.Rating == 0
	if !unrated && review.Rating < worker.MinRating {
		log.Info("rating below threshold, left for manual handling", "rating", review.Rating, "min_rating", worker.MinRating)
		return nil
	}

	if s.ledgerDedup && s.ledger.WasSuccessfullyReplied(ctx, s.platform, review.ID) {
		log.Debug("already answered according to ledger")
		return nil
	}

	text := s.assemble(review)

	var reply string
	recorded := text
	if text == "" {
		log.Warn("review has no text, sending fallback reply")
		reply = worker.FallbackReply
		recorded = EmptyReviewPlaceholder
	} else {
		generated, err := s.generator.Generate(ctx, settings.OpenAI, domain.ReplyRequest{
			ReviewText:   text,
			AuthorName:   review.Author,
			Product:      review.Product,
			Platform:     s.platform,
			SystemPrompt: worker.SystemPrompt,
			Signature:    worker.Signature,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("reply generation failed, review left pending", "error", err)
			return nil
		}
		reply = strings.TrimSpace(generated)
	}

	if reply == "" {
		log.Warn("empty reply, review left pending")
		return nil
	}
	log.Debug("reply ready", "review_text", reviewtext.OneLine(text), "reply", reviewtext.OneLine(reply))

	if err := s.client.SubmitReply(ctx, cred, review.ID, reply); err != nil {
		var statusErr *ports.StatusError
		if errors.As(err, &statusErr) && statusErr.ReviewScoped() {
			log.Error("reply rejected by platform", "status", statusErr.StatusCode, "error", err)
			return nil
		}
		return fmt.Errorf("submit reply %s: %w", review.ID, err)
	}

	log.Info("reply submitted", "rating", review.Rating)
	s.ledger.Append(ctx, domain.ProcessingRecord{
		Platform:   s.platform,
		ShopID:     cred.ShopID(),
		ReviewID:   review.ID,
		ReviewText: recorded,
		Rating:     review.Rating,
		Reply:      reply,
		Success:    true,
	})
	return nil
}
