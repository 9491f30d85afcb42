package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"FeedbackResponder/internal/config"
	"FeedbackResponder/internal/domain"
)

type submitCall struct {
	shopID   string
	reviewID string
	text     string
}

type fakeClient struct {
	mu        sync.Mutex
	pending   map[string][]domain.Review // by shop id
	fetchErr  error
	submitErr map[string]error // by review id
	submits   []submitCall
	onSubmit  func()
}

func (f *fakeClient) FetchPending(_ context.Context, cred domain.Credential) ([]domain.Review, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.pending[cred.ShopID()], nil
}

func (f *fakeClient) SubmitReply(_ context.Context, cred domain.Credential, reviewID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.submitErr[reviewID]; err != nil {
		return err
	}
	f.submits = append(f.submits, submitCall{shopID: cred.ShopID(), reviewID: reviewID, text: text})
	if f.onSubmit != nil {
		f.onSubmit()
	}
	return nil
}

func (f *fakeClient) submitted() []submitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submitCall(nil), f.submits...)
}

type fakeGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []domain.ReplyRequest
}

func (g *fakeGenerator) Generate(_ context.Context, _ config.OpenAISettings, req domain.ReplyRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type fakeRepo struct {
	mu        sync.Mutex
	records   []domain.ProcessingRecord
	insertErr error
	lookupErr error
	queryErr  error
}

func (r *fakeRepo) Insert(_ context.Context, rec domain.ProcessingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRepo) ExistsSuccessful(_ context.Context, platform domain.Platform, reviewID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return false, r.lookupErr
	}
	for _, rec := range r.records {
		if rec.Platform == platform && rec.ReviewID == reviewID && rec.Success {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Recent(_ context.Context, limit int, platform domain.Platform) ([]domain.ProcessingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	var out []domain.ProcessingRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if platform != "" && r.records[i].Platform != platform {
			continue
		}
		out = append(out, r.records[i])
	}
	return out, nil
}

func (r *fakeRepo) CountSince(_ context.Context, since time.Time) (map[domain.Platform]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	counts := map[domain.Platform]int{}
	for _, rec := range r.records {
		if !rec.ProcessedAt.Before(since) {
			counts[rec.Platform]++
		}
	}
	return counts, nil
}

func (r *fakeRepo) ProcessedSince(_ context.Context, since time.Time) ([]domain.ProcessingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	var out []domain.ProcessingRecord
	for _, rec := range r.records {
		if !rec.ProcessedAt.Before(since) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.Before(out[j].ProcessedAt) })
	return out, nil
}

func (r *fakeRepo) Ping(context.Context) error { return nil }

func (r *fakeRepo) all() []domain.ProcessingRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ProcessingRecord(nil), r.records...)
}

type staticSettings struct {
	mu       sync.Mutex
	settings config.Settings
	loads    int
}

func (s *staticSettings) Load() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.settings
}

type fakeState struct {
	mu      sync.Mutex
	running bool
}

func (s *fakeState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *fakeState) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

// recordingSleeper records requested pauses and runs hook before returning.
type recordingSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
	hook  func(n int)
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls = append(s.calls, d)
	n := len(s.calls)
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (s *recordingSleeper) durations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.calls...)
}

var errBoom = errors.New("boom")

func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.Accounts = config.AccountsSettings{
		Wildberries: []config.WildberriesAccount{{Name: "main", Token: "wb-token"}},
		Ozon:        []config.OzonAccount{{ClientID: "42", APIKey: "oz-key"}},
	}
	s.OpenAI.APIKey = "sk-test"
	return s
}
