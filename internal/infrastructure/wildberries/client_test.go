package wildberries

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
)

func TestFetchPending(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/feedbacks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "wb-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("isAnswered") != "false" || q.Get("take") != "100" || q.Get("skip") != "0" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":{"feedbacks":[
			{"id":"f1","text":"Отлично","pros":"цена","cons":"","productValuation":5,"userName":"Иван","productDetails":{"productName":"Чайник"}},
			{"id":"f2","text":"","productValuation":0}
		]},"error":false}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	reviews, err := c.FetchPending(context.Background(), domain.WildberriesCredential{Token: "wb-token"})
	if err != nil {
		t.Fatalf("FetchPending returned error: %v", err)
	}

	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	first := reviews[0]
	if first.ID != "f1" || first.Rating != 5 || first.Author != "Иван" || first.Pros != "цена" || first.Product != "Чайник" {
		t.Fatalf("unexpected first review: %+v", first)
	}
	if reviews[1].Rating != 0 {
		t.Fatalf("second review must be unrated")
	}
}

func TestFetchPendingStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	_, err := c.FetchPending(context.Background(), domain.WildberriesCredential{Token: "t"})

	var statusErr *ports.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
}

func TestFetchPendingAPIErrorFlag(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"error":true,"errorText":"bad token"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	if _, err := c.FetchPending(context.Background(), domain.WildberriesCredential{Token: "t"}); err == nil {
		t.Fatalf("expected error when API reports error flag")
	}
}

func TestSubmitReply(t *testing.T) {
	t.Parallel()

	var got answerRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/feedbacks/answer" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "wb-token" {
			t.Errorf("missing token header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	if err := c.SubmitReply(context.Background(), domain.WildberriesCredential{Token: "wb-token"}, "f1", "Спасибо!"); err != nil {
		t.Fatalf("SubmitReply returned error: %v", err)
	}
	if got.ID != "f1" || got.Text != "Спасибо!" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestRejectsForeignCredential(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1", nil)
	if _, err := c.FetchPending(context.Background(), domain.OzonCredential{ClientID: "1", APIKey: "k"}); err == nil {
		t.Fatalf("expected credential type error")
	}
}
