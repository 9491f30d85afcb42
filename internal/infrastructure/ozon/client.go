package ozon

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/infrastructure/marketplace"
	"FeedbackResponder/internal/ports"
)

// DefaultBaseURL is the production Seller API.
const DefaultBaseURL = "https://api-seller.ozon.ru"

const statusNotReplied = "NOT_REPLIED"

// Client talks to the Ozon Seller reviews API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.MarketplaceClient = (*Client)(nil)

// NewClient builds a client; an empty baseURL means production.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    marketplace.NewHTTPClient(httpClient),
	}
}

type reviewListRequest struct {
	Filter  reviewFilter `json:"filter"`
	Limit   int          `json:"limit"`
	SortDir string       `json:"sort_dir"`
}

type reviewFilter struct {
	InteractionStatus string `json:"interaction_status"`
}

type reviewListResponse struct {
	Reviews []review `json:"reviews"`
	HasNext bool     `json:"has_next"`
}

type review struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Rating  int    `json:"rating"`
	Product struct {
		Title string `json:"title"`
	} `json:"product"`
}

type commentRequest struct {
	ReviewID string `json:"review_id"`
	Text     string `json:"text"`
}

// FetchPending requests one page of reviews not yet replied to, newest first.
func (c *Client) FetchPending(ctx context.Context, cred domain.Credential) ([]domain.Review, error) {
	headers, err := headersOf(cred)
	if err != nil {
		return nil, err
	}

	var resp reviewListResponse
	err = marketplace.Do(ctx, c.http, marketplace.Request{
		Platform: string(domain.PlatformOzon),
		Op:       "list reviews",
		Method:   http.MethodPost,
		URL:      c.baseURL + "/v1/review/list",
		Headers:  headers,
		Body: reviewListRequest{
			Filter:  reviewFilter{InteractionStatus: statusNotReplied},
			Limit:   marketplace.PageSize,
			SortDir: "DESC",
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(resp.Reviews))
	for _, r := range resp.Reviews {
		reviews = append(reviews, domain.Review{
			ID:      r.ID,
			Text:    r.Text,
			Rating:  r.Rating,
			Product: r.Product.Title,
		})
	}
	return reviews, nil
}

// SubmitReply creates a seller comment on the review.
func (c *Client) SubmitReply(ctx context.Context, cred domain.Credential, reviewID, text string) error {
	headers, err := headersOf(cred)
	if err != nil {
		return err
	}

	return marketplace.Do(ctx, c.http, marketplace.Request{
		Platform: string(domain.PlatformOzon),
		Op:       "create comment",
		Method:   http.MethodPost,
		URL:      c.baseURL + "/v1/review/comment/create",
		Headers:  headers,
		Body:     commentRequest{ReviewID: reviewID, Text: text},
	}, nil)
}

// headersOf builds fresh per-account headers for every call.
func headersOf(cred domain.Credential) (map[string]string, error) {
	oz, ok := cred.(domain.OzonCredential)
	if !ok {
		return nil, fmt.Errorf("ozon: unexpected credential type %T", cred)
	}
	return map[string]string{
		"Client-Id": oz.ClientID,
		"Api-Key":   oz.APIKey,
	}, nil
}
