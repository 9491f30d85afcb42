package wildberries

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/infrastructure/marketplace"
	"FeedbackResponder/internal/ports"
)

// DefaultBaseURL is the production feedbacks API.
const DefaultBaseURL = "https://feedbacks-api.wildberries.ru"

// Client talks to the Wildberries feedbacks API.
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

type feedbackListResponse struct {
	Data struct {
		Feedbacks []feedback `json:"feedbacks"`
	} `json:"data"`
	Error     bool   `json:"error"`
	ErrorText string `json:"errorText"`
}

type feedback struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	Pros             string `json:"pros"`
	Cons             string `json:"cons"`
	ProductValuation int    `json:"productValuation"`
	UserName         string `json:"userName"`
	ProductDetails   struct {
		ProductName string `json:"productName"`
	} `json:"productDetails"`
}

type answerRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FetchPending returns up to one page of unanswered feedbacks, newest first.
func (c *Client) FetchPending(ctx context.Context, cred domain.Credential) ([]domain.Review, error) {
	token, err := tokenOf(cred)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("isAnswered", "false")
	query.Set("take", strconv.Itoa(marketplace.PageSize))
	query.Set("skip", "0")
	query.Set("order", "dateDesc")

	var resp feedbackListResponse
	err = marketplace.Do(ctx, c.http, marketplace.Request{
		Platform: string(domain.PlatformWildberries),
		Op:       "list feedbacks",
		Method:   http.MethodGet,
		URL:      c.baseURL + "/api/v1/feedbacks?" + query.Encode(),
		Headers:  map[string]string{"Authorization": token},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("wildberries list feedbacks: %s", resp.ErrorText)
	}

	reviews := make([]domain.Review, 0, len(resp.Data.Feedbacks))
	for _, fb := range resp.Data.Feedbacks {
		reviews = append(reviews, domain.Review{
			ID:      fb.ID,
			Text:    fb.Text,
			Pros:    fb.Pros,
			Cons:    fb.Cons,
			Rating:  fb.ProductValuation,
			Author:  fb.UserName,
			Product: fb.ProductDetails.ProductName,
		})
	}
	return reviews, nil
}

// SubmitReply posts an answer to a feedback.
func (c *Client) SubmitReply(ctx context.Context, cred domain.Credential, reviewID, text string) error {
	token, err := tokenOf(cred)
	if err != nil {
		return err
	}

	return marketplace.Do(ctx, c.http, marketplace.Request{
		Platform: string(domain.PlatformWildberries),
		Op:       "answer feedback",
		Method:   http.MethodPost,
		URL:      c.baseURL + "/api/v1/feedbacks/answer",
		Headers:  map[string]string{"Authorization": token},
		Body:     answerRequest{ID: reviewID, Text: text},
	}, nil)
}

func tokenOf(cred domain.Credential) (string, error) {
	wb, ok := cred.(domain.WildberriesCredential)
	if !ok {
		return "", fmt.Errorf("wildberries: unexpected credential type %T", cred)
	}
	return wb.Token, nil
}
