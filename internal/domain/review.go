package domain

import "time"

// Platform names a review-hosting marketplace.
type Platform string

const (
	PlatformWildberries Platform = "Wildberries"
	PlatformOzon        Platform = "Ozon"
)

// Key is the lower-case identifier used in settings and URLs.
func (p Platform) Key() string {
	switch p {
	case PlatformWildberries:
		return "wildberries"
	case PlatformOzon:
		return "ozon"
	default:
		return string(p)
	}
}

// ParsePlatform resolves a settings key (or display name) to a Platform.
func ParsePlatform(value string) (Platform, bool) {
	switch value {
	case "wildberries", "wb", string(PlatformWildberries):
		return PlatformWildberries, true
	case "ozon", string(PlatformOzon):
		return PlatformOzon, true
	default:
		return "", false
	}
}

// Platforms lists every supported marketplace in display order.
func Platforms() []Platform {
	return []Platform{PlatformWildberries, PlatformOzon}
}

// Review is a customer review awaiting a reply. It lives for a single
// fetch-reply cycle only.
type Review struct {
	ID      string
	Text    string
	Pros    string
	Cons    string
	Rating  int // 0 means unrated on Wildberries
	Author  string
	Product string
}

// ProcessingRecord is one append-only ledger entry.
type ProcessingRecord struct {
	ID          int64     `json:"id"`
	Platform    Platform  `json:"marketplace"`
	ShopID      string    `json:"shopId"`
	ReviewID    string    `json:"reviewId"`
	ReviewText  string    `json:"reviewText"`
	Rating      int       `json:"rating"`
	Reply       string    `json:"generatedResponse"`
	ProcessedAt time.Time `json:"processedAt"`
	Success     bool      `json:"isAutoReplied"`
}

// ReplyRequest carries everything the generator needs for one review.
type ReplyRequest struct {
	ReviewText   string
	AuthorName   string
	Product      string
	Platform     Platform
	SystemPrompt string
	Signature    string
}

// PlatformCount is the number of successful replies for a platform.
type PlatformCount struct {
	Platform Platform `json:"marketplace"`
	Count    int      `json:"count"`
}

// DailyCount holds per-platform reply counts for a single day.
type DailyCount struct {
	Date        string `json:"date"`
	Wildberries int    `json:"wildberries"`
	Ozon        int    `json:"ozon"`
}
