// Package reviewtext turns raw review fields into the text sent to the
// reply generator.
package reviewtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FeedbackResponder/internal/domain"
)

const (
	prosLabel = "Достоинства: "
	consLabel = "Недостатки: "
)

// Assemble joins the body with labeled pros and cons, one part per line.
// Empty parts are dropped, so a review with no text yields "".
func Assemble(r domain.Review) string {
	parts := make([]string, 0, 3)
	if text := Clean(r.Text); text != "" {
		parts = append(parts, text)
	}
	if pros := Clean(r.Pros); pros != "" {
		parts = append(parts, prosLabel+pros)
	}
	if cons := Clean(r.Cons); cons != "" {
		parts = append(parts, consLabel+cons)
	}
	return strings.Join(parts, "\n")
}

// Clean strips markup (marketplaces occasionally pass through <br> and
// entities) and trims surrounding whitespace.
func Clean(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.ContainsAny(raw, "<&") {
		return raw
	}

	raw = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(raw)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.TrimSpace(doc.Text())
}

// OneLine flattens multi-line text for log output.
func OneLine(text string) string {
	return strings.ReplaceAll(text, "\n", " | ")
}
