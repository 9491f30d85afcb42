package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"FeedbackResponder/internal/config"
	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
)

const (
	requestTimeout = 30 * time.Second

	platformClause = " Ты работаешь на маркетплейсе %s. Никогда не упоминай названия других маркетплейсов."
	nameClause     = " Обратись к клиенту по имени: %s."
	productClause  = " Отзыв оставлен на товар: %s."
)

// Generator implements ports.ReplyGenerator over an OpenAI-compatible
// chat completions API. Clients are cached per key and base URL so
// settings edits take effect on the next call.
type Generator struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[clientKey]*openai.Client
}

type clientKey struct {
	apiKey  string
	baseURL string
}

var _ ports.ReplyGenerator = (*Generator)(nil)

// NewGenerator builds a generator.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger, clients: map[clientKey]*openai.Client{}}
}

// Generate asks the model for a reply and appends the signature.
func (g *Generator) Generate(ctx context.Context, gen config.OpenAISettings, req domain.ReplyRequest) (string, error) {
	if strings.TrimSpace(gen.APIKey) == "" {
		return "", ports.ErrNoCredential
	}

	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	g.logger.Debug("requesting completion", "platform", req.Platform, "model", gen.Model)

	resp, err := g.client(gen).CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: gen.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.ReviewText},
		},
		MaxTokens: gen.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ports.ErrEmptyCompletion
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ports.ErrEmptyCompletion
	}

	return WithSignature(reply, req.Signature), nil
}

func (g *Generator) client(gen config.OpenAISettings) *openai.Client {
	key := clientKey{apiKey: gen.APIKey, baseURL: gen.BaseURL}

	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[key]; ok {
		return c
	}

	cfg := openai.DefaultConfig(gen.APIKey)
	if gen.BaseURL != "" {
		cfg.BaseURL = gen.BaseURL
	}
	c := openai.NewClientWithConfig(cfg)
	g.clients[key] = c
	return c
}

// SystemInstruction combines the configured prompt with the mandatory
// platform clause and, when known, the customer's name.
func SystemInstruction(req domain.ReplyRequest) string {
	var b strings.Builder
	b.WriteString(req.SystemPrompt)
	fmt.Fprintf(&b, platformClause, req.Platform)
	if name := strings.TrimSpace(req.AuthorName); name != "" {
		fmt.Fprintf(&b, nameClause, name)
	}
	if product := strings.TrimSpace(req.Product); product != "" {
		fmt.Fprintf(&b, productClause, product)
	}
	return b.String()
}

// WithSignature appends the signature as a trailing block.
func WithSignature(reply, signature string) string {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return reply
	}
	return reply + "\n\n" + signature
}
