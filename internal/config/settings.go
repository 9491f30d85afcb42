package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"FeedbackResponder/internal/domain"
)

const (
	openAIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv = "OPENAI_MODEL"

	defaultCheckInterval = 60
	defaultMinRating     = 4
	defaultModel         = "gpt-3.5-turbo"
	defaultMaxTokens     = 250
	defaultFallbackReply = "Благодарим за высокую оценку!"
	defaultSystemPrompt  = "Ты — вежливый менеджер поддержки. Твоя задача — поблагодарить клиента за отзыв и пригласить за новыми покупками."
)

// Settings is the live, operator-editable configuration. It is re-read at
// the start of every sweep.
type Settings struct {
	Accounts AccountsSettings `yaml:"accounts"`
	OpenAI   OpenAISettings   `yaml:"openai"`
	Worker   WorkerSettings   `yaml:"worker"`
}

// AccountsSettings lists seller accounts per platform, in processing order.
type AccountsSettings struct {
	Wildberries []WildberriesAccount `yaml:"wildberries"`
	Ozon        []OzonAccount        `yaml:"ozon"`
}

// WildberriesAccount is a Wildberries seller token.
type WildberriesAccount struct {
	Name  string `yaml:"name"`
	Token string `yaml:"token"`
}

// OzonAccount is an Ozon seller client id and key pair.
type OzonAccount struct {
	ClientID string `yaml:"clientId"`
	APIKey   string `yaml:"apiKey"`
}

// OpenAISettings configures the text-generation service.
type OpenAISettings struct {
	APIKey    string `yaml:"apiKey"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"baseUrl"`
	MaxTokens int    `yaml:"maxTokens"`
}

// WorkerSettings controls the sweep cadence and reply policy.
type WorkerSettings struct {
	CheckIntervalSeconds int      `yaml:"checkIntervalSeconds"`
	MinRating            int      `yaml:"minRating"`
	SystemPrompt         string   `yaml:"systemPrompt"`
	Signature            string   `yaml:"signature"`
	FallbackReply        string   `yaml:"fallbackReply"`
	Platforms            []string `yaml:"platforms"`
}

// CheckInterval returns the pause between sweeps.
func (w WorkerSettings) CheckInterval() time.Duration {
	if w.CheckIntervalSeconds <= 0 {
		return defaultCheckInterval * time.Second
	}
	return time.Duration(w.CheckIntervalSeconds) * time.Second
}

// Credentials returns the configured accounts of a platform as domain
// credentials, keeping list order. Blank accounts are included; callers skip them.
func (a AccountsSettings) Credentials(platform domain.Platform) []domain.Credential {
	var out []domain.Credential
	switch platform {
	case domain.PlatformWildberries:
		for _, acc := range a.Wildberries {
			out = append(out, domain.WildberriesCredential{Name: acc.Name, Token: acc.Token})
		}
	case domain.PlatformOzon:
		for _, acc := range a.Ozon {
			out = append(out, domain.OzonCredential{ClientID: acc.ClientID, APIKey: acc.APIKey})
		}
	}
	return out
}

// PlatformOrder resolves worker.platforms to known platforms, dropping
// unknown names and duplicates. An empty list yields every platform.
func (w WorkerSettings) PlatformOrder() []domain.Platform {
	if len(w.Platforms) == 0 {
		return domain.Platforms()
	}

	seen := map[domain.Platform]bool{}
	order := make([]domain.Platform, 0, len(w.Platforms))
	for _, name := range w.Platforms {
		p, ok := domain.ParsePlatform(strings.ToLower(strings.TrimSpace(name)))
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		order = append(order, p)
	}
	return order
}

// DefaultSettings returns settings with every default applied and no accounts.
func DefaultSettings() Settings {
	return Settings{
		OpenAI: OpenAISettings{
			Model:     defaultModel,
			MaxTokens: defaultMaxTokens,
		},
		Worker: WorkerSettings{
			CheckIntervalSeconds: defaultCheckInterval,
			MinRating:            defaultMinRating,
			SystemPrompt:         defaultSystemPrompt,
			FallbackReply:        defaultFallbackReply,
			Platforms:            []string{"wildberries", "ozon"},
		},
	}
}

// FileProvider re-resolves Settings from a YAML file on every Load.
type FileProvider struct {
	path   string
	logger *slog.Logger
}

// NewFileProvider builds a provider for the given path.
func NewFileProvider(path string, logger *slog.Logger) *FileProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProvider{path: path, logger: logger}
}

// Load reads the file, applies defaults and env overrides. A missing or
// broken file degrades to defaults with a warning.
func (p *FileProvider) Load() Settings {
	settings, err := ParseSettingsFile(p.path)
	if err != nil {
		p.logger.Warn("settings unavailable, using defaults", "path", p.path, "error", err)
		settings = DefaultSettings()
	}
	settings.applyEnvOverrides()
	return settings
}

// ParseSettingsFile reads and parses a YAML settings file.
func ParseSettingsFile(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	return ParseSettings(raw)
}

// ParseSettings decodes YAML and fills defaults for zero values.
func ParseSettings(raw []byte) (Settings, error) {
	var fileCfg Settings
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	merged := mergeSettings(DefaultSettings(), fileCfg)

	// minRating: 0 answers every rating, so presence matters, not the value.
	var explicit struct {
		Worker struct {
			MinRating *int `yaml:"minRating"`
		} `yaml:"worker"`
	}
	if err := yaml.Unmarshal(raw, &explicit); err == nil {
		if v := explicit.Worker.MinRating; v != nil && *v >= 0 {
			merged.Worker.MinRating = *v
		}
	}
	return merged, nil
}

func (s *Settings) applyEnvOverrides() {
	if v := os.Getenv(openAIKeyEnv); v != "" {
		s.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		s.OpenAI.Model = v
	}
}

func mergeSettings(base, override Settings) Settings {
	base.Accounts = override.Accounts

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}
	if override.OpenAI.MaxTokens > 0 {
		base.OpenAI.MaxTokens = override.OpenAI.MaxTokens
	}

	if override.Worker.CheckIntervalSeconds > 0 {
		base.Worker.CheckIntervalSeconds = override.Worker.CheckIntervalSeconds
	}
	if strings.TrimSpace(override.Worker.SystemPrompt) != "" {
		base.Worker.SystemPrompt = override.Worker.SystemPrompt
	}
	base.Worker.Signature = override.Worker.Signature
	if strings.TrimSpace(override.Worker.FallbackReply) != "" {
		base.Worker.FallbackReply = override.Worker.FallbackReply
	}
	if len(override.Worker.Platforms) > 0 {
		base.Worker.Platforms = override.Worker.Platforms
	}

	return base
}
