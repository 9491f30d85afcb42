package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/logging"
)

const sampleSettings = `
accounts:
  wildberries:
    - name: main
      token: wb-token
    - token: second
  ozon:
    - clientId: "12345"
      apiKey: oz-key
openai:
  apiKey: sk-file
  maxTokens: 300
worker:
  checkIntervalSeconds: 120
  minRating: 5
  signature: "С уважением, команда магазина"
  platforms: [ozon]
`

func TestParseSettingsAppliesDefaults(t *testing.T) {
	t.Parallel()

	s, err := ParseSettings([]byte(sampleSettings))
	if err != nil {
		t.Fatalf("ParseSettings returned error: %v", err)
	}

	if s.OpenAI.APIKey != "sk-file" || s.OpenAI.MaxTokens != 300 {
		t.Fatalf("unexpected openai settings: %+v", s.OpenAI)
	}
	if s.OpenAI.Model != defaultModel {
		t.Fatalf("expected default model, got %q", s.OpenAI.Model)
	}
	if s.Worker.CheckInterval() != 2*time.Minute || s.Worker.MinRating != 5 {
		t.Fatalf("unexpected worker settings: %+v", s.Worker)
	}
	if s.Worker.FallbackReply != defaultFallbackReply || s.Worker.SystemPrompt != defaultSystemPrompt {
		t.Fatalf("expected default prompt and fallback")
	}
	if len(s.Accounts.Wildberries) != 2 || len(s.Accounts.Ozon) != 1 {
		t.Fatalf("unexpected accounts: %+v", s.Accounts)
	}
}

func TestParseSettingsMinRating(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		yaml string
		want int
	}{
		"explicit zero answers everything": {yaml: "worker:\n  minRating: 0\n", want: 0},
		"omitted falls back to default":    {yaml: "worker:\n  checkIntervalSeconds: 60\n", want: defaultMinRating},
		"negative is ignored":              {yaml: "worker:\n  minRating: -1\n", want: defaultMinRating},
		"explicit value":                   {yaml: "worker:\n  minRating: 3\n", want: 3},
	}
	for name, tc := range cases {
		s, err := ParseSettings([]byte(tc.yaml))
		if err != nil {
			t.Fatalf("%s: ParseSettings returned error: %v", name, err)
		}
		if s.Worker.MinRating != tc.want {
			t.Fatalf("%s: minRating = %d, want %d", name, s.Worker.MinRating, tc.want)
		}
	}
}

func TestParseSettingsRejectsBrokenYAML(t *testing.T) {
	t.Parallel()

	if _, err := ParseSettings([]byte("worker: [unterminated")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCredentialsKeepOrder(t *testing.T) {
	t.Parallel()

	s, err := ParseSettings([]byte(sampleSettings))
	if err != nil {
		t.Fatalf("ParseSettings returned error: %v", err)
	}

	wb := s.Accounts.Credentials(domain.PlatformWildberries)
	if len(wb) != 2 || wb[0].ShopID() != "main" || wb[1].ShopID() != "Default" {
		t.Fatalf("unexpected wildberries credentials: %+v", wb)
	}

	oz := s.Accounts.Credentials(domain.PlatformOzon)
	if len(oz) != 1 || oz[0].ShopID() != "12345" || oz[0].Blank() {
		t.Fatalf("unexpected ozon credentials: %+v", oz)
	}
}

func TestPlatformOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		platforms []string
		want      []domain.Platform
	}{
		{"empty means all", nil, []domain.Platform{domain.PlatformWildberries, domain.PlatformOzon}},
		{"reordered", []string{"ozon", "wildberries"}, []domain.Platform{domain.PlatformOzon, domain.PlatformWildberries}},
		{"unknown and duplicates dropped", []string{"WB", "yandex", "wildberries"}, []domain.Platform{domain.PlatformWildberries}},
	}

	for _, tc := range cases {
		got := WorkerSettings{Platforms: tc.platforms}.PlatformOrder()
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestFileProviderFallsBackToDefaults(t *testing.T) {
	t.Setenv(openAIKeyEnv, "")
	t.Setenv(openAIModelEnv, "")

	p := NewFileProvider(filepath.Join(t.TempDir(), "missing.yaml"), logging.Discard())
	s := p.Load()

	if s.Worker.MinRating != defaultMinRating || s.OpenAI.Model != defaultModel {
		t.Fatalf("expected defaults, got %+v", s)
	}
	if len(s.Accounts.Wildberries) != 0 || len(s.Accounts.Ozon) != 0 {
		t.Fatalf("defaults carry no accounts")
	}
}

func TestFileProviderReloadsAndOverridesFromEnv(t *testing.T) {
	t.Setenv(openAIKeyEnv, "sk-env")
	t.Setenv(openAIModelEnv, "gpt-4o-mini")

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(sampleSettings), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	p := NewFileProvider(path, logging.Discard())
	s := p.Load()
	if s.OpenAI.APIKey != "sk-env" || s.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("env overrides not applied: %+v", s.OpenAI)
	}

	if err := os.WriteFile(path, []byte("worker:\n  minRating: 3\n"), 0o600); err != nil {
		t.Fatalf("rewrite settings: %v", err)
	}
	s = p.Load()
	if s.Worker.MinRating != 3 || len(s.Accounts.Wildberries) != 0 {
		t.Fatalf("settings not re-read: %+v", s)
	}
}
