package config

import (
	"os"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		OpenAI: OpenAIConfig{
			APIKey: "sk-" + strings.Repeat("a", 48),
		},
		VectorStore: VectorStoreConfig{
			URL:        "https://example.supabase.co",
			ServiceKey: "service-key",
			Source:     "ultravox_docs",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestValidate_BadKeyShape(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = "not-an-openai-key"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestValidate_BadKeyShapeAllowedWithBaseURL(t *testing.T) {
	// Compatible providers issue keys in their own format.
	cfg := validConfig()
	cfg.OpenAI.APIKey = "not-an-openai-key"
	cfg.OpenAI.BaseURL = "https://api.example.com/v1/"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_VectorStoreURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.VectorStore.URL = "example.supabase.co"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for URL without scheme")
	}
	if !strings.Contains(err.Error(), "https://") {
		t.Errorf("error should mention the expected scheme, got %q", err.Error())
	}
}

func TestValidate_MissingServiceKey(t *testing.T) {
	cfg := validConfig()
	cfg.VectorStore.ServiceKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing service key")
	}
}

func TestValidate_MissingSource(t *testing.T) {
	cfg := validConfig()
	cfg.VectorStore.Source = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing source tag")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.OpenAI.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", cfg.OpenAI.EmbeddingModel)
	}
	if cfg.OpenAI.Dimensions != 1536 {
		t.Errorf("expected 1536 dimensions, got %d", cfg.OpenAI.Dimensions)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o-mini" {
		t.Errorf("expected default chat model, got %q", cfg.OpenAI.ChatModel)
	}
	if cfg.VectorStore.RPC != "match_site_pages" {
		t.Errorf("expected default rpc name, got %q", cfg.VectorStore.RPC)
	}
	if cfg.VectorStore.MatchCount != 5 {
		t.Errorf("expected match_count=5, got %d", cfg.VectorStore.MatchCount)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCQA_TEST_KEY", "secret")
	os.Unsetenv("DOCQA_TEST_MISSING")

	in := []byte("key: ${DOCQA_TEST_KEY}\nother: ${DOCQA_TEST_MISSING:-fallback}\n")
	out := string(expandEnvVars(in))

	if !strings.Contains(out, "key: secret") {
		t.Errorf("expected env substitution, got %q", out)
	}
	if !strings.Contains(out, "other: fallback") {
		t.Errorf("expected default substitution, got %q", out)
	}
}
