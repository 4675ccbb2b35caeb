package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearChatmicEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Provider.Name != ProviderGemini {
		t.Fatalf("unexpected default provider: %q", cfg.Provider.Name)
	}
	if cfg.Deepgram.APIBaseURL != "https://api.deepgram.com/v1" {
		t.Fatalf("unexpected deepgram base: %q", cfg.Deepgram.APIBaseURL)
	}
	if cfg.Deepgram.Model != "nova-2" || !cfg.Deepgram.SmartFormat {
		t.Fatalf("unexpected deepgram defaults: %+v", cfg.Deepgram)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Audio.RecorderCommand != "ffmpeg" || cfg.Audio.InputFormat != "pulse" || cfg.Audio.InputDevice != "default" {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if !strings.HasSuffix(cfg.Rules.Path, filepath.Join(".config", "chatmic", "dictation.rules")) {
		t.Fatalf("unexpected rules path: %q", cfg.Rules.Path)
	}
	if cfg.Session.ChunkSize != 4096 || cfg.Session.EndpointingMS != 400 {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Session.UtteranceTimeout != 15*time.Second {
		t.Fatalf("unexpected utterance timeout: %v", cfg.Session.UtteranceTimeout)
	}
	if cfg.SpeechConfigured() {
		t.Fatalf("expected speech not configured without a key")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearChatmicEnv(t)
	t.Setenv("CHATMIC_PROVIDER", "claude")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func TestLoadProviderSelectionAndKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearChatmicEnv(t)
	t.Setenv("CHATMIC_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "oai-key")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("CHATMIC_MODEL", "gpt-4o")
	t.Setenv("CHATMIC_SYSTEM_PROMPT", " stay concise ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider.Name != ProviderOpenAI {
		t.Fatalf("expected lowercased provider, got %q", cfg.Provider.Name)
	}
	if cfg.ProviderAPIKey() != "oai-key" {
		t.Fatalf("unexpected provider key: %q", cfg.ProviderAPIKey())
	}
	if cfg.Provider.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %q", cfg.Provider.Model)
	}
	if cfg.Provider.SystemPrompt != "stay concise" {
		t.Fatalf("expected trimmed system prompt, got %q", cfg.Provider.SystemPrompt)
	}

	t.Setenv("CHATMIC_PROVIDER", "gemini")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ProviderAPIKey() != "gem-key" {
		t.Fatalf("unexpected gemini key: %q", cfg.ProviderAPIKey())
	}
}

func TestLoadClampsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearChatmicEnv(t)
	t.Setenv("CHATMIC_SAMPLE_RATE", "-1")
	t.Setenv("CHATMIC_CHANNELS", "0")
	t.Setenv("CHATMIC_AUDIO_CHUNK_SIZE", "17")
	t.Setenv("CHATMIC_RULE_ITERATION_LIMIT", "not a number")
	t.Setenv("CHATMIC_ENDPOINTING_MS", "-50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("expected clamped audio config: %+v", cfg.Audio)
	}
	if cfg.Session.ChunkSize != 4096 {
		t.Fatalf("expected clamped chunk size: %d", cfg.Session.ChunkSize)
	}
	if cfg.Rules.IterationLimit != 30 {
		t.Fatalf("expected default iteration limit: %d", cfg.Rules.IterationLimit)
	}
	if cfg.Session.EndpointingMS != 0 {
		t.Fatalf("expected clamped endpointing: %d", cfg.Session.EndpointingMS)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CHATMIC_TEST_STR", "  value  ")
	if got := envOrDefault("CHATMIC_TEST_STR", "d"); got != "value" {
		t.Fatalf("unexpected string: %q", got)
	}
	if got := envOrDefault("CHATMIC_TEST_MISSING", "d"); got != "d" {
		t.Fatalf("unexpected fallback: %q", got)
	}

	t.Setenv("CHATMIC_TEST_INT", "42")
	if got := envOrDefaultInt("CHATMIC_TEST_INT", 7); got != 42 {
		t.Fatalf("unexpected int: %d", got)
	}

	t.Setenv("CHATMIC_TEST_BOOL", "off")
	if envOrDefaultBool("CHATMIC_TEST_BOOL", true) {
		t.Fatalf("expected off to be false")
	}
	t.Setenv("CHATMIC_TEST_BOOL", "maybe")
	if !envOrDefaultBool("CHATMIC_TEST_BOOL", true) {
		t.Fatalf("expected fallback for unknown value")
	}
}

func clearChatmicEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CHATMIC_PROVIDER", "CHATMIC_MODEL", "CHATMIC_SYSTEM_PROMPT",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_API_BASE",
		"DEEPGRAM_API_KEY", "DEEPGRAM_API_BASE", "DEEPGRAM_MODEL",
		"DEEPGRAM_LANGUAGE", "DEEPGRAM_SMART_FORMAT",
		"CHATMIC_FFMPEG_COMMAND", "CHATMIC_AUDIO_INPUT_FORMAT",
		"CHATMIC_AUDIO_INPUT_DEVICE", "CHATMIC_SAMPLE_RATE", "CHATMIC_CHANNELS",
		"CHATMIC_RULES_FILE", "CHATMIC_RULE_ITERATION_LIMIT",
		"CHATMIC_AUDIO_CHUNK_SIZE", "CHATMIC_ENDPOINTING_MS",
		"CHATMIC_UTTERANCE_TIMEOUT_MS",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
