package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in CHATMIC_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config stores runtime configuration for the application.
type Config struct {
	Provider ProviderConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Rules    RulesConfig
	Session  SessionConfig
}

type ProviderConfig struct {
	Name          string
	Model         string
	SystemPrompt  string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type SessionConfig struct {
	ChunkSize        int
	EndpointingMS    int
	UtteranceTimeout time.Duration
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	rulesPath := strings.TrimSpace(os.Getenv("CHATMIC_RULES_FILE"))
	if rulesPath == "" {
		rulesPath = filepath.Join(home, ".config", "chatmic", "dictation.rules")
	}

	cfg := Config{
		Provider: ProviderConfig{
			Name:          strings.ToLower(envOrDefault("CHATMIC_PROVIDER", ProviderGemini)),
			Model:         strings.TrimSpace(os.Getenv("CHATMIC_MODEL")),
			SystemPrompt:  strings.TrimSpace(os.Getenv("CHATMIC_SYSTEM_PROMPT")),
			GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_API_BASE")),
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    strings.TrimSpace(os.Getenv("DEEPGRAM_LANGUAGE")),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("CHATMIC_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("CHATMIC_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("CHATMIC_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("CHATMIC_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("CHATMIC_CHANNELS", 1),
		},
		Rules: RulesConfig{
			Path:           rulesPath,
			IterationLimit: envOrDefaultInt("CHATMIC_RULE_ITERATION_LIMIT", 30),
		},
		Session: SessionConfig{
			ChunkSize:        envOrDefaultInt("CHATMIC_AUDIO_CHUNK_SIZE", 4096),
			EndpointingMS:    envOrDefaultInt("CHATMIC_ENDPOINTING_MS", 400),
			UtteranceTimeout: time.Duration(envOrDefaultInt("CHATMIC_UTTERANCE_TIMEOUT_MS", 15000)) * time.Millisecond,
		},
	}

	if cfg.Provider.Name != ProviderGemini && cfg.Provider.Name != ProviderOpenAI {
		return Config{}, fmt.Errorf("unsupported CHATMIC_PROVIDER %q", cfg.Provider.Name)
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Session.EndpointingMS < 0 {
		cfg.Session.EndpointingMS = 0
	}
	if cfg.Session.UtteranceTimeout < 0 {
		cfg.Session.UtteranceTimeout = 0
	}

	return cfg, nil
}

// ProviderAPIKey returns the API key for the selected response provider.
func (c Config) ProviderAPIKey() string {
	if c.Provider.Name == ProviderOpenAI {
		return c.Provider.OpenAIAPIKey
	}
	return c.Provider.GeminiAPIKey
}

// SpeechConfigured reports whether speech capture can be wired at all.
func (c Config) SpeechConfigured() bool {
	return c.Deepgram.APIKey != ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
