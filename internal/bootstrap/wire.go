package bootstrap

import (
	"context"

	"chatmic/internal/audio"
	"chatmic/internal/config"
	"chatmic/internal/ports"
	"chatmic/internal/providers/deepgram"
	"chatmic/internal/providers/gemini"
	"chatmic/internal/providers/openai"
	"chatmic/internal/rules"
	"chatmic/internal/speech"
	"chatmic/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller    *usecase.SessionController
	Config        config.Config
	SpeechEnabled bool
}

// Build wires all backend dependencies for the current runtime. A missing
// response provider key is a startup error; a missing speech key only
// disables dictation.
func Build(ctx context.Context, eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	rulesEngine, err := rules.NewEngine(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		return Services{}, err
	}

	client, err := buildResponseClient(ctx, cfg)
	if err != nil {
		return Services{}, err
	}

	var recognizer ports.SpeechRecognizer
	if cfg.SpeechConfigured() {
		recognizer = speech.NewRecognizer(
			audio.NewFFmpegCapture(cfg.Audio.RecorderCommand),
			deepgram.NewProvider(deepgram.Config{
				APIKey:      cfg.Deepgram.APIKey,
				APIBaseURL:  cfg.Deepgram.APIBaseURL,
				Model:       cfg.Deepgram.Model,
				Language:    cfg.Deepgram.Language,
				SmartFormat: cfg.Deepgram.SmartFormat,
			}),
			speech.Config{
				Audio: ports.AudioConfig{
					SampleRate:  cfg.Audio.SampleRate,
					Channels:    cfg.Audio.Channels,
					InputFormat: cfg.Audio.InputFormat,
					InputDevice: cfg.Audio.InputDevice,
				},
				Streaming: ports.StreamingConfig{
					SampleRate:     cfg.Audio.SampleRate,
					Channels:       cfg.Audio.Channels,
					Encoding:       "linear16",
					InterimResults: true,
					EndpointingMS:  cfg.Session.EndpointingMS,
				},
				ChunkSize:        cfg.Session.ChunkSize,
				UtteranceTimeout: cfg.Session.UtteranceTimeout,
			},
		)
	}

	controller := usecase.NewSessionController(client, recognizer, rulesEngine, eventSink)

	return Services{
		Controller:    controller,
		Config:        cfg,
		SpeechEnabled: recognizer != nil,
	}, nil
}

func buildResponseClient(ctx context.Context, cfg config.Config) (ports.ResponseClient, error) {
	switch cfg.Provider.Name {
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:       cfg.Provider.OpenAIAPIKey,
			BaseURL:      cfg.Provider.OpenAIBaseURL,
			Model:        cfg.Provider.Model,
			SystemPrompt: cfg.Provider.SystemPrompt,
		})
	default:
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:       cfg.Provider.GeminiAPIKey,
			Model:        cfg.Provider.Model,
			SystemPrompt: cfg.Provider.SystemPrompt,
		})
	}
}
