package ports

import (
	"context"
	"io"

	"chatmic/internal/domain"
)

// ResponseClient generates a reply for a single prompt. One request/response
// round trip per call; no retry, no streaming.
type ResponseClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live microphone capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming recognition settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
	EndpointingMS  int
}

// StreamingSession is an active recognition stream for one utterance.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// RecognitionProvider starts streaming recognition sessions.
type RecognitionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// SpeechSession is one active utterance capture. The events channel closes
// when the utterance ends; Err reports any recognition failure afterwards.
type SpeechSession interface {
	Events() <-chan domain.TranscriptEvent
	Stop() error
	Err() error
}

// SpeechRecognizer captures a single spoken utterance per Start call.
type SpeechRecognizer interface {
	Start(ctx context.Context) (SpeechSession, error)
}

// RulesEngine transforms dictated transcripts using deterministic rules.
type RulesEngine interface {
	Apply(text string) (string, error)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(status domain.SessionStatus, reason domain.StateReason)
	ListeningStateChanged(status domain.ListeningStatus, reason domain.StateReason)
	MessageAppended(msg domain.Message)
	DraftChanged(text string)
	SessionError(code domain.ErrorCode, detail string)
}
