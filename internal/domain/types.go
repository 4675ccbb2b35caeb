package domain

import "time"

// Sender identifies who authored a transcript message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one immutable transcript entry. Text is passed through to the
// renderer unmodified; any markup inside it is the renderer's concern.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatus models the request lifecycle of the conversation session.
type SessionStatus string

const (
	SessionIdle             SessionStatus = "idle"
	SessionAwaitingResponse SessionStatus = "awaiting_response"
)

// ListeningStatus models the speech capture lifecycle. It is independent of
// SessionStatus; both may be active at once.
type ListeningStatus string

const (
	ListeningIdle   ListeningStatus = "idle"
	ListeningActive ListeningStatus = "listening"
)

// StateReason provides a structured reason for state transitions.
type StateReason string

const (
	ReasonSessionReady       StateReason = "session_ready"
	ReasonSubmissionAccepted StateReason = "submission_accepted"
	ReasonResponseReceived   StateReason = "response_received"
	ReasonResponseFailed     StateReason = "response_failed"
	ReasonListeningStarted   StateReason = "listening_started"
	ReasonUtteranceCaptured  StateReason = "utterance_captured"
	ReasonListeningEnded     StateReason = "listening_ended"
	ReasonRecognitionFailed  StateReason = "recognition_failed"
	ReasonSpeechUnavailable  StateReason = "speech_unavailable"
)

// ErrorCode identifies non-fatal backend errors reported to the UI.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeResponse    ErrorCode = "response"
	ErrorCodeSpeech      ErrorCode = "speech"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodeRules       ErrorCode = "rules"
	ErrorCodeClipboard   ErrorCode = "clipboard"
)

// TranscriptKind identifies whether a recognition event is interim or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental recognition output for one utterance.
type TranscriptEvent struct {
	Kind          TranscriptKind `json:"kind"`
	Text          string         `json:"text"`
	IsSpeechFinal bool           `json:"isSpeechFinal"`
}

// Status summarizes the current runtime status for UI resync.
type Status struct {
	Session      SessionStatus   `json:"session"`
	Listening    ListeningStatus `json:"listening"`
	Draft        string          `json:"draft"`
	MessageCount int             `json:"messageCount"`
	Message      string          `json:"message,omitempty"`
}
