package usecase

import (
	"context"
	"errors"
	"sync"

	"chatmic/internal/domain"
	"chatmic/internal/ports"
)

var (
	ErrSpeechUnavailable = errors.New("speech recognition is not available")
	ErrAlreadyListening  = errors.New("an utterance capture is already active")
)

// SpeechCapture drives one spoken utterance at a time from the recognizer
// into the input buffer. Lifecycle per activation: idle -> listening -> idle,
// where the return to idle happens exactly once, when the recognizer's event
// stream ends.
type SpeechCapture struct {
	recognizer ports.SpeechRecognizer
	rules      ports.RulesEngine
	buffer     *InputBuffer
	events     ports.EventSink

	mu     sync.Mutex
	status domain.ListeningStatus
}

func NewSpeechCapture(
	recognizer ports.SpeechRecognizer,
	rules ports.RulesEngine,
	buffer *InputBuffer,
	events ports.EventSink,
) *SpeechCapture {
	return &SpeechCapture{
		recognizer: recognizer,
		rules:      rules,
		buffer:     buffer,
		events:     events,
		status:     domain.ListeningIdle,
	}
}

// Start begins capturing a single utterance. It reports ErrSpeechUnavailable
// when no recognizer is configured and ErrAlreadyListening while a capture is
// active; both leave all state unchanged.
func (c *SpeechCapture) Start(ctx context.Context) error {
	if c.recognizer == nil {
		return ErrSpeechUnavailable
	}

	c.mu.Lock()
	if c.status == domain.ListeningActive {
		c.mu.Unlock()
		return ErrAlreadyListening
	}
	c.status = domain.ListeningActive
	c.mu.Unlock()

	session, err := c.recognizer.Start(ctx)
	if err != nil {
		c.mu.Lock()
		c.status = domain.ListeningIdle
		c.mu.Unlock()
		c.events.SessionError(domain.ErrorCodeSpeech, err.Error())
		return err
	}

	c.events.ListeningStateChanged(domain.ListeningActive, domain.ReasonListeningStarted)
	go c.consume(session)
	return nil
}

// Status returns the current listening state.
func (c *SpeechCapture) Status() domain.ListeningStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// consume handles one utterance until its event stream ends. Each
// recognition event replaces the draft with the best transcript so far;
// the first speech-final segment stops the capture.
func (c *SpeechCapture) consume(session ports.SpeechSession) {
	aggregator := newTranscriptAggregator()
	heard := false

	for event := range session.Events() {
		aggregator.Add(event)
		best := aggregator.Best()
		if best == "" {
			continue
		}
		heard = true
		c.buffer.SetText(c.applyRules(best))
		c.events.DraftChanged(c.buffer.Get())

		if event.IsSpeechFinal {
			_ = session.Stop()
		}
	}

	recognitionErr := session.Err()
	if recognitionErr != nil {
		c.events.SessionError(domain.ErrorCodeSpeech, recognitionErr.Error())
	}

	c.mu.Lock()
	c.status = domain.ListeningIdle
	c.mu.Unlock()

	reason := domain.ReasonListeningEnded
	switch {
	case heard:
		reason = domain.ReasonUtteranceCaptured
	case recognitionErr != nil:
		reason = domain.ReasonRecognitionFailed
	}
	c.events.ListeningStateChanged(domain.ListeningIdle, reason)
}

// applyRules runs dictation substitutions on a transcript. A rules failure
// is reported and the raw transcript is used instead.
func (c *SpeechCapture) applyRules(text string) string {
	if c.rules == nil {
		return text
	}
	transformed, err := c.rules.Apply(text)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeRules, err.Error())
		return text
	}
	return transformed
}
