package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"chatmic/internal/domain"
	"chatmic/internal/ports"
)

// Config controls single-utterance capture behavior.
type Config struct {
	Audio            ports.AudioConfig
	Streaming        ports.StreamingConfig
	ChunkSize        int
	UtteranceTimeout time.Duration
}

// Recognizer implements ports.SpeechRecognizer by pairing microphone capture
// with a streaming recognition provider. Each Start captures exactly one
// utterance: the session ends on the provider's stream end, on Stop, or when
// the utterance timeout elapses.
type Recognizer struct {
	audio    ports.AudioCapture
	provider ports.RecognitionProvider
	cfg      Config
}

func NewRecognizer(audio ports.AudioCapture, provider ports.RecognitionProvider, cfg Config) *Recognizer {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	return &Recognizer{audio: audio, provider: provider, cfg: cfg}
}

func (r *Recognizer) Start(ctx context.Context) (ports.SpeechSession, error) {
	sessionCtx, cancel := context.WithCancel(ctx)

	stream, err := r.provider.StartStreaming(sessionCtx, r.cfg.Streaming)
	if err != nil {
		cancel()
		return nil, err
	}

	audioSession, err := r.audio.Start(sessionCtx, r.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		return nil, err
	}

	session := &utteranceSession{
		cancel: cancel,
		audio:  audioSession,
		stream: stream,
		events: make(chan domain.TranscriptEvent, 16),
		done:   make(chan struct{}),
	}

	go session.pumpAudio(r.cfg.ChunkSize)
	go session.forward()

	if r.cfg.UtteranceTimeout > 0 {
		go session.expireAfter(r.cfg.UtteranceTimeout)
	}

	return session, nil
}

type utteranceSession struct {
	cancel func()
	audio  ports.AudioSession
	stream ports.StreamingSession

	events chan domain.TranscriptEvent
	done   chan struct{}

	stopOnce sync.Once

	errMu sync.Mutex
	err   error
}

func (s *utteranceSession) Events() <-chan domain.TranscriptEvent {
	return s.events
}

// Stop ends the capture: the microphone is released and the provider stream
// is allowed to drain its remaining results before the event channel closes.
func (s *utteranceSession) Stop() error {
	s.stopOnce.Do(func() {
		_ = s.audio.Stop()
		_ = s.stream.CloseSend()
	})
	return nil
}

// Err reports the recognition failure, if any, once Events has closed.
func (s *utteranceSession) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *utteranceSession) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// pumpAudio copies microphone chunks into the provider stream until the
// capture stops or fails.
func (s *utteranceSession) pumpAudio(chunkSize int) {
	buf := make([]byte, chunkSize)
	for {
		n, err := s.audio.Read(buf)
		if n > 0 {
			if sendErr := s.stream.SendAudio(buf[:n]); sendErr != nil {
				s.setErr(fmt.Errorf("failed to stream audio: %w", sendErr))
				_ = s.Stop()
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.setErr(fmt.Errorf("audio capture error: %w", err))
			}
			_ = s.Stop()
			return
		}
	}
}

// forward relays provider events to the session until the stream ends, then
// records the stream outcome and closes the event channel. That close is the
// session's end signal and always fires.
func (s *utteranceSession) forward() {
	defer close(s.done)

	for event := range s.stream.Events() {
		select {
		case s.events <- event:
		default:
		}
	}

	s.setErr(waitForStream(s.stream, 4*time.Second))
	_ = s.audio.Stop()
	s.cancel()
	close(s.events)
}

func (s *utteranceSession) expireAfter(timeout time.Duration) {
	select {
	case <-time.After(timeout):
		_ = s.Stop()
	case <-s.done:
	}
}

func waitForStream(stream ports.StreamingSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- stream.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = stream.Close()
		return <-done
	}
}
