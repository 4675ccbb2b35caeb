package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chatmic/internal/domain"
	"chatmic/internal/ports"
)

func TestSpeechCaptureDeliversTranscriptToDraft(t *testing.T) {
	t.Parallel()

	session := newFakeSpeechSession()
	recognizer := &fakeRecognizer{sessions: []ports.SpeechSession{session}}
	buffer := NewInputBuffer()
	events := newFakeEventSink()
	capture := NewSpeechCapture(recognizer, nil, buffer, events)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	events.waitListening(t, domain.ListeningActive)
	if capture.Status() != domain.ListeningActive {
		t.Fatalf("expected listening status")
	}

	session.emit(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "hello"})
	session.emit(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "hello world", IsSpeechFinal: true})
	session.end(nil)

	idle := events.waitListening(t, domain.ListeningIdle)
	if idle.reason != domain.ReasonUtteranceCaptured {
		t.Fatalf("unexpected idle reason: %s", idle.reason)
	}
	if buffer.Get() != "hello world" {
		t.Fatalf("unexpected draft: %q", buffer.Get())
	}
	if session.stopCount() == 0 {
		t.Fatalf("expected speech-final segment to stop the capture")
	}

	drafts := events.snapshotDrafts()
	if len(drafts) != 2 || drafts[0] != "hello" || drafts[1] != "hello world" {
		t.Fatalf("unexpected draft updates: %v", drafts)
	}
}

func TestSpeechCaptureErrorIsReportedAndEndStillResetsIdle(t *testing.T) {
	t.Parallel()

	session := newFakeSpeechSession()
	recognizer := &fakeRecognizer{sessions: []ports.SpeechSession{session}}
	buffer := NewInputBuffer()
	buffer.SetText("typed already")
	events := newFakeEventSink()
	capture := NewSpeechCapture(recognizer, nil, buffer, events)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	events.waitListening(t, domain.ListeningActive)

	session.end(errors.New("no speech detected"))

	idle := events.waitListening(t, domain.ListeningIdle)
	if idle.reason != domain.ReasonRecognitionFailed {
		t.Fatalf("unexpected idle reason: %s", idle.reason)
	}
	if buffer.Get() != "typed already" {
		t.Fatalf("expected draft untouched on error, got %q", buffer.Get())
	}

	errorsGot := events.snapshotErrors()
	if len(errorsGot) != 1 || errorsGot[0].code != domain.ErrorCodeSpeech {
		t.Fatalf("expected speech error event, got %+v", errorsGot)
	}
}

func TestSpeechCaptureSecondStartWhileListeningIsRejected(t *testing.T) {
	t.Parallel()

	session := newFakeSpeechSession()
	recognizer := &fakeRecognizer{sessions: []ports.SpeechSession{session}}
	events := newFakeEventSink()
	capture := NewSpeechCapture(recognizer, nil, NewInputBuffer(), events)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	events.waitListening(t, domain.ListeningActive)

	if err := capture.Start(context.Background()); !errors.Is(err, ErrAlreadyListening) {
		t.Fatalf("expected ErrAlreadyListening, got %v", err)
	}
	if recognizer.callCount() != 1 {
		t.Fatalf("expected a single recognizer start")
	}

	session.end(nil)
	events.waitListening(t, domain.ListeningIdle)
}

func TestSpeechCaptureNewUtteranceRequiresNewStart(t *testing.T) {
	t.Parallel()

	first := newFakeSpeechSession()
	second := newFakeSpeechSession()
	recognizer := &fakeRecognizer{sessions: []ports.SpeechSession{first, second}}
	buffer := NewInputBuffer()
	events := newFakeEventSink()
	capture := NewSpeechCapture(recognizer, nil, buffer, events)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	first.emit(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "one", IsSpeechFinal: true})
	first.end(nil)
	events.waitListening(t, domain.ListeningIdle)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	second.emit(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "two", IsSpeechFinal: true})
	second.end(nil)
	events.waitListening(t, domain.ListeningIdle)

	if buffer.Get() != "two" {
		t.Fatalf("expected second utterance to replace draft, got %q", buffer.Get())
	}
	if recognizer.callCount() != 2 {
		t.Fatalf("expected two recognizer starts, got %d", recognizer.callCount())
	}
}

func TestSpeechCaptureRulesFailureFallsBackToRawTranscript(t *testing.T) {
	t.Parallel()

	session := newFakeSpeechSession()
	recognizer := &fakeRecognizer{sessions: []ports.SpeechSession{session}}
	buffer := NewInputBuffer()
	events := newFakeEventSink()
	capture := NewSpeechCapture(recognizer, &fakeRules{err: errors.New("bad rules")}, buffer, events)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	session.emit(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "raw text", IsSpeechFinal: true})
	session.end(nil)
	events.waitListening(t, domain.ListeningIdle)

	if buffer.Get() != "raw text" {
		t.Fatalf("expected raw transcript, got %q", buffer.Get())
	}
	errorsGot := events.snapshotErrors()
	if len(errorsGot) != 1 || errorsGot[0].code != domain.ErrorCodeRules {
		t.Fatalf("expected rules error event, got %+v", errorsGot)
	}
}

func TestSpeechCaptureRulesTransformDictation(t *testing.T) {
	t.Parallel()

	session := newFakeSpeechSession()
	recognizer := &fakeRecognizer{sessions: []ports.SpeechSession{session}}
	buffer := NewInputBuffer()
	events := newFakeEventSink()
	capture := NewSpeechCapture(recognizer, &fakeRules{transform: "transformed"}, buffer, events)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	session.emit(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "spoken", IsSpeechFinal: true})
	session.end(nil)
	events.waitListening(t, domain.ListeningIdle)

	if buffer.Get() != "transformed" {
		t.Fatalf("expected transformed draft, got %q", buffer.Get())
	}
}

func TestSpeechCaptureStartWithoutRecognizer(t *testing.T) {
	t.Parallel()

	capture := NewSpeechCapture(nil, nil, NewInputBuffer(), newFakeEventSink())
	if err := capture.Start(context.Background()); !errors.Is(err, ErrSpeechUnavailable) {
		t.Fatalf("expected ErrSpeechUnavailable, got %v", err)
	}
	if capture.Status() != domain.ListeningIdle {
		t.Fatalf("expected idle status")
	}
}

func TestSpeechCaptureRecognizerStartFailure(t *testing.T) {
	t.Parallel()

	recognizer := &fakeRecognizer{err: errors.New("mic offline")}
	events := newFakeEventSink()
	capture := NewSpeechCapture(recognizer, nil, NewInputBuffer(), events)

	if err := capture.Start(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}
	if capture.Status() != domain.ListeningIdle {
		t.Fatalf("expected idle status after failed start")
	}
	errorsGot := events.snapshotErrors()
	if len(errorsGot) != 1 || errorsGot[0].code != domain.ErrorCodeSpeech {
		t.Fatalf("expected speech error event, got %+v", errorsGot)
	}
}

type fakeRecognizer struct {
	mu       sync.Mutex
	sessions []ports.SpeechSession
	err      error
	calls    int
}

func (f *fakeRecognizer) Start(_ context.Context) (ports.SpeechSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errors.New("no speech session configured")
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSpeechSession struct {
	mu        sync.Mutex
	events    chan domain.TranscriptEvent
	err       error
	stopCalls int
	closed    bool
}

func newFakeSpeechSession() *fakeSpeechSession {
	return &fakeSpeechSession{events: make(chan domain.TranscriptEvent, 16)}
}

func (f *fakeSpeechSession) Events() <-chan domain.TranscriptEvent { return f.events }

func (f *fakeSpeechSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return nil
}

func (f *fakeSpeechSession) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeSpeechSession) emit(event domain.TranscriptEvent) {
	f.events <- event
}

func (f *fakeSpeechSession) end(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if !f.closed {
		close(f.events)
		f.closed = true
	}
}

func (f *fakeSpeechSession) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

type fakeRules struct {
	transform string
	err       error
}

func (f *fakeRules) Apply(text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.transform != "" {
		return f.transform, nil
	}
	return text, nil
}
