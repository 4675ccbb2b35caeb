package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"chatmic/internal/bootstrap"
	"chatmic/internal/config"
	"chatmic/internal/domain"
	"chatmic/internal/ports"
	"chatmic/internal/usecase"
)

const (
	eventSession   = "chatmic:session"
	eventListening = "chatmic:listening"
	eventMessage   = "chatmic:message"
	eventDraft     = "chatmic:draft"
	eventError     = "chatmic:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller    *usecase.SessionController
	clipboard     ports.Clipboard
	cfg           config.Config
	speechEnabled bool
	bootErr       error
}

func NewApp() *App {
	return &App{clipboard: &wailsClipboard{}}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(ctx, a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.speechEnabled = services.SpeechEnabled
	a.SessionStateChanged(domain.SessionIdle, domain.ReasonSessionReady)
}

// Submit sends the current draft to the response provider. An empty draft
// or an in-flight submission is a no-op for the UI.
func (a *App) Submit() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.controller.Submit(a.ctx); err != nil {
		if errors.Is(err, usecase.ErrEmptyDraft) || errors.Is(err, usecase.ErrSubmissionInFlight) {
			return nil
		}
		return err
	}
	return nil
}

// SetDraft replaces the draft with text typed in the UI.
func (a *App) SetDraft(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.SetDraft(text)
	return nil
}

// GetDraft returns the current draft text.
func (a *App) GetDraft() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	return a.controller.Draft(), nil
}

// StartListening begins capturing one dictated utterance. When speech is not
// configured this is a silent no-op; typing remains available.
func (a *App) StartListening() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.StartListening(a.ctx)
}

// GetMessages returns the conversation in append order.
func (a *App) GetMessages() ([]domain.Message, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.controller.Messages(), nil
}

// CopyMessage writes a message's text into the system clipboard.
func (a *App) CopyMessage(id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	message, ok := a.controller.MessageByID(id)
	if !ok {
		return fmt.Errorf("unknown message %q", id)
	}
	if err := a.clipboard.SetText(a.ctx, message.Text); err != nil {
		a.SessionError(domain.ErrorCodeClipboard, err.Error())
		return err
	}
	return nil
}

// GetStatus returns the current runtime status for UI resync.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{Session: domain.SessionIdle, Listening: domain.ListeningIdle, Message: a.bootErr.Error()}
		}
		return domain.Status{Session: domain.SessionIdle, Listening: domain.ListeningIdle}
	}
	return a.controller.Status()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"provider":   a.cfg.Provider.Name,
		"model":      a.cfg.Provider.Model,
		"speech":     fmt.Sprintf("%t", a.speechEnabled),
		"rulesFile":  a.cfg.Rules.Path,
		"audioInput": a.cfg.Audio.InputDevice,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(status domain.SessionStatus, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, map[string]string{
		"status":  string(status),
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
}

// ListeningStateChanged emits speech capture lifecycle updates.
func (a *App) ListeningStateChanged(status domain.ListeningStatus, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventListening, map[string]string{
		"status":  string(status),
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
}

// MessageAppended emits a newly appended conversation message.
func (a *App) MessageAppended(message domain.Message) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventMessage, message)
}

// DraftChanged emits the current draft text.
func (a *App) DraftChanged(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventDraft, map[string]string{"text": text})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func stateReasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonSessionReady:
		return "Ready"
	case domain.ReasonSubmissionAccepted:
		return "Waiting for a response..."
	case domain.ReasonResponseReceived:
		return "Response received"
	case domain.ReasonResponseFailed:
		return "Response failed"
	case domain.ReasonListeningStarted:
		return "Listening..."
	case domain.ReasonUtteranceCaptured:
		return "Utterance captured"
	case domain.ReasonListeningEnded:
		return "Listening ended"
	case domain.ReasonRecognitionFailed:
		return "Speech recognition failed"
	case domain.ReasonSpeechUnavailable:
		return "Dictation is not configured"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeResponse:
		return "Response request failed"
	case domain.ErrorCodeSpeech:
		return "Speech recognition error"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeRules:
		return "Rules processing failed"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
