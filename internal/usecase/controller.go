package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"chatmic/internal/domain"
	"chatmic/internal/ports"
)

// FallbackResponseText is appended as the assistant message whenever the
// response client fails. The underlying cause never reaches the transcript.
const FallbackResponseText = "Sorry, something went wrong. Please try again."

var (
	ErrEmptyDraft         = errors.New("draft is empty")
	ErrSubmissionInFlight = errors.New("a submission is already awaiting a response")
)

// SessionController owns the conversation session state: the draft, the
// transcript, the request lifecycle, and the speech capture path. One
// submission may be in flight at a time; a second Submit while awaiting a
// response is rejected with no effect.
type SessionController struct {
	client       ports.ResponseClient
	events       ports.EventSink
	buffer       *InputBuffer
	conversation *ConversationStore
	speech       *SpeechCapture

	mu     sync.Mutex
	status domain.SessionStatus
}

func NewSessionController(
	client ports.ResponseClient,
	recognizer ports.SpeechRecognizer,
	rules ports.RulesEngine,
	events ports.EventSink,
) *SessionController {
	buffer := NewInputBuffer()
	return &SessionController{
		client:       client,
		events:       events,
		buffer:       buffer,
		conversation: NewConversationStore(),
		speech:       NewSpeechCapture(recognizer, rules, buffer, events),
		status:       domain.SessionIdle,
	}
}

// Submit sends the current draft as a prompt. Preconditions: the trimmed
// draft is non-empty and no submission is awaiting a response; violations
// are rejected without any state change. On acceptance the user message is
// appended, the draft cleared, and the session returns to idle once the
// response resolves, success or failure.
func (c *SessionController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.status == domain.SessionAwaitingResponse {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	prompt := strings.TrimSpace(c.buffer.Get())
	if prompt == "" {
		c.mu.Unlock()
		return ErrEmptyDraft
	}
	c.status = domain.SessionAwaitingResponse
	c.mu.Unlock()

	userMsg := c.conversation.Append(domain.SenderUser, prompt)
	c.buffer.Clear()
	c.events.MessageAppended(userMsg)
	c.events.DraftChanged("")
	c.events.SessionStateChanged(domain.SessionAwaitingResponse, domain.ReasonSubmissionAccepted)

	reason := domain.ReasonResponseReceived
	defer func() {
		c.mu.Lock()
		c.status = domain.SessionIdle
		c.mu.Unlock()
		c.events.SessionStateChanged(domain.SessionIdle, reason)
	}()

	// Only the submitted text is sent; each request is stateless from the
	// backend's perspective.
	text, err := c.client.Generate(ctx, prompt)
	if err != nil {
		reason = domain.ReasonResponseFailed
		text = FallbackResponseText
		c.events.SessionError(domain.ErrorCodeResponse, err.Error())
	}

	reply := c.conversation.Append(domain.SenderAssistant, text)
	c.events.MessageAppended(reply)
	return nil
}

// StartListening begins a single-utterance speech capture feeding the draft.
// A missing recognizer degrades silently; typing remains the sole input path.
func (c *SessionController) StartListening(ctx context.Context) error {
	err := c.speech.Start(ctx)
	if errors.Is(err, ErrSpeechUnavailable) || errors.Is(err, ErrAlreadyListening) {
		return nil
	}
	return err
}

// SetDraft replaces the draft with typed text.
func (c *SessionController) SetDraft(text string) {
	c.buffer.SetText(text)
}

// Draft returns the current unsent draft.
func (c *SessionController) Draft() string {
	return c.buffer.Get()
}

// Messages returns the transcript in append order.
func (c *SessionController) Messages() []domain.Message {
	return c.conversation.Messages()
}

// MessageByID looks a transcript entry up by identifier.
func (c *SessionController) MessageByID(id string) (domain.Message, bool) {
	return c.conversation.ByID(id)
}

// Status returns the current session status snapshot.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	session := c.status
	c.mu.Unlock()

	return domain.Status{
		Session:      session,
		Listening:    c.speech.Status(),
		Draft:        c.buffer.Get(),
		MessageCount: c.conversation.Len(),
	}
}
