package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chatmic/internal/domain"
)

// ConversationStore is the ordered transcript of exchanged messages.
// Append-only for the lifetime of a session: no reordering, no edits.
type ConversationStore struct {
	mu       sync.Mutex
	messages []domain.Message
	now      func() time.Time
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{now: time.Now}
}

// Append creates a message and adds it to the end of the transcript.
func (s *ConversationStore) Append(sender domain.Sender, text string) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := domain.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a defensive copy of the transcript in append order.
func (s *ConversationStore) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of transcript entries.
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Last returns the most recent message, if any.
func (s *ConversationStore) Last() (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return domain.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// ByID looks a message up by its identifier.
func (s *ConversationStore) ByID(id string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return domain.Message{}, false
}
