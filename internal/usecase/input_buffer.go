package usecase

import "sync"

// InputBuffer holds the unsent draft text. It is pure state: typing and
// dictation both write here, and submission acceptance clears it.
type InputBuffer struct {
	mu   sync.Mutex
	text string
}

func NewInputBuffer() *InputBuffer {
	return &InputBuffer{}
}

// SetText replaces the draft. Whitespace-only content is allowed here and
// rejected at submission time instead.
func (b *InputBuffer) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// Get returns the current draft.
func (b *InputBuffer) Get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Clear resets the draft to empty.
func (b *InputBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
}
