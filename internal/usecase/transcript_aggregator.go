package usecase

import (
	"strings"
	"sync"

	"chatmic/internal/domain"
)

// transcriptAggregator folds one utterance's recognition events into the
// best transcript heard so far. Final segments accumulate; interim text only
// counts while nothing final has superseded it.
type transcriptAggregator struct {
	mu        sync.Mutex
	finals    []string
	lastHeard string
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{}
}

func (a *transcriptAggregator) Add(event domain.TranscriptEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}
	a.lastHeard = text
	if event.Kind == domain.TranscriptKindFinal {
		a.finals = append(a.finals, text)
	}
}

// Best returns the most complete transcript for the utterance so far.
func (a *transcriptAggregator) Best() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined := strings.TrimSpace(strings.Join(a.finals, " "))
	if joined == "" {
		return a.lastHeard
	}

	if a.lastHeard == "" || strings.HasSuffix(joined, a.lastHeard) {
		return joined
	}

	if len(a.lastHeard) > len(joined) {
		return strings.TrimSpace(joined + " " + a.lastHeard)
	}

	return joined
}
