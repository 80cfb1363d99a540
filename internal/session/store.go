package session

import (
	"fmt"
	"sync"

	"chatbot/internal/domain"
)

// Transcript is the ordered message history of one session. Messages are only
// ever appended; RollbackTo exists to drop an unanswered trailing turn.
type Transcript struct {
	mu       sync.Mutex
	messages []domain.Message
}

// Append adds msg at the end of the transcript.
func (t *Transcript) Append(msg domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Messages returns a copy of the full history.
func (t *Transcript) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Window returns the leading system messages followed by at most limit of the
// most recent other messages. limit <= 0 returns the whole history.
func (t *Transcript) Window(limit int) []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limit <= 0 {
		out := make([]domain.Message, len(t.messages))
		copy(out, t.messages)
		return out
	}
	head := 0
	for head < len(t.messages) && t.messages[head].Role == domain.RoleSystem {
		head++
	}
	start := len(t.messages) - limit
	if start < head {
		start = head
	}
	out := make([]domain.Message, 0, head+len(t.messages)-start)
	out = append(out, t.messages[:head]...)
	out = append(out, t.messages[start:]...)
	return out
}

// RollbackTo truncates the transcript back to n messages. It is a no-op when
// the transcript is not longer than n.
func (t *Transcript) RollbackTo(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n < len(t.messages) {
		clear(t.messages[n:])
		t.messages = t.messages[:n]
	}
}

// Store maps session ids to transcripts. Transcripts are created lazily and
// live for the lifetime of the process.
type Store struct {
	mu          sync.Mutex
	preamble    string
	transcripts map[string]*Transcript
}

// NewStore returns an empty store. Every new transcript starts with a single
// system message carrying preamble, unless preamble is empty.
func NewStore(preamble string) *Store {
	return &Store{preamble: preamble, transcripts: make(map[string]*Transcript)}
}

// GetOrCreate returns the transcript for id, creating it on first use.
func (s *Store) GetOrCreate(id string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transcripts[id]; ok {
		return t
	}
	t := &Transcript{}
	if s.preamble != "" {
		t.messages = append(t.messages, domain.Message{Role: domain.RoleSystem, Content: s.preamble})
	}
	s.transcripts[id] = t
	return t
}

// Append adds msg to an existing session. Sessions must be created with
// GetOrCreate first.
func (s *Store) Append(id string, msg domain.Message) error {
	s.mu.Lock()
	t, ok := s.transcripts[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("append to %q: %w", id, domain.ErrUnknownSession)
	}
	t.Append(msg)
	return nil
}
