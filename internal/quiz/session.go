package quiz

import (
	"slices"
	"sync"
	"time"

	"github.com/abhisek/vault/internal/content"
)

// Mode is the kind of quiz being run.
type Mode = content.QuizMode

// Result is one graded answer.
type Result struct {
	Index        int    `json:"question_index"`
	QuestionText string `json:"question_text"`
	UserAnswer   string `json:"user_answer"`
	Passed       bool   `json:"passed"`
	Feedback     string `json:"feedback"`
}

// Session is a quiz in progress. Questions and the target are fixed at
// start; CurrentIndex and Results advance with each answer.
type Session struct {
	Questions    []string
	CurrentIndex int
	Results      []Result
	Target       content.Target
	Mode         Mode
	StartedAt    time.Time
}

// Done reports whether every question has been answered.
func (s *Session) Done() bool {
	return s.CurrentIndex >= len(s.Questions)
}

func (s *Session) clone() *Session {
	c := *s
	c.Questions = slices.Clone(s.Questions)
	c.Results = slices.Clone(s.Results)
	return &c
}

// Store keeps at most one session per user.
type Store interface {
	Get(userID string) (*Session, bool)
	Put(userID string, s *Session)
	Delete(userID string)
	Len() int
}

// MemoryStore is a process-local Store. Sessions do not survive a
// restart and never expire on their own; they are replaced by the next
// start or removed when the quiz completes.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get returns a copy of the user's session.
func (m *MemoryStore) Get(userID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// Put stores a copy of s, replacing any existing session.
func (m *MemoryStore) Put(userID string, s *Session) {
	c := s.clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = c
}

// Delete removes the user's session, if any.
func (m *MemoryStore) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len returns the number of active sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
