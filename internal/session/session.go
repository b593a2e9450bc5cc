// Package session tracks per-conversation exchange history so follow-up
// questions can be answered in context. History is kept in memory and
// bounded to the most recent exchanges.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxExchanges bounds how many user/assistant exchange pairs a
// session remembers.
const DefaultMaxExchanges = 2

// Exchange is one user question and the assistant's answer to it.
type Exchange struct {
	Query  string
	Answer string
}

// Store holds conversation sessions in memory. Safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	sessions     map[string][]Exchange
	maxExchanges int
}

// NewStore creates a session store remembering up to maxExchanges exchange
// pairs per session. Non-positive values fall back to DefaultMaxExchanges.
func NewStore(maxExchanges int) *Store {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &Store{
		sessions:     make(map[string][]Exchange),
		maxExchanges: maxExchanges,
	}
}

// Create starts a new empty session and returns its identifier.
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = nil
	return id
}

// Append records one completed exchange, evicting the oldest once the
// session exceeds its exchange budget. Appending to an unknown session
// creates it.
func (s *Store) Append(id, query, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exchanges := append(s.sessions[id], Exchange{Query: query, Answer: answer})
	if len(exchanges) > s.maxExchanges {
		exchanges = exchanges[len(exchanges)-s.maxExchanges:]
	}
	s.sessions[id] = exchanges
}

// History renders a session's exchanges as readable conversation text for
// prompt injection. Unknown or empty sessions render as "".
func (s *Store) History(id string) string {
	s.mu.Lock()
	exchanges := s.sessions[id]
	s.mu.Unlock()

	if len(exchanges) == 0 {
		return ""
	}

	lines := make([]string, 0, len(exchanges)*2)
	for _, exchange := range exchanges {
		lines = append(lines, fmt.Sprintf("User: %s", exchange.Query))
		lines = append(lines, fmt.Sprintf("Assistant: %s", exchange.Answer))
	}
	return strings.Join(lines, "\n")
}

// Clear removes a session's history, keeping the session alive.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = nil
}
