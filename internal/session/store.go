package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps one Machine per browser session, keyed by an opaque ID.
// Entries idle for longer than ttl are dropped on access; an analyzing
// session is never dropped. A ttl of zero disables expiry.
type Store struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]*entry

	newMachine func() *Machine
}

type entry struct {
	machine  *Machine
	lastSeen time.Time
}

// NewStore returns an empty Store that creates machines with newMachine.
func NewStore(ttl time.Duration, newMachine func() *Machine) *Store {
	return &Store{ttl: ttl, data: make(map[string]*entry), newMachine: newMachine}
}

// Get returns the machine for id and marks it as seen.
func (s *Store) Get(id string, now time.Time) (*Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	e, ok := s.data[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = now
	return e.machine, true
}

// GetOrCreate returns the machine for id, creating a fresh session with a
// new ID when id is unknown or expired. created reports the latter.
func (s *Store) GetOrCreate(id string, now time.Time) (string, *Machine, bool) {
	if m, ok := s.Get(id, now); ok {
		return id, m, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	newID := uuid.NewString()
	m := s.newMachine()
	s.data[newID] = &entry{machine: m, lastSeen: now}
	return newID, m, true
}

// Len returns the number of live sessions at now.
func (s *Store) Len(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	return len(s.data)
}

func (s *Store) expireLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, e := range s.data {
		if now.Sub(e.lastSeen) <= s.ttl {
			continue
		}
		if e.machine.State().Phase == PhaseAnalyzing {
			continue
		}
		delete(s.data, id)
	}
}
