package booking

import (
	"sync"
	"time"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/wizard"
)

// Wizard is one user's booking attempt as held by the server.
type Wizard struct {
	ID           string               `json:"id"`
	Session      wizard.Session       `json:"session"`
	WeekStart    time.Time            `json:"week_start"`
	Confirmation *domain.Confirmation `json:"confirmation,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`

	// ConfirmedRevision is the session revision the confirmation was booked for.
	ConfirmedRevision uint64 `json:"confirmed_revision,omitempty"`
}

func (w Wizard) clone() Wizard {
	out := w
	out.Session = w.Session.Clone()
	if w.Confirmation != nil {
		c := *w.Confirmation
		out.Confirmation = &c
	}
	return out
}

// Store keeps wizards in memory. Everything it returns is a copy.
type Store struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
	onSize  func(int)
}

func NewStore(onSize func(int)) *Store {
	return &Store{wizards: make(map[string]*Wizard), onSize: onSize}
}

func (s *Store) Put(w Wizard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := w.clone()
	s.wizards[w.ID] = &c
	s.reportSize()
}

func (s *Store) Get(id string) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[id]
	if !ok {
		return Wizard{}, ErrSessionNotFound
	}
	return w.clone(), nil
}

// Update runs fn on a working copy and commits it only when fn returns nil.
func (s *Store) Update(id string, now time.Time, fn func(*Wizard) error) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.wizards[id]
	if !ok {
		return Wizard{}, ErrSessionNotFound
	}
	next := cur.clone()
	if err := fn(&next); err != nil {
		return cur.clone(), err
	}
	next.UpdatedAt = now
	s.wizards[id] = &next
	return next.clone(), nil
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.wizards[id]
	delete(s.wizards, id)
	s.reportSize()
	return ok
}

// Sweep drops wizards idle since before cutoff and returns how many went.
func (s *Store) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, w := range s.wizards {
		if w.UpdatedAt.Before(cutoff) {
			delete(s.wizards, id)
			n++
		}
	}
	s.reportSize()
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wizards)
}

func (s *Store) reportSize() {
	if s.onSize != nil {
		s.onSize(len(s.wizards))
	}
}
