package session

import (
	"errors"
	"sync"
	"time"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id is not in the store.
var ErrNotFound = errors.New("session not found")

// Store holds all sessions for the lifetime of the process. There is no
// persistence and no cross-instance sharing; scaling past one instance means
// swapping this for a networked store behind the same methods.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	now      func() time.Time
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}
}

// Create allocates an empty session with a fresh server-issued id.
func (s *Store) Create() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.newSession(uuid.NewString())
	s.sessions[sess.ID] = sess
	return copySession(sess)
}

// GetOrCreate returns the session with the given id, creating an empty one
// if it does not exist. The second return value reports whether a session
// was created.
func (s *Store) GetOrCreate(id string) (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return copySession(sess), false
	}
	sess := s.newSession(id)
	s.sessions[id] = sess
	return copySession(sess), true
}

// Get returns a copy of the session, or ErrNotFound.
func (s *Store) Get(id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(sess), nil
}

// AppendMessage appends one message to the session's history and returns the
// updated session.
func (s *Store) AppendMessage(id string, msg models.Message) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastUpdated = s.now()
	return copySession(sess), nil
}

// AppendExchange appends a user message and the assistant's reply as one
// atomic update, so a cancelled or failed request can never leave a
// half-applied turn behind.
func (s *Store) AppendExchange(id string, user, assistant models.Message) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.Messages = append(sess.Messages, user, assistant)
	sess.LastUpdated = s.now()
	return copySession(sess), nil
}

// MergePreferences merges key/value pairs into the session's preference map,
// last write wins per key.
func (s *Store) MergePreferences(id string, prefs map[string]string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range prefs {
		sess.Preferences[k] = v
	}
	sess.LastUpdated = s.now()
	return copySession(sess), nil
}

// Clear empties the session's message history but keeps the session and its
// preferences.
func (s *Store) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Messages = nil
	sess.LastUpdated = s.now()
	return nil
}

// Delete removes a session entirely.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Count reports the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// DeleteIdle removes sessions not touched within maxAge and reports how many
// were removed.
func (s *Store) DeleteIdle(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastUpdated.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) newSession(id string) *models.Session {
	now := s.now()
	return &models.Session{
		ID:          id,
		CreatedAt:   now,
		LastUpdated: now,
		Preferences: make(map[string]string),
		Metadata:    make(map[string]string),
	}
}

// copySession returns a deep copy so callers never share slices or maps with
// the store.
func copySession(sess *models.Session) *models.Session {
	cp := *sess
	cp.Messages = append([]models.Message(nil), sess.Messages...)
	cp.Preferences = make(map[string]string, len(sess.Preferences))
	for k, v := range sess.Preferences {
		cp.Preferences[k] = v
	}
	cp.Metadata = make(map[string]string, len(sess.Metadata))
	for k, v := range sess.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}
