package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tapchess/tapchess/internal/engine"
)

// Session binds a game to an ID handed out to clients. All game access
// goes through the session mutex, so handlers and the autoplay loop
// never race on the engine.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu   sync.Mutex
	game *engine.Game

	autoplayStop chan struct{}
}

// WithGame runs fn while holding the session lock
func (s *Session) WithGame(fn func(g *engine.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// StartAutoplay begins stepping the history cursor forward on a fixed
// interval, broadcasting state to the session's watchers. Manual moves
// are rejected while the loop runs. No-op if already running.
func (s *Session) StartAutoplay(hub *Hub, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.IsAutoPlaying() {
		return
	}
	s.game.SetAutoPlaying(true)
	s.game.SetPaused(false)
	stop := make(chan struct{})
	s.autoplayStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.game.IsPaused() {
					s.mu.Unlock()
					continue
				}
				advanced := s.game.GoToNextMove()
				state := snapshotLocked(s.game)
				done := !advanced
				if done {
					s.game.SetAutoPlaying(false)
					s.autoplayStop = nil
				}
				s.mu.Unlock()

				if done {
					hub.BroadcastSessionUpdate(SessionUpdate{
						SessionID: s.ID,
						Type:      "playback_finished",
						Data:      state,
					})
					log.Info().Str("sessionID", s.ID).Msg("Autoplay reached the end of history")
					return
				}
				hub.BroadcastSessionUpdate(SessionUpdate{
					SessionID: s.ID,
					Type:      "playback_step",
					Data:      state,
				})
			}
		}
	}()
}

// StopAutoplay halts the playback loop if one is running
func (s *Session) StopAutoplay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAutoplayLocked()
}

func (s *Session) stopAutoplayLocked() {
	if s.autoplayStop != nil {
		close(s.autoplayStop)
		s.autoplayStop = nil
	}
	s.game.SetAutoPlaying(false)
	s.game.SetPaused(false)
}

// Registry holds the live sessions in memory
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create starts a fresh game and registers it under a random ID
func (r *Registry) Create() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		game:      engine.NewGame(),
	}

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	return session, nil
}

// Get returns the session for an ID, or nil if it does not exist
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Delete removes a session and stops its playback loop
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		session.StopAutoplay()
	}
	return ok
}

// List returns the registered sessions
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func generateSessionID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
