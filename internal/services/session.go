package services

import (
	"crypto/subtle"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"
)

// AdminSession marks a browser session that has entered the admin passphrase.
type AdminSession struct {
	Token        string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Login checks the passphrase and opens an admin session. Retries are
// unlimited.
func (s *WheelService) Login(passphrase string) (string, error) {
	ok := subtle.ConstantTimeCompare([]byte(passphrase), []byte(s.opts.Passphrase)) == 1
	s.metrics.ObserveLogin(ok)
	if !ok {
		return "", ErrWrongPassphrase
	}

	now := s.opts.Now()
	session := &AdminSession{
		Token:        uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
	}

	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	s.sessions[session.Token] = session
	s.observeSessions()
	return session.Token, nil
}

// Authorized reports whether token belongs to a live admin session and
// refreshes its activity time.
func (s *WheelService) Authorized(token string) bool {
	if token == "" {
		return false
	}

	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	session, exists := s.sessions[token]
	if !exists {
		return false
	}
	now := s.opts.Now()
	if now.Sub(session.LastActivity) > s.opts.SessionTTL {
		delete(s.sessions, token)
		s.observeSessions()
		return false
	}
	session.LastActivity = now
	return true
}

// Logout ends an admin session.
func (s *WheelService) Logout(token string) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	delete(s.sessions, token)
	s.observeSessions()
	logger.Info("admin session closed")
}

// CleanUpInactiveSessions removes sessions that have been idle for longer than
// the session TTL and returns how many were removed.
func (s *WheelService) CleanUpInactiveSessions() int {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	removed := 0
	now := s.opts.Now()
	for token, session := range s.sessions {
		if now.Sub(session.LastActivity) > s.opts.SessionTTL {
			delete(s.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		logger.Infof("removed %d inactive admin sessions", removed)
	}
	s.observeSessions()
	return removed
}

// SessionCount returns the number of open admin sessions.
func (s *WheelService) SessionCount() int {
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	return len(s.sessions)
}

func (s *WheelService) observeSessions() {
	if s.metrics != nil {
		s.metrics.Sessions.Set(float64(len(s.sessions)))
	}
}
