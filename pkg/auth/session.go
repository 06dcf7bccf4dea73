package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ezshare/ezshare/internal/logger"
	"github.com/ezshare/ezshare/pkg/models"
)

// ErrSessionNotFound is returned when a session ID does not resolve to a
// live session.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state behind one login. The ID is the opaque
// cookie value; nothing about the account is recoverable from it.
type Session struct {
	ID            string
	IdentityToken string

	// Username is the display name the client offered at login. It is
	// never used for lookups, only echoed back.
	Username string

	Permissions models.Permissions
	LoginAt     time.Time
	LastSeen    time.Time
}

// Registry holds live sessions in memory. Sessions expire after an idle
// period and can be destroyed explicitly at logout, which is what makes a
// cookie revocable server-side.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	lifetime time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

const janitorInterval = time.Minute

// NewRegistry creates a session registry. Sessions idle for longer than
// lifetime are rejected on access and reaped by a background janitor.
func NewRegistry(lifetime time.Duration) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		lifetime: lifetime,
		done:     make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Create registers a new session and returns it by value.
func (r *Registry) Create(identityToken, username string, permissions models.Permissions) Session {
	now := time.Now()
	s := &Session{
		ID:            uuid.New().String(),
		IdentityToken: identityToken,
		Username:      username,
		Permissions:   permissions,
		LoginAt:       now,
		LastSeen:      now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return *s
}

// Get resolves a session ID, refreshes its idle timer and returns a copy.
// Expired sessions are treated as missing.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	now := time.Now()
	if now.Sub(s.LastSeen) > r.lifetime {
		delete(r.sessions, id)
		return Session{}, ErrSessionNotFound
	}
	s.LastSeen = now

	return *s, nil
}

// Destroy removes a session. Destroying an unknown ID is a no-op.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// SetIdentityToken rewrites the identity token of a live session. Used after
// a password change, which rotates the account's identity token.
func (r *Registry) SetIdentityToken(id, identityToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.IdentityToken = identityToken
	return nil
}

// SetPermissions refreshes the permission flags of a live session from the
// account record, so flag changes take effect without a re-login.
func (r *Registry) SetPermissions(id string, permissions models.Permissions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Permissions = permissions
	return nil
}

// Len returns the number of live sessions, expired ones included until the
// janitor runs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the background janitor.
func (r *Registry) Close() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

func (r *Registry) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.reap()
		}
	}
}

func (r *Registry) reap() {
	now := time.Now()

	r.mu.Lock()
	var reaped int
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen) > r.lifetime {
			delete(r.sessions, id)
			reaped++
		}
	}
	r.mu.Unlock()

	if reaped > 0 {
		logger.Debug("Reaped expired sessions", "count", reaped)
	}
}
