// Package auth resolves the signed-in user for a request and broadcasts
// sign-in / sign-out changes to interested components.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"example.com/mentalreset/internal/domain"
)

// Session is the authenticated-user context.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// User converts the session into the domain identity.
func (s *Session) User() *domain.User {
	if s == nil {
		return nil
	}
	return &domain.User{ID: s.UserID, Email: s.Email}
}

// Verifier checks bearer tokens against an identity backend.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
	Revoke(ctx context.Context, token string) error
}

// Event labels a session change.
type Event string

const (
	EventSignedIn  Event = "SIGNED_IN"
	EventSignedOut Event = "SIGNED_OUT"
)

// Change is delivered to subscribers when a user's session changes.
type Change struct {
	Event   Event
	Session Session
}

// Sessions is the session provider used by the HTTP layer: one-shot
// lookups, change subscriptions, and sign-out.
type Sessions struct {
	verifier Verifier
	hub      *Hub
	logger   *zap.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewSessions wires a verifier to a fresh change hub.
func NewSessions(verifier Verifier, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		verifier: verifier,
		hub:      NewHub(),
		logger:   logger,
		active:   make(map[string]struct{}),
	}
}

// Current resolves token into a session. An empty token yields (nil, nil):
// the caller is anonymous.
func (s *Sessions) Current(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	session, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	_, seen := s.active[session.UserID]
	if !seen {
		s.active[session.UserID] = struct{}{}
	}
	s.mu.Unlock()

	if !seen {
		s.hub.Publish(Change{Event: EventSignedIn, Session: *session})
	}
	return session, nil
}

// Subscribe registers fn for future changes and returns its release handle.
func (s *Sessions) Subscribe(fn func(Change)) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

// SignOut revokes token and tells subscribers the user left.
func (s *Sessions) SignOut(ctx context.Context, token string) error {
	session, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return err
	}
	if err := s.verifier.Revoke(ctx, token); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.active, session.UserID)
	s.mu.Unlock()

	s.logger.Info("user signed out", zap.String("user_id", session.UserID))
	s.hub.Publish(Change{Event: EventSignedOut, Session: *session})
	return nil
}
