package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gideon/internal/dependencies/clock"
	"github.com/mcoot/gideon/internal/model"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("permission denied")
)

// Level is a permission level from the registry's perm_level table
type Level int

const (
	LevelAnyone Level = iota
	LevelManager
	LevelRoot
)

func (l Level) String() string {
	switch l {
	case LevelManager:
		return "manager"
	case LevelRoot:
		return "root"
	default:
		return "anyone"
	}
}

// Caller is whoever issued a request. The zero value is anonymous.
type Caller struct {
	Contact model.ContactID
	// Operator holds the API token without acting as a particular contact
	Operator bool
}

// Anonymous is the caller of an unauthenticated request
var Anonymous = Caller{}

// Session represents an authenticated API session
type Session struct {
	Token     string
	Caller    Caller
	CreatedAt time.Time
	ExpiresAt time.Time
}

// PermSource supplies the current permission table
type PermSource interface {
	PermLevel() model.PermLevel
}

// Service verifies the API token, hands out sessions and answers permission checks
type Service struct {
	perms     PermSource
	clock     clock.Clock
	tokenHash []byte

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	// TokenHash is the bcrypt hash of the API token. Empty disables token login.
	TokenHash       string
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(perms PermSource, clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		perms:           perms,
		clock:           clock,
		tokenHash:       []byte(cfg.TokenHash),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// HashToken returns the bcrypt hash to configure for an API token
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyToken checks an API token against the configured hash
func (s *Service) VerifyToken(token string) error {
	if len(s.tokenHash) == 0 || token == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.tokenHash, []byte(token)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies the API token and opens a session acting as contact.
// A zero contact opens an operator session.
func (s *Service) Login(token string, contact model.ContactID) (*Session, error) {
	if err := s.VerifyToken(token); err != nil {
		return nil, err
	}
	caller := Caller{Contact: contact, Operator: contact == 0}
	return s.createSession(caller), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// LevelOf returns the caller's permission level as the registry currently records it
func (s *Service) LevelOf(caller Caller) Level {
	if caller.Operator {
		return LevelRoot
	}
	if caller.Contact == 0 {
		return LevelAnyone
	}
	perms := s.perms.PermLevel()
	switch {
	case slices.Contains(perms.Root, caller.Contact):
		return LevelRoot
	case slices.Contains(perms.Manager, caller.Contact):
		return LevelManager
	}
	return LevelAnyone
}

// Require fails with ErrForbidden unless the caller holds at least level.
// Root satisfies manager.
func (s *Service) Require(caller Caller, level Level) error {
	if s.LevelOf(caller) < level {
		return fmt.Errorf("%w: %s required", ErrForbidden, level)
	}
	return nil
}

// createSession creates a new session for a caller
func (s *Service) createSession(caller Caller) *Session {
	token := s.generateID("sess_")
	now := s.clock.Now()

	session := &Session{
		Token:     token,
		Caller:    caller,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session
}

// generateID generates a random ID with a prefix
func (s *Service) generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
