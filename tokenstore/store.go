// Package tokenstore persists the access token across process restarts. It
// is the single owner of token persistence: a TokenRecord with an explicit
// expiry, written to a small JSON file, mirrored in memory. A failed write
// degrades silently to an in-memory-only session.
package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// TokenRecord is the persisted form of the access token.
type TokenRecord struct {
	Value     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store owns the token record. All reads honor the expiry against the
// injected clock, so an expired token is indistinguishable from an absent
// one.
type Store struct {
	mu      sync.Mutex
	path    string
	record  *TokenRecord
	nowFunc func() time.Time
	logger  zerolog.Logger
}

// Option defines a function type to modify the Store instance.
type Option func(*Store)

// WithNowFunc sets the clock (primarily for testing expiry without waits).
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store backed by the file at path. An unreadable or corrupt
// file is treated as no token; the store never fails to construct.
func New(path string, options ...Option) *Store {
	s := &Store{
		path:    path,
		nowFunc: time.Now,
		logger:  zerolog.Nop(),
	}

	for _, opt := range options {
		opt(s)
	}

	s.load()
	return s
}

// Get returns the current token, or ok=false when absent or expired.
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil || s.record.Value == "" {
		return "", false
	}
	if !s.record.ExpiresAt.IsZero() && !s.nowFunc().Before(s.record.ExpiresAt) {
		return "", false
	}
	return s.record.Value, true
}

// Set persists token with the given lifetime, overwriting any existing
// record. When the token is a JWT carrying an exp claim, the earlier of the
// claim and now+ttl wins. A failed file write is logged and otherwise
// ignored; the in-memory record stays valid for the current process.
func (s *Store) Set(token string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.nowFunc().Add(ttl)
	if claimExpiry, ok := tokenExpiry(token); ok && claimExpiry.Before(expiresAt) {
		expiresAt = claimExpiry
	}

	s.record = &TokenRecord{Value: token, ExpiresAt: expiresAt}
	s.persist()
}

// Clear removes the token immediately. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = nil
	if s.path == "" {
		return
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to remove token file")
	}
}

func (s *Store) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("discarding corrupt token file")
		return
	}
	s.record = &record
}

func (s *Store) persist() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(s.record)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode token record")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("token persistence unavailable, session is memory-only")
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("token persistence unavailable, session is memory-only")
	}
}

// tokenExpiry extracts the exp claim from a JWT access token without
// verifying the signature; the client has no verification key and only
// needs the expiry hint. Non-JWT tokens simply have no hint.
func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}
