// Package session keeps the admin bearer token and display identity, backed
// by the client-state store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"affiliate-catalog/internal/domain"
	"affiliate-catalog/internal/storage"
)

// Persisted keys.
const (
	TokenKey = "admin_token"
	UserKey  = "user"
)

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (domain.Session, error)
}

// Store is safe for concurrent use. Only Login and Logout change the session.
type Store struct {
	mu     sync.RWMutex
	sess   domain.Session
	kv     storage.KV
	auth   Authenticator
	logger *log.Logger
}

// New rehydrates the session from kv. This is the only time kv is read.
// A stored user without a token is ignored.
func New(ctx context.Context, kv storage.KV, auth Authenticator, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{kv: kv, auth: auth, logger: logger}

	token, ok, err := kv.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", TokenKey, err)
	}
	if !ok || token == "" {
		return s, nil
	}
	s.sess.Token = token
	raw, ok, err := kv.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", UserKey, err)
	}
	if ok && raw != "" && raw != "null" {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			logger.Printf("session: discard unreadable user error=%v", err)
		} else {
			s.sess.User = &u
		}
	}
	return s, nil
}

// Login authenticates, persists, then swaps the in-memory session. On any
// failure the previous session stays in place, in memory and on disk.
func (s *Store) Login(ctx context.Context, identifier, password string) (domain.Session, error) {
	next, err := s.auth.Login(ctx, identifier, password)
	if err != nil {
		s.logger.Printf("session: login failed error=%v", err)
		return domain.Session{}, err
	}
	if next.User == nil {
		next.User = &domain.User{Name: identifier}
	}
	userJSON, err := json.Marshal(next.User)
	if err != nil {
		return domain.Session{}, fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.sess
	if err := s.kv.Set(ctx, TokenKey, next.Token); err != nil {
		return domain.Session{}, fmt.Errorf("persist %s: %w", TokenKey, err)
	}
	if err := s.kv.Set(ctx, UserKey, string(userJSON)); err != nil {
		s.restoreLocked(ctx, prev)
		return domain.Session{}, fmt.Errorf("persist %s: %w", UserKey, err)
	}
	s.sess = next
	s.logger.Printf("session: logged in user=%s", next.User.Name)
	return next, nil
}

// restoreLocked puts the previous persisted values back after a partial write.
func (s *Store) restoreLocked(ctx context.Context, prev domain.Session) {
	var err error
	if prev.Token == "" {
		err = s.kv.Delete(ctx, TokenKey)
	} else {
		err = s.kv.Set(ctx, TokenKey, prev.Token)
	}
	if err != nil {
		s.logger.Printf("session: restore %s error=%v", TokenKey, err)
	}
}

// Logout clears the session. Storage errors are logged, never returned.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.sess = domain.Session{}
	s.mu.Unlock()
	for _, k := range []string{TokenKey, UserKey} {
		if err := s.kv.Delete(ctx, k); err != nil {
			s.logger.Printf("session: clear %s error=%v", k, err)
		}
	}
}

// Session returns a copy of the current session.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sess
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Authenticated()
}

// CurrentAuthHeader returns the bearer header, or an empty map when logged out.
func (s *Store) CurrentAuthHeader() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.Token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + s.sess.Token}
}
