package client

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"

	"studyplan-backend/models"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenStore keeps the token in process only.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Save("")
}

// FileTokenStore keeps the token in a file readable only by the owner.
type FileTokenStore struct {
	Path string
}

func (s FileTokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (s FileTokenStore) Save(token string) error {
	return os.WriteFile(s.Path, []byte(token), 0o600)
}

func (s FileTokenStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Session is the authenticated identity of one user. The zero state is
// logged out; Login, Register and Load populate it, Logout clears it.
type Session struct {
	client *Client
	store  TokenStore

	mu    sync.RWMutex
	token string
	user  *models.UserResponse
}

func NewSession(client *Client, store TokenStore) *Session {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	return &Session{client: client, store: store}
}

func (s *Session) Register(ctx context.Context, name, email, password, college string) (*models.UserResponse, error) {
	res, err := s.client.Register(ctx, name, email, password, college)
	if err != nil {
		return nil, err
	}
	return s.set(res.Token, res.User)
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.UserResponse, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.set(res.Token, res.User)
}

// Load restores a stored token and verifies it against the server. A token
// the server rejects is cleared and ErrNotAuthenticated returned.
func (s *Session) Load(ctx context.Context) (*models.UserResponse, error) {
	token, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := s.client.Me(ctx, token)
	if err != nil {
		if code := StatusCode(err); code == http.StatusUnauthorized || code == http.StatusNotFound {
			_ = s.Logout()
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return s.set(token, *user)
}

func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear()
}

// User returns the signed-in user, or nil.
func (s *Session) User() *models.UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNotAuthenticated
	}
	return s.token, nil
}

func (s *Session) set(token string, user models.UserResponse) (*models.UserResponse, error) {
	if err := s.store.Save(token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return &user, nil
}
